package repository

import (
	"context"

	"foodconnect/internal/models"

	"gorm.io/gorm"
)

// ReportRepository defines persistence operations for post reports.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	List(ctx context.Context, limit, offset int) ([]models.Report, error)
	GetByPostID(ctx context.Context, postID uint) ([]models.Report, error)
	DeleteByPostID(ctx context.Context, postID uint) error
	DeleteByUserID(ctx context.Context, userID uint) error
	WithTx(tx *gorm.DB) ReportRepository
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository returns a new ReportRepository implementation.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) WithTx(tx *gorm.DB) ReportRepository {
	return &reportRepository{db: tx}
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *reportRepository) List(ctx context.Context, limit, offset int) ([]models.Report, error) {
	var reports []models.Report
	err := readDB(r.db).WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reports).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return reports, nil
}

func (r *reportRepository) GetByPostID(ctx context.Context, postID uint) ([]models.Report, error) {
	var reports []models.Report
	err := readDB(r.db).WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&reports).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return reports, nil
}

func (r *reportRepository) DeleteByPostID(ctx context.Context, postID uint) error {
	if err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Delete(&models.Report{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *reportRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Report{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
