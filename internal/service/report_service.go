package service

import (
	"context"
	"strings"

	"foodconnect/internal/models"
	"foodconnect/internal/repository"
)

const maxReportReasonLen = 500

// ReportService manages post reports.
type ReportService struct {
	reportRepo repository.ReportRepository
	postRepo   repository.PostRepository
}

// NewReportService returns a new ReportService.
func NewReportService(reportRepo repository.ReportRepository, postRepo repository.PostRepository) *ReportService {
	return &ReportService{reportRepo: reportRepo, postRepo: postRepo}
}

// ReportPost files a report against an existing post.
func (s *ReportService) ReportPost(ctx context.Context, userID, postID uint, reason string) (*models.Report, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, models.NewValidationError("Report reason is required")
	}
	if len(reason) > maxReportReasonLen {
		return nil, models.NewValidationError("Report reason too long (max 500 characters)")
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, models.NewNotFoundError("Post", postID)
	}

	report := &models.Report{
		UserID: userID,
		PostID: postID,
		Reason: reason,
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// ListReports returns a page of reports, newest first. Admin-only at the
// transport layer.
func (s *ReportService) ListReports(ctx context.Context, limit, offset int) ([]models.Report, error) {
	limit, offset = normalizePage(limit, offset)
	return s.reportRepo.List(ctx, limit, offset)
}

// ListReportsForPost returns every report filed against a post.
func (s *ReportService) ListReportsForPost(ctx context.Context, postID uint) ([]models.Report, error) {
	return s.reportRepo.GetByPostID(ctx, postID)
}
