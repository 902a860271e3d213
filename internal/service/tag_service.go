// Package service implements the application's business logic layer.
package service

import (
	"context"
	"log/slog"
	"strings"

	"foodconnect/internal/middleware"
	"foodconnect/internal/models"
	"foodconnect/internal/observability"
	"foodconnect/internal/repository"

	"gorm.io/gorm"
)

// TagService resolves free-form tag names to canonical tag rows and keeps the
// tag table free of orphans.
type TagService struct {
	tagRepo repository.TagRepository
}

// NewTagService returns a new TagService.
func NewTagService(tagRepo repository.TagRepository) *TagService {
	return &TagService{tagRepo: tagRepo}
}

// WithTx returns a copy of the service whose repository runs inside tx.
func (s *TagService) WithTx(tx *gorm.DB) *TagService {
	return &TagService{tagRepo: s.tagRepo.WithTx(tx)}
}

// NormalizeTagName canonicalizes a raw tag name: surrounding whitespace is
// trimmed and the result is lowercased. Normalization is idempotent.
func NormalizeTagName(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// NormalizeTagNames normalizes every name, drops the ones that normalize to
// empty, and deduplicates while preserving first-occurrence order.
func NormalizeTagNames(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	normalized := make([]string, 0, len(raw))
	for _, name := range raw {
		n := NormalizeTagName(name)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		normalized = append(normalized, n)
	}
	return normalized
}

// ResolveOrCreate maps raw tag names to tag rows, creating the ones that do
// not exist yet. The whole batch costs one lookup query plus at most one
// insert query. Returns a validation error when no usable name remains after
// normalization.
func (s *TagService) ResolveOrCreate(ctx context.Context, rawNames []string) ([]models.Tag, error) {
	names := NormalizeTagNames(rawNames)
	if len(names) == 0 {
		return nil, models.NewValidationError("At least one tag name is required")
	}

	existing, err := s.tagRepo.GetByNames(ctx, names)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]models.Tag, len(existing))
	for _, t := range existing {
		byName[t.Name] = t
	}

	var missing []models.Tag
	for _, name := range names {
		if _, ok := byName[name]; !ok {
			missing = append(missing, models.Tag{Name: name})
		}
	}

	if len(missing) > 0 {
		if err := s.tagRepo.CreateMany(ctx, missing); err != nil {
			return nil, err
		}
		for _, t := range missing {
			byName[t.Name] = t
		}
	}

	// Preserve the caller's order.
	resolved := make([]models.Tag, 0, len(names))
	for _, name := range names {
		resolved = append(resolved, byName[name])
	}
	return resolved, nil
}

// GetAll returns every tag ordered by name.
func (s *TagService) GetAll(ctx context.Context) ([]models.TagInfo, error) {
	tags, err := s.tagRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return toTagInfos(tags), nil
}

// GetByID returns the tag with the given id, or nil when it does not exist.
func (s *TagService) GetByID(ctx context.Context, id uint) (*models.TagInfo, error) {
	tag, err := s.tagRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, nil
	}
	info := toTagInfo(*tag)
	return &info, nil
}

// GetByName returns the tag with the given name after normalization, or nil
// when it does not exist.
func (s *TagService) GetByName(ctx context.Context, name string) (*models.TagInfo, error) {
	normalized := NormalizeTagName(name)
	if normalized == "" {
		return nil, models.NewValidationError("Tag name is required")
	}
	tag, err := s.tagRepo.GetByName(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, nil
	}
	info := toTagInfo(*tag)
	return &info, nil
}

// GetByPostID returns the tags linked to a post.
func (s *TagService) GetByPostID(ctx context.Context, postID uint) ([]models.TagInfo, error) {
	tags, err := s.tagRepo.GetByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return toTagInfos(tags), nil
}

// DeleteIfOrphan removes the tag when no post links to it anymore. Returns
// true when the tag was removed.
func (s *TagService) DeleteIfOrphan(ctx context.Context, tagID uint) (bool, error) {
	count, err := s.tagRepo.LinkCount(ctx, tagID)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if err := s.tagRepo.Delete(ctx, tagID); err != nil {
		return false, err
	}
	return true, nil
}

// SweepOrphans removes every tag without a post link and returns the number
// of tags removed.
func (s *TagService) SweepOrphans(ctx context.Context) (int64, error) {
	removed, err := s.tagRepo.DeleteOrphans(ctx)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		observability.OrphanTagsSwept.Add(float64(removed))
		middleware.Logger.InfoContext(ctx, "Orphan tag sweep completed", slog.Int64("removed", removed))
	}
	return removed, nil
}

func toTagInfo(tag models.Tag) models.TagInfo {
	return models.TagInfo{ID: tag.ID, Name: tag.Name}
}

func toTagInfos(tags []models.Tag) []models.TagInfo {
	infos := make([]models.TagInfo, 0, len(tags))
	for _, t := range tags {
		infos = append(infos, toTagInfo(t))
	}
	return infos
}
