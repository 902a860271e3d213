package service

import (
	"context"
	"strings"
	"testing"

	"foodconnect/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportPost(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	author := h.createUser(t, "r-author", models.RoleUser)
	reporter := h.createUser(t, "r-reporter", models.RoleUser)
	post := h.createPost(t, author.ID, "Suspicious Dish", nil)

	report, err := h.reports.ReportPost(ctx, reporter.ID, post.ID, "  plagiarized recipe  ")
	require.NoError(t, err)

	assert.NotZero(t, report.ID)
	assert.Equal(t, "plagiarized recipe", report.Reason)
	assert.Equal(t, reporter.ID, report.UserID)
	assert.Equal(t, post.ID, report.PostID)
}

func TestReportPost_Validation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	author := h.createUser(t, "r-val", models.RoleUser)
	post := h.createPost(t, author.ID, "Fine Dish", nil)

	_, err := h.reports.ReportPost(ctx, author.ID, post.ID, "   ")
	assertValidationError(t, err)

	_, err = h.reports.ReportPost(ctx, author.ID, post.ID, strings.Repeat("a", maxReportReasonLen+1))
	assertValidationError(t, err)

	_, err = h.reports.ReportPost(ctx, author.ID, 9999, "missing")
	assertNotFoundError(t, err)
}

func TestListReports(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	author := h.createUser(t, "r-lister", models.RoleUser)
	postA := h.createPost(t, author.ID, "Dish A", nil)
	postB := h.createPost(t, author.ID, "Dish B", nil)

	_, err := h.reports.ReportPost(ctx, author.ID, postA.ID, "reason one")
	require.NoError(t, err)
	_, err = h.reports.ReportPost(ctx, author.ID, postB.ID, "reason two")
	require.NoError(t, err)
	_, err = h.reports.ReportPost(ctx, author.ID, postB.ID, "reason three")
	require.NoError(t, err)

	all, err := h.reports.ListReports(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	forB, err := h.reports.ListReportsForPost(ctx, postB.ID)
	require.NoError(t, err)
	assert.Len(t, forB, 2)
}
