package server

import (
	"foodconnect/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ReportPost handles POST /api/posts/:id/report.
func (s *Server) ReportPost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	if !s.featureFlags.ReportsEnabled(userID) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewUnauthorizedError("Reporting is currently disabled"))
	}

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	report, err := s.reportService.ReportPost(c.UserContext(), userID, postID, req.Reason)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

// GetReports handles GET /api/admin/reports.
func (s *Server) GetReports(c *fiber.Ctx) error {
	p := parsePagination(c, 50)
	reports, err := s.reportService.ListReports(c.UserContext(), p.Limit, p.Offset)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(reports)
}
