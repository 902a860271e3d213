package server

import (
	"foodconnect/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetTags handles GET /api/tags.
func (s *Server) GetTags(c *fiber.Ctx) error {
	tags, err := s.tagService.GetAll(c.UserContext())
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(tags)
}

// GetTag handles GET /api/tags/:id.
func (s *Server) GetTag(c *fiber.Ctx) error {
	tagID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	tag, err := s.tagService.GetByID(c.UserContext(), tagID)
	if err != nil {
		return respondAppError(c, err)
	}
	if tag == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Tag", tagID))
	}
	return c.JSON(tag)
}

// GetTagByName handles GET /api/tags/by-name/:name.
func (s *Server) GetTagByName(c *fiber.Ctx) error {
	tag, err := s.tagService.GetByName(c.UserContext(), c.Params("name"))
	if err != nil {
		return respondAppError(c, err)
	}
	if tag == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Tag", c.Params("name")))
	}
	return c.JSON(tag)
}

// SweepOrphanTags handles POST /api/admin/tags/sweep.
func (s *Server) SweepOrphanTags(c *fiber.Ctx) error {
	removed, err := s.tagService.SweepOrphans(c.UserContext())
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"removed": removed})
}
