package server

import (
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"foodconnect/internal/models"
	"foodconnect/internal/service"
	"foodconnect/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// readUploads collects the "images" files of a multipart form into memory.
func readUploads(form *multipart.Form) ([]storage.FileUpload, error) {
	if form == nil {
		return nil, nil
	}
	files := form.File["images"]
	uploads := make([]storage.FileUpload, 0, len(files))
	for _, fh := range files {
		src, err := fh.Open()
		if err != nil {
			return nil, models.NewValidationError("Unable to read uploaded file")
		}
		content, err := io.ReadAll(src)
		_ = src.Close()
		if err != nil {
			return nil, models.NewValidationError("Unable to read uploaded file")
		}
		uploads = append(uploads, storage.FileUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Content:     content,
		})
	}
	return uploads, nil
}

// formValues returns the multipart values for key, or nil.
func formValues(form *multipart.Form, key string) []string {
	if form == nil {
		return nil
	}
	return form.Value[key]
}

func formValue(form *multipart.Form, key string) string {
	values := formValues(form, key)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func parseCalories(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, models.NewValidationError("Calories must be a number")
	}
	return &val, nil
}

// CreatePost handles POST /api/posts. The body is a multipart form with the
// post fields, repeated tag_names and image_urls values, and "images" files.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	form, err := c.MultipartForm()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Expected multipart form data"))
	}

	uploads, err := readUploads(form)
	if err != nil {
		return respondAppError(c, err)
	}
	calories, err := parseCalories(formValue(form, "calories"))
	if err != nil {
		return respondAppError(c, err)
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:      userID,
		Title:       formValue(form, "title"),
		Ingredients: formValue(form, "ingredients"),
		Description: formValue(form, "description"),
		Calories:    calories,
		TagNames:    formValues(form, "tag_names"),
		ImageURLs:   formValues(form, "image_urls"),
		Uploads:     uploads,
	})
	if err != nil {
		return respondAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts handles GET /api/posts.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	posts, err := s.postService.ListPosts(c.UserContext(), service.ListPostsInput{
		Limit:    p.Limit,
		Offset:   p.Offset,
		ViewerID: currentUserID(c),
	})
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id.
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.postService.GetPost(c.UserContext(), postID, currentUserID(c))
	if err != nil {
		return respondAppError(c, err)
	}
	if post == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Post", postID))
	}
	return c.JSON(post)
}

// SearchPosts handles GET /api/posts/search?q=...
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	posts, err := s.postService.SearchPosts(c.UserContext(), c.Query("q"), service.ListPostsInput{
		Limit:    p.Limit,
		Offset:   p.Offset,
		ViewerID: currentUserID(c),
	})
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(posts)
}

// GetUserPosts handles GET /api/users/:id/posts.
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	authorID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 20)
	posts, err := s.postService.ListPostsByUser(c.UserContext(), authorID, service.ListPostsInput{
		Limit:    p.Limit,
		Offset:   p.Offset,
		ViewerID: currentUserID(c),
	})
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(posts)
}

// UpdatePost handles PUT /api/posts/:id. The form fully replaces the post's
// editable state: keep_image_urls lists the existing images that survive.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Expected multipart form data"))
	}

	uploads, err := readUploads(form)
	if err != nil {
		return respondAppError(c, err)
	}
	calories, err := parseCalories(formValue(form, "calories"))
	if err != nil {
		return respondAppError(c, err)
	}

	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		UserID:        userID,
		PostID:        postID,
		Title:         formValue(form, "title"),
		Ingredients:   formValue(form, "ingredients"),
		Description:   formValue(form, "description"),
		Calories:      calories,
		TagNames:      formValues(form, "tag_names"),
		KeepImageURLs: formValues(form, "keep_image_urls"),
		NewImageURLs:  formValues(form, "image_urls"),
		Uploads:       uploads,
	})
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	deleted, err := s.postService.DeletePost(c.UserContext(), userID, postID)
	if err != nil {
		return respondAppError(c, err)
	}
	if !deleted {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Post", postID))
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ToggleLike handles POST /api/posts/:id/like.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	liked, err := s.likeService.Toggle(c.UserContext(), userID, postID)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"liked": liked})
}
