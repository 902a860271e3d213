package server

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"foodconnect/internal/models"
	"foodconnect/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postForm builds a multipart request body for the post endpoints.
type postForm struct {
	fields map[string][]string
	files  []testutilUpload
}

type testutilUpload struct {
	filename    string
	contentType string
	content     []byte
}

func (f *postForm) encode(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, values := range f.fields {
		for _, v := range values {
			require.NoError(t, w.WriteField(key, v))
		}
	}
	for _, file := range f.files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename=%q`, file.filename))
		header.Set("Content-Type", file.contentType)
		part, err := w.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(file.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func postFormRequest(t *testing.T, method, target, token string, form *postForm) *http.Request {
	t.Helper()
	body, contentType := form.encode(t)
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func pngFile(t *testing.T, name string) testutilUpload {
	t.Helper()
	upload := testutil.PNGUpload(name, 2, 2)
	return testutilUpload{filename: upload.Filename, contentType: upload.ContentType, content: upload.Content}
}

func TestCreatePostEndpoint(t *testing.T) {
	srv, app, db := newTestServer(t)
	_, token := seedServerUser(t, srv, db, "poster", models.RoleUser)

	form := &postForm{
		fields: map[string][]string{
			"title":       {"Shakshuka"},
			"ingredients": {"eggs, tomatoes"},
			"description": {"weekend breakfast"},
			"calories":    {"320.5"},
			"tag_names":   {"Breakfast", " eggs "},
			"image_urls":  {"https://cdn.example.com/pan.jpg"},
		},
		files: []testutilUpload{pngFile(t, "pan.png")},
	}

	resp, err := app.Test(postFormRequest(t, http.MethodPost, "/api/posts/", token, form))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var post models.PostInfo
	decodeBody(t, resp, &post)
	assert.Equal(t, "Shakshuka", post.Title)
	assert.Equal(t, 320.5, post.Calories)
	assert.ElementsMatch(t, []string{"breakfast", "eggs"}, post.TagNames)
	assert.Len(t, post.ImageURLs, 2)
}

func TestCreatePostEndpoint_Rejections(t *testing.T) {
	srv, app, db := newTestServer(t)
	_, token := seedServerUser(t, srv, db, "rejected", models.RoleUser)

	// Missing title.
	form := &postForm{fields: map[string][]string{"ingredients": {"salt"}}}
	resp, err := app.Test(postFormRequest(t, http.MethodPost, "/api/posts/", token, form))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Non-numeric calories.
	form = &postForm{fields: map[string][]string{"title": {"ok"}, "calories": {"lots"}}}
	resp, err = app.Test(postFormRequest(t, http.MethodPost, "/api/posts/", token, form))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unsupported upload format maps to 415.
	form = &postForm{
		fields: map[string][]string{"title": {"ok"}, "ingredients": {"salt"}},
		files:  []testutilUpload{{filename: "doc.pdf", contentType: "application/pdf", content: []byte("x")}},
	}
	resp, err = app.Test(postFormRequest(t, http.MethodPost, "/api/posts/", token, form))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)

	// No auth.
	req := postFormRequest(t, http.MethodPost, "/api/posts/", "bad-token", &postForm{fields: map[string][]string{"title": {"x"}}})
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGetPostsEndpoint_AnonymousAndViewer(t *testing.T) {
	srv, app, db := newTestServer(t)
	_, token := seedServerUser(t, srv, db, "browser", models.RoleUser)

	form := &postForm{fields: map[string][]string{"title": {"Visible Dish"}, "ingredients": {"x"}}}
	resp, err := app.Test(postFormRequest(t, http.MethodPost, "/api/posts/", token, form))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.PostInfo
	decodeBody(t, resp, &created)

	likeResp, err := app.Test(jsonRequest(t, http.MethodPost, fmt.Sprintf("/api/posts/%d/like", created.ID), nil, token))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, likeResp.StatusCode)
	var likeBody struct {
		Liked bool `json:"liked"`
	}
	decodeBody(t, likeResp, &likeBody)
	assert.True(t, likeBody.Liked)

	// Anonymous list: the like count shows, the viewer flag does not.
	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/posts/", nil, ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var anonymous []models.PostInfo
	decodeBody(t, resp, &anonymous)
	require.Len(t, anonymous, 1)
	assert.Equal(t, 1, anonymous[0].Likes)
	assert.False(t, anonymous[0].IsLikedByCurrentUser)

	// The liker sees their own flag through optional auth.
	resp, err = app.Test(jsonRequest(t, http.MethodGet, fmt.Sprintf("/api/posts/%d", created.ID), nil, token))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var asViewer models.PostInfo
	decodeBody(t, resp, &asViewer)
	assert.True(t, asViewer.IsLikedByCurrentUser)
}

func TestSearchPostsEndpoint(t *testing.T) {
	srv, app, db := newTestServer(t)
	_, token := seedServerUser(t, srv, db, "searcher", models.RoleUser)

	for _, title := range []string{"Spicy Ramen", "Mild Soup"} {
		form := &postForm{fields: map[string][]string{"title": {title}, "ingredients": {"x"}}}
		resp, err := app.Test(postFormRequest(t, http.MethodPost, "/api/posts/", token, form))
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/posts/search?q=ramen", nil, ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var found []models.PostInfo
	decodeBody(t, resp, &found)
	require.Len(t, found, 1)
	assert.Equal(t, "Spicy Ramen", found[0].Title)

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/posts/search", nil, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdatePostEndpoint_Ownership(t *testing.T) {
	srv, app, db := newTestServer(t)
	_, ownerToken := seedServerUser(t, srv, db, "owner", models.RoleUser)
	_, strangerToken := seedServerUser(t, srv, db, "stranger", models.RoleUser)

	form := &postForm{fields: map[string][]string{"title": {"Original"}, "ingredients": {"x"}}}
	resp, err := app.Test(postFormRequest(t, http.MethodPost, "/api/posts/", ownerToken, form))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.PostInfo
	decodeBody(t, resp, &created)

	update := &postForm{fields: map[string][]string{"title": {"Hijacked"}, "ingredients": {"x"}}}
	resp, err = app.Test(postFormRequest(t, http.MethodPut, fmt.Sprintf("/api/posts/%d", created.ID), strangerToken, update))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	update = &postForm{fields: map[string][]string{"title": {"Revised"}, "ingredients": {"x"}}}
	resp, err = app.Test(postFormRequest(t, http.MethodPut, fmt.Sprintf("/api/posts/%d", created.ID), ownerToken, update))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.PostInfo
	decodeBody(t, resp, &updated)
	assert.Equal(t, "Revised", updated.Title)
}

func TestDeletePostEndpoint(t *testing.T) {
	srv, app, db := newTestServer(t)
	_, token := seedServerUser(t, srv, db, "remover", models.RoleUser)

	form := &postForm{fields: map[string][]string{"title": {"Short Lived"}, "ingredients": {"x"}}}
	resp, err := app.Test(postFormRequest(t, http.MethodPost, "/api/posts/", token, form))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.PostInfo
	decodeBody(t, resp, &created)

	resp, err = app.Test(jsonRequest(t, http.MethodDelete, fmt.Sprintf("/api/posts/%d", created.ID), nil, token))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Deleting again reports not found.
	resp, err = app.Test(jsonRequest(t, http.MethodDelete, fmt.Sprintf("/api/posts/%d", created.ID), nil, token))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Bad ID is a 400.
	resp, err = app.Test(jsonRequest(t, http.MethodDelete, "/api/posts/abc", nil, token))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
