package api

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-blog/pkg/simpleblog"
)

// BlogPostsHandler serves the /blogPosts resource and its comments.
type BlogPostsHandler struct {
	service simpleblog.Service
}

// NewBlogPostsHandler creates a new blog posts handler
func NewBlogPostsHandler(service simpleblog.Service) *BlogPostsHandler {
	return &BlogPostsHandler{service: service}
}

// Routes returns the blog posts router
func (h *BlogPostsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
		r.Post("/uploadCover", h.UploadCover)
		r.Get("/downloadPDF", h.DownloadPDF)

		r.Get("/comments", h.ListComments)
		r.Post("/comments", h.AddComment)
		r.Delete("/comments/{commentId}", h.DeleteComment)
	})

	return r
}

// UploadCoverResponse is returned after a cover upload.
type UploadCoverResponse struct {
	Status string `json:"status"`
	Cover  string `json:"cover"`
}

// List handles GET /blogPosts?title=
func (h *BlogPostsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := simpleblog.BlogPostFilter{Title: r.URL.Query().Get("title")}

	posts, err := h.service.ListBlogPosts(r.Context(), filter)
	if err != nil {
		renderServiceError(w, r, "Failed to list blog posts", err)
		return
	}
	render.JSON(w, r, posts)
}

// Get handles GET /blogPosts/{id}
func (h *BlogPostsHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.GetBlogPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		renderServiceError(w, r, "Failed to get blog post", err)
		return
	}
	render.JSON(w, r, post)
}

// Create handles POST /blogPosts
func (h *BlogPostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req simpleblog.CreateBlogPostRequest
	if err := decodeBody(r, "create blog post", simpleblog.BlogPostCreateRules, false, &req); err != nil {
		renderDecodeError(w, r, err)
		return
	}

	post, err := h.service.CreateBlogPost(r.Context(), req)
	if err != nil {
		renderServiceError(w, r, "Failed to create blog post", err)
		return
	}

	slog.Info("Blog post created", "post_id", post.ID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, CreatedResponse{ID: post.ID})
}

// Update handles PUT /blogPosts/{id}
func (h *BlogPostsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch simpleblog.BlogPostPatch
	if err := decodeBody(r, "update blog post", simpleblog.BlogPostUpdateRules, true, &patch); err != nil {
		renderDecodeError(w, r, err)
		return
	}

	post, err := h.service.UpdateBlogPost(r.Context(), id, patch)
	if err != nil {
		renderServiceError(w, r, "Failed to update blog post", err)
		return
	}
	render.JSON(w, r, post)
}

// Delete handles DELETE /blogPosts/{id}
func (h *BlogPostsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteBlogPost(r.Context(), chi.URLParam(r, "id")); err != nil {
		renderServiceError(w, r, "Failed to delete blog post", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadCover handles POST /blogPosts/{id}/uploadCover with a multipart
// "coverPhoto" file field.
func (h *BlogPostsHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	req, cleanup, err := uploadRequest(r, chi.URLParam(r, "id"), "coverPhoto")
	if err != nil {
		renderServiceError(w, r, "Failed to read cover upload", err)
		return
	}
	defer cleanup()

	post, err := h.service.UploadCover(r.Context(), req)
	if err != nil {
		renderServiceError(w, r, "Failed to upload cover", err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, UploadCoverResponse{Status: "success", Cover: post.Cover})
}

// DownloadPDF handles GET /blogPosts/{id}/downloadPDF. The document is built
// in memory first so a render failure still produces a proper error response.
func (h *BlogPostsHandler) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var buf bytes.Buffer
	contentType, err := h.service.ExportBlogPostPDF(r.Context(), id, &buf)
	if err != nil {
		renderServiceError(w, r, "Failed to export blog post", err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".pdf"))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write PDF response", "post_id", id, "error", err)
	}
}

// ListComments handles GET /blogPosts/{id}/comments
func (h *BlogPostsHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.service.ListComments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		renderServiceError(w, r, "Failed to list comments", err)
		return
	}
	render.JSON(w, r, comments)
}

// AddComment handles POST /blogPosts/{id}/comments
func (h *BlogPostsHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req simpleblog.CreateCommentRequest
	if err := decodeBody(r, "add comment", simpleblog.CommentRules, false, &req); err != nil {
		renderDecodeError(w, r, err)
		return
	}

	comment, err := h.service.AddComment(r.Context(), id, req)
	if err != nil {
		renderServiceError(w, r, "Failed to add comment", err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, comment)
}

// DeleteComment handles DELETE /blogPosts/{id}/comments/{commentId}
func (h *BlogPostsHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteComment(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "commentId"))
	if err != nil {
		renderServiceError(w, r, "Failed to delete comment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
