package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-blog/pkg/simpleblog"
)

// AuthorsHandler serves the /authors resource.
type AuthorsHandler struct {
	service simpleblog.Service
}

// NewAuthorsHandler creates a new authors handler
func NewAuthorsHandler(service simpleblog.Service) *AuthorsHandler {
	return &AuthorsHandler{service: service}
}

// Routes returns the authors router
func (h *AuthorsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/checkEmail", h.CheckEmail)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Get("/{id}/blogPosts", h.ListBlogPosts)
	r.Post("/{id}/uploadAvatar", h.UploadAvatar)

	return r
}

// CreatedResponse is returned when a record was created.
type CreatedResponse struct {
	ID string `json:"id"`
}

// CheckEmailRequest is the body of POST /authors/checkEmail.
type CheckEmailRequest struct {
	Email string `json:"email"`
}

// CheckEmailResponse reports whether the address is in use.
type CheckEmailResponse struct {
	Value bool `json:"value"`
}

// UploadAvatarResponse is returned after an avatar upload.
type UploadAvatarResponse struct {
	Status string `json:"status"`
	Avatar string `json:"avatar"`
}

// List handles GET /authors
func (h *AuthorsHandler) List(w http.ResponseWriter, r *http.Request) {
	authors, err := h.service.ListAuthors(r.Context())
	if err != nil {
		renderServiceError(w, r, "Failed to list authors", err)
		return
	}
	render.JSON(w, r, authors)
}

// Get handles GET /authors/{id}
func (h *AuthorsHandler) Get(w http.ResponseWriter, r *http.Request) {
	author, err := h.service.GetAuthor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		renderServiceError(w, r, "Failed to get author", err)
		return
	}
	render.JSON(w, r, author)
}

// Create handles POST /authors
func (h *AuthorsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req simpleblog.CreateAuthorRequest
	if err := decodeBody(r, "create author", simpleblog.AuthorCreateRules, false, &req); err != nil {
		renderDecodeError(w, r, err)
		return
	}

	author, err := h.service.CreateAuthor(r.Context(), req)
	if err != nil {
		renderServiceError(w, r, "Failed to create author", err)
		return
	}

	slog.Info("Author created", "author_id", author.ID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, CreatedResponse{ID: author.ID})
}

// CheckEmail handles POST /authors/checkEmail
func (h *AuthorsHandler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	var req CheckEmailRequest
	if err := decodeBody(r, "check email", simpleblog.CheckEmailRules, false, &req); err != nil {
		renderDecodeError(w, r, err)
		return
	}

	exists, err := h.service.CheckEmailExists(r.Context(), req.Email)
	if err != nil {
		renderServiceError(w, r, "Failed to check email", err)
		return
	}
	render.JSON(w, r, CheckEmailResponse{Value: exists})
}

// Update handles PUT /authors/{id}
func (h *AuthorsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch simpleblog.AuthorPatch
	if err := decodeBody(r, "update author", simpleblog.AuthorUpdateRules, true, &patch); err != nil {
		renderDecodeError(w, r, err)
		return
	}

	author, err := h.service.UpdateAuthor(r.Context(), id, patch)
	if err != nil {
		renderServiceError(w, r, "Failed to update author", err)
		return
	}
	render.JSON(w, r, author)
}

// Delete handles DELETE /authors/{id}
func (h *AuthorsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeleteAuthor(r.Context(), id); err != nil {
		renderServiceError(w, r, "Failed to delete author", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListBlogPosts handles GET /authors/{id}/blogPosts
func (h *AuthorsHandler) ListBlogPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.ListAuthorBlogPosts(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		renderServiceError(w, r, "Failed to list author blog posts", err)
		return
	}
	render.JSON(w, r, posts)
}

// UploadAvatar handles POST /authors/{id}/uploadAvatar with a multipart
// "avatar" file field.
func (h *AuthorsHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	req, cleanup, err := uploadRequest(r, chi.URLParam(r, "id"), "avatar")
	if err != nil {
		renderServiceError(w, r, "Failed to read avatar upload", err)
		return
	}
	defer cleanup()

	author, err := h.service.UploadAvatar(r.Context(), req)
	if err != nil {
		renderServiceError(w, r, "Failed to upload avatar", err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, UploadAvatarResponse{Status: "success", Avatar: author.Avatar})
}
