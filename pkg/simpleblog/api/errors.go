package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/tendant/simple-blog/pkg/simpleblog"
	"github.com/tendant/simple-blog/pkg/simpleblog/validation"
)

// ErrResponse is the JSON body of every failed request.
type ErrResponse struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	StatusText string       `json:"status"`
	ErrorText  string       `json:"error,omitempty"`
	Errors     []FieldError `json:"errors,omitempty"`
}

// FieldError reports one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

// ErrInvalidRequest is a 400 for a body that could not be read at all.
func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

// ErrValidation is a 400 listing every failed field.
func ErrValidation(err *simpleblog.ValidationError) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		ErrorText:      "validation failed",
		Errors:         fieldErrors(err.Errors),
	}
}

// ErrNotFound is a 404.
func ErrNotFound(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusNotFound,
		StatusText:     "Resource not found.",
		ErrorText:      err.Error(),
	}
}

// ErrConflict is a 409.
func ErrConflict(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusConflict,
		StatusText:     "Conflict.",
		ErrorText:      err.Error(),
	}
}

// ErrNotImplemented is a 501 for features disabled by configuration.
func ErrNotImplemented(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusNotImplemented,
		StatusText:     "Not implemented.",
		ErrorText:      err.Error(),
	}
}

// ErrInternal is a 500. The underlying error is logged, not returned.
func ErrInternal(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     "Internal server error.",
		ErrorText:      "an unexpected error occurred",
	}
}

// errorRenderer maps a service error onto its HTTP response.
func errorRenderer(err error) render.Renderer {
	var verr *simpleblog.ValidationError
	switch {
	case errors.As(err, &verr):
		return ErrValidation(verr)
	case simpleblog.IsNotFound(err):
		return ErrNotFound(err)
	case errors.Is(err, simpleblog.ErrInvalidUpload):
		return ErrInvalidRequest(err)
	case errors.Is(err, simpleblog.ErrEmailTaken):
		return ErrConflict(err)
	case errors.Is(err, simpleblog.ErrMediaStoreNotConfigured):
		return ErrNotImplemented(err)
	default:
		return ErrInternal(err)
	}
}

// renderServiceError logs err and writes the mapped error response.
func renderServiceError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	resp := errorRenderer(err)
	if e, ok := resp.(*ErrResponse); ok && e.HTTPStatusCode >= http.StatusInternalServerError {
		slog.Error(msg, "error", err, "path", r.URL.Path)
	} else {
		slog.Debug(msg, "error", err, "path", r.URL.Path)
	}
	render.Render(w, r, resp)
}

func fieldErrors(errs []validation.FieldError) []FieldError {
	out := make([]FieldError, 0, len(errs))
	for _, fe := range errs {
		out = append(out, FieldError{Field: fe.Field, Message: fe.Message})
	}
	return out
}
