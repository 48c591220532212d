package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/tendant/simple-blog/pkg/simpleblog"
	"github.com/tendant/simple-blog/pkg/simpleblog/urlstrategy"
)

// RouterConfig tunes the middleware stack of NewRouter.
type RouterConfig struct {
	MaxBodyBytes   int64
	AllowedOrigins []string
	RequestTimeout time.Duration
	// AccessLog enables chi's request logger.
	AccessLog bool
}

// DefaultRouterConfig returns the settings used by the server binary.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		MaxBodyBytes:   20 << 20,
		AllowedOrigins: []string{"*"},
		RequestTimeout: 60 * time.Second,
		AccessLog:      true,
	}
}

// NewRouter wires every resource of the blog API onto one chi router.
func NewRouter(service simpleblog.Service, cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if cfg.AccessLog {
		r.Use(middleware.Logger)
	}
	r.Use(RecoveryMiddleware)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	r.Use(CORSMiddleware(cfg.AllowedOrigins, nil, nil))
	r.Use(RequestSizeLimitMiddleware(cfg.MaxBodyBytes))

	r.Get("/health", Health)
	r.Mount("/authors", NewAuthorsHandler(service).Routes())
	r.Mount("/blogPosts", NewBlogPostsHandler(service).Routes())
	r.Mount(urlstrategy.MediaPath, NewMediaHandler(service).Routes())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Render(w, r, &ErrResponse{
			HTTPStatusCode: http.StatusNotFound,
			StatusText:     "Resource not found.",
			ErrorText:      "no route for " + r.Method + " " + r.URL.Path,
		})
	})

	return r
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}
