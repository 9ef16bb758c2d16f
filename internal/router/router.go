package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chi_middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/turingcompletejeff/blogsite/internal/config"
	"github.com/turingcompletejeff/blogsite/internal/domain"
	"github.com/turingcompletejeff/blogsite/internal/middleware"
	"github.com/turingcompletejeff/blogsite/internal/middleware/metrics"
	"github.com/turingcompletejeff/blogsite/internal/middleware/ratelimiter"
	"github.com/turingcompletejeff/blogsite/internal/setup"
	"github.com/turingcompletejeff/blogsite/internal/upload"
)

// New configures the full route tree: public pages, authenticated form
// routes, the admin area and the JSON console API.
func New(deps *setup.Dependencies) chi.Router {
	r := chi.NewRouter()

	r.Use(chi_middleware.RequestID)
	r.Use(chi_middleware.RealIP)
	r.Use(chi_middleware.Recoverer)
	r.Use(chi_middleware.Compress(5))
	r.Use(metrics.Middleware)

	// Pages carry inline styles only; scripts come from the same origin.
	csp := "default-src 'self'; img-src 'self' data:; style-src 'self' 'unsafe-inline'; frame-ancestors 'none'"
	r.Use(middleware.SecurityHeadersWithCSP(deps.Config.Public.SecureCookies, csp))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Public.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	h := deps.Handler
	authMw := deps.AuthMiddleware

	// Caps on what the server will read from an upload form, applied before
	// any middleware parses the body. Sized as the category's file limit
	// plus room for the accompanying form fields.
	uploads := deps.Config.Public.Uploads
	blogPostBody := middleware.MaxRequestBody(uploadBodyLimit(uploads, domain.CategoryBlogPosts))
	profileBody := middleware.MaxRequestBody(uploadBodyLimit(uploads, domain.CategoryProfiles))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	// Stored images. The file store re-validates every name.
	r.Get("/uploads/{category}/{name}", h.ServeUploadHandler)

	// Public pages: login state only changes what the templates show.
	r.Group(func(r chi.Router) {
		r.Use(authMw.OptionalAuth())
		r.Use(middleware.GenerateCSRFToken(deps.Config.Public.SecureCookies))
		r.Use(middleware.ValidateCSRFToken())

		r.Get("/", h.IndexGetHandler)
		r.Get("/posts/{id}", h.PostGetHandler)

		// Credential endpoints are brute-force targets: small burst per IP,
		// one fresh attempt every ten seconds after that.
		authLimit := middleware.RateLimit(ratelimiter.New(0.1, 5, time.Hour), middleware.ClientIP)

		r.Get("/login", h.LoginGetHandler)
		r.With(authLimit).Post("/login", h.LoginPostHandler)
		r.Get("/register", h.RegisterGetHandler)
		r.With(authLimit).Post("/register", h.RegisterPostHandler)
	})

	// Authenticated form routes.
	r.Group(func(r chi.Router) {
		r.Use(authMw.NeedAuth())

		r.Group(func(r chi.Router) {
			r.Use(middleware.GenerateCSRFToken(deps.Config.Public.SecureCookies))
			r.Use(middleware.ValidateCSRFToken())

			r.Get("/logout", h.LogoutHandler)
			r.Get("/drafts", h.DraftsGetHandler)

			r.Get("/posts/new", h.NewPostGetHandler)
			r.Get("/posts/{id}/edit", h.EditPostGetHandler)
			r.Post("/posts/{id}/publish", h.PublishPostHandler)
			r.Post("/posts/{id}/delete", h.DeletePostHandler)

			r.Get("/profile", h.ProfileGetHandler)
		})

		// Upload forms get their body cap ahead of the CSRF middleware,
		// which is what parses the multipart body.
		r.Group(func(r chi.Router) {
			r.Use(blogPostBody)
			r.Use(middleware.GenerateCSRFToken(deps.Config.Public.SecureCookies))
			r.Use(middleware.ValidateCSRFToken())

			r.Post("/posts/new", h.NewPostPostHandler)
			r.Post("/posts/{id}/edit", h.EditPostPostHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(profileBody)
			r.Use(middleware.GenerateCSRFToken(deps.Config.Public.SecureCookies))
			r.Use(middleware.ValidateCSRFToken())

			r.Post("/profile", h.ProfilePostHandler)
		})
	})

	// Admin area.
	r.Group(func(r chi.Router) {
		r.Use(authMw.AdminOnly())
		r.Use(middleware.GenerateCSRFToken(deps.Config.Public.SecureCookies))
		r.Use(middleware.ValidateCSRFToken())

		r.Get("/admin", h.AdminDashboardHandler)
		r.Post("/admin/users/{userId}/roles", h.UpdateRolesHandler)
	})

	// JSON console API. CSRF does not apply: requests authenticate with the
	// token, not an ambient cookie form.
	r.Group(func(r chi.Router) {
		r.Use(authMw.AdminOnly())

		r.Post("/api/rcon/command", h.RconCommandHandler)
		r.Get("/api/rcon/status", h.RconStatusHandler)
	})

	return r
}

func uploadBodyLimit(uploads config.Uploads, category domain.Category) int64 {
	policy, ok := uploads.Policy(string(category))
	if !ok {
		return upload.MaxRequestSize(32 << 20)
	}
	return upload.MaxRequestSize(policy.MaxSizeBytes)
}
