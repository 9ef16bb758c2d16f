package setup

import (
	"fmt"
	"html/template"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/turingcompletejeff/blogsite/internal/config"
	"github.com/turingcompletejeff/blogsite/internal/domain"
	"github.com/turingcompletejeff/blogsite/internal/handler"
	"github.com/turingcompletejeff/blogsite/internal/jwt"
	"github.com/turingcompletejeff/blogsite/internal/markdown"
	"github.com/turingcompletejeff/blogsite/internal/middleware"
	"github.com/turingcompletejeff/blogsite/internal/service"
	"github.com/turingcompletejeff/blogsite/internal/storage/fs"
	"github.com/turingcompletejeff/blogsite/internal/storage/pg"
)

const baseTemplate = "base.html"

type Dependencies struct {
	Handler        *handler.Handler
	AuthMiddleware *middleware.Auth
	Config         *config.Config
	Storage        *pg.Storage
}

func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	store, err := pg.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	fileStore, err := fs.New(map[domain.Category]string{
		domain.CategoryBlogPosts: cfg.Public.Uploads.BlogPosts.Dir,
		domain.CategoryProfiles:  cfg.Public.Uploads.Profiles.Dir,
	})
	if err != nil {
		store.Cleanup()
		return nil, fmt.Errorf("failed to initialize upload store: %w", err)
	}

	templates, err := loadTemplates(cfg.Public.TemplatesDir)
	if err != nil {
		store.Cleanup()
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	jwtSvc := jwt.New(cfg.JwtKey(), cfg.JwtTTL())
	uploads := service.NewUpload(fileStore, cfg.Public.Uploads)
	auth := service.NewAuth(store, jwtSvc)
	posts := service.NewPost(store, uploads)
	console := service.NewConsole(cfg.Private.Rcon)
	renderer := markdown.New()

	h := handler.New(templates, cfg.Public, auth, posts, uploads, console, store, renderer)

	return &Dependencies{
		Handler:        h,
		AuthMiddleware: middleware.NewAuth(jwtSvc, cfg.Public.SecureCookies),
		Config:         cfg,
		Storage:        store,
	}, nil
}

func formatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}

func loadTemplates(dir string) (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template)
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	funcs := template.FuncMap{
		"formatDate":    formatDate,
		"formatDatePtr": formatDatePtr,
	}

	for _, f := range files {
		if filepath.Ext(f.Name()) != ".html" || f.Name() == baseTemplate {
			continue
		}
		tmpl, err := template.New(baseTemplate).Funcs(funcs).ParseFiles(
			path.Join(dir, baseTemplate),
			path.Join(dir, f.Name()),
		)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", f.Name(), err)
		}
		templates[f.Name()] = tmpl
	}
	return templates, nil
}
