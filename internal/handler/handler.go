package handler

import (
	"html/template"

	"github.com/turingcompletejeff/blogsite/internal/config"
	"github.com/turingcompletejeff/blogsite/internal/domain"
	"github.com/turingcompletejeff/blogsite/internal/markdown"
	"github.com/turingcompletejeff/blogsite/internal/service"
)

// AccountStorage is the slice of user storage the handlers need beyond what
// the auth service covers: admin listing, role management and profile
// picture bookkeeping.
type AccountStorage interface {
	Users() ([]domain.User, error)
	UpdateRoles(id domain.UserId, roles []string) error
	UpdateProfilePicture(id domain.UserId, filename string) (string, error)
}

type Handler struct {
	Templates map[string]*template.Template
	Public    config.Public
	Auth      service.AuthService
	Posts     service.PostService
	Uploads   *service.Upload
	Console   *service.Console
	Accounts  AccountStorage
	Markdown  *markdown.Renderer
}

func New(
	templates map[string]*template.Template,
	publicCfg config.Public,
	auth service.AuthService,
	posts service.PostService,
	uploads *service.Upload,
	console *service.Console,
	accounts AccountStorage,
	renderer *markdown.Renderer,
) *Handler {
	return &Handler{
		Templates: templates,
		Public:    publicCfg,
		Auth:      auth,
		Posts:     posts,
		Uploads:   uploads,
		Console:   console,
		Accounts:  accounts,
		Markdown:  renderer,
	}
}
