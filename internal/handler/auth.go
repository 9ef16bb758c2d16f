package handler

import (
	"errors"
	"html/template"
	"net/http"
	"time"

	internal_errors "github.com/turingcompletejeff/blogsite/internal/errors"
	"github.com/turingcompletejeff/blogsite/internal/logger"
)

const accessTokenCookie = "accessToken"

func (h *Handler) LoginGetHandler(w http.ResponseWriter, r *http.Request) {
	h.renderTemplate(w, r, "login.html", nil)
}

func (h *Handler) LoginPostHandler(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")

	_, token, err := h.Auth.Login(username, password)
	if err != nil {
		h.redirectWithFlash(w, r, "/login", flashCookieError, template.HTMLEscapeString(errorMessage(err)))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.Public.JwtTTL / time.Second),
		HttpOnly: true,
		Secure:   h.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	logger.Log.Info("user logged in", "username", username)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) RegisterGetHandler(w http.ResponseWriter, r *http.Request) {
	h.renderTemplate(w, r, "register.html", nil)
}

func (h *Handler) RegisterPostHandler(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	email := r.FormValue("email")
	password := r.FormValue("password")

	if _, err := h.Auth.Register(username, email, password); err != nil {
		h.redirectWithFlash(w, r, "/register", flashCookieError, template.HTMLEscapeString(errorMessage(err)))
		return
	}

	h.redirectWithFlash(w, r, "/login", flashCookieSuccess, "Account created. You can now log in.")
}

func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     accessTokenCookie,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// errorMessage extracts the user-facing message from service errors.
// Anything without an explicit status code stays generic.
func errorMessage(err error) string {
	var statusErr *internal_errors.ErrorWithStatusCode
	if errors.As(err, &statusErr) {
		return statusErr.Message
	}
	logger.Log.Error("unexpected error", "error", err)
	return "Internal error. Please try again."
}
