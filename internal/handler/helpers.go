package handler

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/turingcompletejeff/blogsite/internal/domain"
	internal_errors "github.com/turingcompletejeff/blogsite/internal/errors"
	"github.com/turingcompletejeff/blogsite/internal/upload"
)

const (
	flashCookieError   = "flash_error"
	flashCookieSuccess = "flash_success"
)

// setFlash stores a one-shot message for the next page render. Base64
// keeps arbitrary characters cookie-safe.
func (h *Handler) setFlash(w http.ResponseWriter, name, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    base64.StdEncoding.EncodeToString([]byte(message)),
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   h.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// consumeFlash reads and clears a flash cookie.
func (h *Handler) consumeFlash(w http.ResponseWriter, r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	decoded, err := base64.StdEncoding.DecodeString(cookie.Value)
	if err != nil {
		return ""
	}
	return string(decoded)
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, targetURL, cookieName, message string) {
	h.setFlash(w, cookieName, message)
	http.Redirect(w, r, targetURL, http.StatusSeeOther)
}

// postIdParam parses the {id} route parameter.
func postIdParam(r *http.Request) (domain.PostId, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, &internal_errors.ErrorWithStatusCode{Message: "Invalid post id", StatusCode: http.StatusBadRequest}
	}
	return id, nil
}

// rejectionMessage maps pipeline errors to a message fit for a flash
// cookie. Unrecognized errors fall through to a generic line so internal
// detail stays out of the page.
func rejectionMessage(err error) string {
	switch {
	case errors.Is(err, upload.ErrOversize):
		return "Image is too large."
	case errors.Is(err, upload.ErrBadExtension):
		return "File type is not allowed."
	case errors.Is(err, upload.ErrBadMagicNumber):
		return "File content does not match its extension."
	case errors.Is(err, upload.ErrCorruptImage):
		return "Image appears to be corrupt."
	case errors.Is(err, upload.ErrEmptyFilename):
		return "Filename is empty after sanitizing."
	}
	return "Upload failed."
}

// uploadOutcome labels a pipeline result for metrics.
func uploadOutcome(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, upload.ErrOversize):
		return "oversize"
	case errors.Is(err, upload.ErrBadExtension):
		return "bad_extension"
	case errors.Is(err, upload.ErrBadMagicNumber):
		return "bad_magic"
	case errors.Is(err, upload.ErrCorruptImage):
		return "corrupt"
	case errors.Is(err, upload.ErrEmptyFilename):
		return "empty_filename"
	}
	return "error"
}
