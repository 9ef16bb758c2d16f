package handler

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/turingcompletejeff/blogsite/internal/domain"
	"github.com/turingcompletejeff/blogsite/internal/logger"
	"github.com/turingcompletejeff/blogsite/internal/middleware"
	"github.com/turingcompletejeff/blogsite/internal/service"
	"github.com/turingcompletejeff/blogsite/internal/upload"
	"github.com/turingcompletejeff/blogsite/internal/utils"
)

// ServeUploadHandler streams a stored file. The store validates the name
// again, so hostile path values land on 404 instead of the filesystem.
func (h *Handler) ServeUploadHandler(w http.ResponseWriter, r *http.Request) {
	category := domain.Category(chi.URLParam(r, "category"))
	if !category.Valid() {
		http.NotFound(w, r)
		return
	}
	name := chi.URLParam(r, "name")

	reader, err := h.Uploads.Fetch(category, name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer reader.Close()

	if format, ok := upload.FormatForName(name); ok {
		w.Header().Set("Content-Type", format.MimeType())
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")

	if _, err := io.Copy(w, reader); err != nil {
		logger.Log.Warn("failed to stream upload", "category", category, "name", name, "error", err)
	}
}

func (h *Handler) ProfileGetHandler(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)

	// The token only carries identity; pull the full record for the page.
	full, err := h.Auth.UserById(user.Id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var templateData struct {
		Profile domain.User
	}
	templateData.Profile = full
	h.renderTemplate(w, r, "profile.html", templateData)
}

// ProfilePostHandler replaces the profile picture: new file through the
// pipeline, record updated, previous files removed last so a failure
// anywhere leaves the old picture intact.
func (h *Handler) ProfilePostHandler(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)

	asset, uploaded, err := h.processFormImage(r, domain.CategoryProfiles)
	if err != nil {
		h.redirectWithFlash(w, r, "/profile", flashCookieError, rejectionMessage(err))
		return
	}
	if !uploaded {
		h.redirectWithFlash(w, r, "/profile", flashCookieError, "Choose an image first.")
		return
	}

	previous, err := h.Accounts.UpdateProfilePicture(user.Id, asset.Filename)
	if err != nil {
		h.Uploads.Remove(domain.CategoryProfiles, asset.Filename, asset.ThumbnailFilename)
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if previous != "" && previous != asset.Filename {
		h.Uploads.Remove(domain.CategoryProfiles, previous, service.ThumbnailPrefix+previous)
	}

	h.redirectWithFlash(w, r, "/profile", flashCookieSuccess, "Profile picture updated.")
}
