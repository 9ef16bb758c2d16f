package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/turingcompletejeff/blogsite/internal/domain"
	internal_errors "github.com/turingcompletejeff/blogsite/internal/errors"
	"github.com/turingcompletejeff/blogsite/internal/logger"
	"github.com/turingcompletejeff/blogsite/internal/utils"
)

func (h *Handler) AdminDashboardHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.Accounts.Users()
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	posts, err := h.Posts.All()
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var templateData struct {
		Users []domain.User
		Posts []domain.Post
	}
	templateData.Users = users
	templateData.Posts = posts
	h.renderTemplate(w, r, "admin.html", templateData)
}

// UpdateRolesHandler replaces a user's role set from the dashboard form.
// Checkbox fields arrive only when checked, so an empty set is expressible.
func (h *Handler) UpdateRolesHandler(w http.ResponseWriter, r *http.Request) {
	userId, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, &internal_errors.ErrorWithStatusCode{
			Message: "Invalid user id", StatusCode: http.StatusBadRequest})
		return
	}

	var roles []string
	for _, role := range []string{domain.RoleAdmin, domain.RoleAuthor} {
		if r.FormValue("role_"+role) == "on" {
			roles = append(roles, role)
		}
	}

	if err := h.Accounts.UpdateRoles(userId, roles); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	logger.Log.Info("roles updated", "userId", userId, "roles", roles)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}
