package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/turingcompletejeff/blogsite/internal/domain"
	"github.com/turingcompletejeff/blogsite/internal/logger"
	"github.com/turingcompletejeff/blogsite/internal/middleware"
)

// CommonTemplateData holds fields that are common to all page templates.
// Available in templates as .Common via the TemplateData wrapper.
type CommonTemplateData struct {
	Error          string
	Success        string
	User           *domain.User
	CSRFToken      string
	ConsoleEnabled bool
}

// TemplateData wraps page-specific data with common template data.
// Templates access page data via .Data and common data via .Common.
type TemplateData struct {
	Data   any
	Common CommonTemplateData
}

func (h *Handler) initCommonTemplateData(w http.ResponseWriter, r *http.Request) CommonTemplateData {
	return CommonTemplateData{
		Error:          h.consumeFlash(w, r, flashCookieError),
		Success:        h.consumeFlash(w, r, flashCookieSuccess),
		User:           middleware.UserFromContext(r),
		CSRFToken:      middleware.CSRFTokenFromContext(r),
		ConsoleEnabled: h.Console.Enabled(),
	}
}

func (h *Handler) renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	h.renderTemplateWithError(w, r, name, data, "")
}

func (h *Handler) renderTemplateWithError(w http.ResponseWriter, r *http.Request, name string, data any, errMsg string) {
	tmpl, ok := h.Templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("Template %s not found", name), http.StatusInternalServerError)
		return
	}

	common := h.initCommonTemplateData(w, r)
	if errMsg != "" {
		common.Error = errMsg
	}

	wrapped := TemplateData{
		Data:   data,
		Common: common,
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, wrapped); err != nil {
		logger.Log.Error("error executing template", "template", name, "error", err)
		http.Error(w, "Internal Server Error rendering template", http.StatusInternalServerError)
		return
	}

	_, _ = buf.WriteTo(w)
}
