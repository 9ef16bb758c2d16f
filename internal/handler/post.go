package handler

import (
	"errors"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/turingcompletejeff/blogsite/internal/domain"
	"github.com/turingcompletejeff/blogsite/internal/logger"
	"github.com/turingcompletejeff/blogsite/internal/middleware"
	"github.com/turingcompletejeff/blogsite/internal/middleware/metrics"
	"github.com/turingcompletejeff/blogsite/internal/upload"
	"github.com/turingcompletejeff/blogsite/internal/utils"
)

const maxUploadFormMemory = 32 << 20

// postView is the rendered shape of a post: markdown already converted,
// ready to inline in a template.
type postView struct {
	domain.Post
	RenderedBody template.HTML
}

func (h *Handler) renderPost(post domain.Post) postView {
	return postView{Post: post, RenderedBody: h.Markdown.Render(post.Body)}
}

func (h *Handler) IndexGetHandler(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Posts.Published()
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage := h.Public.PostsPerPage
	if perPage < 1 {
		perPage = 10
	}

	start := (page - 1) * perPage
	if start > len(posts) {
		start = len(posts)
	}
	end := start + perPage
	if end > len(posts) {
		end = len(posts)
	}

	var templateData struct {
		Posts    []domain.Post
		Page     int
		HasPrev  bool
		HasNext  bool
		PrevPage int
		NextPage int
	}
	templateData.Posts = posts[start:end]
	templateData.Page = page
	templateData.HasPrev = page > 1
	templateData.HasNext = end < len(posts)
	templateData.PrevPage = page - 1
	templateData.NextPage = page + 1

	h.renderTemplate(w, r, "index.html", templateData)
}

func (h *Handler) PostGetHandler(w http.ResponseWriter, r *http.Request) {
	id, err := postIdParam(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	post, err := h.Posts.Get(id, middleware.UserFromContext(r))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	h.renderTemplate(w, r, "post.html", h.renderPost(post))
}

func (h *Handler) NewPostGetHandler(w http.ResponseWriter, r *http.Request) {
	h.renderTemplate(w, r, "post_form.html", postView{})
}

func (h *Handler) NewPostPostHandler(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)

	post := domain.Post{
		Title:   r.FormValue("title"),
		Body:    r.FormValue("body"),
		IsDraft: r.FormValue("is_draft") == "on",
	}

	asset, uploaded, err := h.processFormImage(r, domain.CategoryBlogPosts)
	if err != nil {
		h.redirectWithFlash(w, r, "/posts/new", flashCookieError, rejectionMessage(err))
		return
	}
	if uploaded {
		post.Portrait = asset.Filename
		post.PortraitThumbnail = asset.ThumbnailFilename
	}

	id, err := h.Posts.Create(user, post)
	if err != nil {
		// The record never existed, so stored files have no owner.
		if uploaded {
			h.Uploads.Remove(domain.CategoryBlogPosts, asset.Filename, asset.ThumbnailFilename)
		}
		h.redirectWithFlash(w, r, "/posts/new", flashCookieError, template.HTMLEscapeString(errorMessage(err)))
		return
	}

	http.Redirect(w, r, "/posts/"+strconv.FormatInt(id, 10), http.StatusSeeOther)
}

func (h *Handler) EditPostGetHandler(w http.ResponseWriter, r *http.Request) {
	id, err := postIdParam(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	post, err := h.Posts.Get(id, middleware.UserFromContext(r))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	h.renderTemplate(w, r, "post_form.html", h.renderPost(post))
}

func (h *Handler) EditPostPostHandler(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)

	id, err := postIdParam(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	postURL := "/posts/" + strconv.FormatInt(id, 10)

	existing, err := h.Posts.Get(id, user)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	updated := existing
	updated.Title = r.FormValue("title")
	updated.Body = r.FormValue("body")

	asset, uploaded, err := h.processFormImage(r, domain.CategoryBlogPosts)
	if err != nil {
		h.redirectWithFlash(w, r, postURL+"/edit", flashCookieError, rejectionMessage(err))
		return
	}
	if uploaded {
		updated.Portrait = asset.Filename
		updated.PortraitThumbnail = asset.ThumbnailFilename
	}

	if err := h.Posts.Update(user, updated); err != nil {
		if uploaded {
			h.Uploads.Remove(domain.CategoryBlogPosts, asset.Filename, asset.ThumbnailFilename)
		}
		h.redirectWithFlash(w, r, postURL+"/edit", flashCookieError, template.HTMLEscapeString(errorMessage(err)))
		return
	}

	http.Redirect(w, r, postURL, http.StatusSeeOther)
}

func (h *Handler) PublishPostHandler(w http.ResponseWriter, r *http.Request) {
	id, err := postIdParam(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.Posts.Publish(middleware.UserFromContext(r), id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	http.Redirect(w, r, "/posts/"+strconv.FormatInt(id, 10), http.StatusSeeOther)
}

func (h *Handler) DeletePostHandler(w http.ResponseWriter, r *http.Request) {
	id, err := postIdParam(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.Posts.Delete(middleware.UserFromContext(r), id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) DraftsGetHandler(w http.ResponseWriter, r *http.Request) {
	drafts, err := h.Posts.Drafts(middleware.UserFromContext(r))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var templateData struct {
		Posts []domain.Post
	}
	templateData.Posts = drafts
	h.renderTemplate(w, r, "drafts.html", templateData)
}

// processFormImage runs the optional "portrait" form file through the
// upload pipeline. The second return value reports whether a file was
// submitted at all; an absent file is not an error.
func (h *Handler) processFormImage(r *http.Request, category domain.Category) (*domain.StoredAsset, bool, error) {
	if r.MultipartForm == nil {
		if err := r.ParseMultipartForm(maxUploadFormMemory); err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				// The body cap cut the upload short of the policy limit.
				metrics.ObserveUpload(string(category), uploadOutcome(upload.ErrOversize))
				return nil, true, upload.ErrOversize
			}
			return nil, false, nil // not a multipart submission
		}
	}

	file, header, err := r.FormFile("portrait")
	if err == http.ErrMissingFile {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}
	defer file.Close()

	asset, err := h.storeImage(file, header, category)
	metrics.ObserveUpload(string(category), uploadOutcome(err))
	if err != nil {
		logger.Log.Warn("upload rejected",
			"category", category, "filename", header.Filename, "reason", uploadOutcome(err))
		return nil, true, err
	}
	return asset, true, nil
}

func (h *Handler) storeImage(file multipart.File, header *multipart.FileHeader, category domain.Category) (*domain.StoredAsset, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	return h.Uploads.Process(&domain.UploadRequest{
		Data:          data,
		Filename:      header.Filename,
		ContentType:   header.Header.Get("Content-Type"),
		Category:      category,
		WithThumbnail: true,
	})
}
