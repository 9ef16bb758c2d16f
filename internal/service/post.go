package service

import (
	"net/http"

	"github.com/turingcompletejeff/blogsite/internal/domain"
	internal_errors "github.com/turingcompletejeff/blogsite/internal/errors"
)

type PostService interface {
	Create(author *domain.User, post domain.Post) (domain.PostId, error)
	Get(id domain.PostId, viewer *domain.User) (domain.Post, error)
	Published() ([]domain.Post, error)
	Drafts(viewer *domain.User) ([]domain.Post, error)
	All() ([]domain.Post, error)
	Update(editor *domain.User, post domain.Post) error
	Publish(editor *domain.User, id domain.PostId) error
	Delete(editor *domain.User, id domain.PostId) error
}

type PostStorage interface {
	CreatePost(post domain.Post) (domain.PostId, error)
	GetPost(id domain.PostId) (domain.Post, error)
	Posts(includeDrafts bool) ([]domain.Post, error)
	DraftsByAuthor(authorId domain.UserId) ([]domain.Post, error)
	UpdatePost(post domain.Post) error
	PublishPost(id domain.PostId) error
	DeletePost(id domain.PostId) error
}

// AssetRemover is the slice of the upload pipeline the post service needs
// for cleanup when a post lets go of its images.
type AssetRemover interface {
	Remove(category domain.Category, names ...string)
}

type Post struct {
	storage PostStorage
	assets  AssetRemover
}

func NewPost(storage PostStorage, assets AssetRemover) *Post {
	return &Post{storage: storage, assets: assets}
}

var errForbidden = &internal_errors.ErrorWithStatusCode{Message: "Not allowed", StatusCode: http.StatusForbidden}
var errNotFound = &internal_errors.ErrorWithStatusCode{Message: "Post not found", StatusCode: http.StatusNotFound}

func (p *Post) Create(author *domain.User, post domain.Post) (domain.PostId, error) {
	if author == nil || !author.CanPost() {
		return 0, errForbidden
	}
	if post.Title == "" || post.Body == "" {
		return 0, &internal_errors.ErrorWithStatusCode{Message: "Title and body are required", StatusCode: http.StatusBadRequest}
	}
	post.AuthorId = author.Id
	return p.storage.CreatePost(post)
}

// Get returns the post if the viewer may see it. Drafts report 404 rather
// than 403 to viewers who should not know they exist.
func (p *Post) Get(id domain.PostId, viewer *domain.User) (domain.Post, error) {
	post, err := p.storage.GetPost(id)
	if err != nil {
		return domain.Post{}, err
	}
	if !post.VisibleTo(viewer) {
		return domain.Post{}, errNotFound
	}
	return post, nil
}

func (p *Post) Published() ([]domain.Post, error) {
	return p.storage.Posts(false)
}

func (p *Post) Drafts(viewer *domain.User) ([]domain.Post, error) {
	if viewer == nil {
		return nil, errForbidden
	}
	return p.storage.DraftsByAuthor(viewer.Id)
}

// All returns everything including drafts. Admin dashboard only; the
// router gates the callers.
func (p *Post) All() ([]domain.Post, error) {
	return p.storage.Posts(true)
}

// Update replaces title, body and image references. When the images
// changed, the previous files are deleted best-effort after the record
// update succeeds; the caller already owns exactly one current filename
// per slot.
func (p *Post) Update(editor *domain.User, post domain.Post) error {
	existing, err := p.storage.GetPost(post.Id)
	if err != nil {
		return err
	}
	if !existing.EditableBy(editor) {
		return errForbidden
	}

	if err := p.storage.UpdatePost(post); err != nil {
		return err
	}

	if existing.Portrait != "" && existing.Portrait != post.Portrait {
		p.assets.Remove(domain.CategoryBlogPosts, existing.Portrait, existing.PortraitThumbnail)
	}
	return nil
}

func (p *Post) Publish(editor *domain.User, id domain.PostId) error {
	existing, err := p.storage.GetPost(id)
	if err != nil {
		return err
	}
	if !existing.EditableBy(editor) {
		return errForbidden
	}
	return p.storage.PublishPost(id)
}

// Delete removes the record first, then its files. If file cleanup fails
// the post is still gone; the orphan is logged inside Remove.
func (p *Post) Delete(editor *domain.User, id domain.PostId) error {
	existing, err := p.storage.GetPost(id)
	if err != nil {
		return err
	}
	if !existing.EditableBy(editor) {
		return errForbidden
	}

	if err := p.storage.DeletePost(id); err != nil {
		return err
	}

	p.assets.Remove(domain.CategoryBlogPosts, existing.Portrait, existing.PortraitThumbnail)
	return nil
}
