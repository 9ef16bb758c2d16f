package domain

import "time"

type PostId = int64

// Post is a blog entry. Body holds raw markdown; rendering to HTML happens
// at display time. Portrait and PortraitThumbnail hold sanitized storage
// names in the "blog-posts" category, or "" when the post has no image.
type Post struct {
	Id                PostId
	AuthorId          UserId
	AuthorName        string
	Title             string
	Body              string
	Portrait          string
	PortraitThumbnail string
	IsDraft           bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
	PublishedAt       *time.Time
}

// VisibleTo reports whether the given user may see this post.
// Published posts are public; drafts are restricted to their author and admins.
func (p Post) VisibleTo(u *User) bool {
	if !p.IsDraft {
		return true
	}
	if u == nil {
		return false
	}
	return u.IsAdmin() || u.Id == p.AuthorId
}

// EditableBy reports whether the given user may modify or delete this post.
func (p Post) EditableBy(u *User) bool {
	if u == nil {
		return false
	}
	return u.IsAdmin() || u.Id == p.AuthorId
}
