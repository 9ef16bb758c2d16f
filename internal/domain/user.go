package domain

import (
	"time"

	"github.com/lib/pq"
)

type UserId = int64

const (
	RoleAdmin  = "admin"
	RoleAuthor = "author"
)

// User is an account that can author posts and own a profile picture.
// ProfilePicture holds the sanitized storage name of the current picture
// in the "profiles" category, or "" when none is set.
type User struct {
	Id             UserId
	Username       string
	Email          string
	PassHash       string
	Roles          pq.StringArray
	ProfilePicture string
	CreatedAt      time.Time
}

func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (u User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// CanPost reports whether the user may create or edit blog posts.
func (u User) CanPost() bool {
	return u.IsAdmin() || u.HasRole(RoleAuthor)
}
