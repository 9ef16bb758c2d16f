package pg

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turingcompletejeff/blogsite/internal/domain"
	internal_errors "github.com/turingcompletejeff/blogsite/internal/errors"
)

func newUser(username string) domain.User {
	return domain.User{
		Username: username,
		Email:    username + "@example.com",
		PassHash: "$2a$10$fakehashfortesting",
		Roles:    []string{domain.RoleAuthor},
	}
}

func TestSaveAndFetchUser(t *testing.T) {
	truncateAll(t)

	id, err := storage.SaveUser(newUser("jeff"))
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	byName, err := storage.UserByUsername("jeff")
	require.NoError(t, err)
	assert.Equal(t, id, byName.Id)
	assert.Equal(t, "jeff@example.com", byName.Email)
	assert.True(t, byName.HasRole(domain.RoleAuthor))
	assert.False(t, byName.IsAdmin())
	assert.Empty(t, byName.ProfilePicture)

	byId, err := storage.UserById(id)
	require.NoError(t, err)
	assert.Equal(t, byName.Username, byId.Username)
}

func TestSaveUserDuplicate(t *testing.T) {
	truncateAll(t)

	_, err := storage.SaveUser(newUser("dupe"))
	require.NoError(t, err)

	_, err = storage.SaveUser(newUser("dupe"))
	var statusErr *internal_errors.ErrorWithStatusCode
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusConflict, statusErr.StatusCode)
}

func TestUserNotFound(t *testing.T) {
	truncateAll(t)

	_, err := storage.UserByUsername("ghost")
	var statusErr *internal_errors.ErrorWithStatusCode
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestUpdateRoles(t *testing.T) {
	truncateAll(t)

	id, err := storage.SaveUser(newUser("promote"))
	require.NoError(t, err)

	require.NoError(t, storage.UpdateRoles(id, []string{domain.RoleAuthor, domain.RoleAdmin}))

	user, err := storage.UserById(id)
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())

	err = storage.UpdateRoles(99999, []string{domain.RoleAdmin})
	var statusErr *internal_errors.ErrorWithStatusCode
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestUpdateProfilePicture(t *testing.T) {
	truncateAll(t)

	id, err := storage.SaveUser(newUser("selfie"))
	require.NoError(t, err)

	previous, err := storage.UpdateProfilePicture(id, "abc_me.png")
	require.NoError(t, err)
	assert.Empty(t, previous)

	previous, err = storage.UpdateProfilePicture(id, "def_me2.png")
	require.NoError(t, err)
	assert.Equal(t, "abc_me.png", previous)

	user, err := storage.UserById(id)
	require.NoError(t, err)
	assert.Equal(t, "def_me2.png", user.ProfilePicture)

	// Clearing the slot stores NULL, read back as "".
	previous, err = storage.UpdateProfilePicture(id, "")
	require.NoError(t, err)
	assert.Equal(t, "def_me2.png", previous)

	user, err = storage.UserById(id)
	require.NoError(t, err)
	assert.Empty(t, user.ProfilePicture)
}

func TestUsersList(t *testing.T) {
	truncateAll(t)

	_, err := storage.SaveUser(newUser("first"))
	require.NoError(t, err)
	_, err = storage.SaveUser(newUser("second"))
	require.NoError(t, err)

	users, err := storage.Users()
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
