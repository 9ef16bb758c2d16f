package service

import (
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/turingcompletejeff/blogsite/internal/domain"
	internal_errors "github.com/turingcompletejeff/blogsite/internal/errors"
	"github.com/turingcompletejeff/blogsite/internal/jwt"
	"github.com/turingcompletejeff/blogsite/internal/logger"
)

type AuthService interface {
	Register(username, email, password string) (domain.User, error)
	Login(username, password string) (domain.User, string, error)
	UserById(id domain.UserId) (domain.User, error)
}

type AuthStorage interface {
	SaveUser(user domain.User) (domain.UserId, error)
	UserByUsername(username string) (domain.User, error)
	UserById(id domain.UserId) (domain.User, error)
}

type Auth struct {
	storage AuthStorage
	jwt     jwt.JwtService
}

func NewAuth(storage AuthStorage, jwt jwt.JwtService) *Auth {
	return &Auth{storage: storage, jwt: jwt}
}

const minPasswordLength = 8

// Register creates a new account with the author role. The first admin is
// promoted by hand (or by another admin through the dashboard).
func (a *Auth) Register(username, email, password string) (domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))

	if username == "" || email == "" {
		return domain.User{}, &internal_errors.ErrorWithStatusCode{Message: "Username and email are required", StatusCode: http.StatusBadRequest}
	}
	if len(password) < minPasswordLength {
		return domain.User{}, &internal_errors.ErrorWithStatusCode{Message: fmt.Sprintf("Password must be at least %d characters", minPasswordLength), StatusCode: http.StatusBadRequest}
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := domain.User{
		Username: username,
		Email:    email,
		PassHash: string(passHash),
		Roles:    []string{domain.RoleAuthor},
	}

	id, err := a.storage.SaveUser(user)
	if err != nil {
		return domain.User{}, err
	}
	user.Id = id

	logger.Log.Info("registered user", "uid", id, "username", username)
	return user, nil
}

// Login verifies credentials and returns the user plus a signed token for
// the auth cookie. Unknown user and wrong password collapse into the same
// 401 so the response does not leak which usernames exist.
func (a *Auth) Login(username, password string) (domain.User, string, error) {
	badCredentials := &internal_errors.ErrorWithStatusCode{Message: "Invalid username or password", StatusCode: http.StatusUnauthorized}

	user, err := a.storage.UserByUsername(strings.TrimSpace(username))
	if err != nil {
		return domain.User{}, "", badCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(password)); err != nil {
		return domain.User{}, "", badCredentials
	}

	token, err := a.jwt.NewToken(user)
	if err != nil {
		return domain.User{}, "", err
	}
	return user, token, nil
}

func (a *Auth) UserById(id domain.UserId) (domain.User, error) {
	return a.storage.UserById(id)
}
