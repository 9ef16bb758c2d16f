package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lib/pq"

	"github.com/turingcompletejeff/blogsite/internal/domain"
	internal_errors "github.com/turingcompletejeff/blogsite/internal/errors"
)

const uniqueViolation = "23505"

// SaveUser inserts a new account. A duplicate username or email comes back
// as a 409 so handlers can surface it directly.
func (s *Storage) SaveUser(user domain.User) (domain.UserId, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var id domain.UserId
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = s.saveUser(tx, user)
		return err
	})
	return id, err
}

func (s *Storage) UserByUsername(username string) (domain.User, error) {
	return s.userBy(s.db, "username = $1", username)
}

func (s *Storage) UserById(id domain.UserId) (domain.User, error) {
	return s.userBy(s.db, "id = $1", id)
}

// Users returns every account, newest first. Admin dashboard only.
func (s *Storage) Users() ([]domain.User, error) {
	rows, err := s.db.Query(`
        SELECT id, username, email, password_hash, roles, COALESCE(profile_picture, ''), created_at
        FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.Id, &user.Username, &user.Email, &user.PassHash, &user.Roles, &user.ProfilePicture, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *Storage) UpdateRoles(id domain.UserId, roles []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.updateUserColumn(tx, id, "roles", pq.StringArray(roles))
	})
}

// UpdateProfilePicture records the new current picture name and returns the
// previous one so the caller can delete the orphaned file.
func (s *Storage) UpdateProfilePicture(id domain.UserId, filename string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var previous string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRow(`
            SELECT COALESCE(profile_picture, '') FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&previous)
		if errors.Is(err, sql.ErrNoRows) {
			return &internal_errors.ErrorWithStatusCode{Message: "User not found", StatusCode: http.StatusNotFound}
		}
		if err != nil {
			return fmt.Errorf("failed to read current profile picture: %w", err)
		}
		return s.updateUserColumn(tx, id, "profile_picture", sql.NullString{String: filename, Valid: filename != ""})
	})
	return previous, err
}

// =========================================================================
// Internal methods, transaction-agnostic
// =========================================================================

func (s *Storage) saveUser(q Querier, user domain.User) (domain.UserId, error) {
	var id int64
	err := q.QueryRow(`
        INSERT INTO users(username, email, password_hash, roles)
        VALUES($1, $2, $3, $4) RETURNING id`,
		user.Username, user.Email, user.PassHash, user.Roles).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return -1, &internal_errors.ErrorWithStatusCode{Message: "Username or email already taken", StatusCode: http.StatusConflict}
		}
		return -1, fmt.Errorf("failed to insert user: %w", err)
	}
	return id, nil
}

func (s *Storage) userBy(q Querier, cond string, arg any) (domain.User, error) {
	var user domain.User
	err := q.QueryRow(fmt.Sprintf(`
        SELECT id, username, email, password_hash, roles, COALESCE(profile_picture, ''), created_at
        FROM users WHERE %s`, cond), arg).
		Scan(&user.Id, &user.Username, &user.Email, &user.PassHash, &user.Roles, &user.ProfilePicture, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, &internal_errors.ErrorWithStatusCode{Message: "User not found", StatusCode: http.StatusNotFound}
		}
		return domain.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

func (s *Storage) updateUserColumn(q Querier, id domain.UserId, column string, value any) error {
	result, err := q.Exec(fmt.Sprintf("UPDATE users SET %s = $1 WHERE id = $2", column), value, id)
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", column, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return &internal_errors.ErrorWithStatusCode{Message: "User not found", StatusCode: http.StatusNotFound}
	}
	return nil
}
