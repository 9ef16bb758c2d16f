package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/turingcompletejeff/blogsite/internal/domain"
	internal_errors "github.com/turingcompletejeff/blogsite/internal/errors"
)

const postColumns = `
    p.id, p.author_id, u.username, p.title, p.body,
    COALESCE(p.portrait, ''), COALESCE(p.portrait_thumbnail, ''),
    p.is_draft, p.created_at, p.updated_at, p.published_at`

func (s *Storage) CreatePost(post domain.Post) (domain.PostId, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var id domain.PostId
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRow(`
            INSERT INTO posts(author_id, title, body, portrait, portrait_thumbnail, is_draft)
            VALUES($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6)
            RETURNING id`,
			post.AuthorId, post.Title, post.Body, post.Portrait, post.PortraitThumbnail, post.IsDraft).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to insert post: %w", err)
		}
		return nil
	})
	return id, err
}

func (s *Storage) GetPost(id domain.PostId) (domain.Post, error) {
	return s.post(s.db, id)
}

// Posts returns published posts, newest published first. When
// includeDrafts is set, drafts are included too (admin and author views
// filter visibility at the service layer).
func (s *Storage) Posts(includeDrafts bool) ([]domain.Post, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM posts p JOIN users u ON u.id = p.author_id
        WHERE NOT p.is_draft
        ORDER BY p.published_at DESC NULLS LAST`, postColumns)
	if includeDrafts {
		query = fmt.Sprintf(`
            SELECT %s FROM posts p JOIN users u ON u.id = p.author_id
            ORDER BY p.is_draft DESC, p.published_at DESC NULLS LAST, p.updated_at DESC`, postColumns)
	}

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	return scanPosts(rows)
}

// DraftsByAuthor returns the author's unpublished posts, newest first.
func (s *Storage) DraftsByAuthor(authorId domain.UserId) ([]domain.Post, error) {
	rows, err := s.db.Query(fmt.Sprintf(`
        SELECT %s FROM posts p JOIN users u ON u.id = p.author_id
        WHERE p.is_draft AND p.author_id = $1
        ORDER BY p.updated_at DESC`, postColumns), authorId)
	if err != nil {
		return nil, fmt.Errorf("failed to query drafts: %w", err)
	}
	defer rows.Close()

	return scanPosts(rows)
}

func (s *Storage) UpdatePost(post domain.Post) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec(`
            UPDATE posts
            SET title = $1, body = $2, portrait = NULLIF($3, ''),
                portrait_thumbnail = NULLIF($4, ''), updated_at = now()
            WHERE id = $5`,
			post.Title, post.Body, post.Portrait, post.PortraitThumbnail, post.Id)
		if err != nil {
			return fmt.Errorf("failed to update post: %w", err)
		}
		return requireRow(result, "Post not found")
	})
}

// PublishPost flips a draft live and stamps published_at. Publishing an
// already-published post is a no-op, not an error.
func (s *Storage) PublishPost(id domain.PostId) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec(`
            UPDATE posts
            SET is_draft = FALSE, published_at = COALESCE(published_at, now()), updated_at = now()
            WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to publish post: %w", err)
		}
		return requireRow(result, "Post not found")
	})
}

func (s *Storage) DeletePost(id domain.PostId) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec("DELETE FROM posts WHERE id = $1", id)
		if err != nil {
			return fmt.Errorf("failed to delete post: %w", err)
		}
		return requireRow(result, "Post not found")
	})
}

// =========================================================================
// Internal methods, transaction-agnostic
// =========================================================================

func (s *Storage) post(q Querier, id domain.PostId) (domain.Post, error) {
	row := q.QueryRow(fmt.Sprintf(`
        SELECT %s FROM posts p JOIN users u ON u.id = p.author_id
        WHERE p.id = $1`, postColumns), id)

	post, err := scanPost(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Post{}, &internal_errors.ErrorWithStatusCode{Message: "Post not found", StatusCode: http.StatusNotFound}
		}
		return domain.Post{}, fmt.Errorf("failed to query post: %w", err)
	}
	return post, nil
}

func scanPost(scan func(dest ...any) error) (domain.Post, error) {
	var post domain.Post
	var publishedAt sql.NullTime
	err := scan(&post.Id, &post.AuthorId, &post.AuthorName, &post.Title, &post.Body,
		&post.Portrait, &post.PortraitThumbnail, &post.IsDraft,
		&post.CreatedAt, &post.UpdatedAt, &publishedAt)
	if err != nil {
		return domain.Post{}, err
	}
	if publishedAt.Valid {
		post.PublishedAt = &publishedAt.Time
	}
	return post, nil
}

func scanPosts(rows *sql.Rows) ([]domain.Post, error) {
	var posts []domain.Post
	for rows.Next() {
		post, err := scanPost(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func requireRow(result sql.Result, notFoundMsg string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return &internal_errors.ErrorWithStatusCode{Message: notFoundMsg, StatusCode: http.StatusNotFound}
	}
	return nil
}
