// Package fs persists validated uploads on the local filesystem, one flat
// directory per category. All metadata (which file belongs to which record)
// lives in the relational store, never next to the files.
package fs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/turingcompletejeff/blogsite/internal/domain"
)

var (
	// ErrNotFound is returned by Open and Delete for names that do not
	// exist. A Delete hitting ErrNotFound already achieved its goal;
	// callers treat it as non-fatal.
	ErrNotFound = errors.New("file not found")

	// ErrPathEscape is returned for any name that would resolve outside
	// its category directory.
	ErrPathEscape = errors.New("filename escapes storage directory")
)

// Store maps each upload category to a base directory created at startup.
type Store struct {
	roots map[domain.Category]string
}

// New cleans and creates the configured directory for every category.
// Every known category must be bound; a partial mapping is a config bug.
func New(dirs map[domain.Category]string) (*Store, error) {
	roots := make(map[domain.Category]string, len(dirs))
	for category, dir := range dirs {
		if !category.Valid() {
			return nil, fmt.Errorf("unknown upload category %q", category)
		}
		p := filepath.Clean(dir)
		if err := os.MkdirAll(p, 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory %s: %w", p, err)
		}
		roots[category] = p
	}
	for _, category := range domain.Categories {
		if _, ok := roots[category]; !ok {
			return nil, fmt.Errorf("no directory configured for category %q", category)
		}
	}
	return &Store{roots: roots}, nil
}

// resolve joins name onto the category root, rejecting anything that could
// reach outside it. Names are sanitized before they are ever saved, but a
// name read back from a persisted record could have been tampered with
// out-of-band, so every operation re-validates.
func (s *Store) resolve(category domain.Category, name string) (string, error) {
	root, ok := s.roots[category]
	if !ok {
		return "", fmt.Errorf("unknown upload category %q", category)
	}

	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrPathEscape, name)
	}
	if filepath.IsAbs(name) || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: %q", ErrPathEscape, name)
	}

	full := filepath.Join(root, name)
	if full != filepath.Clean(full) || filepath.Dir(full) != root {
		return "", fmt.Errorf("%w: %q", ErrPathEscape, name)
	}
	return full, nil
}

// Save writes the file under name in the category directory. An existing
// file with the same name is overwritten silently; uniqueness is the
// caller's responsibility.
func (s *Store) Save(category domain.Category, name string, data io.Reader) error {
	full, err := s.resolve(category, name)
	if err != nil {
		return err
	}

	dst, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, data); err != nil {
		// Best effort cleanup of the truncated file, ignore error here.
		os.Remove(full)
		return fmt.Errorf("failed to copy file data: %w", err)
	}
	return nil
}

// Open streams a stored file back for serving.
func (s *Store) Open(category domain.Category, name string) (io.ReadCloser, error) {
	full, err := s.resolve(category, name)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Delete removes a stored file. Deleting a name that does not exist
// reports ErrNotFound rather than failing hard.
func (s *Store) Delete(category domain.Category, name string) error {
	full, err := s.resolve(category, name)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
