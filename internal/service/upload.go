package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/turingcompletejeff/blogsite/internal/config"
	"github.com/turingcompletejeff/blogsite/internal/domain"
	"github.com/turingcompletejeff/blogsite/internal/logger"
	"github.com/turingcompletejeff/blogsite/internal/storage/fs"
	"github.com/turingcompletejeff/blogsite/internal/upload"
)

// FileStore abstracts the on-disk upload store so tests can point the
// pipeline at a temp directory.
type FileStore interface {
	Save(category domain.Category, name string, data io.Reader) error
	Open(category domain.Category, name string) (io.ReadCloser, error)
	Delete(category domain.Category, name string) error
}

// Upload sequences validate, sanitize, store and thumbnail for every
// incoming file, so the ordering lives in one place instead of being
// re-implemented per handler.
type Upload struct {
	store    FileStore
	policies config.Uploads
}

func NewUpload(store FileStore, policies config.Uploads) *Upload {
	return &Upload{store: store, policies: policies}
}

// ThumbnailPrefix marks derived previews in the same category directory.
const ThumbnailPrefix = "thumb_"

// Process runs one file through the full acceptance pipeline and returns
// the stored names for the caller to persist on its owning record. Nothing
// is written unless validation passes; if the thumbnail step fails after
// the original was stored, the original is removed again so a failed
// upload leaves no files behind.
func (u *Upload) Process(req *domain.UploadRequest) (*domain.StoredAsset, error) {
	policy, ok := u.policies.Policy(string(req.Category))
	if !ok {
		return nil, fmt.Errorf("no upload policy for category %q", req.Category)
	}

	result, err := upload.Validate(req.Data, req.Filename, upload.Policy{
		MaxSizeBytes:      policy.MaxSizeBytes,
		AllowedExtensions: policy.AllowedExtensions,
	})
	if err != nil {
		return nil, err
	}

	safeName, err := upload.Sanitize(req.Filename)
	if err != nil {
		return nil, err
	}

	// A uuid prefix gives every upload a unique storage name; Sanitize
	// alone is deterministic and would let two uploads of "photo.jpg"
	// overwrite each other.
	name := uuid.New().String() + "_" + safeName

	if err := u.store.Save(req.Category, name, bytes.NewReader(req.Data)); err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	asset := &domain.StoredAsset{
		Category: req.Category,
		Filename: name,
		Format:   string(result.Format),
	}

	if req.WithThumbnail {
		thumb, err := upload.MakeThumbnail(req.Data, policy.ThumbnailWidth, policy.ThumbnailHeight)
		if err != nil {
			u.removeQuietly(req.Category, name)
			return nil, fmt.Errorf("failed to derive thumbnail: %w", err)
		}

		thumbName := ThumbnailPrefix + name
		if err := u.store.Save(req.Category, thumbName, bytes.NewReader(thumb)); err != nil {
			u.removeQuietly(req.Category, name)
			return nil, fmt.Errorf("failed to store thumbnail: %w", err)
		}
		asset.ThumbnailFilename = thumbName
	}

	logger.Log.Info("stored upload",
		"category", req.Category, "name", name,
		"format", result.Format, "bytes", len(req.Data))
	return asset, nil
}

// Fetch streams a stored file for serving. The store re-validates the name,
// so values read back from records are safe to pass through.
func (u *Upload) Fetch(category domain.Category, name string) (io.ReadCloser, error) {
	return u.store.Open(category, name)
}

// Remove deletes stored files after their owning record let go of them.
// Failures are logged and swallowed: the record deletion already happened
// or is about to, and an orphaned file is cleanup debt, not a reason to
// abort. A missing file means the intended state already holds.
func (u *Upload) Remove(category domain.Category, names ...string) {
	for _, name := range names {
		if name == "" {
			continue
		}
		u.removeQuietly(category, name)
	}
}

func (u *Upload) removeQuietly(category domain.Category, name string) {
	err := u.store.Delete(category, name)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotFound):
		logger.Log.Debug("file already gone", "category", category, "name", name)
	default:
		logger.Log.Warn("failed to delete stored file", "category", category, "name", name, "error", err)
	}
}
