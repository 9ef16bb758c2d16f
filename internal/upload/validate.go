// Package upload implements the acceptance pipeline for user-submitted
// images: validation against a per-category policy, filename sanitization,
// and thumbnail derivation. Every function here is pure over its inputs;
// persistence lives in storage/fs.
package upload

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"
)

// Rejection reasons. Handlers match on these to pick a user-facing message;
// they are never auto-corrected into an accept.
var (
	ErrOversize       = errors.New("file exceeds maximum allowed size")
	ErrBadExtension   = errors.New("file extension not allowed")
	ErrBadMagicNumber = errors.New("file content is not a recognized image")
	ErrCorruptImage   = errors.New("image data is corrupt or truncated")
)

// Format is an image family detected from leading bytes, independent of
// whatever extension the uploader claimed.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatGIF  Format = "gif"
)

// MimeType returns the Content-Type to serve files of this format with.
func (f Format) MimeType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatJPEG:
		return "image/jpeg"
	case FormatGIF:
		return "image/gif"
	}
	return "application/octet-stream"
}

// extensions returns the filename extensions belonging to this format family.
func (f Format) extensions() []string {
	switch f {
	case FormatPNG:
		return []string{".png"}
	case FormatJPEG:
		return []string{".jpg", ".jpeg"}
	case FormatGIF:
		return []string{".gif"}
	}
	return nil
}

var magicNumbers = []struct {
	prefix []byte
	format Format
}{
	{[]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, FormatPNG},
	{[]byte{0xff, 0xd8, 0xff}, FormatJPEG},
	{[]byte("GIF87a"), FormatGIF},
	{[]byte("GIF89a"), FormatGIF},
}

// DetectFormat matches the leading bytes against the known PNG/JPEG/GIF
// signatures.
func DetectFormat(data []byte) (Format, bool) {
	for _, m := range magicNumbers {
		if bytes.HasPrefix(data, m.prefix) {
			return m.format, true
		}
	}
	return "", false
}

// FormatForName derives the format family from a stored filename's
// extension. Used when serving files whose bytes are not yet in memory.
func FormatForName(name string) (Format, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	for _, f := range []Format{FormatPNG, FormatJPEG, FormatGIF} {
		for _, known := range f.extensions() {
			if ext == known {
				return f, true
			}
		}
	}
	return "", false
}

// Policy is the per-category acceptance policy, owned by configuration.
type Policy struct {
	MaxSizeBytes      int64
	AllowedExtensions []string
}

func (p Policy) extensionAllowed(ext string) bool {
	for _, allowed := range p.AllowedExtensions {
		if strings.EqualFold(ext, allowed) {
			return true
		}
	}
	return false
}

// Result is returned for every accepted upload. Format comes from the magic
// number, not the claimed filename.
type Result struct {
	Format Format
	Width  int
	Height int
}

// Validate decides whether data is an acceptable image under the policy.
// Checks run cheapest first: size, claimed extension, magic number, then a
// full decode. The claimed extension must belong to the same family as the
// detected format (".jpg" on JPEG bytes is fine, ".png" on JPEG bytes is not).
func Validate(data []byte, filename string, policy Policy) (*Result, error) {
	if int64(len(data)) > policy.MaxSizeBytes {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrOversize, len(data), policy.MaxSizeBytes)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !policy.extensionAllowed(ext) {
		return nil, fmt.Errorf("%w: %q", ErrBadExtension, ext)
	}

	format, ok := DetectFormat(data)
	if !ok {
		return nil, ErrBadMagicNumber
	}

	extMatches := false
	for _, known := range format.extensions() {
		if ext == known {
			extMatches = true
			break
		}
	}
	if !extMatches {
		return nil, fmt.Errorf("%w: content is %s but filename claims %q", ErrBadMagicNumber, format, ext)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptImage, err)
	}

	bounds := img.Bounds()
	return &Result{
		Format: format,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
