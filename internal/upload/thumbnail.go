package upload

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/disintegration/imaging"
)

// ErrUnsupportedFormat means the decoded image cannot be re-encoded in its
// source format. Unreachable for inputs that passed Validate, which already
// restricts uploads to PNG/JPEG/GIF.
var ErrUnsupportedFormat = errors.New("cannot re-encode thumbnail in source format")

// MakeThumbnail derives a preview from src that fits within boxWidth x
// boxHeight, preserving aspect ratio and never upscaling past the original
// dimensions. The thumbnail is re-encoded in the format detected from src's
// magic number. Pure function; no filesystem access.
func MakeThumbnail(src []byte, boxWidth, boxHeight int) ([]byte, error) {
	format, ok := DetectFormat(src)
	if !ok {
		return nil, ErrUnsupportedFormat
	}

	img, err := imaging.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptImage, err)
	}

	// Fit only downscales; an image already inside the box passes through
	// at its original size.
	fitted := imaging.Fit(img, boxWidth, boxHeight, imaging.Lanczos)

	var encodeFormat imaging.Format
	switch format {
	case FormatPNG:
		encodeFormat = imaging.PNG
	case FormatJPEG:
		encodeFormat = imaging.JPEG
	case FormatGIF:
		encodeFormat = imaging.GIF
	default:
		return nil, ErrUnsupportedFormat
	}

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, fitted, encodeFormat); err != nil {
		return nil, fmt.Errorf("encoding thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
