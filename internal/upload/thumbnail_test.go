package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeThumbnail(t *testing.T) {
	t.Run("downscales to fit box preserving aspect ratio", func(t *testing.T) {
		src := encodeTestImage(t, FormatJPEG, 600, 400)

		thumb, err := MakeThumbnail(src, 300, 300)
		require.NoError(t, err)

		result, err := Validate(thumb, "thumb.jpg", testPolicy)
		require.NoError(t, err)
		assert.Equal(t, FormatJPEG, result.Format)
		assert.Equal(t, 300, result.Width)
		assert.Equal(t, 200, result.Height)
	})

	t.Run("never upscales a small source", func(t *testing.T) {
		src := encodeTestImage(t, FormatPNG, 50, 40)

		thumb, err := MakeThumbnail(src, 300, 300)
		require.NoError(t, err)

		result, err := Validate(thumb, "thumb.png", testPolicy)
		require.NoError(t, err)
		assert.Equal(t, 50, result.Width)
		assert.Equal(t, 40, result.Height)
	})

	t.Run("re-encodes in the source format", func(t *testing.T) {
		for _, format := range []Format{FormatPNG, FormatJPEG, FormatGIF} {
			src := encodeTestImage(t, format, 320, 320)

			thumb, err := MakeThumbnail(src, 100, 100)
			require.NoError(t, err)

			detected, ok := DetectFormat(thumb)
			require.True(t, ok)
			assert.Equal(t, format, detected)
		}
	})

	t.Run("deterministic for identical input", func(t *testing.T) {
		src := encodeTestImage(t, FormatPNG, 200, 100)

		first, err := MakeThumbnail(src, 64, 64)
		require.NoError(t, err)
		second, err := MakeThumbnail(src, 64, 64)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("rejects non-image input", func(t *testing.T) {
		_, err := MakeThumbnail([]byte("definitely not pixels"), 100, 100)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("rejects corrupt image data", func(t *testing.T) {
		corrupt := append([]byte("GIF89a"), []byte("truncated nonsense")...)

		_, err := MakeThumbnail(corrupt, 100, 100)
		assert.ErrorIs(t, err, ErrCorruptImage)
	})
}
