package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustLoad(t *testing.T) {
	cfg := MustLoad("./test_data")

	assert.Equal(t, ":8080", cfg.Public.Addr)
	assert.Equal(t, "debug", cfg.Public.LogLevel)
	assert.Equal(t, 10, cfg.Public.PostsPerPage)
	assert.Equal(t, []string{"http://localhost:8081"}, cfg.Public.CorsOrigins)
	assert.Equal(t, 24*time.Hour, cfg.JwtTTL())

	assert.Equal(t, "123", cfg.JwtKey())
	assert.Equal(t, "localhost", cfg.Private.Pg.Host)
	assert.Equal(t, 5432, cfg.Private.Pg.Port)
	assert.Equal(t, "blogsite", cfg.Private.Pg.Dbname)
	assert.Equal(t, "localhost:25575", cfg.Private.Rcon.Address)
}

func TestUploadPolicies(t *testing.T) {
	cfg := MustLoad("./test_data")

	blog, ok := cfg.Public.Uploads.Policy("blog-posts")
	require.True(t, ok)
	assert.Equal(t, "media/blog-posts", blog.Dir)
	assert.Equal(t, int64(5242880), blog.MaxSizeBytes)
	assert.Contains(t, blog.AllowedExtensions, ".gif")
	assert.Equal(t, 300, blog.ThumbnailWidth)

	profiles, ok := cfg.Public.Uploads.Policy("profiles")
	require.True(t, ok)
	assert.Equal(t, int64(2097152), profiles.MaxSizeBytes)
	assert.NotContains(t, profiles.AllowedExtensions, ".gif")

	_, ok = cfg.Public.Uploads.Policy("unknown")
	assert.False(t, ok)
}

func TestMustLoadMissingFolderPanics(t *testing.T) {
	assert.Panics(t, func() { MustLoad("./does_not_exist") })
}
