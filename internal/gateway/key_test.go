package gateway

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"example.com", "https://example.com"},
		{"http://example.com/", "http://example.com"},
		{"https://cdn.example.com/assets/", "https://cdn.example.com/assets"},
		{"https://example.com", "https://example.com"},
		{"example.com//", "https://example.com/"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeBaseURL(tt.in))
		})
	}
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"photo.png":      "png",
		"archive.tar.gz": "gz",
		"noext":          "bin",
		"trailing.":      "bin",
		".env":           "env",
		"":               "bin",
	}

	for name, want := range tests {
		assert.Equal(t, want, Extension(name), name)
	}
}

func TestBuildKey(t *testing.T) {
	now := time.UnixMilli(42)

	assert.Equal(t, "avatars/42_abc.png", BuildKey("avatars", "photo.png", now, "abc"))
	assert.Equal(t, "uploads/42_abc.bin", BuildKey("", "noext", now, "abc"))
}

func TestRandomToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := randomToken()
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^[0-9a-z]{13}$`), token)
		seen[token] = true
	}
	assert.Len(t, seen, 100)
}
