package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, CheckPasswordHash("s3cret", hash))
	assert.False(t, CheckPasswordHash("S3cret", hash))
	assert.False(t, CheckPasswordHash("s3cret", "not-a-hash"))
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

func TestSafeFileExt(t *testing.T) {
	tests := map[string]string{
		"score.PNG":         "png",
		"photo.jpeg":        "jpeg",
		"archive.tar.gz":    "gz",
		"no-extension":      "",
		"weird.p$g":         "",
		"long.extension":    "",
		"../../etc/passwd.": "",
	}
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, SafeFileExt(name))
		})
	}
}
