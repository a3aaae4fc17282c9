package mimex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuess(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"photo.jpg", "image/jpeg"},
		{"PHOTO.JPEG", "image/jpeg"},
		{"clip.mp4", "video/mp4"},
		{"song.flac", "audio/flac"},
		{"notes.md", "text/markdown"},
		{"archive.zip", "application/octet-stream"},
		{"noextension", "application/octet-stream"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, Guess(tc.filename), tc.filename)
	}
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage(Guess("a.png")))
	assert.False(t, IsImage(Guess("a.mp4")))
	assert.False(t, IsImage(Guess("a.bin")))
}
