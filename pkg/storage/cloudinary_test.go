package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPublicID(t *testing.T) {
	tests := map[string]string{
		"https://res.cloudinary.com/demo/image/upload/v123456789/profiles/sample.jpg": "profiles/sample",
		"https://res.cloudinary.com/demo/image/upload/projects/cover.webp":            "projects/cover",
		"https://res.cloudinary.com/demo/image/upload/video-demo.png":                 "video-demo",
		"https://res.cloudinary.com/demo/image/upload/v1/":                            "",
		"https://example.com/static/avatar.png":                                       "",
		"::not a url":                                                                 "",
	}

	for in, want := range tests {
		assert.Equal(t, want, ExtractPublicID(in), in)
	}
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage("photo.JPG"))
	assert.True(t, IsImage("a.webp"))
	assert.False(t, IsImage("resume.pdf"))
	assert.False(t, IsImage("noext"))
}

func TestCloudinaryConfigEnabled(t *testing.T) {
	assert.False(t, CloudinaryConfig{}.Enabled())
	assert.False(t, CloudinaryConfig{CloudName: "demo"}.Enabled())
	assert.True(t, CloudinaryConfig{CloudName: "demo", APIKey: "k", APISecret: "s"}.Enabled())
	assert.True(t, CloudinaryConfig{URL: "cloudinary://k:s@demo"}.Enabled())
}
