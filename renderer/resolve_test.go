package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveVideoURLPriority(t *testing.T) {
	c := NewClient("http://localhost:5002", "http://localhost:5002")

	// An absolute URL wins over everything.
	job := Job{VideoURL: "https://cdn.example.com/v/abc.mp4", LocalPath: "uploads/videos/abc.mp4"}
	assert.Equal(t, "https://cdn.example.com/v/abc.mp4", c.ResolveVideoURL(job, "abc"))

	// No absolute URL: local path is combined with the media host.
	job = Job{LocalPath: "uploads/videos/abc.mp4"}
	assert.Equal(t, "http://localhost:5002/uploads/videos/abc.mp4", c.ResolveVideoURL(job, "abc"))

	// Neither field: deterministic fallback from the job id.
	assert.Equal(t, "http://localhost:5002/uploads/videos/abc.mp4", c.ResolveVideoURL(Job{}, "abc"))
}

func TestResolveVideoURLIgnoresRelativeVideoURL(t *testing.T) {
	c := NewClient("http://localhost:5002", "http://media.local")

	// A non-absolute videoUrl does not count as priority 1.
	job := Job{VideoURL: "uploads/videos/x.mp4", LocalPath: "uploads/videos/y.mp4"}
	assert.Equal(t, "http://media.local/uploads/videos/y.mp4", c.ResolveVideoURL(job, "x"))
}

func TestResolveAudioURL(t *testing.T) {
	c := NewClient("http://localhost:5002", "http://localhost:5002")

	assert.Equal(t, "https://cdn.example.com/a.mp3", c.ResolveAudioURL("https://cdn.example.com/a.mp3"))
	assert.Equal(t, "http://localhost:5002/uploads/audio/a.mp3", c.ResolveAudioURL("/uploads/audio/a.mp3"))
	assert.Equal(t, "http://localhost:5002/uploads/audio/a.mp3", c.ResolveAudioURL("uploads/audio/a.mp3"))
}
