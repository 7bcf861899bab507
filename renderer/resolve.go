package renderer

import (
	"fmt"
	"strings"
)

// ResolveVideoURL picks the playable URL for a completed job, by priority:
// an absolute URL from the service, then a service-relative local path, then
// a constructed fallback assuming the asset sits at its conventional
// location. Exactly one of the three is chosen.
func (c *Client) ResolveVideoURL(job Job, jobID string) string {
	if strings.HasPrefix(job.VideoURL, "http") {
		return job.VideoURL
	}
	if job.LocalPath != "" {
		return c.MediaHost + "/" + strings.TrimPrefix(job.LocalPath, "/")
	}
	return fmt.Sprintf("%s/uploads/videos/%s.mp4", c.MediaHost, jobID)
}

// ResolveAudioURL turns a voice-over URL into a playable one. Absolute URLs
// pass through; relative paths get the local media host prepended.
func (c *Client) ResolveAudioURL(raw string) string {
	if strings.HasPrefix(raw, "http") {
		return raw
	}
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	return c.MediaHost + raw
}
