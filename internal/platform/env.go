package platform

import (
	"log"
	"os"
	"time"
)

// RendererBaseURL returns the base URL of the remote generation service.
func RendererBaseURL() string {
	if url := os.Getenv("RENDERER_URL"); url != "" {
		return url
	}
	return "http://localhost:5002"
}

// LocalMediaHost returns the origin used to resolve relative media paths
// returned by the generation service.
func LocalMediaHost() string {
	if host := os.Getenv("LOCAL_MEDIA_HOST"); host != "" {
		return host
	}
	return "http://localhost:5002"
}

// RenderPollTimeout returns the wall-clock bound on polling a single render
// job. The remote service gives no such bound, so a stuck job would
// otherwise poll forever.
func RenderPollTimeout() time.Duration {
	raw := os.Getenv("RENDER_POLL_TIMEOUT")
	if raw == "" {
		return 15 * time.Minute
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Invalid RENDER_POLL_TIMEOUT %q, using default: %v", raw, err)
		return 15 * time.Minute
	}
	return d
}
