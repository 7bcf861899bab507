// Package renderer is the HTTP client for the remote AI generation service.
// The service renders a combined video for a scene sequence, synthesizes
// per-scene voice-overs, and exposes job-status polling. It is an opaque
// dependency: this package only speaks its wire format.
package renderer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Job status values the client treats as terminal. Anything else is
// in-progress; the exact vocabulary is service-defined.
const (
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// Captions mirrors the caption configuration block of a generation request.
type Captions struct {
	Enabled  bool   `json:"enabled"`
	Type     string `json:"type,omitempty"`
	FontSize string `json:"fontSize,omitempty"`
}

// GenerateVideoRequest is the body of POST /videos/generate-video.
type GenerateVideoRequest struct {
	SceneID         string   `json:"sceneId"`
	ProjectID       string   `json:"projectId"`
	Prompt          string   `json:"prompt"`
	Quality         string   `json:"quality"`
	Duration        int      `json:"duration"`
	Style           string   `json:"style"`
	Captions        Captions `json:"captions"`
	BackgroundMusic bool     `json:"backgroundMusic"`
}

// Job is the service's view of one render job.
type Job struct {
	Status    string `json:"status"`
	Progress  int    `json:"progress"`
	VideoURL  string `json:"videoUrl,omitempty"`
	LocalPath string `json:"localPath,omitempty"`
}

// IsTerminal reports whether no further state change can occur for the job.
func (j Job) IsTerminal() bool {
	return j.Status == JobCompleted || j.Status == JobFailed
}

type Client struct {
	BaseURL   string
	MediaHost string
	HTTP      *http.Client
}

// NewClient builds a renderer client. mediaHost is the local origin used to
// resolve relative media paths when the service returns no absolute URL.
func NewClient(baseURL, mediaHost string) *Client {
	return &Client{
		BaseURL:   baseURL,
		MediaHost: mediaHost,
		HTTP:      &http.Client{Timeout: 30 * time.Second},
	}
}

type generateVideoResponse struct {
	Data struct {
		JobID string `json:"jobId"`
	} `json:"data"`
}

type jobStatusResponse struct {
	Data struct {
		Job Job `json:"job"`
	} `json:"data"`
}

type voiceoverResponse struct {
	Data struct {
		AudioURL string `json:"audioUrl"`
	} `json:"data"`
}

type voiceoverRequest struct {
	SceneID   string `json:"sceneId"`
	Text      string `json:"text"`
	VoiceType string `json:"voiceType,omitempty"`
}

// GenerateVideo submits one combined render job. An empty job id means the
// service accepted the request fire-and-forget and there is nothing to poll.
func (c *Client) GenerateVideo(ctx context.Context, req GenerateVideoRequest) (string, error) {
	var resp generateVideoResponse
	if err := c.post(ctx, "/videos/generate-video", req, &resp); err != nil {
		return "", fmt.Errorf("generate video: %w", err)
	}
	return resp.Data.JobID, nil
}

// JobStatus fetches the current state of a render job.
func (c *Client) JobStatus(ctx context.Context, jobID string) (Job, error) {
	var resp jobStatusResponse
	if err := c.get(ctx, "/videos/job/"+jobID, &resp); err != nil {
		return Job{}, fmt.Errorf("job status %s: %w", jobID, err)
	}
	return resp.Data.Job, nil
}

// GenerateVoiceover synthesizes narration audio for one scene and returns
// the audio URL (absolute or service-relative).
func (c *Client) GenerateVoiceover(ctx context.Context, sceneID, text, voiceType string) (string, error) {
	var resp voiceoverResponse
	req := voiceoverRequest{SceneID: sceneID, Text: text, VoiceType: voiceType}
	if err := c.post(ctx, "/videos/generate-voiceover", req, &resp); err != nil {
		return "", fmt.Errorf("generate voiceover: %w", err)
	}
	return resp.Data.AudioURL, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		// Surface the service's message when the body provides one.
		var remote struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal(raw, &remote); err == nil {
			if remote.Message != "" {
				return fmt.Errorf("%s", remote.Message)
			}
			if remote.Error != "" {
				return fmt.Errorf("%s", remote.Error)
			}
		}
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}
