package renderer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVideoReturnsJobID(t *testing.T) {
	var got GenerateVideoRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/videos/generate-video", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"jobId":"job-123"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL)
	jobID, err := c.GenerateVideo(context.Background(), GenerateVideoRequest{
		SceneID:   "1",
		ProjectID: "temp",
		Prompt:    "Overall Style: Cinematic. Scene 1 (10s, cinematic style): x",
		Quality:   DefaultQuality,
		Duration:  10,
	})
	require.NoError(t, err)
	assert.Equal(t, "job-123", jobID)
	assert.Equal(t, "temp", got.ProjectID)
	assert.Equal(t, DefaultQuality, got.Quality)
}

func TestGenerateVideoFireAndForget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL)
	jobID, err := c.GenerateVideo(context.Background(), GenerateVideoRequest{})
	require.NoError(t, err)
	assert.Empty(t, jobID, "no job id means nothing to poll")
}

func TestGenerateVideoSurfacesRemoteMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"message":"render farm unavailable"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL)
	_, err := c.GenerateVideo(context.Background(), GenerateVideoRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render farm unavailable")
}

func TestJobStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/videos/job/job-123", r.URL.Path)
		w.Write([]byte(`{"data":{"job":{"status":"processing","progress":40}}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL)
	job, err := c.JobStatus(context.Background(), "job-123")
	require.NoError(t, err)
	assert.Equal(t, "processing", job.Status)
	assert.Equal(t, 40, job.Progress)
	assert.False(t, job.IsTerminal())

	assert.True(t, Job{Status: JobCompleted}.IsTerminal())
	assert.True(t, Job{Status: JobFailed}.IsTerminal())
}

func TestGenerateVoiceover(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/videos/generate-voiceover", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "9", body["sceneId"])
		assert.Equal(t, "hello world", body["text"])
		assert.Equal(t, "narrator", body["voiceType"])
		w.Write([]byte(`{"data":{"audioUrl":"/uploads/audio/9.mp3"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL)
	audioURL, err := c.GenerateVoiceover(context.Background(), "9", "hello world", "narrator")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/audio/9.mp3", audioURL)
}
