package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianader/veoflow-api/models"
	"github.com/julianader/veoflow-api/renderer"
)

// fakeService is an httptest-backed generation service with scriptable jobs.
type fakeService struct {
	mu        sync.Mutex
	nextJobID string
	jobs      map[string]renderer.Job
	polls     map[string]int
	failPolls int // number of leading status requests answered with HTTP 500
	srv       *httptest.Server
}

func newFakeService(t *testing.T) *fakeService {
	t.Helper()
	f := &fakeService{
		jobs:  make(map[string]renderer.Job),
		polls: make(map[string]int),
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeService) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.URL.Path == "/videos/generate-video":
		fmt.Fprintf(w, `{"data":{"jobId":%q}}`, f.nextJobID)
	case strings.HasPrefix(r.URL.Path, "/videos/job/"):
		jobID := strings.TrimPrefix(r.URL.Path, "/videos/job/")
		f.polls[jobID]++
		if f.failPolls > 0 {
			f.failPolls--
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		job := f.jobs[jobID]
		json.NewEncoder(w).Encode(map[string]interface{}{"data": map[string]interface{}{"job": job}})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeService) setJob(jobID string, job renderer.Job) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[jobID] = job
}

func (f *fakeService) pollCount(jobID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls[jobID]
}

type fakeStore struct {
	mu    sync.Mutex
	saves []struct {
		ProjectID uint
		URL       string
	}
}

func (s *fakeStore) SaveFinalVideoURL(_ context.Context, projectID uint, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves = append(s.saves, struct {
		ProjectID uint
		URL       string
	}{projectID, url})
	return nil
}

func (s *fakeStore) saved() []struct {
	ProjectID uint
	URL       string
} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(s.saves[:0:0], s.saves...)
}

func newTestController(f *fakeService, store Persister) *Controller {
	c := NewController(renderer.NewClient(f.srv.URL, f.srv.URL), store)
	c.PollInterval = 10 * time.Millisecond
	c.PollTimeout = 2 * time.Second
	return c
}

func testScenes() []models.Scene {
	return []models.Scene{{ID: 1, Prompt: "a harbor at dusk", Duration: 10, Style: "cinematic"}}
}

func TestGenerateRejectsEmptyInput(t *testing.T) {
	f := newFakeService(t)
	c := newTestController(f, &fakeStore{})
	defer c.Close()

	err := c.Generate(context.Background(), models.Project{ID: 1}, nil, renderer.Captions{}, false)
	require.ErrorIs(t, err, ErrEmptyInput)
	assert.Equal(t, StateIdle, c.Snapshot().State, "no side effect on empty input")
}

func TestGenerateCompletesAndPersists(t *testing.T) {
	f := newFakeService(t)
	f.nextJobID = "job-1"
	f.setJob("job-1", renderer.Job{Status: "processing", Progress: 50})

	store := &fakeStore{}
	c := newTestController(f, store)
	defer c.Close()

	require.NoError(t, c.Generate(context.Background(), models.Project{ID: 7}, testScenes(), renderer.Captions{}, false))
	assert.Equal(t, StatePolling, c.Snapshot().State)

	f.setJob("job-1", renderer.Job{Status: "completed", Progress: 100, VideoURL: "https://cdn.example.com/job-1.mp4"})

	snap := c.Wait()
	assert.Equal(t, StateCompleted, snap.State)
	assert.Equal(t, "https://cdn.example.com/job-1.mp4", snap.VideoURL)
	assert.Equal(t, 100, snap.Progress)

	saves := store.saved()
	require.Len(t, saves, 1)
	assert.Equal(t, uint(7), saves[0].ProjectID)
	assert.Equal(t, "https://cdn.example.com/job-1.mp4", saves[0].URL)
}

func TestGenerateResolvesFallbackURL(t *testing.T) {
	f := newFakeService(t)
	f.nextJobID = "job-2"
	f.setJob("job-2", renderer.Job{Status: "completed", Progress: 100})

	store := &fakeStore{}
	c := newTestController(f, store)
	defer c.Close()

	require.NoError(t, c.Generate(context.Background(), models.Project{ID: 1}, testScenes(), renderer.Captions{}, false))
	snap := c.Wait()
	assert.Equal(t, f.srv.URL+"/uploads/videos/job-2.mp4", snap.VideoURL)
}

func TestGenerateFailedJob(t *testing.T) {
	f := newFakeService(t)
	f.nextJobID = "job-3"
	f.setJob("job-3", renderer.Job{Status: "failed"})

	store := &fakeStore{}
	c := newTestController(f, store)
	defer c.Close()

	require.NoError(t, c.Generate(context.Background(), models.Project{ID: 1}, testScenes(), renderer.Captions{}, false))
	snap := c.Wait()
	assert.Equal(t, StateFailed, snap.State)
	assert.Empty(t, snap.VideoURL)
	assert.Empty(t, store.saved(), "failed jobs publish no URL")
}

func TestPollTickErrorsAreSwallowed(t *testing.T) {
	f := newFakeService(t)
	f.nextJobID = "job-4"
	f.failPolls = 3
	f.setJob("job-4", renderer.Job{Status: "completed", VideoURL: "https://cdn.example.com/job-4.mp4"})

	c := newTestController(f, &fakeStore{})
	defer c.Close()

	require.NoError(t, c.Generate(context.Background(), models.Project{ID: 1}, testScenes(), renderer.Captions{}, false))
	snap := c.Wait()
	assert.Equal(t, StateCompleted, snap.State, "polling survives transient errors")
	assert.GreaterOrEqual(t, f.pollCount("job-4"), 4)
}

func TestNewSubmissionSupersedesActivePoll(t *testing.T) {
	f := newFakeService(t)
	f.nextJobID = "job-a"
	f.setJob("job-a", renderer.Job{Status: "processing", Progress: 10})

	c := newTestController(f, &fakeStore{})
	defer c.Close()

	require.NoError(t, c.Generate(context.Background(), models.Project{ID: 1}, testScenes(), renderer.Captions{}, false))

	// Let the first poller run a few ticks, then supersede it.
	time.Sleep(5 * c.PollInterval)
	f.mu.Lock()
	f.nextJobID = "job-b"
	f.mu.Unlock()
	f.setJob("job-b", renderer.Job{Status: "processing", Progress: 0})

	require.NoError(t, c.Generate(context.Background(), models.Project{ID: 1}, testScenes(), renderer.Captions{}, false))
	assert.Equal(t, "job-b", c.Snapshot().JobID)

	// The superseded job must receive no further status requests.
	pollsA := f.pollCount("job-a")
	time.Sleep(5 * c.PollInterval)
	assert.Equal(t, pollsA, f.pollCount("job-a"), "old polling loop still active")
	assert.Greater(t, f.pollCount("job-b"), 0)
}

func TestCompletionWithoutProjectIDSkipsPersistence(t *testing.T) {
	f := newFakeService(t)
	f.nextJobID = "job-5"
	f.setJob("job-5", renderer.Job{Status: "completed", VideoURL: "https://cdn.example.com/job-5.mp4"})

	store := &fakeStore{}
	c := newTestController(f, store)
	defer c.Close()

	require.NoError(t, c.Generate(context.Background(), models.Project{}, testScenes(), renderer.Captions{}, false))
	snap := c.Wait()
	assert.Equal(t, StateCompleted, snap.State)
	assert.Equal(t, "https://cdn.example.com/job-5.mp4", snap.VideoURL, "URL stays usable in memory")
	assert.Empty(t, store.saved(), "unsaved project skips persistence")
}

func TestFireAndForgetSubmission(t *testing.T) {
	f := newFakeService(t)
	f.nextJobID = "" // service acknowledges without a job id

	c := newTestController(f, &fakeStore{})
	defer c.Close()

	require.NoError(t, c.Generate(context.Background(), models.Project{ID: 1}, testScenes(), renderer.Captions{}, false))
	snap := c.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Equal(t, "Video generation started", snap.Status)
	time.Sleep(3 * c.PollInterval)
	assert.Empty(t, f.polls, "nothing is polled without a job id")
}

func TestSubmissionErrorSurfacesRemoteMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"message":"renderer overloaded"}`))
	}))
	defer srv.Close()

	c := NewController(renderer.NewClient(srv.URL, srv.URL), &fakeStore{})
	defer c.Close()

	err := c.Generate(context.Background(), models.Project{ID: 1}, testScenes(), renderer.Captions{}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "renderer overloaded")
	assert.Equal(t, StateFailed, c.Snapshot().State)
}

func TestPollTimeoutFailsJob(t *testing.T) {
	f := newFakeService(t)
	f.nextJobID = "job-6"
	f.setJob("job-6", renderer.Job{Status: "processing"})

	c := newTestController(f, &fakeStore{})
	c.PollTimeout = 100 * time.Millisecond
	defer c.Close()

	require.NoError(t, c.Generate(context.Background(), models.Project{ID: 1}, testScenes(), renderer.Captions{}, false))
	snap := c.Wait()
	assert.Equal(t, StateFailed, snap.State)
	assert.Equal(t, "Video generation timed out", snap.Status)
}

func TestStatusLineFormat(t *testing.T) {
	f := newFakeService(t)
	f.nextJobID = "job-7"
	f.setJob("job-7", renderer.Job{Status: "processing", Progress: 40})

	var mu sync.Mutex
	var lines []string
	c := newTestController(f, &fakeStore{})
	c.OnStatus = func(s Snapshot) {
		mu.Lock()
		lines = append(lines, s.Status)
		mu.Unlock()
	}
	defer c.Close()

	require.NoError(t, c.Generate(context.Background(), models.Project{ID: 1}, testScenes(), renderer.Captions{}, false))
	time.Sleep(5 * c.PollInterval)
	f.setJob("job-7", renderer.Job{Status: "completed", Progress: 100, VideoURL: "https://cdn.example.com/x.mp4"})
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, lines, "processing (40%)")
	assert.Contains(t, lines, "completed (100%)")
}
