// Package lifecycle drives a video generation job from submission to a
// terminal state: it builds the combined render request, polls the remote
// service on a fixed interval, resolves the playable URL and persists it
// back to the project. One controller tracks at most one job at a time; a
// new submission supersedes and cancels any active poll.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/julianader/veoflow-api/models"
	"github.com/julianader/veoflow-api/renderer"
)

// State is the controller's tagged job state.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StatePolling    State = "polling"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// ErrEmptyInput is returned when generation is requested for a project with
// no scenes. It is surfaced to the user, never retried.
var ErrEmptyInput = errors.New("project has no scenes to generate")

// DefaultPollInterval matches the editor's job polling cadence.
const DefaultPollInterval = 2500 * time.Millisecond

// DefaultPollTimeout bounds how long a single job is polled. The remote
// service defines no bound of its own, so a stuck job would otherwise poll
// forever.
const DefaultPollTimeout = 15 * time.Minute

// Persister writes the resolved video URL back to the project store. Only
// the video-URL field is updated, never the scene list.
type Persister interface {
	SaveFinalVideoURL(ctx context.Context, projectID uint, url string) error
}

// Snapshot is the observable state of the current job.
type Snapshot struct {
	State    State
	JobID    string
	Status   string
	Progress int
	VideoURL string
}

type Controller struct {
	client *renderer.Client
	store  Persister

	PollInterval time.Duration
	PollTimeout  time.Duration

	// OnStatus, when set, is called with a snapshot copy after every state
	// or status-line change. Called from the polling goroutine.
	OnStatus func(Snapshot)

	// startMu serializes submissions and teardown so that only one polling
	// loop can ever be active.
	startMu sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}

	mu   sync.Mutex
	snap Snapshot
}

func NewController(client *renderer.Client, store Persister) *Controller {
	return &Controller{
		client:       client,
		store:        store,
		PollInterval: DefaultPollInterval,
		PollTimeout:  DefaultPollTimeout,
		snap:         Snapshot{State: StateIdle},
	}
}

// Snapshot returns a copy of the current job state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Generate submits one combined render job for the project's scene sequence
// and starts polling it. Any poll still running from a previous submission
// is cancelled first, so at most one polling loop exists per controller.
func (c *Controller) Generate(ctx context.Context, project models.Project, scenes []models.Scene, captions renderer.Captions, backgroundMusic bool) error {
	if len(scenes) == 0 {
		return ErrEmptyInput
	}

	c.startMu.Lock()
	defer c.startMu.Unlock()
	c.stopPollingLocked()

	c.update(func(s *Snapshot) {
		*s = Snapshot{State: StateSubmitting, Status: fmt.Sprintf("Generating video with %d scene(s)...", len(scenes))}
	})

	req := renderer.BuildGenerateRequest(project, scenes, captions, backgroundMusic)
	jobID, err := c.client.GenerateVideo(ctx, req)
	if err != nil {
		c.update(func(s *Snapshot) {
			s.State = StateFailed
			s.Status = err.Error()
		})
		return fmt.Errorf("submit render job: %w", err)
	}

	if jobID == "" {
		// Fire and forget: the service accepted the request without a job
		// id, so there is nothing to poll.
		c.update(func(s *Snapshot) {
			*s = Snapshot{State: StateIdle, Status: "Video generation started"}
		})
		return nil
	}

	pollCtx, cancel := context.WithTimeout(context.Background(), c.PollTimeout)
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done

	c.update(func(s *Snapshot) {
		*s = Snapshot{State: StatePolling, JobID: jobID, Status: "Generating combined video..."}
	})

	go c.poll(pollCtx, done, jobID, project.ID)
	return nil
}

// Wait blocks until the active polling loop (if any) has finished and
// returns the resulting snapshot.
func (c *Controller) Wait() Snapshot {
	c.startMu.Lock()
	done := c.done
	c.startMu.Unlock()
	if done != nil {
		<-done
	}
	return c.Snapshot()
}

// Close cancels any active poll. Safe to call multiple times.
func (c *Controller) Close() {
	c.startMu.Lock()
	defer c.startMu.Unlock()
	c.stopPollingLocked()
}

// stopPollingLocked cancels the active poll and waits for its goroutine to
// exit. Caller holds startMu.
func (c *Controller) stopPollingLocked() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.done
	c.cancel = nil
	c.done = nil
}

func (c *Controller) poll(ctx context.Context, done chan struct{}, jobID string, projectID uint) {
	defer close(done)

	ticker := time.NewTicker(c.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				log.Printf("Job %s exceeded poll timeout", jobID)
				c.update(func(s *Snapshot) {
					s.State = StateFailed
					s.Status = "Video generation timed out"
				})
			}
			return
		case <-ticker.C:
			job, err := c.client.JobStatus(ctx, jobID)
			if err != nil {
				// Transient: keep polling, only a successful poll can move
				// the state machine forward.
				log.Printf("Polling error for job %s: %v", jobID, err)
				continue
			}

			status := job.Status
			if status == "" {
				status = "unknown"
			}
			c.update(func(s *Snapshot) {
				s.Status = fmt.Sprintf("%s (%d%%)", status, job.Progress)
				s.Progress = job.Progress
			})

			switch job.Status {
			case renderer.JobCompleted:
				url := c.client.ResolveVideoURL(job, jobID)
				c.update(func(s *Snapshot) {
					s.State = StateCompleted
					s.Status = "Video ready"
					s.Progress = 100
					s.VideoURL = url
				})
				c.persist(ctx, projectID, url)
				return
			case renderer.JobFailed:
				c.update(func(s *Snapshot) {
					s.State = StateFailed
					s.Status = "Video generation failed"
				})
				return
			}
		}
	}
}

func (c *Controller) persist(ctx context.Context, projectID uint, url string) {
	if projectID == 0 {
		log.Printf("No project ID, cannot save video URL")
		return
	}
	if err := c.store.SaveFinalVideoURL(ctx, projectID, url); err != nil {
		// Logged only: the in-memory URL stays usable for the session.
		log.Printf("Failed to save video URL to project %d: %v", projectID, err)
	}
}

func (c *Controller) update(fn func(*Snapshot)) {
	c.mu.Lock()
	fn(&c.snap)
	snap := c.snap
	c.mu.Unlock()
	if c.OnStatus != nil {
		c.OnStatus(snap)
	}
}
