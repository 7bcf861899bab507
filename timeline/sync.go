package timeline

import (
	"math"

	"github.com/julianader/veoflow-api/models"
)

// DriftTolerance is how far (seconds) a playing track may drift from the
// video playhead before it is reseeked. Reseeking without restarting avoids
// an audible stutter on every minor drift.
const DriftTolerance = 0.3

// Synchronizer keeps per-scene narration aligned with the combined video's
// playhead. It holds no ownership over player lifecycle; players come from
// the pool and are created/released by the timeline's track sync.
type Synchronizer struct {
	pool *Pool
}

func NewSynchronizer(pool *Pool) *Synchronizer {
	return &Synchronizer{pool: pool}
}

// Update is driven by playback events (timeupdate/play/pause/seeked), not by
// a timer. Scenes are evaluated in sequence order with a running cumulative
// accumulator, so their [start, end) windows are contiguous and never
// overlap: at most one scene is active for any playhead position t.
func (s *Synchronizer) Update(scenes []models.Scene, t float64, paused bool) {
	cumulative := 0.0
	for _, scene := range scenes {
		start := cumulative
		end := cumulative + float64(scene.Duration)
		cumulative = end

		player, ok := s.pool.Get(TrackID(scene.ID))
		if !ok {
			continue
		}

		if paused {
			player.Pause()
			continue
		}

		if t >= start && t < end {
			target := t - start
			if target < 0 {
				target = 0
			}
			switch {
			case player.Paused() && !player.Ended():
				player.Seek(target)
				player.Play()
			case player.Ended():
				// Ended while still inside the window: replay from the
				// correct offset instead of staying silent.
				player.Seek(target)
				player.Play()
			case math.Abs(player.CurrentTime()-target) > DriftTolerance:
				player.Seek(target)
			}
			continue
		}

		// Outside the window: narration must never bleed into an adjacent
		// scene.
		if !player.Paused() {
			player.Pause()
			player.Seek(0)
		}
	}
}
