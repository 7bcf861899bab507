// Package timeline derives narration audio tracks from a project's scene
// sequence and keeps their playback aligned with the combined video.
package timeline

import (
	"fmt"

	"github.com/julianader/veoflow-api/models"
)

// Track is one narration clip positioned on the timeline by cumulative
// scene durations. Tracks are derived, never persisted.
type Track struct {
	ID        string  `json:"id"`
	SceneID   uint    `json:"scene_id"`
	AudioURL  string  `json:"audio_url"`
	Text      string  `json:"text"`
	StartTime float64 `json:"start_time"`
	Duration  float64 `json:"duration"`
}

// TrackID derives the track identifier for a scene's narration.
func TrackID(sceneID uint) string {
	return fmt.Sprintf("audio-%d", sceneID)
}

// BuildTracks derives the audio track list from the scene sequence. A track
// exists only for scenes with an enabled voice-over and a resolved audio
// URL; its start time is the sum of all preceding scene durations. The list
// is rebuilt wholesale on any scene-sequence change, so offsets are always
// consistent with the current order.
func BuildTracks(scenes []models.Scene) []Track {
	var tracks []Track
	currentTime := 0.0
	for _, scene := range scenes {
		if scene.HasVoiceOver() {
			tracks = append(tracks, Track{
				ID:        TrackID(scene.ID),
				SceneID:   scene.ID,
				AudioURL:  scene.VoiceOverURL,
				Text:      scene.VoiceOverText,
				StartTime: currentTime,
				Duration:  float64(scene.Duration),
			})
		}
		currentTime += float64(scene.Duration)
	}
	return tracks
}

// TotalDuration is the full timeline length in seconds.
func TotalDuration(scenes []models.Scene) float64 {
	total := 0.0
	for _, scene := range scenes {
		total += float64(scene.Duration)
	}
	return total
}
