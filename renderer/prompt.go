package renderer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/julianader/veoflow-api/models"
)

// DefaultQuality is the only quality tier the service is asked for.
const DefaultQuality = "standard"

// fallbackSceneDuration substitutes for a scene whose duration was never set.
const fallbackSceneDuration = 5

// CombinedPrompt concatenates every scene's index, duration, style and text,
// in sequence order, prefixed by the overall style label.
func CombinedPrompt(presetName string, scenes []models.Scene) string {
	parts := make([]string, 0, len(scenes))
	for idx, scene := range scenes {
		parts = append(parts, fmt.Sprintf("Scene %d (%ds, %s style): %s", idx+1, scene.Duration, scene.Style, scene.Prompt))
	}
	return fmt.Sprintf("Overall Style: %s. ", presetName) + strings.Join(parts, ". ")
}

// TotalDuration sums scene durations, substituting the fallback for any
// scene with a zero/negative duration.
func TotalDuration(scenes []models.Scene) int {
	total := 0
	for _, scene := range scenes {
		if scene.Duration > 0 {
			total += scene.Duration
		} else {
			total += fallbackSceneDuration
		}
	}
	return total
}

// BuildGenerateRequest assembles the single render request for a project's
// scene sequence. The first scene id identifies the request ("combined" when
// unavailable); an unsaved project is sent as "temp".
func BuildGenerateRequest(project models.Project, scenes []models.Scene, captions Captions, backgroundMusic bool) GenerateVideoRequest {
	sceneID := "combined"
	if len(scenes) > 0 && scenes[0].ID != 0 {
		sceneID = strconv.FormatUint(uint64(scenes[0].ID), 10)
	}
	projectID := "temp"
	if project.IsSaved() {
		projectID = strconv.FormatUint(uint64(project.ID), 10)
	}
	if !captions.Enabled {
		captions = Captions{Enabled: false}
	}
	return GenerateVideoRequest{
		SceneID:         sceneID,
		ProjectID:       projectID,
		Prompt:          CombinedPrompt(models.PresetName(project.SelectedPreset), scenes),
		Quality:         DefaultQuality,
		Duration:        TotalDuration(scenes),
		Style:           models.PresetName(project.SelectedPreset),
		Captions:        captions,
		BackgroundMusic: backgroundMusic,
	}
}
