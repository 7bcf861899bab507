package renderer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianader/veoflow-api/models"
)

func TestCombinedPromptContainsEveryScene(t *testing.T) {
	scenes := []models.Scene{
		{ID: 1, Prompt: "a rocket launch at dawn", Duration: 10, Style: "cinematic"},
		{ID: 2, Prompt: "astronauts floating in orbit", Duration: 15, Style: "documentary"},
		{ID: 3, Prompt: "earth from the moon", Duration: 5, Style: "cinematic"},
	}

	prompt := CombinedPrompt("Cinematic", scenes)

	require.True(t, strings.HasPrefix(prompt, "Overall Style: Cinematic. "))
	assert.Contains(t, prompt, "Scene 1 (10s, cinematic style): a rocket launch at dawn")
	assert.Contains(t, prompt, "Scene 2 (15s, documentary style): astronauts floating in orbit")
	assert.Contains(t, prompt, "Scene 3 (5s, cinematic style): earth from the moon")

	// Scenes appear in sequence order.
	first := strings.Index(prompt, "Scene 1")
	second := strings.Index(prompt, "Scene 2")
	third := strings.Index(prompt, "Scene 3")
	assert.Less(t, first, second)
	assert.Less(t, second, third)
}

func TestTotalDurationSubstitutesFallback(t *testing.T) {
	scenes := []models.Scene{
		{Duration: 10},
		{Duration: 0}, // falsy duration counts as 5
		{Duration: 15},
	}
	assert.Equal(t, 30, TotalDuration(scenes))
}

func TestBuildGenerateRequestSentinels(t *testing.T) {
	scenes := []models.Scene{{ID: 42, Prompt: "x", Duration: 10, Style: "cinematic"}}

	req := BuildGenerateRequest(models.Project{SelectedPreset: "1"}, scenes, Captions{}, false)
	assert.Equal(t, "42", req.SceneID)
	assert.Equal(t, "temp", req.ProjectID, "unsaved project is sent as temp")
	assert.Equal(t, DefaultQuality, req.Quality)
	assert.Equal(t, "Cinematic", req.Style)

	req = BuildGenerateRequest(models.Project{ID: 7, SelectedPreset: "2"}, nil, Captions{}, true)
	assert.Equal(t, "combined", req.SceneID)
	assert.Equal(t, "7", req.ProjectID)
	assert.Equal(t, "Documentary", req.Style)
	assert.True(t, req.BackgroundMusic)
}

func TestBuildGenerateRequestCaptions(t *testing.T) {
	scenes := []models.Scene{{ID: 1, Duration: 5}}

	req := BuildGenerateRequest(models.Project{}, scenes, Captions{Enabled: true, Type: "standard", FontSize: "medium"}, false)
	assert.Equal(t, Captions{Enabled: true, Type: "standard", FontSize: "medium"}, req.Captions)

	// Disabled captions are sent as a bare disabled flag.
	req = BuildGenerateRequest(models.Project{}, scenes, Captions{Enabled: false, Type: "standard"}, false)
	assert.Equal(t, Captions{Enabled: false}, req.Captions)
}
