package models

import "time"

// Scene lifecycle status values.
const (
	ScenePending    = "pending"
	SceneGenerating = "generating"
	SceneComplete   = "complete"
	SceneError      = "error"
)

// Duration bounds enforced by the editor (seconds).
const (
	MinSceneDuration = 5
	MaxSceneDuration = 30
)

type Scene struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProjectID uint   `gorm:"not null;index" json:"project_id"`
	Position  int    `gorm:"not null" json:"position"`
	Prompt    string `gorm:"type:text;not null" json:"prompt"`
	Duration  int    `gorm:"not null;default:5" json:"duration"`
	Style     string `gorm:"size:64" json:"style"`
	Status    string `gorm:"default:'pending'" json:"status"`

	VoiceOverEnabled bool   `json:"voice_over_enabled"`
	VoiceOverText    string `gorm:"type:text" json:"voice_over_text,omitempty"`
	VoiceOverURL     string `json:"voice_over_url,omitempty"`
	VoiceOverVoice   string `gorm:"size:64" json:"voice_over_voice,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (Scene) TableName() string {
	return "scenes"
}

// HasVoiceOver reports whether the scene carries a playable narration track.
func (s Scene) HasVoiceOver() bool {
	return s.VoiceOverEnabled && s.VoiceOverURL != ""
}

// ClampDuration forces a scene duration into the editor's allowed range.
func ClampDuration(seconds int) int {
	if seconds < MinSceneDuration {
		return MinSceneDuration
	}
	if seconds > MaxSceneDuration {
		return MaxSceneDuration
	}
	return seconds
}
