package models

import (
	"time"
)

// Render status values for a project's combined video job.
const (
	RenderIdle       = "idle"
	RenderQueued     = "queued"
	RenderGenerating = "generating"
	RenderComplete   = "complete"
	RenderFailed     = "error"
)

type Project struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	Name             string `gorm:"not null" json:"name"`
	SelectedPreset   string `gorm:"size:16;default:'1'" json:"selected_preset"`
	VoiceOverEnabled bool   `json:"voice_over_enabled"`
	TotalDuration    int    `json:"total_duration"`

	// Outcome of the last render job, merged back from the worker.
	FinalVideoURL  string `json:"finalVideoUrl,omitempty"`
	RenderStatus   string `gorm:"default:'idle'" json:"render_status"`
	RenderJobID    string `gorm:"size:128" json:"render_job_id,omitempty"`
	RenderProgress int    `json:"render_progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Scenes []Scene `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"scenes,omitempty"`
}

func (Project) TableName() string {
	return "projects"
}

// IsSaved reports whether the project has a backend-assigned identifier.
// A zero ID means the project only exists in the current editing session;
// video-URL persistence is skipped for unsaved projects.
func (p Project) IsSaved() bool {
	return p.ID != 0
}
