package worker

import (
	"context"
	"encoding/json"
	"log"
	"strconv"

	"gorm.io/gorm"

	"github.com/julianader/veoflow-api/lifecycle"
	"github.com/julianader/veoflow-api/models"
	"github.com/julianader/veoflow-api/renderer"
	"github.com/julianader/veoflow-api/storyboard"
	"github.com/julianader/veoflow-api/tasks"
)

// projectStore adapts the database to the lifecycle controller's persistence
// contract: a partial update of only the video-URL field.
type projectStore struct {
	db *gorm.DB
}

func (s projectStore) SaveFinalVideoURL(ctx context.Context, projectID uint, url string) error {
	return s.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", projectID).
		Update("final_video_url", url).Error
}

// HandleVideoRender processes tasks from QueueVideoRender: it drives one
// combined render job through the lifecycle controller and merges the
// outcome back into the project row.
func (p *Processor) HandleVideoRender(ctx context.Context, payload string) error {
	var task tasks.RenderTaskPayload
	if err := json.Unmarshal([]byte(payload), &task); err != nil {
		return err
	}

	log.Printf("[%s] Rendering video for project %d", task.TaskID, task.ProjectID)
	var project models.Project
	if err := p.DB.First(&project, task.ProjectID).Error; err != nil {
		return err
	}

	var scenes []models.Scene
	if err := p.DB.Where("project_id = ?", project.ID).Order("position ASC").Find(&scenes).Error; err != nil {
		p.DB.Model(&project).Update("render_status", models.RenderFailed)
		return err
	}

	p.DB.Model(&project).Updates(map[string]interface{}{
		"render_status":   models.RenderGenerating,
		"render_progress": 0,
	})
	p.publishStatus(ctx, project.ID, models.RenderGenerating, "render started")

	ctrl := lifecycle.NewController(p.Renderer, projectStore{db: p.DB})
	ctrl.PollTimeout = p.PollTimeout
	defer ctrl.Close()

	// Mirror every status change onto the project row so the API can answer
	// status queries without talking to the remote service.
	ctrl.OnStatus = func(snap lifecycle.Snapshot) {
		updates := map[string]interface{}{
			"render_progress": snap.Progress,
		}
		if snap.JobID != "" {
			updates["render_job_id"] = snap.JobID
		}
		if err := p.DB.Model(&models.Project{}).Where("id = ?", project.ID).
			Updates(updates).Error; err != nil {
			log.Printf("[%s] Error mirroring job status: %v", task.TaskID, err)
		}
	}

	err := ctrl.Generate(ctx, project, scenes, renderer.Captions{}, false)
	if err != nil {
		p.DB.Model(&project).Update("render_status", models.RenderFailed)
		p.publishStatus(ctx, project.ID, models.RenderFailed, err.Error())
		return err
	}

	snap := ctrl.Wait()
	switch snap.State {
	case lifecycle.StateCompleted:
		p.DB.Model(&project).Updates(map[string]interface{}{
			"render_status":   models.RenderComplete,
			"render_progress": 100,
		})
		p.publishStatus(ctx, project.ID, models.RenderComplete, snap.VideoURL)
		log.Printf("[%s] Project %d render complete: %s", task.TaskID, project.ID, snap.VideoURL)
	case lifecycle.StateFailed:
		p.DB.Model(&project).Update("render_status", models.RenderFailed)
		p.publishStatus(ctx, project.ID, models.RenderFailed, snap.Status)
		log.Printf("[%s] Project %d render failed: %s", task.TaskID, project.ID, snap.Status)
	default:
		// Fire-and-forget acceptance: nothing to poll, nothing to merge.
		p.DB.Model(&project).Update("render_status", models.RenderIdle)
		log.Printf("[%s] Project %d render accepted without a job id", task.TaskID, project.ID)
	}

	return nil
}

// HandleVoiceover processes tasks from QueueVoiceover.
func (p *Processor) HandleVoiceover(ctx context.Context, payload string) error {
	var task tasks.VoiceoverTaskPayload
	if err := json.Unmarshal([]byte(payload), &task); err != nil {
		return err
	}

	log.Printf("[%s] Generating voice-over for scene %d", task.TaskID, task.SceneID)
	var scene models.Scene
	if err := p.DB.First(&scene, task.SceneID).Error; err != nil {
		return err
	}

	sceneID := strconv.FormatUint(uint64(scene.ID), 10)
	audioURL, err := p.Renderer.GenerateVoiceover(ctx, sceneID, task.Text, task.VoiceType)
	if err != nil {
		p.DB.Model(&scene).Update("status", models.SceneError)
		return err
	}

	updates := map[string]interface{}{
		"voice_over_enabled": true,
		"voice_over_text":    task.Text,
		"voice_over_url":     audioURL,
		"voice_over_voice":   task.VoiceType,
		"status":             models.SceneComplete,
	}
	if err := p.DB.Model(&scene).Updates(updates).Error; err != nil {
		return err
	}

	log.Printf("[%s] Voice-over ready for scene %d: %s", task.TaskID, scene.ID, audioURL)
	return nil
}

// HandleStoryboard processes tasks from QueueStoryboard.
func (p *Processor) HandleStoryboard(ctx context.Context, payload string) error {
	var task tasks.StoryboardTaskPayload
	if err := json.Unmarshal([]byte(payload), &task); err != nil {
		return err
	}

	log.Printf("[%s] Drafting storyboard for project %d", task.TaskID, task.ProjectID)
	var project models.Project
	if err := p.DB.First(&project, task.ProjectID).Error; err != nil {
		return err
	}

	drafts, err := storyboard.GenerateStoryboard(ctx, task.Topic, models.PresetName(project.SelectedPreset))
	if err != nil {
		return err
	}

	var count int64
	if err := p.DB.Model(&models.Scene{}).Where("project_id = ?", project.ID).Count(&count).Error; err != nil {
		return err
	}

	// Append drafted scenes after the existing sequence in one transaction.
	err = p.DB.Transaction(func(tx *gorm.DB) error {
		for i := range drafts {
			drafts[i].ProjectID = project.ID
			drafts[i].Position = int(count) + i
			if err := tx.Create(&drafts[i]).Error; err != nil {
				return err
			}
		}
		total := project.TotalDuration
		for _, d := range drafts {
			total += d.Duration
		}
		return tx.Model(&models.Project{}).Where("id = ?", project.ID).
			UpdateColumn("total_duration", total).Error
	})
	if err != nil {
		return err
	}

	log.Printf("[%s] Drafted %d scenes for project %d", task.TaskID, len(drafts), project.ID)
	return nil
}
