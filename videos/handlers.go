package videos

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/julianader/veoflow-api/models"
	"github.com/julianader/veoflow-api/renderer"
	"github.com/julianader/veoflow-api/tasks"
)

type Handler struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Renderer *renderer.Client
}

func NewHandler(db *gorm.DB, rdb *redis.Client, rc *renderer.Client) *Handler {
	return &Handler{DB: db, Redis: rdb, Renderer: rc}
}

type GenerateVideoRequest struct {
	ProjectID       uint              `json:"project_id" binding:"required"`
	Captions        renderer.Captions `json:"captions"`
	BackgroundMusic bool              `json:"background_music"`
}

// GenerateVideo queues one combined render job for a project. The actual
// submission and polling runs in the worker; this only validates and
// enqueues.
func (h *Handler) GenerateVideo(c *gin.Context) {
	var req GenerateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var project models.Project
	if err := h.DB.First(&project, req.ProjectID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		}
		return
	}

	var count int64
	if err := h.DB.Model(&models.Scene{}).Where("project_id = ?", project.ID).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if count == 0 {
		// Input error: surfaced to the user, never retried.
		c.JSON(http.StatusBadRequest, gin.H{"error": "Add at least one scene to generate video"})
		return
	}

	task := tasks.RenderTaskPayload{TaskID: tasks.NewTaskID(), ProjectID: project.ID}
	if err := tasks.Enqueue(c.Request.Context(), h.Redis, tasks.QueueVideoRender, task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue video generation"})
		return
	}

	if err := h.DB.Model(&project).Update("render_status", models.RenderQueued).Error; err != nil {
		log.Printf("Error marking project %d queued: %v", project.ID, err)
	}
	h.publishStatus(c, project.ID, models.RenderQueued, "render queued")

	c.JSON(http.StatusAccepted, gin.H{
		"task_id":       task.TaskID,
		"project_id":    project.ID,
		"render_status": models.RenderQueued,
	})
}

type GenerateVoiceoverRequest struct {
	SceneID   uint   `json:"scene_id" binding:"required"`
	Text      string `json:"text" binding:"required"`
	VoiceType string `json:"voice_type"`
}

// GenerateVoiceover queues narration synthesis for one scene.
func (h *Handler) GenerateVoiceover(c *gin.Context) {
	var req GenerateVoiceoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var scene models.Scene
	if err := h.DB.First(&scene, req.SceneID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Scene not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		}
		return
	}

	updates := map[string]interface{}{
		"status":           models.SceneGenerating,
		"voice_over_text":  req.Text,
		"voice_over_voice": req.VoiceType,
	}
	if err := h.DB.Model(&scene).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update scene"})
		return
	}

	task := tasks.VoiceoverTaskPayload{
		TaskID:    tasks.NewTaskID(),
		SceneID:   scene.ID,
		Text:      req.Text,
		VoiceType: req.VoiceType,
	}
	if err := tasks.Enqueue(c.Request.Context(), h.Redis, tasks.QueueVoiceover, task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue voice-over generation"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"task_id": task.TaskID, "scene_id": scene.ID})
}

// JobStatus passes a job-status query through to the generation service,
// preserving its response envelope.
func (h *Handler) JobStatus(c *gin.Context) {
	jobID := c.Param("jobId")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job ID"})
		return
	}

	job, err := h.Renderer.JobStatus(c.Request.Context(), jobID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"job": job}})
}

func (h *Handler) publishStatus(c *gin.Context, projectID uint, status, detail string) {
	msg := tasks.StatusMessage{ProjectID: projectID, Status: status, Detail: detail}
	if err := tasks.PublishStatus(c.Request.Context(), h.Redis, msg); err != nil {
		log.Printf("Error publishing to redis: %v", err)
	}
}
