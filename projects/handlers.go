package projects

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/julianader/veoflow-api/models"
	"github.com/julianader/veoflow-api/renderer"
	"github.com/julianader/veoflow-api/tasks"
	"github.com/julianader/veoflow-api/timeline"
)

type Handler struct {
	DB    *gorm.DB
	Redis *redis.Client
	Media *renderer.Client
}

func NewHandler(db *gorm.DB, rdb *redis.Client, media *renderer.Client) *Handler {
	return &Handler{DB: db, Redis: rdb, Media: media}
}

type CreateProjectRequest struct {
	Name             string `json:"name" binding:"required"`
	SelectedPreset   string `json:"selected_preset"`
	VoiceOverEnabled bool   `json:"voice_over_enabled"`
}

func (h *Handler) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.SelectedPreset == "" {
		req.SelectedPreset = models.DefaultPresetID
	}

	project := models.Project{
		Name:             req.Name,
		SelectedPreset:   req.SelectedPreset,
		VoiceOverEnabled: req.VoiceOverEnabled,
		RenderStatus:     models.RenderIdle,
	}

	if err := h.DB.Create(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	h.publishStatus(c, project.ID, models.RenderIdle, "project created")

	c.JSON(http.StatusOK, project)
}

func (h *Handler) ListProjects(c *gin.Context) {
	var projects []models.Project
	if err := h.DB.Order("updated_at DESC").Find(&projects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
		return
	}

	c.JSON(http.StatusOK, projects)
}

func (h *Handler) GetProject(c *gin.Context) {
	project, ok := h.loadProject(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, project)
}

// UpdateProjectRequest is a partial update: only the provided fields change.
// The job lifecycle's video-URL write-back uses exactly this route with a
// body of {"finalVideoUrl": ...} and nothing else.
type UpdateProjectRequest struct {
	Name             *string `json:"name"`
	SelectedPreset   *string `json:"selected_preset"`
	VoiceOverEnabled *bool   `json:"voice_over_enabled"`
	FinalVideoURL    *string `json:"finalVideoUrl"`
}

func (h *Handler) UpdateProject(c *gin.Context) {
	project, ok := h.loadProject(c)
	if !ok {
		return
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.SelectedPreset != nil {
		updates["selected_preset"] = *req.SelectedPreset
	}
	if req.VoiceOverEnabled != nil {
		updates["voice_over_enabled"] = *req.VoiceOverEnabled
	}
	if req.FinalVideoURL != nil {
		updates["final_video_url"] = *req.FinalVideoURL
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, project)
		return
	}

	if err := h.DB.Model(&project).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	c.JSON(http.StatusOK, project)
}

func (h *Handler) DeleteProject(c *gin.Context) {
	project, ok := h.loadProject(c)
	if !ok {
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Scene{}).Error; err != nil {
			return err
		}
		return tx.Delete(&project).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": project.ID})
}

type CreateSceneRequest struct {
	Prompt   string `json:"prompt" binding:"required"`
	Duration int    `json:"duration"`
	Style    string `json:"style"`
}

func (h *Handler) CreateScene(c *gin.Context) {
	project, ok := h.loadProject(c)
	if !ok {
		return
	}

	var req CreateSceneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var count int64
	h.DB.Model(&models.Scene{}).Where("project_id = ?", project.ID).Count(&count)

	scene := models.Scene{
		ProjectID: project.ID,
		Position:  int(count),
		Prompt:    req.Prompt,
		Duration:  models.ClampDuration(req.Duration),
		Style:     req.Style,
		Status:    models.ScenePending,
	}

	if err := h.DB.Create(&scene).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create scene"})
		return
	}

	if err := h.recalcTotalDuration(project.ID); err != nil {
		log.Printf("Error recalculating duration for project %d: %v", project.ID, err)
	}

	c.JSON(http.StatusOK, scene)
}

type UpdateSceneRequest struct {
	Prompt           *string `json:"prompt"`
	Duration         *int    `json:"duration"`
	Style            *string `json:"style"`
	VoiceOverEnabled *bool   `json:"voice_over_enabled"`
	VoiceOverText    *string `json:"voice_over_text"`
	VoiceOverVoice   *string `json:"voice_over_voice"`
}

func (h *Handler) UpdateScene(c *gin.Context) {
	project, ok := h.loadProject(c)
	if !ok {
		return
	}
	scene, ok := h.loadScene(c, project.ID)
	if !ok {
		return
	}

	var req UpdateSceneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Prompt != nil {
		updates["prompt"] = *req.Prompt
	}
	if req.Duration != nil {
		updates["duration"] = models.ClampDuration(*req.Duration)
	}
	if req.Style != nil {
		updates["style"] = *req.Style
	}
	if req.VoiceOverEnabled != nil {
		updates["voice_over_enabled"] = *req.VoiceOverEnabled
	}
	if req.VoiceOverText != nil {
		updates["voice_over_text"] = *req.VoiceOverText
	}
	if req.VoiceOverVoice != nil {
		updates["voice_over_voice"] = *req.VoiceOverVoice
	}

	if len(updates) > 0 {
		if err := h.DB.Model(&scene).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update scene"})
			return
		}
		if req.Duration != nil {
			if err := h.recalcTotalDuration(project.ID); err != nil {
				log.Printf("Error recalculating duration for project %d: %v", project.ID, err)
			}
		}
	}

	c.JSON(http.StatusOK, scene)
}

func (h *Handler) DeleteScene(c *gin.Context) {
	project, ok := h.loadProject(c)
	if !ok {
		return
	}
	scene, ok := h.loadScene(c, project.ID)
	if !ok {
		return
	}

	// Delete and close the position gap in one transaction so the sequence
	// stays contiguous.
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&scene).Error; err != nil {
			return err
		}
		return tx.Model(&models.Scene{}).
			Where("project_id = ? AND position > ?", project.ID, scene.Position).
			UpdateColumn("position", gorm.Expr("position - 1")).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete scene"})
		return
	}

	if err := h.recalcTotalDuration(project.ID); err != nil {
		log.Printf("Error recalculating duration for project %d: %v", project.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{"deleted": scene.ID})
}

type ReorderScenesRequest struct {
	SceneIDs []uint `json:"scene_ids" binding:"required"`
}

// ReorderScenes replaces the scene order wholesale. Track offsets are always
// rederived from this order, so a reorder implicitly moves every voice-over.
func (h *Handler) ReorderScenes(c *gin.Context) {
	project, ok := h.loadProject(c)
	if !ok {
		return
	}

	var req ReorderScenesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var scenes []models.Scene
	if err := h.DB.Where("project_id = ?", project.ID).Find(&scenes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve scenes"})
		return
	}

	if len(req.SceneIDs) != len(scenes) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scene_ids must contain every scene exactly once"})
		return
	}
	existing := make(map[uint]bool, len(scenes))
	for _, s := range scenes {
		existing[s.ID] = true
	}
	for _, id := range req.SceneIDs {
		if !existing[id] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown scene id"})
			return
		}
		delete(existing, id)
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		for position, id := range req.SceneIDs {
			if err := tx.Model(&models.Scene{}).Where("id = ?", id).
				UpdateColumn("position", position).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reorder scenes"})
		return
	}

	ordered, err := h.orderedScenes(project.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve scenes"})
		return
	}

	c.JSON(http.StatusOK, ordered)
}

// GetTimeline returns the derived audio track list for the project's current
// scene sequence, with audio URLs resolved against the local media host.
func (h *Handler) GetTimeline(c *gin.Context) {
	project, ok := h.loadProject(c)
	if !ok {
		return
	}

	scenes, err := h.orderedScenes(project.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve scenes"})
		return
	}

	tracks := timeline.BuildTracks(scenes)
	for i := range tracks {
		tracks[i].AudioURL = h.Media.ResolveAudioURL(tracks[i].AudioURL)
	}

	c.JSON(http.StatusOK, gin.H{
		"tracks":         tracks,
		"total_duration": timeline.TotalDuration(scenes),
	})
}

func (h *Handler) ListPresets(c *gin.Context) {
	c.JSON(http.StatusOK, models.StylePresets())
}

type StoryboardRequest struct {
	Topic string `json:"topic" binding:"required"`
}

// DraftStoryboard queues LLM scene drafting for a project.
func (h *Handler) DraftStoryboard(c *gin.Context) {
	project, ok := h.loadProject(c)
	if !ok {
		return
	}

	var req StoryboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task := tasks.StoryboardTaskPayload{
		TaskID:    tasks.NewTaskID(),
		ProjectID: project.ID,
		Topic:     req.Topic,
	}
	if err := tasks.Enqueue(c.Request.Context(), h.Redis, tasks.QueueStoryboard, task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue storyboard draft"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"task_id": task.TaskID})
}

// ---
// helpers
// ---

func (h *Handler) loadProject(c *gin.Context) (models.Project, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return models.Project{}, false
	}

	var project models.Project
	if err := h.DB.Preload("Scenes", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&project, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		}
		return models.Project{}, false
	}
	return project, true
}

func (h *Handler) loadScene(c *gin.Context, projectID uint) (models.Scene, bool) {
	id, err := strconv.ParseUint(c.Param("sceneId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scene ID"})
		return models.Scene{}, false
	}

	var scene models.Scene
	if err := h.DB.First(&scene, "id = ? AND project_id = ?", id, projectID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Scene not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		}
		return models.Scene{}, false
	}
	return scene, true
}

func (h *Handler) orderedScenes(projectID uint) ([]models.Scene, error) {
	var scenes []models.Scene
	err := h.DB.Where("project_id = ?", projectID).Order("position ASC").Find(&scenes).Error
	return scenes, err
}

func (h *Handler) recalcTotalDuration(projectID uint) error {
	scenes, err := h.orderedScenes(projectID)
	if err != nil {
		return err
	}
	total := 0
	for _, s := range scenes {
		total += s.Duration
	}
	return h.DB.Model(&models.Project{}).Where("id = ?", projectID).
		UpdateColumn("total_duration", total).Error
}

func (h *Handler) publishStatus(c *gin.Context, projectID uint, status, detail string) {
	msg := tasks.StatusMessage{ProjectID: projectID, Status: status, Detail: detail}
	if err := tasks.PublishStatus(c.Request.Context(), h.Redis, msg); err != nil {
		log.Printf("Error publishing to redis: %v", err)
	}
}
