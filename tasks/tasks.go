package tasks

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ---
// QUEUE DEFINITIONS
// ---
// We define all queue names as constants here.
const (
	// QueueVideoRender submits a project's combined video to the remote
	// generation service and tracks the job to completion.
	QueueVideoRender = "q_video_render"

	// QueueVoiceover generates the narration audio for a single scene.
	QueueVoiceover = "q_voiceover"

	// QueueStoryboard drafts scenes for a project from a topic.
	QueueStoryboard = "q_storyboard"
)

// StatusChannel is the redis pub/sub channel carrying project status events.
const StatusChannel = "project_status"

// ---
// TASK PAYLOADS
// ---
// These are the structs that will be JSON-marshalled and sent to Redis.

// RenderTaskPayload is the payload for QueueVideoRender.
type RenderTaskPayload struct {
	TaskID    string `json:"task_id"`
	ProjectID uint   `json:"project_id"`
}

// VoiceoverTaskPayload is the payload for QueueVoiceover.
type VoiceoverTaskPayload struct {
	TaskID    string `json:"task_id"`
	SceneID   uint   `json:"scene_id"`
	Text      string `json:"text"`
	VoiceType string `json:"voice_type"`
}

// StoryboardTaskPayload is the payload for QueueStoryboard.
type StoryboardTaskPayload struct {
	TaskID    string `json:"task_id"`
	ProjectID uint   `json:"project_id"`
	Topic     string `json:"topic"`
}

// StatusMessage is published on StatusChannel whenever a project's render
// state changes.
type StatusMessage struct {
	ProjectID uint   `json:"project_id"`
	Status    string `json:"status"`
	Detail    string `json:"detail,omitempty"`
}

// ---
// HELPER FUNCTIONS
// ---

// NewTaskID returns a correlation id used to trace a task through logs.
func NewTaskID() string {
	return uuid.NewString()
}

// Marshal creates a JSON payload for a task.
func Marshal(payload interface{}) (string, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Enqueue adds a task to a queue.
func Enqueue(ctx context.Context, rdb *redis.Client, queueName string, payload interface{}) error {
	payloadStr, err := Marshal(payload)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queueName, payloadStr).Err()
}

// PublishStatus emits a project status event. Status events are advisory;
// publish failures are the caller's to log.
func PublishStatus(ctx context.Context, rdb *redis.Client, msg StatusMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return rdb.Publish(ctx, StatusChannel, payload).Err()
}
