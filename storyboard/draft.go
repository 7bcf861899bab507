package storyboard

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/julianader/veoflow-api/models"
)

// Breakdown is the structured output for the storyboard drafting call.
type Breakdown struct {
	Scenes []SceneDraft `json:"scenes" jsonschema_description:"A list of distinct visual scenes that make up the video. Aim for 3-5 scenes."`
}

// SceneDraft represents a single drafted scene.
type SceneDraft struct {
	Prompt   string  `json:"prompt" jsonschema_description:"A detailed, visual text-to-video prompt for this scene's action and setting."`
	Duration float32 `json:"duration" jsonschema_description:"The approximate duration of this scene in seconds. Each scene should run 5 to 30 seconds."`
}

// GenerateSchema generates a JSON schema for structured outputs
func GenerateSchema[T any]() interface{} {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	return schema
}

// breakdownSchema is the cached schema
var breakdownSchema = GenerateSchema[Breakdown]()

// GenerateStoryboard drafts 3-5 scenes for a topic in the given visual
// style. Drafted durations are clamped to the editor's 5-30s bounds and the
// scenes come back in storyboard order, ready to append to a project.
func GenerateStoryboard(ctx context.Context, topic, styleName string) ([]models.Scene, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	prompt := fmt.Sprintf(`You are a visual storyteller drafting a storyboard for a short video about: "%s".
The overall visual style is "%s".
Create 3 to 5 distinct scenes. For each scene, write a detailed text-to-video
prompt describing the setting and action, and give an approximate duration in
seconds. Each scene should run between 5 and 30 seconds. Keep the styling and
color grading consistent with the overall style across all scenes.`, topic, styleName)

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "storyboard_breakdown",
		Description: openai.String("A storyboard of scenes for a short video"),
		Schema:      breakdownSchema,
		Strict:      openai.Bool(true),
	}

	chatCompletion, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModelGPT4oMini,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: schemaParam,
			},
		},
	})

	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(chatCompletion.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	rawResponse := chatCompletion.Choices[0].Message.Content
	if rawResponse == "" {
		return nil, fmt.Errorf("OpenAI returned empty response. Finish reason: %s", chatCompletion.Choices[0].FinishReason)
	}

	var breakdown Breakdown
	if err := json.Unmarshal([]byte(rawResponse), &breakdown); err != nil {
		return nil, fmt.Errorf("failed to parse OpenAI JSON response: %w", err)
	}

	if len(breakdown.Scenes) == 0 {
		return nil, fmt.Errorf("LLM returned no scenes")
	}

	return draftsToScenes(breakdown.Scenes, styleName), nil
}

// draftsToScenes converts drafted scenes to editor scenes in storyboard
// order.
func draftsToScenes(drafts []SceneDraft, styleName string) []models.Scene {
	scenes := make([]models.Scene, 0, len(drafts))
	for i, draft := range drafts {
		scenes = append(scenes, models.Scene{
			Position: i,
			Prompt:   draft.Prompt,
			Duration: clampDuration(draft.Duration),
			Style:    styleName,
			Status:   models.ScenePending,
		})
	}
	return scenes
}

// clampDuration rounds a drafted duration to whole seconds within the
// editor's bounds.
func clampDuration(seconds float32) int {
	rounded := int(math.Round(float64(seconds)))
	return models.ClampDuration(rounded)
}
