package models

// StylePreset is one entry of the fixed visual-style catalog. Presets are
// not persisted; the catalog ships with the binary.
type StylePreset struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
}

// DefaultPresetID is applied to new projects and used when a preset lookup
// misses.
const DefaultPresetID = "1"

var stylePresets = []StylePreset{
	{ID: "1", Name: "Cinematic", Description: "Hollywood-style dramatic scenes", Thumbnail: "🎬"},
	{ID: "2", Name: "Documentary", Description: "Professional real-world footage", Thumbnail: "📹"},
	{ID: "3", Name: "Animated", Description: "Cartoon and motion graphics", Thumbnail: "🎨"},
	{ID: "4", Name: "Tech Demo", Description: "Clean, modern technology showcase", Thumbnail: "💻"},
	{ID: "5", Name: "Educational", Description: "Clear instructional style", Thumbnail: "📚"},
	{ID: "6", Name: "Commercial", Description: "Product and brand advertising", Thumbnail: "🎯"},
}

// StylePresets returns the preset catalog in display order.
func StylePresets() []StylePreset {
	out := make([]StylePreset, len(stylePresets))
	copy(out, stylePresets)
	return out
}

// PresetName resolves a preset id to its display name, falling back to the
// default preset when the id is unknown.
func PresetName(id string) string {
	for _, p := range stylePresets {
		if p.ID == id {
			return p.Name
		}
	}
	return "Cinematic"
}
