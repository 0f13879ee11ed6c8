package kiro

// Model describes a model selectable with `kiro-cli chat --model`.
type Model struct {
	ID          string
	Name        string
	Description string
}

// DefaultModel lets kiro-cli choose.
const DefaultModel = "auto"

// AllModels is the ordered built-in model catalog.
var AllModels = []Model{
	{ID: DefaultModel, Name: "Auto", Description: "Let kiro-cli pick the best model for the task"},
	{ID: "claude-sonnet-4.5", Name: "Claude Sonnet 4.5"},
	{ID: "claude-sonnet-4", Name: "Claude Sonnet 4"},
	{ID: "claude-haiku-4.5", Name: "Claude Haiku 4.5"},
}

// ModelByID returns the catalog entry for id, or false if not found.
func ModelByID(id string) (Model, bool) {
	for _, m := range AllModels {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}

// Catalog returns the built-in models, with preferred appended when it is
// not already listed.
func Catalog(preferred string) []Model {
	models := append([]Model(nil), AllModels...)
	if preferred != "" {
		if _, ok := ModelByID(preferred); !ok {
			models = append(models, Model{ID: preferred, Name: preferred})
		}
	}
	return models
}
