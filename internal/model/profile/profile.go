package profile

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/padel-assistant/backend/internal/analysis/intent"
	"github.com/zhouzirui/padel-assistant/backend/internal/model/catalog"
)

const (
	defaultPendingTemplate = "Ejecutando acción: %s..."
	defaultResultTemplate  = "Acción completada: %s"
	defaultFailureReply    = "Lo siento, no pude completar tu solicitud. Inténtalo de nuevo."
)

// Profile configures one assistant widget: its greeting, action catalogue and
// the canned behaviour of its scripted collaborators.
type Profile struct {
	ID              string             `json:"id" toml:"id"`
	Name            string             `json:"name" toml:"name"`
	Title           string             `json:"title" toml:"title"`
	Greeting        string             `json:"greeting" toml:"greeting"`
	PromptHint      string             `json:"promptHint,omitempty" toml:"prompt_hint"`
	DefaultCategory string             `json:"defaultCategory,omitempty" toml:"default_category"`
	Categories      []catalog.Category `json:"categories" toml:"categories"`

	Replies         []intent.Rule     `json:"-" toml:"replies"`
	FallbackReply   string            `json:"-" toml:"fallback_reply"`
	ActionResults   map[string]string `json:"-" toml:"action_results"`
	PendingTemplate string            `json:"-" toml:"pending_template"`
	ResultTemplate  string            `json:"-" toml:"result_template"`
	FailureReply    string            `json:"-" toml:"failure_reply"`
}

// Summary is the public listing shape of a profile.
type Summary struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Title           string   `json:"title"`
	DefaultCategory string   `json:"defaultCategory,omitempty"`
	Categories      []string `json:"categories"`
}

// Summary strips the scripted collaborator data.
func (p Profile) Summary() Summary {
	names := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		names = append(names, c.Name)
	}
	return Summary{
		ID:              p.ID,
		Name:            p.Name,
		Title:           p.Title,
		DefaultCategory: p.InitialCategory(),
		Categories:      names,
	}
}

// Registry builds the action catalogue of the profile.
func (p Profile) Registry() (*catalog.Registry, error) {
	r, err := catalog.NewRegistry(p.Categories)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", p.ID, err)
	}
	return r, nil
}

// InitialCategory is DefaultCategory or, when unset, the first category.
func (p Profile) InitialCategory() string {
	if p.DefaultCategory != "" {
		return p.DefaultCategory
	}
	if len(p.Categories) > 0 {
		return p.Categories[0].Name
	}
	return ""
}

// PendingContent renders the placeholder shown while an action runs.
func (p Profile) PendingContent(label string) string {
	return fmt.Sprintf(orDefault(p.PendingTemplate, defaultPendingTemplate), label)
}

// ResultFallback renders the result of an action without a scripted text.
func (p Profile) ResultFallback(label string) string {
	return fmt.Sprintf(orDefault(p.ResultTemplate, defaultResultTemplate), label)
}

// Failure is the best-effort message appended when a collaborator fails.
func (p Profile) Failure() string {
	return orDefault(p.FailureReply, defaultFailureReply)
}

// Validate checks the fields every profile needs.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("profile id is required")
	}
	if strings.TrimSpace(p.Greeting) == "" {
		return fmt.Errorf("profile %s: greeting is required", p.ID)
	}
	registry, err := p.Registry()
	if err != nil {
		return err
	}
	if p.DefaultCategory != "" && !registry.HasCategory(p.DefaultCategory) {
		return fmt.Errorf("profile %s: default category %q is not in the catalogue", p.ID, p.DefaultCategory)
	}
	return nil
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
