package ai

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/padel-assistant/backend/internal/model/profile"
)

// BuildSystemPrompt describes the assistant profile to the model: who it is,
// what it may talk about and which panel actions the user can trigger.
func BuildSystemPrompt(p profile.Profile) string {
	var builder strings.Builder

	hint := strings.TrimSpace(p.PromptHint)
	if hint == "" {
		hint = fmt.Sprintf("Eres %s, %s.", p.Name, p.Title)
	}
	builder.WriteString(hint)

	fmt.Fprintf(&builder, "\n\nPerfil:\n- Nombre: %s\n- Rol: %s", p.Name, p.Title)

	if len(p.Categories) > 0 {
		builder.WriteString("\n\nAcciones disponibles en el panel (no las ejecutes tú, sugiérelas por su nombre):")
		for _, category := range p.Categories {
			labels := make([]string, 0, len(category.Actions))
			for _, def := range category.Actions {
				label := def.Label
				if label == "" {
					label = def.Kind
				}
				labels = append(labels, label)
			}
			fmt.Fprintf(&builder, "\n- %s: %s", category.Name, strings.Join(labels, ", "))
		}
	}

	builder.WriteString("\n\nResponde siempre en español, en pocas frases y sin inventar datos del club.")
	if greeting := strings.TrimSpace(p.Greeting); greeting != "" {
		builder.WriteString("\n\nSaludo inicial mostrado al usuario: ")
		builder.WriteString(greeting)
	}
	return builder.String()
}
