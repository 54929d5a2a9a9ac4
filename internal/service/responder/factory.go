package responder

import (
	"log"

	"github.com/zhouzirui/padel-assistant/backend/internal/config"
	"github.com/zhouzirui/padel-assistant/backend/internal/model/profile"
	"github.com/zhouzirui/padel-assistant/backend/internal/service/ai"
	chatservice "github.com/zhouzirui/padel-assistant/backend/internal/service/chat"
)

// Factory picks the collaborators of each profile: the LLM replier for the
// profiles configured for it, scripted ones otherwise. Actions are always
// scripted.
type Factory struct {
	cfg config.AssistantConfig
	llm *ai.Service
}

// NewFactory creates a factory. llm may be nil when AI is not configured.
func NewFactory(cfg config.AssistantConfig, llm *ai.Service) *Factory {
	return &Factory{cfg: cfg, llm: llm}
}

// Build implements chatservice.CollaboratorFactory.
func (f *Factory) Build(p profile.Profile) (chatservice.ReplyGenerator, chatservice.ActionExecutor, error) {
	executor := NewScriptedExecutor(p, f.cfg.ActionDelay)

	if f.llm != nil && f.cfg.UsesLLM(p.ID) {
		log.Printf("[responder] profile=%s answered by LLM", p.ID)
		return f.llm.Replier(p), executor, nil
	}
	return NewKeywordReplier(p, f.cfg.ReplyDelay), executor, nil
}
