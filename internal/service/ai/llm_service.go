package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/padel-assistant/backend/internal/config"
	"github.com/zhouzirui/padel-assistant/backend/internal/model/chat"
	"github.com/zhouzirui/padel-assistant/backend/internal/model/profile"
)

const defaultHistoryLimit = 10

// Service encapsulates LLM-backed reply generation
type Service struct {
	chatModel    model.BaseChatModel
	historyLimit int
	chain        compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates the Ark-backed service from configuration
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewServiceWithModel(ctx, chatModel, cfg.HistoryLimit)
}

// NewServiceWithModel compiles the reply chain around an existing chat model.
func NewServiceWithModel(ctx context.Context, chatModel model.BaseChatModel, historyLimit int) (*Service, error) {
	if historyLimit < 1 {
		historyLimit = defaultHistoryLimit
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		chatModel:    chatModel,
		historyLimit: historyLimit,
		chain:        runnable,
	}, nil
}

// Replier binds the service to one assistant profile.
func (s *Service) Replier(p profile.Profile) *Replier {
	return &Replier{service: s, profile: p, system: BuildSystemPrompt(p)}
}

// GenerateResponse runs the chain for a profile-scoped conversation
func (s *Service) GenerateResponse(ctx context.Context, p profile.Profile, system string, messages []chat.Message, userMessage string) (string, error) {
	input := map[string]any{
		"system":  system,
		"history": s.buildHistoryMessages(messages, userMessage),
		"query":   userMessage,
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}

	content := strings.TrimSpace(response.Content)
	log.Printf("[ai] generated response for profile=%s, length=%d", p.ID, len(content))
	return content, nil
}

// buildHistoryMessages converts the transcript tail into model messages. The
// trailing user message is the query itself and is left to the template.
func (s *Service) buildHistoryMessages(messages []chat.Message, userMessage string) []*schema.Message {
	if n := len(messages); n > 0 && messages[n-1].Role == chat.RoleUser && messages[n-1].Content == userMessage {
		messages = messages[:n-1]
	}
	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > s.historyLimit {
		startIdx = len(messages) - s.historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(msg.Content))
		case chat.RoleAssistant:
			// Unsettled placeholders carry no information for the model.
			if msg.IsAction() && !msg.Action.Status.Settled() {
				continue
			}
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}

	return history
}

// Replier answers user text for a single profile through the LLM chain.
type Replier struct {
	service *Service
	profile profile.Profile
	system  string
}

// GenerateReply asks the model for the next assistant message.
func (r *Replier) GenerateReply(ctx context.Context, history []chat.Message, text string) (string, error) {
	reply, err := r.service.GenerateResponse(ctx, r.profile, r.system, history, text)
	if err != nil {
		return "", err
	}
	if reply == "" {
		return r.profile.FallbackReply, nil
	}
	return reply, nil
}
