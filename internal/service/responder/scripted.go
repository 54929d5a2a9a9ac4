package responder

import (
	"context"
	"log"
	"time"

	"github.com/zhouzirui/padel-assistant/backend/internal/analysis/intent"
	"github.com/zhouzirui/padel-assistant/backend/internal/model/chat"
	"github.com/zhouzirui/padel-assistant/backend/internal/model/profile"
)

// KeywordReplier answers with the first canned reply whose keywords occur in
// the user text, or the profile fallback.
type KeywordReplier struct {
	profile profile.Profile
	delay   time.Duration
}

// NewKeywordReplier creates a scripted replier that waits delay before answering.
func NewKeywordReplier(p profile.Profile, delay time.Duration) *KeywordReplier {
	return &KeywordReplier{profile: p, delay: delay}
}

// GenerateReply implements the reply collaborator.
func (r *KeywordReplier) GenerateReply(ctx context.Context, _ []chat.Message, text string) (string, error) {
	if err := sleep(ctx, r.delay); err != nil {
		return "", err
	}

	if rule, ok := intent.Match(text, r.profile.Replies); ok {
		hits := intent.Score(text, r.profile.Replies)[rule.Intent]
		log.Printf("[responder] profile=%s intent=%s hits=%d", r.profile.ID, rule.Intent, hits)
		return rule.Reply, nil
	}
	return r.profile.FallbackReply, nil
}

// ScriptedExecutor resolves actions to the profile's canned results.
type ScriptedExecutor struct {
	profile profile.Profile
	delay   time.Duration
}

// NewScriptedExecutor creates a scripted executor that waits delay per action.
func NewScriptedExecutor(p profile.Profile, delay time.Duration) *ScriptedExecutor {
	return &ScriptedExecutor{profile: p, delay: delay}
}

// ExecuteAction implements the action collaborator. Kinds without a scripted
// result return an empty string so the engine writes its completion text.
func (e *ScriptedExecutor) ExecuteAction(ctx context.Context, kind string) (string, error) {
	if err := sleep(ctx, e.delay); err != nil {
		return "", err
	}
	return e.profile.ActionResults[kind], nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
