package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/padel-assistant/backend/internal/model/chat"
	"github.com/zhouzirui/padel-assistant/backend/internal/model/profile"
)

type fakeChatModel struct {
	reply string
	err   error
	seen  []*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.seen = input
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	f.seen = input
	return schema.StreamReaderFromArray([]*schema.Message{schema.AssistantMessage(f.reply, nil)}), nil
}

func coachProfile(t *testing.T) profile.Profile {
	t.Helper()
	p, ok := profile.NewMemoryStore(profile.Seed()).FindByID("coach")
	if !ok {
		t.Fatal("expected coach profile")
	}
	return p
}

func TestReplierSendsPromptAndHistory(t *testing.T) {
	fake := &fakeChatModel{reply: "  Trabaja la volea baja.  "}
	svc, err := NewServiceWithModel(context.Background(), fake, 2)
	if err != nil {
		t.Fatalf("NewServiceWithModel err: %v", err)
	}

	history := []chat.Message{
		{ID: "000001", Role: chat.RoleAssistant, Content: "Soy tu AI Coach."},
		{ID: "000002", Role: chat.RoleUser, Content: "hola"},
		{ID: "000003", Role: chat.RoleAssistant, Content: "¿Qué quieres mejorar?"},
		{ID: "000004", Role: chat.RoleUser, Content: "mi volea"},
	}

	reply, err := svc.Replier(coachProfile(t)).GenerateReply(context.Background(), history, "mi volea")
	if err != nil {
		t.Fatalf("GenerateReply err: %v", err)
	}
	if reply != "Trabaja la volea baja." {
		t.Fatalf("unexpected reply %q", reply)
	}

	// system + two history messages + query
	if len(fake.seen) != 4 {
		t.Fatalf("expected 4 model messages, got %d", len(fake.seen))
	}
	if fake.seen[0].Role != schema.System || !strings.Contains(fake.seen[0].Content, "Entrenamiento") {
		t.Fatalf("system prompt missing catalogue: %q", fake.seen[0].Content)
	}
	if fake.seen[1].Content != "hola" || fake.seen[3].Content != "mi volea" {
		t.Fatalf("unexpected conversation: %+v", fake.seen)
	}
}

func TestReplierFallsBackOnEmptyAnswer(t *testing.T) {
	svc, err := NewServiceWithModel(context.Background(), &fakeChatModel{reply: " "}, 0)
	if err != nil {
		t.Fatalf("NewServiceWithModel err: %v", err)
	}

	p := coachProfile(t)
	reply, err := svc.Replier(p).GenerateReply(context.Background(), nil, "hola")
	if err != nil {
		t.Fatalf("GenerateReply err: %v", err)
	}
	if reply != p.FallbackReply {
		t.Fatalf("expected fallback reply, got %q", reply)
	}
}

func TestReplierPropagatesModelErrors(t *testing.T) {
	svc, err := NewServiceWithModel(context.Background(), &fakeChatModel{err: errors.New("quota")}, 0)
	if err != nil {
		t.Fatalf("NewServiceWithModel err: %v", err)
	}

	if _, err := svc.Replier(coachProfile(t)).GenerateReply(context.Background(), nil, "hola"); err == nil {
		t.Fatal("expected error")
	}
}

func TestBuildSystemPromptListsActions(t *testing.T) {
	p, _ := profile.NewMemoryStore(profile.Seed()).FindByID("admin")
	system := BuildSystemPrompt(p)

	for _, want := range []string{"Moderación: Moderar Contenido, Revisar Reportes, Sancionar Usuario", "Usuarios:"} {
		if !strings.Contains(system, want) {
			t.Fatalf("system prompt missing %q:\n%s", want, system)
		}
	}
}
