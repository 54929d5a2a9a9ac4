package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/zhouzirui/padel-assistant/backend/internal/config"
	"github.com/zhouzirui/padel-assistant/backend/internal/model/chat"
	"github.com/zhouzirui/padel-assistant/backend/internal/model/profile"
	"github.com/zhouzirui/padel-assistant/backend/internal/service/responder"
	chatservice "github.com/zhouzirui/padel-assistant/backend/internal/service/chat"
)

func main() {
	profileID := flag.String("profile", "chatbot", "Assistant profile id (chatbot|admin|coach)")
	profilesFile := flag.String("profiles", "", "Optional TOML profile catalogue (defaults to ASSISTANT_PROFILES_FILE)")
	logFile := flag.String("log", "", "Write logs to this file instead of discarding them")
	altScreen := flag.Bool("alt-screen", true, "Use the terminal alternate screen")
	flag.Parse()

	_ = godotenv.Load()

	// The TUI owns the terminal; logging goes to a file or nowhere.
	log.SetOutput(io.Discard)
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load configuration: %v\n", err)
		os.Exit(1)
	}
	if *profilesFile == "" {
		*profilesFile = cfg.Assistant.ProfilesFile
	}

	controller, err := openController(*profileID, *profilesFile, cfg.Assistant)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chat-tui: %v\n", err)
		os.Exit(1)
	}
	defer controller.Close()

	events, cancel := controller.Subscribe(64)
	defer cancel()

	opts := []tea.ProgramOption{tea.WithMouseCellMotion()}
	if *altScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	p := tea.NewProgram(newModel(controller, events), opts...)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "chat-tui fatal error: %v\n", err)
		os.Exit(1)
	}
}

// openController builds a local session with the scripted collaborators.
func openController(profileID, profilesFile string, cfg config.AssistantConfig) (*chatservice.Controller, error) {
	store, err := profile.OpenStore(profilesFile)
	if err != nil {
		return nil, err
	}
	p, ok := store.FindByID(profileID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", chatservice.ErrProfileNotFound, profileID)
	}

	return chatservice.NewController(chatservice.ControllerConfig{
		Session: chat.Session{
			ID:        uuid.NewString(),
			ProfileID: p.ID,
			CreatedAt: time.Now().UTC(),
		},
		Profile:  p,
		Replier:  responder.NewKeywordReplier(p, cfg.ReplyDelay),
		Executor: responder.NewScriptedExecutor(p, cfg.ActionDelay),
		Timeout:  cfg.DispatchTimeout,
	})
}
