package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zhouzirui/padel-assistant/backend/internal/model/catalog"
	"github.com/zhouzirui/padel-assistant/backend/internal/model/chat"
	chatservice "github.com/zhouzirui/padel-assistant/backend/internal/service/chat"
)

type sessionEventMsg chatservice.Event

type model struct {
	controller *chatservice.Controller
	events     <-chan chatservice.Event

	messages   []chat.Message
	categories []string
	actions    []catalog.Definition
	statusLine string
	statusErr  bool

	width  int
	height int

	input      textinput.Model
	transcript viewport.Model
	spinner    spinner.Model

	theme uiTheme
}

func newModel(controller *chatservice.Controller, events <-chan chatservice.Event) model {
	input := textinput.New()
	input.Prompt = "❯ "
	input.CharLimit = 2000
	input.Placeholder = "Escribe tu mensaje... (/1../9 ejecuta una acción)"
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#a3e635"))

	transcript := viewport.New(0, 0)
	transcript.MouseWheelEnabled = true

	m := model{
		controller: controller,
		events:     events,
		categories: controller.Categories(),
		statusLine: "listo",
		input:      input,
		transcript: transcript,
		spinner:    sp,
		theme:      newTheme(),
	}
	m.refresh()
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textinput.Blink, waitEvent(m.events))
}

func waitEvent(ch <-chan chatservice.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return nil
		}
		return sessionEventMsg(evt)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.renderTranscript()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	case sessionEventMsg:
		m.applyEvent(chatservice.Event(msg))
		cmds = append(cmds, waitEvent(m.events))
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			m.cycleCategory(1)
			return m, nil
		case "shift+tab":
			m.cycleCategory(-1)
			return m, nil
		case "ctrl+e":
			m.controller.ToggleExpanded()
			m.resize()
			return m, nil
		case "ctrl+r":
			m.controller.Reset()
			m.setStatus("conversación reiniciada", false)
			m.refresh()
			return m, nil
		case "enter":
			m.submit(m.input.Value())
			m.input.SetValue("")
			m.refresh()
			return m, nil
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.transcript, cmd = m.transcript.Update(msg)
			return m, cmd
		}
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// submit routes the input line to a text submission or an action shortcut.
func (m *model) submit(line string) {
	if index, ok := parseActionShortcut(line); ok {
		if index >= len(m.actions) {
			m.setStatus(fmt.Sprintf("no hay acción %d en %s", index+1, m.controller.ActiveCategory()), true)
			return
		}
		def := m.actions[index]
		accepted, err := m.controller.InvokeAction(def.Kind)
		switch {
		case err != nil:
			m.setStatus(err.Error(), true)
		case !accepted:
			m.setStatus("el asistente está ocupado", true)
		default:
			m.setStatus("ejecutando "+def.Label, false)
		}
		return
	}

	if strings.TrimSpace(line) == "" {
		return
	}
	if !m.controller.SubmitText(line) {
		m.setStatus("el asistente está ocupado", true)
		return
	}
	m.setStatus("pensando...", false)
}

func (m *model) cycleCategory(step int) {
	if len(m.categories) == 0 {
		return
	}
	next := nextCategory(m.categories, m.controller.ActiveCategory(), step)
	if err := m.controller.SetActiveCategory(next); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.refresh()
}

func (m *model) applyEvent(evt chatservice.Event) {
	switch evt.Type {
	case chatservice.EventDispatchFailed:
		m.setStatus("error: "+evt.Error, true)
	case chatservice.EventBusyChanged:
		if !evt.Busy && !m.statusErr {
			m.setStatus("listo", false)
		}
	}
	m.refresh()
}

func (m *model) setStatus(text string, isErr bool) {
	m.statusLine = text
	m.statusErr = isErr
}

func (m *model) refresh() {
	m.messages = m.controller.Messages()
	actions, err := m.controller.ActionsIn(m.controller.ActiveCategory())
	if err != nil {
		actions = nil
	}
	m.actions = actions
	m.renderTranscript()
}

func (m *model) resize() {
	if m.width == 0 {
		return
	}
	reserved := 7 // header, input and footer
	if m.controller.Expanded() {
		reserved += 4 + len(m.actions)
	}
	m.transcript.Width = m.width - 2
	m.transcript.Height = max(m.height-reserved, 3)
	m.input.Width = m.width - 6
}

func (m *model) renderTranscript() {
	var b strings.Builder
	for i, msg := range m.messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.renderMessage(msg))
	}
	m.transcript.SetContent(b.String())
	m.transcript.GotoBottom()
}

func (m model) renderMessage(msg chat.Message) string {
	who := m.theme.assistant.Render("Asistente")
	if msg.Role == chat.RoleUser {
		who = m.theme.user.Render("Tú")
	}
	line := fmt.Sprintf("%s %s", who, m.theme.timestamp.Render(msg.DisplayTime))
	if msg.Action != nil {
		line += " " + m.statusBadge(msg.Action.Status)
	}
	content := msg.Content
	if m.transcript.Width > 4 {
		content = lipgloss.NewStyle().Width(m.transcript.Width - 2).Render(content)
	}
	return line + "\n" + content
}

func (m model) statusBadge(status chat.ActionStatus) string {
	switch status {
	case chat.ActionPending:
		return m.theme.pending.Render("[" + m.spinner.View() + " en curso]")
	case chat.ActionCompleted:
		return m.theme.completed.Render("[completada]")
	default:
		return m.theme.failed.Render("[fallida]")
	}
}

func (m model) View() string {
	p := m.controller.Profile()

	busy := ""
	if m.controller.IsBusy() {
		busy = " " + m.spinner.View()
	}
	header := m.theme.header.Render(m.theme.title.Render(p.Name) + " · " + p.Title + busy)

	sections := []string{header, m.transcript.View()}
	if m.controller.Expanded() {
		sections = append(sections, m.renderActions())
	}

	status := m.theme.status.Render(m.statusLine)
	if m.statusErr {
		status = m.theme.errorStatus.Render(m.statusLine)
	}
	help := m.theme.helpText.Render("enter enviar · tab categoría · ctrl+e acciones · ctrl+r reiniciar · esc salir")

	sections = append(sections,
		m.theme.inputPanel.Render(m.input.View()),
		m.theme.footer.Render(status+"  "+help),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m model) renderActions() string {
	active := m.controller.ActiveCategory()
	tabs := make([]string, 0, len(m.categories))
	for _, name := range m.categories {
		style := m.theme.tabInactive
		if name == active {
			style = m.theme.tabActive
		}
		tabs = append(tabs, style.Render(name))
	}

	lines := []string{lipgloss.JoinHorizontal(lipgloss.Top, tabs...)}
	for i, def := range m.actions {
		lines = append(lines, fmt.Sprintf("/%d  %s", i+1, def.Label))
	}
	return m.theme.panel.Render(strings.Join(lines, "\n"))
}

// parseActionShortcut maps "/3" to the zero-based action index 2.
func parseActionShortcut(line string) (int, bool) {
	line = strings.TrimSpace(line)
	if len(line) < 2 || line[0] != '/' {
		return 0, false
	}
	n, err := strconv.Atoi(line[1:])
	if err != nil || n < 1 || n > 9 {
		return 0, false
	}
	return n - 1, true
}

func nextCategory(categories []string, current string, step int) string {
	idx := 0
	for i, name := range categories {
		if name == current {
			idx = i
			break
		}
	}
	n := len(categories)
	return categories[((idx+step)%n+n)%n]
}
