package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/aislog/internal/catalog"
	"github.com/theirongolddev/aislog/internal/cli"
	"github.com/theirongolddev/aislog/internal/model"
)

const messagePageSize = 100

// level is the active browser pane.
type level int

const (
	levelProjects level = iota
	levelSessions
	levelMessages
)

type projectItem struct{ p model.Project }

func (i projectItem) Title() string { return i.p.Name }
func (i projectItem) Description() string {
	return fmt.Sprintf("%s · %d sessions", i.p.Provider.DisplayName(), i.p.SessionCount)
}
func (i projectItem) FilterValue() string { return i.p.Name }

type sessionItem struct{ s model.Session }

func (i sessionItem) Title() string {
	if i.s.Summary != "" {
		return i.s.Summary
	}
	return i.s.SessionID
}
func (i sessionItem) Description() string {
	parts := []string{fmt.Sprintf("%d messages", i.s.MessageCount)}
	if i.s.LastMessageAt != "" {
		parts = append(parts, cli.FormatTimestamp(i.s.LastMessageAt))
	}
	if i.s.HasErrors {
		parts = append(parts, "errors")
	}
	return strings.Join(parts, " · ")
}
func (i sessionItem) FilterValue() string { return i.s.Summary + " " + i.s.SessionID }

type projectsLoadedMsg []model.Project
type sessionsLoadedMsg []model.Session
type messagesLoadedMsg *model.PaginatedMessages
type loadErrMsg struct{ err error }

// App is the three-level browser: projects, a project's sessions, and one
// session's most recent messages.
type App struct {
	cat   *catalog.Catalog
	theme Theme

	level    level
	projects list.Model
	sessions list.Model
	msgView  viewport.Model

	curProject model.Project
	curSession model.Session
	page       *model.PaginatedMessages

	width  int
	height int
	err    error
}

// NewApp builds the browser over the given catalog.
func NewApp(cat *catalog.Catalog, theme Theme) *App {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(theme.Accent).BorderLeftForeground(theme.Accent)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(theme.TextMuted).BorderLeftForeground(theme.Accent)

	projects := list.New(nil, delegate, 0, 0)
	projects.Title = "Projects"
	projects.SetShowStatusBar(false)

	sessions := list.New(nil, delegate, 0, 0)
	sessions.SetShowStatusBar(false)

	return &App{
		cat:      cat,
		theme:    theme,
		projects: projects,
		sessions: sessions,
	}
}

func (a *App) Init() tea.Cmd {
	return a.loadProjects
}

func (a *App) loadProjects() tea.Msg {
	projects, err := a.cat.ScanAllProjects()
	if err != nil {
		return loadErrMsg{err}
	}
	return projectsLoadedMsg(projects)
}

func (a *App) loadSessions() tea.Msg {
	sessions, err := a.cat.LoadSessions(a.curProject.Provider, a.curProject.Path)
	if err != nil {
		return loadErrMsg{err}
	}
	return sessionsLoadedMsg(sessions)
}

func (a *App) loadMessages() tea.Msg {
	page, err := a.cat.LoadMessages(a.curSession.Provider, a.curSession.FilePath, 0, messagePageSize)
	if err != nil {
		return loadErrMsg{err}
	}
	return messagesLoadedMsg(page)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.projects.SetSize(msg.Width, msg.Height-2)
		a.sessions.SetSize(msg.Width, msg.Height-2)
		a.msgView = viewport.New(msg.Width, msg.Height-3)
		if a.page != nil {
			a.msgView.SetContent(a.renderMessages())
			a.msgView.GotoBottom()
		}
		return a, nil

	case projectsLoadedMsg:
		items := make([]list.Item, len(msg))
		for i, p := range msg {
			items[i] = projectItem{p}
		}
		a.projects.SetItems(items)
		if snap, ok := a.cat.LastScan(); ok {
			a.projects.Title = fmt.Sprintf("Projects · %d sessions", snap.SessionCount)
		}
		return a, nil

	case sessionsLoadedMsg:
		items := make([]list.Item, len(msg))
		for i, s := range msg {
			items[i] = sessionItem{s}
		}
		a.sessions.SetItems(items)
		a.sessions.ResetSelected()
		return a, nil

	case messagesLoadedMsg:
		a.page = msg
		a.msgView.SetContent(a.renderMessages())
		a.msgView.GotoBottom()
		return a, nil

	case loadErrMsg:
		a.err = msg.err
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a.updateActive(msg)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	filtering := (a.level == levelProjects && a.projects.FilterState() == list.Filtering) ||
		(a.level == levelSessions && a.sessions.FilterState() == list.Filtering)

	if !filtering {
		switch msg.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		case "enter":
			return a.descend()
		case "esc", "backspace":
			return a.ascend()
		}
	}
	return a.updateActive(msg)
}

func (a *App) descend() (tea.Model, tea.Cmd) {
	switch a.level {
	case levelProjects:
		item, ok := a.projects.SelectedItem().(projectItem)
		if !ok {
			return a, nil
		}
		a.curProject = item.p
		a.sessions.Title = "Sessions · " + item.p.Name
		a.sessions.SetItems(nil)
		a.level = levelSessions
		return a, a.loadSessions
	case levelSessions:
		item, ok := a.sessions.SelectedItem().(sessionItem)
		if !ok {
			return a, nil
		}
		a.curSession = item.s
		a.page = nil
		a.msgView = viewport.New(a.width, a.height-3)
		a.level = levelMessages
		return a, a.loadMessages
	}
	return a, nil
}

func (a *App) ascend() (tea.Model, tea.Cmd) {
	switch a.level {
	case levelSessions:
		a.level = levelProjects
	case levelMessages:
		a.level = levelSessions
	}
	return a, nil
}

func (a *App) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.level {
	case levelProjects:
		a.projects, cmd = a.projects.Update(msg)
	case levelSessions:
		a.sessions, cmd = a.sessions.Update(msg)
	case levelMessages:
		a.msgView, cmd = a.msgView.Update(msg)
	}
	return a, cmd
}

func (a *App) View() string {
	if a.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(a.theme.Red)
		return errStyle.Render(fmt.Sprintf("  error: %v", a.err)) + "\n  press q to quit\n"
	}

	switch a.level {
	case levelSessions:
		return a.sessions.View()
	case levelMessages:
		header := lipgloss.NewStyle().Bold(true).Foreground(a.theme.Accent).
			Render(" " + messagesTitle(a.curSession))
		hint := lipgloss.NewStyle().Foreground(a.theme.TextDim).
			Render(" esc back · q quit")
		return header + "\n" + a.msgView.View() + "\n" + hint
	default:
		return a.projects.View()
	}
}

func messagesTitle(s model.Session) string {
	if s.Summary != "" {
		return cli.Truncate(s.Summary, 60)
	}
	return s.SessionID
}

// renderMessages flattens the loaded page into viewport text.
func (a *App) renderMessages() string {
	if a.page == nil || len(a.page.Items) == 0 {
		return "  no messages"
	}

	roleStyle := map[string]lipgloss.Style{
		"user":      lipgloss.NewStyle().Bold(true).Foreground(a.theme.Green),
		"assistant": lipgloss.NewStyle().Bold(true).Foreground(a.theme.Blue),
	}
	metaStyle := lipgloss.NewStyle().Foreground(a.theme.TextDim)
	toolStyle := lipgloss.NewStyle().Foreground(a.theme.Orange)

	var b strings.Builder
	if a.page.HasMore {
		b.WriteString(metaStyle.Render(fmt.Sprintf("  … %d earlier messages",
			a.page.TotalCount-len(a.page.Items))))
		b.WriteString("\n\n")
	}
	for i := range a.page.Items {
		m := &a.page.Items[i]
		style, ok := roleStyle[m.Type]
		if !ok {
			style = metaStyle
		}
		b.WriteString(style.Render("  " + m.Type))
		if m.Timestamp != "" {
			b.WriteString(metaStyle.Render("  " + cli.FormatTimestamp(m.Timestamp)))
		}
		b.WriteString("\n")
		writeMessageBody(&b, m, toolStyle)
		b.WriteString("\n")
	}
	return b.String()
}

func writeMessageBody(b *strings.Builder, m *model.Message, toolStyle lipgloss.Style) {
	if m.Content == nil {
		return
	}
	if !m.Content.IsBlocks() {
		writeIndented(b, m.Content.Text)
		return
	}
	for _, block := range m.Content.Blocks {
		switch block.Type {
		case model.BlockText:
			writeIndented(b, block.Text)
		case model.BlockToolUse:
			b.WriteString(toolStyle.Render("  → " + block.Name))
			b.WriteString("\n")
		case model.BlockToolResult:
			if s, ok := block.Content.(string); ok {
				writeIndented(b, cli.Truncate(s, 200))
			}
		case model.BlockThinking:
			writeIndented(b, cli.Truncate(block.Thinking, 200))
		}
	}
}

func writeIndented(b *strings.Builder, text string) {
	if text == "" {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteString("\n")
	}
}
