// Package tui is an interactive terminal browser: results follow the query
// as it is typed, and topic playlists for the student sit in a second pane.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_clip/internal/engine"
	"github.com/anatolykoptev/go_clip/internal/engine/recommend"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

const (
	searchCharLimit = 100
	searchWidth     = 50
	titleWidth      = 60
)

const (
	colorPrimary   = "#00D9FF"
	colorSecondary = "#BD93F9"
	colorText      = "#F8F8F2"
	colorMuted     = "#6272A4"
	colorError     = "#FF5555"
	colorWarning   = "#FFB86C"
	colorSuccess   = "#50FA7B"
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(colorPrimary)).Bold(true).MarginBottom(1)
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(colorSecondary)).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorPrimary)).Bold(true)
	itemStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(colorText))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(colorError)).Bold(true)
	loadingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(colorWarning)).Bold(true)
	pickStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(colorSuccess))
	tabStyle      = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color(colorMuted))
	activeTab     = tabStyle.Foreground(lipgloss.Color(colorPrimary)).Bold(true).Underline(true)
)

// New creates a browser over orch. changes must receive a value whenever
// the orchestrator's OnChange fires; see Notifier.
func New(orch *recommend.Orchestrator, changes <-chan struct{}) *Model {
	in := textinput.New()
	in.Placeholder = "Search educational videos..."
	in.Focus()
	in.CharLimit = searchCharLimit
	in.Width = searchWidth
	in.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorPrimary))
	in.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorText))

	return &Model{orch: orch, changes: changes, input: in}
}

// Notifier returns a channel for New and the OnChange callback feeding it.
// Bursts of changes coalesce into one pending notification.
func Notifier() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	return ch, func() {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForChange(), m.buildPlaylists())
}

func (m *Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-m.changes; !ok {
			return nil
		}
		return changedMsg{}
	}
}

func (m *Model) buildPlaylists() tea.Cmd {
	return func() tea.Msg {
		return playlistsDoneMsg{err: m.orch.BuildPlaylists(context.Background())}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case changedMsg:
		m.refresh()
		return m, m.waitForChange()

	case playlistsDoneMsg:
		m.refresh()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab":
		if m.pane == PaneSearch {
			m.pane = PanePlaylists
		} else {
			m.pane = PaneSearch
		}
		m.selected = 0
		return m, nil
	case "up", "ctrl+p":
		m.move(-1)
		return m, nil
	case "down", "ctrl+n":
		m.move(1)
		return m, nil
	case "enter":
		if v := m.current(); v != nil {
			m.lastPick = v.ID
			m.orch.Select(v.ID)
		}
		return m, nil
	}

	if m.pane != PaneSearch {
		return m, nil
	}
	prev := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if q := m.input.Value(); q != prev {
		m.selected = 0
		m.orch.SetQuery(q)
		m.refresh()
	}
	return m, cmd
}

func (m *Model) refresh() {
	m.session = m.orch.Session()
	m.plState, m.playlists, _ = m.orch.Playlists()
	if n := m.selectable(); m.selected >= n {
		m.selected = max(n-1, 0)
	}
}

func (m *Model) rows() []row {
	if m.pane == PaneSearch {
		rows := make([]row, len(m.session.Results))
		for i := range m.session.Results {
			rows[i] = row{video: &m.session.Results[i]}
		}
		return rows
	}
	var rows []row
	for _, pl := range m.playlists {
		rows = append(rows, row{header: engine.TopicLabel(pl.Topic)})
		for i := range pl.Videos {
			rows = append(rows, row{video: &pl.Videos[i]})
		}
	}
	return rows
}

func (m *Model) selectable() int {
	n := 0
	for _, r := range m.rows() {
		if r.video != nil {
			n++
		}
	}
	return n
}

func (m *Model) move(delta int) {
	n := m.selectable()
	if n == 0 {
		return
	}
	m.selected = min(max(m.selected+delta, 0), n-1)
}

// current returns the video under the cursor, or nil.
func (m *Model) current() *engine.VideoRecord {
	i := 0
	for _, r := range m.rows() {
		if r.video == nil {
			continue
		}
		if i == m.selected {
			return r.video
		}
		i++
	}
	return nil
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("go_clip"))
	b.WriteString("\n")
	b.WriteString(m.tabs())
	b.WriteString("\n\n")

	if m.pane == PaneSearch {
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(m.searchStatus())
	} else {
		b.WriteString(m.playlistStatus())
	}
	b.WriteString("\n\n")
	b.WriteString(m.list())

	if m.lastPick != "" {
		b.WriteString("\n")
		b.WriteString(pickStyle.Render("Selected: " + engine.WatchURL(m.lastPick)))
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("type to search · ↑/↓ move · enter select · tab playlists · esc quit"))
	return b.String()
}

func (m *Model) tabs() string {
	search, lists := tabStyle, tabStyle
	if m.pane == PaneSearch {
		search = activeTab
	} else {
		lists = activeTab
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, search.Render("Search"), lists.Render("Playlists"))
}

func (m *Model) searchStatus() string {
	s := m.session
	switch {
	case s.Loading:
		return loadingStyle.Render("Searching...")
	case s.State == recommend.SearchFailed:
		return errorStyle.Render(s.Message)
	case s.State == recommend.SearchResults:
		return mutedStyle.Render(fmt.Sprintf("%s for %q", humanize.Plural(len(s.Results), "video", "videos"), s.Query))
	}
	return ""
}

func (m *Model) playlistStatus() string {
	switch m.plState {
	case recommend.BuildingPlaylists, recommend.PlaylistsIdle:
		return loadingStyle.Render("Building playlists...")
	case recommend.PlaylistsFailed:
		return errorStyle.Render(m.orch.PlaylistMessage())
	}
	return mutedStyle.Render(fmt.Sprintf("%d playlists", len(m.playlists)))
}

func (m *Model) list() string {
	var b strings.Builder
	i := 0
	for _, r := range m.rows() {
		if r.video == nil {
			fmt.Fprintf(&b, "%s\n", headerStyle.Render(r.header))
			continue
		}
		card := engine.NewVideoCard(*r.video)
		meta := mutedStyle.Render(fmt.Sprintf("%s · %s · %s", card.Channel, card.Duration, card.Views))
		title := engine.TruncateRunes(card.Title, titleWidth, "…")
		if i == m.selected {
			fmt.Fprintf(&b, "%s%s\n  %s\n", selectedStyle.Render("▶ "), selectedStyle.Render(title), meta)
		} else {
			fmt.Fprintf(&b, "  %s\n  %s\n", itemStyle.Render(title), meta)
		}
		i++
	}
	return b.String()
}
