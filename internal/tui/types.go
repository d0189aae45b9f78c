package tui

import (
	"github.com/anatolykoptev/go_clip/internal/engine"
	"github.com/anatolykoptev/go_clip/internal/engine/recommend"
	"github.com/charmbracelet/bubbles/textinput"
)

// Pane is the list the cursor is in.
type Pane int

const (
	PaneSearch Pane = iota
	PanePlaylists
)

// Model is the browser state. Search and playlist data live in the
// orchestrator; the model keeps a snapshot refreshed on every change.
type Model struct {
	orch    *recommend.Orchestrator
	changes <-chan struct{}

	input    textinput.Model
	pane     Pane
	selected int

	session   recommend.SearchSession
	plState   recommend.PlaylistState
	playlists []engine.Playlist
	lastPick  string

	width, height int
}

// changedMsg means the orchestrator published new state.
type changedMsg struct{}

// playlistsDoneMsg ends a playlist build started by Init.
type playlistsDoneMsg struct{ err error }

// row is one selectable line in the active pane.
type row struct {
	header string // playlist heading, not selectable
	video  *engine.VideoRecord
}
