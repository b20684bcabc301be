// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/Goutam-aswani/chatbot-tui/internal/api"
	"github.com/Goutam-aswani/chatbot-tui/internal/config"
	"github.com/Goutam-aswani/chatbot-tui/internal/turn"
	"github.com/Goutam-aswani/chatbot-tui/internal/ui/styles"
)

// inputCharLimit bounds a single prompt.
const inputCharLimit = 4000

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view. It owns no turn state of
// its own: the turn.Runner drives the stream and the conversation, and the
// view re-renders from the conversation after every reveal tick.
type Model struct {
	// Styling
	theme *styles.Theme

	// Configuration
	cfg *config.Config

	// Turn pipeline
	runner *turn.Runner
	client *api.Client

	// refreshCh carries session-list refresh results from the refresher
	// goroutine into the Bubble Tea loop.
	refreshCh <-chan sessionsLoadedMsg

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// Markdown rendering for settled assistant messages. Rebuilt on
	// resize so word wrap tracks the terminal width.
	markdown *glamour.TermRenderer

	// Dimensions
	width  int
	height int
	ready  bool

	// ticking guards the reveal tick loop: exactly one loop runs while a
	// turn is in flight, no matter how many turns start meanwhile.
	ticking bool

	// Session list overlay
	sessions     []api.SessionSummary
	showSessions bool

	// Transient status line
	notice    string
	noticeErr bool
}

// New creates the chat view. refreshCh receives session-list refresh
// results; the view keeps a receive pending on it for its whole lifetime.
func New(client *api.Client, runner *turn.Runner, refreshCh <-chan sessionsLoadedMsg, cfg *config.Config) Model {
	theme := styles.NewTheme(cfg.UI.Theme)

	input := textinput.New()
	input.Placeholder = "Send a message... (/help for commands)"
	input.CharLimit = inputCharLimit
	input.Prompt = theme.InputPrompt.Render("> ")
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = theme.Spinner

	return Model{
		theme:     theme,
		cfg:       cfg,
		runner:    runner,
		client:    client,
		refreshCh: refreshCh,
		input:     input,
		spinner:   sp,
	}
}

// NewRefreshChannel builds the channel pair wiring a session.Refresher
// callback into the chat view. The channel is buffered so the refresher
// goroutine never blocks on a busy UI.
func NewRefreshChannel() (chan sessionsLoadedMsg, func([]api.SessionSummary, error)) {
	ch := make(chan sessionsLoadedMsg, 4)
	onDone := func(sessions []api.SessionSummary, err error) {
		select {
		case ch <- sessionsLoadedMsg{Sessions: sessions, Err: err, FromRefresher: true}:
		default:
			// UI is behind; drop the stale list, the next refresh wins.
		}
	}
	return ch, onDone
}

// Init starts the cursor blink and parks a receive on the refresh channel.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		waitForRefresh(m.refreshCh),
		loadSessionsCmd(m.client, m.cfg.RequestTimeout()),
	)
}

// handleResize recomputes the layout for a new terminal size.
func (m Model) handleResize(width, height int) Model {
	m.width = width
	m.height = height

	// Header, input border row, input row, and status bar are fixed; the
	// viewport takes the rest.
	viewportHeight := height - 2 - 2 - 1
	if viewportHeight < 1 {
		viewportHeight = 1
	}

	if !m.ready {
		m.viewport = viewport.New(width, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = viewportHeight
	}
	m.input.Width = width - 6

	// Word wrap follows the terminal; rebuild the markdown renderer.
	wrap := width - 4
	if wrap < 20 {
		wrap = 20
	}
	if r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.theme.GlamourStyle()),
		glamour.WithWordWrap(wrap),
	); err == nil {
		m.markdown = r
	}

	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()
	return m
}
