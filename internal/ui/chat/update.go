// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Goutam-aswani/chatbot-tui/internal/model"
	"github.com/Goutam-aswani/chatbot-tui/internal/ui/styles"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles all Bubble Tea messages for the chat view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.handleResize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case revealTickMsg:
		return m.handleRevealTick()

	case spinner.TickMsg:
		if !m.runner.Active() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case sessionsLoadedMsg:
		return m.handleSessionsLoaded(msg)

	case historyLoadedMsg:
		return m.handleHistoryLoaded(msg)

	case sessionDeletedMsg:
		if msg.Err != nil {
			m.notice, m.noticeErr = fmt.Sprintf("Delete failed: %v", msg.Err), true
			return m, nil
		}
		m.notice, m.noticeErr = fmt.Sprintf("Deleted session %d", msg.ID), false
		if id := m.runner.Conversation().ActiveSessionID(); id != nil && *id == msg.ID {
			m.runner.ForceSettle()
			m.runner.Conversation().Reset()
			m.viewport.SetContent(m.renderMessages())
		}
		return m, loadSessionsCmd(m.client, m.cfg.RequestTimeout())

	case sessionRenamedMsg:
		if msg.Err != nil {
			m.notice, m.noticeErr = fmt.Sprintf("Rename failed: %v", msg.Err), true
			return m, nil
		}
		m.notice, m.noticeErr = fmt.Sprintf("Renamed session %d to %q", msg.ID, msg.Title), false
		return m, loadSessionsCmd(m.client, m.cfg.RequestTimeout())

	case ConfigReloadedMsg:
		return m.handleConfigReloaded(msg)

	case noticeMsg:
		m.notice, m.noticeErr = msg.Text, msg.IsErr
		return m, nil
	}

	return m.updateComponents(msg)
}

// handleRevealTick advances the in-flight turn by one reveal step and
// re-arms the tick while the turn remains active.
func (m Model) handleRevealTick() (tea.Model, tea.Cmd) {
	result := m.runner.Tick()

	if result.Revealed != "" || result.Settled {
		m.viewport.SetContent(m.renderMessages())
		m.viewport.GotoBottom()
	}

	if result.Failed && result.Err != nil {
		m.notice, m.noticeErr = fmt.Sprintf("Turn failed: %v", result.Err), true
	} else if result.Settled {
		if out := m.runner.Outcome(); out.Mismatch {
			m.notice, m.noticeErr = fmt.Sprintf("Server moved this chat to session %d", *out.SessionID), false
		}
	}

	// Keep ticking while a turn is in flight. A settled or cancelled turn
	// ends the loop; the next Send starts a fresh one.
	if m.runner.Active() {
		return m, revealTickCmd(m.cfg.TickInterval())
	}
	m.ticking = false
	return m, nil
}

// handleSessionsLoaded stores a fresh session list. Refresher deliveries
// re-arm the channel receive.
func (m Model) handleSessionsLoaded(msg sessionsLoadedMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if msg.FromRefresher {
		cmd = waitForRefresh(m.refreshCh)
	}

	if msg.Err != nil {
		// Advisory fetch; keep the last known list.
		return m, cmd
	}
	m.sessions = msg.Sessions
	if m.showSessions {
		m.viewport.SetContent(m.renderSessionList())
	}
	return m, cmd
}

// handleHistoryLoaded swaps the conversation for a stored transcript.
func (m Model) handleHistoryLoaded(msg historyLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.notice, m.noticeErr = fmt.Sprintf("Open failed: %v", msg.Err), true
		return m, nil
	}

	messages := make([]*model.Message, 0, len(msg.History.Messages))
	for _, h := range msg.History.Messages {
		if h.Role == string(model.RoleUser) {
			messages = append(messages, model.NewUserMessage(h.Content))
			continue
		}
		answer := model.NewModelPlaceholder()
		answer.SettleWith(h.Content)
		messages = append(messages, answer)
	}

	m.runner.ForceSettle()
	if err := m.runner.Conversation().ReplaceHistory(messages, msg.History.ID); err != nil {
		m.notice, m.noticeErr = fmt.Sprintf("Open failed: %v", err), true
		return m, nil
	}

	m.showSessions = false
	m.notice, m.noticeErr = fmt.Sprintf("Opened session %d: %s", msg.History.ID, msg.History.Title), false
	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()
	return m, nil
}

// handleConfigReloaded applies a hot-reloaded configuration: theme and
// typing cadence pick up immediately, everything else on next use.
func (m Model) handleConfigReloaded(msg ConfigReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.Config == nil {
		return m, nil
	}
	m.cfg = msg.Config
	m.theme = styles.NewTheme(msg.Config.UI.Theme)
	if m.ready {
		m = m.handleResize(m.width, m.height) // rebuilds theme-dependent renderers
	}
	m.notice, m.noticeErr = "Configuration reloaded", false
	return m, nil
}

// =============================================================================
// KEY HANDLING
// =============================================================================

// handleKey routes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		if m.showSessions {
			m.showSessions = false
			m.viewport.SetContent(m.renderMessages())
			m.viewport.GotoBottom()
			return m, nil
		}
		if m.runner.Active() {
			// Cancellation is synchronous: buffered text is gone and the
			// turn is settled before the next render.
			m.runner.Cancel()
			m.notice, m.noticeErr = "Response cancelled", true
			m.viewport.SetContent(m.renderMessages())
			m.viewport.GotoBottom()
		}
		return m, nil

	case "enter":
		return m.handleSubmit()
	}

	return m.updateComponents(msg)
}

// handleSubmit dispatches the input line: slash command or chat prompt.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())
	if value == "" {
		return m, nil
	}

	if strings.HasPrefix(value, "/") {
		m.input.Reset()
		return m.handleCommand(value)
	}

	// One turn at a time: a second Enter must not clobber the answer that
	// is still streaming in. The input line is kept so nothing typed is
	// lost.
	if m.runner.Active() {
		m.notice, m.noticeErr = "Still answering · esc to cancel first", true
		return m, nil
	}

	if err := m.runner.Send(value); err != nil {
		m.notice, m.noticeErr = fmt.Sprintf("Send failed: %v", err), true
		return m, nil
	}

	m.input.Reset()
	m.notice = ""
	m.showSessions = false
	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()

	cmds := []tea.Cmd{m.spinner.Tick}
	if !m.ticking {
		m.ticking = true
		cmds = append(cmds, revealTickCmd(m.cfg.TickInterval()))
	}
	return m, tea.Batch(cmds...)
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// parseCommand splits "/rename My title" into ("rename", "My title").
func parseCommand(input string) (string, string) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(input), "/")
	name, arg, _ := strings.Cut(trimmed, " ")
	return strings.ToLower(name), strings.TrimSpace(arg)
}

// handleCommand executes one slash command.
func (m Model) handleCommand(input string) (tea.Model, tea.Cmd) {
	name, arg := parseCommand(input)
	timeout := m.cfg.RequestTimeout()

	switch name {
	case "help":
		m.notice, m.noticeErr = "/new /sessions /open <id> /rename <title> /delete [id] /quit · esc cancels", false
		return m, nil

	case "new":
		m.runner.ForceSettle()
		m.runner.Conversation().Reset()
		m.showSessions = false
		m.notice, m.noticeErr = "Started a new chat", false
		m.viewport.SetContent(m.renderMessages())
		return m, nil

	case "sessions":
		m.showSessions = true
		m.viewport.SetContent(m.renderSessionList())
		m.viewport.GotoTop()
		return m, loadSessionsCmd(m.client, timeout)

	case "open":
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			m.notice, m.noticeErr = "Usage: /open <session-id>", true
			return m, nil
		}
		return m, loadHistoryCmd(m.client, id, timeout)

	case "rename":
		if arg == "" {
			m.notice, m.noticeErr = "Usage: /rename <new title>", true
			return m, nil
		}
		id := m.runner.Conversation().ActiveSessionID()
		if id == nil {
			m.notice, m.noticeErr = "No active session to rename", true
			return m, nil
		}
		return m, renameSessionCmd(m.client, *id, arg, timeout)

	case "delete":
		var id int64
		if arg != "" {
			parsed, err := strconv.ParseInt(arg, 10, 64)
			if err != nil {
				m.notice, m.noticeErr = "Usage: /delete [session-id]", true
				return m, nil
			}
			id = parsed
		} else {
			active := m.runner.Conversation().ActiveSessionID()
			if active == nil {
				m.notice, m.noticeErr = "No active session to delete", true
				return m, nil
			}
			id = *active
		}
		return m, deleteSessionCmd(m.client, id, timeout)

	case "quit", "exit":
		return m, tea.Quit
	}

	m.notice, m.noticeErr = fmt.Sprintf("Unknown command: /%s", name), true
	return m, nil
}

// =============================================================================
// COMPONENT UPDATES
// =============================================================================

// updateComponents forwards a message to the text input and viewport.
func (m Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}
