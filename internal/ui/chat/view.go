// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file contains the rendering logic for the chat interface: the
// header, the message transcript, the session list overlay, the input
// area, and the status bar. Settled assistant messages render through
// glamour; in-flight text renders raw so the typing reveal stays cheap.
package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Goutam-aswani/chatbot-tui/internal/model"
	"github.com/Goutam-aswani/chatbot-tui/internal/util"
)

// =============================================================================
// MAIN RENDER
// =============================================================================

// View renders the complete chat interface.
// Layout: header (2 lines) + transcript (viewport) + input (2 lines) +
// status bar (1 line).
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderInput(),
		m.renderStatusBar(),
	)
}

// renderHeader renders the one-line title bar with model and session info.
func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("chatbot-tui")

	info := m.cfg.Chat.Model
	if id := m.runner.Conversation().ActiveSessionID(); id != nil {
		info += fmt.Sprintf(" · session %d", *id)
	} else {
		info += " · new chat"
	}

	line := title + "  " + m.theme.HeaderInfo.Render(info)
	return m.theme.Header.Width(m.width).Render(line)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// renderMessages renders the conversation transcript for the viewport.
func (m Model) renderMessages() string {
	if m.runner.Conversation().IsEmpty() {
		return m.theme.Timestamp.Render("\n  Start chatting, or /sessions to resume an earlier conversation.")
	}

	var sb strings.Builder
	for _, msg := range m.runner.Conversation().Messages() {
		sb.WriteString(m.renderMessage(msg))
		sb.WriteString("\n")
	}
	return sb.String()
}

// renderMessage renders one transcript entry: a label line, then the body.
func (m Model) renderMessage(msg *model.Message) string {
	label := m.theme.AssistantLabel
	if msg.Role == model.RoleUser {
		label = m.theme.UserLabel
	}

	header := label.Render(msg.Role.DisplayName()) + " " +
		m.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))

	return header + "\n" + m.renderBody(msg) + "\n"
}

// renderBody renders a message's content.
func (m Model) renderBody(msg *model.Message) string {
	content := msg.DisplayContent()

	if msg.InFlight() {
		// Raw render with a cursor while text is still being revealed.
		return m.theme.MessageBody.Render(content + "▌")
	}

	if msg.Role == model.RoleModel {
		// A failed turn ends in the error notice, possibly below a
		// retained partial answer. Skip markdown so the notice styling
		// is not swallowed.
		if strings.HasSuffix(content, model.FailedResponseText) {
			return m.theme.MessageError.Render(content)
		}
		if m.markdown != nil {
			if rendered, err := m.markdown.Render(content); err == nil {
				return strings.TrimRight(rendered, "\n")
			}
		}
	}

	return m.theme.MessageBody.Render(content)
}

// =============================================================================
// SESSION LIST OVERLAY
// =============================================================================

// renderSessionList renders the stored sessions in place of the transcript.
func (m Model) renderSessionList() string {
	var sb strings.Builder
	sb.WriteString(m.theme.HeaderTitle.Render("Sessions"))
	sb.WriteString("\n\n")

	if len(m.sessions) == 0 {
		sb.WriteString(m.theme.Timestamp.Render("  No stored sessions."))
		return sb.String()
	}

	titleWidth := m.width - 10
	if titleWidth < 10 {
		titleWidth = 10
	}
	for _, s := range m.sessions {
		sb.WriteString("  ")
		sb.WriteString(m.theme.SessionID.Render(fmt.Sprintf("%d", s.ID)))
		sb.WriteString(m.theme.SessionTitle.Render(util.TruncateWidth(s.Title, titleWidth)))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(m.theme.Timestamp.Render("  /open <id> to resume · esc to close"))
	return sb.String()
}

// =============================================================================
// INPUT AND STATUS
// =============================================================================

// renderInput renders the bordered input area.
func (m Model) renderInput() string {
	return m.theme.InputContainer.Width(m.width).Render(m.input.View())
}

// renderStatusBar renders the bottom status line: turn state or the last
// notice on the left, shortcuts on the right.
func (m Model) renderStatusBar() string {
	var left string
	switch {
	case m.runner.Active():
		left = m.spinner.View() + " " + m.theme.StatusStream.Render(m.phaseLabel())
	case m.notice != "" && m.noticeErr:
		left = m.theme.StatusError.Render(m.notice)
	case m.notice != "":
		left = m.theme.StatusSession.Render(m.notice)
	default:
		left = m.theme.StatusBar.Render("ready")
	}

	right := m.theme.ShortcutKey.Render("enter") + m.theme.ShortcutDesc.Render(" send · ") +
		m.theme.ShortcutKey.Render("esc") + m.theme.ShortcutDesc.Render(" cancel · ") +
		m.theme.ShortcutKey.Render("/help")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return " " + left + strings.Repeat(" ", gap) + right
}

// phaseLabel names the in-flight turn phase for the status bar.
func (m Model) phaseLabel() string {
	switch m.runner.Conversation().Phase() {
	case model.TurnAwaitingHeaders:
		return "waiting for server"
	case model.TurnStreaming:
		return "streaming"
	case model.TurnDraining:
		return "finishing"
	default:
		return "working"
	}
}
