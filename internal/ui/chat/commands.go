// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Goutam-aswani/chatbot-tui/internal/api"
)

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// revealTickCmd schedules the next reveal step at the typing cadence.
func revealTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return revealTickMsg{Time: t}
	})
}

// waitForRefresh parks a receive on the refresher channel. The command is
// re-armed after every delivery so refresh results keep flowing in.
func waitForRefresh(ch <-chan sessionsLoadedMsg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// loadSessionsCmd fetches the session list directly, used at startup and
// after deletes, where no turn settles to trigger the refresher.
func loadSessionsCmd(client *api.Client, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		sessions, err := client.ListSessions(ctx)
		return sessionsLoadedMsg{Sessions: sessions, Err: err}
	}
}

// loadHistoryCmd fetches a stored session transcript.
func loadHistoryCmd(client *api.Client, sessionID int64, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		history, err := client.History(ctx, sessionID)
		return historyLoadedMsg{History: history, Err: err}
	}
}

// deleteSessionCmd deletes a stored session.
func deleteSessionCmd(client *api.Client, sessionID int64, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		err := client.DeleteSession(ctx, sessionID)
		return sessionDeletedMsg{ID: sessionID, Err: err}
	}
}

// renameSessionCmd renames a stored session.
func renameSessionCmd(client *api.Client, sessionID int64, title string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		summary, err := client.RenameSession(ctx, sessionID, title)
		if err != nil {
			return sessionRenamedMsg{ID: sessionID, Err: err}
		}
		return sessionRenamedMsg{ID: summary.ID, Title: summary.Title}
	}
}
