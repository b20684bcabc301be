// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines the Bubble Tea message types used by the chat
// interface. Messages are organized into the following categories:
//   - Reveal: The typing-cadence tick that paces streamed text
//   - Sessions: Session list loads, history loads, renames, and deletes
//   - Notices: Transient status and error lines for the status bar
//
// All message types follow Bubble Tea conventions and are immutable.
package chat

import (
	"time"

	"github.com/Goutam-aswani/chatbot-tui/internal/api"
	"github.com/Goutam-aswani/chatbot-tui/internal/config"
)

// =============================================================================
// REVEAL MESSAGES
// =============================================================================

// revealTickMsg drives one reveal step of the in-flight turn. It is
// re-armed only while a turn is active, so an idle chat burns no CPU.
type revealTickMsg struct {
	Time time.Time
}

// =============================================================================
// SESSION MESSAGES
// =============================================================================

// sessionsLoadedMsg delivers a refreshed session list. FromRefresher marks
// deliveries off the background refresher, whose channel receive must be
// re-armed after each one.
type sessionsLoadedMsg struct {
	Sessions      []api.SessionSummary
	Err           error
	FromRefresher bool
}

// historyLoadedMsg delivers a stored session transcript to open.
type historyLoadedMsg struct {
	History *api.SessionHistory
	Err     error
}

// sessionDeletedMsg confirms a session delete.
type sessionDeletedMsg struct {
	ID  int64
	Err error
}

// sessionRenamedMsg confirms a session rename.
type sessionRenamedMsg struct {
	ID    int64
	Title string
	Err   error
}

// =============================================================================
// CONFIG MESSAGES
// =============================================================================

// ConfigReloadedMsg delivers a hot-reloaded configuration from the config
// file watcher. Theme and typing cadence apply immediately; the server URL
// takes effect on restart.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// =============================================================================
// NOTICE MESSAGES
// =============================================================================

// noticeMsg puts a transient line on the status bar.
type noticeMsg struct {
	Text  string
	IsErr bool
}
