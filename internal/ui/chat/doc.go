// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// The view is a thin Bubble Tea shell over the turn pipeline: the user's
// enter key calls turn.Runner.Send, a tea.Tick at the configured typing
// cadence calls Runner.Tick, and the transcript re-renders from the
// conversation after each reveal. Escape cancels the in-flight turn;
// slash commands manage stored sessions (/new, /sessions, /open,
// /rename, /delete).
//
// # Key Types
//
//   - Model: The Bubble Tea model for the chat view
//
// # Usage
//
//	refreshCh, onRefresh := chat.NewRefreshChannel()
//	refresher := session.NewRefresher(client, onRefresh)
//	runner := turn.NewRunner(client, conv, refresher, opts)
//	p := tea.NewProgram(chat.New(client, runner, refreshCh, cfg), tea.WithAltScreen())
//
// Session-list refreshes arrive from the refresher goroutine over the
// channel; the model keeps one receive parked on it at all times.
package chat
