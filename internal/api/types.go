// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the chatbot backend.
package api

import "time"

// TurnRequest is the body of the streaming chat POST. SessionID is nil for
// the first turn of a new conversation; the server then creates a session
// and reports it in the response headers.
type TurnRequest struct {
	Prompt       string `json:"prompt"`
	SessionID    *int64 `json:"session_id"`
	ModelName    string `json:"model_name,omitempty"`
	UseWebSearch bool   `json:"use_web_search"`
}

// Meta is the response metadata carried in headers, available as soon as
// OpenStream returns and before any of the body is drained.
type Meta struct {
	// SessionID is the server's session for this turn. Valid only when
	// HasSessionID is true.
	SessionID int64

	// SessionCreated is true when the server created a new session for
	// this turn.
	SessionCreated bool

	// HasSessionID reports whether the server sent a session header at all.
	HasSessionID bool
}

// SessionSummary is one entry of the session list.
type SessionSummary struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// HistoryMessage is one transcript entry fetched from the server.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SessionHistory is the full transcript of a stored session.
type SessionHistory struct {
	ID       int64            `json:"id"`
	Title    string           `json:"title"`
	Messages []HistoryMessage `json:"messages"`
}

// renameRequest is the body of the session rename PUT.
type renameRequest struct {
	NewTitle string `json:"new_title"`
}

// tokenResponse is the body of a successful login.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
