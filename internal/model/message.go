// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleModel:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
//
// IDs are generated client-side and are opaque; the server assigns its own
// identifiers and the two are never reconciled. Content is immutable once
// the message settles; only the in-flight model message grows.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content holds the settled text.
	Content string `json:"content"`

	// Streaming state (not persisted).
	// PERFORMANCE: strings.Builder avoids quadratic allocations while the
	// response is revealed piece by piece.
	streaming     bool
	streamContent strings.Builder
}

// NewUserMessage creates a settled user message.
func NewUserMessage(content string) *Message {
	return &Message{
		ID:        generateID(RoleUser),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewModelPlaceholder creates an empty model message that accumulates
// revealed text until the turn settles.
func NewModelPlaceholder() *Message {
	return &Message{
		ID:        generateID(RoleModel),
		Role:      RoleModel,
		Timestamp: time.Now(),
		streaming: true,
	}
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// Append adds revealed text to an in-flight message. No-op once settled.
func (m *Message) Append(text string) {
	if m.streaming {
		m.streamContent.WriteString(text)
	}
}

// Settle freezes the message content. Further appends are ignored.
func (m *Message) Settle() {
	if !m.streaming {
		return
	}
	m.Content = m.streamContent.String()
	m.streamContent.Reset()
	m.streaming = false
}

// SettleWith replaces any accumulated text with the given content and
// freezes the message. Used when a turn fails before anything was revealed
// and the placeholder shows an error alone, and when loading stored
// transcripts.
func (m *Message) SettleWith(content string) {
	m.streamContent.Reset()
	m.Content = content
	m.streaming = false
}

// DisplayContent returns the content to render (in-flight or settled).
func (m *Message) DisplayContent() string {
	if m.streaming {
		return m.streamContent.String()
	}
	return m.Content
}

// InFlight reports whether the message is still accumulating text.
func (m *Message) InFlight() bool {
	return m.streaming
}

// IsEmpty returns true if the message has no content.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0 && m.streamContent.Len() == 0
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateID creates a unique client-side message ID.
func generateID(role Role) string {
	return string(role) + "-" + uuid.NewString()
}
