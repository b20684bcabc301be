// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"errors"
	"sync"
	"time"
)

// FailedResponseText is shown in place of the model response when a turn
// fails. The user message is kept so the prompt can be retried.
const FailedResponseText = "Error: Could not get a response from the server."

// Errors returned by conversation mutations that violate the turn lifecycle.
var (
	// ErrTurnInFlight indicates StartTurn was called before the previous
	// turn settled.
	ErrTurnInFlight = errors.New("a turn is already in flight")

	// ErrNoTurn indicates a turn mutation was attempted with no turn
	// in flight.
	ErrNoTurn = errors.New("no turn in flight")

	// ErrBadPhase indicates the mutation is not legal in the current
	// turn phase.
	ErrBadPhase = errors.New("operation not valid in current turn phase")
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds the ordered transcript, the active server session, and
// the state of the single in-flight turn.
//
// Messages are append-only: settled entries are never edited or removed,
// and only the current turn's placeholder is mutable. At most one turn is
// in flight at a time; callers must settle (or force-settle) the previous
// turn before starting another.
//
// Thread-safety: the transcript is read by the render loop while the turn
// runner mutates it, so all access goes through the mutex.
type Conversation struct {
	mu sync.Mutex

	activeSessionID *int64
	messages        []*Message

	phase       TurnPhase
	reason      SettleReason
	placeholder *Message
	startedAt   time.Time
}

// NewConversation creates an empty conversation with no active session.
func NewConversation() *Conversation {
	return &Conversation{phase: TurnIdle}
}

// =============================================================================
// TURN LIFECYCLE
// =============================================================================

// StartTurn appends the optimistic user message and an empty model
// placeholder, then moves to AwaitingHeaders. Returns the placeholder's ID.
//
// Returns ErrTurnInFlight if the previous turn has not settled; the caller
// must force-settle it first.
func (c *Conversation) StartTurn(prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != TurnIdle && c.phase != TurnSettled {
		return "", ErrTurnInFlight
	}

	placeholder := NewModelPlaceholder()
	c.messages = append(c.messages, NewUserMessage(prompt), placeholder)
	c.placeholder = placeholder
	c.phase = TurnAwaitingHeaders
	c.reason = SettleNone
	c.startedAt = time.Now()

	return placeholder.ID, nil
}

// MarkStreaming transitions AwaitingHeaders → Streaming when the first
// response text arrives.
func (c *Conversation) MarkStreaming() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.phase {
	case TurnAwaitingHeaders:
		c.phase = TurnStreaming
		return nil
	case TurnStreaming:
		return nil // already streaming, first-chunk races are harmless
	default:
		return ErrBadPhase
	}
}

// MarkDraining transitions to Draining once the transport reached EOF but
// buffered text is still being revealed. Legal from AwaitingHeaders too,
// covering responses that fit in a single chunk.
func (c *Conversation) MarkDraining() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.phase {
	case TurnAwaitingHeaders, TurnStreaming:
		c.phase = TurnDraining
		return nil
	case TurnDraining:
		return nil
	default:
		return ErrBadPhase
	}
}

// AppendRevealedText adds scheduler output to the placeholder. Only legal
// while the turn is Streaming or Draining; text never lands on a settled
// message.
func (c *Conversation) AppendRevealedText(text string) error {
	if text == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.placeholder == nil {
		return ErrNoTurn
	}
	if c.phase != TurnStreaming && c.phase != TurnDraining {
		return ErrBadPhase
	}

	c.placeholder.Append(text)
	return nil
}

// FinalizeTurn settles the turn as Completed and freezes the placeholder.
func (c *Conversation) FinalizeTurn() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.placeholder == nil || c.phase == TurnIdle {
		return ErrNoTurn
	}
	if c.phase == TurnSettled {
		return ErrBadPhase
	}

	c.placeholder.Settle()
	c.settleLocked(SettleCompleted)
	return nil
}

// FailTurn settles the turn as Failed. Text already revealed on the
// placeholder is retained, never rolled back, with the error notice
// appended below it, so a connection dropped mid-stream leaves the
// truncated partial answer visible. When the turn fails before anything
// was revealed the placeholder shows the notice alone. The user message is
// kept and the active session is untouched either way.
func (c *Conversation) FailTurn() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.placeholder == nil || c.phase == TurnIdle {
		return ErrNoTurn
	}
	if c.phase == TurnSettled {
		return ErrBadPhase
	}

	if c.placeholder.IsEmpty() {
		c.placeholder.SettleWith(FailedResponseText)
	} else {
		c.placeholder.Append("\n\n" + FailedResponseText)
		c.placeholder.Settle()
	}
	c.settleLocked(SettleFailed)
	return nil
}

// settleLocked finishes the turn bookkeeping. Caller holds the mutex.
func (c *Conversation) settleLocked(reason SettleReason) {
	c.phase = TurnSettled
	c.reason = reason
	c.placeholder = nil
}

// Phase returns the current turn phase.
func (c *Conversation) Phase() TurnPhase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// LastSettleReason returns how the most recent turn ended.
func (c *Conversation) LastSettleReason() SettleReason {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reason
}

// TurnActive reports whether a turn is in flight (started, not settled).
func (c *Conversation) TurnActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase != TurnIdle && c.phase != TurnSettled
}

// =============================================================================
// SESSION IDENTITY
// =============================================================================

// ActiveSessionID returns the server session this conversation continues,
// or nil before the first turn completes.
func (c *Conversation) ActiveSessionID() *int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.activeSessionID == nil {
		return nil
	}
	id := *c.activeSessionID
	return &id
}

// AdoptSession records the server session id for subsequent turns.
func (c *Conversation) AdoptSession(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeSessionID = &id
}

// =============================================================================
// TRANSCRIPT ACCESS
// =============================================================================

// Messages returns a snapshot of the transcript in order.
func (c *Conversation) Messages() []*Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return c.MessageCount() == 0
}

// LastMessage returns the most recent message, or nil if empty.
func (c *Conversation) LastMessage() *Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		return nil
	}
	return c.messages[len(c.messages)-1]
}

// ReplaceHistory swaps in a transcript fetched from the server, adopting
// its session id. Only legal with no turn in flight.
func (c *Conversation) ReplaceHistory(messages []*Message, sessionID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != TurnIdle && c.phase != TurnSettled {
		return ErrTurnInFlight
	}

	c.messages = make([]*Message, len(messages))
	copy(c.messages, messages)
	c.activeSessionID = &sessionID
	c.phase = TurnIdle
	c.reason = SettleNone
	c.placeholder = nil
	return nil
}

// Reset clears the transcript and session for a new chat. Only legal with
// no turn in flight.
func (c *Conversation) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != TurnIdle && c.phase != TurnSettled {
		return ErrTurnInFlight
	}

	c.messages = nil
	c.activeSessionID = nil
	c.phase = TurnIdle
	c.reason = SettleNone
	c.placeholder = nil
	return nil
}
