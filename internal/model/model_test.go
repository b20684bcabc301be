// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"testing"
)

func TestStartTurnAppendsOptimisticMessages(t *testing.T) {
	c := NewConversation()

	placeholderID, err := c.StartTurn("Hello")
	if err != nil {
		t.Fatalf("StartTurn failed: %v", err)
	}
	if placeholderID == "" {
		t.Error("Expected non-empty placeholder ID")
	}

	msgs := c.Messages()
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != RoleUser || msgs[0].Content != "Hello" {
		t.Errorf("Expected user message 'Hello', got %s %q", msgs[0].Role, msgs[0].Content)
	}
	if msgs[1].Role != RoleModel || !msgs[1].IsEmpty() {
		t.Errorf("Expected empty model placeholder, got %s %q", msgs[1].Role, msgs[1].DisplayContent())
	}
	if msgs[1].ID != placeholderID {
		t.Errorf("Placeholder ID mismatch: %q vs %q", msgs[1].ID, placeholderID)
	}
	if c.Phase() != TurnAwaitingHeaders {
		t.Errorf("Expected awaiting_headers, got %s", c.Phase())
	}
}

func TestSingleTurnInFlight(t *testing.T) {
	c := NewConversation()

	if _, err := c.StartTurn("first"); err != nil {
		t.Fatalf("StartTurn failed: %v", err)
	}

	if _, err := c.StartTurn("second"); !errors.Is(err, ErrTurnInFlight) {
		t.Errorf("Expected ErrTurnInFlight, got %v", err)
	}

	// Settle the first turn; a new one becomes legal.
	c.MarkStreaming()
	if err := c.FinalizeTurn(); err != nil {
		t.Fatalf("FinalizeTurn failed: %v", err)
	}
	if _, err := c.StartTurn("second"); err != nil {
		t.Errorf("Expected StartTurn after settle to succeed, got %v", err)
	}
}

func TestAppendRevealedTextPhaseGating(t *testing.T) {
	c := NewConversation()
	c.StartTurn("prompt")

	// Appending before any response text arrived is illegal.
	if err := c.AppendRevealedText("early"); !errors.Is(err, ErrBadPhase) {
		t.Errorf("Expected ErrBadPhase before streaming, got %v", err)
	}

	c.MarkStreaming()
	if err := c.AppendRevealedText("Hi "); err != nil {
		t.Errorf("Append during streaming failed: %v", err)
	}

	c.MarkDraining()
	if err := c.AppendRevealedText("there!"); err != nil {
		t.Errorf("Append during draining failed: %v", err)
	}

	c.FinalizeTurn()
	if err := c.AppendRevealedText("late"); !errors.Is(err, ErrNoTurn) {
		t.Errorf("Expected ErrNoTurn after settle, got %v", err)
	}

	last := c.LastMessage()
	if last.Content != "Hi there!" {
		t.Errorf("Expected 'Hi there!', got %q", last.Content)
	}
}

func TestFinalizeTurnSettlesPlaceholder(t *testing.T) {
	c := NewConversation()
	c.StartTurn("prompt")
	c.MarkStreaming()
	c.AppendRevealedText("done")

	if err := c.FinalizeTurn(); err != nil {
		t.Fatalf("FinalizeTurn failed: %v", err)
	}

	if c.Phase() != TurnSettled {
		t.Errorf("Expected settled, got %s", c.Phase())
	}
	if c.LastSettleReason() != SettleCompleted {
		t.Errorf("Expected completed, got %s", c.LastSettleReason())
	}

	last := c.LastMessage()
	if last.InFlight() {
		t.Error("Expected placeholder to be settled")
	}
	// Settled content is frozen.
	last.Append("ignored")
	if last.DisplayContent() != "done" {
		t.Errorf("Settled message mutated: %q", last.DisplayContent())
	}

	if err := c.FinalizeTurn(); !errors.Is(err, ErrBadPhase) {
		t.Errorf("Expected double finalize to fail, got %v", err)
	}
}

func TestFailTurnKeepsUserMessageAndSession(t *testing.T) {
	c := NewConversation()
	c.AdoptSession(42)

	c.StartTurn("my prompt")
	c.MarkStreaming()
	c.AppendRevealedText("partial resp")

	if err := c.FailTurn(); err != nil {
		t.Fatalf("FailTurn failed: %v", err)
	}

	msgs := c.Messages()
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Content != "my prompt" {
		t.Errorf("User message lost: %q", msgs[0].Content)
	}
	// Text revealed before the failure is retained, never rolled back,
	// with the error notice appended below it.
	want := "partial resp\n\n" + FailedResponseText
	if msgs[1].Content != want {
		t.Errorf("Expected %q, got %q", want, msgs[1].Content)
	}
	if c.LastSettleReason() != SettleFailed {
		t.Errorf("Expected failed, got %s", c.LastSettleReason())
	}
	if id := c.ActiveSessionID(); id == nil || *id != 42 {
		t.Errorf("Failed turn changed active session: %v", id)
	}
}

func TestFailTurnWithoutRevealedTextShowsErrorAlone(t *testing.T) {
	c := NewConversation()
	c.StartTurn("prompt")
	c.MarkStreaming()

	if err := c.FailTurn(); err != nil {
		t.Fatalf("FailTurn failed: %v", err)
	}
	if got := c.LastMessage().Content; got != FailedResponseText {
		t.Errorf("Expected error text alone, got %q", got)
	}
}

func TestFailTurnWhileAwaitingHeaders(t *testing.T) {
	c := NewConversation()
	c.StartTurn("prompt")

	if err := c.FailTurn(); err != nil {
		t.Fatalf("FailTurn from awaiting_headers failed: %v", err)
	}
	if c.LastMessage().Content != FailedResponseText {
		t.Errorf("Expected error text, got %q", c.LastMessage().Content)
	}
}

func TestAdoptSessionCopySemantics(t *testing.T) {
	c := NewConversation()
	if c.ActiveSessionID() != nil {
		t.Error("Expected nil session on new conversation")
	}

	c.AdoptSession(7)
	id := c.ActiveSessionID()
	if id == nil || *id != 7 {
		t.Fatalf("Expected session 7, got %v", id)
	}

	// Mutating the returned pointer must not affect the conversation.
	*id = 99
	if got := c.ActiveSessionID(); *got != 7 {
		t.Errorf("Returned session pointer aliases internal state: %d", *got)
	}
}

func TestReplaceHistory(t *testing.T) {
	c := NewConversation()
	c.StartTurn("old")
	c.MarkStreaming()
	c.FinalizeTurn()

	answer := NewModelPlaceholder()
	answer.SettleWith("earlier answer")
	history := []*Message{
		NewUserMessage("earlier question"),
		answer,
	}

	if err := c.ReplaceHistory(history, 13); err != nil {
		t.Fatalf("ReplaceHistory failed: %v", err)
	}
	if c.MessageCount() != 2 {
		t.Errorf("Expected 2 messages, got %d", c.MessageCount())
	}
	if id := c.ActiveSessionID(); id == nil || *id != 13 {
		t.Errorf("Expected session 13, got %v", id)
	}
	if c.Phase() != TurnIdle {
		t.Errorf("Expected idle after history load, got %s", c.Phase())
	}
}

func TestReplaceHistoryRejectedMidTurn(t *testing.T) {
	c := NewConversation()
	c.StartTurn("prompt")

	if err := c.ReplaceHistory(nil, 1); !errors.Is(err, ErrTurnInFlight) {
		t.Errorf("Expected ErrTurnInFlight, got %v", err)
	}
}

func TestReset(t *testing.T) {
	c := NewConversation()
	c.AdoptSession(5)
	c.StartTurn("prompt")
	c.MarkStreaming()
	c.FinalizeTurn()

	if err := c.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if !c.IsEmpty() {
		t.Error("Expected empty conversation after reset")
	}
	if c.ActiveSessionID() != nil {
		t.Error("Expected nil session after reset")
	}
}

func TestMarkDrainingFromAwaitingHeaders(t *testing.T) {
	// Single-chunk responses can hit EOF before the first reveal.
	c := NewConversation()
	c.StartTurn("prompt")

	if err := c.MarkDraining(); err != nil {
		t.Errorf("Expected draining from awaiting_headers to be legal, got %v", err)
	}
	if err := c.AppendRevealedText("whole response"); err != nil {
		t.Errorf("Append during draining failed: %v", err)
	}
}

func TestRoleDisplayName(t *testing.T) {
	if RoleUser.DisplayName() != "You" {
		t.Errorf("Unexpected user display name: %s", RoleUser.DisplayName())
	}
	if RoleModel.DisplayName() != "Assistant" {
		t.Errorf("Unexpected model display name: %s", RoleModel.DisplayName())
	}
}
