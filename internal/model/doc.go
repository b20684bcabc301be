// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// This package defines the core domain types for the chat transcript: the
// conversation with its active server session, the ordered messages, and
// the explicit state machine governing the single in-flight turn.
//
// # Key Types
//
//   - Conversation: Ordered transcript plus session identity and turn state
//   - Message: Single message with role, content, and timestamp
//   - TurnPhase: Lifecycle of the in-flight turn (idle through settled)
//   - Role: Message role enumeration (user, model)
//
// # Usage
//
// Drive a turn through its lifecycle:
//
//	conv := model.NewConversation()
//	placeholderID, _ := conv.StartTurn("Hello!")
//	conv.MarkStreaming()
//	conv.AppendRevealedText("Hi ")
//	conv.AppendRevealedText("there!")
//	conv.FinalizeTurn()
//
// Only the current placeholder accepts appends; settled messages are
// immutable and the transcript is append-only.
package model
