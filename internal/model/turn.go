// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

// =============================================================================
// TURN STATE MACHINE
// =============================================================================

// TurnPhase is the lifecycle stage of the current turn. Transitions are
// strictly forward:
//
//	Idle → AwaitingHeaders → Streaming → Draining → Settled
//
// with a shortcut from any pre-settled phase straight to Settled on failure
// or cancellation. Each phase gates which mutations the conversation
// accepts, so illegal operations (appending before the stream opened,
// finalizing twice) fail loudly instead of corrupting the transcript.
type TurnPhase int

const (
	// TurnIdle means no turn is in flight.
	TurnIdle TurnPhase = iota

	// TurnAwaitingHeaders means the request was sent and the optimistic
	// messages are appended, but no response text has arrived.
	TurnAwaitingHeaders

	// TurnStreaming means response text is arriving and being revealed.
	TurnStreaming

	// TurnDraining means the transport finished but buffered text is
	// still being revealed.
	TurnDraining

	// TurnSettled means the turn ended; see SettleReason.
	TurnSettled
)

// String returns the phase name for logs and test failures.
func (p TurnPhase) String() string {
	switch p {
	case TurnIdle:
		return "idle"
	case TurnAwaitingHeaders:
		return "awaiting_headers"
	case TurnStreaming:
		return "streaming"
	case TurnDraining:
		return "draining"
	case TurnSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// SettleReason records how a settled turn ended.
type SettleReason int

const (
	// SettleNone means the turn has not settled.
	SettleNone SettleReason = iota

	// SettleCompleted means the full response was revealed.
	SettleCompleted

	// SettleFailed means the turn ended on a transport error or
	// cancellation and the placeholder shows the error text.
	SettleFailed
)

// String returns the reason name for logs and test failures.
func (r SettleReason) String() string {
	switch r {
	case SettleNone:
		return "none"
	case SettleCompleted:
		return "completed"
	case SettleFailed:
		return "failed"
	default:
		return "unknown"
	}
}
