// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session reconciles server session identity across turns.
package session

import "github.com/Goutam-aswani/chatbot-tui/internal/api"

// =============================================================================
// RECONCILER
// =============================================================================

// Outcome is the result of reconciling the prior session with the metadata
// the server returned for a turn.
type Outcome struct {
	// SessionID is the effective session after the turn, or nil if the
	// server never identified one.
	SessionID *int64

	// Adopted is true when the effective id came from the server rather
	// than the prior state.
	Adopted bool

	// Created is true when the server created a new session this turn.
	Created bool

	// Mismatch is true when the server reported a different id than the
	// one the turn was sent with. The server value wins, but callers
	// should log the discrepancy.
	Mismatch bool
}

// Reconcile determines the effective session id after a turn:
//
//   - the server created a session: adopt the new id
//   - no prior session and the server reported one: adopt it
//   - otherwise: keep the prior id
//
// Response headers are authoritative. When the server reports an id that
// differs from a non-nil prior, the server value is adopted and the
// outcome is flagged as a mismatch; a mismatch never fails the turn.
func Reconcile(prior *int64, meta api.Meta) Outcome {
	if meta.SessionCreated && meta.HasSessionID {
		return Outcome{SessionID: ptr(meta.SessionID), Adopted: true, Created: true}
	}

	if prior == nil {
		if meta.HasSessionID {
			return Outcome{SessionID: ptr(meta.SessionID), Adopted: true}
		}
		return Outcome{}
	}

	if meta.HasSessionID && meta.SessionID != *prior {
		return Outcome{SessionID: ptr(meta.SessionID), Adopted: true, Mismatch: true}
	}

	return Outcome{SessionID: ptr(*prior)}
}

func ptr(v int64) *int64 {
	return &v
}
