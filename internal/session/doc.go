// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session reconciles server session identity across turns.
//
// The server owns session identity: the client sends the session id it
// knows (or null for a new chat) and the server reports the effective id
// in response headers. This package decides which id the conversation
// continues with, and keeps the session list current after each turn.
//
// # Key Types
//
//   - Outcome: Result of reconciling prior state with response metadata
//   - Refresher: Fire-and-forget session-list reload after every turn
//
// # Usage
//
//	outcome := session.Reconcile(conv.ActiveSessionID(), stream.Meta())
//	if outcome.Adopted {
//	    conv.AdoptSession(*outcome.SessionID)
//	}
//
// Refresh failures are reported out of band and never affect the turn
// that triggered them.
package session
