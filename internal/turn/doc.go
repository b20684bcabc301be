// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package turn orchestrates one streaming chat turn end to end.
//
// A turn is: POST the prompt, reconcile session identity from the response
// headers, decode the byte stream incrementally, reveal the text at a
// typing cadence, and settle the conversation. The Runner owns the
// per-turn pipeline (decoder, scheduler, cancellation token are all fresh
// each turn) and enforces that only one turn is ever in flight.
//
// # Key Types
//
//   - Runner: Drives turns for one conversation
//   - TickResult: What one reveal tick produced
//   - Options: Model selection and reveal pacing
//
// # Usage
//
//	runner := turn.NewRunner(client, conv, refresher, turn.Options{})
//	runner.Send("Hello")
//	for {
//	    result := runner.Tick() // called at the UI's frame cadence
//	    if result.Settled {
//	        break
//	    }
//	}
//
// The package is UI-free; the TUI drives Tick from its frame tick and
// renders the conversation after each call.
package turn
