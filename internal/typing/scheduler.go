// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package typing paces the reveal of streamed response text.
//
// Network chunks arrive in bursts; revealing them as-is makes the transcript
// jump. The Scheduler buffers decoded text and releases a bounded number of
// characters per tick so responses appear at a steady typing cadence,
// independent of chunk timing.
package typing

import (
	"strings"
	"sync"
	"time"
)

// =============================================================================
// SCHEDULER
// =============================================================================

// Default pacing. At 30 ticks/second and 4 runes per tick the reveal runs at
// roughly 120 characters per second: visibly typed, not sluggish.
const (
	// DefaultTickInterval is the reveal cadence driven by the caller.
	DefaultTickInterval = 33 * time.Millisecond

	// DefaultRunesPerTick is the number of characters released per tick.
	DefaultRunesPerTick = 4
)

// Scheduler buffers fed text and releases it in rune-bounded steps.
// Consecutive Feed calls coalesce into one FIFO buffer; ordering is
// preserved and a reveal never splits a multi-byte character.
//
// The scheduler owns no timer. The caller drives pacing by invoking Reveal
// on its own tick, which keeps the component testable without sleeping.
// One Scheduler serves one turn; create a fresh instance per turn and drop
// it when the turn settles.
//
// Thread-safety: Feed is called from the stream goroutine while Reveal runs
// on the render loop, so all operations are mutex-protected.
type Scheduler struct {
	mu        sync.Mutex
	pending   []rune
	perTick   int
	cancelled bool
}

// NewScheduler creates a scheduler releasing runesPerTick characters per
// Reveal. Non-positive values fall back to DefaultRunesPerTick.
func NewScheduler(runesPerTick int) *Scheduler {
	if runesPerTick <= 0 {
		runesPerTick = DefaultRunesPerTick
	}
	return &Scheduler{perTick: runesPerTick}
}

// Feed appends decoded text to the pending buffer. Calls during an active
// reveal coalesce; feeding after Cancel is a no-op.
func (s *Scheduler) Feed(text string) {
	if text == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		return
	}
	s.pending = append(s.pending, []rune(text)...)
}

// Reveal releases up to the per-tick budget of pending characters.
// Returns the empty string when the buffer is idle.
func (s *Scheduler) Reveal() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return ""
	}

	n := s.perTick
	if n > len(s.pending) {
		n = len(s.pending)
	}

	out := string(s.pending[:n])
	s.pending = s.pending[n:]
	return out
}

// Drain releases everything pending in one step. Used when a turn is being
// force-settled and the remaining text should land immediately.
func (s *Scheduler) Drain() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s.pending) * 3)
	b.WriteString(string(s.pending))
	s.pending = nil
	return b.String()
}

// Cancel discards the pending buffer and rejects further feeds. Safe to
// call multiple times.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
	s.cancelled = true
}

// Pending returns the number of characters waiting to be revealed.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Idle reports whether the buffer is empty.
func (s *Scheduler) Idle() bool {
	return s.Pending() == 0
}
