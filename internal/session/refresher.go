// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session reconciles server session identity across turns.
package session

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Goutam-aswani/chatbot-tui/internal/api"
)

// refreshTimeout bounds one session-list fetch. The refresh is advisory,
// so a slow server must not hold a goroutine forever.
const refreshTimeout = 10 * time.Second

// Lister fetches the session list. *api.Client satisfies this.
type Lister interface {
	ListSessions(ctx context.Context) ([]api.SessionSummary, error)
}

// =============================================================================
// REFRESHER
// =============================================================================

// Refresher reloads the session list after every turn, so a session the
// server just created shows up in the sidebar. The refresh is
// fire-and-forget: it runs on its own goroutine, its failure is reported
// to the callback and never to the turn, and a rate limiter smooths bursts
// of rapid turns without skipping any refresh.
type Refresher struct {
	lister  Lister
	limiter *rate.Limiter
	onDone  func([]api.SessionSummary, error)

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewRefresher creates a refresher. onDone receives each refresh result on
// the refresher's goroutine; it must be safe to call from there.
func NewRefresher(lister Lister, onDone func([]api.SessionSummary, error)) *Refresher {
	return &Refresher{
		lister: lister,
		// Bursts of turns coalesce into at most 2 queued refreshes per
		// second; Wait delays rather than drops, preserving the
		// one-refresh-per-turn behavior.
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
		onDone:  onDone,
	}
}

// Trigger starts one background refresh. It returns immediately; the
// result lands on the callback. Triggers after Close are dropped.
func (r *Refresher) Trigger(ctx context.Context) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()

		if err := r.limiter.Wait(ctx); err != nil {
			r.report(nil, err)
			return
		}

		fetchCtx, cancel := context.WithTimeout(ctx, refreshTimeout)
		defer cancel()

		sessions, err := r.lister.ListSessions(fetchCtx)
		r.report(sessions, err)
	}()
}

// report delivers a result unless the refresher was closed meanwhile.
func (r *Refresher) report(sessions []api.SessionSummary, err error) {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed || r.onDone == nil {
		return
	}
	r.onDone(sessions, err)
}

// Close stops callback delivery and waits for in-flight refreshes.
func (r *Refresher) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.wg.Wait()
}
