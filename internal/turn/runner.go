// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package turn orchestrates one streaming chat turn end to end.
package turn

import (
	"context"
	"io"
	"sync"

	"github.com/Goutam-aswani/chatbot-tui/internal/api"
	"github.com/Goutam-aswani/chatbot-tui/internal/decode"
	"github.com/Goutam-aswani/chatbot-tui/internal/model"
	"github.com/Goutam-aswani/chatbot-tui/internal/session"
	"github.com/Goutam-aswani/chatbot-tui/internal/typing"
)

// =============================================================================
// RUNNER
// =============================================================================

// Options configures how turns are sent.
type Options struct {
	// ModelName selects the backend model for the turn.
	ModelName string

	// UseWebSearch asks the backend to ground the response in search.
	UseWebSearch bool

	// RunesPerTick is the typing reveal budget per Tick call.
	// Zero uses the typing package default.
	RunesPerTick int
}

// TickResult is what one reveal tick produced.
type TickResult struct {
	// Revealed is the text appended to the placeholder this tick.
	Revealed string

	// Settled is true when this tick ended the turn.
	Settled bool

	// Failed is true when the turn settled on an error or cancellation.
	Failed bool

	// Err is the transport error behind a failed settle, if any.
	Err error
}

// Runner drives turns against the backend: it opens the stream, reconciles
// session identity from the response headers, pumps chunks through a fresh
// decoder into a fresh typing scheduler, and settles the conversation when
// the reveal drains. One Runner serves one conversation; it enforces the
// single in-flight turn invariant by force-settling the previous turn
// before starting the next.
//
// The runner is deliberately UI-free. The caller drives pacing by invoking
// Tick at its own cadence (the TUI uses a frame tick); each Tick moves at
// most one reveal step, so cancellation cleanup is always visible within
// one tick.
type Runner struct {
	client    *api.Client
	conv      *model.Conversation
	refresher *session.Refresher
	opts      Options

	cancelMgr *cancelManager

	mu         sync.Mutex
	gen        int // turn generation, guards against stale goroutines
	active     bool
	sched      *typing.Scheduler
	streamDone bool
	streamErr  error
	outcome    session.Outcome
	refreshed  bool
}

// NewRunner creates a runner for one conversation. The refresher may be
// nil when no session list is being maintained (e.g. in tests).
func NewRunner(client *api.Client, conv *model.Conversation, refresher *session.Refresher, opts Options) *Runner {
	return &Runner{
		client:    client,
		conv:      conv,
		refresher: refresher,
		opts:      opts,
		cancelMgr: newCancelManager(),
	}
}

// Conversation returns the conversation this runner drives.
func (r *Runner) Conversation() *model.Conversation {
	return r.conv
}

// Active reports whether a turn is in flight.
func (r *Runner) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Outcome returns the session reconciliation result of the current or most
// recent turn.
func (r *Runner) Outcome() session.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outcome
}

// =============================================================================
// SENDING A TURN
// =============================================================================

// Send starts a new turn for the given prompt. Any previous turn is
// force-settled first. Send returns once the turn is started; chunks are
// pumped on a background goroutine and the caller reveals them via Tick.
func (r *Runner) Send(prompt string) error {
	r.ForceSettle()

	if _, err := r.conv.StartTurn(prompt); err != nil {
		return err
	}

	// Per-turn pipeline state: fresh scheduler, fresh decoder (created in
	// the pump goroutine), fresh cancellation token.
	sched := typing.NewScheduler(r.opts.RunesPerTick)
	ctx, cancel := context.WithCancel(context.Background())
	r.cancelMgr.set(cancel)

	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.active = true
	r.sched = sched
	r.streamDone = false
	r.streamErr = nil
	r.outcome = session.Outcome{}
	r.refreshed = false
	r.mu.Unlock()

	req := api.TurnRequest{
		Prompt:       prompt,
		SessionID:    r.conv.ActiveSessionID(),
		ModelName:    r.opts.ModelName,
		UseWebSearch: r.opts.UseWebSearch,
	}

	go r.pump(ctx, gen, req, sched)
	return nil
}

// pump consumes the response stream for one turn: headers first, then
// chunks through the decoder into the scheduler.
func (r *Runner) pump(ctx context.Context, gen int, req api.TurnRequest, sched *typing.Scheduler) {
	stream, err := r.client.OpenStream(ctx, req)
	if err != nil {
		r.finishStream(gen, err)
		return
	}
	defer stream.Close()

	// Session identity is known before the body drains.
	outcome := session.Reconcile(req.SessionID, stream.Meta())
	if outcome.Adopted {
		r.conv.AdoptSession(*outcome.SessionID)
	}
	r.setOutcome(gen, outcome)

	decoder := decode.NewStreamDecoder()
	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			// Draining must begin before the flush tail is fed: a tick
			// racing these two statements would otherwise pop the tail
			// while the phase still rejects appends, losing it.
			r.conv.MarkDraining()
			sched.Feed(decoder.Flush())
			r.finishStream(gen, nil)
			return
		}
		if err != nil {
			r.finishStream(gen, err)
			return
		}

		if text := decoder.Write(chunk); text != "" {
			r.conv.MarkStreaming()
			sched.Feed(text)
		}
	}
}

// setOutcome records the reconciliation result if the turn is still current.
func (r *Runner) setOutcome(gen int, outcome session.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen == r.gen {
		r.outcome = outcome
	}
}

// finishStream records the end of the transport for a turn, ignoring
// stale goroutines from already-settled turns.
func (r *Runner) finishStream(gen int, err error) {
	r.mu.Lock()
	if gen != r.gen {
		r.mu.Unlock()
		return
	}
	r.streamDone = true
	r.streamErr = err
	r.mu.Unlock()
}

// =============================================================================
// REVEAL TICKS
// =============================================================================

// Tick advances the reveal by one step. The caller invokes it at its
// typing cadence while a turn is active. When the tick settles the turn it
// also triggers the session-list refresh, exactly once per turn.
func (r *Runner) Tick() TickResult {
	r.mu.Lock()
	active, sched := r.active, r.sched
	done, streamErr := r.streamDone, r.streamErr
	r.mu.Unlock()

	if !active || sched == nil {
		return TickResult{}
	}

	// Transport failure or cancellation: drop the unrevealed remainder and
	// settle as failed in this same tick. Text already revealed stays on
	// the placeholder with the error notice appended.
	if done && streamErr != nil {
		sched.Cancel()
		r.conv.FailTurn()
		r.settle()
		return TickResult{Settled: true, Failed: true, Err: streamErr}
	}

	text := sched.Reveal()
	if text != "" {
		r.conv.AppendRevealedText(text)
	}

	if done && sched.Idle() {
		r.conv.FinalizeTurn()
		r.settle()
		return TickResult{Revealed: text, Settled: true}
	}

	return TickResult{Revealed: text}
}

// =============================================================================
// CANCELLATION AND FORCE-SETTLE
// =============================================================================

// Cancel aborts the in-flight turn: the HTTP stream is torn down, text not
// yet revealed is discarded, and the turn settles as failed immediately.
// Text already revealed stays on the placeholder.
func (r *Runner) Cancel() {
	r.mu.Lock()
	active, sched := r.active, r.sched
	r.mu.Unlock()
	if !active {
		return
	}

	r.cancelMgr.cancel()
	if sched != nil {
		sched.Cancel()
	}
	r.conv.FailTurn()
	r.settle()
}

// ForceSettle ends the in-flight turn so a new one can start: the stream
// is aborted, buffered text lands on the placeholder at once, and the turn
// settles as completed with whatever arrived.
func (r *Runner) ForceSettle() {
	r.mu.Lock()
	active, sched := r.active, r.sched
	r.mu.Unlock()
	if !active {
		return
	}

	r.cancelMgr.cancel()
	if sched != nil {
		if rest := sched.Drain(); rest != "" {
			r.conv.MarkDraining()
			r.conv.AppendRevealedText(rest)
		}
		sched.Cancel()
	}
	r.conv.FinalizeTurn()
	r.settle()
}

// settle closes out the turn's bookkeeping and fires the one refresh.
func (r *Runner) settle() {
	r.mu.Lock()
	r.active = false
	r.sched = nil
	r.gen++ // invalidate any straggling pump goroutine
	fireRefresh := !r.refreshed
	r.refreshed = true
	r.mu.Unlock()

	r.cancelMgr.clear()

	// Fire-and-forget: deliberately not the turn's context, so a
	// cancelled turn still refreshes the session list.
	if fireRefresh && r.refresher != nil {
		r.refresher.Trigger(context.Background())
	}
}
