// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Goutam-aswani/chatbot-tui/internal/api"
)

func TestReconcile(t *testing.T) {
	prior42 := int64(42)

	tests := []struct {
		name     string
		prior    *int64
		meta     api.Meta
		want     *int64
		adopted  bool
		created  bool
		mismatch bool
	}{
		{
			name:    "server created new session",
			prior:   nil,
			meta:    api.Meta{SessionID: 7, SessionCreated: true, HasSessionID: true},
			want:    ptr(7),
			adopted: true,
			created: true,
		},
		{
			name:    "created flag wins even with prior session",
			prior:   &prior42,
			meta:    api.Meta{SessionID: 9, SessionCreated: true, HasSessionID: true},
			want:    ptr(9),
			adopted: true,
			created: true,
		},
		{
			name:    "no prior, server reports id",
			prior:   nil,
			meta:    api.Meta{SessionID: 42, HasSessionID: true},
			want:    ptr(42),
			adopted: true,
		},
		{
			name:  "no prior, no id from server",
			prior: nil,
			meta:  api.Meta{},
			want:  nil,
		},
		{
			name:  "prior kept when server agrees",
			prior: &prior42,
			meta:  api.Meta{SessionID: 42, HasSessionID: true},
			want:  ptr(42),
		},
		{
			name:  "prior kept when server silent",
			prior: &prior42,
			meta:  api.Meta{},
			want:  ptr(42),
		},
		{
			name:     "server disagrees with prior",
			prior:    &prior42,
			meta:     api.Meta{SessionID: 99, HasSessionID: true},
			want:     ptr(99),
			adopted:  true,
			mismatch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile(tt.prior, tt.meta)

			if (got.SessionID == nil) != (tt.want == nil) {
				t.Fatalf("Expected session %v, got %v", tt.want, got.SessionID)
			}
			if tt.want != nil && *got.SessionID != *tt.want {
				t.Errorf("Expected session %d, got %d", *tt.want, *got.SessionID)
			}
			if got.Adopted != tt.adopted {
				t.Errorf("Expected adopted=%v, got %v", tt.adopted, got.Adopted)
			}
			if got.Created != tt.created {
				t.Errorf("Expected created=%v, got %v", tt.created, got.Created)
			}
			if got.Mismatch != tt.mismatch {
				t.Errorf("Expected mismatch=%v, got %v", tt.mismatch, got.Mismatch)
			}
		})
	}
}

func TestReconcileDoesNotAliasPrior(t *testing.T) {
	prior := int64(42)
	got := Reconcile(&prior, api.Meta{})

	*got.SessionID = 99
	if prior != 42 {
		t.Errorf("Outcome aliases the prior pointer: %d", prior)
	}
}

// stubLister counts calls and returns a canned result.
type stubLister struct {
	calls    atomic.Int32
	sessions []api.SessionSummary
	err      error
}

func (s *stubLister) ListSessions(ctx context.Context) ([]api.SessionSummary, error) {
	s.calls.Add(1)
	return s.sessions, s.err
}

func TestRefresherDeliversResult(t *testing.T) {
	lister := &stubLister{sessions: []api.SessionSummary{{ID: 1, Title: "chat"}}}

	var mu sync.Mutex
	var got []api.SessionSummary
	done := make(chan struct{}, 1)

	r := NewRefresher(lister, func(sessions []api.SessionSummary, err error) {
		mu.Lock()
		got = sessions
		mu.Unlock()
		done <- struct{}{}
	})
	defer r.Close()

	r.Trigger(context.Background())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Refresh result never delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("Unexpected sessions: %+v", got)
	}
	if lister.calls.Load() != 1 {
		t.Errorf("Expected exactly 1 list call, got %d", lister.calls.Load())
	}
}

func TestRefresherFailureIsContained(t *testing.T) {
	lister := &stubLister{err: errors.New("server down")}

	done := make(chan error, 1)
	r := NewRefresher(lister, func(sessions []api.SessionSummary, err error) {
		done <- err
	})
	defer r.Close()

	// Trigger must not block or panic on failure; the error only reaches
	// the callback.
	r.Trigger(context.Background())

	select {
	case err := <-done:
		if err == nil {
			t.Error("Expected refresh error to be reported")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Refresh result never delivered")
	}
}

func TestRefresherOncePerTrigger(t *testing.T) {
	lister := &stubLister{}
	var delivered atomic.Int32

	r := NewRefresher(lister, func(sessions []api.SessionSummary, err error) {
		delivered.Add(1)
	})

	for i := 0; i < 3; i++ {
		r.Trigger(context.Background())
	}
	r.Close() // waits for in-flight refreshes

	// The limiter delays bursts but never drops a refresh.
	if lister.calls.Load() != 3 {
		t.Errorf("Expected 3 list calls, got %d", lister.calls.Load())
	}
}

func TestRefresherClosedDropsTriggers(t *testing.T) {
	lister := &stubLister{}
	r := NewRefresher(lister, nil)
	r.Close()

	r.Trigger(context.Background())
	time.Sleep(50 * time.Millisecond)

	if lister.calls.Load() != 0 {
		t.Errorf("Expected no calls after Close, got %d", lister.calls.Load())
	}
}
