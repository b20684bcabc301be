// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Goutam-aswani/chatbot-tui/internal/api"
	"github.com/Goutam-aswani/chatbot-tui/internal/config"
	"github.com/Goutam-aswani/chatbot-tui/internal/model"
	"github.com/Goutam-aswani/chatbot-tui/internal/turn"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		name  string
		arg   string
	}{
		{"/new", "new", ""},
		{"/sessions", "sessions", ""},
		{"/open 7", "open", "7"},
		{"/rename My chat about Go", "rename", "My chat about Go"},
		{"/delete  12  ", "delete", "12"},
		{"/HELP", "help", ""},
		{"  /quit  ", "quit", ""},
	}

	for _, tt := range tests {
		name, arg := parseCommand(tt.input)
		if name != tt.name {
			t.Errorf("parseCommand(%q) name = %q, want %q", tt.input, name, tt.name)
		}
		if arg != tt.arg {
			t.Errorf("parseCommand(%q) arg = %q, want %q", tt.input, arg, tt.arg)
		}
	}
}

func TestSubmitRejectedWhileTurnActive(t *testing.T) {
	// The stream stays open until the test ends, so the first turn is
	// still in flight when the second Enter arrives.
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Session-ID", "3")
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		<-release
	}))
	defer server.Close()
	defer close(release)

	client, err := api.New(server.URL, "test-token")
	if err != nil {
		t.Fatalf("api.New failed: %v", err)
	}
	conv := model.NewConversation()
	runner := turn.NewRunner(client, conv, nil, turn.Options{})
	defer runner.ForceSettle()

	refreshCh, _ := NewRefreshChannel()
	m := New(client, runner, refreshCh, config.Default())
	m = m.handleResize(80, 24)

	m.input.SetValue("first question")
	updated, _ := m.handleSubmit()
	m = updated.(Model)

	if !waitFor(func() bool { return runner.Active() }) {
		t.Fatal("Expected first submit to start a turn")
	}
	if got := conv.MessageCount(); got != 2 {
		t.Fatalf("Expected 2 messages after first submit, got %d", got)
	}

	// Enter during the in-flight turn: rejected, nothing force-settled,
	// the typed text stays in the input line.
	m.input.SetValue("second question")
	updated, _ = m.handleSubmit()
	m = updated.(Model)

	if got := conv.MessageCount(); got != 2 {
		t.Errorf("Second submit reached the conversation: %d messages", got)
	}
	if !runner.Active() {
		t.Error("Second submit settled the in-flight turn")
	}
	if !m.noticeErr || m.notice == "" {
		t.Errorf("Expected an error notice, got %q (err=%v)", m.notice, m.noticeErr)
	}
	if m.input.Value() != "second question" {
		t.Errorf("Rejected input was cleared: %q", m.input.Value())
	}
}

// waitFor polls the condition briefly, for assertions that race a
// background goroutine.
func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestRefreshChannelDelivers(t *testing.T) {
	ch, onDone := NewRefreshChannel()

	onDone([]api.SessionSummary{{ID: 7, Title: "Greetings"}}, nil)

	select {
	case msg := <-ch:
		if !msg.FromRefresher {
			t.Error("Expected FromRefresher to be set")
		}
		if len(msg.Sessions) != 1 || msg.Sessions[0].ID != 7 {
			t.Errorf("Unexpected sessions: %+v", msg.Sessions)
		}
	default:
		t.Fatal("Expected a buffered delivery")
	}
}

func TestRefreshChannelNeverBlocks(t *testing.T) {
	ch, onDone := NewRefreshChannel()

	// Flood past the buffer; the callback must drop rather than block.
	for i := 0; i < 20; i++ {
		onDone(nil, errors.New("offline"))
	}

	if got := len(ch); got != cap(ch) {
		t.Errorf("Expected channel full at %d, got %d", cap(ch), got)
	}
}
