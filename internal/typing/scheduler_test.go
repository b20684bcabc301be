// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package typing

import (
	"strings"
	"sync"
	"testing"
)

func TestSchedulerRevealBudget(t *testing.T) {
	s := NewScheduler(4)
	s.Feed("Hello, world")

	first := s.Reveal()
	if first != "Hell" {
		t.Errorf("Expected 'Hell', got %q", first)
	}

	second := s.Reveal()
	if second != "o, w" {
		t.Errorf("Expected 'o, w', got %q", second)
	}

	rest := s.Reveal() + s.Reveal()
	if first+second+rest != "Hello, world" {
		t.Errorf("Expected full text, got %q", first+second+rest)
	}

	if !s.Idle() {
		t.Error("Expected scheduler to be idle after full reveal")
	}
	if got := s.Reveal(); got != "" {
		t.Errorf("Expected empty reveal when idle, got %q", got)
	}
}

func TestSchedulerCoalescesFeeds(t *testing.T) {
	s := NewScheduler(3)
	s.Feed("abc")
	s.Feed("def")
	s.Feed("g")

	if s.Pending() != 7 {
		t.Errorf("Expected 7 pending, got %d", s.Pending())
	}

	var out strings.Builder
	for !s.Idle() {
		out.WriteString(s.Reveal())
	}
	if out.String() != "abcdefg" {
		t.Errorf("Expected 'abcdefg', got %q", out.String())
	}
}

func TestSchedulerPrefixProperty(t *testing.T) {
	full := "The quick brown fox jumps over the lazy dog."
	s := NewScheduler(5)

	// Feed in uneven pieces while revealing; every intermediate output
	// must be a prefix of the fed text in order.
	pieces := []string{"The quick ", "brown", " fox jumps", " over the lazy dog."}
	var out strings.Builder
	for _, p := range pieces {
		s.Feed(p)
		out.WriteString(s.Reveal())
		if !strings.HasPrefix(full, out.String()) {
			t.Fatalf("%q is not a prefix of the fed text", out.String())
		}
	}
	for !s.Idle() {
		out.WriteString(s.Reveal())
	}
	if out.String() != full {
		t.Errorf("Expected %q, got %q", full, out.String())
	}
}

func TestSchedulerRuneSafety(t *testing.T) {
	// Budget of 1 with multi-byte characters: each reveal must be a whole
	// character, never a byte fragment.
	s := NewScheduler(1)
	s.Feed("日本語😀")

	want := []string{"日", "本", "語", "😀"}
	for i, expected := range want {
		got := s.Reveal()
		if got != expected {
			t.Errorf("Reveal %d: expected %q, got %q", i, expected, got)
		}
	}
}

func TestSchedulerDrain(t *testing.T) {
	s := NewScheduler(2)
	s.Feed("remaining text")
	s.Reveal()

	rest := s.Drain()
	if rest != "maining text" {
		t.Errorf("Expected 'maining text', got %q", rest)
	}
	if !s.Idle() {
		t.Error("Expected idle after drain")
	}
}

func TestSchedulerCancel(t *testing.T) {
	s := NewScheduler(2)
	s.Feed("should be discarded")

	s.Cancel()

	if s.Pending() != 0 {
		t.Errorf("Expected empty buffer after cancel, got %d pending", s.Pending())
	}
	if got := s.Reveal(); got != "" {
		t.Errorf("Expected empty reveal after cancel, got %q", got)
	}

	// Late feeds from a straggling stream goroutine are dropped.
	s.Feed("late chunk")
	if s.Pending() != 0 {
		t.Errorf("Expected feed after cancel to be dropped, got %d pending", s.Pending())
	}

	// Cancel is idempotent.
	s.Cancel()
}

func TestSchedulerDefaultBudget(t *testing.T) {
	s := NewScheduler(0)
	s.Feed("abcdefgh")

	if got := s.Reveal(); len([]rune(got)) != DefaultRunesPerTick {
		t.Errorf("Expected default budget of %d, got %d runes", DefaultRunesPerTick, len([]rune(got)))
	}
}

func TestSchedulerConcurrentFeedAndReveal(t *testing.T) {
	s := NewScheduler(8)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			s.Feed("chunk ")
		}
	}()

	var out strings.Builder
	for i := 0; i < 200; i++ {
		out.WriteString(s.Reveal())
	}
	wg.Wait()
	for !s.Idle() {
		out.WriteString(s.Reveal())
	}

	if out.String() != strings.Repeat("chunk ", 100) {
		t.Errorf("Concurrent feed/reveal lost or reordered text (%d bytes)", out.Len())
	}
}

func BenchmarkSchedulerFeedReveal(b *testing.B) {
	s := NewScheduler(8)
	text := strings.Repeat("streamed response text ", 4)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Feed(text)
		for !s.Idle() {
			s.Reveal()
		}
	}
}
