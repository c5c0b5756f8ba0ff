package outbox

import (
	"errors"
	"math/rand"
	"testing"
	"time"
)

func TestBackoff(t *testing.T) {
	t.Parallel()

	maxBackoff := 60 * time.Second
	cases := []struct {
		attempts int
		want     time.Duration
	}{
		{attempts: 0, want: 0},
		{attempts: 1, want: 1 * time.Second},
		{attempts: 2, want: 2 * time.Second},
		{attempts: 3, want: 4 * time.Second},
		{attempts: 7, want: 60 * time.Second}, // cap
	}

	for _, tc := range cases {
		if got := backoff(tc.attempts, maxBackoff); got != tc.want {
			t.Fatalf("attempts=%d: want %s got %s", tc.attempts, tc.want, got)
		}
	}
}

func TestJitterDeterministic(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(1))
	maxJitter := 200 * time.Millisecond

	got := jitter(r, maxJitter)
	if got < 0 || got > maxJitter {
		t.Fatalf("jitter out of range: %s", got)
	}

	r2 := rand.New(rand.NewSource(1))
	if got2 := jitter(r2, maxJitter); got2 != got {
		t.Fatalf("expected deterministic jitter; got %s and %s", got, got2)
	}
}

func TestTruncateError(t *testing.T) {
	t.Parallel()

	if got := truncateError(nil, 10); got != "" {
		t.Fatalf("nil error: want empty, got %q", got)
	}
	if got := truncateError(errors.New("short"), 10); got != "short" {
		t.Fatalf("want %q got %q", "short", got)
	}
	if got := truncateError(errors.New("0123456789abcdef"), 10); got != "0123456789" {
		t.Fatalf("want %q got %q", "0123456789", got)
	}
	// Multi-byte rune spanning the cut point is dropped entirely.
	if got := truncateError(errors.New("aé"), 2); got != "a" {
		t.Fatalf("want %q got %q", "a", got)
	}
}

func TestParseIdentifier(t *testing.T) {
	t.Parallel()

	ident, err := ParseIdentifier("public.crm_outbox")
	if err != nil {
		t.Fatal(err)
	}
	if len(ident) != 2 || ident[0] != "public" || ident[1] != "crm_outbox" {
		t.Fatalf("unexpected identifier: %v", ident)
	}

	for _, bad := range []string{"", "a.b.c", "bad-name", "a..b"} {
		if _, err := ParseIdentifier(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}

	list, err := ParseIdentifierList("crm_outbox, public.core_outbox")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("want 2 identifiers, got %d", len(list))
	}
}
