package otp

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	code, err := s.Issue(ctx, "+15550100")
	if err != nil {
		t.Fatal(err)
	}
	if len(code) != 4 {
		t.Fatalf("expected 4-digit code, got %q", code)
	}

	if err := s.Verify(ctx, "+15550100", code); err != nil {
		t.Fatal(err)
	}

	// Single-use: a second verify with the same code fails.
	if err := s.Verify(ctx, "+15550100", code); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("expected ErrCodeInvalid on reuse, got %v", err)
	}
}

func TestDuplicateIssueRejectedWhileLive(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	if _, err := s.Issue(ctx, "+15550100"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Issue(ctx, "+15550100"); !errors.Is(err, ErrCodeActive) {
		t.Fatalf("expected ErrCodeActive, got %v", err)
	}

	// A different telephone is unaffected.
	if _, err := s.Issue(ctx, "+15550101"); err != nil {
		t.Fatal(err)
	}
}

func TestWrongCodeRejected(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	code, err := s.Issue(ctx, "+15550100")
	if err != nil {
		t.Fatal(err)
	}

	wrong := "0000"
	if wrong == code {
		wrong = "0001"
	}
	if err := s.Verify(ctx, "+15550100", wrong); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("expected ErrCodeInvalid, got %v", err)
	}

	// A failed attempt does not consume the code.
	if err := s.Verify(ctx, "+15550100", code); err != nil {
		t.Fatal(err)
	}
}

func TestExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewStore(WithTTL(time.Millisecond))

	code, err := s.Issue(ctx, "+15550100")
	if err != nil {
		t.Fatal(err)
	}

	time.Sleep(5 * time.Millisecond)

	if err := s.Verify(ctx, "+15550100", code); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("expected ErrCodeInvalid after expiry, got %v", err)
	}

	// Expiry frees the slot for a fresh issue.
	if _, err := s.Issue(ctx, "+15550100"); err != nil {
		t.Fatal(err)
	}
}

func TestUnknownTelephone(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	if err := s.Verify(ctx, "+15550100", "1234"); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("expected ErrCodeInvalid, got %v", err)
	}
}

func TestRevoke(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	code, err := s.Issue(ctx, "+15550100")
	if err != nil {
		t.Fatal(err)
	}
	s.Revoke(ctx, "+15550100")

	if err := s.Verify(ctx, "+15550100", code); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("expected ErrCodeInvalid after revoke, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d", s.Len())
	}
}

func TestEviction(t *testing.T) {
	ctx := context.Background()
	s := NewStore(WithMaxSize(2))

	if _, err := s.Issue(ctx, "+15550100"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Issue(ctx, "+15550101"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Issue(ctx, "+15550102"); err != nil {
		t.Fatal(err)
	}

	if s.Len() != 2 {
		t.Fatalf("expected capacity respected, got %d live codes", s.Len())
	}
}

func TestWithDigits(t *testing.T) {
	ctx := context.Background()
	s := NewStore(WithDigits(6))

	code, err := s.Issue(ctx, "+15550100")
	if err != nil {
		t.Fatal(err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", code)
	}
}
