package token

import (
	"errors"
	"testing"
	"time"
)

func newTestIssuer(t *testing.T, track Track) *Issuer {
	t.Helper()
	iss, err := NewIssuer(track, Config{Secret: "test-secret"})
	if err != nil {
		t.Fatal(err)
	}
	return iss
}

func TestIssueAndVerify(t *testing.T) {
	iss := newTestIssuer(t, TrackPrincipal)

	pair, err := iss.Issue("user_01h2xcejqtf2nbrexx3vqjhp41")
	if err != nil {
		t.Fatal(err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}
	if !pair.ExpiresAt.After(time.Now()) {
		t.Fatal("access expiry must be in the future")
	}

	claims, err := iss.Verify(pair.AccessToken, KindAccess)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != "user_01h2xcejqtf2nbrexx3vqjhp41" {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}
	if claims.Kind != KindAccess {
		t.Fatalf("unexpected kind %q", claims.Kind)
	}
}

func TestTracksAreMutuallyExclusive(t *testing.T) {
	principalIss := newTestIssuer(t, TrackPrincipal)
	applicantIss := newTestIssuer(t, TrackApplicant)

	pair, err := principalIss.Issue("user_01h2xcejqtf2nbrexx3vqjhp41")
	if err != nil {
		t.Fatal(err)
	}

	// Both issuers share the secret; the audience still rejects.
	_, err = applicantIss.Verify(pair.AccessToken, KindAccess)
	if !errors.Is(err, ErrWrongTrack) {
		t.Fatalf("expected ErrWrongTrack, got %v", err)
	}
}

func TestKindEnforced(t *testing.T) {
	iss := newTestIssuer(t, TrackApplicant)

	pair, err := iss.Issue("aplc_01h2xcejqtf2nbrexx3vqjhp41")
	if err != nil {
		t.Fatal(err)
	}

	_, err = iss.Verify(pair.RefreshToken, KindAccess)
	if !errors.Is(err, ErrWrongKind) {
		t.Fatalf("expected ErrWrongKind, got %v", err)
	}
	if _, err := iss.Verify(pair.RefreshToken, KindRefresh); err != nil {
		t.Fatal(err)
	}
}

func TestWrongSecretRejected(t *testing.T) {
	iss := newTestIssuer(t, TrackPrincipal)
	other, err := NewIssuer(TrackPrincipal, Config{Secret: "different-secret"})
	if err != nil {
		t.Fatal(err)
	}

	pair, err := iss.Issue("user_01h2xcejqtf2nbrexx3vqjhp41")
	if err != nil {
		t.Fatal(err)
	}

	_, err = other.Verify(pair.AccessToken, KindAccess)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	iss, err := NewIssuer(TrackPrincipal, Config{
		Secret:    "test-secret",
		AccessTTL: -time.Minute,
	})
	if err != nil {
		t.Fatal(err)
	}
	// Negative TTL falls back to the default; build one expired by hand.
	signed, err := iss.sign("user_01h2xcejqtf2nbrexx3vqjhp41", KindAccess,
		time.Now().Add(-time.Hour), time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatal(err)
	}

	_, err = iss.Verify(signed, KindAccess)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestRefreshMintsNewPair(t *testing.T) {
	iss := newTestIssuer(t, TrackPrincipal)

	pair, err := iss.Issue("user_01h2xcejqtf2nbrexx3vqjhp41")
	if err != nil {
		t.Fatal(err)
	}

	renewed, err := iss.Refresh(pair.RefreshToken)
	if err != nil {
		t.Fatal(err)
	}

	claims, err := iss.Verify(renewed.AccessToken, KindAccess)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != "user_01h2xcejqtf2nbrexx3vqjhp41" {
		t.Fatalf("refresh must keep the subject, got %q", claims.Subject)
	}

	// An access token cannot be used to refresh.
	if _, err := iss.Refresh(pair.AccessToken); !errors.Is(err, ErrWrongKind) {
		t.Fatalf("expected ErrWrongKind, got %v", err)
	}
}

func TestNewIssuerValidation(t *testing.T) {
	if _, err := NewIssuer(TrackPrincipal, Config{}); err == nil {
		t.Fatal("expected error for missing secret")
	}
	if _, err := NewIssuer("robot", Config{Secret: "s"}); err == nil {
		t.Fatal("expected error for unknown track")
	}
}
