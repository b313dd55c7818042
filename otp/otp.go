// Package otp issues and verifies short-lived one-time codes for applicant
// sign-in. Codes are stored in memory with TTL-based expiration.
package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"
)

// Sentinel errors.
var (
	// ErrCodeActive is returned by Issue when a live code already exists
	// for the telephone number.
	ErrCodeActive = errors.New("otp: active code exists")

	// ErrCodeInvalid is returned by Verify when no live code exists for
	// the telephone number or the provided code does not match.
	ErrCodeInvalid = errors.New("otp: invalid code")
)

// Store issues and verifies one-time codes. Each telephone number holds at
// most one live code; verification is single-use.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	digits  int
	maxSize int
}

type entry struct {
	code      string
	expiresAt time.Time
}

// Option configures the store.
type Option func(*Store)

// WithTTL sets the code time-to-live.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithDigits sets the code length.
func WithDigits(n int) Option {
	return func(s *Store) { s.digits = n }
}

// WithMaxSize sets the maximum number of live codes.
func WithMaxSize(n int) Option {
	return func(s *Store) { s.maxSize = n }
}

// NewStore creates an in-memory code store. Defaults: 4 digits, 10 minute
// validity, 10000 live codes.
func NewStore(opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]*entry),
		ttl:     10 * time.Minute,
		digits:  4,
		maxSize: 10000,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue generates a code for the telephone number. A second request while a
// live code exists fails with ErrCodeActive; the caller retries after the
// current code expires.
func (s *Store) Issue(_ context.Context, telephone string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if e, ok := s.entries[telephone]; ok && now.Before(e.expiresAt) {
		return "", fmt.Errorf("telephone %q: %w", telephone, ErrCodeActive)
	}

	if len(s.entries) >= s.maxSize {
		s.evictExpired(now)
		if len(s.entries) >= s.maxSize {
			s.evictOne()
		}
	}

	code, err := s.generate()
	if err != nil {
		return "", fmt.Errorf("otp: generate code: %w", err)
	}
	s.entries[telephone] = &entry{
		code:      code,
		expiresAt: now.Add(s.ttl),
	}
	return code, nil
}

// Verify checks the code for the telephone number. A successful match
// consumes the code; a second Verify with the same code fails.
func (s *Store) Verify(_ context.Context, telephone, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[telephone]
	if !ok {
		return fmt.Errorf("telephone %q: %w", telephone, ErrCodeInvalid)
	}
	if time.Now().After(e.expiresAt) {
		delete(s.entries, telephone)
		return fmt.Errorf("telephone %q: %w", telephone, ErrCodeInvalid)
	}
	if subtle.ConstantTimeCompare([]byte(e.code), []byte(code)) != 1 {
		return fmt.Errorf("telephone %q: %w", telephone, ErrCodeInvalid)
	}
	delete(s.entries, telephone)
	return nil
}

// Revoke drops any live code for the telephone number.
func (s *Store) Revoke(_ context.Context, telephone string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, telephone)
}

// Len returns the number of live codes.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) generate() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < s.digits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", s.digits, n), nil
}

func (s *Store) evictExpired(now time.Time) {
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
		}
	}
}

func (s *Store) evictOne() {
	var oldestKey string
	var oldestTime time.Time
	for k, e := range s.entries {
		if oldestKey == "" || e.expiresAt.Before(oldestTime) {
			oldestKey = k
			oldestTime = e.expiresAt
		}
	}
	if oldestKey != "" {
		delete(s.entries, oldestKey)
	}
}
