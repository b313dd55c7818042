// Package token issues and verifies the HS256 JWTs used by both
// authentication tracks. Principal and applicant tokens carry different
// audiences so a token minted for one track never validates on the other.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Track identifies which authentication track a token belongs to.
type Track string

const (
	// TrackPrincipal marks tokens for internal staff principals.
	TrackPrincipal Track = "principal"

	// TrackApplicant marks tokens for external applicants.
	TrackApplicant Track = "applicant"
)

// Kind distinguishes access tokens from refresh tokens.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Audience values embedded in the aud claim, one per track.
const (
	audiencePrincipal = "ability:principal"
	audienceApplicant = "ability:applicant"
)

// Sentinel errors returned by Verify.
var (
	// ErrInvalidToken is returned when a token fails signature or
	// registered-claim validation.
	ErrInvalidToken = errors.New("token: invalid")

	// ErrWrongTrack is returned when a structurally valid token was
	// issued for the other track.
	ErrWrongTrack = errors.New("token: wrong track")

	// ErrWrongKind is returned when an access token is presented where a
	// refresh token is required, or vice versa.
	ErrWrongKind = errors.New("token: wrong kind")
)

// Claims are the claims carried by every issued token.
type Claims struct {
	Kind Kind `json:"kind"`
	jwt.RegisteredClaims
}

// Pair is an access/refresh token pair issued together.
type Pair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Issuer mints and verifies tokens for a single track.
type Issuer struct {
	secret     []byte
	issuer     string
	audience   string
	track      Track
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// Config configures an Issuer.
type Config struct {
	// Secret is the HS256 signing key. Required.
	Secret string `json:"secret" yaml:"secret"`

	// Issuer is the iss claim. Defaults to "ability".
	Issuer string `json:"issuer" yaml:"issuer"`

	// AccessTTL is the access token lifetime. Defaults to 15 minutes.
	AccessTTL time.Duration `json:"access_ttl" yaml:"access_ttl"`

	// RefreshTTL is the refresh token lifetime. Defaults to 30 days.
	RefreshTTL time.Duration `json:"refresh_ttl" yaml:"refresh_ttl"`
}

// NewIssuer creates an issuer for the given track.
func NewIssuer(track Track, cfg Config) (*Issuer, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token: secret is required")
	}
	var aud string
	switch track {
	case TrackPrincipal:
		aud = audiencePrincipal
	case TrackApplicant:
		aud = audienceApplicant
	default:
		return nil, fmt.Errorf("token: unknown track %q", track)
	}
	iss := cfg.Issuer
	if iss == "" {
		iss = "ability"
	}
	accessTTL := cfg.AccessTTL
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	refreshTTL := cfg.RefreshTTL
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	return &Issuer{
		secret:     []byte(cfg.Secret),
		issuer:     iss,
		audience:   aud,
		track:      track,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// Track returns the track this issuer mints tokens for.
func (i *Issuer) Track() Track {
	return i.track
}

// Issue mints an access/refresh pair for the given subject ID.
func (i *Issuer) Issue(subjectID string) (*Pair, error) {
	now := time.Now()
	accessExp := now.Add(i.accessTTL)

	access, err := i.sign(subjectID, KindAccess, now, accessExp)
	if err != nil {
		return nil, err
	}
	refresh, err := i.sign(subjectID, KindRefresh, now, now.Add(i.refreshTTL))
	if err != nil {
		return nil, err
	}
	return &Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    accessExp,
	}, nil
}

func (i *Issuer) sign(subjectID string, kind Kind, issuedAt, expiresAt time.Time) (string, error) {
	claims := Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify validates a token of the given kind and returns its claims.
// A token issued for the other track fails with ErrWrongTrack even when
// its signature is valid.
func (i *Issuer) Verify(tokenString string, kind Kind) (*Claims, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if t.Method == nil || t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}
	if !hasAudience(claims.Audience, i.audience) {
		return nil, fmt.Errorf("%w: audience %v", ErrWrongTrack, claims.Audience)
	}
	if claims.Kind != kind {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrWrongKind, claims.Kind, kind)
	}
	return &claims, nil
}

// Refresh validates a refresh token and mints a new pair for its subject.
func (i *Issuer) Refresh(refreshToken string) (*Pair, error) {
	claims, err := i.Verify(refreshToken, KindRefresh)
	if err != nil {
		return nil, err
	}
	return i.Issue(claims.Subject)
}

func hasAudience(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}
