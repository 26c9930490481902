package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Info describes a bearer token as far as the client can tell without the
// API's signing key.
type Info struct {
	// Opaque is true when the token is not a JWT.
	Opaque    bool      `json:"opaque" yaml:"opaque"`
	Subject   string    `json:"subject,omitempty" yaml:"subject,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	IssuedAt  time.Time `json:"issued_at,omitempty" yaml:"issued_at,omitempty"`
}

// Expired reports whether the token carries an expiry that lies before now.
func (i Info) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// Inspect reads subject and expiry from a JWT without verifying its
// signature. The API stays the authority; this only lets the CLI skip a
// request it knows would be rejected. Tokens that do not parse are opaque.
func Inspect(token string) Info {
	var claims jwt.RegisteredClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return Info{Opaque: true}
	}

	info := Info{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}
	return info
}

// ErrTokenExpired is returned when a stored token is known to be expired.
var ErrTokenExpired = errors.New("token expired")

// Check returns ErrTokenExpired for a JWT whose expiry has passed.
func Check(token string, now time.Time) error {
	if Inspect(token).Expired(now) {
		return ErrTokenExpired
	}
	return nil
}
