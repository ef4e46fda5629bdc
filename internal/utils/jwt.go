package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Purpose tags what a token may legitimately be used for. A token minted for
// one purpose must never be accepted for another, so VerifyToken checks the
// tag in addition to the signature.
type Purpose string

const (
	PurposeAccess  Purpose = "access"
	PurposeRefresh Purpose = "refresh"
	PurposeReset   Purpose = "password_reset"
)

var (
	// ErrTokenExpired is returned when a token's signature is fine but its
	// exp claim is in the past.
	ErrTokenExpired = errors.New("token expired")
	// ErrInvalidToken covers every other verification failure: bad
	// signature, malformed string, wrong purpose tag, missing subject.
	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the payload carried by every token this service issues. Subject
// holds the user ID; Email is an auxiliary claim so a refresh rotation can
// re-mint a pair without a user lookup.
type Claims struct {
	jwt.RegisteredClaims
	Email   string  `json:"email"`
	Purpose Purpose `json:"type"`
}

// Token bundles a signed token string with its expiration time. The Exp
// field is what gets persisted for refresh tokens and echoed in responses.
type Token struct {
	Raw string    // the serialized JWT string
	Exp time.Time // UTC expiration time
}

// SignToken builds and signs an HS256 JWT for a user. Expiration is an
// absolute instant derived from the current UTC time plus ttl.
func SignToken(secret, userID, email string, purpose Purpose, ttl time.Duration) (Token, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Email:   email,
		Purpose: purpose,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return Token{}, err
	}
	return Token{Raw: signed, Exp: exp}, nil
}

// VerifyToken parses and validates a token against the secret and expected
// purpose. It returns ErrTokenExpired for an otherwise valid but expired
// token and ErrInvalidToken for everything else; raw jwt library errors are
// never surfaced to callers.
func VerifyToken(raw, secret string, purpose Purpose) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC; the alg header is
		// attacker-controlled.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !tok.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	if claims.Purpose != purpose {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HashToken returns the SHA-256 hash of a raw token as a hex string. Refresh
// and reset tokens are stored hashed so a leaked database row cannot be
// replayed as a credential.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
