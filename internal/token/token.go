// Package token issues and validates the bearer session tokens that bind a
// request to a student account.
//
// Tokens are HS256-signed JWTs. Nothing is stored server-side: a token stays
// valid until it expires, and logging out means the client discards it.
package token

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"studymate/internal/uuid"
)

const issuer = "studymate-api"

// DefaultTTL is the session lifetime when none is configured.
const DefaultTTL = 24 * time.Hour

// Claims are the JWT claims carried by a session token.
type Claims struct {
	StudentID uint `json:"student_id"`
	jwt.RegisteredClaims
}

// Service signs and verifies session tokens.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService creates a token service. A non-positive ttl falls back to DefaultTTL.
func NewService(secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns the lifetime of issued tokens.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue returns a signed token for studentID and the instant it expires.
func (s *Service) Issue(studentID uint) (string, time.Time, error) {
	if studentID == 0 {
		return "", time.Time{}, fmt.Errorf("issue token: invalid student id")
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := &Claims{
		StudentID: studentID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New(),
			Issuer:    issuer,
			Subject:   strconv.FormatUint(uint64(studentID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate returns the student id embedded in raw. ok is false when the token
// is malformed, not HMAC-signed with our secret, expired, or carries no
// usable student id. Validate never panics on hostile input.
func (s *Service) Validate(raw string) (studentID uint, ok bool) {
	if raw == "" {
		return 0, false
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(issuer),
	)
	if err != nil || !parsed.Valid {
		return 0, false
	}

	if claims.StudentID == 0 || claims.Subject != strconv.FormatUint(uint64(claims.StudentID), 10) {
		return 0, false
	}
	return claims.StudentID, true
}
