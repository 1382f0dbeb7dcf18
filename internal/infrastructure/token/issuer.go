// Package token issues signed bearer tokens backed by revocable sessions.
package token

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"

	domain "storeadmin/backend/internal/domain/auth"
	usecase "storeadmin/backend/internal/usecase/auth"
)

const jtiBytes = 32

// Issuer signs HS256 tokens and records a session for each one. A token
// resolves only while its session exists, so deleting the session revokes it.
type Issuer struct {
	secret   []byte
	ttl      time.Duration
	issuer   string
	sessions domain.SessionStore
	nowFunc  func() time.Time
}

// NewIssuer constructs an issuer. A zero ttl issues tokens that live until revoked.
func NewIssuer(secret string, ttl time.Duration, issuer string, sessions domain.SessionStore) *Issuer {
	return &Issuer{
		secret:   []byte(secret),
		ttl:      ttl,
		issuer:   issuer,
		sessions: sessions,
		nowFunc:  func() time.Time { return time.Now().UTC() },
	}
}

var _ usecase.TokenIssuer = (*Issuer)(nil)

// Claims represents token claims.
type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// HashToken returns the hex SHA-256 of token, the key sessions are stored under.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Issue creates a signed token with a random jti and stores its session.
func (m *Issuer) Issue(ctx context.Context, userID string) (string, error) {
	jti, err := randomHex(jtiBytes)
	if err != nil {
		return "", oops.Code("TOKEN_ISSUE_FAILED").Wrapf(err, "generate token id")
	}

	now := m.nowFunc()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       jti,
			Issuer:   m.issuer,
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	session := &domain.Session{UserID: userID, CreatedAt: now}
	if m.ttl > 0 {
		expires := now.Add(m.ttl)
		claims.ExpiresAt = jwt.NewNumericDate(expires)
		session.ExpiresAt = expires
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", oops.Code("TOKEN_ISSUE_FAILED").Wrapf(err, "sign token")
	}

	session.TokenHash = HashToken(signed)
	if err := m.sessions.Create(ctx, session); err != nil {
		return "", err
	}
	return signed, nil
}

// Resolve validates the signature and expiry, then requires a live session
// bound to the same user.
func (m *Issuer) Resolve(ctx context.Context, tokenString string) (string, error) {
	if tokenString == "" {
		return "", domain.ErrTokenInvalid
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.nowFunc),
	)
	if err != nil || !token.Valid || claims.UserID == "" {
		return "", domain.ErrTokenInvalid
	}

	session, err := m.sessions.Get(ctx, HashToken(tokenString))
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			return "", domain.ErrTokenInvalid
		}
		return "", err
	}
	if session.UserID != claims.UserID || session.ExpiredAt(m.nowFunc()) {
		return "", domain.ErrTokenInvalid
	}
	return session.UserID, nil
}

// Revoke deletes the session of tokenString.
func (m *Issuer) Revoke(ctx context.Context, tokenString string) error {
	if tokenString == "" {
		return domain.ErrTokenNotFound
	}
	return m.sessions.Delete(ctx, HashToken(tokenString))
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
