// Package token issues and verifies the HS256 access and refresh tokens.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/davranaff/coffee/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"

	// TokenType is the OAuth2 token_type returned next to the tokens.
	TokenType = "bearer"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrWrongTokenType = errors.New("wrong token type")
)

// Claims are the registered claims (sub, iat, exp) plus the token type.
type Claims struct {
	Type Type `json:"type"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewManager(cfg config.AuthConfig) *Manager {
	return &Manager{
		secret:     []byte(cfg.SecretKey),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		now:        time.Now,
	}
}

// Issue signs a token of the given type for userID.
func (m *Manager) Issue(userID int64, tokenType Type) (string, error) {
	ttl := m.accessTTL
	if tokenType == TypeRefresh {
		ttl = m.refreshTTL
	}

	now := m.now()
	claims := Claims{
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

// IssuePair returns a fresh access and refresh token.
func (m *Manager) IssuePair(userID int64) (access, refresh string, err error) {
	if access, err = m.Issue(userID, TypeAccess); err != nil {
		return "", "", err
	}
	if refresh, err = m.Issue(userID, TypeRefresh); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// Parse verifies the signature, expiry and type of raw and returns the user id.
func (m *Manager) Parse(raw string, expected Type) (int64, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Type != expected {
		return 0, ErrWrongTokenType
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return userID, nil
}
