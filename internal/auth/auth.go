package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"notion-forms/internal/metadata"
)

// Claims represents the access token claims.
type Claims struct {
	jwt.RegisteredClaims
	Roles     []string `json:"roles"`
	Workspace string   `json:"workspace,omitempty"`
}

const (
	AccessTokenTTL  = 15 * time.Minute
	sessionAudience = "form-session"
)

var ErrSessionDatabaseMissing = errors.New("form session has no database")

// GenerateAccessToken creates a signed JWT with user ID, roles and workspace.
func GenerateAccessToken(userID, workspace string, roles []string, secret string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = AccessTokenTTL
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Roles:     roles,
		Workspace: workspace,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// ParseAccessToken validates and parses a JWT, returning the claims.
func ParseAccessToken(tokenStr string, secret string) (*Claims, error) {
	claims := &Claims{}
	if err := parse(tokenStr, secret, claims); err != nil {
		return nil, err
	}
	if len(claims.Audience) > 0 {
		return nil, fmt.Errorf("not an access token")
	}
	return claims, nil
}

func parse(tokenStr, secret string, claims jwt.Claims, opts ...jwt.ParserOption) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return err
	}
	if !token.Valid {
		return fmt.Errorf("invalid token claims")
	}
	return nil
}

type sessionClaims struct {
	jwt.RegisteredClaims
	DatabaseID string `json:"database_id"`
	Workspace  string `json:"workspace,omitempty"`
}

// Sessions issues and verifies form session tokens.
type Sessions struct {
	secret string
	ttl    time.Duration
}

func NewSessions(secret string, ttl time.Duration) *Sessions {
	return &Sessions{secret: secret, ttl: ttl}
}

// IssueFormSession signs a session for a form built from databaseID.
func (s *Sessions) IssueFormSession(databaseID, userID, workspace string) (string, error) {
	if databaseID == "" {
		return "", ErrSessionDatabaseMissing
	}
	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID,
			Audience:  jwt.ClaimStrings{sessionAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		DatabaseID: databaseID,
		Workspace:  workspace,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
	if err != nil {
		return "", fmt.Errorf("sign form session: %w", err)
	}
	return signed, nil
}

// ParseFormSession verifies a session token and returns what it carries.
func (s *Sessions) ParseFormSession(tokenStr string) (*metadata.FormSession, error) {
	claims := &sessionClaims{}
	if err := parse(tokenStr, s.secret, claims, jwt.WithAudience(sessionAudience)); err != nil {
		return nil, err
	}
	if claims.DatabaseID == "" {
		return nil, ErrSessionDatabaseMissing
	}
	return &metadata.FormSession{
		ID:         claims.ID,
		DatabaseID: claims.DatabaseID,
		UserID:     claims.Subject,
		Workspace:  claims.Workspace,
	}, nil
}
