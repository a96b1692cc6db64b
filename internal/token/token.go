// Package token issues and verifies the JWT pair used by the API: a
// short-lived access token carrying the user identity and a longer-lived
// refresh token carrying a unique JTI so individual tokens can be
// blacklisted at logout.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var (
	ErrInvalid   = errors.New("token is invalid or expired")
	ErrWrongType = errors.New("unexpected token type")
)

// Claims is the decoded, verified content of a token.
type Claims struct {
	UserID    int64
	Username  string
	TokenType string
	JTI       string
	ExpiresAt time.Time
}

// Manager signs and parses tokens with a shared HMAC secret.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewManager(secret string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// Access issues an access token for the given user.
func (m *Manager) Access(userID int64, username string) (string, error) {
	return m.sign(jwt.MapClaims{
		"token_type": TypeAccess,
		"user_id":    userID,
		"username":   username,
		"jti":        uuid.NewString(),
		"iat":        time.Now().Unix(),
		"exp":        time.Now().Add(m.accessTTL).Unix(),
	})
}

// Refresh issues a refresh token for the given user.
func (m *Manager) Refresh(userID int64) (string, error) {
	return m.sign(jwt.MapClaims{
		"token_type": TypeRefresh,
		"user_id":    userID,
		"jti":        uuid.NewString(),
		"iat":        time.Now().Unix(),
		"exp":        time.Now().Add(m.refreshTTL).Unix(),
	})
}

func (m *Manager) sign(claims jwt.MapClaims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// Parse verifies the signature and expiry of a token and decodes its
// claims. The caller checks TokenType against the expected kind.
func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	t, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !t.Valid {
		return nil, ErrInvalid
	}
	mc, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalid
	}

	c := &Claims{}
	if v, ok := mc["user_id"].(float64); ok {
		c.UserID = int64(v)
	}
	if v, ok := mc["username"].(string); ok {
		c.Username = v
	}
	if v, ok := mc["token_type"].(string); ok {
		c.TokenType = v
	}
	if v, ok := mc["jti"].(string); ok {
		c.JTI = v
	}
	if v, ok := mc["exp"].(float64); ok {
		c.ExpiresAt = time.Unix(int64(v), 0)
	}
	if c.UserID <= 0 || c.JTI == "" {
		return nil, ErrInvalid
	}
	return c, nil
}

// ParseOfType parses the token and enforces its token_type claim.
func (m *Manager) ParseOfType(tokenStr, wantType string) (*Claims, error) {
	c, err := m.Parse(tokenStr)
	if err != nil {
		return nil, err
	}
	if c.TokenType != wantType {
		return nil, ErrWrongType
	}
	return c, nil
}
