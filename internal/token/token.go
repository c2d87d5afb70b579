package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"

	accessTTL  = 1 * time.Hour
	refreshTTL = 30 * 24 * time.Hour
)

var ErrInvalidToken = errors.New("invalid or expired token")

type Claims struct {
	UserID    int64  `json:"uid"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// Manager issues and verifies HS256 access/refresh token pairs.
type Manager struct {
	secret []byte
}

func NewManager(secret string) *Manager {
	return &Manager{secret: []byte(secret)}
}

func (m *Manager) Access(userID int64) (string, error) {
	return m.sign(userID, TypeAccess, accessTTL)
}

func (m *Manager) Refresh(userID int64) (string, error) {
	return m.sign(userID, TypeRefresh, refreshTTL)
}

func (m *Manager) sign(userID int64, typ string, ttl time.Duration) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:    userID,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "teamup",
		},
	})
	return tok.SignedString(m.secret)
}

// Parse verifies the signature and expiry and checks the token type,
// so a refresh token cannot be used where an access token is expected.
func (m *Manager) Parse(tokenStr, wantType string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	cl, ok := tok.Claims.(*Claims)
	if !ok || cl.TokenType != wantType {
		return nil, ErrInvalidToken
	}
	return cl, nil
}
