package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims binds a token to one principal under one guard. The jti makes
// individual tokens revocable.
type Claims struct {
	UserID uint64 `json:"uid"`
	Guard  string `json:"gd"`
	jwt.RegisteredClaims
}

// IssuedToken is the wire shape of a successful login or refresh.
type IssuedToken struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"` // seconds
}

// TokenIssuer signs and parses bearer tokens with a fixed TTL.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *TokenIssuer) TTL() time.Duration { return t.ttl }

func (t *TokenIssuer) Issue(userID uint64, guard Guard) (*IssuedToken, *Claims, error) {
	now := t.now()
	claims := &Claims{
		UserID: userID,
		Guard:  guard.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return nil, nil, err
	}

	return &IssuedToken{
		Token:     signed,
		TokenType: "bearer",
		ExpiresIn: int64(t.ttl.Seconds()),
	}, claims, nil
}

// Parse validates signature and expiry. Any failure is ErrUnauthorized; the
// caller never learns why a token was rejected.
func (t *TokenIssuer) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthorized
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrUnauthorized
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.ID == "" {
		return nil, ErrUnauthorized
	}
	return claims, nil
}
