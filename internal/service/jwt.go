package service

import (
	"fmt"
	"time"

	"taskmaster/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTTL is how long an issued token stays valid.
const TokenTTL = 30 * 24 * time.Hour

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTManager signs and verifies bearer tokens with a shared HMAC secret.
type JWTManager struct {
	secret []byte
	method jwt.SigningMethod
	now    func() time.Time
}

func NewJWTManager(secret, algorithm string) (*JWTManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is empty")
	}

	var method jwt.SigningMethod
	switch algorithm {
	case "", "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported jwt algorithm %q", algorithm)
	}

	return &JWTManager{secret: []byte(secret), method: method, now: time.Now}, nil
}

func (m *JWTManager) Issue(userID uuid.UUID) (string, error) {
	now := m.now()
	claims := Claims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	return jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
}

// Parse verifies the token and returns the embedded user id. Every failure is
// reported as unauthenticated.
func (m *JWTManager) Parse(tokenString string) (uuid.UUID, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims,
		func(t *jwt.Token) (any, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return uuid.Nil, domain.Unauthenticated("invalid or expired token")
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, domain.Unauthenticated("invalid token subject")
	}
	return id, nil
}
