package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthClaims are carried by operator tokens on the governing-site API.
type AuthClaims struct {
	Operator string `json:"operator"`
	jwt.RegisteredClaims
}

const defaultIssuer = "oneupdate"

// GenToken signs an HS256 operator token valid for expire.
func GenToken(operator, issuer string, secretKey []byte, expire time.Duration) (string, *AuthClaims, error) {
	if len(secretKey) == 0 {
		return "", nil, errors.New("jwt secret key is empty")
	}
	if issuer == "" {
		issuer = defaultIssuer
	}
	now := time.Now()
	claims := &AuthClaims{
		Operator: operator,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   operator,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expire)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secretKey)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, claims, nil
}

// ParseToken verifies aToken and returns its claims. An expired token yields
// jwt.ErrTokenExpired unwrapped so callers can branch on it.
func ParseToken(aToken, secretKey string) (*AuthClaims, error) {
	claims := new(AuthClaims)
	token, err := jwt.ParseWithClaims(aToken, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, jwt.ErrTokenExpired
		}
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
