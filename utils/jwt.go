package utils

import (
	"errors"
	"time"

	"wuauser/models"

	"github.com/golang-jwt/jwt"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNoSecret     = errors.New("signing secret is not configured")
)

// GenerateToken signs an HS256 token shaped like the auth provider's: sub is the
// user ID and user_metadata.role the caller's role.
func GenerateToken(secret []byte, actor models.Actor, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":           actor.ID,
		"user_metadata": map[string]interface{}{"role": string(actor.Role)},
		"iat":           time.Now().Unix(),
		"exp":           time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken parses and validates a token string and returns the token if valid.
// An empty secret never validates: HMAC with an empty key would accept tokens anyone can mint.
func ValidateToken(secret []byte, tokenString string) (*jwt.Token, error) {
	if len(secret) == 0 {
		return nil, ErrNoSecret
	}
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
}

// ActorFromToken validates the token and extracts the caller. Only owner and vet
// roles are accepted; the system role is never granted to a bearer token.
func ActorFromToken(secret []byte, tokenString string) (models.Actor, error) {
	token, err := ValidateToken(secret, tokenString)
	if err != nil {
		return models.Actor{}, errors.Join(ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.Actor{}, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return models.Actor{}, errors.New("token does not contain a valid 'sub' claim")
	}
	meta, _ := claims["user_metadata"].(map[string]interface{})
	role, _ := meta["role"].(string)
	switch models.Role(role) {
	case models.RoleOwner, models.RoleVet:
	default:
		return models.Actor{}, errors.New("token does not carry an owner or vet role")
	}
	return models.Actor{ID: sub, Role: models.Role(role)}, nil
}
