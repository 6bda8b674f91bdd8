package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// TokenValidator checks HS256 bearer tokens and extracts the subject.
type TokenValidator struct {
	secret []byte
}

func NewTokenValidator(secret string) *TokenValidator {
	return &TokenValidator{secret: []byte(secret)}
}

// Validate returns the user id carried by the token.
func (v *TokenValidator) Validate(tokenStr string) (string, error) {
	tok, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", err
	}
	if claims, ok := tok.Claims.(jwt.MapClaims); ok && tok.Valid {
		if sub, ok := claims["sub"].(string); ok && sub != "" {
			return sub, nil
		}
		if userID, ok := claims["user_id"].(string); ok && userID != "" {
			return userID, nil
		}
	}
	return "", errors.New("invalid token")
}

// AuthRequired guards API routes; the authenticated user id lands in
// c.Locals("user_id").
func AuthRequired(v *TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		hdr := c.Get("Authorization")
		const pref = "Bearer "
		if !strings.HasPrefix(hdr, pref) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing auth"})
		}
		uid, err := v.Validate(hdr[len(pref):])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		c.Locals("user_id", uid)
		return c.Next()
	}
}
