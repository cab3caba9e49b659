// FILE: internal/pkg/serverutils/jwt_middleware.go
package serverutils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	LocalUserID = "user_id"
	tokenTTL    = 24 * time.Hour
)

var ErrMissingToken = errors.New("missing token")

// IssueToken signs an HS256 token carrying the user id and a 24h expiry.
func IssueToken(secret string, userID uuid.UUID) (string, time.Time, error) {
	expiresAt := time.Now().Add(tokenTTL)
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     expiresAt.Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseToken validates the bearer header and returns the user id claim.
func ParseToken(secret, authHeader string) (uuid.UUID, error) {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return uuid.Nil, ErrMissingToken
	}
	tokenStr := strings.TrimSpace(authHeader[7:])

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("invalid claims")
	}

	raw, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New("invalid user id claim")
	}
	return userID, nil
}

// JwtMiddleware rejects the request unless a valid bearer token is present.
func JwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		userID, err := ParseToken(secret, ctx.Get("Authorization"))
		if errors.Is(err, ErrMissingToken) {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
		}
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
		}

		ctx.Locals(LocalUserID, userID)
		return ctx.Next()
	}
}

// OptionalJwtMiddleware sets the user id when a valid token is sent and lets anonymous requests through.
func OptionalJwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if userID, err := ParseToken(secret, ctx.Get("Authorization")); err == nil {
			ctx.Locals(LocalUserID, userID)
		}
		return ctx.Next()
	}
}

// CurrentUserID reads the id placed by one of the middlewares.
func CurrentUserID(ctx *fiber.Ctx) (uuid.UUID, bool) {
	userID, ok := ctx.Locals(LocalUserID).(uuid.UUID)
	return userID, ok && userID != uuid.Nil
}
