package serverutils

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"safebites-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestIssueAndParseToken(t *testing.T) {
	userID := uuid.New()
	token, expiresAt, err := IssueToken(testSecret, userID)
	require.NoError(t, err)
	assert.False(t, expiresAt.IsZero())

	parsed, err := ParseToken(testSecret, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)

	_, err = ParseToken("other-secret", "Bearer "+token)
	assert.Error(t, err)

	_, err = ParseToken(testSecret, userID.String())
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestJwtMiddleware(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/me", JwtMiddleware(testSecret), func(c *fiber.Ctx) error {
		id, ok := CurrentUserID(c)
		if !ok {
			return apperror.Auth("no user")
		}
		return c.SendString(id.String())
	})

	userID := uuid.New()
	token, _, err := IssueToken(testSecret, userID)
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, userID.String(), string(body))
	})

	t.Run("raw user id is rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "Bearer "+userID.String())
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode)
	})

	t.Run("missing header", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode)
	})
}

func TestOptionalJwtMiddleware_AllowsAnonymous(t *testing.T) {
	app := fiber.New()
	app.Get("/search", OptionalJwtMiddleware(testSecret), func(c *fiber.Ctx) error {
		_, ok := CurrentUserID(c)
		return c.JSON(fiber.Map{"authenticated": ok})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/search", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body["authenticated"])
}

func TestErrorHandler_MapsAppErrors(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/conflict", func(c *fiber.Ctx) error { return apperror.Conflict("username already exists") })
	app.Get("/missing", func(c *fiber.Ctx) error { return apperror.NotFound("dish not found") })

	resp, err := app.Test(httptest.NewRequest("GET", "/conflict", nil))
	require.NoError(t, err)
	assert.Equal(t, 409, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "username already exists", body["message"])

	resp, err = app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestValidateRequest(t *testing.T) {
	type req struct {
		Query string  `validate:"required"`
		Price float64 `validate:"gte=0"`
	}

	assert.NoError(t, ValidateRequest(&req{Query: "pizza", Price: 1}))

	err := ValidateRequest(&req{Price: -1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query is required")
	assert.Contains(t, err.Error(), "price must be greater than or equal to 0")
}
