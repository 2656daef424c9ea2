package jwtPkg

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ankitcoder135/AI-Voice-Agent/internal/entity"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	t.Setenv(AccessTokenSecret, "test-secret")

	token, exp, err := Sign(map[string]interface{}{"id": "user-1", "email": "a@b.c"}, time.Hour)
	require.NoError(t, err)
	assert.Greater(t, exp, time.Now().Unix())

	parsed, err := VerifyToken(token, AccessTokenSecret)
	require.NoError(t, err)

	user, err := UserFromClaims(parsed)
	require.NoError(t, err)
	assert.Equal(t, entity.UserLoginData{ID: "user-1", Email: "a@b.c"}, user)

	t.Setenv(AccessTokenSecret, "other-secret")
	_, err = VerifyToken(token, AccessTokenSecret)
	assert.Error(t, err)
}

func TestExtractToken(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		token, err := ExtractToken(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).SendString(err.Error())
		}
		return c.SendString(token)
	})

	tests := []struct {
		name   string
		target string
		header string
		status int
		body   string
	}{
		{"bearer header", "/", "Bearer abc", fiber.StatusOK, "abc"},
		{"query fallback", "/?access_token=xyz", "", fiber.StatusOK, "xyz"},
		{"missing", "/", "", fiber.StatusUnauthorized, "empty Authorization header"},
		{"malformed", "/", "Token abc", fiber.StatusUnauthorized, "invalid Authorization format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			buf := make([]byte, 64)
			n, _ := resp.Body.Read(buf)
			assert.Equal(t, tt.body, string(buf[:n]))
		})
	}
}
