package principal

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runWithLocals(t *testing.T, value interface{}) (uuid.UUID, error) {
	t.Helper()
	app := fiber.New()

	var gotID uuid.UUID
	var gotErr error
	app.Get("/", func(c *fiber.Ctx) error {
		if value != nil {
			c.Locals("user", value)
		}
		gotID, gotErr = UserID(c)
		return nil
	})

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	return gotID, gotErr
}

func TestUserIDFromClaims(t *testing.T) {
	want := uuid.New()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": want.String()})

	got, err := runWithLocals(t, token)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestUserIDMissingToken(t *testing.T) {
	_, err := runWithLocals(t, nil)
	assert.Error(t, err)
}

func TestUserIDMissingSubClaim(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": "a@b.c"})
	_, err := runWithLocals(t, token)
	assert.Error(t, err)
}

func TestUserIDInvalidUUID(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "not-a-uuid"})
	_, err := runWithLocals(t, token)
	assert.Error(t, err)
}
