package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/inforia/backend/internal/config"
	"github.com/inforia/backend/internal/dto"
)

// AdminRequired guards operational endpoints (quota sweep) with a shared token.
func AdminRequired(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get("X-Admin-Token")
		if cfg.AdminToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(cfg.AdminToken)) != 1 {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: "Admin access required",
			})
		}
		return c.Next()
	}
}
