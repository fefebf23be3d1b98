package middleware

import (
	"strings"
	"time"

	"canteen_manager/constants"
	"canteen_manager/helper"
	"canteen_manager/logger"
	"canteen_manager/model"
	"canteen_manager/utils"

	"github.com/gofiber/fiber/v2"
)

// Protected verifies the bearer credential and stores its claims in
// Locals("user").
func Protected(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := ""
		auth := c.Get(fiber.HeaderAuthorization)
		if strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		}
		if token == "" {
			return utils.HandleError(c, utils.NewError(utils.Unauthorized, constants.MISSING_TOKEN, nil))
		}

		claim, err := helper.ParseToken(secret, token)
		if err != nil {
			return utils.HandleError(c, utils.NewError(utils.Unauthorized, constants.INVALID_TOKEN, err))
		}

		c.Locals("user", claim)
		return c.Next()
	}
}

// AdminOnly must run after Protected.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claim, ok := Claim(c)
		if !ok {
			return utils.HandleError(c, utils.NewError(utils.Unauthorized, constants.MISSING_TOKEN, nil))
		}
		if !claim.IsAdmin() {
			return utils.HandleError(c, utils.NewError(utils.Forbidden, constants.NOT_ADMIN, nil))
		}
		return c.Next()
	}
}

// StudentOnly keeps the shared admin principal out of customer-scoped routes.
func StudentOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claim, ok := Claim(c)
		if !ok {
			return utils.HandleError(c, utils.NewError(utils.Unauthorized, constants.MISSING_TOKEN, nil))
		}
		if claim.Role != constants.ROLE_STUDENT {
			return utils.HandleError(c, utils.NewError(utils.Forbidden, constants.INVALID_TOKEN, nil))
		}
		return c.Next()
	}
}

func Claim(c *fiber.Ctx) (model.TokenClaim, bool) {
	claim, ok := c.Locals("user").(model.TokenClaim)
	return claim, ok
}

// RequestLogger writes one line per request.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}
		entry := logger.WithRequest(c).WithFields(map[string]interface{}{
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"ip":         c.IP(),
		})
		switch {
		case status >= fiber.StatusInternalServerError:
			entry.Error("request")
		case status >= fiber.StatusBadRequest:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
		return err
	}
}
