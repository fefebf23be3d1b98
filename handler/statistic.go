package handler

import (
	"time"

	"canteen_manager/config"
	"canteen_manager/database"
	"canteen_manager/helper"
	"canteen_manager/utils"

	"github.com/gofiber/fiber/v2"
)

func location() *time.Location {
	return config.Get().Location()
}

// GetRevenue summarises today's takings against yesterday's.
func GetRevenue(c *fiber.Ctx) error {
	summary, err := helper.RevenueSummary(database.DB, Now(), location())
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, summary)
}

func Health(c *fiber.Ctx) error {
	sqlDB, err := database.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Context())
	}
	if err != nil {
		return utils.HandleError(c, utils.NewError(utils.InternalError, "database unavailable", err))
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"database": "ok"})
}
