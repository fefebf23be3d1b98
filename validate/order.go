package validate

import (
	"canteen_manager/constants"
	"canteen_manager/model"
	"canteen_manager/utils"

	"github.com/gofiber/fiber/v2"
)

func UpdateOrderStatus(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.UpdateOrderStatusInput
		if err := bind(c, &input); err != nil {
			return utils.HandleError(c, err)
		}
		if !utils.IsValidValueOfConstant(input.Status, constants.ORDER_STATUSES) {
			return utils.HandleError(c, utils.NewError(utils.ValidationError, constants.INVALID_ORDER_STATUS, nil))
		}

		c.Locals("input", input)
		return GetById(key)(c)
	}
}

// OrderStatusFilter checks the optional ?status= query.
func OrderStatusFilter() fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := c.Query("status")
		if status != "" && !utils.IsValidValueOfConstant(status, constants.ORDER_STATUSES) {
			return utils.HandleError(c, utils.NewError(utils.ValidationError, constants.INVALID_ORDER_STATUS, nil))
		}
		c.Locals("statusFilter", status)
		return c.Next()
	}
}
