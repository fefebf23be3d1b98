package validate

import (
	"strings"

	"canteen_manager/constants"
	"canteen_manager/model"
	"canteen_manager/utils"

	"github.com/gofiber/fiber/v2"
)

func CreatePayment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.CreatePaymentInput
		if err := c.BodyParser(&input); err != nil {
			return utils.HandleError(c, utils.NewError(utils.ValidationError, constants.INVALID_INPUT, err))
		}
		if len(input.Items) == 0 {
			return utils.HandleError(c, utils.NewError(utils.ValidationError, constants.CART_EMPTY, nil))
		}
		if err := validate.Struct(&input); err != nil {
			return utils.HandleError(c, utils.NewError(utils.ValidationError, describe(err), err))
		}

		c.Locals("input", input)
		return c.Next()
	}
}

func VerifyPayment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.VerifyPaymentInput
		if err := bind(c, &input); err != nil {
			return utils.HandleError(c, err)
		}
		input.OrderId = strings.TrimSpace(input.OrderId)
		input.PickupTime = strings.TrimSpace(input.PickupTime)
		if strings.EqualFold(input.PickupTime, constants.PICKUP_ASAP) {
			input.PickupTime = constants.PICKUP_ASAP
		}
		if input.PickupTime != "" && input.PickupTime != constants.PICKUP_ASAP && !utils.IsValidPickupTime(input.PickupTime) {
			return utils.HandleError(c, utils.NewError(utils.ValidationError, constants.INVALID_PICKUP_TIME, nil))
		}

		c.Locals("input", input)
		return c.Next()
	}
}
