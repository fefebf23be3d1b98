package validate

import (
	"errors"
	"strings"

	"canteen_manager/constants"
	"canteen_manager/model"
	"canteen_manager/utils"

	"github.com/gofiber/fiber/v2"
)

func CreateMenuItem() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.CreateMenuItemInput
		if err := bind(c, &input); err != nil {
			return utils.HandleError(c, err)
		}
		input.Name = strings.TrimSpace(input.Name)
		input.Category = strings.TrimSpace(input.Category)
		if input.Name == "" {
			return utils.HandleError(c, utils.NewError(utils.ValidationError, constants.INVALID_INPUT+" name: required", nil))
		}
		if !input.Price.IsPositive() {
			return utils.HandleError(c, utils.NewError(utils.ValidationError, constants.INVALID_INPUT+" price: gt=0",
				errors.New("price must be positive")))
		}
		if input.Price.Exponent() < -2 {
			return utils.HandleError(c, utils.NewError(utils.ValidationError, constants.INVALID_INPUT+" price: max 2 decimals", nil))
		}

		c.Locals("input", input)
		return c.Next()
	}
}

func UpdateStock(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.UpdateStockInput
		if err := bind(c, &input); err != nil {
			return utils.HandleError(c, err)
		}

		c.Locals("input", input)
		return GetById(key)(c)
	}
}
