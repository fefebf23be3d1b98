package validate

import (
	"strings"

	"canteen_manager/constants"
	"canteen_manager/model"
	"canteen_manager/utils"

	"github.com/gofiber/fiber/v2"
)

func Register() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.RegisterInput
		if err := bind(c, &input); err != nil {
			return utils.HandleError(c, err)
		}
		input.Email = strings.ToLower(strings.TrimSpace(input.Email))
		input.Name = strings.TrimSpace(input.Name)

		c.Locals("input", input)
		return c.Next()
	}
}

func Login() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.LoginInput
		if err := c.BodyParser(&input); err != nil {
			return utils.HandleError(c, utils.NewError(utils.ValidationError, constants.MISSING_LOGIN_INPUT, err))
		}
		input.Email = strings.ToLower(strings.TrimSpace(input.Email))
		if input.Email == "" || input.Password == "" {
			return utils.HandleError(c, utils.NewError(utils.ValidationError, constants.MISSING_LOGIN_INPUT, nil))
		}
		if err := validate.Struct(&input); err != nil {
			return utils.HandleError(c, utils.NewError(utils.ValidationError, constants.INVALID_CREDENTIALS, err))
		}

		c.Locals("input", input)
		return c.Next()
	}
}

func OwnerLogin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.OwnerLoginInput
		if err := bind(c, &input); err != nil {
			return utils.HandleError(c, utils.NewError(utils.Unauthorized, constants.INVALID_MASTER_KEY, err))
		}

		c.Locals("input", input)
		return c.Next()
	}
}
