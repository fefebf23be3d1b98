package validate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"canteen_manager/constants"
	"canteen_manager/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// describe turns validator output into "field: rule" pairs for the client.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return constants.INVALID_INPUT
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Namespace(), rule))
	}
	return constants.INVALID_INPUT + " " + strings.Join(parts, ", ")
}

// bind parses the JSON body into input and runs its struct tags.
func bind(c *fiber.Ctx, input interface{}) error {
	if err := c.BodyParser(input); err != nil {
		return utils.NewError(utils.ValidationError, constants.INVALID_INPUT, err)
	}
	if err := validate.Struct(input); err != nil {
		return utils.NewError(utils.ValidationError, describe(err), err)
	}
	return nil
}

func GetById(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		valueKey, err := strconv.ParseUint(c.Params(key), 10, 64)
		if err != nil || valueKey == 0 {
			return utils.HandleError(c, utils.NewError(utils.ValidationError, constants.INVALID_INPUT,
				fmt.Errorf("param %s=%q", key, c.Params(key))))
		}

		c.Locals("inputId", uint(valueKey))
		return c.Next()
	}
}
