package handler

import (
	"errors"

	"canteen_manager/config"
	"canteen_manager/constants"
	"canteen_manager/database"
	"canteen_manager/helper"
	"canteen_manager/logger"
	"canteen_manager/middleware"
	"canteen_manager/model"
	"canteen_manager/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

func Register(c *fiber.Ctx) error {
	input := c.Locals("input").(model.RegisterInput)

	var user model.User
	if err := copier.Copy(&user, &input); err != nil {
		return utils.HandleError(c, err)
	}
	if user.Name == "" {
		user.Name = "Student"
	}
	hash, err := helper.HashPassword(input.Password)
	if err != nil {
		return utils.HandleError(c, err)
	}
	user.Password = hash

	if err := database.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.HandleError(c, utils.NewError(utils.Conflict, constants.EMAIL_ALREADY_EXISTS, err))
		}
		return utils.HandleError(c, err)
	}

	logger.WithRequest(c).WithField("user_id", user.ID).Info("account created")
	return utils.SuccessResponse(c, fiber.StatusCreated, user)
}

func Login(c *fiber.Ctx) error {
	input := c.Locals("input").(model.LoginInput)
	cfg := config.Get()

	var user model.User
	if err := database.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.HandleError(c, utils.NewError(utils.ValidationError, constants.INVALID_CREDENTIALS, nil))
		}
		return utils.HandleError(c, err)
	}
	if !helper.CheckPasswordHash(input.Password, user.Password) {
		return utils.HandleError(c, utils.NewError(utils.ValidationError, constants.INVALID_CREDENTIALS, nil))
	}

	token, err := helper.GenerateAccessToken([]byte(cfg.JwtSecret), model.TokenClaim{
		UserId: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   constants.ROLE_STUDENT,
	}, cfg.CustomerTokenTTL)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, model.TokenData{
		Token: token,
		Name:  user.Name,
		Role:  constants.ROLE_STUDENT,
	})
}

func OwnerLogin(c *fiber.Ctx) error {
	input := c.Locals("input").(model.OwnerLoginInput)
	cfg := config.Get()

	var owner model.Owner
	if err := database.DB.First(&owner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.HandleError(c, utils.NewError(utils.Unauthorized, constants.INVALID_MASTER_KEY, err))
		}
		return utils.HandleError(c, err)
	}
	if !helper.CheckPasswordHash(input.MasterKey, owner.MasterKey) {
		logger.WithRequest(c).WithField("ip", c.IP()).Warn("rejected master key")
		return utils.HandleError(c, utils.NewError(utils.Unauthorized, constants.INVALID_MASTER_KEY, nil))
	}

	token, err := helper.GenerateAccessToken([]byte(cfg.JwtSecret), model.TokenClaim{
		Name: "Admin",
		Role: constants.ROLE_ADMIN,
	}, cfg.AdminTokenTTL)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, model.TokenData{
		Token: token,
		Name:  "Admin",
		Role:  constants.ROLE_ADMIN,
	})
}

func Me(c *fiber.Ctx) error {
	claim, _ := middleware.Claim(c)
	return utils.SuccessResponse(c, fiber.StatusOK, claim)
}
