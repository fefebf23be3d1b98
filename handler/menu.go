package handler

import (
	"errors"

	"canteen_manager/cache"
	"canteen_manager/constants"
	"canteen_manager/database"
	"canteen_manager/logger"
	"canteen_manager/model"
	"canteen_manager/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

// GetMenu lists the catalog by name, optionally for one category slug.
func GetMenu(c *fiber.Ctx) error {
	category := slug.Make(c.Query("category"))
	key := cache.MenuKey(category)

	var views []model.MenuItemView
	if cache.Get(c.Context(), key, &views) {
		return utils.SuccessResponse(c, fiber.StatusOK, views)
	}

	query := database.DB.Model(&model.MenuItem{})
	if category != "" {
		query = query.Where("category_slug = ?", category)
	}
	var items []model.MenuItem
	if err := query.Order("name ASC").Order("id ASC").Find(&items).Error; err != nil {
		return utils.HandleError(c, err)
	}

	views = make([]model.MenuItemView, 0, len(items))
	for _, item := range items {
		views = append(views, model.NewMenuItemView(item))
	}
	cache.Set(c.Context(), key, views, cache.MenuTTL)
	return utils.SuccessResponse(c, fiber.StatusOK, views)
}

func CreateMenuItem(c *fiber.Ctx) error {
	input := c.Locals("input").(model.CreateMenuItemInput)

	item := model.MenuItem{
		Category: constants.DEFAULT_CATEGORY,
		Stock:    constants.DEFAULT_STOCK,
		PrepTime: constants.DEFAULT_PREP_MINUTES,
	}
	if err := copier.CopyWithOption(&item, &input, copier.Option{IgnoreEmpty: true}); err != nil {
		return utils.HandleError(c, err)
	}
	if input.Stock != nil {
		item.Stock = *input.Stock
	}
	if input.PrepTime != nil {
		item.PrepTime = *input.PrepTime
	}
	item.Price = input.Price.Round(2)
	item.CategorySlug = slug.Make(item.Category)

	if err := database.DB.Create(&item).Error; err != nil {
		return utils.HandleError(c, err)
	}
	cache.InvalidateMenu(c.Context())

	logger.WithRequest(c).WithField("menu_item_id", item.ID).Info("menu item added")
	return utils.SuccessResponse(c, fiber.StatusCreated, model.NewMenuItemView(item))
}

func findMenuItem(id uint) (model.MenuItem, error) {
	var item model.MenuItem
	if err := database.DB.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return item, utils.NewError(utils.NotFound, constants.MENU_ITEM_NOT_FOUND, err)
		}
		return item, err
	}
	return item, nil
}

func UpdateStock(c *fiber.Ctx) error {
	id := c.Locals("inputId").(uint)
	input := c.Locals("input").(model.UpdateStockInput)

	item, err := findMenuItem(id)
	if err != nil {
		return utils.HandleError(c, err)
	}
	if err := database.DB.Model(&item).Update("stock", *input.Stock).Error; err != nil {
		return utils.HandleError(c, err)
	}
	item.Stock = *input.Stock
	cache.InvalidateMenu(c.Context())

	return utils.SuccessResponse(c, fiber.StatusOK, model.NewMenuItemView(item))
}

// DeleteMenuItem removes an item from the catalog. Orders keep their snapshot.
func DeleteMenuItem(c *fiber.Ctx) error {
	id := c.Locals("inputId").(uint)

	res := database.DB.Delete(&model.MenuItem{}, id)
	if res.Error != nil {
		return utils.HandleError(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return utils.HandleError(c, utils.NewError(utils.NotFound, constants.MENU_ITEM_NOT_FOUND, nil))
	}
	cache.InvalidateMenu(c.Context())

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"id": id})
}
