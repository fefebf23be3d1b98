package handler

import (
	"fmt"

	"canteen_manager/cache"
	"canteen_manager/constants"
	"canteen_manager/database"
	"canteen_manager/eta"
	"canteen_manager/helper"
	"canteen_manager/logger"
	"canteen_manager/metrics"
	"canteen_manager/middleware"
	"canteen_manager/model"
	"canteen_manager/utils"

	"github.com/gofiber/fiber/v2"
)

func annotated(orders []model.Order) ([]model.OrderView, error) {
	queue, err := helper.KitchenQueue(database.DB)
	if err != nil {
		return nil, err
	}
	return eta.Annotate(orders, queue, Now()), nil
}

// GetMyOrders lists the caller's orders newest first, each with a fresh ETA.
func GetMyOrders(c *fiber.Ctx) error {
	claim, _ := middleware.Claim(c)

	orders, err := helper.ListOrders(database.DB, &claim.UserId, "")
	if err != nil {
		return utils.HandleError(c, err)
	}
	views, err := annotated(orders)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, views)
}

func GetOrderReceipt(c *fiber.Ctx) error {
	claim, _ := middleware.Claim(c)
	id := c.Locals("inputId").(uint)

	order, err := helper.FindOrder(database.DB, id)
	if err != nil {
		return utils.HandleError(c, err)
	}
	if order.UserId != claim.UserId && !claim.IsAdmin() {
		// do not reveal that the order exists
		return utils.HandleError(c, utils.NewError(utils.NotFound, constants.ORDER_NOT_FOUND, nil))
	}

	qr, err := utils.QRCodeDataURI(fmt.Sprintf("TOKEN-%d", order.TokenNumber), 256)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, model.OrderReceipt{Order: order, QRCode: qr})
}

// GetAdminOrders is the kitchen console feed.
func GetAdminOrders(c *fiber.Ctx) error {
	status, _ := c.Locals("statusFilter").(string)

	orders, err := helper.ListOrders(database.DB, nil, status)
	if err != nil {
		return utils.HandleError(c, err)
	}
	views, err := annotated(orders)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, views)
}

func UpdateOrderStatus(c *fiber.Ctx) error {
	id := c.Locals("inputId").(uint)
	input := c.Locals("input").(model.UpdateOrderStatusInput)

	order, err := helper.SetStatus(database.DB, id, input.Status, Now())
	if err != nil {
		return utils.HandleError(c, err)
	}

	metrics.StatusTransitions.WithLabelValues(order.Status).Inc()
	cache.Del(c.Context(), cache.NowServingKey(Now().In(location())))
	logger.WithRequest(c).WithFields(map[string]interface{}{
		"order_id": order.ID,
		"token":    order.TokenNumber,
		"status":   order.Status,
	}).Info("order status updated")

	return utils.SuccessResponse(c, fiber.StatusOK, order)
}

// NowServing is public: the highest token ready for pickup today.
func NowServing(c *fiber.Ctx) error {
	now := Now()
	key := cache.NowServingKey(now.In(location()))

	var cached model.NowServing
	if cache.Get(c.Context(), key, &cached) {
		return utils.SuccessResponse(c, fiber.StatusOK, cached)
	}

	value, err := helper.NowServing(database.DB, now, location())
	if err != nil {
		return utils.HandleError(c, err)
	}
	out := model.NowServing{NowServing: value}
	cache.Set(c.Context(), key, out, cache.NowServingTTL)
	return utils.SuccessResponse(c, fiber.StatusOK, out)
}
