package handler

import (
	"errors"

	"canteen_manager/cache"
	"canteen_manager/config"
	"canteen_manager/constants"
	"canteen_manager/database"
	"canteen_manager/logger"
	"canteen_manager/metrics"
	"canteen_manager/middleware"
	"canteen_manager/model"
	"canteen_manager/payment"
	"canteen_manager/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func checkoutFailed(c *fiber.Ctx, stage string, err error) error {
	metrics.CheckoutFailures.WithLabelValues(stage, string(utils.KindOf(err))).Inc()
	return utils.HandleError(c, err)
}

// CreatePaymentOrder prices the cart and opens a gateway checkout session.
func CreatePaymentOrder(c *fiber.Ctx) error {
	input := c.Locals("input").(model.CreatePaymentInput)
	claim, _ := middleware.Claim(c)

	ctx, cancel := config.WithGatewayTimeout(c.Context())
	defer cancel()

	out, err := checkout().CreatePaymentIntent(ctx, claim, input.Items)
	if err != nil {
		return checkoutFailed(c, "intent", err)
	}

	logger.WithRequest(c).WithField("payment_ref", out.OrderId).WithField("amount", out.Amount.String()).
		Info("payment order created")
	return utils.SuccessResponse(c, fiber.StatusOK, out)
}

// VerifyPayment records the order once the gateway confirms it was paid.
func VerifyPayment(c *fiber.Ctx) error {
	input := c.Locals("input").(model.VerifyPaymentInput)
	claim, _ := middleware.Claim(c)

	ctx, cancel := config.WithGatewayTimeout(c.Context())
	defer cancel()

	order, created, err := checkout().ConfirmAndRecordOrder(ctx, claim, input)
	if err != nil {
		return checkoutFailed(c, "verify", err)
	}

	if !created {
		return utils.SuccessResponse(c, fiber.StatusOK, order)
	}

	metrics.OrdersConfirmed.Inc()
	cache.InvalidateMenu(c.Context())
	logger.WithRequest(c).WithFields(map[string]interface{}{
		"order_id":    order.ID,
		"token":       order.TokenNumber,
		"payment_ref": order.PaymentRef,
	}).Info("order stored")

	utils.SendOrderReceiptEmail(order.UserEmail, receiptData(order))
	return utils.SuccessResponse(c, fiber.StatusCreated, order)
}

// SettleFakePayment stands in for the hosted payment page when the server runs
// on the in-memory gateway. Only the caller's own intents can be settled.
func SettleFakePayment(c *fiber.Ctx) error {
	fake, ok := PaymentGateway.(*payment.Fake)
	if !ok {
		return utils.HandleError(c, utils.NewError(utils.NotFound, constants.PAYMENT_NOT_FOUND, nil))
	}
	claim, _ := middleware.Claim(c)
	reference := c.Params("orderId")

	var intent model.PaymentIntent
	err := database.DB.Where("reference = ? AND user_id = ?", reference, claim.UserId).First(&intent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.HandleError(c, utils.NewError(utils.NotFound, constants.PAYMENT_NOT_FOUND, err))
		}
		return utils.HandleError(c, err)
	}

	fake.MarkPaid(reference)
	logger.WithRequest(c).WithField("payment_ref", reference).Warn("simulated payment settled")
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"orderId": reference, "status": payment.StatusPaid})
}

func receiptData(order model.Order) utils.OrderReceiptData {
	lines := make([]utils.ReceiptLine, 0, len(order.Items))
	for _, l := range order.Items {
		lines = append(lines, utils.ReceiptLine{Name: l.Name, Quantity: l.Quantity, Price: l.Price.StringFixed(2)})
	}
	return utils.OrderReceiptData{
		TokenNumber: order.TokenNumber,
		UserName:    order.UserName,
		Items:       lines,
		TotalAmount: order.TotalAmount.StringFixed(2),
		PickupTime:  order.PickupTime,
		PaymentRef:  order.PaymentRef,
		CreatedAt:   order.CreatedAt.In(config.Get().Location()).Format("02 Jan 2006 15:04"),
	}
}
