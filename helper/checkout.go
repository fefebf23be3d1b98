package helper

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"canteen_manager/constants"
	"canteen_manager/logger"
	"canteen_manager/model"
	"canteen_manager/payment"
	"canteen_manager/utils"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

var errAlreadyRecorded = errors.New("order already recorded for payment reference")

// Checkout opens gateway orders for priced carts and records paid ones.
type Checkout struct {
	DB            *gorm.DB
	Gateway       payment.Gateway
	ReturnURL     string
	CustomerPhone string
	Now           func() time.Time
}

func (co *Checkout) now() time.Time {
	if co.Now != nil {
		return co.Now()
	}
	return time.Now()
}

// quantities folds repeated lines for the same item together. ids come back
// in ascending order.
func quantities(items []model.CartItem) (map[uint]int, []uint) {
	qty := map[uint]int{}
	var ids []uint
	for _, it := range items {
		if _, seen := qty[it.MenuItemId]; !seen {
			ids = append(ids, it.MenuItemId)
		}
		qty[it.MenuItemId] += it.Quantity
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return qty, ids
}

// lockOrder returns lines sorted by menu item id. Stock rows are always
// decremented in this order so two confirmations never wait on each other.
func lockOrder(lines model.OrderLines) model.OrderLines {
	out := make(model.OrderLines, len(lines))
	copy(out, lines)
	sort.SliceStable(out, func(i, j int) bool { return out[i].MenuItemId < out[j].MenuItemId })
	return out
}

// PriceCart freezes the cart against the current catalog. Client prices are
// ignored.
func PriceCart(db *gorm.DB, items []model.CartItem) (model.OrderLines, error) {
	if len(items) == 0 {
		return nil, utils.NewError(utils.ValidationError, constants.CART_EMPTY, nil)
	}
	qty, ids := quantities(items)

	var menu []model.MenuItem
	if err := db.Where("id IN ?", ids).Find(&menu).Error; err != nil {
		return nil, err
	}
	byId := make(map[uint]model.MenuItem, len(menu))
	for _, m := range menu {
		byId[m.ID] = m
	}

	lines := make(model.OrderLines, 0, len(ids))
	for _, id := range ids {
		item, ok := byId[id]
		if !ok {
			return nil, utils.NewError(utils.ValidationError, constants.MENU_ITEM_NOT_FOUND, fmt.Errorf("menu item %d", id))
		}
		if item.Stock < qty[id] {
			return nil, utils.NewError(utils.Conflict, constants.OUT_OF_STOCK,
				fmt.Errorf("menu item %d: stock %d < %d", id, item.Stock, qty[id]))
		}

		var line model.OrderLine
		if err := copier.Copy(&line, &item); err != nil {
			return nil, err
		}
		line.MenuItemId = item.ID
		line.Quantity = qty[id]
		lines = append(lines, line)
	}
	return lines, nil
}

func NewPaymentReference(now time.Time) string {
	return fmt.Sprintf("ORDER_%d_%s", now.UnixMilli(), uuid.NewString()[:8])
}

// CreatePaymentIntent prices the cart, opens a gateway order for the total and
// stores the frozen lines against the new reference. Nothing is written when
// the gateway refuses.
func (co *Checkout) CreatePaymentIntent(ctx context.Context, claim model.TokenClaim, items []model.CartItem) (model.CreatePaymentOutput, error) {
	lines, err := PriceCart(co.DB, items)
	if err != nil {
		return model.CreatePaymentOutput{}, err
	}
	amount := lines.Total()
	reference := NewPaymentReference(co.now())

	created, err := co.Gateway.CreateOrder(ctx, payment.CreateOrderRequest{
		OrderId: reference,
		Amount:  amount,
		Customer: payment.Customer{
			Id:    fmt.Sprintf("user_%d", claim.UserId),
			Email: claim.Email,
			Name:  claim.Name,
			Phone: co.CustomerPhone,
		},
		ReturnURL: co.ReturnURL,
	})
	if err != nil {
		return model.CreatePaymentOutput{}, utils.NewError(utils.UpstreamGatewayError, constants.PAYMENT_GATEWAY_ERROR, err)
	}

	intent := model.PaymentIntent{
		Reference:     reference,
		UserId:        claim.UserId,
		Amount:        amount,
		Items:         lines,
		PrepTimeTotal: lines.MaxPrepTime(),
		SessionId:     created.PaymentSessionId,
		Status:        constants.INTENT_PENDING,
	}
	if err := co.DB.Create(&intent).Error; err != nil {
		logger.WithModule("checkout").WithError(err).WithField("payment_ref", reference).
			Error("gateway order opened but intent not stored")
		return model.CreatePaymentOutput{}, err
	}

	return model.CreatePaymentOutput{
		PaymentSessionId: created.PaymentSessionId,
		OrderId:          reference,
		Amount:           amount,
		Environment:      co.Gateway.Environment(),
	}, nil
}

func sameCart(lines model.OrderLines, items []model.CartItem) bool {
	want := map[uint]int{}
	for _, l := range lines {
		want[l.MenuItemId] += l.Quantity
	}
	got, ids := quantities(items)
	if len(got) != len(want) {
		return false
	}
	for _, id := range ids {
		if want[id] != got[id] {
			return false
		}
	}
	return true
}

func findOrderByReference(db *gorm.DB, reference string) (*model.Order, error) {
	var order model.Order
	if err := db.Where("payment_ref = ?", reference).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func ownedOrder(order *model.Order, claim model.TokenClaim) (model.Order, error) {
	if order.UserId != claim.UserId {
		return model.Order{}, utils.NewError(utils.Forbidden, constants.ORDER_BELONGS_TO_ANOTHER, nil)
	}
	return *order, nil
}

// ConfirmAndRecordOrder asks the gateway whether reference was paid and, if
// so, records exactly one order for it. The bool reports whether this call
// created the order; a repeated confirmation returns the existing one.
func (co *Checkout) ConfirmAndRecordOrder(ctx context.Context, claim model.TokenClaim, input model.VerifyPaymentInput) (model.Order, bool, error) {
	pickup := input.PickupTime
	if pickup == "" {
		pickup = constants.PICKUP_ASAP
	}
	if pickup != constants.PICKUP_ASAP && !utils.IsValidPickupTime(pickup) {
		return model.Order{}, false, utils.NewError(utils.ValidationError, constants.INVALID_PICKUP_TIME, nil)
	}

	existing, err := findOrderByReference(co.DB, input.OrderId)
	if err != nil {
		return model.Order{}, false, err
	}
	if existing != nil {
		order, err := ownedOrder(existing, claim)
		return order, false, err
	}

	var intent model.PaymentIntent
	if err := co.DB.Where("reference = ?", input.OrderId).First(&intent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Order{}, false, utils.NewError(utils.NotFound, constants.PAYMENT_NOT_FOUND, err)
		}
		return model.Order{}, false, err
	}
	if intent.UserId != claim.UserId {
		return model.Order{}, false, utils.NewError(utils.Forbidden, constants.ORDER_BELONGS_TO_ANOTHER, nil)
	}
	if len(input.Items) > 0 && !sameCart(intent.Items, input.Items) {
		return model.Order{}, false, utils.NewError(utils.ValidationError, constants.CART_MISMATCH, nil)
	}

	paid, err := co.Gateway.FetchOrder(ctx, intent.Reference)
	if err != nil {
		if errors.Is(err, payment.ErrOrderNotFound) {
			return model.Order{}, false, utils.NewError(utils.NotFound, constants.PAYMENT_NOT_FOUND, err)
		}
		return model.Order{}, false, utils.NewError(utils.UpstreamGatewayError, constants.PAYMENT_GATEWAY_ERROR, err)
	}
	if !paid.Paid() {
		return model.Order{}, false, utils.NewError(utils.PaymentNotConfirmed, constants.PAYMENT_NOT_VERIFIED,
			fmt.Errorf("gateway status %s", paid.Status))
	}
	if !paid.Amount.Equal(intent.Amount) {
		return model.Order{}, false, utils.NewError(utils.PaymentNotConfirmed, constants.PAYMENT_AMOUNT_MISMATCH,
			fmt.Errorf("paid %s, expected %s", paid.Amount, intent.Amount))
	}

	var user model.User
	if err := co.DB.First(&user, claim.UserId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Order{}, false, utils.NewError(utils.Unauthorized, constants.INVALID_TOKEN, err)
		}
		return model.Order{}, false, err
	}

	now := co.now().UTC()
	order := model.Order{
		UserId:           user.ID,
		UserName:         user.Name,
		UserEmail:        user.Email,
		Items:            intent.Items,
		TotalAmount:      intent.Items.Total(),
		Status:           constants.ORDER_PREPARING,
		PickupTime:       pickup,
		PrepTimeTotal:    intent.PrepTimeTotal,
		PaymentRef:       intent.Reference,
		GatewayPaymentId: paid.GatewayOrderId,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = co.DB.Transaction(func(tx *gorm.DB) error {
		dup, err := findOrderByReference(tx, intent.Reference)
		if err != nil {
			return err
		}
		if dup != nil {
			return errAlreadyRecorded
		}

		for _, line := range lockOrder(intent.Items) {
			res := tx.Model(&model.MenuItem{}).
				Where("id = ? AND stock >= ?", line.MenuItemId, line.Quantity).
				Update("stock", gorm.Expr("stock - ?", line.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return utils.NewError(utils.Conflict, constants.SOLD_OUT_AFTER_PAYMENT,
					fmt.Errorf("menu item %d sold out", line.MenuItemId))
			}
		}

		token, err := NextTokenNumber(tx)
		if err != nil {
			return err
		}
		order.TokenNumber = token

		if err := tx.Create(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errAlreadyRecorded
			}
			return err
		}

		return tx.Model(&model.PaymentIntent{}).
			Where("id = ?", intent.ID).
			Updates(map[string]interface{}{"status": constants.INTENT_PAID, "paid_at": now}).Error
	})

	switch {
	case err == nil:
		return order, true, nil
	case errors.Is(err, errAlreadyRecorded):
		recorded, findErr := findOrderByReference(co.DB, intent.Reference)
		if findErr != nil {
			return model.Order{}, false, findErr
		}
		if recorded == nil {
			return model.Order{}, false, err
		}
		o, ownErr := ownedOrder(recorded, claim)
		return o, false, ownErr
	case utils.IsKind(err, utils.Conflict):
		logger.WithModule("checkout").WithError(err).
			WithField("payment_ref", intent.Reference).
			WithField("gateway_order_id", paid.GatewayOrderId).
			WithField("amount", intent.Amount.String()).
			Warn("paid order could not be fulfilled, refund required")
		return model.Order{}, false, err
	default:
		return model.Order{}, false, err
	}
}
