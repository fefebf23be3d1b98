package helper

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"canteen_manager/constants"
	"canteen_manager/eta"
	"canteen_manager/model"
	"canteen_manager/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// NextTokenNumber bumps the token counter and returns the new value. It must
// run inside the transaction that inserts the order: the row lock taken by the
// UPDATE is held until commit, so concurrent checkouts get consecutive tokens.
func NextTokenNumber(tx *gorm.DB) (int, error) {
	res := tx.Model(&model.TokenCounter{}).
		Where("name = ?", constants.TOKEN_SEQUENCE).
		Update("value", gorm.Expr("value + 1"))
	if res.Error != nil {
		return 0, fmt.Errorf("bump token counter: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, fmt.Errorf("token counter %q missing", constants.TOKEN_SEQUENCE)
	}

	var counter model.TokenCounter
	if err := tx.Where("name = ?", constants.TOKEN_SEQUENCE).First(&counter).Error; err != nil {
		return 0, fmt.Errorf("read token counter: %w", err)
	}
	return counter.Value, nil
}

func FindOrder(db *gorm.DB, id uint) (model.Order, error) {
	var order model.Order
	if err := db.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return order, utils.NewError(utils.NotFound, constants.ORDER_NOT_FOUND, err)
		}
		return order, err
	}
	return order, nil
}

// ListOrders returns orders newest first. A nil userId lists every customer.
func ListOrders(db *gorm.DB, userId *uint, status string) ([]model.Order, error) {
	query := db.Model(&model.Order{})
	if userId != nil {
		query = query.Where("user_id = ?", *userId)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	orders := []model.Order{}
	if err := query.Order("created_at DESC").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// KitchenQueue is every order still being prepared, oldest first.
func KitchenQueue(db *gorm.DB) ([]model.Order, error) {
	orders := []model.Order{}
	err := db.Where("status = ?", constants.ORDER_PREPARING).
		Order("created_at ASC").Order("id ASC").
		Find(&orders).Error
	return orders, err
}

// NextStatus is the only status an order may move to, or "" at the end.
func NextStatus(current string) string {
	for i, s := range constants.ORDER_STATUSES {
		if s == current && i+1 < len(constants.ORDER_STATUSES) {
			return constants.ORDER_STATUSES[i+1]
		}
	}
	return ""
}

// SetStatus advances an order by exactly one step. The update is conditional
// on the status read, so two racing admins cannot both apply it.
func SetStatus(db *gorm.DB, id uint, status string, now time.Time) (model.Order, error) {
	if !utils.IsValidValueOfConstant(status, constants.ORDER_STATUSES) {
		return model.Order{}, utils.NewError(utils.ValidationError, constants.INVALID_ORDER_STATUS, nil)
	}

	order, err := FindOrder(db, id)
	if err != nil {
		return order, err
	}
	if NextStatus(order.Status) != status {
		return order, utils.NewError(utils.InvalidTransition, constants.INVALID_TRANSITION,
			fmt.Errorf("order %d: %s -> %s", id, order.Status, status))
	}

	now = now.UTC()
	updates := map[string]interface{}{"status": status, "updated_at": now}
	switch status {
	case constants.ORDER_READY:
		updates["ready_at"] = now
	case constants.ORDER_PICKED_UP:
		updates["picked_up_at"] = now
	}

	res := db.Model(&model.Order{}).
		Where("id = ? AND status = ?", id, order.Status).
		Updates(updates)
	if res.Error != nil {
		return order, res.Error
	}
	if res.RowsAffected == 0 {
		return order, utils.NewError(utils.InvalidTransition, constants.INVALID_TRANSITION,
			fmt.Errorf("order %d changed concurrently", id))
	}
	return FindOrder(db, id)
}

// NowServing is the highest token marked Ready among orders placed today, or
// the "--" sentinel.
func NowServing(db *gorm.DB, now time.Time, loc *time.Location) (interface{}, error) {
	start, end := utils.DayBounds(now, loc)

	var top sql.NullInt64
	err := db.Model(&model.Order{}).
		Select("MAX(token_number)").
		Where("status = ? AND created_at >= ? AND created_at < ?", constants.ORDER_READY, start.UTC(), end.UTC()).
		Scan(&top).Error
	if err != nil {
		return nil, err
	}
	if !top.Valid {
		return constants.NOW_SERVING_NONE, nil
	}
	return int(top.Int64), nil
}

func ordersBetween(db *gorm.DB, start, end time.Time) ([]model.Order, error) {
	orders := []model.Order{}
	err := db.Select("id", "total_amount", "created_at").
		Where("created_at >= ? AND created_at < ?", start.UTC(), end.UTC()).
		Find(&orders).Error
	return orders, err
}

func sumTotals(orders []model.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.TotalAmount)
	}
	return total
}

// RevenueSummary aggregates orders created on the calendar day of now in loc.
func RevenueSummary(db *gorm.DB, now time.Time, loc *time.Location) (model.RevenueSummary, error) {
	todayStart, todayEnd := utils.DayBounds(now, loc)
	yesterdayStart := todayStart.AddDate(0, 0, -1)

	today, err := ordersBetween(db, todayStart, todayEnd)
	if err != nil {
		return model.RevenueSummary{}, err
	}
	yesterday, err := ordersBetween(db, yesterdayStart, todayStart)
	if err != nil {
		return model.RevenueSummary{}, err
	}

	summary := model.RevenueSummary{
		TodayRevenue:     sumTotals(today),
		TodayOrdersCount: int64(len(today)),
		PeakHour:         PeakHour(today, loc),
		YesterdayRevenue: sumTotals(yesterday),
	}
	summary.RevenueGrowth = utils.CalculateGrowth(
		summary.TodayRevenue.InexactFloat64(),
		summary.YesterdayRevenue.InexactFloat64(),
	)
	return summary, nil
}

// PeakHour is the busiest hour as "HH:00"; ties go to the earlier hour.
func PeakHour(orders []model.Order, loc *time.Location) string {
	if len(orders) == 0 {
		return constants.PEAK_HOUR_NONE
	}
	var perHour [24]int
	for _, o := range orders {
		perHour[o.CreatedAt.In(loc).Hour()]++
	}
	best := 0
	for h := 1; h < 24; h++ {
		if perHour[h] > perHour[best] {
			best = h
		}
	}
	return fmt.Sprintf("%02d:00", best)
}

// OverdueOrders lists Preparing orders past their prep time plus grace.
func OverdueOrders(db *gorm.DB, now time.Time) ([]model.Order, error) {
	queue, err := KitchenQueue(db)
	if err != nil {
		return nil, err
	}
	var overdue []model.Order
	for _, o := range queue {
		if eta.Urgency(o, now) == eta.UrgencyOverdue {
			overdue = append(overdue, o)
		}
	}
	return overdue, nil
}
