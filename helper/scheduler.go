package helper

import (
	"fmt"
	"time"

	"canteen_manager/logger"
	"canteen_manager/metrics"

	"github.com/go-co-op/gocron/v2"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

var (
	sweepScheduler   *cron.Cron
	summaryScheduler gocron.Scheduler
)

// SweepOverdueOrders logs every Preparing order past its prep time plus grace
// and publishes the count.
func SweepOverdueOrders(db *gorm.DB, now time.Time) int {
	overdue, err := OverdueOrders(db, now)
	if err != nil {
		logger.WithModule("scheduler").WithError(err).Error("overdue sweep failed")
		return 0
	}
	metrics.OverdueOrders.Set(float64(len(overdue)))
	for _, o := range overdue {
		logger.WithModule("scheduler").WithFields(map[string]interface{}{
			"token":       o.TokenNumber,
			"order_id":    o.ID,
			"waiting_min": int(now.Sub(o.CreatedAt).Minutes()),
			"prep_min":    o.PrepTimeTotal,
		}).Warn("order overdue")
	}
	return len(overdue)
}

func LogDailyRevenue(db *gorm.DB, loc *time.Location) {
	summary, err := RevenueSummary(db, time.Now(), loc)
	if err != nil {
		logger.WithModule("scheduler").WithError(err).Error("daily revenue summary failed")
		return
	}
	logger.WithModule("scheduler").WithFields(map[string]interface{}{
		"revenue":   summary.TodayRevenue.StringFixed(2),
		"orders":    summary.TodayOrdersCount,
		"peak_hour": summary.PeakHour,
		"growth":    fmt.Sprintf("%.1f%%", summary.RevenueGrowth),
	}).Info("end of day revenue")
}

// StartSchedulers runs the overdue sweep every 5 minutes and the revenue
// summary daily at 23:55 in loc.
func StartSchedulers(db *gorm.DB, loc *time.Location) error {
	sweepScheduler = cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	if _, err := sweepScheduler.AddFunc("*/5 * * * *", func() {
		SweepOverdueOrders(db, time.Now())
	}); err != nil {
		return fmt.Errorf("overdue sweep: %w", err)
	}

	s, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return fmt.Errorf("revenue scheduler: %w", err)
	}
	if _, err := s.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(23, 55, 0))),
		gocron.NewTask(LogDailyRevenue, db, loc),
	); err != nil {
		return fmt.Errorf("revenue job: %w", err)
	}
	summaryScheduler = s

	sweepScheduler.Start()
	summaryScheduler.Start()
	logger.WithModule("scheduler").Info("schedulers started (overdue sweep every 5m, revenue 23:55)")
	return nil
}

func StopSchedulers() {
	if sweepScheduler != nil {
		<-sweepScheduler.Stop().Done()
	}
	if summaryScheduler != nil {
		if err := summaryScheduler.Shutdown(); err != nil {
			logger.WithModule("scheduler").WithError(err).Warn("revenue scheduler shutdown")
		}
	}
	logger.WithModule("scheduler").Info("schedulers stopped")
}
