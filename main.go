package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"canteen_manager/cache"
	"canteen_manager/client"
	"canteen_manager/config"
	"canteen_manager/constants"
	"canteen_manager/database"
	"canteen_manager/handler"
	"canteen_manager/helper"
	"canteen_manager/logger"
	"canteen_manager/payment"
	"canteen_manager/router"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "canteen",
	Short: "Campus canteen ordering backend",
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().String("url", "http://localhost:8002", "API base URL")
	watchCmd.Flags().String("email", "", "customer email")
	watchCmd.Flags().String("password", "", "customer password")
	watchCmd.Flags().String("mkey", "", "admin master key, watches the kitchen feed")
	watchCmd.Flags().Duration("interval", 15*time.Second, "poll interval")
}

func boot() (*config.Configuration, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := logger.Init(logger.LogConfig{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		Path:       cfg.LogPath,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
	}); err != nil {
		return nil, err
	}
	if err := database.ConnectDB(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newGateway(cfg *config.Configuration) (payment.Gateway, error) {
	if strings.EqualFold(cfg.PaymentGateway, "fake") {
		if cfg.IsProduction() {
			return nil, errors.New("PAYMENT_GATEWAY=fake is not allowed when APP_ENV is production")
		}
		logger.WithModule("payment").Warn("using in-memory fake gateway, settle payments with POST /dev/payments/:orderId/settle")
		return payment.NewFake(), nil
	}
	return payment.NewCashfree(payment.CashfreeConfig{
		BaseURL:      cfg.CashfreeBaseURL,
		AppId:        cfg.CashfreeAppID,
		SecretKey:    cfg.CashfreeSecretKey,
		APIVersion:   cfg.CashfreeAPIVersion,
		Environment:  cfg.CashfreeEnv,
		Timeout:      cfg.GatewayTimeout,
		FetchRetries: 2,
	}), nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := boot()
		if err != nil {
			return err
		}
		if err := database.SeedOwner(database.DB, cfg.AdminMasterKey); err != nil {
			return err
		}
		if err := cache.Connect(cmd.Context(), cfg.RedisAddr); err != nil {
			logger.WithError(err).Warn("redis unavailable, serving without cache")
		}
		defer cache.Close()

		gateway, err := newGateway(cfg)
		if err != nil {
			return err
		}
		handler.PaymentGateway = gateway

		if err := helper.StartSchedulers(database.DB, cfg.Location()); err != nil {
			return err
		}
		defer helper.StopSchedulers()

		app := router.New(cfg)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		go func() {
			<-ctx.Done()
			logger.L().Info("shutting down")
			if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
				logger.WithError(err).Error("shutdown")
			}
		}()

		logger.L().WithField("address", cfg.Address).Info("listening")
		return app.Listen(cfg.Address)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := boot()
		return err
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Store the admin master key and a starter menu",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := boot()
		if err != nil {
			return err
		}
		if err := database.SeedOwner(database.DB, cfg.AdminMasterKey); err != nil {
			return err
		}
		return database.SeedMenu(database.DB)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the queue and print what a customer or the kitchen sees",
	RunE: func(cmd *cobra.Command, args []string) error {
		baseURL, _ := cmd.Flags().GetString("url")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		mkey, _ := cmd.Flags().GetString("mkey")
		interval, _ := cmd.Flags().GetDuration("interval")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		api := client.New(baseURL, "")
		admin := mkey != ""
		switch {
		case admin:
			if _, err := api.OwnerLogin(ctx, mkey); err != nil {
				return err
			}
		case email != "":
			if _, err := api.Login(ctx, email, password); err != nil {
				return err
			}
		default:
			return errors.New("watch needs --email/--password or --mkey")
		}

		poller := &client.Poller{Client: api, Admin: admin, Interval: interval, MaxBackoff: 2 * time.Minute}
		out := cmd.OutOrStdout()
		poller.Run(ctx, func(s client.Snapshot) {
			fmt.Fprintf(out, "[%s] now serving: %s\n", s.At.Format("15:04:05"), s.NowServing)
			for _, o := range s.NewlyReady {
				fmt.Fprintf(out, "  token #%d is ready for pickup\n", o.TokenNumber)
			}
			for _, v := range s.Orders {
				if v.Status == constants.ORDER_PICKED_UP {
					continue
				}
				fmt.Fprintf(out, "  #%-4d %-10s %3d min  %s\n", v.TokenNumber, v.Status, v.ETA.RemainingMinutes, v.ETA.Urgency)
			}
		})
		return nil
	},
}
