package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slotpay/config"
	"slotpay/internal/database"
	"slotpay/internal/repository"
	"slotpay/internal/router"
	"slotpay/internal/service"
	"slotpay/pkg/logger"
	"slotpay/pkg/payment"
	"slotpay/pkg/rates"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Env)
	log := logger.Get()
	defer log.Sync()

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatal("database", zap.Error(err))
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	rules, err := service.RulesFromConfig(&cfg.Booking)
	if err != nil {
		log.Fatal("booking rules", zap.Error(err))
	}

	apptRepo := repository.NewAppointmentRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	provider := payment.NewMoneroPayProvider(cfg.Payment.ProviderBaseURL, cfg.Payment.RequestTimeout)
	rateCache := rates.NewCache(
		rates.NewCoinGeckoSource(cfg.Rates.BaseURL, cfg.Rates.Timeout),
		cfg.Rates.TTL,
		cfg.Rates.FetchRetries,
	)
	notifier := &service.LogNotifier{Log: log}

	bookingSvc := service.NewBookingService(apptRepo, rules, cfg.Booking.ProviderID, log)
	paymentSvc := service.NewPaymentService(paymentRepo, apptRepo, provider, rateCache, cfg.Payment, notifier, log)

	sweeper := service.NewSweeper(paymentSvc, log)
	c := cron.New()
	if err := sweeper.Schedule(c, cfg.Payment.SweepInterval); err != nil {
		log.Fatal("sweeper schedule", zap.Error(err))
	}
	c.Start()
	defer c.Stop()

	engine := router.Setup(cfg, bookingSvc, paymentSvc, log)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server shutdown", zap.Error(err))
	}
}
