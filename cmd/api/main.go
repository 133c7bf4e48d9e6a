package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	"github.com/BruksfildServices01/salon-booking/internal/config"
	dbpkg "github.com/BruksfildServices01/salon-booking/internal/db"
	"github.com/BruksfildServices01/salon-booking/internal/infra/cache"
	"github.com/BruksfildServices01/salon-booking/internal/infra/payment"
	"github.com/BruksfildServices01/salon-booking/internal/infra/storage"
	"github.com/BruksfildServices01/salon-booking/internal/logger"
	"github.com/BruksfildServices01/salon-booking/internal/metrics"
	"github.com/BruksfildServices01/salon-booking/internal/notify"
	"github.com/BruksfildServices01/salon-booking/internal/routes"
	"github.com/BruksfildServices01/salon-booking/internal/validators"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()
	zap.ReplaceGlobals(zl)

	db, err := dbpkg.NewDB(cfg)
	if err != nil {
		zl.Fatal("failed to connect database", zap.Error(err))
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	// --------------------------------------------------
	// Availability cache
	// --------------------------------------------------
	var slots cache.AvailabilityCache = cache.Noop{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		slots = cache.NewRedisAvailabilityCache(rdb, cfg.CacheTTL, zl)
	}

	// --------------------------------------------------
	// Media storage
	// --------------------------------------------------
	var media storage.Storage = storage.Disabled{}
	if cfg.S3Bucket != "" {
		media = storage.NewS3(storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
	}

	// --------------------------------------------------
	// Online payments
	// --------------------------------------------------
	var payments payment.Gateway = payment.Disabled{}
	if cfg.MercadoPagoToken != "" {
		mp, err := payment.NewMercadoPago(cfg.MercadoPagoToken, cfg.PaymentNotifyURL, cfg.PaymentRedirectURL)
		if err != nil {
			zl.Fatal("failed to configure mercadopago", zap.Error(err))
		}
		payments = mp
	}

	// --------------------------------------------------
	// Async side effects
	// --------------------------------------------------
	var sender notify.Sender = notify.LogSender{Log: zl}
	if cfg.SMTPHost != "" {
		sender = notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	}
	notifier := notify.NewDispatcher(sender, zl, m.Notification)
	auditor := audit.NewDispatcher(audit.New(db), zl)

	// --------------------------------------------------
	// HTTP
	// --------------------------------------------------
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, routes.Deps{
		DB:       db,
		Config:   cfg,
		Log:      zl,
		Cache:    slots,
		Storage:  media,
		Payments: payments,
		Audit:    auditor,
		Notify:   notifier,
		Metrics:  m,
		Gatherer: prometheus.DefaultGatherer,
		EmailOK:  validators.NewEmailDomains(3 * time.Second).Valid,
	})

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		zl.Info("server running", zap.String("addr", cfg.Addr()), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("http shutdown", zap.Error(err))
	}
	if err := notifier.Close(shutdownCtx); err != nil {
		zl.Warn("notifications not drained", zap.Error(err))
	}
	if err := auditor.Close(shutdownCtx); err != nil {
		zl.Warn("audit events not drained", zap.Error(err))
	}
}
