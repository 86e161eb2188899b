package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/phillip/event-registration-go/cache"
	config "github.com/phillip/event-registration-go/config"
	controllers "github.com/phillip/event-registration-go/controllers"
	"github.com/phillip/event-registration-go/events"
	"github.com/phillip/event-registration-go/gateway"
	"github.com/phillip/event-registration-go/mailer"
	"github.com/phillip/event-registration-go/metrics"
	middleware "github.com/phillip/event-registration-go/middleware"
	"github.com/phillip/event-registration-go/payments"
	"github.com/phillip/event-registration-go/receipts"
	routes "github.com/phillip/event-registration-go/routes"
	"github.com/phillip/event-registration-go/store"
	utils "github.com/phillip/event-registration-go/utils"
)

const (
	progressCacheTTL  = 5 * time.Minute
	kafkaFlushTimeout = 5 * time.Second
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	var logger *slog.Logger
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfg.ConnectMongo(ctx, logger); err != nil {
		logger.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = cfg.MongoClient.Disconnect(context.Background())
	}()

	db := cfg.Database()
	registrations := store.NewRegistrationStore(db)
	admins := store.NewAdminStore(db)
	journal := store.NewNotificationJournal(db)
	for name, ensure := range map[string]func(context.Context) error{
		"registrations":         registrations.EnsureIndexes,
		"admins":                admins.EnsureIndexes,
		"payment_notifications": journal.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			logger.Error("index creation failed", "collection", name, "error", err)
			os.Exit(1)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	mail, err := mailer.New(
		utils.NewZeptoMail(utils.ZeptoConfig{
			APIURL:   cfg.ZeptoAPIURL,
			APIKey:   cfg.ZeptoAPIKey,
			From:     cfg.EmailFrom,
			FromName: cfg.EmailFromName,
		}, nil),
		mailer.Config{
			EventName:         cfg.EventName,
			OrganizationEmail: cfg.OrganizationEmail,
			FrontendURL:       cfg.FrontendURL,
		},
		logger,
	)
	if err != nil {
		logger.Error("email templates invalid", "error", err)
		os.Exit(1)
	}

	opts := []payments.Option{
		payments.WithLogger(logger),
		payments.WithMetrics(m),
		payments.WithNotifier(mail),
		payments.WithNotificationJournal(journal),
	}
	integrations, release := optionalIntegrations(ctx, cfg, logger)
	defer release.closeAll(logger)
	opts = append(opts, integrations...)

	cinetpay := gateway.NewCinetPay(gateway.Config{
		APIKey:    cfg.CinetPayAPIKey,
		SiteID:    cfg.CinetPaySiteID,
		BaseURL:   cfg.CinetPayBaseURL,
		NotifyURL: cfg.NotifyURL(),
	}, nil)

	initiator := payments.NewInitiator(
		registrations,
		cinetpay,
		payments.NewConfirmationCodeGenerator(cfg.ConfirmationPrefix, registrations.ConfirmationCodeExists),
		payments.NewTransactionIDGenerator(cfg.TransactionPrefix, registrations.TransactionIDExists),
		payments.InitiatorConfig{EventName: cfg.EventName, FrontendURL: cfg.FrontendURL},
		opts...,
	)
	reconciler := payments.NewReconciler(registrations, cinetpay, payments.ReconcilerConfig{SiteID: cfg.CinetPaySiteID}, opts...)
	query := payments.NewQuery(registrations, opts...)

	if err := controllers.SeedAdmin(ctx, admins, cfg.AdminUsername, cfg.AdminPassword, logger); err != nil {
		logger.Error("admin seed failed", "error", err)
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		middleware.Metrics(m),
		cors.New(corsConfig(cfg)),
	)
	routes.SetupRoutes(r, cfg, routes.Services{
		Initiator:     initiator,
		Reconciler:    reconciler,
		Query:         query,
		Admins:        admins,
		Registrations: registrations,
		Contact:       mail,
		Gatherer:      registry,
		Logger:        logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

// closer releases one client opened at startup.
type closer struct {
	name  string
	close func() error
}

type closers []closer

// closeAll releases clients in reverse order of opening. A failure is logged
// and does not stop the rest.
func (c closers) closeAll(logger *slog.Logger) {
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i].close(); err != nil {
			logger.Error("close failed", "client", c[i].name, "error", err)
			continue
		}
		logger.Info("client closed", "client", c[i].name)
	}
}

// optionalIntegrations wires Redis, Kafka and Cloudinary when configured.
// Any that are missing or unreachable are left to the no-op defaults. The
// returned closers own the clients that were opened.
func optionalIntegrations(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]payments.Option, closers) {
	var (
		opts []payments.Option
		open closers
	)

	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, progress cache disabled", "error", err)
		} else {
			open = append(open, closer{name: "redis", close: client.Close})
			opts = append(opts, payments.WithProgressCache(cache.NewProgressCache(client, progressCacheTTL, logger)))
			logger.Info("redis progress cache enabled")
		}
	} else {
		logger.Info("REDIS_URL not set, progress cache disabled")
	}

	if cfg.KafkaBrokers != "" {
		client, err := events.Dial(ctx, cfg.KafkaBrokers)
		if err != nil {
			logger.Warn("kafka unavailable, payment events disabled", "error", err)
		} else {
			open = append(open, closer{name: "kafka", close: func() error {
				flushCtx, cancel := context.WithTimeout(context.Background(), kafkaFlushTimeout)
				defer cancel()
				err := client.Flush(flushCtx)
				client.Close()
				return err
			}})
			opts = append(opts, payments.WithEventPublisher(events.NewKafkaPublisher(client, cfg.KafkaTopic, logger)))
			logger.Info("kafka event publisher enabled", "topic", cfg.KafkaTopic)
		}
	} else {
		logger.Info("KAFKA_BROKERS not set, payment events disabled")
	}

	cld := utils.CloudinaryConfig{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
	}
	if cld.Enabled() {
		uploader, err := utils.NewCloudinary(cld, "receipts")
		if err == nil {
			var archiver *receipts.Archiver
			archiver, err = receipts.NewArchiver(uploader, cfg.EventName)
			if err == nil {
				opts = append(opts, payments.WithReceiptArchiver(archiver))
				logger.Info("receipt archive enabled")
			}
		}
		if err != nil {
			logger.Warn("receipt archive disabled", "error", err)
		}
	} else {
		logger.Info("cloudinary not configured, receipt archive disabled")
	}

	return opts, open
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.DefaultConfig()
	c.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions}
	c.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "If-None-Match", middleware.RequestIDHeader}
	c.ExposeHeaders = []string{"ETag", "Last-Modified", middleware.RequestIDHeader}
	if cfg.ClientURL == "" {
		c.AllowAllOrigins = true
		return c
	}
	for _, origin := range strings.Split(cfg.ClientURL, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			c.AllowOrigins = append(c.AllowOrigins, origin)
		}
	}
	c.AllowCredentials = true
	return c
}
