package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meridianprocure/storefront-backend/api/routes"
	"github.com/meridianprocure/storefront-backend/internal/cart"
	"github.com/meridianprocure/storefront-backend/internal/catalog"
	checkoutsvc "github.com/meridianprocure/storefront-backend/internal/checkout"
	"github.com/meridianprocure/storefront-backend/internal/orders"
	"github.com/meridianprocure/storefront-backend/internal/quotes"
	stripewebhook "github.com/meridianprocure/storefront-backend/internal/webhooks/stripe"
	"github.com/meridianprocure/storefront-backend/pkg/config"
	"github.com/meridianprocure/storefront-backend/pkg/db"
	"github.com/meridianprocure/storefront-backend/pkg/hubspot"
	"github.com/meridianprocure/storefront-backend/pkg/logger"
	"github.com/meridianprocure/storefront-backend/pkg/metrics"
	"github.com/meridianprocure/storefront-backend/pkg/migrate"
	"github.com/meridianprocure/storefront-backend/pkg/redis"
	"github.com/meridianprocure/storefront-backend/pkg/sanity"
	"github.com/meridianprocure/storefront-backend/pkg/stripe"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mets := metrics.NewStorefrontMetrics(registry)

	sanityClient, err := sanity.NewClient(
		cfg.Sanity.ProjectID,
		cfg.Sanity.Dataset,
		cfg.Sanity.APIVersion,
		cfg.Sanity.Token,
		cfg.Sanity.UseCDN,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create sanity client", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.ServiceParams{
		Content: sanityClient,
		Logger:  logg,
		Metrics: mets,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create stripe client", err)
		os.Exit(1)
	}

	carts := cart.NewStore()
	ordersRepo := orders.NewRepository(dbClient.DB())

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		Carts:         carts,
		Stripe:        checkoutsvc.NewStripeClient(stripeClient),
		Orders:        ordersRepo,
		Logger:        logg,
		Metrics:       mets,
		PublicBaseURL: cfg.App.PublicBaseURL,
		SuccessPath:   cfg.Checkout.SuccessPath,
		CancelPath:    cfg.Checkout.CancelPath,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	hubspotClient, err := hubspot.NewClient(cfg.HubSpot.PortalID, cfg.HubSpot.FormID, cfg.HubSpot.Token)
	if err != nil {
		logg.Error(context.Background(), "failed to create hubspot client", err)
		os.Exit(1)
	}

	quoteService, err := quotes.NewService(quotes.ServiceParams{
		CRM:     hubspotClient,
		Logger:  logg,
		Metrics: mets,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create quote service", err)
		os.Exit(1)
	}

	stripeWebhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Orders:            ordersRepo,
		TransactionRunner: dbClient,
		Logger:            logg,
		Metrics:           mets,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create stripe webhook service", err)
		os.Exit(1)
	}

	stripeWebhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, cfg.WebhookEvents.IdempotencyTTL, "stripe")
	if err != nil {
		logg.Error(context.Background(), "failed to create stripe webhook guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting storefront api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			carts,
			catalogService,
			checkoutService,
			quoteService,
			stripeClient,
			stripeWebhookService,
			stripeWebhookGuard,
			mets,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "storefront api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
