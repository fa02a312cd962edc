package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/artisanmarket/storefront/api/controllers"
	"github.com/artisanmarket/storefront/api/routes"
	"github.com/artisanmarket/storefront/internal/cart"
	"github.com/artisanmarket/storefront/internal/checkout"
	"github.com/artisanmarket/storefront/internal/emails"
	"github.com/artisanmarket/storefront/internal/notices"
	"github.com/artisanmarket/storefront/internal/orders"
	product "github.com/artisanmarket/storefront/internal/products"
	"github.com/artisanmarket/storefront/internal/reviews"
	"github.com/artisanmarket/storefront/pkg/config"
	"github.com/artisanmarket/storefront/pkg/db"
	"github.com/artisanmarket/storefront/pkg/emailfn"
	"github.com/artisanmarket/storefront/pkg/instance"
	"github.com/artisanmarket/storefront/pkg/logger"
	"github.com/artisanmarket/storefront/pkg/metrics"
	"github.com/artisanmarket/storefront/pkg/migrate"
	"github.com/artisanmarket/storefront/pkg/pricing"
	"github.com/artisanmarket/storefront/pkg/records"
	"github.com/artisanmarket/storefront/pkg/redis"
	"github.com/artisanmarket/storefront/pkg/resend"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: cfg.App.ServiceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

// repositories picks local tables or the remote record service.
type repositories struct {
	products product.Repository
	orders   orders.Repository
	reviews  reviews.Repository
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	var closers []func() error
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i]())
		}
	}()

	pingers := map[string]controllers.Pinger{}

	var repos repositories
	if cfg.Records.UsesLocalStore() {
		dbClient, dbErr := db.New(ctx, cfg.DB, logg)
		if dbErr != nil {
			return fmt.Errorf("bootstrap database: %w", dbErr)
		}
		closers = append(closers, dbClient.Close)
		pingers["db"] = dbClient

		if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
			return fmt.Errorf("dev migrations: %w", err)
		}
		repos = repositories{
			products: product.NewGormRepository(dbClient.DB()),
			orders:   orders.NewGormRepository(dbClient.DB()),
			reviews:  reviews.NewGormRepository(dbClient.DB()),
		}
	} else {
		recordsClient, recErr := records.NewClient(cfg.Records.BaseURL,
			records.WithAPIKey(cfg.Records.APIKey),
			records.WithHTTPClient(&http.Client{Timeout: cfg.Records.Timeout}),
		)
		if recErr != nil {
			return fmt.Errorf("records client: %w", recErr)
		}
		repos = repositories{
			products: product.NewRemoteRepository(recordsClient),
			orders:   orders.NewRemoteRepository(recordsClient),
			reviews:  reviews.NewRemoteRepository(recordsClient),
		}
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("bootstrap redis: %w", err)
	}
	closers = append(closers, redisClient.Close)
	pingers["redis"] = redisClient

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	storefrontMetrics := metrics.NewStorefront(registry)
	httpMetrics := metrics.NewHTTP(registry)

	var mailer emails.Mailer
	if cfg.Resend.APIKey != "" {
		resendClient, resendErr := resend.NewClient(cfg.Resend.APIKey, resend.WithBaseURL(cfg.Resend.BaseURL))
		if resendErr != nil {
			return fmt.Errorf("resend client: %w", resendErr)
		}
		mailer = resendClient
	} else {
		logg.Warn(ctx, "resend api key not set, order status emails disabled")
	}
	sender := emails.NewSender(mailer, cfg.Resend.From, logg)

	var invoker emailfn.Invoker = sender
	if cfg.Email.FunctionURL != "" {
		fnClient, fnErr := emailfn.NewClient(cfg.Email.FunctionURL, emailfn.WithTimeout(cfg.Email.Timeout))
		if fnErr != nil {
			return fmt.Errorf("email function client: %w", fnErr)
		}
		invoker = fnClient
	}

	notifier := notices.ContextNotifier{}

	productService, err := product.NewService(repos.products)
	if err != nil {
		return fmt.Errorf("product service: %w", err)
	}
	orderService, err := orders.NewService(repos.orders, invoker, notifier, logg, storefrontMetrics, orders.Options{
		DeliveryDays: cfg.Checkout.DeliveryDays,
	})
	if err != nil {
		return fmt.Errorf("order service: %w", err)
	}
	reviewService, err := reviews.NewService(repos.reviews, orderService, nil)
	if err != nil {
		return fmt.Errorf("review service: %w", err)
	}

	cartStorage, err := cart.NewRedisStorage(redisClient, redisClient, cfg.Checkout.CartTTL)
	if err != nil {
		return fmt.Errorf("cart storage: %w", err)
	}
	cartService, err := cart.NewService(cartStorage, notifier, logg, storefrontMetrics)
	if err != nil {
		return fmt.Errorf("cart service: %w", err)
	}

	drafts, err := checkout.NewRedisDraftStore(redisClient, redisClient, cfg.Checkout.DraftTTL)
	if err != nil {
		return fmt.Errorf("checkout drafts: %w", err)
	}
	guard, err := checkout.NewRedisGuard(redisClient, redisClient, cfg.Checkout.SubmissionTTL)
	if err != nil {
		return fmt.Errorf("submission guard: %w", err)
	}
	threshold, fee, rate := cfg.Pricing.Decimals()
	checkoutService, err := checkout.NewService(checkout.Deps{
		Carts:   cartService,
		Orders:  orderService,
		Drafts:  drafts,
		Guard:   guard,
		Pricing: pricing.Policy{FreeShippingThreshold: threshold, ShippingFee: fee, TaxRate: rate},
		Logger:  logg,
		Metrics: storefrontMetrics,
	})
	if err != nil {
		return fmt.Errorf("checkout service: %w", err)
	}

	addr := ":" + cfg.App.Port
	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Deps{
			Products:    productService,
			Cart:        cartService,
			Checkout:    checkoutService,
			Orders:      orderService,
			Reviews:     reviewService,
			Emails:      sender,
			Store:       redisClient,
			HTTPMetrics: httpMetrics,
			Gatherer:    registry,
			Pingers:     pingers,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logCtx := logg.WithFields(ctx, map[string]any{
			"env":      cfg.App.Env,
			"addr":     addr,
			"records":  cfg.Records.Backend,
			"instance": instance.GetID(),
		})
		logg.Info(logCtx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(context.Background(), "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
