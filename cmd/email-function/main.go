// Command email-function serves the order status email function on its own,
// for deployments that point ARTISAN_EMAIL_FUNCTION_URL at it.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/artisanmarket/storefront/api/middleware"
	"github.com/artisanmarket/storefront/internal/emails"
	"github.com/artisanmarket/storefront/pkg/config"
	"github.com/artisanmarket/storefront/pkg/instance"
	"github.com/artisanmarket/storefront/pkg/logger"
	"github.com/artisanmarket/storefront/pkg/resend"
)

type functionConfig struct {
	App    config.AppConfig
	Resend config.ResendConfig
	CORS   config.CORSConfig
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "email-function"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	var cfg functionConfig
	if err := envconfig.Process(config.EnvPrefix, &cfg); err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "email-function",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	var mailer emails.Mailer
	if cfg.Resend.APIKey != "" {
		client, err := resend.NewClient(cfg.Resend.APIKey, resend.WithBaseURL(cfg.Resend.BaseURL))
		if err != nil {
			logg.Error(context.Background(), "failed to create resend client", err)
			os.Exit(1)
		}
		mailer = client
	} else {
		logg.Warn(context.Background(), "resend api key not set, every send will fail")
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)
	r.Handle("/", emails.NewSender(mailer, cfg.Resend.From, logg))

	addr := ":" + cfg.App.Port
	server := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(context.Background(), "email function shutdown failed", err)
		}
	}()

	logg.Info(logg.WithFields(context.Background(), map[string]any{"addr": addr, "instance": instance.GetID()}), "starting email function")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(context.Background(), "email function stopped unexpectedly", err)
		os.Exit(1)
	}
}
