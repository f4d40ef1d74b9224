package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/landing-intake/cmd/mainconfig"
	"github.com/wolfman30/landing-intake/internal/api/router"
	appconfig "github.com/wolfman30/landing-intake/internal/config"
	"github.com/wolfman30/landing-intake/internal/intake"
	"github.com/wolfman30/landing-intake/internal/notify"
	"github.com/wolfman30/landing-intake/internal/observability/metrics"
	"github.com/wolfman30/landing-intake/internal/payments"
	"github.com/wolfman30/landing-intake/internal/submissions"
	"github.com/wolfman30/landing-intake/pkg/logging"
)

func main() {
	// Load .env file when present
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting landing-intake API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()
	metricsHandler, submissionMetrics := setupMetrics()

	sender := setupEmailSender(ctx, cfg, logger)
	notifier := notify.NewNotifier(sender, notify.Identity{
		Email: cfg.DefaultFromEmail,
		Name:  cfg.DefaultFromName,
	}, cfg.ExternalCallTimeout, logger)

	orders := setupPayments(cfg, logger)

	uploader, err := setupUploader(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to create storage client", "error", err)
		os.Exit(1)
	}

	// Setup router
	r := router.New(&router.Config{
		Logger:             logger,
		Submissions:        submissions.NewHandler(notifier, orders, cfg.AdminEmail, submissionMetrics, logger),
		Uploads:            intake.NewHandler(uploader, cfg.MaxUploadBytes, submissionMetrics, logger),
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// setupMetrics builds a dedicated registry with runtime collectors and the
// submission metrics, and returns its /metrics handler.
func setupMetrics() (http.Handler, *metrics.SubmissionMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewSubmissionMetrics(reg)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), m
}

// setupEmailSender picks the email provider. A nil result means email is
// unconfigured and every notification reports it.
func setupEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	switch cfg.EmailProvider {
	case "stub":
		logger.Warn("using stub email sender; notifications are only logged")
		return notify.NewStubEmailSender(logger)
	case "ses":
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config for SES", "error", err)
			return nil
		}
		return notify.NewSESSender(sesv2.NewFromConfig(awsCfg), logger)
	default:
		sender := notify.NewSendGridSender(notify.SendGridConfig{APIKey: cfg.SendGridAPIKey}, logger)
		if sender == nil {
			logger.Warn("SENDGRID_API_KEY not set; admin notifications disabled")
			return nil
		}
		return sender
	}
}

func setupPayments(cfg *appconfig.Config, logger *logging.Logger) *payments.OrderCreator {
	client := payments.NewPayPalClient(payments.PayPalConfig{
		ClientID:     cfg.PayPalClientID,
		ClientSecret: cfg.PayPalClientSecret,
		Mode:         cfg.PayPalMode,
		BaseURL:      cfg.PayPalBaseURL,
		SiteURL:      cfg.SiteURL,
		Timeout:      cfg.ExternalCallTimeout,
	}, logger)
	if !client.Configured() {
		logger.Warn("PayPal credentials not set; purchases will fail until configured")
	}
	return payments.NewOrderCreator(client, cfg.OrderNumberPrefix, cfg.PurchaseDescription, logger)
}

func setupUploader(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*intake.Uploader, error) {
	client, err := mainconfig.NewStorageClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.StorageEndpoint() == "" {
		logger.Warn("no R2 endpoint configured; uploads use the default S3 endpoint")
	}
	return intake.NewUploader(client, cfg.R2BucketName, cfg.R2PublicURL, logger,
		intake.WithTimeout(cfg.ExternalCallTimeout),
	), nil
}
