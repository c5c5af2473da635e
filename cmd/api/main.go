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

	"storefront/internal/captcha"
	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handler"
	"storefront/internal/migrate"
	"storefront/internal/notification"
	"storefront/internal/payment"
	"storefront/internal/promo"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting storefront API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := migrate.Up(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	customerRepo := repository.NewCustomerRepository(pool, logger)

	promos, err := newPromoCatalog(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize promo catalog: %w", err)
	}

	var verifier captcha.Verifier
	if cfg.Captcha.Secret != "" {
		verifier = captcha.NewRecaptchaVerifier(cfg.Captcha.Secret, cfg.Captcha.MinScore, "", 10*time.Second, logger)
	} else {
		logger.Warn().Msg("RECAPTCHA_SECRET not set, checkout captcha verification disabled")
		verifier = captcha.NewNopVerifier()
	}

	dispatcher := payment.NewDispatcher(logger, newGateways(cfg.Payment, logger)...)

	notifier := notification.NewAsyncDispatcher(
		newSender(cfg.Notification, logger),
		time.Duration(cfg.Notification.TimeoutSeconds)*time.Second,
		logger,
	)

	validator := checkout.NewValidator()

	// Initialize services
	productService := service.NewProductService(productRepo, logger)
	customerService := service.NewCustomerService(customerRepo, logger)
	carts := cart.NewMemoryStore(cart.MemoryConfig{
		IdleTTL:  time.Duration(cfg.Cart.IdleTTLMinutes) * time.Minute,
		MaxLines: cfg.Cart.MaxLines,
	}, logger)
	go carts.Run(ctx, time.Duration(cfg.Cart.SweepIntervalMinutes)*time.Minute)
	cartService := service.NewCartService(carts, productService, logger)
	orderService := service.NewOrderService(service.OrderDeps{
		Orders:      orderRepo,
		Products:    productRepo,
		Customers:   customerService,
		Carts:       carts,
		Captcha:     verifier,
		Promos:      promos,
		Payments:    dispatcher,
		Notifier:    notifier,
		Validator:   validator,
		Numbers:     checkout.NewNumberGenerator(),
		Currency:    cfg.Payment.Currency,
		CallbackURL: cfg.Payment.CallbackURL,
	}, logger)
	paymentService := service.NewPaymentService(service.PaymentDeps{
		Orders:      orderRepo,
		Customers:   customerService,
		Payments:    dispatcher,
		Notifier:    notifier,
		Currency:    cfg.Payment.Currency,
		CallbackURL: cfg.Payment.CallbackURL,
	}, logger)

	// Initialize router
	engine := router.New(
		router.Config{
			APIKey:         cfg.Auth.APIKey,
			JWTSecret:      cfg.Auth.JWTSecret,
			AllowedOrigins: cfg.Server.AllowedOrigins,
		},
		router.Handlers{
			Products: handler.NewProductHandler(productService, logger),
			Cart:     handler.NewCartHandler(cartService, logger),
			Checkout: handler.NewCheckoutHandler(validator, dispatcher.Methods(), logger),
			Orders:   handler.NewOrderHandler(orderService, logger),
			Payments: handler.NewPaymentHandler(paymentService, logger),
		},
		pool,
		logger,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Int("gateways", len(dispatcher.Methods())).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		// Let queued notifications go out before the process exits
		if err := notifier.Wait(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("pending notifications dropped")
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newPromoCatalog loads promo files from S3 when enabled, falling back to the local file system.
func newPromoCatalog(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (promo.Catalog, error) {
	fileLoader := promo.NewFileLoader(logger)

	var s3Loader promo.Loader
	if cfg.S3.Enabled {
		l, err := promo.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			s3Loader = l
		}
	} else {
		logger.Info().Msg("using local file system for promo files (S3 disabled)")
	}

	loader := promo.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, cfg.S3.Enabled, logger)
	return promo.NewCatalog(ctx, cfg.Promo.Files, loader, logger)
}

// newGateways registers every gateway that has credentials.
func newGateways(cfg config.PaymentConfig, logger zerolog.Logger) []payment.Gateway {
	client := &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}

	var gateways []payment.Gateway
	if cfg.PaystackSecretKey != "" {
		gateways = append(gateways, payment.NewPaystack(payment.PaystackConfig{
			SecretKey: cfg.PaystackSecretKey,
			BaseURL:   cfg.PaystackBaseURL,
		}, client, logger))
	}
	if cfg.MoolreUser != "" {
		gateways = append(gateways, payment.NewMoolre(payment.MoolreConfig{
			User:          cfg.MoolreUser,
			PublicKey:     cfg.MoolrePublicKey,
			AccountNumber: cfg.MoolreAccountNumber,
			BaseURL:       cfg.MoolreBaseURL,
		}, client, logger))
	}
	if cfg.StripeSecretKey != "" {
		gateways = append(gateways, payment.NewStripe(payment.StripeConfig{
			SecretKey: cfg.StripeSecretKey,
			BaseURL:   cfg.StripeBaseURL,
		}, client, logger))
	}
	if cfg.PayPalClientID != "" {
		gateways = append(gateways, payment.NewPayPal(payment.PayPalConfig{
			ClientID:     cfg.PayPalClientID,
			ClientSecret: cfg.PayPalClientSecret,
			BaseURL:      cfg.PayPalBaseURL,
		}, client, logger))
	}
	return gateways
}

func newSender(cfg config.NotificationConfig, logger zerolog.Logger) notification.Sender {
	if cfg.WebhookURL == "" {
		logger.Info().Msg("NOTIFY_WEBHOOK_URL not set, notifications are logged only")
		return notification.NewLogSender(logger)
	}
	return notification.NewWebhookSender(notification.WebhookConfig{
		URL:        cfg.WebhookURL,
		Token:      cfg.Token,
		MaxRetries: cfg.MaxRetries,
	}, &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}, logger)
}
