package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"

	"github.com/MAVERICK-VF142/Drx.MediMate/internal/config"
	"github.com/MAVERICK-VF142/Drx.MediMate/internal/gateway"
	"github.com/MAVERICK-VF142/Drx.MediMate/internal/handler"
	"github.com/MAVERICK-VF142/Drx.MediMate/internal/service"
	jwtpkg "github.com/MAVERICK-VF142/Drx.MediMate/pkg/jwt"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			cfg, err := config.Load(configPath,
				config.WithFlag("server.port", flags.Lookup("port")),
				config.WithFlag("server.mode", flags.Lookup("mode")),
				config.WithFlag("invite.backend", flags.Lookup("invite-backend")),
				config.WithFlag("cache.backend", flags.Lookup("cache-backend")),
			)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return runServer(cmd.Context(), cfg)
		},
	}
	cmd.Flags().Int("port", 8080, "listen port")
	cmd.Flags().String("mode", "debug", "gin mode (debug|release)")
	cmd.Flags().String("invite-backend", "postgres", "invitation store (postgres|redis|mongo|memory)")
	cmd.Flags().String("cache-backend", "memory", "response cache (memory|redis)")
	return cmd
}

func runServer(ctx context.Context, cfg *config.Config) error {
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Gateway.APIKey == "" {
		logger.Warn("gateway.api_key is empty; AI endpoints will fail until GATEWAY_API_KEY is set")
	}
	if cfg.JWT.SigningKey == "" {
		return errors.New("jwt.signing_key must be set")
	}

	// 1. Metrics
	var metricsHandler http.Handler
	gatewayMetrics := gateway.NewMetrics(nil)
	if cfg.Metrics.Enabled {
		exporter, err := otelprom.New()
		if err != nil {
			return fmt.Errorf("create prometheus exporter: %w", err)
		}
		provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
		defer func() { _ = provider.Shutdown(context.Background()) }()
		otel.SetMeterProvider(provider)

		gatewayMetrics = gateway.NewMetrics(provider.Meter("github.com/MAVERICK-VF142/Drx.MediMate/internal/gateway"))
		metricsHandler = promhttp.Handler()
	}

	// 2. Storage
	stores := newBackends(cfg, logger)
	defer stores.Close()

	invitations, err := stores.invitationRepository(ctx)
	if err != nil {
		return fmt.Errorf("open invitation store: %w", err)
	}
	logger.Info("invitation store ready", zap.String("backend", cfg.Invite.Backend))

	responses, err := stores.responseCache()
	if err != nil {
		return fmt.Errorf("open response cache: %w", err)
	}
	logger.Info("response cache ready", zap.String("backend", cfg.Cache.Backend),
		zap.Duration("ttl", cfg.Cache.TTL), zap.Int("max_entries", cfg.Cache.MaxEntries))

	// 3. Gateway
	caller := gateway.NewOpenAICaller(gateway.OpenAIConfig{
		BaseURL: cfg.Gateway.BaseURL,
		APIKey:  cfg.Gateway.APIKey,
		Model:   cfg.Gateway.Model,
	})
	gw := gateway.New(caller, gateway.Config{
		MaxRetries:     cfg.Gateway.MaxRetries,
		BaseDelay:      cfg.Gateway.BaseDelay,
		AttemptTimeout: cfg.Gateway.AttemptTimeout,
	}, gateway.WithLogger(logger.Named("gateway")), gateway.WithMetrics(gatewayMetrics))

	// 4. Services and handlers
	jwtManager := jwtpkg.NewManager(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.AccessTokenTTL)
	inviteService := service.NewInviteService(invitations, cfg.Invite.TTL, nil, logger.Named("invite"))
	assistantService := service.NewAssistantService(gw, responses, logger.Named("assistant"))

	router := handler.SetupRouter(cfg, logger, jwtManager, handler.Handlers{
		Assistant:  handler.NewAssistantHandler(assistantService, logger),
		Invitation: handler.NewInvitationHandler(inviteService, logger),
		Admin:      handler.NewAdminHandler(inviteService, logger),
		Metrics:    metricsHandler,
	})

	// 5. HTTP server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server exited gracefully")
	return nil
}
