package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yourorg/pdf2json/pkg/api"
	"github.com/yourorg/pdf2json/pkg/blobclient"
	"github.com/yourorg/pdf2json/pkg/config"
	"github.com/yourorg/pdf2json/pkg/httpservice"
	"github.com/yourorg/pdf2json/pkg/jwt"
	"github.com/yourorg/pdf2json/pkg/logging"
	"github.com/yourorg/pdf2json/pkg/servicebusclient"
	"github.com/yourorg/pdf2json/pkg/telemetry"
	"github.com/yourorg/pdf2json/pkg/upload"
)

const (
	shutdownTimeout = 30 * time.Second
	sweepInterval   = 10 * time.Minute
	// Staged uploads older than this were left behind by a crash.
	sweepMaxAge = time.Hour
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP conversion service",
	Long:  "Serve POST /convert, the browser client under / and GET /health.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (overrides HTTP_PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(func(c *config.Config) {
		if servePort != 0 {
			c.HTTPPort = servePort
		}
	})
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	defer logging.Sync(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting pdf2json",
		logging.NewField("version", cfg.AppVersion),
		logging.NewField("environment", cfg.Environment),
		logging.NewField("upload_store", cfg.UploadStore),
	)

	store, err := newUploadStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	events, err := newEventPublisher(cfg, logger)
	if err != nil {
		return err
	}
	if events != nil {
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := events.Close(closeCtx); err != nil {
				logger.Warn("Failed to close event publisher", logging.NewField("error", err))
			}
		}()
	}

	newRelic, err := telemetry.NewNewRelicClient(telemetry.NewRelicConfig{
		LicenseKey:  cfg.NewRelicLicenseKey,
		AppName:     cfg.NewRelicAppName,
		ServiceName: cfg.AppName,
		Enabled:     cfg.NewRelicLicenseKey != "",
	}, logger)
	if err != nil {
		return err
	}
	defer newRelic.Shutdown(10 * time.Second)

	slack := telemetry.NewSlackClient(telemetry.SlackConfig{
		WebhookURL:  cfg.SlackWebhookURL,
		ServiceName: cfg.AppName,
		Enabled:     cfg.SlackWebhookURL != "",
	}, logger)

	auth, err := newAuth(cfg, logger)
	if err != nil {
		return err
	}

	handler := api.NewConvertHandler(api.Options{
		Store:     store,
		PublicDir: cfg.PublicDir,
		Logger:    logger,
		Auth:      auth,
		Events:    events,
		Recorder:  newRelic,
	})

	server, err := httpservice.NewServer(httpservice.ServerConfig{
		Port:                   cfg.HTTPPort,
		ReadTimeout:            time.Duration(cfg.HTTPReadTimeout) * time.Second,
		WriteTimeout:           time.Duration(cfg.HTTPWriteTimeout) * time.Second,
		IdleTimeout:            time.Duration(cfg.HTTPIdleTimeout) * time.Second,
		Logger:                 logger,
		ServiceName:            cfg.AppName,
		RateLimitRPS:           cfg.RateLimitRPS,
		RateLimitBurst:         cfg.RateLimitBurst,
		AllowedOrigins:         cfg.CORSOrigins,
		MaxBodySize:            cfg.MaxUploadBytes,
		SlowRequestThresholdMs: cfg.SlowRequestThresholdMs,
		Telemetry:              newRelic,
		Slack:                  slack,
		Extra:                  []gin.HandlerFunc{newRelic.Middleware()},
	}, handler)
	if err != nil {
		return err
	}

	go sweepUploads(ctx, store, logger)

	return server.Run(ctx, shutdownTimeout)
}

func newUploadStore(ctx context.Context, cfg *config.Config, logger logging.Logger) (upload.Store, error) {
	if cfg.UploadStore != "azure" {
		store, err := upload.NewDiskStore(cfg.UploadDir)
		if err != nil {
			return nil, err
		}
		logger.Info("Staging uploads on disk", logging.NewField("dir", store.Dir()))
		return store, nil
	}

	client, err := blobclient.NewAzureBlobClient(ctx, blobclient.AzureConfig{
		AccountName:        cfg.BlobStorageAccountName,
		AccountKey:         cfg.BlobStorageAccountKey,
		Container:          cfg.BlobContainer,
		UseManagedIdentity: cfg.BlobUseManagedIdentity,
	}, logger)
	if err != nil {
		return nil, err
	}
	return upload.NewBlobStore(client, "uploads/"), nil
}

// newEventPublisher returns nil when no Service Bus namespace is configured.
func newEventPublisher(cfg *config.Config, logger logging.Logger) (servicebusclient.Publisher, error) {
	if cfg.ServiceBusNamespace == "" {
		logger.Info("Conversion events disabled (no Service Bus namespace configured)")
		return nil, nil
	}
	return servicebusclient.NewAzurePublisher(servicebusclient.AzureConfig{
		Namespace: cfg.ServiceBusNamespace,
		KeyName:   cfg.ServiceBusKeyName,
		KeyValue:  cfg.ServiceBusKeyValue,
		Queue:     cfg.ServiceBusQueue,
	}, logger)
}

func newAuth(cfg *config.Config, logger logging.Logger) (gin.HandlerFunc, error) {
	if !cfg.RequireAuth {
		return nil, nil
	}
	tokens, err := newTokenService(cfg, logger)
	if err != nil {
		return nil, err
	}
	return jwt.RequireToken(tokens, jwt.ScopeConvert, logger), nil
}

func newTokenService(cfg *config.Config, logger logging.Logger) (*jwt.TokenService, error) {
	tokens, err := jwt.NewTokenService(jwt.Config{
		SecretKey: cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
		TTL:       time.Duration(cfg.TokenTTLMinutes) * time.Minute,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("JWT_SECRET: %w", err)
	}
	return tokens, nil
}

func sweepUploads(ctx context.Context, store upload.Store, logger logging.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.Sweep(ctx, sweepMaxAge)
			if err != nil {
				logger.Warn("Upload sweep failed", logging.NewField("error", err))
				continue
			}
			if n > 0 {
				logger.Info("Removed stale uploads", logging.NewField("count", n))
			}
		}
	}
}
