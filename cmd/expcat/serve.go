package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"expcat/internal/amqp"
	"expcat/internal/cache"
	"expcat/internal/cli"
	"expcat/internal/config"
	apphttp "expcat/internal/http"
	"expcat/internal/log"
	"expcat/internal/middleware/ratelimit"
	"expcat/internal/middleware/security"
	"expcat/internal/services"
	"expcat/internal/session"
	ports "expcat/internal/sheets"
	gsheet "expcat/internal/sheets/google"
	mem "expcat/internal/sheets/memory"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web dashboard",
		Long: `Serve the upload form and dashboard over HTTP. Every setting can also be
given as an environment variable (PORT, SESSION_TTL, AMQP_URL, SHEETS_BACKEND, ...).`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	f := cmd.Flags()
	f.String("port", "8080", "HTTP listen port")
	f.Int("max-upload-mb", 10, "largest accepted upload in MB")
	f.Duration("session-ttl", 2*time.Hour, "idle time before a session is dropped")
	f.Int("session-max", 100, "sessions kept in memory")
	f.Int("uploads-per-minute", 20, "uploads and exports allowed per client per minute (0 disables)")
	f.String("amqp-url", "", "publish import events to this broker (amqp:// or amqps://)")
	f.String("sheets-backend", "", "spreadsheet export backend: memory or google (empty disables)")
	f.String("spreadsheet-id", "", "Google spreadsheet ID for the google backend")
	f.StringSlice("trusted-proxy", nil, "CIDR of a reverse proxy whose X-Forwarded-For is trusted (repeatable)")
	bindFlags(cmd, map[string]string{
		config.KeyPort:             "port",
		config.KeyMaxUploadMB:      "max-upload-mb",
		config.KeySessionTTL:       "session-ttl",
		config.KeySessionMax:       "session-max",
		config.KeyUploadsPerMinute: "uploads-per-minute",
		config.KeyAMQPURL:          "amqp-url",
		config.KeySheetsBackend:    "sheets-backend",
		config.KeySpreadsheetID:    "spreadsheet-id",
	})
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := cli.LoadConfig(v)
	if err != nil {
		return err
	}
	logger, err := cli.SetupLogger(cfg, os.Stdout)
	if err != nil {
		return err
	}

	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()

	sweeper := cache.NewSweeper(logger.WithComponent(log.ComponentCache))
	sessionLog := logger.WithComponent(log.ComponentSession)
	sessionCache := cache.NewLRUCache[*session.Session](cfg.SessionMax, cfg.SessionTTL,
		cache.WithEvictHook[*session.Session](func(id string, _ *session.Session) {
			sessionLog.Debug("Session evicted", log.FieldSessionID, id)
		}))
	sessions := session.NewStore(sessionCache, cfg.SessionTTL, cfg.CookieSecure)
	limiter := ratelimit.NewLimiter(cfg.UploadsPerMinute)
	sweeper.Register(sessionCache)
	sweeper.Register(limiter)

	opts, err := outboundAdapters(ctx, cfg, logger)
	if err != nil {
		return err
	}
	svc := services.NewTransactionService(sessions, logger, opts...)
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("Failed to close notifier", log.FieldError, err)
		}
	}()

	ips := security.NewClientIPResolver()
	proxies, _ := cmd.Flags().GetStringSlice("trusted-proxy")
	for _, cidr := range proxies {
		if err := ips.AddTrustedProxy(cidr); err != nil {
			return fmt.Errorf("trusted proxy %q: %w", cidr, err)
		}
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:           cfg.Addr(),
		MaxUploadBytes: cfg.MaxUploadBytes,
		SheetName:      cfg.GoogleSheetName,
		Limiter:        limiter,
		ClientIPs:      ips,
		Logger:         logger,
	}, svc, sessions)

	sweeper.Start(cfg.CleanupInterval)
	defer sweeper.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting expcat server", log.FieldAddr, cfg.Addr(),
			"sheets_backend", cfg.SheetsBackend, "amqp", cfg.AMQPURL != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", log.FieldOperation, log.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", log.FieldError, err)
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}

// outboundAdapters connects the optional import-event publisher and
// spreadsheet exporter.
func outboundAdapters(ctx context.Context, cfg *config.Config, logger *log.Logger) ([]services.Option, error) {
	var (
		opts []services.Option
		pub  *amqp.Publisher
	)
	if cfg.AMQPURL != "" {
		var err error
		pub, err = amqp.NewPublisher(ctx, amqp.Config{
			URL:          cfg.AMQPURL,
			ExchangeName: cfg.AMQPExchange,
			QueueName:    cfg.AMQPQueue,
		}, cfg.AMQPConnectAttempts, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to AMQP: %w", err)
		}
		opts = append(opts, services.WithNotifier(pub))
	}

	var exporter ports.Exporter
	switch cfg.SheetsBackend {
	case "google":
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		}, logger)
		if err != nil {
			if pub != nil {
				_ = pub.Close()
			}
			return nil, fmt.Errorf("initialize Google Sheets client: %w", err)
		}
		exporter = client
		logger.Info("Initialized Google Sheets export", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	case "memory":
		exporter = mem.New()
		logger.Info("Initialized in-memory sheets export")
	}
	if exporter != nil {
		opts = append(opts, services.WithSheetsExporter(exporter))
	}
	return opts, nil
}
