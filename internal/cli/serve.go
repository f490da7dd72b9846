package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"stationers/internal/admin"
	"stationers/internal/cart"
	"stationers/internal/catalog"
	"stationers/internal/checkout"
	"stationers/internal/config"
	httpapi "stationers/internal/http"
	"stationers/internal/query"
	"stationers/internal/remote"
)

const sessionSweepInterval = 10 * time.Minute

type ServeOptions struct {
	*RootOptions
	Addr       string
	BackendURL string
	RedisAddr  string
}

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the storefront API",
		Long: `Run the storefront API: catalogue, cart, checkout and order administration.

Without a backend URL the reference backend runs in-process with an empty
in-memory catalogue, which is seeded on the first catalogue visit.

Example:
  stationers serve
  stationers serve --backend-url http://localhost:9091 --redis-addr localhost:6379`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.RootOptions, cmd, func(c *config.Config) {
				if cmd.Flags().Changed("addr") {
					c.Storefront.Addr = opts.Addr
				}
				if cmd.Flags().Changed("backend-url") {
					c.Backend.URL = opts.BackendURL
				}
				if cmd.Flags().Changed("redis-addr") {
					c.Redis.Addr = opts.RedisAddr
				}
			})
			if err != nil {
				return err
			}
			return runStorefront(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().StringVar(&opts.BackendURL, "backend-url", "", "reference backend base URL; empty runs it in-process")
	cmd.Flags().StringVar(&opts.RedisAddr, "redis-addr", "", "Redis address for the shared query cache; empty keeps it in memory")

	return cmd
}

func runStorefront(ctx context.Context, cfg *config.Config) error {
	logger, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		backend remote.Backend
		gate    remote.Gate
	)
	if cfg.Backend.URL == "" {
		backend, gate = remote.NewInMemory(), remote.AlwaysReady
		logger.Info("using in-process backend")
	} else {
		client := remote.NewClient(cfg.Backend.URL, cfg.Backend.Timeout)
		backend = client
		gate = remote.Dial(ctx, client, cfg.Backend.DialMaxInterval, logger)
		logger.Info("connecting to backend", "url", cfg.Backend.URL)
	}

	store, closeStore := newStore(ctx, cfg.Redis, logger)
	defer closeStore()

	qc := query.NewClient(store, gate, query.WithLogger(logger))
	hooks := query.NewHooks(qc, backend, query.Policies{
		Products: query.Policy{StaleTime: cfg.Cache.ProductsStaleTime, Retries: cfg.Cache.Retries, RetryDelay: cfg.Cache.RetryDelay},
		Orders:   query.Policy{StaleTime: cfg.Cache.OrdersStaleTime, Retries: cfg.Cache.Retries, RetryDelay: cfg.Cache.RetryDelay},
	})

	sessions := cart.NewSessions(cfg.Storefront.SessionIdleTTL)
	go sessions.Run(ctx, sessionSweepInterval)

	srv := httpapi.NewServer(httpapi.Deps{
		Hooks:    hooks,
		Catalog:  catalog.New(hooks, logger),
		Sessions: sessions,
		Checkout: checkout.NewService(hooks),
		Admin:    admin.New(hooks),
		Gate:     gate,
		Logger:   logger,
	})

	err = serve(ctx, &http.Server{
		Addr:              cfg.Storefront.Addr,
		Handler:           otelhttp.NewHandler(srv.Engine(), "storefront"),
		ReadHeaderTimeout: 10 * time.Second,
	}, cfg.Storefront.ShutdownTimeout, logger)
	qc.Wait()
	return err
}

func newStore(ctx context.Context, cfg config.Redis, logger *slog.Logger) (query.Store, func()) {
	if cfg.Addr == "" {
		return query.NewMemoryStore(), func() {}
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	if err := client.Ping(ctx).Err(); err != nil {
		// cache errors are treated as misses, so the storefront still works
		logger.Warn("redis not reachable, reads will go to the backend", "addr", cfg.Addr, "error", err)
	} else {
		logger.Info("using redis query cache", "addr", cfg.Addr, "namespace", cfg.Namespace)
	}
	return query.NewRedisStore(client, cfg.Namespace, cfg.TTL), func() { _ = client.Close() }
}

// serve runs srv until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		return err
	}
	logger.Info("server stopped")
	return nil
}
