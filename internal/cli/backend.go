package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"stationers/internal/backend"
	"stationers/internal/config"
	"stationers/internal/repository"
	"stationers/internal/service"
)

type BackendOptions struct {
	*RootOptions
	Addr string
	Seed bool
}

func NewBackendCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BackendOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "backend",
		Short:         "Run the reference product and order API",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.RootOptions, cmd, func(c *config.Config) {
				if cmd.Flags().Changed("addr") {
					c.Backend.Addr = opts.Addr
				}
			})
			if err != nil {
				return err
			}
			return runBackend(cmd.Context(), cfg, opts.Seed)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default :9091)")
	cmd.Flags().BoolVar(&opts.Seed, "seed", false, "seed the catalogue on start")

	return cmd
}

func runBackend(ctx context.Context, cfg *config.Config, seed bool) error {
	logger, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := repository.NewMemoryStore()
	ordersRepo := repository.NewMemoryOrders(store)
	tx := repository.NewMemoryTx(store)

	productsSvc := service.NewProductService(store, tx)
	ordersSvc := service.NewOrderService(store, ordersRepo, tx)

	if seed {
		n, err := productsSvc.Seed(ctx)
		if err != nil {
			return err
		}
		logger.Info("catalogue seeded", "products", n)
	}

	srv := backend.NewServer(productsSvc, ordersSvc)
	return serve(ctx, &http.Server{
		Addr:              cfg.Backend.Addr,
		Handler:           otelhttp.NewHandler(srv.Engine(), "backend"),
		ReadHeaderTimeout: 10 * time.Second,
	}, cfg.Storefront.ShutdownTimeout, logger)
}
