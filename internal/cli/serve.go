package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cafe-orders/internal/config"
	"cafe-orders/internal/domain"
	"cafe-orders/internal/infrastructure/repo"
	"cafe-orders/internal/logging"
	"cafe-orders/internal/server"
	"cafe-orders/internal/tables"
	"cafe-orders/internal/usecase"
)

type activityStore interface {
	Record(ctx context.Context, e domain.ActivityEntry) error
	ListActivity(ctx context.Context, n int) ([]domain.ActivityEntry, error)
}

// backend is one opened storage adapter seen through the interfaces the
// server needs.
type backend struct {
	orders   usecase.OrderRepo
	catalog  server.Catalog
	products repo.ProductStore
	activity activityStore
	close    func() error
}

func openBackend(cfg config.Config) (*backend, error) {
	switch cfg.Store {
	case "memory":
		s := repo.NewMemoryStore()
		return &backend{
			orders:   s,
			catalog:  s,
			products: s,
			activity: repo.NewMemoryActivityLog(0),
			close:    func() error { return nil },
		}, nil
	case "sqlite":
		s, err := repo.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &backend{orders: s, catalog: s, products: s, activity: s, close: s.Close}, nil
	case "postgres":
		s, err := repo.NewPostgresStore(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return &backend{orders: s, catalog: s, products: s, activity: s, close: s.Close}, nil
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}

type serveFlags struct {
	port        int
	store       string
	sqlitePath  string
	postgresDSN string
	noSeed      bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	f := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the order server",
		Long: `Run the HTTP order server on the configured store.

Flags override the config file and CAFE_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, rootOpts, f)
		},
	}
	cmd.Flags().IntVarP(&f.port, "port", "p", 0, "listen port")
	cmd.Flags().StringVar(&f.store, "store", "", "store backend (memory|sqlite|postgres)")
	cmd.Flags().StringVar(&f.sqlitePath, "sqlite", "", "SQLite database path")
	cmd.Flags().StringVar(&f.postgresDSN, "postgres-dsn", "", "Postgres connection string")
	cmd.Flags().BoolVar(&f.noSeed, "no-seed", false, "do not install the starter menu into an empty catalog")
	return cmd
}

func (f *serveFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("port") {
		cfg.Port = f.port
	}
	if cmd.Flags().Changed("store") {
		cfg.Store = f.store
	}
	if cmd.Flags().Changed("sqlite") {
		cfg.SQLitePath = f.sqlitePath
	}
	if cmd.Flags().Changed("postgres-dsn") {
		cfg.PostgresDSN = f.postgresDSN
	}
	if f.noSeed {
		cfg.SeedProducts = false
	}
}

func runServe(cmd *cobra.Command, opts *RootOptions, f *serveFlags) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	f.apply(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid config", err)
	}
	log := logging.New(cmd.ErrOrStderr(), cfg.LogJSON, opts.Verbose)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "open store", err)
	}
	defer func() {
		if err := b.close(); err != nil {
			log.Warn("close store", "err", err)
		}
	}()

	if cfg.SeedProducts {
		seeded, err := repo.Seed(ctx, b.products)
		if err != nil {
			return WrapExitError(ExitCommandError, "seed products", err)
		}
		if seeded {
			log.Info("installed starter menu", "products", len(repo.SeedProducts()))
		}
	}
	reg, err := tables.New(cfg.Tables...)
	if err != nil {
		return WrapExitError(ExitCommandError, "tables", err)
	}

	srv := server.New(cfg, server.Deps{
		Orders: &usecase.OrderService{
			Repo:     b.orders,
			Activity: b.activity,
			Tables:   reg,
			Log:      log,
		},
		Auth: &usecase.AuthService{
			JWTSecret:          cfg.JWTSecret,
			PasswordProtection: cfg.PasswordProtection,
			AdminPassword:      cfg.AdminPassword,
			RolePassword:       cfg.RolePassword,
			TTL:                cfg.TokenTTL,
		},
		Catalog:  b.catalog,
		Activity: b.activity,
		Tables:   reg,
		Log:      log,
	})
	return srv.Run(ctx)
}
