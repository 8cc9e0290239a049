package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/smsrates/pricefeed/internal/config"
	"github.com/smsrates/pricefeed/internal/database"
	"github.com/smsrates/pricefeed/internal/handler"
	"github.com/smsrates/pricefeed/internal/mailbox"
	"github.com/smsrates/pricefeed/internal/middleware"
	"github.com/smsrates/pricefeed/internal/model"
	"github.com/smsrates/pricefeed/internal/repository"
	"github.com/smsrates/pricefeed/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "pricefeed",
		Short:         "Supplier price-list ingestion service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		serveCmd(),
		ingestCmd(),
		templatesCmd(),
		seedCmd(),
		mailboxTestCmd(),
		migrateCmd(),
	)

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server and the ingestion scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			gin.SetMode(cfg.GinMode)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			if cfg.AutoMigrate {
				if err := database.RunMigrations(cfg.DatabaseURL()); err != nil {
					return fmt.Errorf("run migrations: %w", err)
				}
			}

			ingest := buildIngest(pool, cfg)
			scheduler := service.NewScheduler(ingest, cfg.RefreshInterval, cfg.IngestLimit)

			router := buildRouter(pool, cfg, ingest)
			srv := &http.Server{
				Addr:         ":" + cfg.Port,
				Handler:      router,
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 30 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				log.Info().Str("port", cfg.Port).Msg("starting server")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					return err
				}
				return nil
			})
			g.Go(func() error {
				scheduler.Run(gctx)
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})

			if err := g.Wait(); err != nil {
				return err
			}
			log.Info().Msg("server exited")
			return nil
		},
	}
}

func ingestCmd() *cobra.Command {
	var (
		dryRun bool
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Run one ingestion cycle",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			ctx := cmd.Context()

			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			if limit <= 0 {
				limit = cfg.IngestLimit
			}
			stats, err := buildIngest(pool, cfg).RunCycle(ctx, limit, dryRun)
			if err != nil {
				return err
			}
			fmt.Printf("total=%d inserted=%d updated=%d identical=%d errors=%d dry_run=%t\n",
				stats.Total, stats.Inserted, stats.Updated, stats.Identical, stats.Errors, stats.DryRun)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and count only, write nothing")
	cmd.Flags().IntVar(&limit, "limit", 0, "max messages to fetch (default INGEST_LIMIT)")
	return cmd
}

func templatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List enabled parsing templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			ctx := cmd.Context()

			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			tpls, err := repository.NewTemplateRepository(pool).ListEnabled(ctx)
			if err != nil {
				return err
			}
			for _, t := range tpls {
				fmt.Printf("[%d] %s (supplier_id=%d, connection_id=%d)\n",
					t.ID, t.Name, t.SupplierID, t.ConnectionID)
			}
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed a demonstration supplier, connection and template",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			ctx := cmd.Context()

			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := database.RunMigrations(cfg.DatabaseURL()); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
			return database.SeedDemo(ctx, pool)
		},
	}
}

func mailboxTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mailbox-test",
		Short: "Test mailbox connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if !cfg.MailboxConfigured() {
				return fmt.Errorf("mailbox not configured: set IMAP_HOST, IMAP_USER, IMAP_PASSWORD")
			}

			msgs, err := newMailboxClient(cfg).Fetch(cmd.Context(), 5)
			if err != nil {
				return err
			}
			fmt.Printf("mailbox OK: %d messages\n", len(msgs))
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	var down bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply (or roll back) database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if down {
				return database.RollbackMigrations(cfg.DatabaseURL())
			}
			return database.RunMigrations(cfg.DatabaseURL())
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "roll back all migrations")
	return cmd
}

func openPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := database.NewPool(connectCtx, cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return pool, nil
}

func newMailboxClient(cfg *config.Config) *mailbox.Client {
	return mailbox.NewClient(mailbox.Config{
		Host:     cfg.IMAPHost,
		Port:     cfg.IMAPPort,
		User:     cfg.IMAPUser,
		Password: cfg.IMAPPassword,
		Folder:   cfg.IMAPFolder,
		SSL:      cfg.IMAPSSL,
	})
}

func buildIngest(pool *pgxpool.Pool, cfg *config.Config) *service.IngestService {
	templateRepo := repository.NewTemplateRepository(pool)
	networkRepo := repository.NewNetworkRepository(pool)
	offerRepo := repository.NewOfferRepository(pool)
	eventRepo := repository.NewEventRepository(pool)

	resolver := service.NewResolverService(networkRepo)
	offerSvc := service.NewOfferService(offerRepo)

	return service.NewIngestService(
		&guardedTemplates{cfg: cfg, repo: templateRepo},
		newMailboxClient(cfg),
		resolver,
		offerSvc,
		eventRepo,
	)
}

// guardedTemplates fails a cycle up front when the mailbox is not configured,
// before any templates load or network connections are attempted.
type guardedTemplates struct {
	cfg  *config.Config
	repo *repository.TemplateRepository
}

func (g *guardedTemplates) ListEnabled(ctx context.Context) ([]model.ParsingTemplate, error) {
	if !g.cfg.MailboxConfigured() {
		return nil, fmt.Errorf("mailbox not configured: set IMAP_HOST, IMAP_USER, IMAP_PASSWORD")
	}
	return g.repo.ListEnabled(ctx)
}

func buildRouter(pool *pgxpool.Pool, cfg *config.Config, ingest *service.IngestService) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())
	router.Use(gin.Recovery())

	healthHandler := handler.NewHealthHandler(pool)
	router.GET("/health", healthHandler.Health)

	supplierHandler := handler.NewSupplierHandler(repository.NewSupplierRepository(pool))
	templateHandler := handler.NewTemplateHandler(repository.NewTemplateRepository(pool))
	offerHandler := handler.NewOfferHandler(repository.NewOfferRepository(pool))
	ingestHandler := handler.NewIngestHandler(ingest, repository.NewEventRepository(pool), cfg.IngestLimit)

	api := router.Group("/api/v1")
	{
		api.GET("/suppliers", supplierHandler.List)
		api.POST("/suppliers", supplierHandler.Create)
		api.GET("/suppliers/:id/connections", supplierHandler.ListConnections)
		api.GET("/templates", templateHandler.List)
		api.POST("/templates", templateHandler.Create)
		api.PATCH("/templates/:id/enabled", templateHandler.SetEnabled)
		api.GET("/offers", offerHandler.List)
		api.GET("/offers/:id/history", offerHandler.History)
		api.POST("/ingest/run", ingestHandler.Run)
		api.GET("/events", ingestHandler.Events)
	}

	return router
}
