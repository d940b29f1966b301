package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	httpadapter "jobfolio/internal/adapter/http"
	repo "jobfolio/internal/adapter/repository"
	"jobfolio/internal/config"
	"jobfolio/internal/editor"
	"jobfolio/internal/infrastructure/migration"
	"jobfolio/internal/model"
	"jobfolio/internal/render"
	"jobfolio/internal/schema"
	"jobfolio/internal/usecase"
	"jobfolio/pkg/backend"
	infra "jobfolio/pkg/infrastructure"
)

func main() {
	configPath := flag.String("config", "", "path to jobfolio.yaml")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("warning: reading .env: %v", err)
	}

	v, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg, err := config.Decode(v)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := config.NewLogger(v)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	client := backend.NewClient(cfg.Backend.URL, cfg.Backend.Timeout, logger.Named("backend"))

	var store usecase.Store = client
	var standalone repo.PortfolioRepo
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := infra.NewPool(ctx, cfg.Store.Postgres.DSN)
		if err != nil {
			return err
		}
		if err := migration.RunMigrations(ctx, pool, logger.Named("migration")); err != nil {
			pool.Close()
			return err
		}
		standalone = repo.NewPostgresRepo(pool)
	case config.DriverMongo:
		r, err := repo.NewMongoRepo(ctx, cfg.Store.Mongo.URI, cfg.Store.Mongo.Database)
		if err != nil {
			return err
		}
		standalone = r
	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Store.SQLite.Path), 0o755); err != nil {
			return fmt.Errorf("create sqlite dir: %w", err)
		}
		r, err := repo.NewSQLiteRepo(ctx, cfg.Store.SQLite.Path)
		if err != nil {
			return err
		}
		standalone = r
	}
	if standalone != nil {
		store = standalone
		defer standalone.Close(context.Background())
	}
	logger.Info("portfolio store ready", zap.String("driver", cfg.Store.Driver))

	// generation is bounded by the generator's own deadline, not the client's
	genClient := backend.NewClient(cfg.Backend.URL, 0, logger.Named("generation"))
	genOpts := []usecase.GeneratorOption{
		usecase.WithTimeout(cfg.Generation.Timeout),
		usecase.WithRateLimit(cfg.Generation.Rate, cfg.Generation.Burst),
		usecase.WithGeneratorLogger(logger.Named("generation")),
	}
	if standalone != nil {
		genOpts = append(genOpts, usecase.WithCreator(standalone))
	}

	h := httpadapter.NewHandler(httpadapter.Deps{
		Store:        store,
		Repo:         standalone,
		Generator:    usecase.NewGenerator(genClient, genOpts...),
		Snapshotter:  infra.NewChromedpRenderer(cfg.Chrome.Path, cfg.Chrome.Timeout, logger.Named("chrome")),
		Renderer:     render.NewRenderer(logger.Named("render")),
		Log:          logger,
		DefaultWidth: cfg.Render.DefaultWidth,
		EditorOpts: []editor.Option{
			editor.WithValidator(model.ValidateDraftDocument),
			editor.WithDenormalizeOptions(schema.DenormalizeOptions{
				DefaultRole:          cfg.Denormalize.DefaultRole,
				DefaultSchemaVersion: cfg.Denormalize.DefaultSchemaVersion,
			}),
		},
	})
	app := httpadapter.NewApp(h)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Server.Addr()))
		errCh <- app.Listen(cfg.Server.Addr())
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(sctx)
}
