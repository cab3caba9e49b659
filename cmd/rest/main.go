package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"safebites-be/internal/bootstrap"
	"safebites-be/internal/config"
	"safebites-be/internal/model"
	"safebites-be/internal/server"
	"safebites-be/internal/tracer"
	"safebites-be/pkg/database"

	"golang.org/x/sync/errgroup"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// Tracing is a no-op unless OTEL_ENABLED=true
	shutdownTracer, err := tracer.Init(context.Background(), cfg.Tracing, cfg.App.Environment)
	if err != nil {
		log.Printf("Warning: tracing disabled: %v", err)
	}
	defer shutdownTracer(context.Background())

	// 2. Initialize Database
	gormDB, err := database.NewGormDB(database.GormConfig{
		Driver:     cfg.Database.Driver,
		DSN:        cfg.Database.Connection,
		SQLitePath: cfg.Database.SQLitePath,
	})
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}
	// Postgres schemas come from cmd/migrate; the embedded database migrates itself.
	if !database.IsPostgres(gormDB) {
		if err := gormDB.AutoMigrate(model.CoreModels()...); err != nil {
			log.Panicf("Unable to migrate SQLite schema: %v", err)
		}
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. Start Background Services
	if cfg.Vector.RebuildOnStartup {
		go func() {
			rebuilt, err := container.IndexService.EnsureIndex(ctx)
			if err != nil {
				container.Logger.Error("Main", "Vector index check failed", map[string]interface{}{"error": err.Error()})
				return
			}
			if rebuilt {
				container.Logger.Info("Main", "Vector index rebuilt from database", nil)
			}
		}()
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return container.ConsumerService.Consume(gctx)
	})
	g.Go(srv.Run)
	g.Go(func() error {
		<-gctx.Done()
		return srv.Shutdown()
	})

	// 6. Run until a signal or a fatal error
	if err := g.Wait(); err != nil {
		container.Logger.Error("Main", "Shutting down", map[string]interface{}{"error": err.Error()})
	}
}
