// File: cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log" // Standard log for messages before zap is available
	"os"
	"os/signal"
	"syscall"
	"time"

	"property_connect_backend/internal/app"
	"property_connect_backend/internal/config"
	"property_connect_backend/internal/platform/database"
	platformElasticsearch "property_connect_backend/internal/platform/elasticsearch"
	"property_connect_backend/internal/platform/logger"
	"property_connect_backend/internal/property"
	"property_connect_backend/internal/search"

	"go.uber.org/zap"
)

const usage = `Usage: server [command] [flags]

Commands:
  serve            start the HTTP server (default)
  migrate          create or update the database tables and exit
  sync-properties  push every property to Elasticsearch and exit
`

func main() {
	cmd := "serve"
	args := os.Args[1:]
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		startServer()
	case "migrate":
		if err := runMigrate(); err != nil {
			log.Fatalf("FATAL: migration failed: %v", err)
		}
	case "sync-properties":
		syncCmd := flag.NewFlagSet("sync-properties", flag.ExitOnError)
		batchSize := syncCmd.Int("batch-size", 100, "Batch size for syncing properties")
		esRefresh := syncCmd.String("es-refresh", "false", "Elasticsearch refresh policy (true, false, wait_for)")
		_ = syncCmd.Parse(args)
		if err := runPropertySync(*batchSize, *esRefresh); err != nil {
			log.Fatalf("FATAL: property synchronization failed: %v", err)
		}
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
}

func startServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	server, cleanup, err := initializeServer(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize server: %v", err)
	}
	defer cleanup()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Printf("INFO: Received signal '%s'. Shutting down server...", sig)
	case err := <-serverErr:
		if err != nil {
			log.Printf("ERROR: Server stopped unexpectedly: %v", err)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Server forced to shutdown due to error: %v", err)
	} else {
		log.Println("INFO: Server shutdown complete.")
	}
}

// loadTooling loads config and logger for the one-shot commands.
func loadTooling() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	appLogger, err := logger.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize logger: %w", err)
	}
	return cfg, appLogger, nil
}

func runMigrate() error {
	cfg, appLogger, err := loadTooling()
	if err != nil {
		return err
	}
	defer appLogger.Sync() //nolint:errcheck

	db, err := database.NewGORM(cfg, appLogger)
	if err != nil {
		return err
	}
	defer database.CloseGORMDB(db, appLogger)

	if err := database.Migrate(db, appLogger, app.Models()...); err != nil {
		return err
	}
	appLogger.Info("Database migration completed")
	return nil
}

// runPropertySync rebuilds the Elasticsearch index from the database in batches.
func runPropertySync(batchSize int, esRefresh string) error {
	switch esRefresh {
	case "true", "false", "wait_for":
	default:
		return fmt.Errorf("invalid -es-refresh %q: want true, false or wait_for", esRefresh)
	}

	cfg, appLogger, err := loadTooling()
	if err != nil {
		return err
	}
	defer appLogger.Sync() //nolint:errcheck

	esClient, err := platformElasticsearch.NewClient(cfg, appLogger)
	if err != nil {
		return err
	}
	if esClient == nil {
		return errors.New("ELASTICSEARCH_URL is not set")
	}

	db, err := database.NewGORM(cfg, appLogger)
	if err != nil {
		return err
	}
	defer database.CloseGORMDB(db, appLogger)

	ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()

	if err := platformElasticsearch.CreatePropertiesIndexIfNotExists(ctx, esClient, appLogger); err != nil {
		return err
	}

	indexer := search.NewIndexer(esClient, appLogger).WithRefresh(esRefresh)
	synced, err := property.Reindex(ctx, property.NewGORMRepository(db), indexer, batchSize, appLogger.Named("property_sync"))
	if err != nil {
		return err
	}
	appLogger.Info("Property synchronization completed", zap.Int("properties", synced))
	return nil
}
