package main

import (
	"context"
	"fmt"
	"log/slog"

	"spearch/pkg/config"
	"spearch/pkg/db"
	"spearch/pkg/pipeline"
)

// openSink connects the configured store and prepares its schema.
// The returned function closes the connection.
func openSink(ctx context.Context, cfg *config.Config, logger *slog.Logger) (pipeline.Sink, func(), error) {
	pool := db.PoolConfig{MaxOpenConns: cfg.DBMaxOpenConns}

	switch cfg.Store {
	case config.StoreMemory:
		logger.Warn("using the in-memory store, nothing will be persisted")
		return db.NewMemoryStore(), func() {}, nil

	case config.StorePostgres:
		client := db.NewPostgresClient(db.PostgresConfig{DSN: cfg.PostgresDSN, Pool: pool})
		if err := client.Connect(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		closeFn := closeWithTimeout(func(context.Context) error { return client.Close() }, logger)
		if err := migrateSchema(client, logger); err != nil {
			closeFn()
			return nil, nil, err
		}
		return db.NewSQLSink(client), closeFn, nil

	case config.StoreSupabase:
		client := db.NewSupabaseClient(db.SupabaseConfig{
			ConnectionString: cfg.SupabaseConnectionString,
			SupabaseURL:      cfg.SupabaseURL,
			SupabaseKey:      cfg.SupabaseKey,
			Password:         cfg.SupabasePassword,
			Pool:             pool,
		})
		if err := client.Connect(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to connect to supabase: %w", err)
		}
		closeFn := closeWithTimeout(func(context.Context) error { return client.Close() }, logger)

		if !client.HasDirectDB() {
			logger.Info("no direct database access, using the Supabase REST API against the existing schema")
			return db.NewRESTSink(client.SDK()), closeFn, nil
		}
		if err := migrateSchema(client, logger); err != nil {
			closeFn()
			return nil, nil, err
		}
		return db.NewSQLSink(client), closeFn, nil

	case config.StoreMongo:
		client := db.NewClient(cfg.MongoURI, cfg.MongoDB)
		closeFn := closeWithTimeout(client.Close, logger)
		if err := client.Connect(ctx); err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		return client, closeFn, nil
	}

	return nil, nil, fmt.Errorf("%w: STORE=%q", config.ErrInvalidValue, cfg.Store)
}

func migrateSchema(provider db.DBProvider, logger *slog.Logger) error {
	version, err := db.Migrate(provider)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	logger.Info("schema ready", "version", version)
	return nil
}
