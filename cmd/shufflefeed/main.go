// Command shufflefeed serves randomized, session-stable listings of demo
// posts and communities stored in SQLite.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goliatone/go-repository-shuffle/cache"
	"github.com/goliatone/go-repository-shuffle/pkg/di"
	"github.com/goliatone/go-repository-shuffle/shuffle"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:           "shufflefeed",
		Short:         "Serve randomized, session-stable listings",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if addr != "" {
				cfg.Addr = addr
			}

			return serve(cmd.Context(), cfg, newLogger(cfg.LogLevel))
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address, overrides SHUFFLE_ADDR")
	cmd.AddCommand(newSeedCommand())
	return cmd
}

func newSeedCommand() *cobra.Command {
	var communities, postsPer int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the schema and insert demo data",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			cfg.Seed = false

			db, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			inserted, err := seed(cmd.Context(), db, communities, postsPer)
			if err != nil {
				return err
			}
			if !inserted {
				fmt.Fprintln(cmd.OutOrStdout(), "database already has data, nothing seeded")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d communities with %d posts each\n", communities, postsPer)
			return nil
		},
	}

	cmd.Flags().IntVar(&communities, "communities", defaultCommunities, "number of communities")
	cmd.Flags().IntVar(&postsPer, "posts", defaultPostsPer, "posts per community")
	return cmd
}

func serve(ctx context.Context, cfg Config, logger *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	container, closeCache, err := newContainer(cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	if err := registerRoutes(router, container, db, logger); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", cfg.Addr).Info("listening")
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

const (
	defaultCommunities = 5
	defaultPostsPer    = 40
)

func openDB(ctx context.Context, cfg Config) (*bun.DB, error) {
	sqldb, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		return nil, err
	}
	// shared in-memory databases vanish when the last connection closes
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	if err := createSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	if cfg.Seed {
		if _, err := seed(ctx, db, defaultCommunities, defaultPostsPer); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

// newContainer picks the Redis backend when SHUFFLE_REDIS_URL is set.
func newContainer(cfg Config, logger *logrus.Logger) (*di.Container, func(), error) {
	cacheCfg := cache.DefaultConfig()
	cacheCfg.TTL = cfg.TTL
	opts := []shuffle.Option{shuffle.WithLogger(logger)}

	if cfg.RedisURL == "" {
		container, err := di.NewContainer(cacheCfg, opts...)
		return container, func() {}, err
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	client := redis.NewClient(redisOpts)

	container, err := di.NewRedisContainer(client, cacheCfg, opts...)
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	logger.WithField("addr", redisOpts.Addr).Info("using redis for shuffle sessions")
	return container, func() { client.Close() }, nil
}
