package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	api "github.com/promptform/promptform/internal/api/http"
	authmw "github.com/promptform/promptform/internal/auth/middleware"
	"github.com/promptform/promptform/internal/config"
	"github.com/promptform/promptform/internal/db"
	"github.com/promptform/promptform/internal/form"
	"github.com/promptform/promptform/internal/generator"
	"github.com/promptform/promptform/internal/grading"
	"github.com/promptform/promptform/internal/logging"
	"github.com/promptform/promptform/internal/submission"
	syncx "github.com/promptform/promptform/internal/sync"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			cfg := config.Load(envFile)
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.HTTPAddr = addr
			}
			if drv, _ := cmd.Flags().GetString("db"); drv != "" {
				cfg.DBDriver = drv
			}

			log, closer := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
			defer closer.Close()
			slog.SetDefault(log)

			return runServe(cmd.Context(), cfg, log)
		},
	}
	cmd.Flags().String("addr", "", "Listen address (overrides HTTP_ADDR)")
	cmd.Flags().String("db", "", "Storage driver: sqlite, postgres, mongo or memory (overrides DB_DRIVER)")
	return cmd
}

// backend is the storage selected by DB_DRIVER.
type backend struct {
	store  form.Store
	events syncx.Appender
	ready  func(ctx context.Context) error
	close  func(ctx context.Context) error
}

func openBackend(ctx context.Context, cfg config.Config, log *slog.Logger) (backend, error) {
	switch cfg.DBDriver {
	case "memory":
		return backend{
			store:  form.NewInMemoryStore(),
			events: syncx.NewMemoryLog(),
			close:  func(context.Context) error { return nil },
		}, nil

	case "mongo":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return backend{}, fmt.Errorf("mongo connect: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(ctx)
			return backend{}, fmt.Errorf("mongo ping: %w", err)
		}
		mdb := client.Database(cfg.MongoDB)
		store := form.NewMongoStore(mdb)
		if err := store.EnsureIndexes(ctx); err != nil {
			log.Warn("mongo index creation failed", "error", err)
		}
		return backend{
			store:  store,
			events: syncx.NewMongoEventRepo(mdb, cfg.SiteID),
			ready:  func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close:  client.Disconnect,
		}, nil

	default:
		dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
		if err != nil {
			return backend{}, fmt.Errorf("db open failed: %w", err)
		}
		return backend{
			store:  form.NewSQLStore(dbh, cfg.DBDriver),
			events: syncx.NewEventRepo(dbh, cfg.SiteID),
			ready:  dbh.PingContext,
			close:  func(context.Context) error { return dbh.Close() },
		}, nil
	}
}

func runServe(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	be, err := openBackend(openCtx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := be.close(closeCtx); err != nil {
			log.Warn("storage close failed", "error", err)
		}
	}()

	store := be.store
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(openCtx).Err(); err != nil {
			log.Warn("redis unavailable, form cache degraded", "addr", cfg.RedisAddr, "error", err)
		}
		store = form.NewCachedStore(store, form.NewRedisFormCache(rdb, cfg.CacheTTL), log)
	}

	engine := grading.NewEngine(grading.WithLogger(log))
	router := api.NewRouter(api.Deps{
		Store:       store,
		Submissions: submission.NewService(store, engine, be.events, log),
		Generator:   generator.NewClient(cfg.GeneratorURL, cfg.GeneratorTimeout),
		Auth:        authmw.NewAuthService(cfg.AuthSecret),
		Credentials: authmw.Credentials{
			AdminUser:     cfg.AdminUser,
			AdminPassHash: cfg.AdminPassHash,
			DevLogin:      cfg.EnableDevLogin,
		},
		Log:         log,
		CORSOrigins: cfg.CORSOrigins,
		SubmitRate:  cfg.SubmitRate,
		SubmitBurst: cfg.SubmitBurst,
		Ready:       be.ready,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", "addr", cfg.HTTPAddr, "mode", cfg.Mode, "db", cfg.DBDriver, "cache", cfg.RedisAddr != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
	return g.Wait()
}
