// Package server assembles the vault server: storage, cache, attachment
// presigning, application services and the gRPC and operational
// endpoints. It handles graceful shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/vaultguard/internal/cache"
	"github.com/dmitrijs2005/vaultguard/internal/logging"
	"github.com/dmitrijs2005/vaultguard/internal/server/blobstore"
	"github.com/dmitrijs2005/vaultguard/internal/server/config"
	"github.com/dmitrijs2005/vaultguard/internal/server/metrics"
	"github.com/dmitrijs2005/vaultguard/internal/server/ops"
	"github.com/dmitrijs2005/vaultguard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/vaultguard/internal/server/services"
	"github.com/dmitrijs2005/vaultguard/internal/server/storage"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/vaultguard/internal/server/grpc"
)

type pingableCache interface {
	cache.Cache
	ops.Pinger
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	closers []func() error

	grpcServer *gs.GRPCServer
	opsServer  *ops.Server
}

// NewApp connects to the databases and the cache, migrates the primary
// and builds the transports. Resources opened before a failure are released.
func NewApp(ctx context.Context, c *config.Config) (app *App, err error) {
	logger, err := logging.New(c.LogFormat, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	app = &App{config: c, logger: logger}
	defer func() {
		if err != nil {
			app.close()
		}
	}()

	repos := repomanager.NewPostgresRepositoryManager()

	primary, err := repomanager.OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app.closers = append(app.closers, primary.Close)

	if err := repos.RunMigrations(ctx, primary); err != nil {
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	var replica *sql.DB
	if c.ReplicaDSN != "" {
		replica, err = repomanager.OpenDB(ctx, c.ReplicaDSN)
		if err != nil {
			return nil, fmt.Errorf("replica init error: %w", err)
		}
		app.closers = append(app.closers, replica.Close)
	}

	gw := storage.NewGateway(primary, replica, repos)

	vc, err := app.newCache(ctx)
	if err != nil {
		return nil, err
	}

	presigner, err := blobstore.NewS3Presigner(ctx, blobstore.Options{
		Region:       c.S3Region,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		Bucket:       c.S3Bucket,
		BaseEndpoint: c.S3BaseEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("blobstore init error: %w", err)
	}

	observer := metrics.Observer{}
	newUoW := func() services.UnitOfWork { return gw.NewUnitOfWork() }

	vaults := services.NewVaultService(gw.Reader(), newUoW, vc, observer, logger, c.CacheListTTL)
	audit := services.NewAuditService(gw.Reader(), observer)
	attachments := services.NewAttachmentService(newUoW, presigner, observer, logger)

	app.grpcServer = gs.NewGRPCServer(c.EndpointAddrGRPC, logger, c.SecretKey, c.ExposeErrorDetails,
		vaults, audit, attachments)
	app.opsServer = ops.NewServer(c.EndpointAddrHTTP, logger, map[string]ops.Pinger{
		"database": gw,
		"cache":    vc,
	})

	return app, nil
}

// newCache connects to Redis when an address is configured and falls back
// to the in-process cache otherwise.
func (app *App) newCache(ctx context.Context) (pingableCache, error) {
	if app.config.RedisAddr == "" {
		app.logger.Info(ctx, "redis not configured, using in-process cache")
		return cache.NewMemoryCache(app.logger), nil
	}

	rdb, err := cache.NewRedisClient(ctx, app.config.RedisAddr, app.config.RedisPassword, app.config.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("cache init error: %w", err)
	}
	app.closers = append(app.closers, rdb.Close)
	return cache.NewRedisCache(rdb, app.logger), nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves both endpoints until a signal arrives or one of them fails,
// then stops the other and releases resources.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.close()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.grpcServer.Run(ctx) })
	g.Go(func() error { return app.opsServer.Run(ctx) })

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "server stopped with error", "error", err)
	} else {
		app.logger.Info(ctx, "server stopped")
	}
	return err
}

func (app *App) close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			app.logger.Warn(context.Background(), "close failed", "error", err)
		}
	}
	app.closers = nil
}
