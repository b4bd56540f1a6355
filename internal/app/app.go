package app

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/mapuy555/warranty-server/internal/auth"
	"github.com/mapuy555/warranty-server/internal/config"
	"github.com/mapuy555/warranty-server/internal/entity"
	"github.com/mapuy555/warranty-server/internal/notifier"
	"github.com/mapuy555/warranty-server/internal/repository"
	"github.com/mapuy555/warranty-server/internal/service"
	"github.com/mapuy555/warranty-server/internal/tracking"
	httpt "github.com/mapuy555/warranty-server/internal/transport/http"
	"github.com/mapuy555/warranty-server/pkg/cache"
	"github.com/mapuy555/warranty-server/pkg/kafka"
	"github.com/mapuy555/warranty-server/pkg/logger"
	"github.com/mapuy555/warranty-server/pkg/metric"
	"github.com/mapuy555/warranty-server/pkg/storage/postgres"
	"github.com/mapuy555/warranty-server/pkg/storage/postgres/transaction"

	"golang.org/x/sync/errgroup"
)

func Run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	eg, ctx := errgroup.WithContext(ctx)

	metrics := initMetrics(eg, &cfg.Metrics, log)

	db, dbErr := initDatabase(&cfg.Postgres, log)
	if dbErr != nil {
		return dbErr
	}
	defer closeDB(db)

	txManager, txErr := initTransactionManager(db, log, metrics)
	if txErr != nil {
		return txErr
	}

	orderCache, cacheErr := initCache(&cfg.Cache, log, metrics)
	if cacheErr != nil {
		return cacheErr
	}
	defer stopCache(orderCache)

	warrantyService := initWarrantyService(
		cfg,
		db,
		txManager,
		orderCache,
		log,
	)

	authorizer := auth.NewAllowList(cfg.Admin.UserIDs)

	if serverErr := initHTTPServer(ctx, eg, &cfg.HTTP, warrantyService, authorizer, log, metrics); serverErr != nil {
		return serverErr
	}

	if notifierErr := initNotifier(ctx, eg, cfg, db, txManager, log, metrics); notifierErr != nil {
		return notifierErr
	}

	return waitForShutdown(eg)
}

func initMetrics(
	eg *errgroup.Group,
	cfg *config.Metrics,
	log logger.Logger,
) metric.Factory {
	metrics := metric.NewFactory()

	hostPort := net.JoinHostPort(cfg.Host, cfg.Port)
	metricsServer := &http.Server{
		Addr:              hostPort,
		Handler:           metrics.Handler(),
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	eg.Go(func() error {
		log.Infow("starting metrics server", "port", cfg.Port)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("app.initMetrics: %w", err)
		}
		return nil
	})

	return metrics
}

func initDatabase(cfg *config.Postgres, log logger.Logger) (*postgres.Postgres, error) {
	db, err := postgres.NewPostgres(
		cfg,
		log.With("component", "database"),
		postgres.MaxPoolSize(cfg.PoolMax),
	)
	if err != nil {
		return nil, fmt.Errorf("app.initDatabase: %w", err)
	}
	return db, nil
}

func closeDB(db *postgres.Postgres) {
	if db != nil {
		db.Close()
	}
}

func initTransactionManager(
	db *postgres.Postgres,
	log logger.Logger,
	metrics metric.Factory,
) (transaction.Manager, error) {
	txManager, err := transaction.NewManager(
		db,
		log.With("component", "transaction manager"),
		metrics.Transaction(),
	)
	if err != nil {
		return nil, fmt.Errorf("app.initTransactionManager: %w", err)
	}
	return txManager, nil
}

func initCache(
	cfg *config.Cache,
	log logger.Logger,
	metrics metric.Factory,
) (cache.Cache[string, *entity.Order], error) {
	orderCache, err := cache.NewLRUCache[string, *entity.Order](
		cfg.Capacity,
		log.With("component", "cache"),
		metrics.Cache(),
	)
	if err != nil {
		return nil, fmt.Errorf("app.initCache: %w", err)
	}
	orderCache.StartCleanup(cfg.CleanupInterval)
	return orderCache, nil
}

func stopCache(orderCache cache.Cache[string, *entity.Order]) {
	if orderCache != nil {
		orderCache.StopCleanup()
	}
}

func initTracker(cfg config.Tracking) tracking.Client {
	if !cfg.Enabled {
		return tracking.NewDisabled()
	}
	return tracking.NewHTTPClient(cfg)
}

func initWarrantyService(
	cfg *config.Config,
	db *postgres.Postgres,
	txManager transaction.Manager,
	orderCache cache.Cache[string, *entity.Order],
	log logger.Logger,
) *service.WarrantyService {
	orderRepo := repository.NewOrderRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	claimRepo := repository.NewClaimRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)

	return service.NewWarrantyService(
		orderRepo,
		registrationRepo,
		claimRepo,
		outboxRepo,
		txManager,
		initTracker(cfg.Tracking),
		service.Policy{
			DefaultDays: cfg.Warranty.DefaultDays,
			ChannelDays: cfg.Warranty.ChannelDays(),
		},
		log.With("component", "warranty service"),
		orderCache,
		cfg.Cache.TTL,
		cfg.Admin.UserIDs,
		cfg.Notifier.AdminBroadcast,
	)
}

func initHTTPServer(
	ctx context.Context,
	eg *errgroup.Group,
	cfg *config.HTTP,
	warrantyService *service.WarrantyService,
	authorizer auth.Authorizer,
	log logger.Logger,
	metrics metric.Factory,
) error {
	httpServer, err := httpt.NewHTTPServer(
		httpt.NewWarrantyHandler(warrantyService, log, metrics.HTTP(), authorizer),
		cfg,
		log.With("component", "http server"),
	)
	if err != nil {
		return fmt.Errorf("app.initHTTPServer: %w", err)
	}

	eg.Go(func() error {
		return httpServer.Start(ctx)
	})
	return nil
}

func initNotifier(
	ctx context.Context,
	eg *errgroup.Group,
	cfg *config.Config,
	db *postgres.Postgres,
	txManager transaction.Manager,
	log logger.Logger,
	metrics metric.Factory,
) error {
	writer, err := kafka.NewNotificationWriter(cfg.Notifier, log.With("component", "kafka writer"))
	if err != nil {
		return fmt.Errorf("app.initNotifier: notification writer creation: %w", err)
	}

	dispatcher := notifier.NewDispatcher(
		repository.NewOutboxRepository(db),
		txManager,
		notifier.NewKafkaPublisher(writer),
		metrics.Outbox(),
		log.With("component", "outbox dispatcher"),
		cfg.Outbox,
	)
	eg.Go(func() error {
		defer func() {
			if closeErr := writer.Close(); closeErr != nil {
				log.Warnw("kafka writer close failed", "error", closeErr)
			}
		}()
		return dispatcher.Run(ctx)
	})

	return nil
}

func waitForShutdown(eg *errgroup.Group) error {
	if err := eg.Wait(); err != nil && !isShutdownSignal(err) {
		return fmt.Errorf("app.waitForShutdown: application failed: %w", err)
	}
	return nil
}

func isShutdownSignal(err error) bool {
	return err != nil && err.Error() == "shutdown signal"
}
