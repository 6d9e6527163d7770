package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"mamacare-sync/common/database"
	"mamacare-sync/common/mqtt"
	rediscommon "mamacare-sync/common/redis"
	"mamacare-sync/internal/aggregator"
	"mamacare-sync/internal/cache"
	"mamacare-sync/internal/config"
	"mamacare-sync/internal/consumer"
	"mamacare-sync/internal/gateway"
	"mamacare-sync/internal/metrics"
	"mamacare-sync/internal/mutation"
	"mamacare-sync/internal/pivot"
	"mamacare-sync/internal/repository"
	"mamacare-sync/internal/store"
)

// Build wires a SyncService from configuration. Optional components
// (catalog, change feed, dashboards, metrics) are only created when
// configured. Resources opened here are closed by Stop.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*SyncService, error) {
	var closers []func() error
	fail := func(err error) (*SyncService, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
		return nil, err
	}

	m := metrics.New()

	var redisClient *redis.Client
	if cfg.NeedsRedis() {
		redisClient = rediscommon.NewRedisClient(&cfg.Redis)
		closers = append(closers, func() error { return rediscommon.Close(redisClient) })
		if err := rediscommon.Ping(ctx, redisClient); err != nil {
			return fail(fmt.Errorf("failed to connect to redis: %w", err))
		}
	}

	var kv store.KV = store.NewMemoryKV()
	if cfg.Prefs.Backend == "redis" {
		kv = store.NewRedisKV(redisClient)
	}
	prefs := store.NewPreferences(kv, cfg.Prefs.Profile, logger)
	if cfg.API.AuthToken != "" {
		if err := prefs.SetToken(ctx, cfg.API.AuthToken); err != nil {
			return fail(err)
		}
	}

	gw := gateway.NewClient(gateway.Config{
		BaseURL:        cfg.API.BaseURL,
		Timeout:        cfg.API.Timeout,
		ReadRetryCount: cfg.API.ReadRetryCount,
	}, prefs, logger)

	cacheStore := cache.NewStore(NewGatewayLoader(gw), logger,
		cache.WithObserver(m),
		cache.WithBaseContext(context.Background()),
	)
	p := pivot.New(prefs, logger)

	coordOpts := []mutation.Option{mutation.WithRecorder(m)}
	var mqttClient *mqtt.Client
	if cfg.ChangeFeed.Mode == "mqtt" {
		c, err := mqtt.NewClient(&cfg.MQTT, logger)
		if err != nil {
			return fail(err)
		}
		mqttClient = c
		closers = append(closers, func() error { mqttClient.Disconnect(); return nil })
	}
	switch cfg.ChangeFeed.Mode {
	case "stream":
		coordOpts = append(coordOpts, mutation.WithPublisher(consumer.NewStreamPublisher(redisClient, cfg.ChangeFeed.EventStream)))
	case "mqtt":
		coordOpts = append(coordOpts, mutation.WithPublisher(consumer.NewMQTTPublisher(mqttClient, cfg.ChangeFeed.Topic, cfg.MQTT.QoS)))
	}
	coord := mutation.NewCoordinator(gw, cacheStore, p, logger, coordOpts...)

	sessionOpts := []SessionOption{WithCredentials(prefs)}
	if cfg.CatalogSource == "postgres" {
		db, err := database.NewPostgresDB(&cfg.Database)
		if err != nil {
			return fail(fmt.Errorf("failed to connect to database: %w", err))
		}
		closers = append(closers, func() error { return database.Close(db) })
		sessionOpts = append(sessionOpts, WithCatalog(repository.NewVaccineRepository(db, logger)))
	}
	session := NewSession(cacheStore, p, coord, logger, sessionOpts...)

	var changes ChangeConsumer
	switch cfg.ChangeFeed.Mode {
	case "stream":
		changes = consumer.NewStreamConsumer(
			redisClient,
			coord,
			m,
			logger,
			cfg.ChangeFeed.EventStream,
			cfg.ChangeFeed.ConsumerGroup,
			cfg.ChangeFeed.ConsumerName,
			int64(cfg.ChangeFeed.BatchSize),
		)
	case "mqtt":
		changes = consumer.NewMQTTConsumer(mqttClient, coord, m, logger, cfg.ChangeFeed.Topic, cfg.MQTT.QoS)
	}

	var dashboards DashboardPublisher
	if cfg.Dashboard.Enabled {
		cm := aggregator.NewCacheManager(store.NewRedisKV(redisClient), cfg.Dashboard.TTL, logger)
		dashboards = aggregator.NewDashboardPublisher(aggregator.NewDashboardBuilder(), cm, m, logger)
	}

	if cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux(m)}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server failed", zap.Error(err))
			}
		}()
		closers = append(closers, func() error {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		logger.Info("Serving metrics", zap.String("addr", cfg.MetricsAddr))
	}

	svc := NewSyncService(session, changes, dashboards, cfg.Dashboard.Interval, logger)
	for _, c := range closers {
		svc.OnStop(c)
	}
	return svc, nil
}

func metricsMux(m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return mux
}
