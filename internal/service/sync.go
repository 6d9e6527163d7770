package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"mamacare-sync/internal/cache"
	"mamacare-sync/internal/gateway"
	"mamacare-sync/internal/models"
)

// ChangeConsumer runs a change feed until ctx is done.
type ChangeConsumer interface {
	Start(ctx context.Context) error
}

// DashboardPublisher writes dashboards derived from a snapshot.
type DashboardPublisher interface {
	PublishDashboards(ctx context.Context, snap cache.Snapshot, catalog []models.Vaccine, now time.Time) (int, error)
}

// SyncService keeps a session fresh: initial refresh, change feed, and
// periodic dashboard publishing. It stops on the first auth failure.
type SyncService struct {
	session    *Session
	consumer   ChangeConsumer
	dashboards DashboardPublisher
	interval   time.Duration
	logger     *zap.Logger
	closers    []func() error
}

// NewSyncService wires the loops. consumer and dashboards may be nil.
func NewSyncService(session *Session, consumer ChangeConsumer, dashboards DashboardPublisher, interval time.Duration, logger *zap.Logger) *SyncService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SyncService{
		session:    session,
		consumer:   consumer,
		dashboards: dashboards,
		interval:   interval,
		logger:     logger,
	}
}

// OnStop registers a resource closed by Stop, in reverse order.
func (s *SyncService) OnStop(closer func() error) {
	s.closers = append(s.closers, closer)
}

func (s *SyncService) Session() *Session {
	return s.session
}

// Start refreshes the session and runs until ctx is done or an auth
// failure is observed, which is returned.
func (s *SyncService) Start(ctx context.Context) error {
	s.logger.Info("Starting sync service",
		zap.Bool("change_feed", s.consumer != nil),
		zap.Bool("dashboards", s.dashboards != nil),
		zap.Duration("interval", s.interval),
	)

	if err := s.session.Refresh(ctx); err != nil {
		if errors.Is(err, gateway.ErrAuth) {
			return err
		}
		s.logger.Error("Initial refresh incomplete", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	if s.consumer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.consumer.Start(ctx); err != nil && ctx.Err() == nil {
				errCh <- err
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := s.watch(ctx); err != nil {
			errCh <- err
		}
	}()

	var err error
	select {
	case <-ctx.Done():
	case err = <-errCh:
		s.logger.Error("Sync service stopping", zap.Error(err))
	}
	cancel()
	wg.Wait()
	return err
}

// watch publishes dashboards every interval and checks for auth failures
// from background refetches.
func (s *SyncService) watch(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.publish(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.session.AuthError(); err != nil {
				return err
			}
			s.publish(ctx)
		}
	}
}

func (s *SyncService) publish(ctx context.Context) {
	if s.dashboards == nil {
		return
	}
	n, err := s.dashboards.PublishDashboards(ctx, s.session.Snapshot(), s.session.Catalog(), s.session.Now())
	if err != nil {
		s.logger.Error("Failed to publish dashboards", zap.Error(err))
		return
	}
	s.logger.Debug("Dashboards published", zap.Int("count", n))
}

// Stop waits for background fetches and closes registered resources.
func (s *SyncService) Stop(ctx context.Context) error {
	s.session.Close()

	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.logger.Info("Sync service stopped")
	return errors.Join(errs...)
}
