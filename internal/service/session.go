package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"mamacare-sync/internal/cache"
	"mamacare-sync/internal/gateway"
	"mamacare-sync/internal/models"
	"mamacare-sync/internal/mutation"
	"mamacare-sync/internal/pivot"
	"mamacare-sync/internal/views"
)

// Clock supplies "now" to derived views.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock is the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// CatalogSource supplies the vaccine catalog.
type CatalogSource interface {
	ListVaccines(ctx context.Context) ([]models.Vaccine, error)
}

// Credentials persists the auth token.
type Credentials interface {
	SetToken(ctx context.Context, token string) error
}

// Session is what a presentation layer talks to: cache reads, the selected
// child, mutations and derived views. View methods with an empty childID
// use the selected child.
type Session struct {
	store       *cache.Store
	pivot       *pivot.Pivot
	coord       *mutation.Coordinator
	credentials Credentials
	catalogSrc  CatalogSource
	clock       Clock
	logger      *zap.Logger

	mu      sync.RWMutex
	catalog []models.Vaccine

	// non-zero while Refresh loads every child's scopes itself
	refreshing atomic.Int32
}

// childrenAttempts bounds how often Refresh refetches the children list
// when a concurrent write supersedes its fetch.
const childrenAttempts = 3

// SessionOption configures a Session.
type SessionOption func(*Session)

func WithCatalog(src CatalogSource) SessionOption {
	return func(s *Session) { s.catalogSrc = src }
}

func WithSessionClock(c Clock) SessionOption {
	return func(s *Session) { s.clock = c }
}

func WithCredentials(c Credentials) SessionOption {
	return func(s *Session) { s.credentials = c }
}

func NewSession(store *cache.Store, p *pivot.Pivot, coord *mutation.Coordinator, logger *zap.Logger, opts ...SessionOption) *Session {
	s := &Session{
		store:  store,
		pivot:  p,
		coord:  coord,
		clock:  SystemClock,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	store.Subscribe(s.childrenApplied)
	return s
}

// childrenApplied runs after every applied Children value: a child that
// appears after startup gets selected when nothing is, and its scopes
// start loading.
func (s *Session) childrenApplied(key cache.Key) {
	if key != cache.ChildrenKey() {
		return
	}
	children := s.store.Snapshot().Children()
	if _, err := s.pivot.Reconcile(context.Background(), children); err != nil {
		s.logger.Warn("Failed to persist auto-selected child", zap.Error(err))
	}
	if s.refreshing.Load() > 0 {
		return
	}
	for _, c := range children {
		for _, k := range cache.ChildKeys(c.ID) {
			s.store.Prefetch(k)
		}
	}
}

// Refresh is the initial-fetch pathway: the children list first, then the
// recommendations and every child's scopes in parallel. The pivot is
// reconciled once children are known. All failures are returned joined.
func (s *Session) Refresh(ctx context.Context) error {
	s.refreshing.Add(1)
	defer s.refreshing.Add(-1)

	s.pivot.Restore(ctx)

	if err := s.fetchChildren(ctx); err != nil {
		return fmt.Errorf("failed to load children: %w", err)
	}
	children := s.store.Snapshot().Children()
	if _, err := s.pivot.Reconcile(ctx, children); err != nil {
		s.logger.Warn("Failed to persist auto-selected child", zap.Error(err))
	}

	keys := []cache.Key{cache.RecommendationsKey()}
	for _, c := range children {
		keys = append(keys, cache.ChildKeys(c.ID)...)
	}
	err := s.fetchAll(ctx, keys)

	s.loadCatalog(ctx)

	s.logger.Info("Session refreshed",
		zap.Int("child_count", len(children)),
		zap.Int("key_count", len(keys)),
		zap.Bool("complete", err == nil),
	)
	return err
}

// fetchChildren retries while its fetch is superseded so the children list
// is known before the per-child scopes are requested.
func (s *Session) fetchChildren(ctx context.Context) error {
	var err error
	for i := 0; i < childrenAttempts; i++ {
		err = s.store.Fetch(ctx, cache.ChildrenKey())
		if !errors.Is(err, cache.ErrStaleGeneration) {
			return err
		}
		s.logger.Debug("Children fetch superseded, retrying", zap.Int("attempt", i+1))
	}
	return err
}

func (s *Session) fetchAll(ctx context.Context, keys []cache.Key) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, key := range keys {
		wg.Add(1)
		go func(key cache.Key) {
			defer wg.Done()
			err := s.store.Fetch(ctx, key)
			if err == nil || errors.Is(err, cache.ErrStaleGeneration) {
				return
			}
			mu.Lock()
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			mu.Unlock()
		}(key)
	}
	wg.Wait()
	return errors.Join(errs...)
}

// loadCatalog keeps the previous catalog when loading fails.
func (s *Session) loadCatalog(ctx context.Context) {
	if s.catalogSrc == nil {
		return
	}
	catalog, err := s.catalogSrc.ListVaccines(ctx)
	if err != nil {
		s.logger.Warn("Failed to load vaccine catalog", zap.Error(err))
		return
	}
	s.mu.Lock()
	s.catalog = catalog
	s.mu.Unlock()
}

// Catalog returns the loaded vaccine catalog; empty when none is configured.
func (s *Session) Catalog() []models.Vaccine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

func (s *Session) Snapshot() cache.Snapshot {
	return s.store.Snapshot()
}

func (s *Session) Store() *cache.Store {
	return s.store
}

// Mutations exposes the coordinator.
func (s *Session) Mutations() *mutation.Coordinator {
	return s.coord
}

func (s *Session) Now() time.Time {
	return s.clock.Now()
}

// AuthError returns the first cached fetch failure that is an auth failure.
func (s *Session) AuthError() error {
	snap := s.store.Snapshot()
	for _, key := range snap.Keys() {
		if err := snap.Entry(key).Err; err != nil && errors.Is(err, gateway.ErrAuth) {
			return err
		}
	}
	return nil
}

func (s *Session) Children() []models.Child {
	return s.store.Snapshot().Children()
}

func (s *Session) ChildByID(id string) (models.Child, bool) {
	return views.ChildByID(s.store.Snapshot(), id)
}

func (s *Session) SelectedChildID() (string, bool) {
	return s.pivot.SelectedChildID()
}

// SelectedChild falls back to the first child when the selection is stale.
func (s *Session) SelectedChild() (models.Child, bool) {
	return s.pivot.SelectedChild(s.Children())
}

// SetSelectedChildID switches the active child and starts loading its
// scopes in the background. In-flight fetches of the previous child are not
// cancelled.
func (s *Session) SetSelectedChildID(ctx context.Context, id string) error {
	err := s.pivot.SetSelectedChildID(ctx, id)
	if id != "" {
		for _, key := range cache.ChildKeys(id) {
			s.store.Prefetch(key)
		}
	}
	return err
}

// scoped takes one snapshot and resolves childID against its Children, so
// a view never mixes two instants.
func (s *Session) scoped(childID string) (cache.Snapshot, string) {
	snap := s.store.Snapshot()
	id, _ := s.pivot.Resolve(childID, snap.Children())
	return snap, id
}

func (s *Session) GrowthSeries(childID string) []models.GrowthRecord {
	snap, id := s.scoped(childID)
	return views.GrowthSeriesFor(snap, id)
}

func (s *Session) LatestGrowth(childID string) (models.GrowthRecord, bool) {
	return views.LatestGrowth(s.GrowthSeries(childID))
}

func (s *Session) ActivePrescriptions(childID string) []models.Prescription {
	snap, id := s.scoped(childID)
	return views.ActivePrescriptionsFor(snap, id)
}

func (s *Session) Vaccinations(childID string) []models.VaccinationRecord {
	snap, id := s.scoped(childID)
	return views.VaccinationsFor(snap, id)
}

func (s *Session) VaccinationProgress(childID string) float64 {
	snap, id := s.scoped(childID)
	return views.VaccinationProgressFor(snap, id, s.Catalog())
}

func (s *Session) Reminders(childID string) []models.Reminder {
	snap, id := s.scoped(childID)
	return views.RemindersFor(snap, id)
}

func (s *Session) ReminderPartitions(childID string) views.ReminderPartitions {
	snap, id := s.scoped(childID)
	return views.ReminderPartitionsFor(snap, id, s.clock.Now())
}

func (s *Session) Recommendations(childID string) []models.Recommendation {
	snap, id := s.scoped(childID)
	return views.RecommendationsFor(snap, id)
}

func (s *Session) UnreadRecommendationCount(childID string) int {
	snap, id := s.scoped(childID)
	return views.UnreadRecommendationCountFor(snap, id)
}

// ChildAgeLabel is empty when the child is unknown.
func (s *Session) ChildAgeLabel(childID string) string {
	snap, id := s.scoped(childID)
	c, ok := views.ChildByID(snap, id)
	if !ok {
		return ""
	}
	return views.ChildAgeLabel(c.DateOfBirth.Time, s.clock.Now())
}

func (s *Session) ReminderWhenLabel(r models.Reminder) string {
	return views.ReminderWhenLabel(r.DateTime, s.clock.Now())
}

// SignIn stores the token and reloads everything.
func (s *Session) SignIn(ctx context.Context, token string) error {
	if s.credentials != nil {
		if err := s.credentials.SetToken(ctx, token); err != nil {
			return err
		}
	}
	s.store.Reset()
	return s.Refresh(ctx)
}

// Logout clears the token and the selection and forgets every cached
// collection.
func (s *Session) Logout(ctx context.Context) error {
	var errs []error
	if s.credentials != nil {
		if err := s.credentials.SetToken(ctx, ""); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.pivot.Clear(ctx); err != nil {
		errs = append(errs, err)
	}
	s.store.Reset()
	s.mu.Lock()
	s.catalog = nil
	s.mu.Unlock()

	s.logger.Info("Session logged out")
	return errors.Join(errs...)
}

// Close stops background fetches.
func (s *Session) Close() {
	s.store.Close()
}
