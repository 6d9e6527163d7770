package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrStaleGeneration is returned by Fetch when the key was invalidated (or
// set, or dropped) while the fetch was in flight. The result was discarded.
// It is internal bookkeeping and never a user-facing failure.
var ErrStaleGeneration = errors.New("fetch superseded by a newer generation")

// Loader fetches the authoritative collection for a key. The returned value
// must be a slice of the entity type (e.g. []models.Child) and must not be
// mutated afterwards.
type Loader interface {
	Load(ctx context.Context, key Key) (interface{}, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, key Key) (interface{}, error)

func (f LoaderFunc) Load(ctx context.Context, key Key) (interface{}, error) {
	return f(ctx, key)
}

// Observer receives fetch and invalidation outcomes (metrics).
type Observer interface {
	FetchApplied(key Key)
	FetchDiscarded(key Key)
	FetchFailed(key Key, err error)
	Invalidated(key Key)
}

type noopObserver struct{}

func (noopObserver) FetchApplied(Key)       {}
func (noopObserver) FetchDiscarded(Key)     {}
func (noopObserver) FetchFailed(Key, error) {}
func (noopObserver) Invalidated(Key)        {}

// Entry is a read-only view of one cached collection.
type Entry struct {
	Data       interface{}
	Loaded     bool  // false means NotLoaded
	Stale      bool  // invalidated, refetch pending
	Fetching   bool  // at least one fetch in flight
	Err        error // last fetch failure; Data still holds the last good value
	Generation uint64
	UpdatedAt  time.Time // time of the last applied value
}

type entry struct {
	data      interface{}
	loaded    bool
	stale     bool
	inflight  int
	err       error
	gen       uint64
	updatedAt time.Time
}

func (e *entry) view() Entry {
	return Entry{
		Data:       e.data,
		Loaded:     e.loaded,
		Stale:      e.stale,
		Fetching:   e.inflight > 0,
		Err:        e.err,
		Generation: e.gen,
		UpdatedAt:  e.updatedAt,
	}
}

// Store is the entity cache. It is the single shared mutable resource of the
// sync layer: reads never block on fetches, and a fetch is applied only if
// its key's generation did not move while it was in flight.
type Store struct {
	mu          sync.Mutex
	entries     map[Key]*entry
	subscribers []func(Key)

	loader   Loader
	logger   *zap.Logger
	observer Observer
	now      func() time.Time

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Option configures a Store.
type Option func(*Store)

// WithObserver reports fetch outcomes to o.
func WithObserver(o Observer) Option {
	return func(s *Store) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithClock overrides the clock used for Entry.UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithBaseContext sets the parent context of background refetches.
func WithBaseContext(ctx context.Context) Option {
	return func(s *Store) { s.baseCtx = ctx }
}

// NewStore creates an empty store.
func NewStore(loader Loader, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		entries:  make(map[Key]*entry),
		loader:   loader,
		logger:   logger,
		observer: noopObserver{},
		now:      time.Now,
		baseCtx:  context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.baseCtx, s.cancel = context.WithCancel(s.baseCtx)
	return s
}

// entryLocked returns the entry for key, creating it. Caller holds s.mu.
func (s *Store) entryLocked(key Key) *entry {
	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	return e
}

// Get returns the current entry for key without blocking.
func (s *Store) Get(key Key) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok {
		return e.view()
	}
	return Entry{}
}

// Set overwrites the collection for key. Fetches issued before Set are
// discarded when they complete.
func (s *Store) Set(key Key, data interface{}) {
	s.mu.Lock()
	e := s.entryLocked(key)
	e.gen++
	e.data = data
	e.loaded = true
	e.stale = false
	e.err = nil
	e.updatedAt = s.now()
	s.mu.Unlock()

	s.notify(key)
}

// Invalidate marks key stale, advances its generation and schedules a
// background refetch for the new generation. The last value stays readable.
func (s *Store) Invalidate(key Key) {
	s.mu.Lock()
	e := s.entryLocked(key)
	e.gen++
	e.stale = true
	gen := e.gen
	s.mu.Unlock()

	s.observer.Invalidated(key)
	s.logger.Debug("Cache scope invalidated",
		zap.String("key", key.String()),
		zap.Uint64("generation", gen),
	)
	s.schedule(key, gen)
}

// Fetch loads key at its current generation and applies the result unless
// the generation moved meanwhile, in which case ErrStaleGeneration is
// returned. On failure the previous value is kept and the error recorded.
func (s *Store) Fetch(ctx context.Context, key Key) error {
	s.mu.Lock()
	gen := s.entryLocked(key).gen
	s.mu.Unlock()

	return s.run(ctx, key, gen)
}

// Ensure fetches key only if it has never been loaded.
func (s *Store) Ensure(ctx context.Context, key Key) error {
	if s.Get(key).Loaded {
		return nil
	}
	return s.Fetch(ctx, key)
}

// Prefetch schedules a background fetch when key is neither loaded nor
// being fetched.
func (s *Store) Prefetch(key Key) {
	s.mu.Lock()
	e := s.entryLocked(key)
	if e.loaded || e.inflight > 0 {
		s.mu.Unlock()
		return
	}
	gen := e.gen
	s.mu.Unlock()

	s.schedule(key, gen)
}

// DropScope forgets every collection cached under scope and discards
// fetches still in flight for it.
func (s *Store) DropScope(scope string) {
	s.mu.Lock()
	for key, e := range s.entries {
		if key.Scope == scope {
			e.reset()
		}
	}
	s.mu.Unlock()

	s.logger.Debug("Cache scope dropped", zap.String("scope", scope))
}

// Reset forgets everything.
func (s *Store) Reset() {
	s.mu.Lock()
	for _, e := range s.entries {
		e.reset()
	}
	s.mu.Unlock()
}

func (e *entry) reset() {
	e.gen++
	e.data = nil
	e.loaded = false
	e.stale = false
	e.err = nil
	e.updatedAt = time.Time{}
}

// Snapshot copies every entry under one lock acquisition so derived views
// never mix collections from different instants.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make(map[Key]Entry, len(s.entries))
	for k, e := range s.entries {
		entries[k] = e.view()
	}
	return Snapshot{entries: entries}
}

// Subscribe registers fn to be called after a value is applied to a key.
// fn runs on the goroutine that applied the value.
func (s *Store) Subscribe(fn func(Key)) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

// Wait blocks until every scheduled background fetch has finished.
func (s *Store) Wait() {
	s.wg.Wait()
}

// Close cancels background fetches and waits for them.
func (s *Store) Close() {
	s.cancel()
	s.wg.Wait()
}

func (s *Store) schedule(key Key, gen uint64) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.run(s.baseCtx, key, gen); err != nil && !errors.Is(err, ErrStaleGeneration) {
			s.logger.Warn("Background refetch failed",
				zap.String("key", key.String()),
				zap.Error(err),
			)
		}
	}()
}

func (s *Store) run(ctx context.Context, key Key, gen uint64) error {
	s.mu.Lock()
	e := s.entryLocked(key)
	e.inflight++
	s.mu.Unlock()

	data, err := s.loader.Load(ctx, key)

	s.mu.Lock()
	e.inflight--
	if e.gen != gen {
		current := e.gen
		s.mu.Unlock()
		s.observer.FetchDiscarded(key)
		s.logger.Debug("Discarded superseded fetch",
			zap.String("key", key.String()),
			zap.Uint64("fetch_generation", gen),
			zap.Uint64("current_generation", current),
		)
		return ErrStaleGeneration
	}
	if err != nil {
		e.err = err
		s.mu.Unlock()
		s.observer.FetchFailed(key, err)
		return err
	}
	e.data = data
	e.loaded = true
	e.stale = false
	e.err = nil
	e.updatedAt = s.now()
	s.mu.Unlock()

	s.observer.FetchApplied(key)
	s.notify(key)
	return nil
}

func (s *Store) notify(key Key) {
	s.mu.Lock()
	subs := make([]func(Key), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(key)
	}
}
