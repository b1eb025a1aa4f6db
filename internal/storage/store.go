package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Store is the sole writer of durable state. Every operation loads a full
// snapshot, lets the caller mutate it, and replaces the touched collections
// as whole documents. The mutex makes the single-writer rule hold even when
// the caller is an HTTP server.
type Store struct {
	mu      sync.Mutex
	backend Backend
	limits  TicketLimits
	now     func() time.Time
	log     *zap.Logger
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithTicketLimits(l TicketLimits) Option {
	return func(s *Store) { s.limits = l }
}

func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		limits:  DefaultTicketLimits(),
		now:     func() time.Time { return time.Now().UTC() },
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) TicketLimits() TicketLimits { return s.limits }

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Close()
}

// View runs fn over a fresh snapshot. Changes fn makes are not written back;
// only repairs done while loading are.
func (s *Store) View(ctx context.Context, fn func(*Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return err
	}
	return fn(snap)
}

// Update runs fn over a fresh snapshot and, if fn succeeds, atomically
// replaces every collection fn touched. If fn fails nothing is written.
func (s *Store) Update(ctx context.Context, fn func(*Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(snap); err != nil {
		return err
	}
	docs, err := snap.encodeDirty()
	if err != nil {
		return err
	}
	if err := s.backend.Replace(ctx, docs); err != nil {
		return fmt.Errorf("store replace: %w", err)
	}
	return nil
}

func (s *Store) load(ctx context.Context) (*Snapshot, error) {
	snap := newSnapshot(s.limits)
	now := s.now()

	raw, err := s.backend.Load(ctx, CollectionMissions)
	if err != nil {
		return nil, err
	}
	var assigned bool
	if snap.missions, assigned, err = decodeMissions(raw); err != nil {
		s.degraded(CollectionMissions, err)
		snap.missions = []Mission{}
	} else if assigned {
		snap.touch(CollectionMissions)
	}

	if raw, err = s.backend.Load(ctx, CollectionDebts); err != nil {
		return nil, err
	}
	if snap.debts, assigned, err = decodeDebts(raw); err != nil {
		s.degraded(CollectionDebts, err)
		snap.debts = []InsightDebt{}
	} else if assigned {
		snap.touch(CollectionDebts)
	}

	if raw, err = s.backend.Load(ctx, CollectionProgress); err != nil {
		return nil, err
	}
	if raw == nil {
		// First access creates the singleton.
		snap.progress = NewUserProgress(s.limits, now)
		snap.touch(CollectionProgress)
	} else if snap.progress, err = DecodeProgress(raw, s.limits, now); err != nil {
		s.degraded(CollectionProgress, err)
		snap.progress = NewUserProgress(s.limits, now)
	}

	if raw, err = s.backend.Load(ctx, CollectionProjects); err != nil {
		return nil, err
	}
	if snap.projects, assigned, err = decodeProjects(raw, s.limits, now); err != nil {
		s.degraded(CollectionProjects, err)
		snap.projects = []Project{}
	} else if assigned {
		snap.touch(CollectionProjects)
	}

	if raw, err = s.backend.Load(ctx, CollectionSettings); err != nil {
		return nil, err
	}
	if snap.settings, err = DecodeSettings(raw); err != nil {
		s.degraded(CollectionSettings, err)
		snap.settings = Settings{}
	}

	if err := s.flush(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// flush writes back whatever load had to repair or create, so ids handed
// out by View stay valid for the next transaction.
func (s *Store) flush(ctx context.Context, snap *Snapshot) error {
	if len(snap.dirty) == 0 {
		return nil
	}
	docs, err := snap.encodeDirty()
	if err != nil {
		return err
	}
	if err := s.backend.Replace(ctx, docs); err != nil {
		return fmt.Errorf("store repair: %w", err)
	}
	for name := range docs {
		s.log.Debug("persisted repaired document", zap.String("collection", name))
	}
	snap.dirty = map[string]bool{}
	return nil
}

func (s *Store) degraded(name string, err error) {
	s.log.Warn("corrupt document, using defaults", zap.String("collection", name), zap.Error(err))
}
