package game

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/kiliankoe/rpsdash/internal/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrInvalidPlayer = errors.New("invalid player id")

// DefaultMaxEngines caps how many engines a Manager keeps in memory when ManagerConfig.MaxEngines
// is unset.
const DefaultMaxEngines = 1024

type ManagerConfig struct {
	// BaseKey prefixes every per-player storage key. Empty means DefaultStorageKey.
	BaseKey string
	Moves   MoveSource
	Clock   func() time.Time
	Logger  *zerolog.Logger
	// Exporter, when set, receives every played round and reset.
	Exporter *Exporter
	// MaxEngines bounds the engine cache; the least recently used engine is dropped first.
	MaxEngines int
	// Reload makes engines re-read the store before each mutation. Set it when the store is
	// shared with other server instances.
	Reload bool
}

type cached struct {
	engine *Engine
	used   atomic.Uint64
}

// Manager hands out one Engine per player id, loading its state on first use. Engines are cached
// up to MaxEngines; an evicted engine is rebuilt from the store on its next use.
type Manager struct {
	mu      sync.RWMutex
	store   storage.Store
	cfg     ManagerConfig
	engines map[string]*cached
	clock   atomic.Uint64
}

func NewManager(store storage.Store, cfg ManagerConfig) *Manager {
	if cfg.MaxEngines <= 0 {
		cfg.MaxEngines = DefaultMaxEngines
	}
	return &Manager{store: store, cfg: cfg, engines: make(map[string]*cached)}
}

// NewPlayerID mints an id for a browser that has none yet.
func NewPlayerID() string {
	return uuid.NewString()
}

// ValidPlayerID reports whether id looks like one NewPlayerID produced.
func ValidPlayerID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Engine returns the engine for playerID, creating and loading it if needed.
func (m *Manager) Engine(ctx context.Context, playerID string) (*Engine, error) {
	if playerID != "" && !ValidPlayerID(playerID) {
		return nil, ErrInvalidPlayer
	}
	if e := m.lookup(playerID); e != nil {
		return e, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if c := m.engines[playerID]; c != nil {
		c.used.Store(m.clock.Add(1))
		return c.engine, nil
	}
	e := NewEngine(m.store, StorageKey(m.cfg.BaseKey, playerID), m.options(playerID)...)
	e.LoadState(ctx)
	if len(m.engines) >= m.cfg.MaxEngines {
		m.evictOldest()
	}
	c := &cached{engine: e}
	c.used.Store(m.clock.Add(1))
	m.engines[playerID] = c
	return e, nil
}

// View returns the player's state and whether it holds earlier progress, as shown on page load. A
// player without a cached engine is read straight from the store and not cached, so looking at a
// game never costs memory until a round is played.
func (m *Manager) View(ctx context.Context, playerID string) (GameState, bool, error) {
	if playerID != "" && !ValidPlayerID(playerID) {
		return GameState{}, false, ErrInvalidPlayer
	}
	if e := m.lookup(playerID); e != nil {
		s := e.snapshot(ctx)
		return s, s.Scores.Rounds() > 0, nil
	}
	if m.store == nil {
		return NewState(), false, nil
	}
	key := StorageKey(m.cfg.BaseKey, playerID)
	s, _, err := LoadOrDefault(ctx, m.store, key)
	if err != nil {
		l := m.logger()
		l.Warn().Err(err).Str("key", key).Msg("load state failed, using defaults")
	}
	return s, s.Scores.Rounds() > 0, nil
}

// Len returns the number of engines currently held.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.engines)
}

func (m *Manager) lookup(playerID string) *Engine {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c := m.engines[playerID]
	if c == nil {
		return nil
	}
	c.used.Store(m.clock.Add(1))
	return c.engine
}

// evictOldest drops the least recently used engine. Callers hold m.mu for writing.
func (m *Manager) evictOldest() {
	var (
		oldest string
		least  uint64
		found  bool
	)
	for id, c := range m.engines {
		if u := c.used.Load(); !found || u < least {
			oldest, least, found = id, u, true
		}
	}
	if found {
		delete(m.engines, oldest)
	}
}

func (m *Manager) logger() zerolog.Logger {
	if m.cfg.Logger != nil {
		return *m.cfg.Logger
	}
	return log.Logger
}

func (m *Manager) options(playerID string) []Option {
	var opts []Option
	if m.cfg.Moves != nil {
		opts = append(opts, WithMoveSource(m.cfg.Moves))
	}
	if m.cfg.Clock != nil {
		opts = append(opts, WithClock(m.cfg.Clock))
	}
	opts = append(opts, WithLogger(m.logger().With().Str("player", playerID).Logger()))
	if m.cfg.Reload {
		opts = append(opts, WithReload(true))
	}
	if x := m.cfg.Exporter; x != nil {
		opts = append(opts,
			WithRoundHook(func(r Round, t ScoreTally) { x.Round(playerID, r, t) }),
			WithResetHook(func() { x.Reset(playerID) }),
		)
	}
	return opts
}
