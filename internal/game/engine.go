package game

import (
	"context"
	"sync"
	"time"

	"github.com/kiliankoe/rpsdash/internal/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// TimestampLayout renders history timestamps as a local wall-clock time.
const TimestampLayout = "3:04:05 PM"

// Engine owns one player's GameState and writes it back to the store after every mutation.
// Write failures are logged and skipped; the in-memory state stays authoritative.
type Engine struct {
	mu       sync.Mutex
	store    storage.Store
	key      string
	moves    MoveSource
	now      func() time.Time
	log      zerolog.Logger
	state    GameState
	restored bool
	reload   bool
	onRound  func(Round, ScoreTally)
	onReset  func()
}

type Option func(*Engine)

func WithMoveSource(src MoveSource) Option {
	return func(e *Engine) { e.moves = src }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithReload makes the engine re-read its state from the store before every mutation, for stores
// that other processes write to as well.
func WithReload(on bool) Option {
	return func(e *Engine) { e.reload = on }
}

// WithRoundHook registers a callback run after each Play with the applied round and tally.
func WithRoundHook(fn func(Round, ScoreTally)) Option {
	return func(e *Engine) { e.onRound = fn }
}

// WithResetHook registers a callback run after each ResetAll.
func WithResetHook(fn func()) Option {
	return func(e *Engine) { e.onReset = fn }
}

// NewEngine returns an engine with the zero state. Call LoadState to pick up persisted progress.
func NewEngine(store storage.Store, key string, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		key:   key,
		moves: RandomMoves,
		now:   time.Now,
		log:   log.Logger,
		state: NewState(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// LoadState replaces the in-memory state with the persisted one, or with defaults if nothing
// usable is stored.
func (e *Engine) LoadState(ctx context.Context) GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.store == nil {
		e.state = NewState()
		return e.state.Clone()
	}
	s, fellBack, err := LoadOrDefault(ctx, e.store, e.key)
	if err != nil {
		e.log.Warn().Err(err).Str("key", e.key).Msg("load state failed, using defaults")
	}
	e.state = s
	e.restored = !fellBack && s.Scores.Rounds() > 0
	return e.state.Clone()
}

// ResolveRound draws the computer move and decides the outcome. It does not touch state.
func (e *Engine) ResolveRound(playerMove Move) (Round, error) {
	if !playerMove.Valid() {
		return Round{}, ErrInvalidMove
	}
	e.mu.Lock()
	cm := e.moves.Next()
	e.mu.Unlock()
	outcome, err := Decide(playerMove, cm)
	if err != nil {
		return Round{}, err
	}
	return Round{PlayerMove: playerMove, ComputerMove: cm, Outcome: outcome}, nil
}

// ApplyOutcome bumps the tally field matching outcome and persists.
func (e *Engine) ApplyOutcome(ctx context.Context, outcome Outcome) (ScoreTally, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refresh(ctx)
	if err := e.applyOutcome(outcome); err != nil {
		return e.state.Scores, err
	}
	e.save(ctx)
	return e.state.Scores, nil
}

// RecordHistory prepends a new entry stamped with the current time, keeping the newest HistoryLimit.
func (e *Engine) RecordHistory(ctx context.Context, playerMove, computerMove Move, outcome Outcome) ([]HistoryEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refresh(ctx)
	if err := e.recordHistory(playerMove, computerMove, outcome); err != nil {
		return e.historyCopy(), err
	}
	e.save(ctx)
	return e.historyCopy(), nil
}

// Play resolves a round, applies it to the tally and history, and persists once.
func (e *Engine) Play(ctx context.Context, playerMove Move) (PlayResult, error) {
	r, err := e.ResolveRound(playerMove)
	if err != nil {
		return PlayResult{}, err
	}
	e.mu.Lock()
	e.refresh(ctx)
	if err := e.applyOutcome(r.Outcome); err != nil {
		e.mu.Unlock()
		return PlayResult{}, err
	}
	if err := e.recordHistory(r.PlayerMove, r.ComputerMove, r.Outcome); err != nil {
		e.mu.Unlock()
		return PlayResult{}, err
	}
	e.save(ctx)
	res := PlayResult{Round: r, Scores: e.state.Scores, History: e.historyCopy()}
	hook := e.onRound
	e.mu.Unlock()

	e.log.Debug().Str("key", e.key).Str("player", string(r.PlayerMove)).Str("computer", string(r.ComputerMove)).Str("outcome", string(r.Outcome)).Msg("round")
	if hook != nil {
		hook(r, res.Scores)
	}
	return res, nil
}

// ResetAll clears tally and history and persists the empty state.
func (e *Engine) ResetAll(ctx context.Context) GameState {
	e.mu.Lock()
	e.state = NewState()
	e.restored = false
	e.save(ctx)
	s := e.state.Clone()
	hook := e.onReset
	e.mu.Unlock()

	if hook != nil {
		hook()
	}
	return s
}

// State returns a snapshot of the current tally and history.
func (e *Engine) State() GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Restored reports whether LoadState found a previous game with at least one round.
func (e *Engine) Restored() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.restored
}

// snapshot is State, re-reading the store first when reload is on.
func (e *Engine) snapshot(ctx context.Context) GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refresh(ctx)
	return e.state.Clone()
}

// refresh re-reads the stored state when reload is on. A failed read keeps the in-memory state.
// Callers hold e.mu.
func (e *Engine) refresh(ctx context.Context) {
	if !e.reload || e.store == nil {
		return
	}
	s, fellBack, err := LoadOrDefault(ctx, e.store, e.key)
	if err != nil {
		e.log.Warn().Err(err).Str("key", e.key).Msg("reload state failed, keeping memory copy")
		return
	}
	e.state = s
	if fellBack || s.Scores.Rounds() == 0 {
		e.restored = false
	}
}

func (e *Engine) applyOutcome(outcome Outcome) error {
	switch outcome {
	case Win:
		e.state.Scores.Player++
	case Lose:
		e.state.Scores.Computer++
	case Tie:
		e.state.Scores.Ties++
	default:
		return ErrInvalidOutcome
	}
	return nil
}

func (e *Engine) recordHistory(playerMove, computerMove Move, outcome Outcome) error {
	if !playerMove.Valid() || !computerMove.Valid() {
		return ErrInvalidMove
	}
	if want, _ := Decide(playerMove, computerMove); want != outcome {
		return ErrInvalidOutcome
	}
	entry := HistoryEntry{
		PlayerMove:   playerMove,
		ComputerMove: computerMove,
		Outcome:      outcome,
		Timestamp:    e.now().Format(TimestampLayout),
	}
	h := make([]HistoryEntry, 0, HistoryLimit)
	h = append(h, entry)
	h = append(h, e.state.History...)
	if len(h) > HistoryLimit {
		h = h[:HistoryLimit]
	}
	e.state.History = h
	return nil
}

func (e *Engine) historyCopy() []HistoryEntry {
	return e.state.Clone().History
}

func (e *Engine) save(ctx context.Context) {
	if e.store == nil {
		return
	}
	if err := SaveState(ctx, e.store, e.key, e.state); err != nil {
		e.log.Warn().Err(err).Str("key", e.key).Msg("persist state failed")
	}
}
