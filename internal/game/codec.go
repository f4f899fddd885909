package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kiliankoe/rpsdash/internal/storage"
)

// DefaultStorageKey is the key the game blob lives under when no player id scopes it.
const DefaultStorageKey = "rockPaperScissorsGame"

// StorageKey scopes the base key to one player.
func StorageKey(base, playerID string) string {
	if base == "" {
		base = DefaultStorageKey
	}
	if playerID == "" {
		return base
	}
	return base + ":" + playerID
}

type storedScores struct {
	Player   int `json:"player"`
	Computer int `json:"computer"`
	Ties     int `json:"ties"`
}

type storedEntry struct {
	Player    string  `json:"player"`
	Computer  string  `json:"computer"`
	Result    Outcome `json:"result"`
	Timestamp string  `json:"timestamp"`
}

type storedState struct {
	Scores  *storedScores `json:"scores"`
	History []storedEntry `json:"history"`
}

// EncodeState serialises s in the persisted layout, storing display names for moves.
func EncodeState(s GameState) ([]byte, error) {
	out := storedState{
		Scores:  &storedScores{Player: s.Scores.Player, Computer: s.Scores.Computer, Ties: s.Scores.Ties},
		History: make([]storedEntry, 0, len(s.History)),
	}
	for _, e := range s.History {
		out.History = append(out.History, storedEntry{
			Player:    e.PlayerMove.DisplayName(),
			Computer:  e.ComputerMove.DisplayName(),
			Result:    e.Outcome,
			Timestamp: e.Timestamp,
		})
	}
	return json.Marshal(out)
}

// DecodeState parses a persisted blob. A missing scores object or history list decodes to its zero
// value; anything else that does not validate is an error.
func DecodeState(blob []byte) (GameState, error) {
	var in storedState
	if err := json.Unmarshal(blob, &in); err != nil {
		return GameState{}, fmt.Errorf("decode state: %w", err)
	}
	var s GameState
	if in.Scores != nil {
		if in.Scores.Player < 0 || in.Scores.Computer < 0 || in.Scores.Ties < 0 {
			return GameState{}, errors.New("decode state: negative score")
		}
		s.Scores = ScoreTally{Player: in.Scores.Player, Computer: in.Scores.Computer, Ties: in.Scores.Ties}
	}
	s.History = make([]HistoryEntry, 0, min(len(in.History), HistoryLimit))
	for i, e := range in.History {
		if i == HistoryLimit {
			break
		}
		pm, err := ParseMove(e.Player)
		if err != nil {
			return GameState{}, fmt.Errorf("decode state: history[%d] player: %w", i, err)
		}
		cm, err := ParseMove(e.Computer)
		if err != nil {
			return GameState{}, fmt.Errorf("decode state: history[%d] computer: %w", i, err)
		}
		if !e.Result.Valid() {
			return GameState{}, fmt.Errorf("decode state: history[%d]: %w", i, ErrInvalidOutcome)
		}
		if want, _ := Decide(pm, cm); want != e.Result {
			return GameState{}, fmt.Errorf("decode state: history[%d]: %s vs %s is %s, not %s: %w", i, pm, cm, want, e.Result, ErrInvalidOutcome)
		}
		s.History = append(s.History, HistoryEntry{
			PlayerMove:   pm,
			ComputerMove: cm,
			Outcome:      e.Result,
			Timestamp:    e.Timestamp,
		})
	}
	return s, nil
}

// LoadOrDefault reads the state stored under key. Any read or decode failure, including a missing
// key, yields the zero state and fellBack=true, with the cause in err for logging.
func LoadOrDefault(ctx context.Context, store storage.Store, key string) (s GameState, fellBack bool, err error) {
	blob, err := store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return NewState(), true, nil
		}
		return NewState(), true, err
	}
	s, err = DecodeState(blob)
	if err != nil {
		return NewState(), true, err
	}
	return s, false, nil
}

// SaveState writes s under key.
func SaveState(ctx context.Context, store storage.Store, key string, s GameState) error {
	blob, err := EncodeState(s)
	if err != nil {
		return err
	}
	return store.Put(ctx, key, blob)
}

// NewState returns the zero tally with an empty, non-nil history.
func NewState() GameState {
	return GameState{History: []HistoryEntry{}}
}
