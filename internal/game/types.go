package game

import (
	"errors"
	"strings"
)

var (
	ErrInvalidMove    = errors.New("invalid move")
	ErrInvalidOutcome = errors.New("invalid outcome")
)

// HistoryLimit is the number of rounds kept in the history log.
const HistoryLimit = 10

type Move string

const (
	Rock     Move = "rock"
	Paper    Move = "paper"
	Scissors Move = "scissors"
)

// Moves lists the closed move set in draw order.
var Moves = [...]Move{Rock, Paper, Scissors}

var displayNames = map[Move]string{
	Rock:     "Rock",
	Paper:    "Paper",
	Scissors: "Scissors",
}

func (m Move) Valid() bool {
	_, ok := displayNames[m]
	return ok
}

// DisplayName returns the capitalised name shown to players and stored in history.
func (m Move) DisplayName() string {
	return displayNames[m]
}

// ParseMove accepts either the lower-case id or the display name, ignoring case and surrounding space.
func ParseMove(s string) (Move, error) {
	m := Move(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", ErrInvalidMove
	}
	return m, nil
}

type Outcome string

const (
	Win  Outcome = "win"
	Lose Outcome = "lose"
	Tie  Outcome = "tie"
)

func (o Outcome) Valid() bool {
	switch o {
	case Win, Lose, Tie:
		return true
	}
	return false
}

type ScoreTally struct {
	Player   int `json:"player"`
	Computer int `json:"computer"`
	Ties     int `json:"ties"`
}

// Rounds is the number of rounds played since the last reset.
func (t ScoreTally) Rounds() int {
	return t.Player + t.Computer + t.Ties
}

type HistoryEntry struct {
	PlayerMove   Move    `json:"playerMove"`
	ComputerMove Move    `json:"computerMove"`
	Outcome      Outcome `json:"outcome"`
	Timestamp    string  `json:"timestamp"`
}

type GameState struct {
	Scores  ScoreTally     `json:"scores"`
	History []HistoryEntry `json:"history"`
}

// Clone returns a copy that shares no memory with s.
func (s GameState) Clone() GameState {
	h := make([]HistoryEntry, len(s.History))
	copy(h, s.History)
	return GameState{Scores: s.Scores, History: h}
}

// Round is the result of resolving one player move.
type Round struct {
	PlayerMove   Move    `json:"playerMove"`
	ComputerMove Move    `json:"computerMove"`
	Outcome      Outcome `json:"outcome"`
}

// PlayResult bundles a resolved round with the snapshots taken after it was applied.
type PlayResult struct {
	Round
	Scores  ScoreTally     `json:"scores"`
	History []HistoryEntry `json:"history"`
}
