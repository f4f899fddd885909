package game

import "math/rand/v2"

// beats maps each move to the move it defeats.
var beats = map[Move]Move{
	Rock:     Scissors,
	Scissors: Paper,
	Paper:    Rock,
}

// Beats reports whether a defeats b.
func Beats(a, b Move) bool {
	return beats[a] == b
}

// Decide returns the outcome for the player. Both moves must be valid.
func Decide(player, computer Move) (Outcome, error) {
	if !player.Valid() || !computer.Valid() {
		return "", ErrInvalidMove
	}
	switch {
	case player == computer:
		return Tie, nil
	case Beats(player, computer):
		return Win, nil
	default:
		return Lose, nil
	}
}

// MoveSource draws the computer's move.
type MoveSource interface {
	Next() Move
}

// MoveSourceFunc adapts a plain function to MoveSource.
type MoveSourceFunc func() Move

func (f MoveSourceFunc) Next() Move { return f() }

// RandomMoves draws uniformly from Moves, independent of history.
var RandomMoves MoveSource = MoveSourceFunc(func() Move {
	return Moves[rand.IntN(len(Moves))]
})

// FixedMove always plays m. Useful for tests and demos.
func FixedMove(m Move) MoveSource {
	return MoveSourceFunc(func() Move { return m })
}
