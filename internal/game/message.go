package game

import "fmt"

const (
	WelcomeMessage     = "Welcome! Make your choice to start playing!"
	WelcomeBackMessage = "Welcome back! Your progress has been restored."
	ResetMessage       = "Scores reset! Make your choice to start playing!"
	EmptyHistoryText   = "No games played yet"
)

// Greeting picks the welcome text depending on whether earlier progress was restored.
func Greeting(restored bool) string {
	if restored {
		return WelcomeBackMessage
	}
	return WelcomeMessage
}

// ResultMessage describes a round from the player's point of view.
func ResultMessage(r Round) string {
	p, c := r.PlayerMove.DisplayName(), r.ComputerMove.DisplayName()
	switch r.Outcome {
	case Win:
		return fmt.Sprintf("You Win! %s beats %s!", p, c)
	case Lose:
		return fmt.Sprintf("You Lose! %s beats %s!", c, p)
	case Tie:
		return fmt.Sprintf("It's a Tie! Both chose %s!", p)
	}
	return ""
}

// HistoryLabel is the past-tense verb shown next to a history entry.
func HistoryLabel(o Outcome) string {
	switch o {
	case Win:
		return "Won"
	case Lose:
		return "Lost"
	case Tie:
		return "Tied"
	}
	return ""
}
