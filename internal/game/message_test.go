package game

import "testing"

func TestResultMessage(t *testing.T) {
	cases := map[Round]string{
		{PlayerMove: Rock, ComputerMove: Scissors, Outcome: Win}: "You Win! Rock beats Scissors!",
		{PlayerMove: Rock, ComputerMove: Paper, Outcome: Lose}:   "You Lose! Paper beats Rock!",
		{PlayerMove: Paper, ComputerMove: Paper, Outcome: Tie}:   "It's a Tie! Both chose Paper!",
	}
	for r, want := range cases {
		if got := ResultMessage(r); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
}

func TestHistoryLabel(t *testing.T) {
	if HistoryLabel(Win) != "Won" || HistoryLabel(Lose) != "Lost" || HistoryLabel(Tie) != "Tied" {
		t.Fatal("unexpected history labels")
	}
	if HistoryLabel("nope") != "" {
		t.Fatal("unknown outcome should have no label")
	}
}

func TestGreeting(t *testing.T) {
	if Greeting(false) != WelcomeMessage {
		t.Fatal("fresh game should get the welcome message")
	}
	if Greeting(true) != WelcomeBackMessage {
		t.Fatal("restored game should get the welcome back message")
	}
}
