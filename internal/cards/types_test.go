package cards

import "testing"

func TestCardIDRoundTrips(t *testing.T) {
	for _, c := range allCards() {
		id := c.ID()
		got, ok := ParseCardID(id)
		if !ok {
			t.Fatalf("ParseCardID(%q) ok = false", id)
		}
		if got != c {
			t.Fatalf("ParseCardID(%q) = %+v, want %+v", id, got, c)
		}
	}
}

func TestParseCardIDRejectsGarbage(t *testing.T) {
	tests := []string{"", "clubs", "clubs:", "clubs:2", "wands:9", "clubs:9:extra"}
	for _, id := range tests {
		if _, ok := ParseCardID(id); ok {
			t.Fatalf("ParseCardID(%q) ok = true, want false", id)
		}
	}
}

func TestTeamOf(t *testing.T) {
	tests := []struct {
		seat Seat
		want Team
	}{
		{North, TeamA}, {South, TeamA}, {East, TeamB}, {West, TeamB},
	}
	for _, tt := range tests {
		if got := TeamOf(tt.seat); got != tt.want {
			t.Fatalf("TeamOf(%s) = %s, want %s", tt.seat, got, tt.want)
		}
	}
}

func TestOpposingTeam(t *testing.T) {
	if OpposingTeam(TeamA) != TeamB {
		t.Fatalf("OpposingTeam(TeamA) != TeamB")
	}
	if OpposingTeam(TeamB) != TeamA {
		t.Fatalf("OpposingTeam(TeamB) != TeamA")
	}
}

func TestNextSeatRotatesClockwise(t *testing.T) {
	order := []Seat{North, East, South, West, North}
	for i := 0; i < len(order)-1; i++ {
		if got := NextSeat(order[i]); got != order[i+1] {
			t.Fatalf("NextSeat(%s) = %s, want %s", order[i], got, order[i+1])
		}
	}
}

func TestGameStateCloneIsIndependent(t *testing.T) {
	g := NewHand(North, 1, Scores{}, 10, nil)
	clone := g.Clone()

	clone.Hands[North] = append([]Card(nil), clone.Hands[North]...)
	clone.Hands[North][0] = Card{Suit: Hearts, Rank: RankA}
	clone.Bidding.CurrentSeat = West
	clone.Scores.TeamA = 99

	if g.Hands[North][0] == (Card{Suit: Hearts, Rank: RankA}) {
		t.Fatalf("mutating a clone's hand mutated the original")
	}
	if g.Bidding.CurrentSeat == West {
		t.Fatalf("mutating a clone's bidding mutated the original")
	}
	if g.Scores.TeamA == 99 {
		t.Fatalf("mutating a clone's scores mutated the original")
	}
}

func TestGameStateCloneOfNil(t *testing.T) {
	var g *GameState
	if got := g.Clone(); got != nil {
		t.Fatalf("Clone() of a nil *GameState = %v, want nil", got)
	}
}
