package cards

import "testing"

func TestScoreHandMakersPartneredPointsByTrickCount(t *testing.T) {
	tests := []struct {
		tricksWon map[Seat]int
		alone     bool
		wantPts   int
	}{
		{map[Seat]int{East: 3, West: 0, North: 1, South: 1}, false, 1},
		{map[Seat]int{East: 4, West: 0, North: 1, South: 0}, false, 1},
		{map[Seat]int{East: 5, West: 0, North: 0, South: 0}, false, 2},
	}
	for _, tt := range tests {
		g := NewHand(North, 1, Scores{}, 10, nil)
		maker := East
		g.Maker = &maker
		g.Alone = tt.alone
		g.TricksWon = tt.tricksWon
		result := scoreHand(g)
		if !result.OK {
			t.Fatalf("scoreHand() rejected unexpectedly: %+v", result.Reject)
		}
		if result.State.LastHand.PointsAwarded != tt.wantPts {
			t.Fatalf("PointsAwarded = %d, want %d for %+v", result.State.LastHand.PointsAwarded, tt.wantPts, tt.tricksWon)
		}
		if result.State.LastHand.AwardedTeam != TeamOf(East) {
			t.Fatalf("AwardedTeam = %s, want the makers' team", result.State.LastHand.AwardedTeam)
		}
	}
}

func TestScoreHandAloneFiveTricksFourPoints(t *testing.T) {
	g := NewHand(North, 1, Scores{}, 10, nil)
	maker := East
	g.Maker = &maker
	g.Alone = true
	g.TricksWon = map[Seat]int{East: 5}
	result := scoreHand(g)
	if !result.OK {
		t.Fatalf("scoreHand() rejected: %+v", result.Reject)
	}
	if result.State.LastHand.PointsAwarded != 4 {
		t.Fatalf("PointsAwarded = %d, want 4 for an alone sweep", result.State.LastHand.PointsAwarded)
	}
}

func TestScoreHandEuchreAwardsDefendersTwoPoints(t *testing.T) {
	g := NewHand(North, 1, Scores{}, 10, nil)
	maker := East
	g.Maker = &maker
	g.TricksWon = map[Seat]int{East: 2, West: 0, North: 2, South: 1}
	result := scoreHand(g)
	if !result.OK {
		t.Fatalf("scoreHand() rejected: %+v", result.Reject)
	}
	if !result.State.LastHand.Euchred {
		t.Fatalf("Euchred = false, want true when makers take under 3 tricks")
	}
	if result.State.LastHand.AwardedTeam != TeamOf(North) {
		t.Fatalf("AwardedTeam = %s, want the defenders' team", result.State.LastHand.AwardedTeam)
	}
	if result.State.LastHand.PointsAwarded != 2 {
		t.Fatalf("PointsAwarded = %d, want 2", result.State.LastHand.PointsAwarded)
	}
}

func TestScoreHandAdvancesToNextHandWithRotatedDealer(t *testing.T) {
	g := NewHand(North, 4, Scores{TeamA: 1, TeamB: 2}, 10, nil)
	maker := East
	g.Maker = &maker
	g.TricksWon = map[Seat]int{East: 3, West: 1, North: 1, South: 0}
	result := scoreHand(g)
	if !result.OK {
		t.Fatalf("scoreHand() rejected: %+v", result.Reject)
	}
	next := result.State
	if next.Phase != PhaseRound1Bidding {
		t.Fatalf("Phase after scoring = %s, want a freshly dealt %s", next.Phase, PhaseRound1Bidding)
	}
	if next.Dealer != East {
		t.Fatalf("Dealer after scoring = %s, want east (rotated from north)", next.Dealer)
	}
	if next.HandNumber != 5 {
		t.Fatalf("HandNumber after scoring = %d, want 5", next.HandNumber)
	}
	if next.Scores.TeamB != 3 {
		t.Fatalf("Scores.TeamB after scoring = %d, want 3 (2 + 1 for 4 maker tricks)", next.Scores.TeamB)
	}
	if next.LastHand == nil {
		t.Fatalf("LastHand must carry forward into the freshly dealt state")
	}
}

func TestScoreHandCompletesGameAtTargetScore(t *testing.T) {
	g := NewHand(North, 6, Scores{TeamA: 9, TeamB: 5}, 10, nil)
	maker := North
	g.Maker = &maker
	g.TricksWon = map[Seat]int{North: 3, South: 1, East: 1, West: 0}
	result := scoreHand(g)
	if !result.OK {
		t.Fatalf("scoreHand() rejected: %+v", result.Reject)
	}
	next := result.State
	if next.Phase != PhaseCompleted {
		t.Fatalf("Phase = %s, want %s once a team reaches targetScore", next.Phase, PhaseCompleted)
	}
	if next.Winner == nil || *next.Winner != TeamA {
		t.Fatalf("Winner = %v, want teamA", next.Winner)
	}
}

func TestNextDealerRotatesClockwise(t *testing.T) {
	g := &GameState{Dealer: North}
	if got := NextDealer(g); got != East {
		t.Fatalf("NextDealer(north) = %s, want east", got)
	}
}
