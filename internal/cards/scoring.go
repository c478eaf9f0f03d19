package cards

// scoreHand computes the outcome of a just-finished hand and advances the
// state to a freshly dealt next hand with the dealer rotated, or to
// PhaseCompleted if a team has reached targetScore (spec §4.2 "Scoring").
func scoreHand(g *GameState) Result {
	maker := *g.Maker
	makerTeam := TeamOf(maker)
	makerTricks := 0
	for seat, n := range g.TricksWon {
		if TeamOf(seat) == makerTeam {
			makerTricks += n
		}
	}

	points := 0
	awardedTeam := makerTeam
	euchred := false
	switch {
	case makerTricks == 5 && g.Alone:
		points = 4
	case makerTricks == 5:
		points = 2
	case makerTricks >= 3:
		points = 1
	default:
		euchred = true
		awardedTeam = OpposingTeam(makerTeam)
		points = 2
	}

	if awardedTeam == TeamA {
		g.Scores.TeamA += points
	} else {
		g.Scores.TeamB += points
	}

	lastHand := &LastHand{
		Maker:         maker,
		MakerTeam:     makerTeam,
		TricksWon:     cloneIntMap(g.TricksWon),
		PointsAwarded: points,
		AwardedTeam:   awardedTeam,
		Euchred:       euchred,
	}

	if g.Scores.TeamA >= g.TargetScore || g.Scores.TeamB >= g.TargetScore {
		g.Phase = PhaseCompleted
		g.LastHand = lastHand
		winner := TeamA
		if g.Scores.TeamB > g.Scores.TeamA {
			winner = TeamB
		}
		g.Winner = &winner
		return ok(g)
	}

	next := NewHand(NextSeat(g.Dealer), g.HandNumber+1, g.Scores, g.TargetScore, nil)
	next.Seats = g.Seats
	next.LastHand = lastHand
	return ok(next)
}

// NextDealer returns the dealer seat for the hand following g, rotated
// clockwise from the current dealer.
func NextDealer(g *GameState) Seat {
	return NextSeat(g.Dealer)
}
