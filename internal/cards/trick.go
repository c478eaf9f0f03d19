package cards

// isBower reports whether c is the right or left bower given trump.
func isBower(c Card, trump Suit) bool {
	if c.Rank != RankJ {
		return false
	}
	return c.Suit == trump || c.Suit == sameColorSuit(trump)
}

// isRightBower reports whether c is the right bower (J of trump).
func isRightBower(c Card, trump Suit) bool {
	return c.Rank == RankJ && c.Suit == trump
}

// isLeftBower reports whether c is the left bower (J of trump's same
// color, non-trump suit).
func isLeftBower(c Card, trump Suit) bool {
	return c.Rank == RankJ && c.Suit == sameColorSuit(trump) && c.Suit != trump
}

func sameColorSuit(s Suit) Suit {
	switch s {
	case Clubs:
		return Spades
	case Spades:
		return Clubs
	case Diamonds:
		return Hearts
	case Hearts:
		return Diamonds
	}
	return s
}

// EffectiveSuit returns the suit c counts as for follow-suit purposes: the
// left bower counts as trump (spec §4.2 "Trick").
func EffectiveSuit(c Card, trump Suit) Suit {
	if isLeftBower(c, trump) {
		return trump
	}
	return c.Suit
}

var rankPower = map[Rank]int{Rank9: 0, Rank10: 1, RankJ: 2, RankQ: 3, RankK: 4, RankA: 5}

// trickPower returns the numeric rank of c within the current trick, per
// spec §4.2: right bower > left bower > A > K > Q > 10 > 9 in trump;
// otherwise A > K > Q > J > 10 > 9 in the led (effective) suit; trump
// beats non-trump; non-led non-trump cannot win.
func trickPower(c Card, trump Suit, ledSuit Suit) int {
	if isRightBower(c, trump) {
		return 1000
	}
	if isLeftBower(c, trump) {
		return 999
	}
	if c.Suit == trump {
		return 500 + rankPower[c.Rank]
	}
	if EffectiveSuit(c, trump) == ledSuit {
		return 100 + rankPower[c.Rank]
	}
	return -1 // cannot win: neither trump nor the led suit
}

// PlayCard processes a play action within the current trick (spec §4.2,
// §6 game.play_card).
func PlayCard(g *GameState, actorSeat Seat, card Card) Result {
	if g.Phase != PhasePlay {
		return reject(g.Phase, "play_card", RejectInvalidState, "play_card is only legal during play")
	}
	if g.Trick == nil {
		return reject(g.Phase, "play_card", RejectInvalidState, "no trick in progress")
	}
	if g.CurrentTurn != actorSeat {
		return reject(g.Phase, "play_card", RejectNotYourTurn, "it is not this seat's turn")
	}
	if !HasCard(g.Hands[actorSeat], card) {
		return reject(g.Phase, "play_card", RejectInvalidAction, "card is not in hand")
	}
	if len(g.Trick.Plays) > 0 {
		led := EffectiveSuit(g.Trick.Plays[0].Card, *g.Trump)
		if EffectiveSuit(card, *g.Trump) != led && handHasSuit(g.Hands[actorSeat], led, *g.Trump) {
			return reject(g.Phase, "play_card", RejectInvalidAction, "must follow suit")
		}
	}

	next := g.Clone()
	next.Hands[actorSeat] = RemoveCard(next.Hands[actorSeat], card)
	next.Trick.Plays = append(next.Trick.Plays, TrickPlay{Seat: actorSeat, Card: card})

	if len(next.Trick.Plays) < len(next.Trick.SeatOrder) {
		next.CurrentTurn = nextActiveSeat(next, actorSeat)
		return ok(next)
	}

	// Trick complete: resolve the winner.
	winner := resolveTrick(next.Trick, *next.Trump)
	next.TricksWon[winner]++
	next.CurrentTurn = winner

	tricksPlayed := 0
	for _, n := range next.TricksWon {
		tricksPlayed += n
	}
	if tricksPlayed == tricksPerHand {
		next.Trick = nil
		return scoreHand(next)
	}

	next.Trick = &Trick{LeaderSeat: winner, SeatOrder: activeSeats(next)}
	return ok(next)
}

// handHasSuit reports whether hand holds any card whose effective suit
// (bower-aware) equals suit.
func handHasSuit(hand []Card, suit Suit, trump Suit) bool {
	for _, c := range hand {
		if EffectiveSuit(c, trump) == suit {
			return true
		}
	}
	return false
}

// resolveTrick returns the seat that won a completed trick.
func resolveTrick(t *Trick, trump Suit) Seat {
	ledSuit := EffectiveSuit(t.Plays[0].Card, trump)
	bestSeat := t.Plays[0].Seat
	bestPower := trickPower(t.Plays[0].Card, trump, ledSuit)
	for _, p := range t.Plays[1:] {
		power := trickPower(p.Card, trump, ledSuit)
		if power > bestPower {
			bestPower = power
			bestSeat = p.Seat
		}
	}
	return bestSeat
}
