package cards

import "math/rand"

// NewHand deals a fresh hand for dealer, starting round-1 bidding led by
// dealer-left (spec §4.2 "Bidding", GLOSSARY "Dealer-left").
func NewHand(dealer Seat, handNumber int, scores Scores, targetScore int, rng *rand.Rand) *GameState {
	shuffled := ShuffleDeck(NewDeck(), rng)
	hands, upcard, kitty := Deal(shuffled, dealer)
	return &GameState{
		Phase:       PhaseRound1Bidding,
		HandNumber:  handNumber,
		Dealer:      dealer,
		TargetScore: targetScore,
		Scores:      scores,
		Hands:       hands,
		Upcard:      &upcard,
		Kitty:       kitty,
		Bidding: &Bidding{
			Round:       1,
			CurrentSeat: NextSeat(dealer),
		},
		TricksWon: map[Seat]int{},
	}
}

// OrderUp handles a round-1 "order_up" bid: the upcard's suit becomes
// trump, the dealer picks it up (and discards), and play begins led by
// dealer-left.
func OrderUp(g *GameState, actorSeat Seat, alone bool) Result {
	if g.Phase != PhaseRound1Bidding {
		return reject(g.Phase, "order_up", RejectInvalidState, "order_up is only legal during round-1 bidding")
	}
	if g.Bidding == nil || g.Bidding.CurrentSeat != actorSeat {
		return reject(g.Phase, "order_up", RejectNotYourTurn, "it is not this seat's turn to bid")
	}

	next := g.Clone()
	trump := next.Upcard.Suit
	next.Trump = &trump
	maker := actorSeat
	next.Maker = &maker
	next.Alone = alone

	// Dealer picks up the upcard, then discards back down to five cards:
	// lowest-ranked non-bower, deterministically.
	dealerHand := append([]Card(nil), next.Hands[g.Dealer]...)
	dealerHand = append(dealerHand, *next.Upcard)
	discardIdx := chooseDiscard(dealerHand, trump)
	discarded := dealerHand[discardIdx]
	dealerHand = append(dealerHand[:discardIdx], dealerHand[discardIdx+1:]...)
	next.Hands[g.Dealer] = dealerHand
	next.Kitty = append(next.Kitty, discarded)
	next.Upcard = nil

	if alone {
		partner := partnerSeat(actorSeat)
		next.PartnerSitsOut = &partner
	}

	next.Bidding = nil
	next.Phase = PhasePlay
	next.Trick = &Trick{
		LeaderSeat: NextSeat(g.Dealer),
		SeatOrder:  activeSeats(next),
	}
	next.CurrentTurn = firstActingSeat(next, NextSeat(g.Dealer))
	return ok(next)
}

// chooseDiscard picks a deterministic discard index: the lowest-ranked
// non-bower card, falling back to the lowest-ranked card overall.
func chooseDiscard(hand []Card, trump Suit) int {
	power := func(c Card) int { return cardPowerOffTrump(c, trump) }
	best := 0
	for i := 1; i < len(hand); i++ {
		if isBower(hand[i], trump) {
			continue
		}
		if isBower(hand[best], trump) || power(hand[i]) < power(hand[best]) {
			best = i
		}
	}
	return best
}

func cardPowerOffTrump(c Card, trump Suit) int {
	rankOrder := map[Rank]int{Rank9: 0, Rank10: 1, RankJ: 2, RankQ: 3, RankK: 4, RankA: 5}
	return rankOrder[c.Rank]
}

// Pass handles a pass during either bidding round. Four round-1 passes
// advance to round-2; four round-2 passes trigger a redeal with the
// dealer rotated.
func Pass(g *GameState, actorSeat Seat, rng *rand.Rand) Result {
	if g.Phase != PhaseRound1Bidding && g.Phase != PhaseRound2Bidding {
		return reject(g.Phase, "pass", RejectInvalidState, "pass is only legal during bidding")
	}
	if g.Bidding == nil || g.Bidding.CurrentSeat != actorSeat {
		return reject(g.Phase, "pass", RejectNotYourTurn, "it is not this seat's turn to bid")
	}

	next := g.Clone()
	next.Bidding.PassedSeats = append(next.Bidding.PassedSeats, actorSeat)

	if len(next.Bidding.PassedSeats) < 4 {
		next.Bidding.CurrentSeat = NextSeat(actorSeat)
		return ok(next)
	}

	if next.Phase == PhaseRound1Bidding {
		turnedDown := next.Upcard.Suit
		next.Phase = PhaseRound2Bidding
		next.Bidding = &Bidding{
			Round:       2,
			TurnedDown:  &turnedDown,
			CurrentSeat: NextSeat(g.Dealer),
		}
		return ok(next)
	}

	// Four round-2 passes: redeal with dealer rotated.
	newDealer := NextSeat(g.Dealer)
	redealt := NewHand(newDealer, g.HandNumber, g.Scores, g.TargetScore, rng)
	redealt.Seats = next.Seats
	return ok(redealt)
}

// CallTrump handles a round-2 "call_trump" bid: actorSeat names trump
// (which must not be the turned-down suit) and becomes maker.
func CallTrump(g *GameState, actorSeat Seat, trump Suit, alone bool) Result {
	if g.Phase != PhaseRound2Bidding {
		return reject(g.Phase, "call_trump", RejectInvalidState, "call_trump is only legal during round-2 bidding")
	}
	if g.Bidding == nil || g.Bidding.CurrentSeat != actorSeat {
		return reject(g.Phase, "call_trump", RejectNotYourTurn, "it is not this seat's turn to bid")
	}
	if g.Bidding.TurnedDown != nil && *g.Bidding.TurnedDown == trump {
		return reject(g.Phase, "call_trump", RejectInvalidAction, "cannot call the turned-down suit as trump")
	}

	next := g.Clone()
	t := trump
	next.Trump = &t
	maker := actorSeat
	next.Maker = &maker
	next.Alone = alone
	if alone {
		partner := partnerSeat(actorSeat)
		next.PartnerSitsOut = &partner
	}
	next.Bidding = nil
	next.Phase = PhasePlay
	next.Trick = &Trick{
		LeaderSeat: NextSeat(g.Dealer),
		SeatOrder:  activeSeats(next),
	}
	next.CurrentTurn = firstActingSeat(next, NextSeat(g.Dealer))
	return ok(next)
}

// firstActingSeat returns lead if lead is active this hand, else the next
// active seat clockwise from it (covers the rare case the leader sits out
// an alone hand).
func firstActingSeat(g *GameState, lead Seat) Seat {
	if g.PartnerSitsOut != nil && *g.PartnerSitsOut == lead {
		return nextActiveSeat(g, lead)
	}
	return lead
}

func partnerSeat(s Seat) Seat {
	switch s {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	default:
		return East
	}
}
