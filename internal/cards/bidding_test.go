package cards

import "testing"

func TestNewHandDealsRound1BiddingLedByDealerLeft(t *testing.T) {
	g := NewHand(North, 1, Scores{}, 10, nil)
	if g.Phase != PhaseRound1Bidding {
		t.Fatalf("Phase = %s, want %s", g.Phase, PhaseRound1Bidding)
	}
	if g.Bidding.CurrentSeat != East {
		t.Fatalf("Bidding.CurrentSeat = %s, want east (dealer-left of north)", g.Bidding.CurrentSeat)
	}
	if g.Upcard == nil {
		t.Fatalf("Upcard must be set after dealing")
	}
}

func TestOrderUpRejectsWrongPhase(t *testing.T) {
	g := NewHand(North, 1, Scores{}, 10, nil)
	g.Phase = PhasePlay
	result := OrderUp(g, East, false)
	if result.OK || result.Reject.Code != RejectInvalidState {
		t.Fatalf("OrderUp() in wrong phase = %+v, want RejectInvalidState", result)
	}
}

func TestOrderUpRejectsWrongSeat(t *testing.T) {
	g := NewHand(North, 1, Scores{}, 10, nil)
	result := OrderUp(g, West, false)
	if result.OK || result.Reject.Code != RejectNotYourTurn {
		t.Fatalf("OrderUp() out of turn = %+v, want RejectNotYourTurn", result)
	}
}

func TestOrderUpSetsTrumpAndStartsPlay(t *testing.T) {
	g := NewHand(North, 1, Scores{}, 10, nil)
	upcardSuit := g.Upcard.Suit
	dealerHandBefore := len(g.Hands[North])

	result := OrderUp(g, East, false)
	if !result.OK {
		t.Fatalf("OrderUp() rejected: %+v", result.Reject)
	}
	next := result.State
	if next.Trump == nil || *next.Trump != upcardSuit {
		t.Fatalf("Trump = %v, want %s", next.Trump, upcardSuit)
	}
	if next.Maker == nil || *next.Maker != East {
		t.Fatalf("Maker = %v, want east", next.Maker)
	}
	if next.Phase != PhasePlay {
		t.Fatalf("Phase = %s, want %s", next.Phase, PhasePlay)
	}
	if next.Upcard != nil {
		t.Fatalf("Upcard must be cleared once picked up")
	}
	if len(next.Hands[North]) != dealerHandBefore {
		t.Fatalf("dealer hand size = %d, want unchanged at %d after pickup+discard", len(next.Hands[North]), dealerHandBefore)
	}
	if next.CurrentTurn != East {
		t.Fatalf("CurrentTurn = %s, want east (dealer-left)", next.CurrentTurn)
	}
	assertSameMultiset(t, NewDeck(), allHandCards(next))
}

func TestOrderUpAloneSitsOutPartner(t *testing.T) {
	g := NewHand(North, 1, Scores{}, 10, nil)
	result := OrderUp(g, East, true)
	if !result.OK {
		t.Fatalf("OrderUp() rejected: %+v", result.Reject)
	}
	next := result.State
	if next.PartnerSitsOut == nil || *next.PartnerSitsOut != West {
		t.Fatalf("PartnerSitsOut = %v, want west", next.PartnerSitsOut)
	}
	if len(next.Trick.SeatOrder) != 3 {
		t.Fatalf("Trick.SeatOrder = %v, want 3 active seats", next.Trick.SeatOrder)
	}
}

func TestPassAdvancesCurrentSeat(t *testing.T) {
	g := NewHand(North, 1, Scores{}, 10, nil)
	result := Pass(g, East, nil)
	if !result.OK {
		t.Fatalf("Pass() rejected: %+v", result.Reject)
	}
	if result.State.Bidding.CurrentSeat != South {
		t.Fatalf("CurrentSeat = %s, want south", result.State.Bidding.CurrentSeat)
	}
}

func TestFourRound1PassesAdvanceToRound2(t *testing.T) {
	g := NewHand(North, 1, Scores{}, 10, nil)
	turnedDownSuit := g.Upcard.Suit
	for _, seat := range []Seat{East, South, West, North} {
		result := Pass(g, seat, nil)
		if !result.OK {
			t.Fatalf("Pass(%s) rejected: %+v", seat, result.Reject)
		}
		g = result.State
	}
	if g.Phase != PhaseRound2Bidding {
		t.Fatalf("Phase = %s, want %s", g.Phase, PhaseRound2Bidding)
	}
	if g.Bidding.TurnedDown == nil || *g.Bidding.TurnedDown != turnedDownSuit {
		t.Fatalf("TurnedDown = %v, want %s", g.Bidding.TurnedDown, turnedDownSuit)
	}
	if g.Bidding.CurrentSeat != East {
		t.Fatalf("round-2 CurrentSeat = %s, want east (dealer-left)", g.Bidding.CurrentSeat)
	}
}

func TestFourRound2PassesRedealsWithRotatedDealer(t *testing.T) {
	g := NewHand(North, 3, Scores{TeamA: 2, TeamB: 4}, 10, nil)
	for _, seat := range []Seat{East, South, West, North} {
		result := Pass(g, seat, nil)
		g = result.State
	}
	for _, seat := range []Seat{East, South, West, North} {
		result := Pass(g, seat, nil)
		if !result.OK {
			t.Fatalf("round-2 Pass(%s) rejected: %+v", seat, result.Reject)
		}
		g = result.State
	}
	if g.Dealer != East {
		t.Fatalf("redeal Dealer = %s, want east (rotated from north)", g.Dealer)
	}
	if g.Phase != PhaseRound1Bidding {
		t.Fatalf("redeal Phase = %s, want %s", g.Phase, PhaseRound1Bidding)
	}
	if g.HandNumber != 3 {
		t.Fatalf("redeal HandNumber = %d, want unchanged at 3", g.HandNumber)
	}
	if g.Scores.TeamA != 2 || g.Scores.TeamB != 4 {
		t.Fatalf("redeal Scores = %+v, want carried forward unchanged", g.Scores)
	}
}

func TestCallTrumpRejectsTurnedDownSuit(t *testing.T) {
	g := NewHand(North, 1, Scores{}, 10, nil)
	turnedDown := g.Upcard.Suit
	for _, seat := range []Seat{East, South, West, North} {
		g = Pass(g, seat, nil).State
	}
	result := CallTrump(g, East, turnedDown, false)
	if result.OK || result.Reject.Code != RejectInvalidAction {
		t.Fatalf("CallTrump(turned-down suit) = %+v, want RejectInvalidAction", result)
	}
}

func TestCallTrumpStartsPlayWithNewTrump(t *testing.T) {
	g := NewHand(North, 1, Scores{}, 10, nil)
	turnedDown := g.Upcard.Suit
	for _, seat := range []Seat{East, South, West, North} {
		g = Pass(g, seat, nil).State
	}
	var trump Suit
	for _, s := range allSuits {
		if s != turnedDown {
			trump = s
			break
		}
	}
	result := CallTrump(g, East, trump, false)
	if !result.OK {
		t.Fatalf("CallTrump() rejected: %+v", result.Reject)
	}
	next := result.State
	if next.Trump == nil || *next.Trump != trump {
		t.Fatalf("Trump = %v, want %s", next.Trump, trump)
	}
	if next.Phase != PhasePlay {
		t.Fatalf("Phase = %s, want %s", next.Phase, PhasePlay)
	}
}

func allHandCards(g *GameState) []Card {
	out := make([]Card, 0, 24)
	for _, seat := range SeatOrder {
		out = append(out, g.Hands[seat]...)
	}
	out = append(out, g.Kitty...)
	if g.Upcard != nil {
		out = append(out, *g.Upcard)
	}
	if g.Trick != nil {
		for _, p := range g.Trick.Plays {
			out = append(out, p.Card)
		}
	}
	return out
}
