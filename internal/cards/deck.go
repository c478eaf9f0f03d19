package cards

import (
	"math/rand"
	"time"
)

// tricksPerHand is the number of tricks in a Euchre hand: each seat is
// dealt 5 cards, so a hand (alone or not) always plays out 5 tricks.
const tricksPerHand = 5

// NewDeck returns the canonical ordered 24-card Euchre deck.
func NewDeck() []Card {
	return allCards()
}

// ShuffleDeck returns a shuffled copy of deck using the given rng. Passing
// nil uses a time-seeded default, matching the teacher's ShuffleDeck
// convenience but keeping determinism available to callers that supply an
// rng (tests, replay).
func ShuffleDeck(deck []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Deal splits a 24-card shuffled deck into four 5-card hands, a 1-card
// upcard, and a 3-card kitty, dealing clockwise starting left of the
// dealer — the conventional Euchre deal (3-2 batches, upcard from the
// remainder). Hand ordering in seat-order is deterministic given the
// shuffled deck.
func Deal(shuffled []Card, dealer Seat) (hands map[Seat][]Card, upcard Card, kitty []Card) {
	if len(shuffled) != 24 {
		panic("cards: Deal requires a 24-card deck")
	}
	hands = make(map[Seat][]Card, 4)
	order := dealOrder(dealer)
	idx := 0
	batches := []int{3, 2}
	for _, sz := range batches {
		for _, seat := range order {
			hands[seat] = append(hands[seat], shuffled[idx:idx+sz]...)
			idx += sz
		}
	}
	upcard = shuffled[idx]
	idx++
	kitty = append([]Card(nil), shuffled[idx:]...)
	for _, seat := range SeatOrder {
		SortHand(hands[seat])
	}
	return hands, upcard, kitty
}

// dealOrder returns the four seats starting left of the dealer.
func dealOrder(dealer Seat) [4]Seat {
	first := NextSeat(dealer)
	var out [4]Seat
	s := first
	for i := 0; i < 4; i++ {
		out[i] = s
		s = NextSeat(s)
	}
	return out
}

// SortHand orders a hand by suit then rank for stable wire projections.
func SortHand(hand []Card) {
	rankOrder := map[Rank]int{Rank9: 0, Rank10: 1, RankJ: 2, RankQ: 3, RankK: 4, RankA: 5}
	suitOrder := map[Suit]int{Clubs: 0, Diamonds: 1, Hearts: 2, Spades: 3}
	for i := 1; i < len(hand); i++ {
		for j := i; j > 0; j-- {
			a, b := hand[j-1], hand[j]
			if suitOrder[a.Suit] > suitOrder[b.Suit] ||
				(suitOrder[a.Suit] == suitOrder[b.Suit] && rankOrder[a.Rank] > rankOrder[b.Rank]) {
				hand[j-1], hand[j] = hand[j], hand[j-1]
			} else {
				break
			}
		}
	}
}

// RemoveCard removes one occurrence of c from hand, grounded on the
// teacher's count-map RemoveCards helper (domain/match_state.go).
func RemoveCard(hand []Card, c Card) []Card {
	out := make([]Card, 0, len(hand))
	removed := false
	for _, card := range hand {
		if !removed && card == c {
			removed = true
			continue
		}
		out = append(out, card)
	}
	return out
}

// HasCard reports whether hand contains c.
func HasCard(hand []Card, c Card) bool {
	for _, card := range hand {
		if card == c {
			return true
		}
	}
	return false
}
