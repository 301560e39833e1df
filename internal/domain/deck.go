package domain

import (
	"fmt"
	"math/rand"
)

const (
	// SeatCount is the fixed number of seats at a Truco table.
	SeatCount = 4
	// HandSize is the number of cards dealt to each seat.
	HandSize = 3
	// DeckSize is the number of cards in the Truco deck (8s, 9s and 10s removed).
	DeckSize = RankCount * SuitCount
)

// NewDeck returns the ordered 40-card Truco deck.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for s := SuitDiamonds; s <= SuitClubs; s++ {
		for r := RankFour; r <= RankThree; r++ {
			deck = append(deck, Card{Rank: r, Suit: s})
		}
	}
	return deck
}

// Deal is the output of one deal: a hand per seat plus the flipped indicator.
type Deal struct {
	Hands     [SeatCount][]Card
	Indicator Card
}

// DealHand shuffles a fresh deck with rng and deals three cards to each seat in
// seat order; the thirteenth card becomes the indicator.
func DealHand(rng *rand.Rand) (Deal, error) {
	deck := NewDeck()
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return DealFrom(deck)
}

// DealFrom deals from an already ordered deck. Tests use it to stack hands.
func DealFrom(deck []Card) (Deal, error) {
	need := SeatCount*HandSize + 1
	if len(deck) < need {
		return Deal{}, fmt.Errorf("deck exhausted: have %d cards, need %d", len(deck), need)
	}
	var d Deal
	for seat := 0; seat < SeatCount; seat++ {
		start := seat * HandSize
		d.Hands[seat] = append([]Card{}, deck[start:start+HandSize]...)
	}
	d.Indicator = deck[SeatCount*HandSize]
	return d, nil
}
