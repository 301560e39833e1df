package domain

import "fmt"

// Rank is one of the ten Truco ranks, ordered from weakest to strongest.
// The order doubles as the rank cycle used to pick the manilha.
type Rank int

const (
	RankFour Rank = iota
	RankFive
	RankSix
	RankSeven
	RankQueen
	RankJack
	RankKing
	RankAce
	RankTwo
	RankThree
)

// RankCount is the number of ranks in the Truco deck.
const RankCount = 10

var rankNames = [RankCount]string{"4", "5", "6", "7", "Q", "J", "K", "A", "2", "3"}

func (r Rank) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Rank(%d)", int(r))
	}
	return rankNames[r]
}

// Valid reports whether r is one of the ten Truco ranks.
func (r Rank) Valid() bool {
	return r >= RankFour && r <= RankThree
}

// Next returns the rank that follows r in the cycle, wrapping 3 back to 4.
func (r Rank) Next() Rank {
	return (r + 1) % RankCount
}

// Suit is a card suit, ordered from weakest to strongest manilha.
type Suit int

const (
	SuitDiamonds Suit = iota // ouros
	SuitSpades               // espadilha
	SuitHearts               // copas
	SuitClubs                // zap
)

// SuitCount is the number of suits.
const SuitCount = 4

var suitNames = [SuitCount]string{"D", "S", "H", "C"}

func (s Suit) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Suit(%d)", int(s))
	}
	return suitNames[s]
}

// Valid reports whether s is one of the four suits.
func (s Suit) Valid() bool {
	return s >= SuitDiamonds && s <= SuitClubs
}

// Card is an immutable playing card.
type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// ManilhaRank returns the trump rank for a hand flipped with the given indicator.
func ManilhaRank(indicator Card) Rank {
	return indicator.Rank.Next()
}

// IsManilha reports whether c is a manilha under the given indicator.
func IsManilha(c, indicator Card) bool {
	return c.Rank == ManilhaRank(indicator)
}

// manilhaBase is the lowest manilha strength; every non-manilha is below it.
const manilhaBase = RankCount

// StrengthOf computes the hand-scoped strength of a card.
// Non-manilhas of the same rank are equal; manilhas are strictly ordered by suit.
func StrengthOf(c, indicator Card) int {
	if IsManilha(c, indicator) {
		return manilhaBase + int(c.Suit)
	}
	return int(c.Rank)
}

// MarshalText encodes the rank by its face ("Q", "7", ...).
func (r Rank) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid rank %d", int(r))
	}
	return []byte(rankNames[r]), nil
}

// UnmarshalText decodes a rank face.
func (r *Rank) UnmarshalText(text []byte) error {
	for i, name := range rankNames {
		if name == string(text) {
			*r = Rank(i)
			return nil
		}
	}
	return fmt.Errorf("unknown rank %q", text)
}

// MarshalText encodes the suit by its letter.
func (s Suit) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid suit %d", int(s))
	}
	return []byte(suitNames[s]), nil
}

// UnmarshalText decodes a suit letter.
func (s *Suit) UnmarshalText(text []byte) error {
	for i, name := range suitNames {
		if name == string(text) {
			*s = Suit(i)
			return nil
		}
	}
	return fmt.Errorf("unknown suit %q", text)
}
