package domain

import (
	"encoding/json"
	"testing"
)

func TestManilhaRank(t *testing.T) {
	tests := []struct {
		indicator Rank
		want      Rank
	}{
		{RankFour, RankFive},
		{RankSeven, RankQueen},
		{RankQueen, RankJack},
		{RankKing, RankAce},
		{RankTwo, RankThree},
		{RankThree, RankFour},
	}
	for _, tt := range tests {
		got := ManilhaRank(Card{Rank: tt.indicator, Suit: SuitHearts})
		if got != tt.want {
			t.Fatalf("ManilhaRank(%s) = %s, want %s", tt.indicator, got, tt.want)
		}
	}
}

func TestStrengthOf(t *testing.T) {
	indicator := Card{Rank: RankSeven, Suit: SuitDiamonds} // manilha is Q

	tests := []struct {
		name     string
		stronger Card
		weaker   Card
	}{
		{"3 beats 2", Card{RankThree, SuitDiamonds}, Card{RankTwo, SuitClubs}},
		{"2 beats A", Card{RankTwo, SuitDiamonds}, Card{RankAce, SuitClubs}},
		{"K beats J", Card{RankKing, SuitDiamonds}, Card{RankJack, SuitClubs}},
		{"5 beats 4", Card{RankFive, SuitDiamonds}, Card{RankFour, SuitClubs}},
		{"weakest manilha beats 3", Card{RankQueen, SuitDiamonds}, Card{RankThree, SuitClubs}},
		{"zap beats copas", Card{RankQueen, SuitClubs}, Card{RankQueen, SuitHearts}},
		{"copas beats espadilha", Card{RankQueen, SuitHearts}, Card{RankQueen, SuitSpades}},
		{"espadilha beats ouros", Card{RankQueen, SuitSpades}, Card{RankQueen, SuitDiamonds}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, w := StrengthOf(tt.stronger, indicator), StrengthOf(tt.weaker, indicator)
			if s <= w {
				t.Fatalf("StrengthOf(%s)=%d, StrengthOf(%s)=%d", tt.stronger, s, tt.weaker, w)
			}
		})
	}
}

func TestStrengthOfNonManilhaIgnoresSuit(t *testing.T) {
	indicator := Card{Rank: RankFour, Suit: SuitClubs}
	for r := RankFour; r <= RankThree; r++ {
		if r == ManilhaRank(indicator) {
			continue
		}
		base := StrengthOf(Card{Rank: r, Suit: SuitDiamonds}, indicator)
		for s := SuitSpades; s <= SuitClubs; s++ {
			if got := StrengthOf(Card{Rank: r, Suit: s}, indicator); got != base {
				t.Fatalf("rank %s suit %s strength %d, want %d", r, s, got, base)
			}
		}
	}
}

func TestManilhaOrderIsTotal(t *testing.T) {
	indicator := Card{Rank: RankThree, Suit: SuitSpades} // manilha is 4
	seen := map[int]bool{}
	for s := SuitDiamonds; s <= SuitClubs; s++ {
		c := Card{Rank: RankFour, Suit: s}
		if !IsManilha(c, indicator) {
			t.Fatalf("%s should be a manilha", c)
		}
		v := StrengthOf(c, indicator)
		if seen[v] {
			t.Fatalf("two manilhas share strength %d", v)
		}
		seen[v] = true
	}
}

func TestCardJSON(t *testing.T) {
	data, err := json.Marshal(Card{Rank: RankQueen, Suit: SuitHearts})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"rank":"Q","suit":"H"}` {
		t.Fatalf("unexpected encoding %s", data)
	}

	var c Card
	if err := json.Unmarshal([]byte(`{"rank":"3","suit":"C"}`), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c != (Card{Rank: RankThree, Suit: SuitClubs}) {
		t.Fatalf("decoded %v", c)
	}

	if err := json.Unmarshal([]byte(`{"rank":"9","suit":"C"}`), &c); err == nil {
		t.Fatalf("expected error for rank 9")
	}
}
