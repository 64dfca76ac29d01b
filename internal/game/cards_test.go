package game

import "testing"

func TestHandTotal(t *testing.T) {
	cases := []struct {
		cards []Card
		want  int
	}{
		{[]Card{{Ace, Spades}, {King, Hearts}}, 21},
		{[]Card{{Ace, Spades}, {Ace, Hearts}}, 12},
		{[]Card{{Ace, Spades}, {Nine, Hearts}, {Five, Clubs}}, 15},
		{[]Card{{King, Spades}, {Queen, Hearts}, {Two, Clubs}}, 22},
		{[]Card{{Ace, Spades}, {Ace, Hearts}, {Ace, Clubs}, {Ace, Diamonds}, {Seven, Clubs}}, 21},
	}
	for _, tc := range cases {
		if got := HandTotal(tc.cards); got != tc.want {
			t.Fatalf("HandTotal(%v) = %d, want %d", cardStrings(tc.cards), got, tc.want)
		}
	}
}

func TestParseCardRoundTrip(t *testing.T) {
	for _, c := range NewDecks(1) {
		got, err := ParseCard(c.String())
		if err != nil {
			t.Fatalf("parse %s: %v", c, err)
		}
		if got != c {
			t.Fatalf("parse %s: got %s", c, got)
		}
	}
	if _, err := ParseCard("1X"); err == nil {
		t.Fatal("expected error for bad card")
	}
}

func TestShuffleKeepsEveryCard(t *testing.T) {
	deck := NewDecks(6)
	shuffled, err := Shuffle(Crypto, deck)
	if err != nil {
		t.Fatalf("shuffle: %v", err)
	}
	if len(shuffled) != 312 {
		t.Fatalf("expected 312 cards, got %d", len(shuffled))
	}
	counts := map[Card]int{}
	for _, c := range shuffled {
		counts[c]++
	}
	for c, n := range counts {
		if n != 6 {
			t.Fatalf("card %s appears %d times", c, n)
		}
	}
}

func TestShoeDealsFromFront(t *testing.T) {
	shoe := NewShoe([]Card{{Two, Hearts}, {Three, Clubs}})
	c, _ := shoe.Deal()
	if c != (Card{Two, Hearts}) {
		t.Fatalf("unexpected first card %s", c)
	}
	shoe.Deal()
	if _, err := shoe.Deal(); err != ErrShoeEmpty {
		t.Fatalf("expected ErrShoeEmpty, got %v", err)
	}
}
