package game

import (
	"fmt"
	"strings"
)

type Suit int

type Rank int

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

const (
	Two   Rank = 2
	Three Rank = 3
	Four  Rank = 4
	Five  Rank = 5
	Six   Rank = 6
	Seven Rank = 7
	Eight Rank = 8
	Nine  Rank = 9
	Ten   Rank = 10
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
)

var rankNames = map[Rank]string{
	Two: "2", Three: "3", Four: "4", Five: "5", Six: "6", Seven: "7", Eight: "8", Nine: "9", Ten: "10", Jack: "J", Queen: "Q", King: "K", Ace: "A",
}

var suitSymbols = map[Suit]string{Hearts: "♥", Diamonds: "♦", Clubs: "♣", Spades: "♠"}

type Card struct {
	Rank Rank
	Suit Suit
}

func (c Card) String() string {
	return rankNames[c.Rank] + suitSymbols[c.Suit]
}

func (c Card) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ParseCard reads the String form, e.g. "A♠" or "10♥".
func ParseCard(s string) (Card, error) {
	for suit, sym := range suitSymbols {
		name, ok := strings.CutSuffix(s, sym)
		if !ok {
			continue
		}
		for rank, rn := range rankNames {
			if rn == name {
				return Card{Rank: rank, Suit: suit}, nil
			}
		}
	}
	return Card{}, fmt.Errorf("invalid card %q", s)
}

func cardStrings(cards []Card) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.String())
	}
	return out
}

// NewDecks returns n standard 52-card decks concatenated in a fixed order.
func NewDecks(n int) []Card {
	if n < 1 {
		n = 1
	}
	cards := make([]Card, 0, 52*n)
	for d := 0; d < n; d++ {
		for s := Hearts; s <= Spades; s++ {
			for r := Two; r <= Ace; r++ {
				cards = append(cards, Card{Rank: r, Suit: s})
			}
		}
	}
	return cards
}

// Shuffle returns a Fisher-Yates permutation of cards; the input is left as is.
func Shuffle(src Source, cards []Card) ([]Card, error) {
	out := make([]Card, len(cards))
	copy(out, cards)
	for i := len(out) - 1; i > 0; i-- {
		j, err := RandomInt(src, 0, i+1)
		if err != nil {
			return nil, err
		}
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// Shoe deals cards in order from the front.
type Shoe struct {
	cards []Card
}

func NewShoe(cards []Card) *Shoe {
	return &Shoe{cards: cards}
}

// ShuffledShoe builds and shuffles an n-deck shoe.
func ShuffledShoe(src Source, decks int) (*Shoe, error) {
	cards, err := Shuffle(src, NewDecks(decks))
	if err != nil {
		return nil, err
	}
	return NewShoe(cards), nil
}

func (s *Shoe) Deal() (Card, error) {
	if len(s.cards) == 0 {
		return Card{}, ErrShoeEmpty
	}
	c := s.cards[0]
	s.cards = s.cards[1:]
	return c, nil
}

func (s *Shoe) Remaining() int {
	return len(s.cards)
}

// HandTotal scores a blackjack hand. Aces count 11 and drop to 1 one at a
// time while the total is over 21.
func HandTotal(cards []Card) int {
	total, aces := 0, 0
	for _, c := range cards {
		switch {
		case c.Rank == Ace:
			aces++
			total += 11
		case c.Rank >= Jack:
			total += 10
		default:
			total += int(c.Rank)
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}
