package game

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cards(t *testing.T, ss ...string) []Card {
	t.Helper()
	out := make([]Card, 0, len(ss))
	for _, s := range ss {
		c, err := ParseCard(s)
		require.NoError(t, err)
		out = append(out, c)
	}
	return out
}

func TestEvaluatePoker(t *testing.T) {
	cases := []struct {
		hand []string
		want PokerRank
	}{
		{[]string{"10♠", "J♠", "Q♠", "K♠", "A♠"}, RoyalFlush},
		{[]string{"9♥", "10♥", "J♥", "Q♥", "K♥"}, StraightFlush},
		{[]string{"A♦", "2♦", "3♦", "4♦", "5♦"}, StraightFlush},
		{[]string{"7♠", "7♥", "7♣", "7♦", "2♠"}, FourOfAKind},
		{[]string{"7♠", "7♥", "7♣", "2♦", "2♠"}, FullHouse},
		{[]string{"2♣", "8♣", "J♣", "4♣", "K♣"}, Flush},
		{[]string{"A♥", "2♦", "3♣", "4♠", "5♥"}, Straight},
		{[]string{"10♥", "J♦", "Q♣", "K♠", "A♥"}, Straight},
		{[]string{"4♥", "4♦", "4♣", "9♠", "K♥"}, ThreeOfAKind},
		{[]string{"J♣", "J♦", "3♠", "3♥", "7♠"}, TwoPair},
		{[]string{"Q♣", "Q♦", "3♠", "5♥", "7♠"}, JacksOrBetter},
		{[]string{"10♣", "10♦", "3♠", "5♥", "7♠"}, NoWin},
		{[]string{"2♥", "2♦", "5♣", "9♠", "K♦"}, NoWin},
		{[]string{"Q♥", "K♦", "A♣", "2♠", "3♦"}, NoWin},
	}
	for _, tc := range cases {
		got := EvaluatePoker(cards(t, tc.hand...))
		assert.Equal(t, tc.want, got, "%v: got %s", tc.hand, got)
	}
}

func TestPokerPaytable(t *testing.T) {
	assert.Equal(t, int64(800), RoyalFlush.Multiplier())
	assert.Equal(t, int64(1), JacksOrBetter.Multiplier())
	assert.Equal(t, "Jacks or Better", JacksOrBetter.String())
	assert.Equal(t, 9, int(RoyalFlush))
}

func TestPokerDrawReplacesUnheld(t *testing.T) {
	shoe := NewShoe(cards(t, "2♥", "2♦", "5♣", "9♠", "K♦", "2♣", "2♠", "7♥"))
	h, err := DealPokerFrom(shoe, decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.Equal(t, []string{"2♥", "2♦", "5♣", "9♠", "K♦"}, h.View().Cards)

	res, err := h.Draw([]int{1, 0})
	require.NoError(t, err)
	assert.Equal(t, []string{"2♥", "2♦", "2♣", "2♠", "7♥"}, res.Cards)
	assert.Equal(t, []int{0, 1}, res.Held)
	assert.Equal(t, "Four of a Kind", res.Hand)
	assert.True(t, res.Payout.Equal(decimal.NewFromInt(250)))

	_, err = h.Draw(nil)
	assert.ErrorIs(t, err, ErrAlreadyDrawn)
}

func TestPokerDrawHoldAll(t *testing.T) {
	h, err := DealPokerFrom(NewShoe(cards(t, "10♠", "J♠", "Q♠", "K♠", "A♠")), decimal.NewFromInt(5))
	require.NoError(t, err)
	res, err := h.Draw([]int{0, 1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, "Royal Flush", res.Hand)
	assert.True(t, res.Payout.Equal(decimal.NewFromInt(4000)))
}

func TestPokerInvalidHold(t *testing.T) {
	h, err := DealPoker(Crypto, decimal.NewFromInt(5))
	require.NoError(t, err)
	_, err = h.Draw([]int{5})
	assert.ErrorIs(t, err, ErrInvalidHold)
	assert.False(t, h.Drawn)
}
