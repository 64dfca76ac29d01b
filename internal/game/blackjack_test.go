package game

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// deal builds a hand whose shoe yields p1, p2, d1, d2 and then rest.
func deal(t *testing.T, stake int64, cards ...string) *BlackjackHand {
	t.Helper()
	parsed := make([]Card, 0, len(cards))
	for _, s := range cards {
		c, err := ParseCard(s)
		require.NoError(t, err)
		parsed = append(parsed, c)
	}
	h, err := DealBlackjackFrom(NewShoe(parsed), decimal.NewFromInt(stake))
	require.NoError(t, err)
	return h
}

func assertSettled(t *testing.T, h *BlackjackHand, outcome BlackjackOutcome, payout int64) {
	t.Helper()
	assert.Equal(t, StatusSettled, h.Status)
	assert.Equal(t, outcome, h.Outcome)
	assert.True(t, h.Payout.Equal(decimal.NewFromInt(payout)), "payout %s", h.Payout)
}

func TestBlackjackNaturalPaysThreeToTwo(t *testing.T) {
	h := deal(t, 100, "A♠", "K♥", "9♣", "7♦")
	assertSettled(t, h, OutcomeBlackjack, 250)
	v := h.View()
	assert.Equal(t, []string{"9♣", "7♦"}, v.DealerCards)
	assert.False(t, v.CanHit)
}

func TestBlackjackNaturalPushesAgainstDealerNatural(t *testing.T) {
	h := deal(t, 100, "A♠", "K♥", "A♥", "Q♦")
	assertSettled(t, h, OutcomePush, 100)
}

func TestBlackjackHiddenView(t *testing.T) {
	h := deal(t, 100, "10♠", "6♥", "10♣", "7♦")
	v := h.View()
	assert.Equal(t, StatusActive, v.Status)
	assert.Equal(t, []string{"10♣", "??"}, v.DealerCards)
	assert.Equal(t, 10, v.DealerTotal)
	assert.Equal(t, 16, v.PlayerTotal)
	assert.True(t, v.CanDouble)
	assert.True(t, v.CanHit)
}

func TestBlackjackHitBust(t *testing.T) {
	h := deal(t, 100, "10♠", "6♥", "9♣", "7♦", "K♣")
	require.NoError(t, h.Hit())
	assertSettled(t, h, OutcomeBust, 0)
	assert.Len(t, h.Dealer, 2)
	assert.ErrorIs(t, h.Hit(), ErrHandNotActive)
	assert.ErrorIs(t, h.Stand(), ErrHandNotActive)
}

func TestBlackjackHitToTwentyOneResolves(t *testing.T) {
	h := deal(t, 100, "10♠", "5♥", "10♣", "7♦", "6♣")
	require.NoError(t, h.Hit())
	assertSettled(t, h, OutcomeWin, 200)
}

func TestBlackjackStandDealerDraws(t *testing.T) {
	h := deal(t, 100, "10♠", "9♥", "10♣", "6♦", "5♣")
	require.NoError(t, h.Stand())
	assertSettled(t, h, OutcomeLose, 0)
	assert.Equal(t, 21, HandTotal(h.Dealer))
}

func TestBlackjackDealerBust(t *testing.T) {
	h := deal(t, 100, "10♠", "8♥", "10♣", "6♦", "K♦")
	require.NoError(t, h.Stand())
	assertSettled(t, h, OutcomeDealerBust, 200)
}

func TestBlackjackPush(t *testing.T) {
	h := deal(t, 100, "10♠", "8♥", "10♣", "8♦")
	require.NoError(t, h.Stand())
	assertSettled(t, h, OutcomePush, 100)
}

func TestBlackjackDouble(t *testing.T) {
	h := deal(t, 100, "5♠", "6♥", "10♣", "7♦", "10♥")
	require.NoError(t, h.Double())
	assert.True(t, h.Doubled)
	assert.True(t, h.Stake.Equal(decimal.NewFromInt(200)))
	assert.Len(t, h.Player, 3)
	assertSettled(t, h, OutcomeWin, 400)
}

func TestBlackjackDoubleOnlyOnTwoCards(t *testing.T) {
	h := deal(t, 100, "2♠", "3♥", "10♣", "7♦", "4♣", "K♥")
	require.NoError(t, h.Hit())
	assert.False(t, h.CanDouble())
	assert.ErrorIs(t, h.Double(), ErrCannotDouble)
	assert.ErrorIs(t, h.Apply("split"), ErrInvalidAction)
}

func TestBlackjackViewProjects(t *testing.T) {
	h := deal(t, 100, "A♠", "K♥", "9♣", "7♦")
	p := h.View().Project()
	assert.Equal(t, KindBlackjack, p.Kind)
	assert.Equal(t, "blackjack", p.Display)
	assert.True(t, p.Payout.Equal(decimal.NewFromInt(250)))
}
