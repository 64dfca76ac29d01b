package game

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundHashVector(t *testing.T) {
	assert.Equal(t, "2ff15458145804bed62bb3662e4d9fc97baeb108e30ab4cbc611e486014d5073", RoundHash("test-seed", 42))
	assert.Equal(t, "84d1d46a69adf7db92d28e04613eecc813755221a41e937670afec334bfe44e3", Commitment("test-seed", 42))
	assert.Equal(t, "5.33", CrashPoint("test-seed", 42).StringFixed(2))
	assert.Equal(t, Green, ColorFor("test-seed", 42))
}

func TestCrashPointCents(t *testing.T) {
	pad := strings.Repeat("0", 56)
	cases := map[string]int64{
		"00000000": 100,
		"00000042": 100, // 66 is a multiple of 33
		"00000001": 100000,
		"01000000": 25599,
		"ffffffff": 100,
	}
	for prefix, want := range cases {
		assert.Equal(t, want, CrashPointCents(prefix+pad), prefix)
	}
}

func TestCrashPointBounds(t *testing.T) {
	for i := int64(0); i < 5000; i++ {
		cents := CrashPointCents(RoundHash("bounds", i))
		require.GreaterOrEqual(t, cents, int64(100))
		require.LessOrEqual(t, cents, int64(100000))
	}
}

func TestCrashMultiplierCurve(t *testing.T) {
	assert.Equal(t, int64(100), CrashMultiplierCents(0))
	assert.Equal(t, int64(135), CrashMultiplierCents(5*time.Second))
	assert.Equal(t, int64(182), CrashMultiplierCents(10*time.Second))
	prev := int64(0)
	for ms := 0; ms < 60000; ms += 100 {
		cur := CrashMultiplierCents(time.Duration(ms) * time.Millisecond)
		require.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestColorFromHashBuckets(t *testing.T) {
	pad := strings.Repeat("0", 56)
	assert.Equal(t, Violet, ColorFromHash("00000000"+pad))
	assert.Equal(t, Violet, ColorFromHash("00000031"+pad)) // 49
	assert.Equal(t, Red, ColorFromHash("00000032"+pad))    // 50
	assert.Equal(t, Red, ColorFromHash("0000020c"+pad))    // 524
	assert.Equal(t, Green, ColorFromHash("0000020d"+pad))  // 525
	assert.Equal(t, Violet, ColorFromHash("000003f2"+pad)) // 1010
}

func TestColorMultiplier(t *testing.T) {
	assert.True(t, Violet.Multiplier().Equal(decimal.RequireFromString("4.5")))
	assert.True(t, Red.Multiplier().Equal(decimal.NewFromInt(2)))
	assert.False(t, Color("blue").Valid())
}

func TestVerify(t *testing.T) {
	seed, err := NewSeed()
	require.NoError(t, err)
	require.Len(t, seed, 64)

	v, err := Verify(KindCrash, seed, 9, Commitment(seed, 9))
	require.NoError(t, err)
	require.NotNil(t, v.CrashPoint)
	assert.True(t, v.CrashPoint.Equal(CrashPoint(seed, 9)))
	require.NotNil(t, v.CommitmentMatch)
	assert.True(t, *v.CommitmentMatch)

	v, err = Verify(KindColor, seed, 9, "bogus")
	require.NoError(t, err)
	assert.Equal(t, ColorFor(seed, 9), v.Color)
	assert.False(t, *v.CommitmentMatch)

	_, err = Verify(KindSlots, seed, 9, "")
	assert.ErrorIs(t, err, ErrUnknownGame)
}
