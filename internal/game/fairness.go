package game

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// One round in 33 crashes instantly at 1.00x.
	crashInstantModulus = 33
	crashMaxCents       = 100000
	crashMinCents       = 100
	// Growth rate per elapsed millisecond of the running multiplier.
	crashGrowthPerMS = 0.00006

	colorBuckets     = 1000
	colorVioletBelow = 50
	colorRedBelow    = 525
)

// RoundHash is HMAC-SHA256 keyed by the server seed over the decimal round
// number, hex encoded.
func RoundHash(serverSeed string, round int64) string {
	mac := hmac.New(sha256.New, []byte(serverSeed))
	mac.Write([]byte(strconv.FormatInt(round, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Commitment is published before a round accepts bets.
func Commitment(serverSeed string, round int64) string {
	sum := sha256.Sum256([]byte(serverSeed + ":" + strconv.FormatInt(round, 10)))
	return hex.EncodeToString(sum[:])
}

func leading32(hash string) uint64 {
	v, err := strconv.ParseUint(hash[:8], 16, 32)
	if err != nil {
		return 0
	}
	return v
}

// CrashPointCents derives a crash point in hundredths from a round hash.
func CrashPointCents(hash string) int64 {
	h := leading32(hash)
	if h%crashInstantModulus == 0 {
		return crashMinCents
	}
	cents := int64((100 << 32) / (h + 1))
	if cents < crashMinCents {
		return crashMinCents
	}
	if cents > crashMaxCents {
		return crashMaxCents
	}
	return cents
}

func CrashPoint(serverSeed string, round int64) decimal.Decimal {
	return decimal.New(CrashPointCents(RoundHash(serverSeed, round)), -2)
}

// CrashMultiplierCents is e^(k*ms) rounded to hundredths.
func CrashMultiplierCents(elapsed time.Duration) int64 {
	ms := float64(elapsed.Milliseconds())
	return int64(math.Round(math.Exp(crashGrowthPerMS*ms) * 100))
}

type Color string

const (
	Red    Color = "red"
	Green  Color = "green"
	Violet Color = "violet"
)

var Colors = []Color{Red, Green, Violet}

func (c Color) Valid() bool {
	return c == Red || c == Green || c == Violet
}

// Multiplier is the gross payout per unit staked on a winning color.
func (c Color) Multiplier() decimal.Decimal {
	if c == Violet {
		return decimal.RequireFromString("4.5")
	}
	return decimal.NewFromInt(2)
}

// ColorFromHash buckets a round hash into 1000 slots: 5% violet, 47.5% red,
// 47.5% green.
func ColorFromHash(hash string) Color {
	v := leading32(hash) % colorBuckets
	switch {
	case v < colorVioletBelow:
		return Violet
	case v < colorRedBelow:
		return Red
	default:
		return Green
	}
}

func ColorFor(serverSeed string, round int64) Color {
	return ColorFromHash(RoundHash(serverSeed, round))
}

// Verification is the recomputed outcome of a revealed round.
type Verification struct {
	Game            Kind             `json:"game"`
	Round           int64            `json:"round"`
	Hash            string           `json:"hash"`
	Commitment      string           `json:"commitment"`
	CrashPoint      *decimal.Decimal `json:"crash_point,omitempty"`
	Color           Color            `json:"color,omitempty"`
	CommitmentMatch *bool            `json:"commitment_match,omitempty"`
}

// Verify recomputes a crash or color round from its revealed seed. When
// published is non-empty it is compared against the recomputed commitment.
func Verify(kind Kind, serverSeed string, round int64, published string) (Verification, error) {
	v := Verification{
		Game:       kind,
		Round:      round,
		Hash:       RoundHash(serverSeed, round),
		Commitment: Commitment(serverSeed, round),
	}
	switch kind {
	case KindCrash:
		cp := decimal.New(CrashPointCents(v.Hash), -2)
		v.CrashPoint = &cp
	case KindColor:
		v.Color = ColorFromHash(v.Hash)
	default:
		return Verification{}, ErrUnknownGame
	}
	if published != "" {
		match := hmac.Equal([]byte(published), []byte(v.Commitment))
		v.CommitmentMatch = &match
	}
	return v, nil
}
