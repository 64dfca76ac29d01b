package game

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Symbol string

const (
	SymSeven   Symbol = "7"
	SymBar     Symbol = "BAR"
	SymCherry  Symbol = "CHERRY"
	SymBell    Symbol = "BELL"
	SymLemon   Symbol = "LEMON"
	SymOrange  Symbol = "ORANGE"
	SymPlum    Symbol = "PLUM"
	SymGrape   Symbol = "GRAPE"
	SymWild    Symbol = "WILD"
	SymScatter Symbol = "SCATTER"
)

const (
	SlotReels = 5
	SlotRows  = 3
)

// ReelStrip weights the symbols; every reel samples the same strip.
var ReelStrip = [30]Symbol{
	SymGrape, SymLemon, SymOrange, SymPlum, SymCherry, SymGrape, SymBell, SymLemon,
	SymOrange, SymPlum, SymBar, SymGrape, SymLemon, SymCherry, SymOrange, SymBell,
	SymPlum, SymGrape, SymLemon, SymOrange, SymSeven, SymPlum, SymGrape, SymCherry,
	SymBell, SymLemon, SymOrange, SymWild, SymPlum, SymScatter,
}

// Paytable maps a symbol and run length to a multiple of the per-line stake.
var Paytable = map[Symbol]map[int]int64{
	SymSeven:  {3: 50, 4: 100, 5: 500},
	SymBar:    {3: 20, 4: 40, 5: 200},
	SymCherry: {2: 1, 3: 10, 4: 25, 5: 100},
	SymBell:   {3: 5, 4: 15, 5: 75},
	SymWild:   {3: 25, 4: 50, 5: 250},
	SymLemon:  {3: 2, 4: 5, 5: 15},
	SymOrange: {3: 2, 4: 5, 5: 15},
	SymPlum:   {3: 2, 4: 5, 5: 15},
	SymGrape:  {3: 2, 4: 5, 5: 15},
}

// Paylines lists the row index read on each reel.
var Paylines = [5][SlotReels]int{
	{1, 1, 1, 1, 1},
	{0, 0, 0, 0, 0},
	{2, 2, 2, 2, 2},
	{0, 1, 2, 1, 0},
	{2, 1, 0, 1, 2},
}

// Scatter pays are multiples of the total stake.
var scatterPays = map[int]int64{3: 5, 4: 20, 5: 50}

const (
	maxLineMultiplier    = 500
	maxScatterMultiplier = 50
)

type Grid [SlotReels][SlotRows]Symbol

type SlotWin struct {
	Line   int             `json:"line"`
	Symbol Symbol          `json:"symbol"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type SlotsResult struct {
	Stake     decimal.Decimal   `json:"stake"`
	Grid      Grid              `json:"grid"`
	ReelStops [SlotReels]int    `json:"reel_stops"`
	Paylines  [5][SlotReels]int `json:"paylines"`
	Wins      []SlotWin         `json:"wins"`
	TotalWin  decimal.Decimal   `json:"total_win"`
}

func (SlotsResult) isResult() {}

func (r SlotsResult) Project() Projection {
	rows := make([]string, 0, SlotRows)
	for row := 0; row < SlotRows; row++ {
		syms := make([]string, 0, SlotReels)
		for reel := 0; reel < SlotReels; reel++ {
			syms = append(syms, string(r.Grid[reel][row]))
		}
		rows = append(rows, strings.Join(syms, " "))
	}
	return Projection{Kind: KindSlots, Payout: r.TotalWin, Selection: "Slot Spin", Display: strings.Join(rows, " / ")}
}

type Slots struct {
	rng Source
}

func NewSlots(rng Source) *Slots {
	return &Slots{rng: rng}
}

func (s *Slots) Spin(stake decimal.Decimal) (SlotsResult, error) {
	if !ValidStake(stake) {
		return SlotsResult{}, ErrInvalidStake
	}
	var stops [SlotReels]int
	for reel := range stops {
		stop, err := RandomInt(s.rng, 0, len(ReelStrip))
		if err != nil {
			return SlotsResult{}, err
		}
		stops[reel] = stop
	}
	return SpinAt(stake, stops), nil
}

// SpinAt evaluates the grid produced by the given reel stops.
func SpinAt(stake decimal.Decimal, stops [SlotReels]int) SlotsResult {
	var grid Grid
	for reel, stop := range stops {
		for row := 0; row < SlotRows; row++ {
			grid[reel][row] = ReelStrip[(stop+row)%len(ReelStrip)]
		}
	}
	wins, total := EvaluateGrid(grid, stake)
	return SlotsResult{
		Stake:     stake,
		Grid:      grid,
		ReelStops: stops,
		Paylines:  Paylines,
		Wins:      wins,
		TotalWin:  total,
	}
}

// EvaluateGrid sums payline and scatter wins for one grid.
func EvaluateGrid(grid Grid, stake decimal.Decimal) ([]SlotWin, decimal.Decimal) {
	perLine := stake.Div(decimal.NewFromInt(int64(len(Paylines))))
	wins := []SlotWin{}
	total := decimal.Zero

	for i, line := range Paylines {
		var syms [SlotReels]Symbol
		for reel, row := range line {
			syms[reel] = grid[reel][row]
		}
		target, count := lineRun(syms)
		if target == SymScatter {
			continue
		}
		mult, ok := Paytable[target][count]
		if !ok {
			continue
		}
		amount := perLine.Mul(decimal.NewFromInt(mult))
		total = total.Add(amount)
		wins = append(wins, SlotWin{Line: i, Symbol: target, Count: count, Amount: money(amount)})
	}

	scatters := 0
	for reel := range grid {
		for row := range grid[reel] {
			if grid[reel][row] == SymScatter {
				scatters++
			}
		}
	}
	if scatters >= 3 {
		mult := scatterPays[min(scatters, 5)]
		amount := stake.Mul(decimal.NewFromInt(mult))
		total = total.Add(amount)
		wins = append(wins, SlotWin{Line: -1, Symbol: SymScatter, Count: scatters, Amount: money(amount)})
	}
	return wins, money(total)
}

// lineRun picks the symbol a line pays on (wild stands in for the first
// non-wild symbol) and the length of its run from the leftmost reel.
func lineRun(syms [SlotReels]Symbol) (Symbol, int) {
	target := SymWild
	for _, s := range syms {
		if s != SymWild {
			target = s
			break
		}
	}
	count := 0
	for _, s := range syms {
		if s != target && s != SymWild {
			break
		}
		count++
	}
	return target, count
}

// MaxSlotsWin bounds the total win of any single spin.
func MaxSlotsWin(stake decimal.Decimal) decimal.Decimal {
	return stake.Mul(decimal.NewFromInt(maxLineMultiplier + maxScatterMultiplier))
}
