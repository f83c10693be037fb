package scoring

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scoreDate = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

func comp(symbol string, ml, cyc, mom, macro float64) Components {
	return Components{
		Symbol: symbol, Date: scoreDate,
		ML: ml, Cycle: cyc, Momentum: mom, MacroSensitivity: macro,
	}
}

func TestDefaultWeightsSumToOne(t *testing.T) {
	require.NoError(t, DefaultWeights().Validate())
}

func TestWeightsValidateRejections(t *testing.T) {
	bad := Weights{ML: 0.5, Cycle: 0.5, Momentum: 0.5, MacroSensitivity: -0.5}
	assert.ErrorIs(t, bad.Validate(), ErrBadWeights)

	short := Weights{ML: 0.4, Cycle: 0.3, Momentum: 0.2, MacroSensitivity: 0.05}
	assert.ErrorIs(t, short.Validate(), ErrBadWeights)
}

func TestCombineWeightedBlend(t *testing.T) {
	got, err := Combine(comp("XLK", 80, 60, 70, 50), DefaultWeights())
	require.NoError(t, err)
	// 0.40*80 + 0.25*60 + 0.20*70 + 0.15*50
	assert.InDelta(t, 68.5, got, 1e-9)
}

func TestCombineRejectsOutOfRangeComponents(t *testing.T) {
	_, err := Combine(comp("XLE", 101, 50, 50, 50), DefaultWeights())
	assert.ErrorIs(t, err, ErrComponentRange)

	_, err = Combine(comp("XLE", 50, -0.1, 50, 50), DefaultWeights())
	assert.ErrorIs(t, err, ErrComponentRange)

	_, err = Combine(comp("XLE", 50, 50, math.NaN(), 50), DefaultWeights())
	assert.ErrorIs(t, err, ErrMissingComponent)
}

func TestCombineBoundaryValuesAccepted(t *testing.T) {
	got, err := Combine(comp("XLF", 0, 100, 0, 100), DefaultWeights())
	require.NoError(t, err)
	assert.InDelta(t, 40.0, got, 1e-9)
}

func TestRankAllOrdersAndBands(t *testing.T) {
	list := []Components{
		comp("XLB", 20, 20, 20, 20),
		comp("XLK", 90, 90, 90, 90),
		comp("XLF", 55, 55, 55, 55),
	}

	scored, err := RankAll(list, DefaultWeights(), DefaultCutoffs())
	require.NoError(t, err)
	require.Len(t, scored, 3)

	assert.Equal(t, "XLK", scored[0].Symbol)
	assert.Equal(t, 1, scored[0].Rank)
	assert.Equal(t, RecommendOverweight, scored[0].Recommendation)

	assert.Equal(t, "XLF", scored[1].Symbol)
	assert.Equal(t, RecommendNeutral, scored[1].Recommendation)

	assert.Equal(t, "XLB", scored[2].Symbol)
	assert.Equal(t, 3, scored[2].Rank)
	assert.Equal(t, RecommendUnderweight, scored[2].Recommendation)
}

func TestRankAllInputOrderIrrelevant(t *testing.T) {
	a := []Components{
		comp("XLB", 20, 20, 20, 20),
		comp("XLK", 90, 90, 90, 90),
		comp("XLF", 55, 55, 55, 55),
	}
	b := []Components{a[1], a[2], a[0]}

	ra, err := RankAll(a, DefaultWeights(), DefaultCutoffs())
	require.NoError(t, err)
	rb, err := RankAll(b, DefaultWeights(), DefaultCutoffs())
	require.NoError(t, err)

	assert.Equal(t, ra, rb)
}

func TestRankAllTiesBreakBySymbol(t *testing.T) {
	list := []Components{
		comp("XLY", 50, 50, 50, 50),
		comp("XLB", 50, 50, 50, 50),
		comp("XLK", 50, 50, 50, 50),
	}

	scored, err := RankAll(list, DefaultWeights(), DefaultCutoffs())
	require.NoError(t, err)

	assert.Equal(t, "XLB", scored[0].Symbol)
	assert.Equal(t, "XLK", scored[1].Symbol)
	assert.Equal(t, "XLY", scored[2].Symbol)
}

func TestRankAllElevenSectorThirds(t *testing.T) {
	symbols := []string{"XLB", "XLC", "XLE", "XLF", "XLI", "XLK", "XLP", "XLRE", "XLU", "XLV", "XLY"}
	list := make([]Components, len(symbols))
	for i, sym := range symbols {
		v := float64(100 - i*5)
		list[i] = comp(sym, v, v, v, v)
	}

	scored, err := RankAll(list, DefaultWeights(), DefaultCutoffs())
	require.NoError(t, err)
	require.Len(t, scored, 11)

	counts := map[Recommendation]int{}
	for _, s := range scored {
		counts[s.Recommendation]++
	}
	// round(11/3) = 4 in each outer band, 3 neutral.
	assert.Equal(t, 4, counts[RecommendOverweight])
	assert.Equal(t, 3, counts[RecommendNeutral])
	assert.Equal(t, 4, counts[RecommendUnderweight])
}

func TestRankAllPropagatesComponentError(t *testing.T) {
	list := []Components{comp("XLE", 200, 50, 50, 50)}
	_, err := RankAll(list, DefaultWeights(), DefaultCutoffs())
	assert.ErrorIs(t, err, ErrComponentRange)
}

func TestRankAllEmptyInput(t *testing.T) {
	scored, err := RankAll(nil, DefaultWeights(), DefaultCutoffs())
	require.NoError(t, err)
	assert.Empty(t, scored)
}
