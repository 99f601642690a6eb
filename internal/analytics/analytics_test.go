package analytics

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func vals(fs ...float64) []sql.NullFloat64 {
	out := make([]sql.NullFloat64, len(fs))
	for i, f := range fs {
		out[i] = sql.NullFloat64{Float64: f, Valid: true}
	}
	return out
}

func TestOverUnderProbability(t *testing.T) {
	out := OverUnderProbability(vals(25, 31, 28, 19, 30), 25.5, 0)

	assert.Equal(t, 5, out.TotalGames)
	assert.Equal(t, 3, out.GamesOver)
	assert.Equal(t, 2, out.GamesUnder)
	assert.Equal(t, 0.6, out.ProbabilityOver)
	assert.Equal(t, 0.4, out.ProbabilityUnder)
}

func TestOverUnderProbability_ThresholdIsInclusive(t *testing.T) {
	out := OverUnderProbability(vals(25, 25, 24), 25, 0)
	assert.Equal(t, 2, out.GamesOver)
}

func TestOverUnderProbability_LastN(t *testing.T) {
	// Only the most recent two games (values are oldest first)
	out := OverUnderProbability(vals(40, 40, 10, 10), 25, 2)
	assert.Equal(t, 2, out.TotalGames)
	assert.Equal(t, 0, out.GamesOver)
	assert.Equal(t, 1.0, out.ProbabilityUnder)

	// lastN larger than the window uses everything
	out = OverUnderProbability(vals(40, 10), 25, 10)
	assert.Equal(t, 2, out.TotalGames)
	assert.Equal(t, 1, out.GamesOver)
}

func TestOverUnderProbability_NullsCountUnder(t *testing.T) {
	values := []sql.NullFloat64{
		{Float64: 30, Valid: true},
		{},
		{Float64: 28, Valid: true},
	}
	out := OverUnderProbability(values, 25, 0)
	assert.Equal(t, 3, out.TotalGames)
	assert.Equal(t, 2, out.GamesOver)
	assert.Equal(t, 1, out.GamesUnder)
}

func TestOverUnderProbability_Empty(t *testing.T) {
	out := OverUnderProbability(nil, 25, 0)
	assert.Equal(t, 0, out.TotalGames)
	assert.Equal(t, 0.0, out.ProbabilityOver)
	assert.Equal(t, 0.0, out.ProbabilityUnder)
}

func TestLastNSummary(t *testing.T) {
	out := LastNSummary(vals(10, 20, 30, 40), 3)

	assert.Equal(t, 3, out.Count)
	assert.Equal(t, 90.0, out.Sum)
	assert.Equal(t, 30.0, out.Avg)
	assert.Equal(t, 20.0, out.Min)
	assert.Equal(t, 40.0, out.Max)
}

func TestLastNSummary_SkipsNulls(t *testing.T) {
	values := []sql.NullFloat64{
		{Float64: 10, Valid: true},
		{},
		{Float64: 30, Valid: true},
	}
	out := LastNSummary(values, 0)
	assert.Equal(t, 2, out.Count)
	assert.Equal(t, 40.0, out.Sum)
	assert.Equal(t, 20.0, out.Avg)
	assert.Equal(t, 10.0, out.Min)
	assert.Equal(t, 30.0, out.Max)
}

func TestLastNSummary_Empty(t *testing.T) {
	out := LastNSummary(nil, 5)
	assert.Equal(t, Summary{}, out)
}
