package normal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zealotai/statistics-api/internal/shared/staterr"
)

func compute(t *testing.T, calc string, params map[string]interface{}) interface{} {
	t.Helper()
	result, err := New().Compute(context.Background(), calc, params)
	require.NoError(t, err)
	return result
}

func TestZScore(t *testing.T) {
	out := compute(t, "z_score", map[string]interface{}{
		"mean":    100.0,
		"std_dev": 15.0,
		"x_value": 115.0,
	}).(*ZScoreResult)

	assert.Equal(t, 1.0, *out.ZScore.Value)
	assert.Equal(t, "Between 1 and 2 standard deviations from the mean", out.ZScore.Interpretation)
	assert.NotEmpty(t, out.ZScore.Steps)
}

func TestProbability(t *testing.T) {
	base := map[string]interface{}{
		"mean":    0.0,
		"std_dev": 1.0,
		"x_value": 0.0,
	}

	t.Run("Less than defaults", func(t *testing.T) {
		out := compute(t, "probability", base).(*ProbabilityResult)
		assert.InDelta(t, 0.5, *out.Probability.Value, 1e-9)
	})

	t.Run("Greater than", func(t *testing.T) {
		out := compute(t, "probability", map[string]interface{}{
			"mean": 0.0, "std_dev": 1.0, "x_value": 1.0, "comparison": "greater_than",
		}).(*ProbabilityResult)
		assert.InDelta(t, 0.1587, *out.Probability.Value, 1e-4)
	})

	t.Run("Equal to matches less than", func(t *testing.T) {
		lt := compute(t, "probability", map[string]interface{}{
			"mean": 10.0, "std_dev": 2.0, "x_value": 12.0, "comparison": "less_than",
		}).(*ProbabilityResult)
		eq := compute(t, "probability", map[string]interface{}{
			"mean": 10.0, "std_dev": 2.0, "x_value": 12.0, "comparison": "equal_to",
		}).(*ProbabilityResult)
		assert.Equal(t, *lt.Probability.Value, *eq.Probability.Value)
	})

	t.Run("Unknown comparison", func(t *testing.T) {
		_, err := New().Compute(context.Background(), "probability", map[string]interface{}{
			"mean": 0.0, "std_dev": 1.0, "x_value": 0.0, "comparison": "at_most",
		})
		require.Error(t, err)
	})
}

func TestProbabilityBetween(t *testing.T) {
	t.Run("One sigma band", func(t *testing.T) {
		out := compute(t, "probability_between", map[string]interface{}{
			"mean": 0.0, "std_dev": 1.0, "x1": -1.0, "x2": 1.0,
		}).(*ProbabilityResult)
		assert.InDelta(t, 0.6827, *out.Probability.Value, 1e-4)
	})

	t.Run("Reversed bounds give same result", func(t *testing.T) {
		fwd := compute(t, "probability_between", map[string]interface{}{
			"mean": 5.0, "std_dev": 2.0, "x1": 3.0, "x2": 8.0,
		}).(*ProbabilityResult)
		rev := compute(t, "probability_between", map[string]interface{}{
			"mean": 5.0, "std_dev": 2.0, "x1": 8.0, "x2": 3.0,
		}).(*ProbabilityResult)
		assert.Equal(t, *fwd.Probability.Value, *rev.Probability.Value)
		assert.Contains(t, rev.Probability.Steps[0], "swapped")
	})
}

func TestPercentile(t *testing.T) {
	t.Run("Median of standard normal", func(t *testing.T) {
		out := compute(t, "percentile", map[string]interface{}{
			"mean": 0.0, "std_dev": 1.0, "percentile": 50.0,
		}).(*PercentileResult)
		assert.InDelta(t, 0.0, *out.Percentile.Value, 1e-9)
	})

	t.Run("97.5th percentile", func(t *testing.T) {
		out := compute(t, "percentile", map[string]interface{}{
			"mean": 100.0, "std_dev": 15.0, "percentile": 97.5,
		}).(*PercentileResult)
		// 100 + 1.959964 * 15
		assert.InDelta(t, 129.3995, *out.Percentile.Value, 1e-3)
	})

	t.Run("Out of range", func(t *testing.T) {
		for _, pct := range []float64{0, 100, -5, 120} {
			_, err := New().Compute(context.Background(), "percentile", map[string]interface{}{
				"mean": 0.0, "std_dev": 1.0, "percentile": pct,
			})
			require.Error(t, err, "percentile %v", pct)
			kind, _ := staterr.KindOf(err)
			assert.Equal(t, staterr.KindInvalidRange, kind)
		}
	})
}

func TestCriticalValues(t *testing.T) {
	out := compute(t, "critical_values", map[string]interface{}{
		"mean": 0.0, "std_dev": 1.0, "confidence_level": 0.95,
	}).(*CriticalValuesResult)

	assert.InDelta(t, 1.96, out.ZUpper, 1e-2)
	assert.Equal(t, -out.ZUpper, out.ZLower)
	assert.Equal(t, out.XLower, out.ZLower)
	assert.Equal(t, out.XUpper, out.ZUpper)
	assert.Equal(t, []float64{out.XLower, out.XUpper}, out.CriticalValues.Values)

	t.Run("Missing level", func(t *testing.T) {
		_, err := New().Compute(context.Background(), "critical_values", map[string]interface{}{
			"mean": 0.0, "std_dev": 1.0,
		})
		require.Error(t, err)
	})

	t.Run("Invalid level", func(t *testing.T) {
		_, err := New().Compute(context.Background(), "critical_values", map[string]interface{}{
			"mean": 0.0, "std_dev": 1.0, "confidence_level": 1.5,
		})
		require.Error(t, err)
		kind, _ := staterr.KindOf(err)
		assert.Equal(t, staterr.KindInvalidRange, kind)
	})
}

func TestEmpiricalRule(t *testing.T) {
	out := compute(t, "empirical_rule", map[string]interface{}{
		"mean": 100.0, "std_dev": 15.0,
	}).(*EmpiricalRuleResult)

	assert.Equal(t, []float64{85, 115}, out.OneSigma.Values)
	assert.Equal(t, []float64{70, 130}, out.TwoSigma.Values)
	assert.Equal(t, []float64{55, 145}, out.ThreeSigma.Values)
	assert.Contains(t, out.OneSigma.Description, "68%")
	assert.Contains(t, out.ThreeSigma.Description, "99.7%")
}

func TestInputValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing mean", func(t *testing.T) {
		_, err := New().Compute(ctx, "z_score", map[string]interface{}{
			"std_dev": 1.0, "x_value": 0.0,
		})
		require.Error(t, err)
	})

	t.Run("Non-positive std dev", func(t *testing.T) {
		for _, sd := range []float64{0, -1} {
			_, err := New().Compute(ctx, "z_score", map[string]interface{}{
				"mean": 0.0, "std_dev": sd, "x_value": 0.0,
			})
			require.Error(t, err, "std_dev %v", sd)
		}
	})

	t.Run("Unknown calculation", func(t *testing.T) {
		_, err := New().Compute(ctx, "pdf", map[string]interface{}{
			"mean": 0.0, "std_dev": 1.0,
		})
		require.Error(t, err)
	})

	t.Run("String parameters accepted", func(t *testing.T) {
		out := compute(t, "z_score", map[string]interface{}{
			"mean": "100", "std_dev": "15", "x_value": "130",
		}).(*ZScoreResult)
		assert.Equal(t, 2.0, *out.ZScore.Value)
	})
}
