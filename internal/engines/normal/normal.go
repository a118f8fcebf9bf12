// Package normal computes z-scores, probabilities, percentiles, critical
// values, and empirical-rule bounds on a normal distribution defined by a
// user-supplied mean and standard deviation. CDF and quantile evaluations go
// through gonum's distuv.Normal.
package normal

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/zealotai/statistics-api/internal/shared/numeric"
	"github.com/zealotai/statistics-api/internal/shared/params"
	"github.com/zealotai/statistics-api/internal/shared/staterr"
	"github.com/zealotai/statistics-api/internal/shared/types"
)

// Engine computes normal distribution statistics.
type Engine struct{}

// New creates a normal distribution engine.
func New() *Engine {
	return &Engine{}
}

// ZScoreResult wraps the standardized score record.
type ZScoreResult struct {
	ZScore *types.Record `json:"z_score"`
}

// ProbabilityResult wraps a tail probability record.
type ProbabilityResult struct {
	Probability *types.Record `json:"probability"`
}

// PercentileResult wraps an inverse-CDF lookup record.
type PercentileResult struct {
	Percentile *types.Record `json:"percentile"`
}

// CriticalValuesResult reports the two-tailed critical bounds in both z-space
// and x-space.
type CriticalValuesResult struct {
	CriticalValues *types.Record `json:"critical_values"`
	ZLower         float64       `json:"z_critical_lower"`
	ZUpper         float64       `json:"z_critical_upper"`
	XLower         float64       `json:"x_lower"`
	XUpper         float64       `json:"x_upper"`
}

// EmpiricalRuleResult reports the 68-95-99.7 bands.
type EmpiricalRuleResult struct {
	OneSigma   *types.Record `json:"one_sigma"`
	TwoSigma   *types.Record `json:"two_sigma"`
	ThreeSigma *types.Record `json:"three_sigma"`
}

// Definition returns engine metadata for the service catalog.
func (e *Engine) Definition() types.Engine {
	common := []types.Parameter{
		{Name: "mean", Type: "number", Description: "Distribution mean", Required: true},
		{Name: "std_dev", Type: "number", Description: "Distribution standard deviation (> 0)", Required: true},
		{Name: "decimals", Type: "number", Description: "Rounding precision (0-10, default 4)", Required: false},
	}
	return types.Engine{
		ID:           "normal",
		Name:         "Normal Distribution",
		Description:  "Z-scores, probabilities, percentiles, and critical values for a normal distribution",
		Capabilities: []string{"z_score", "probability", "percentile", "critical_values", "empirical_rule"},
		Calculations: []types.Calc{
			{
				ID: "normal.z_score", Name: "Z-Score",
				Description: "Standardized distance of x from the mean",
				Parameters: append([]types.Parameter{
					{Name: "x_value", Type: "number", Description: "Value to standardize", Required: true},
				}, common...),
				Returns: "object",
			},
			{
				ID: "normal.probability", Name: "Probability",
				Description: "P(X < x), P(X > x), or P(X ≤ x) via the standard normal CDF",
				Parameters: append([]types.Parameter{
					{Name: "x_value", Type: "number", Description: "Comparison value", Required: true},
					{Name: "comparison", Type: "string", Description: "less_than, greater_than, or equal_to (default less_than)", Required: false},
				}, common...),
				Returns: "object",
			},
			{
				ID: "normal.probability_between", Name: "Probability Between",
				Description: "P(x1 < X < x2)",
				Parameters: append([]types.Parameter{
					{Name: "x1", Type: "number", Description: "Lower bound", Required: true},
					{Name: "x2", Type: "number", Description: "Upper bound", Required: true},
				}, common...),
				Returns: "object",
			},
			{
				ID: "normal.percentile", Name: "Percentile",
				Description: "Value below which the given percentage of the distribution falls",
				Parameters: append([]types.Parameter{
					{Name: "percentile", Type: "number", Description: "Target percentile (0-100 exclusive)", Required: true},
				}, common...),
				Returns: "object",
			},
			{
				ID: "normal.critical_values", Name: "Critical Values",
				Description: "Two-tailed critical bounds for a confidence level",
				Parameters: append([]types.Parameter{
					{Name: "confidence_level", Type: "number", Description: "Confidence level (0-1 exclusive)", Required: true},
				}, common...),
				Returns: "object",
			},
			{
				ID: "normal.empirical_rule", Name: "Empirical Rule",
				Description: "68-95-99.7 coverage bands at μ ± kσ",
				Parameters:  common,
				Returns:     "object",
			},
		},
	}
}

// Compute dispatches a calculation by kind.
func (e *Engine) Compute(ctx context.Context, calc string, p map[string]interface{}) (interface{}, error) {
	mean, err := params.RequireNumber(p, "mean")
	if err != nil {
		return nil, err
	}
	stdDev, err := params.RequireNumber(p, "std_dev")
	if err != nil {
		return nil, err
	}
	if stdDev <= 0 {
		return nil, staterr.InvalidInput("std_dev must be positive, got %v", stdDev)
	}
	decimals, err := params.Decimals(p)
	if err != nil {
		return nil, err
	}

	dist := distribution{
		norm:     distuv.Normal{Mu: mean, Sigma: stdDev},
		unit:     distuv.Normal{Mu: 0, Sigma: 1},
		decimals: decimals,
	}

	switch calc {
	case "z_score":
		return dist.zScore(p)
	case "probability":
		return dist.probability(p)
	case "probability_between":
		return dist.probabilityBetween(p)
	case "percentile":
		return dist.percentile(p)
	case "critical_values":
		return dist.criticalValues(p)
	case "empirical_rule":
		return dist.empiricalRule(), nil
	default:
		return nil, staterr.InvalidInput("unknown calculation type: %s", calc)
	}
}

type distribution struct {
	norm     distuv.Normal
	unit     distuv.Normal
	decimals int
}

func (d distribution) fmt(x float64) string {
	return numeric.Format(x, d.decimals)
}

func (d distribution) round(x float64) float64 {
	return numeric.Round(x, d.decimals)
}

func (d distribution) zScore(p map[string]interface{}) (*ZScoreResult, error) {
	x, err := params.RequireNumber(p, "x_value")
	if err != nil {
		return nil, err
	}

	z := (x - d.norm.Mu) / d.norm.Sigma

	return &ZScoreResult{
		ZScore: &types.Record{
			Value:       types.Float(d.round(z)),
			Formula:     "z = (x - μ) / σ",
			Description: "Distance of x from the mean in units of standard deviation",
			Steps: []string{
				fmt.Sprintf("Given: x = %s, μ = %s, σ = %s", d.fmt(x), d.fmt(d.norm.Mu), d.fmt(d.norm.Sigma)),
				fmt.Sprintf("z = (%s - %s) / %s = %s", d.fmt(x), d.fmt(d.norm.Mu), d.fmt(d.norm.Sigma), d.fmt(z)),
			},
			Interpretation: interpretZ(z),
		},
	}, nil
}

// probability evaluates a one-sided tail probability. For a continuous
// distribution P(X = x) is zero, so equal_to is treated the same as
// less_than; this is deliberate documented behavior, not a bug.
func (d distribution) probability(p map[string]interface{}) (*ProbabilityResult, error) {
	x, err := params.RequireNumber(p, "x_value")
	if err != nil {
		return nil, err
	}

	comparison, ok := params.String(p, "comparison")
	if !ok || comparison == "" {
		comparison = "less_than"
	}

	z := (x - d.norm.Mu) / d.norm.Sigma
	cdf := d.norm.CDF(x)

	steps := []string{
		fmt.Sprintf("Standardize: z = (%s - %s) / %s = %s", d.fmt(x), d.fmt(d.norm.Mu), d.fmt(d.norm.Sigma), d.fmt(z)),
		fmt.Sprintf("Φ(z) = Φ(%s) = %s", d.fmt(z), d.fmt(cdf)),
	}

	var prob float64
	var formula string
	switch comparison {
	case "less_than":
		prob = cdf
		formula = "P(X < x) = Φ(z)"
		steps = append(steps, fmt.Sprintf("P(X < %s) = %s", d.fmt(x), d.fmt(prob)))
	case "greater_than":
		prob = 1 - cdf
		formula = "P(X > x) = 1 - Φ(z)"
		steps = append(steps, fmt.Sprintf("P(X > %s) = 1 - %s = %s", d.fmt(x), d.fmt(cdf), d.fmt(prob)))
	case "equal_to":
		prob = cdf
		formula = "P(X ≤ x) = Φ(z)"
		steps = append(steps,
			"P(X = x) is zero for a continuous distribution; computing P(X ≤ x) instead",
			fmt.Sprintf("P(X ≤ %s) = %s", d.fmt(x), d.fmt(prob)),
		)
	default:
		return nil, staterr.InvalidInput("comparison must be less_than, greater_than, or equal_to, got %s", comparison)
	}

	return &ProbabilityResult{
		Probability: &types.Record{
			Value:       types.Float(d.round(prob)),
			Formula:     formula,
			Description: "Tail probability under the normal curve",
			Steps:       steps,
		},
	}, nil
}

// probabilityBetween computes P(x1 < X < x2). Reversed bounds are swapped so
// the result is deterministic regardless of input order.
func (d distribution) probabilityBetween(p map[string]interface{}) (*ProbabilityResult, error) {
	x1, err := params.RequireNumber(p, "x1")
	if err != nil {
		return nil, err
	}
	x2, err := params.RequireNumber(p, "x2")
	if err != nil {
		return nil, err
	}

	var swapped bool
	if x1 > x2 {
		x1, x2 = x2, x1
		swapped = true
	}

	z1 := (x1 - d.norm.Mu) / d.norm.Sigma
	z2 := (x2 - d.norm.Mu) / d.norm.Sigma
	prob := d.norm.CDF(x2) - d.norm.CDF(x1)

	steps := make([]string, 0, 5)
	if swapped {
		steps = append(steps, "Bounds were reversed; swapped so that x1 ≤ x2")
	}
	steps = append(steps,
		fmt.Sprintf("z1 = (%s - %s) / %s = %s", d.fmt(x1), d.fmt(d.norm.Mu), d.fmt(d.norm.Sigma), d.fmt(z1)),
		fmt.Sprintf("z2 = (%s - %s) / %s = %s", d.fmt(x2), d.fmt(d.norm.Mu), d.fmt(d.norm.Sigma), d.fmt(z2)),
		fmt.Sprintf("P(%s < X < %s) = Φ(%s) - Φ(%s) = %s", d.fmt(x1), d.fmt(x2), d.fmt(z2), d.fmt(z1), d.fmt(prob)),
	)

	return &ProbabilityResult{
		Probability: &types.Record{
			Value:       types.Float(d.round(prob)),
			Formula:     "P(x1 < X < x2) = Φ(z2) - Φ(z1)",
			Description: "Probability mass between the two bounds",
			Steps:       steps,
		},
	}, nil
}

func (d distribution) percentile(p map[string]interface{}) (*PercentileResult, error) {
	pct, err := params.RequireNumber(p, "percentile")
	if err != nil {
		return nil, err
	}
	if pct <= 0 || pct >= 100 {
		return nil, staterr.InvalidRange("percentile must be between 0 and 100 exclusive, got %v", pct)
	}

	z := d.unit.Quantile(pct / 100)
	x := d.norm.Mu + z*d.norm.Sigma

	return &PercentileResult{
		Percentile: &types.Record{
			Value:       types.Float(d.round(x)),
			Formula:     "x = μ + z_p × σ, where z_p = Φ⁻¹(p/100)",
			Description: fmt.Sprintf("Value below which %s%% of the distribution falls", d.fmt(pct)),
			Steps: []string{
				fmt.Sprintf("z_p = Φ⁻¹(%s) = %s", d.fmt(pct/100), d.fmt(z)),
				fmt.Sprintf("x = %s + %s × %s = %s", d.fmt(d.norm.Mu), d.fmt(z), d.fmt(d.norm.Sigma), d.fmt(x)),
			},
		},
	}, nil
}

func (d distribution) criticalValues(p map[string]interface{}) (*CriticalValuesResult, error) {
	if _, present := p["confidence_level"]; !present {
		return nil, staterr.InvalidInput("confidence_level is required")
	}
	level, err := params.Confidence(p, "confidence_level", 0)
	if err != nil {
		return nil, err
	}

	alpha := 1 - level
	zUpper := d.unit.Quantile(1 - alpha/2)
	zLower := -zUpper
	xLower := d.norm.Mu + zLower*d.norm.Sigma
	xUpper := d.norm.Mu + zUpper*d.norm.Sigma

	levelPct := numeric.Format(level*100, 2)

	return &CriticalValuesResult{
		CriticalValues: &types.Record{
			Values:      []float64{d.round(xLower), d.round(xUpper)},
			Formula:     "x = μ ± z_(α/2) × σ",
			Description: fmt.Sprintf("Two-tailed critical bounds for %s%% confidence", levelPct),
			Steps: []string{
				fmt.Sprintf("α = 1 - %s = %s", d.fmt(level), d.fmt(alpha)),
				fmt.Sprintf("z_(α/2) = Φ⁻¹(%s) = %s", d.fmt(1-alpha/2), d.fmt(zUpper)),
				fmt.Sprintf("Lower = %s - %s × %s = %s", d.fmt(d.norm.Mu), d.fmt(zUpper), d.fmt(d.norm.Sigma), d.fmt(xLower)),
				fmt.Sprintf("Upper = %s + %s × %s = %s", d.fmt(d.norm.Mu), d.fmt(zUpper), d.fmt(d.norm.Sigma), d.fmt(xUpper)),
			},
		},
		ZLower: d.round(zLower),
		ZUpper: d.round(zUpper),
		XLower: d.round(xLower),
		XUpper: d.round(xUpper),
	}, nil
}

func (d distribution) empiricalRule() *EmpiricalRuleResult {
	band := func(k float64, coverage string) *types.Record {
		lower := d.norm.Mu - k*d.norm.Sigma
		upper := d.norm.Mu + k*d.norm.Sigma
		return &types.Record{
			Values:      []float64{d.round(lower), d.round(upper)},
			Formula:     fmt.Sprintf("μ ± %.0fσ", k),
			Description: fmt.Sprintf("Approximately %s of values fall within this interval", coverage),
			Steps: []string{
				fmt.Sprintf("Lower = %s - %.0f × %s = %s", d.fmt(d.norm.Mu), k, d.fmt(d.norm.Sigma), d.fmt(lower)),
				fmt.Sprintf("Upper = %s + %.0f × %s = %s", d.fmt(d.norm.Mu), k, d.fmt(d.norm.Sigma), d.fmt(upper)),
			},
		}
	}

	return &EmpiricalRuleResult{
		OneSigma:   band(1, "68%"),
		TwoSigma:   band(2, "95%"),
		ThreeSigma: band(3, "99.7%"),
	}
}

func interpretZ(z float64) string {
	abs := math.Abs(z)
	switch {
	case abs < 1:
		return "Within 1 standard deviation of the mean"
	case abs < 2:
		return "Between 1 and 2 standard deviations from the mean"
	case abs < 3:
		return "Between 2 and 3 standard deviations from the mean"
	default:
		return "More than 3 standard deviations from the mean (unusual observation)"
	}
}
