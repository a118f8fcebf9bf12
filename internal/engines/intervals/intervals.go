// Package intervals computes confidence intervals for population means and
// proportions, plus the sample sizes required to hit a target margin of
// error. Critical values come from gonum's distuv Normal and StudentsT.
package intervals

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

// Engine computes confidence intervals.
type Engine struct{}

// New creates a confidence interval engine.
func New() *Engine {
	return &Engine{}
}

// MeanInterval is a confidence interval for a population mean.
type MeanInterval struct {
	ConfidenceInterval []float64 `json:"confidence_interval"`
	LowerBound         float64   `json:"lower_bound"`
	UpperBound         float64   `json:"upper_bound"`
	MarginOfError      float64   `json:"margin_of_error"`
	CriticalValue      float64   `json:"critical_value"`
	StandardError      float64   `json:"standard_error"`
	DistributionType   string    `json:"distribution_type"`
	DegreesOfFreedom   *int      `json:"degrees_of_freedom,omitempty"`
	ConfidenceLevel    float64   `json:"confidence_level"`
	Formula            string    `json:"formula"`
	Steps              []string  `json:"steps"`
	Interpretation     string    `json:"interpretation"`
	Description        string    `json:"description"`
}

// ProportionInterval is a confidence interval for a population proportion.
type ProportionInterval struct {
	ConfidenceInterval       []float64 `json:"confidence_interval"`
	LowerBound               float64   `json:"lower_bound"`
	UpperBound               float64   `json:"upper_bound"`
	MarginOfError            float64   `json:"margin_of_error"`
	CriticalValue            float64   `json:"critical_value"`
	StandardError            float64   `json:"standard_error"`
	ConfidenceLevel          float64   `json:"confidence_level"`
	SampleProportion         float64   `json:"sample_proportion"`
	SampleSize               int       `json:"sample_size"`
	Formula                  string    `json:"formula"`
	Steps                    []string  `json:"steps"`
	Interpretation           string    `json:"interpretation"`
	PercentageInterpretation string    `json:"percentage_interpretation"`
	Description              string    `json:"description"`
	Warning                  string    `json:"warning,omitempty"`
}

// SampleSize is the required sample size for a target margin of error.
type SampleSize struct {
	SampleSizeExact      float64  `json:"sample_size_exact"`
	SampleSizeRequired   int      `json:"sample_size_required"`
	MarginError          float64  `json:"margin_error"`
	ConfidenceLevel      float64  `json:"confidence_level"`
	CriticalValue        float64  `json:"critical_value"`
	PopulationStd        *float64 `json:"population_std,omitempty"`
	EstimatedProportion  *float64 `json:"estimated_proportion,omitempty"`
	ConservativeEstimate bool     `json:"conservative_estimate,omitempty"`
	Formula              string   `json:"formula"`
	Steps                []string `json:"steps"`
	Description          string   `json:"description"`
}

// Definition returns engine metadata for the service catalog.
func (e *Engine) Definition() types.Engine {
	return types.Engine{
		ID:           "intervals",
		Name:         "Confidence Intervals",
		Description:  "Confidence intervals for means and proportions, and sample size planning",
		Capabilities: []string{"mean", "proportion", "sample_size"},
		Calculations: []types.Calc{
			{
				ID: "intervals.mean", Name: "Mean Interval",
				Description: "z-interval when the population std dev is known, t-interval otherwise",
				Parameters: []types.Parameter{
					{Name: "sample_mean", Type: "number", Description: "Sample mean", Required: true},
					{Name: "sample_size", Type: "number", Description: "Sample size", Required: true},
					{Name: "confidence_level", Type: "number", Description: "Confidence level (0-1 exclusive)", Required: true},
					{Name: "population_std", Type: "number", Description: "Population std dev, if known", Required: false},
					{Name: "sample_std", Type: "number", Description: "Sample std dev, used when population_std is unknown", Required: false},
					{Name: "decimals", Type: "number", Description: "Rounding precision (0-10, default 4)", Required: false},
				},
				Returns: "object",
			},
			{
				ID: "intervals.proportion", Name: "Proportion Interval",
				Description: "Wald interval with normal-approximation check",
				Parameters: []types.Parameter{
					{Name: "sample_proportion", Type: "number", Description: "Sample proportion (0-1)", Required: true},
					{Name: "sample_size", Type: "number", Description: "Sample size", Required: true},
					{Name: "confidence_level", Type: "number", Description: "Confidence level (0-1 exclusive)", Required: true},
				},
				Returns: "object",
			},
			{
				ID: "intervals.sample_size_mean", Name: "Sample Size for Mean",
				Description: "Required n for a target margin of error around a mean",
				Parameters: []types.Parameter{
					{Name: "margin_error", Type: "number", Description: "Target margin of error", Required: true},
					{Name: "confidence_level", Type: "number", Description: "Confidence level (0-1 exclusive)", Required: true},
					{Name: "population_std", Type: "number", Description: "Population std dev", Required: true},
				},
				Returns: "object",
			},
			{
				ID: "intervals.sample_size_proportion", Name: "Sample Size for Proportion",
				Description: "Required n for a target margin of error around a proportion",
				Parameters: []types.Parameter{
					{Name: "margin_error", Type: "number", Description: "Target margin of error", Required: true},
					{Name: "confidence_level", Type: "number", Description: "Confidence level (0-1 exclusive)", Required: true},
					{Name: "estimated_proportion", Type: "number", Description: "Prior estimate; 0.5 used when absent", Required: false},
				},
				Returns: "object",
			},
		},
	}
}

// Compute dispatches a calculation by kind.
func (e *Engine) Compute(ctx context.Context, calc string, p map[string]interface{}) (interface{}, error) {
	decimals, err := params.Decimals(p)
	if err != nil {
		return nil, err
	}
	if _, present := p["confidence_level"]; !present {
		return nil, staterr.InvalidInput("confidence_level is required")
	}
	level, err := params.Confidence(p, "confidence_level", 0)
	if err != nil {
		return nil, err
	}

	c := calculator{level: level, decimals: decimals}

	switch calc {
	case "mean":
		return c.mean(p)
	case "proportion":
		return c.proportion(p)
	case "sample_size_mean":
		return c.sampleSizeMean(p)
	case "sample_size_proportion":
		return c.sampleSizeProportion(p)
	default:
		return nil, staterr.InvalidInput("unknown interval type: %s", calc)
	}
}

type calculator struct {
	level    float64
	decimals int
}

func (c calculator) fmt(x float64) string {
	return numeric.Format(x, c.decimals)
}

func (c calculator) round(x float64) float64 {
	return numeric.Round(x, c.decimals)
}

func (c calculator) zCritical() float64 {
	alpha := 1 - c.level
	return distuv.Normal{Mu: 0, Sigma: 1}.Quantile(1 - alpha/2)
}

func (c calculator) levelPct() string {
	return numeric.Format(c.level*100, 2)
}

func (c calculator) mean(p map[string]interface{}) (*MeanInterval, error) {
	sampleMean, err := params.RequireNumber(p, "sample_mean")
	if err != nil {
		return nil, err
	}
	n, err := params.RequireInt(p, "sample_size")
	if err != nil {
		return nil, err
	}
	if n < 2 {
		return nil, staterr.InsufficientData("sample_size must be at least 2, got %d", n)
	}

	popStd, hasPopStd := params.Number(p, "population_std")
	sampleStd, hasSampleStd := params.Number(p, "sample_std")
	if !hasPopStd && !hasSampleStd {
		return nil, staterr.InvalidInput("either population_std or sample_std must be provided")
	}

	alpha := 1 - c.level
	alphaHalf := alpha / 2

	out := &MeanInterval{
		ConfidenceLevel: c.level,
		Description:     fmt.Sprintf("%s%% confidence interval for the population mean", c.levelPct()),
	}

	var critical, stdErr float64
	var steps []string

	if hasPopStd {
		if popStd <= 0 {
			return nil, staterr.InvalidInput("population_std must be positive, got %v", popStd)
		}
		critical = c.zCritical()
		stdErr = popStd / math.Sqrt(float64(n))
		out.DistributionType = "z"
		out.Formula = "CI = x̄ ± z_(α/2) × (σ/√n)"
		steps = []string{
			fmt.Sprintf("Given: x̄ = %s, n = %d, σ = %s", c.fmt(sampleMean), n, c.fmt(popStd)),
			fmt.Sprintf("Confidence level = %s%%", c.levelPct()),
			fmt.Sprintf("α = 1 - %s = %s, α/2 = %s", c.fmt(c.level), c.fmt(alpha), c.fmt(alphaHalf)),
			"Since σ is known, use the z-distribution",
			fmt.Sprintf("z_(α/2) = %s", c.fmt(critical)),
			fmt.Sprintf("SE = σ/√n = %s/√%d = %s", c.fmt(popStd), n, c.fmt(stdErr)),
		}
	} else {
		if sampleStd <= 0 {
			return nil, staterr.InvalidInput("sample_std must be positive, got %v", sampleStd)
		}
		df := n - 1
		critical = distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}.Quantile(1 - alphaHalf)
		stdErr = sampleStd / math.Sqrt(float64(n))
		out.DistributionType = "t"
		out.DegreesOfFreedom = &df
		out.Formula = "CI = x̄ ± t_(α/2,df) × (s/√n)"
		steps = []string{
			fmt.Sprintf("Given: x̄ = %s, n = %d, s = %s", c.fmt(sampleMean), n, c.fmt(sampleStd)),
			fmt.Sprintf("Confidence level = %s%%", c.levelPct()),
			fmt.Sprintf("α = 1 - %s = %s, α/2 = %s", c.fmt(c.level), c.fmt(alpha), c.fmt(alphaHalf)),
			"Since σ is unknown, use the t-distribution",
			fmt.Sprintf("Degrees of freedom = n - 1 = %d", df),
			fmt.Sprintf("t_(α/2,%d) = %s", df, c.fmt(critical)),
			fmt.Sprintf("SE = s/√n = %s/√%d = %s", c.fmt(sampleStd), n, c.fmt(stdErr)),
		}
	}

	margin := critical * stdErr
	lower := sampleMean - margin
	upper := sampleMean + margin

	steps = append(steps,
		fmt.Sprintf("ME = %s × %s = %s", c.fmt(critical), c.fmt(stdErr), c.fmt(margin)),
		fmt.Sprintf("CI = x̄ ± ME = %s ± %s", c.fmt(sampleMean), c.fmt(margin)),
		fmt.Sprintf("CI = [%s, %s]", c.fmt(lower), c.fmt(upper)),
	)

	out.ConfidenceInterval = []float64{c.round(lower), c.round(upper)}
	out.LowerBound = c.round(lower)
	out.UpperBound = c.round(upper)
	out.MarginOfError = c.round(margin)
	out.CriticalValue = c.round(critical)
	out.StandardError = c.round(stdErr)
	out.Steps = steps
	out.Interpretation = fmt.Sprintf(
		"We are %s%% confident that the true population mean is between %s and %s",
		c.levelPct(), c.fmt(lower), c.fmt(upper))
	return out, nil
}

func (c calculator) proportion(p map[string]interface{}) (*ProportionInterval, error) {
	pHat, err := params.RequireNumber(p, "sample_proportion")
	if err != nil {
		return nil, err
	}
	if pHat < 0 || pHat > 1 {
		return nil, staterr.InvalidRange("sample_proportion must be between 0 and 1, got %v", pHat)
	}
	n, err := params.RequireInt(p, "sample_size")
	if err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, staterr.InsufficientData("sample_size must be positive, got %d", n)
	}

	nf := float64(n)
	np := nf * pHat
	nq := nf * (1 - pHat)

	var warning string
	if np < 5 || nq < 5 {
		warning = fmt.Sprintf(
			"Normal approximation may not be appropriate (np̂ = %s, nq̂ = %s); both should be ≥ 5",
			c.fmt(np), c.fmt(nq))
	}

	critical := c.zCritical()
	stdErr := math.Sqrt(pHat * (1 - pHat) / nf)
	margin := critical * stdErr

	lower := math.Max(0, pHat-margin)
	upper := math.Min(1, pHat+margin)

	conditionsMet := "Yes"
	if warning != "" {
		conditionsMet = "No"
	}

	steps := []string{
		fmt.Sprintf("Given: p̂ = %s, n = %d", c.fmt(pHat), n),
		fmt.Sprintf("Confidence level = %s%%", c.levelPct()),
		fmt.Sprintf("Check normal approximation: np̂ = %s, nq̂ = %s, both ≥ 5? %s", c.fmt(np), c.fmt(nq), conditionsMet),
		fmt.Sprintf("z_(α/2) = %s", c.fmt(critical)),
		fmt.Sprintf("SE = √[p̂(1-p̂)/n] = √[%s × %s / %d] = %s", c.fmt(pHat), c.fmt(1-pHat), n, c.fmt(stdErr)),
		fmt.Sprintf("ME = %s × %s = %s", c.fmt(critical), c.fmt(stdErr), c.fmt(margin)),
		fmt.Sprintf("CI = p̂ ± ME = %s ± %s", c.fmt(pHat), c.fmt(margin)),
		fmt.Sprintf("CI = [%s, %s]", c.fmt(lower), c.fmt(upper)),
	}

	return &ProportionInterval{
		ConfidenceInterval: []float64{c.round(lower), c.round(upper)},
		LowerBound:         c.round(lower),
		UpperBound:         c.round(upper),
		MarginOfError:      c.round(margin),
		CriticalValue:      c.round(critical),
		StandardError:      c.round(stdErr),
		ConfidenceLevel:    c.level,
		SampleProportion:   pHat,
		SampleSize:         n,
		Formula:            "CI = p̂ ± z_(α/2) × √[p̂(1-p̂)/n]",
		Steps:              steps,
		Interpretation: fmt.Sprintf(
			"We are %s%% confident that the true population proportion is between %s and %s",
			c.levelPct(), c.fmt(lower), c.fmt(upper)),
		PercentageInterpretation: fmt.Sprintf(
			"We are %s%% confident that the true population proportion is between %s%% and %s%%",
			c.levelPct(), numeric.Format(lower*100, 2), numeric.Format(upper*100, 2)),
		Description: fmt.Sprintf("%s%% confidence interval for the population proportion", c.levelPct()),
		Warning:     warning,
	}, nil
}

func (c calculator) sampleSizeMean(p map[string]interface{}) (*SampleSize, error) {
	margin, err := params.RequireNumber(p, "margin_error")
	if err != nil {
		return nil, err
	}
	if margin <= 0 {
		return nil, staterr.InvalidInput("margin_error must be positive, got %v", margin)
	}
	popStd, err := params.RequireNumber(p, "population_std")
	if err != nil {
		return nil, err
	}
	if popStd <= 0 {
		return nil, staterr.InvalidInput("population_std must be positive, got %v", popStd)
	}

	critical := c.zCritical()
	exact := math.Pow(critical*popStd/margin, 2)
	required := int(math.Ceil(exact))

	return &SampleSize{
		SampleSizeExact:    c.round(exact),
		SampleSizeRequired: required,
		MarginError:        margin,
		ConfidenceLevel:    c.level,
		CriticalValue:      c.round(critical),
		PopulationStd:      &popStd,
		Formula:            "n = (z_(α/2) × σ / ME)²",
		Steps: []string{
			fmt.Sprintf("Given: ME = %s, confidence level = %s%%, σ = %s", c.fmt(margin), c.levelPct(), c.fmt(popStd)),
			fmt.Sprintf("z_(α/2) = %s", c.fmt(critical)),
			fmt.Sprintf("n = (%s × %s / %s)² = %s", c.fmt(critical), c.fmt(popStd), c.fmt(margin), c.fmt(exact)),
			fmt.Sprintf("Round up to the next integer: n = %d", required),
		},
		Description: fmt.Sprintf(
			"Sample size needed for %s%% confidence with margin of error %s", c.levelPct(), c.fmt(margin)),
	}, nil
}

func (c calculator) sampleSizeProportion(p map[string]interface{}) (*SampleSize, error) {
	margin, err := params.RequireNumber(p, "margin_error")
	if err != nil {
		return nil, err
	}
	if margin <= 0 {
		return nil, staterr.InvalidInput("margin_error must be positive, got %v", margin)
	}

	// 0.5 maximizes p(1-p), giving the most conservative sample size.
	estimate := 0.5
	conservative := true
	if raw, present := p["estimated_proportion"]; present && raw != nil {
		est, ok := params.Number(p, "estimated_proportion")
		if !ok {
			return nil, staterr.InvalidInput("estimated_proportion must be numeric, got %v", raw)
		}
		if est < 0 || est > 1 {
			return nil, staterr.InvalidRange("estimated_proportion must be between 0 and 1, got %v", est)
		}
		estimate = est
		conservative = false
	}

	critical := c.zCritical()
	exact := critical * critical * estimate * (1 - estimate) / (margin * margin)
	required := int(math.Ceil(exact))

	note := ""
	if conservative {
		note = " (conservative estimate)"
	}

	return &SampleSize{
		SampleSizeExact:      c.round(exact),
		SampleSizeRequired:   required,
		MarginError:          margin,
		ConfidenceLevel:      c.level,
		CriticalValue:        c.round(critical),
		EstimatedProportion:  &estimate,
		ConservativeEstimate: conservative,
		Formula:              "n = z²_(α/2) × p̂(1-p̂) / ME²",
		Steps: []string{
			fmt.Sprintf("Given: ME = %s, confidence level = %s%%", c.fmt(margin), c.levelPct()),
			fmt.Sprintf("Prior estimate: p̂ = %s%s", c.fmt(estimate), note),
			fmt.Sprintf("z_(α/2) = %s", c.fmt(critical)),
			fmt.Sprintf("n = %s² × %s × %s / %s² = %s",
				c.fmt(critical), c.fmt(estimate), c.fmt(1-estimate), c.fmt(margin), c.fmt(exact)),
			fmt.Sprintf("Round up to the next integer: n = %d", required),
		},
		Description: fmt.Sprintf(
			"Sample size needed for %s%% confidence with margin of error %s", c.levelPct(), c.fmt(margin)),
	}, nil
}
