// Package hypothesis performs one- and two-sample hypothesis tests for means
// and proportions, producing the test statistic, critical values, p-value,
// and a reject/fail-to-reject decision with full derivation steps.
package hypothesis

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

// Engine performs hypothesis tests.
type Engine struct{}

// New creates a hypothesis testing engine.
func New() *Engine {
	return &Engine{}
}

// Tail types accepted by every test.
const (
	TwoTailed   = "two-tailed"
	LeftTailed  = "left-tailed"
	RightTailed = "right-tailed"
)

// TestResult is the outcome of a hypothesis test.
type TestResult struct {
	TestStatistic         float64   `json:"test_statistic"`
	CriticalValues        []float64 `json:"critical_values"`
	PValue                float64   `json:"p_value"`
	Alpha                 float64   `json:"alpha"`
	RejectNull            bool      `json:"reject_null"`
	DistributionType      string    `json:"distribution_type,omitempty"`
	DegreesOfFreedom      *float64  `json:"degrees_of_freedom,omitempty"`
	StandardError         float64   `json:"standard_error"`
	TailType              string    `json:"tail_type"`
	NullHypothesis        string    `json:"null_hypothesis"`
	AlternativeHypothesis string    `json:"alternative_hypothesis"`
	PooledVariance        *float64  `json:"pooled_variance,omitempty"`
	PooledProportion      *float64  `json:"pooled_proportion,omitempty"`
	Sample1Proportion     *float64  `json:"sample1_proportion,omitempty"`
	Sample2Proportion     *float64  `json:"sample2_proportion,omitempty"`
	EqualVariances        *bool     `json:"equal_variances,omitempty"`
	Formula               string    `json:"formula"`
	Steps                 []string  `json:"steps"`
	Conclusion            string    `json:"conclusion"`
	Interpretation        string    `json:"interpretation"`
	Description           string    `json:"description"`
	Warning               string    `json:"warning,omitempty"`
}

// Definition returns engine metadata for the service catalog.
func (e *Engine) Definition() types.Engine {
	shared := []types.Parameter{
		{Name: "alpha", Type: "number", Description: "Significance level (0-1 exclusive)", Required: true},
		{Name: "tail_type", Type: "string", Description: "two-tailed, left-tailed, or right-tailed", Required: true},
		{Name: "decimals", Type: "number", Description: "Rounding precision (0-10, default 4)", Required: false},
	}
	return types.Engine{
		ID:           "hypothesis",
		Name:         "Hypothesis Testing",
		Description:  "One- and two-sample z/t tests for means and proportions",
		Capabilities: []string{"one_sample_mean", "one_sample_proportion", "two_sample_mean", "two_sample_proportion"},
		Calculations: []types.Calc{
			{
				ID: "hypothesis.one_sample_mean", Name: "One-Sample Mean Test",
				Description: "z-test when the population std dev is known, t-test otherwise",
				Parameters: append([]types.Parameter{
					{Name: "sample_mean", Type: "number", Description: "Sample mean", Required: true},
					{Name: "sample_size", Type: "number", Description: "Sample size", Required: true},
					{Name: "null_mean", Type: "number", Description: "Hypothesized population mean", Required: true},
					{Name: "population_std", Type: "number", Description: "Population std dev, if known", Required: false},
					{Name: "sample_std", Type: "number", Description: "Sample std dev, used when population_std is unknown", Required: false},
				}, shared...),
				Returns: "object",
			},
			{
				ID: "hypothesis.one_sample_proportion", Name: "One-Sample Proportion Test",
				Description: "z-test for a population proportion",
				Parameters: append([]types.Parameter{
					{Name: "sample_proportion", Type: "number", Description: "Sample proportion (0-1)", Required: true},
					{Name: "sample_size", Type: "number", Description: "Sample size", Required: true},
					{Name: "null_proportion", Type: "number", Description: "Hypothesized population proportion", Required: true},
				}, shared...),
				Returns: "object",
			},
			{
				ID: "hypothesis.two_sample_mean", Name: "Two-Sample Mean Test",
				Description: "Pooled-variance or Welch t-test for a difference in means",
				Parameters: append([]types.Parameter{
					{Name: "sample1_mean", Type: "number", Description: "Sample 1 mean", Required: true},
					{Name: "sample1_size", Type: "number", Description: "Sample 1 size", Required: true},
					{Name: "sample1_std", Type: "number", Description: "Sample 1 std dev", Required: true},
					{Name: "sample2_mean", Type: "number", Description: "Sample 2 mean", Required: true},
					{Name: "sample2_size", Type: "number", Description: "Sample 2 size", Required: true},
					{Name: "sample2_std", Type: "number", Description: "Sample 2 std dev", Required: true},
					{Name: "equal_variances", Type: "boolean", Description: "Assume equal variances (default true)", Required: false},
				}, shared...),
				Returns: "object",
			},
			{
				ID: "hypothesis.two_sample_proportion", Name: "Two-Sample Proportion Test",
				Description: "Pooled z-test for a difference in proportions",
				Parameters: append([]types.Parameter{
					{Name: "sample1_successes", Type: "number", Description: "Successes in sample 1", Required: true},
					{Name: "sample1_size", Type: "number", Description: "Sample 1 size", Required: true},
					{Name: "sample2_successes", Type: "number", Description: "Successes in sample 2", Required: true},
					{Name: "sample2_size", Type: "number", Description: "Sample 2 size", Required: true},
				}, shared...),
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
	if _, present := p["alpha"]; !present {
		return nil, staterr.InvalidInput("alpha is required")
	}
	alpha, err := params.Confidence(p, "alpha", 0)
	if err != nil {
		return nil, err
	}
	tail, _ := params.String(p, "tail_type")
	if tail != TwoTailed && tail != LeftTailed && tail != RightTailed {
		return nil, staterr.InvalidInput("tail_type must be two-tailed, left-tailed, or right-tailed, got %q", tail)
	}

	t := tester{alpha: alpha, tail: tail, decimals: decimals}

	switch calc {
	case "one_sample_mean":
		return t.oneSampleMean(p)
	case "one_sample_proportion":
		return t.oneSampleProportion(p)
	case "two_sample_mean":
		return t.twoSampleMean(p)
	case "two_sample_proportion":
		return t.twoSampleProportion(p)
	default:
		return nil, staterr.InvalidInput("unknown test type: %s", calc)
	}
}

type tester struct {
	alpha    float64
	tail     string
	decimals int
}

func (t tester) fmt(x float64) string {
	return numeric.Format(x, t.decimals)
}

func (t tester) round(x float64) float64 {
	return numeric.Round(x, t.decimals)
}

// tailDist is satisfied by distuv.Normal and distuv.StudentsT.
type tailDist interface {
	CDF(x float64) float64
	Quantile(p float64) float64
}

// evaluate computes critical values, p-value, and the rejection decision for
// a test statistic under the given reference distribution.
func (t tester) evaluate(dist tailDist, stat float64) (critical []float64, pValue float64, reject bool) {
	switch t.tail {
	case TwoTailed:
		upper := dist.Quantile(1 - t.alpha/2)
		critical = []float64{-upper, upper}
		pValue = 2 * (1 - dist.CDF(math.Abs(stat)))
		reject = math.Abs(stat) > upper
	case LeftTailed:
		critical = []float64{dist.Quantile(t.alpha)}
		pValue = dist.CDF(stat)
		reject = stat < critical[0]
	default: // right-tailed
		critical = []float64{dist.Quantile(1 - t.alpha)}
		pValue = 1 - dist.CDF(stat)
		reject = stat > critical[0]
	}
	return critical, pValue, reject
}

func (t tester) hypotheses(param string, nullValue string) (h0, h1 string) {
	h0 = fmt.Sprintf("H₀: %s = %s", param, nullValue)
	switch t.tail {
	case TwoTailed:
		h1 = fmt.Sprintf("H₁: %s ≠ %s", param, nullValue)
	case LeftTailed:
		h1 = fmt.Sprintf("H₁: %s < %s", param, nullValue)
	default:
		h1 = fmt.Sprintf("H₁: %s > %s", param, nullValue)
	}
	return h0, h1
}

func (t tester) decisionSteps(critical []float64, pValue float64, reject bool) []string {
	comparator := "≥"
	verb := "fail to reject"
	if reject {
		comparator = "<"
		verb = "reject"
	}
	return []string{
		fmt.Sprintf("Critical value(s): %s", numeric.FormatSlice(critical, t.decimals)),
		fmt.Sprintf("p-value = %s", t.fmt(pValue)),
		fmt.Sprintf("Since p-value (%s) %s α (%s), we %s H₀", t.fmt(pValue), comparator, t.fmt(t.alpha), verb),
	}
}

func (t tester) conclusion(reject bool) string {
	verb := "Fail to reject"
	if reject {
		verb = "Reject"
	}
	return fmt.Sprintf("%s the null hypothesis at α = %s level", verb, t.fmt(t.alpha))
}

func (t tester) direction() string {
	switch t.tail {
	case TwoTailed:
		return "is not equal to"
	case LeftTailed:
		return "is less than"
	default:
		return "is greater than"
	}
}

func evidence(reject bool) string {
	if reject {
		return "is"
	}
	return "is not"
}

func (t tester) oneSampleMean(p map[string]interface{}) (*TestResult, error) {
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
	nullMean, err := params.RequireNumber(p, "null_mean")
	if err != nil {
		return nil, err
	}

	popStd, hasPopStd := params.Number(p, "population_std")
	sampleStd, hasSampleStd := params.Number(p, "sample_std")
	if !hasPopStd && !hasSampleStd {
		return nil, staterr.InvalidInput("either population_std or sample_std must be provided")
	}

	h0, h1 := t.hypotheses("μ", t.fmt(nullMean))

	var dist tailDist
	var distType, sigmaSymbol string
	var stdErr float64
	var df *float64
	var setupSteps []string

	if hasPopStd {
		if popStd <= 0 {
			return nil, staterr.InvalidInput("population_std must be positive, got %v", popStd)
		}
		stdErr = popStd / math.Sqrt(float64(n))
		dist = distuv.Normal{Mu: 0, Sigma: 1}
		distType, sigmaSymbol = "z", "σ"
		setupSteps = []string{
			"Using z-test (σ known)",
			fmt.Sprintf("σ = %s", t.fmt(popStd)),
			fmt.Sprintf("SE = σ/√n = %s/√%d = %s", t.fmt(popStd), n, t.fmt(stdErr)),
		}
	} else {
		if sampleStd <= 0 {
			return nil, staterr.InvalidInput("sample_std must be positive, got %v", sampleStd)
		}
		dfVal := float64(n - 1)
		df = &dfVal
		stdErr = sampleStd / math.Sqrt(float64(n))
		dist = distuv.StudentsT{Mu: 0, Sigma: 1, Nu: dfVal}
		distType, sigmaSymbol = "t", "s"
		setupSteps = []string{
			"Using t-test (σ unknown)",
			fmt.Sprintf("s = %s", t.fmt(sampleStd)),
			fmt.Sprintf("df = n - 1 = %d", n-1),
			fmt.Sprintf("SE = s/√n = %s/√%d = %s", t.fmt(sampleStd), n, t.fmt(stdErr)),
		}
	}

	stat := (sampleMean - nullMean) / stdErr
	critical, pValue, reject := t.evaluate(dist, stat)

	steps := []string{
		"State the hypotheses", h0, h1,
		fmt.Sprintf("Significance level α = %s", t.fmt(t.alpha)),
		fmt.Sprintf("Given: x̄ = %s, μ₀ = %s, n = %d", t.fmt(sampleMean), t.fmt(nullMean), n),
	}
	steps = append(steps, setupSteps...)
	steps = append(steps, fmt.Sprintf("%s = (x̄ - μ₀)/SE = (%s - %s)/%s = %s",
		distType, t.fmt(sampleMean), t.fmt(nullMean), t.fmt(stdErr), t.fmt(stat)))
	steps = append(steps, t.decisionSteps(critical, pValue, reject)...)

	return &TestResult{
		TestStatistic:         t.round(stat),
		CriticalValues:        roundSlice(critical, t.decimals),
		PValue:                t.round(pValue),
		Alpha:                 t.alpha,
		RejectNull:            reject,
		DistributionType:      distType,
		DegreesOfFreedom:      df,
		StandardError:         t.round(stdErr),
		TailType:              t.tail,
		NullHypothesis:        h0,
		AlternativeHypothesis: h1,
		Formula:               fmt.Sprintf("%s = (x̄ - μ₀) / (%s/√n)", distType, sigmaSymbol),
		Steps:                 steps,
		Conclusion:            t.conclusion(reject),
		Interpretation: fmt.Sprintf(
			"There %s sufficient evidence to conclude that the population mean %s %s",
			evidence(reject), t.direction(), t.fmt(nullMean)),
		Description: fmt.Sprintf("One-sample %s-test for the population mean", distType),
	}, nil
}

func (t tester) oneSampleProportion(p map[string]interface{}) (*TestResult, error) {
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
	p0, err := params.RequireNumber(p, "null_proportion")
	if err != nil {
		return nil, err
	}
	if p0 <= 0 || p0 >= 1 {
		return nil, staterr.InvalidRange("null_proportion must be between 0 and 1 exclusive, got %v", p0)
	}

	nf := float64(n)
	np0 := nf * p0
	nq0 := nf * (1 - p0)

	var warning string
	conditionsMet := "Yes"
	if np0 < 5 || nq0 < 5 {
		warning = fmt.Sprintf(
			"Normal approximation may not be appropriate (np₀ = %s, nq₀ = %s); both should be ≥ 5",
			t.fmt(np0), t.fmt(nq0))
		conditionsMet = "No"
	}

	h0, h1 := t.hypotheses("p", t.fmt(p0))

	stdErr := math.Sqrt(p0 * (1 - p0) / nf)
	stat := (pHat - p0) / stdErr
	critical, pValue, reject := t.evaluate(distuv.Normal{Mu: 0, Sigma: 1}, stat)

	steps := []string{
		"State the hypotheses", h0, h1,
		fmt.Sprintf("Check normal approximation: np₀ = %s, nq₀ = %s, both ≥ 5? %s", t.fmt(np0), t.fmt(nq0), conditionsMet),
		fmt.Sprintf("Significance level α = %s", t.fmt(t.alpha)),
		fmt.Sprintf("Given: p̂ = %s, p₀ = %s, n = %d", t.fmt(pHat), t.fmt(p0), n),
		fmt.Sprintf("SE = √[p₀(1-p₀)/n] = √[%s × %s / %d] = %s", t.fmt(p0), t.fmt(1-p0), n, t.fmt(stdErr)),
		fmt.Sprintf("z = (p̂ - p₀)/SE = (%s - %s)/%s = %s", t.fmt(pHat), t.fmt(p0), t.fmt(stdErr), t.fmt(stat)),
	}
	steps = append(steps, t.decisionSteps(critical, pValue, reject)...)

	return &TestResult{
		TestStatistic:         t.round(stat),
		CriticalValues:        roundSlice(critical, t.decimals),
		PValue:                t.round(pValue),
		Alpha:                 t.alpha,
		RejectNull:            reject,
		DistributionType:      "z",
		StandardError:         t.round(stdErr),
		TailType:              t.tail,
		NullHypothesis:        h0,
		AlternativeHypothesis: h1,
		Formula:               "z = (p̂ - p₀) / √[p₀(1-p₀)/n]",
		Steps:                 steps,
		Conclusion:            t.conclusion(reject),
		Interpretation: fmt.Sprintf(
			"There %s sufficient evidence to conclude that the population proportion %s %s",
			evidence(reject), t.direction(), t.fmt(p0)),
		Description: "One-sample z-test for the population proportion",
		Warning:     warning,
	}, nil
}

func (t tester) twoSampleMean(p map[string]interface{}) (*TestResult, error) {
	mean1, err := params.RequireNumber(p, "sample1_mean")
	if err != nil {
		return nil, err
	}
	n1, err := params.RequireInt(p, "sample1_size")
	if err != nil {
		return nil, err
	}
	std1, err := params.RequireNumber(p, "sample1_std")
	if err != nil {
		return nil, err
	}
	mean2, err := params.RequireNumber(p, "sample2_mean")
	if err != nil {
		return nil, err
	}
	n2, err := params.RequireInt(p, "sample2_size")
	if err != nil {
		return nil, err
	}
	std2, err := params.RequireNumber(p, "sample2_std")
	if err != nil {
		return nil, err
	}
	if n1 < 2 || n2 < 2 {
		return nil, staterr.InsufficientData("both sample sizes must be at least 2, got %d and %d", n1, n2)
	}
	if std1 <= 0 || std2 <= 0 {
		return nil, staterr.InvalidInput("sample standard deviations must be positive")
	}

	equalVar := true
	if v, ok := p["equal_variances"].(bool); ok {
		equalVar = v
	}

	h0 := "H₀: μ₁ = μ₂ (or μ₁ - μ₂ = 0)"
	var h1 string
	switch t.tail {
	case TwoTailed:
		h1 = "H₁: μ₁ ≠ μ₂ (or μ₁ - μ₂ ≠ 0)"
	case LeftTailed:
		h1 = "H₁: μ₁ < μ₂ (or μ₁ - μ₂ < 0)"
	default:
		h1 = "H₁: μ₁ > μ₂ (or μ₁ - μ₂ > 0)"
	}

	nf1, nf2 := float64(n1), float64(n2)
	var stdErr, df float64
	var pooledVar *float64
	var varianceSteps []string

	if equalVar {
		pv := ((nf1-1)*std1*std1 + (nf2-1)*std2*std2) / (nf1 + nf2 - 2)
		pooledStd := math.Sqrt(pv)
		stdErr = pooledStd * math.Sqrt(1/nf1+1/nf2)
		df = nf1 + nf2 - 2
		pooledVar = &pv
		varianceSteps = []string{
			"Pooled variance: s²ₚ = [(n₁-1)s₁² + (n₂-1)s₂²] / (n₁+n₂-2)",
			fmt.Sprintf("s²ₚ = [%d × %s + %d × %s] / %d = %s",
				n1-1, t.fmt(std1*std1), n2-1, t.fmt(std2*std2), n1+n2-2, t.fmt(pv)),
			fmt.Sprintf("sₚ = √%s = %s", t.fmt(pv), t.fmt(pooledStd)),
			fmt.Sprintf("SE = sₚ√(1/n₁ + 1/n₂) = %s√(1/%d + 1/%d) = %s",
				t.fmt(pooledStd), n1, n2, t.fmt(stdErr)),
			fmt.Sprintf("df = n₁ + n₂ - 2 = %d", n1+n2-2),
		}
	} else {
		v1, v2 := std1*std1/nf1, std2*std2/nf2
		stdErr = math.Sqrt(v1 + v2)
		// Welch-Satterthwaite degrees of freedom
		df = (v1 + v2) * (v1 + v2) / (v1*v1/(nf1-1) + v2*v2/(nf2-1))
		varianceSteps = []string{
			"Welch's t-test (unequal variances assumed)",
			fmt.Sprintf("SE = √(s₁²/n₁ + s₂²/n₂) = √(%s/%d + %s/%d) = %s",
				t.fmt(std1*std1), n1, t.fmt(std2*std2), n2, t.fmt(stdErr)),
			fmt.Sprintf("df = (s₁²/n₁ + s₂²/n₂)² / [(s₁²/n₁)²/(n₁-1) + (s₂²/n₂)²/(n₂-1)] = %s", t.fmt(df)),
		}
	}

	stat := (mean1 - mean2) / stdErr
	critical, pValue, reject := t.evaluate(distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}, stat)

	steps := []string{
		"State the hypotheses", h0, h1,
		fmt.Sprintf("Significance level α = %s", t.fmt(t.alpha)),
		fmt.Sprintf("Given: x̄₁ = %s, n₁ = %d, s₁ = %s", t.fmt(mean1), n1, t.fmt(std1)),
		fmt.Sprintf("       x̄₂ = %s, n₂ = %d, s₂ = %s", t.fmt(mean2), n2, t.fmt(std2)),
	}
	steps = append(steps, varianceSteps...)
	steps = append(steps, fmt.Sprintf("t = (x̄₁ - x̄₂) / SE = (%s - %s) / %s = %s",
		t.fmt(mean1), t.fmt(mean2), t.fmt(stdErr), t.fmt(stat)))
	steps = append(steps, t.decisionSteps(critical, pValue, reject)...)

	variant := "equal"
	if !equalVar {
		variant = "unequal"
	}

	return &TestResult{
		TestStatistic:         t.round(stat),
		CriticalValues:        roundSlice(critical, t.decimals),
		PValue:                t.round(pValue),
		Alpha:                 t.alpha,
		RejectNull:            reject,
		DistributionType:      "t",
		DegreesOfFreedom:      &df,
		StandardError:         t.round(stdErr),
		TailType:              t.tail,
		NullHypothesis:        h0,
		AlternativeHypothesis: h1,
		PooledVariance:        pooledVar,
		EqualVariances:        &equalVar,
		Formula:               "t = (x̄₁ - x̄₂) / SE",
		Steps:                 steps,
		Conclusion:            t.conclusion(reject),
		Interpretation: fmt.Sprintf(
			"There %s sufficient evidence to conclude a significant difference between the two population means",
			evidence(reject)),
		Description: fmt.Sprintf("Two-sample t-test for difference in means (%s variances)", variant),
	}, nil
}

func (t tester) twoSampleProportion(p map[string]interface{}) (*TestResult, error) {
	x1, err := params.RequireInt(p, "sample1_successes")
	if err != nil {
		return nil, err
	}
	n1, err := params.RequireInt(p, "sample1_size")
	if err != nil {
		return nil, err
	}
	x2, err := params.RequireInt(p, "sample2_successes")
	if err != nil {
		return nil, err
	}
	n2, err := params.RequireInt(p, "sample2_size")
	if err != nil {
		return nil, err
	}
	if n1 < 1 || n2 < 1 {
		return nil, staterr.InsufficientData("both sample sizes must be positive, got %d and %d", n1, n2)
	}
	if x1 < 0 || x1 > n1 || x2 < 0 || x2 > n2 {
		return nil, staterr.InvalidRange("successes must be between 0 and the sample size")
	}

	nf1, nf2 := float64(n1), float64(n2)
	p1Hat := float64(x1) / nf1
	p2Hat := float64(x2) / nf2
	pooled := float64(x1+x2) / (nf1 + nf2)
	qPooled := 1 - pooled

	// A pooled proportion of 0 or 1 makes the standard error zero and the
	// test statistic undefined
	if pooled == 0 || pooled == 1 {
		return nil, staterr.InsufficientData(
			"pooled proportion is %v; the z-test is undefined when all or no trials succeed", pooled)
	}

	var warning string
	conditionsMet := "Yes"
	if nf1*pooled < 5 || nf1*qPooled < 5 || nf2*pooled < 5 || nf2*qPooled < 5 {
		warning = "Normal approximation conditions not met; all of n₁p̂, n₁q̂, n₂p̂, n₂q̂ should be ≥ 5"
		conditionsMet = "No"
	}

	h0 := "H₀: p₁ = p₂ (or p₁ - p₂ = 0)"
	var h1 string
	switch t.tail {
	case TwoTailed:
		h1 = "H₁: p₁ ≠ p₂ (or p₁ - p₂ ≠ 0)"
	case LeftTailed:
		h1 = "H₁: p₁ < p₂ (or p₁ - p₂ < 0)"
	default:
		h1 = "H₁: p₁ > p₂ (or p₁ - p₂ > 0)"
	}

	stdErr := math.Sqrt(pooled * qPooled * (1/nf1 + 1/nf2))
	stat := (p1Hat - p2Hat) / stdErr
	critical, pValue, reject := t.evaluate(distuv.Normal{Mu: 0, Sigma: 1}, stat)

	steps := []string{
		"State the hypotheses", h0, h1,
		fmt.Sprintf("p̂₁ = %d/%d = %s", x1, n1, t.fmt(p1Hat)),
		fmt.Sprintf("p̂₂ = %d/%d = %s", x2, n2, t.fmt(p2Hat)),
		fmt.Sprintf("Pooled proportion: p̂ = (%d + %d)/(%d + %d) = %s", x1, x2, n1, n2, t.fmt(pooled)),
		fmt.Sprintf("Check normal approximation: n₁p̂ = %s, n₁q̂ = %s, n₂p̂ = %s, n₂q̂ = %s, all ≥ 5? %s",
			t.fmt(nf1*pooled), t.fmt(nf1*qPooled), t.fmt(nf2*pooled), t.fmt(nf2*qPooled), conditionsMet),
		fmt.Sprintf("Significance level α = %s", t.fmt(t.alpha)),
		fmt.Sprintf("SE = √[p̂q̂(1/n₁ + 1/n₂)] = √[%s × %s × (1/%d + 1/%d)] = %s",
			t.fmt(pooled), t.fmt(qPooled), n1, n2, t.fmt(stdErr)),
		fmt.Sprintf("z = (p̂₁ - p̂₂) / SE = (%s - %s) / %s = %s",
			t.fmt(p1Hat), t.fmt(p2Hat), t.fmt(stdErr), t.fmt(stat)),
	}
	steps = append(steps, t.decisionSteps(critical, pValue, reject)...)

	return &TestResult{
		TestStatistic:         t.round(stat),
		CriticalValues:        roundSlice(critical, t.decimals),
		PValue:                t.round(pValue),
		Alpha:                 t.alpha,
		RejectNull:            reject,
		DistributionType:      "z",
		StandardError:         t.round(stdErr),
		TailType:              t.tail,
		NullHypothesis:        h0,
		AlternativeHypothesis: h1,
		PooledProportion:      &pooled,
		Sample1Proportion:     &p1Hat,
		Sample2Proportion:     &p2Hat,
		Formula:               "z = (p̂₁ - p̂₂) / √[p̂q̂(1/n₁ + 1/n₂)]",
		Steps:                 steps,
		Conclusion:            t.conclusion(reject),
		Interpretation: fmt.Sprintf(
			"There %s sufficient evidence to conclude a significant difference between the two population proportions",
			evidence(reject)),
		Description: "Two-sample z-test for difference in proportions",
		Warning:     warning,
	}, nil
}

func roundSlice(xs []float64, decimals int) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = numeric.Round(x, decimals)
	}
	return out
}
