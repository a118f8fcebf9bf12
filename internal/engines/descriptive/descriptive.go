package descriptive

import (
	"context"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/zealotai/statistics-api/internal/shared/numeric"
	"github.com/zealotai/statistics-api/internal/shared/params"
	"github.com/zealotai/statistics-api/internal/shared/staterr"
	"github.com/zealotai/statistics-api/internal/shared/types"
)

// Engine computes descriptive statistics for a user-supplied dataset.
type Engine struct {
	maxSize int
}

// New creates a descriptive statistics engine. maxSize bounds the accepted
// dataset length; zero means no bound.
func New(maxSize int) *Engine {
	return &Engine{maxSize: maxSize}
}

// Summary groups every computed statistic for one dataset.
type Summary struct {
	DataInfo         DataInfo       `json:"data_info"`
	CentralTendency  Central        `json:"measures_of_central_tendency"`
	Dispersion       Dispersion     `json:"measures_of_dispersion"`
	Position         Position       `json:"measures_of_position"`
	Shape            Shape          `json:"distribution_shape"`
	FiveNumberSum    FiveNumber     `json:"five_number_summary"`
	CustomPercentile *types.Record  `json:"custom_percentile,omitempty"`
	StandardError    *ErrorAnalysis `json:"standard_error_analysis,omitempty"`
}

// DataInfo echoes the dataset and its sorted copy.
type DataInfo struct {
	OriginalData []float64 `json:"original_data"`
	SortedData   []float64 `json:"sorted_data"`
	SampleSize   int       `json:"sample_size"`
}

// Central holds the measures of central tendency.
type Central struct {
	Mean   *types.Record `json:"mean"`
	Median *types.Record `json:"median"`
	Mode   *types.Record `json:"mode"`
}

// Dispersion holds sample and population spread measures.
type Dispersion struct {
	SampleVariance     *types.Record `json:"sample_variance"`
	SampleStdDev       *types.Record `json:"sample_std_dev"`
	PopulationVariance *types.Record `json:"population_variance"`
	PopulationStdDev   *types.Record `json:"population_std_dev"`
	Range              *types.Record `json:"range"`
}

// Position holds the quartiles.
type Position struct {
	Q1 *types.Record `json:"q1"`
	Q2 *types.Record `json:"q2"`
	Q3 *types.Record `json:"q3"`
}

// Shape holds skewness and excess kurtosis.
type Shape struct {
	Skewness *types.Record `json:"skewness"`
	Kurtosis *types.Record `json:"kurtosis"`
}

// FiveNumber is the five-number summary plus the interquartile range.
type FiveNumber struct {
	Minimum float64       `json:"minimum"`
	Q1      float64       `json:"q1"`
	Median  float64       `json:"median"`
	Q3      float64       `json:"q3"`
	Maximum float64       `json:"maximum"`
	IQR     *types.Record `json:"iqr"`
}

// ErrorAnalysis holds the standard error of the mean and the margin of error
// at a requested confidence level.
type ErrorAnalysis struct {
	StandardError *types.Record `json:"standard_error"`
	MarginOfError *types.Record `json:"margin_of_error"`
}

// Definition returns engine metadata for the service catalog.
func (e *Engine) Definition() types.Engine {
	return types.Engine{
		ID:           "descriptive",
		Name:         "Descriptive Statistics",
		Description:  "Central tendency, dispersion, position, and shape measures for a dataset",
		Capabilities: []string{"central_tendency", "dispersion", "position", "shape", "five_number_summary", "standard_error"},
		Calculations: []types.Calc{
			{
				ID:          "descriptive.summary",
				Name:        "Summary",
				Description: "Full descriptive statistics with step-by-step derivations",
				Parameters: []types.Parameter{
					{Name: "data", Type: "array", Description: "Dataset of at least 2 numeric values", Required: true},
					{Name: "custom_percentile", Type: "number", Description: "Additional percentile to compute (0-100)", Required: false},
					{Name: "include_standard_error", Type: "boolean", Description: "Include standard error and margin of error", Required: false},
					{Name: "confidence_level", Type: "number", Description: "Confidence level for the margin of error (0-1, default 0.95)", Required: false},
					{Name: "decimals", Type: "number", Description: "Rounding precision (0-10, default 4)", Required: false},
				},
				Returns: "object",
			},
		},
	}
}

// Compute dispatches a calculation by kind. The descriptive engine has a
// single kind; an empty calc defaults to it.
func (e *Engine) Compute(ctx context.Context, calc string, p map[string]interface{}) (interface{}, error) {
	switch calc {
	case "", "summary":
		return e.summary(p)
	default:
		return nil, staterr.InvalidInput("unknown calculation type: %s", calc)
	}
}

func (e *Engine) summary(p map[string]interface{}) (*Summary, error) {
	data, err := params.Numbers(p, "data")
	if err != nil {
		return nil, err
	}
	if len(data) < 2 {
		return nil, staterr.InsufficientData("at least 2 data values are required, got %d", len(data))
	}
	if e.maxSize > 0 && len(data) > e.maxSize {
		return nil, staterr.InvalidInput("dataset exceeds maximum size of %d values", e.maxSize)
	}

	decimals, err := params.Decimals(p)
	if err != nil {
		return nil, err
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	d := &dataset{values: data, sorted: sorted, n: len(data), decimals: decimals}

	out := &Summary{
		DataInfo: DataInfo{
			OriginalData: roundSlice(data, decimals),
			SortedData:   roundSlice(sorted, decimals),
			SampleSize:   d.n,
		},
		CentralTendency: d.centralTendency(),
		Dispersion:      d.dispersion(),
		Position:        d.position(),
		Shape:           d.shape(),
		FiveNumberSum:   d.fiveNumberSummary(),
	}

	if raw, present := p["custom_percentile"]; present && raw != nil {
		pct, ok := params.Number(p, "custom_percentile")
		if !ok {
			return nil, staterr.InvalidInput("custom_percentile must be numeric, got %v", raw)
		}
		if pct < 0 || pct > 100 {
			return nil, staterr.InvalidRange("custom_percentile must be between 0 and 100, got %v", pct)
		}
		out.CustomPercentile = d.customPercentile(pct)
	}

	if params.Bool(p, "include_standard_error") {
		level, err := params.Confidence(p, "confidence_level", 0.95)
		if err != nil {
			return nil, err
		}
		out.StandardError = d.standardError(level)
	}

	return out, nil
}

// dataset carries the immutable input and its derived sorted copy through the
// per-group computations.
type dataset struct {
	values   []float64
	sorted   []float64
	n        int
	decimals int
}

func (d *dataset) fmt(x float64) string {
	return numeric.Format(x, d.decimals)
}

func (d *dataset) round(x float64) float64 {
	return numeric.Round(x, d.decimals)
}

func (d *dataset) centralTendency() Central {
	sum := floats.Sum(d.values)
	mean := stat.Mean(d.values, nil)

	meanRec := &types.Record{
		Value:       types.Float(d.round(mean)),
		Formula:     "x̄ = Σx / n",
		Description: "The arithmetic average of all values",
		Steps: []string{
			fmt.Sprintf("Sum of all values: %s = %s", numeric.Join(d.values, " + ", d.decimals), d.fmt(sum)),
			fmt.Sprintf("Number of values: n = %d", d.n),
			fmt.Sprintf("Mean = Sum / n = %s / %d = %s", d.fmt(sum), d.n, d.fmt(mean)),
		},
	}

	return Central{
		Mean:   meanRec,
		Median: d.median(),
		Mode:   d.mode(),
	}
}

func (d *dataset) median() *types.Record {
	var median float64
	var steps []string

	if d.n%2 == 1 {
		median = d.sorted[d.n/2]
		steps = []string{
			fmt.Sprintf("Sorted data: %s", numeric.FormatSlice(d.sorted, d.decimals)),
			fmt.Sprintf("n = %d (odd), so the median is the middle value", d.n),
			fmt.Sprintf("Position = (n + 1) / 2 = (%d + 1) / 2 = %d", d.n, (d.n+1)/2),
			fmt.Sprintf("Median = %s", d.fmt(median)),
		}
	} else {
		lo, hi := d.sorted[d.n/2-1], d.sorted[d.n/2]
		median = (lo + hi) / 2
		steps = []string{
			fmt.Sprintf("Sorted data: %s", numeric.FormatSlice(d.sorted, d.decimals)),
			fmt.Sprintf("n = %d (even), so the median is the average of the two middle values", d.n),
			fmt.Sprintf("Middle values: %s and %s", d.fmt(lo), d.fmt(hi)),
			fmt.Sprintf("Median = (%s + %s) / 2 = %s", d.fmt(lo), d.fmt(hi), d.fmt(median)),
		}
	}

	return &types.Record{
		Value:       types.Float(d.round(median)),
		Formula:     "Middle value when data is arranged in order",
		Description: "The middle value separating the higher half from the lower half",
		Steps:       steps,
	}
}

// mode reports the most frequent value(s); ties are reported as a set, and a
// dataset where every value is unique has no mode.
func (d *dataset) mode() *types.Record {
	freq := make(map[float64]int, d.n)
	for _, v := range d.values {
		freq[v]++
	}

	maxFreq := 0
	for _, c := range freq {
		if c > maxFreq {
			maxFreq = c
		}
	}

	rec := &types.Record{
		Formula:     "Most frequently occurring value",
		Description: "The value that appears most frequently in the dataset",
	}

	if maxFreq < 2 {
		rec.Steps = []string{"No mode exists (all values appear with equal frequency)"}
		return rec
	}

	var modes []float64
	for v, c := range freq {
		if c == maxFreq {
			modes = append(modes, v)
		}
	}
	sort.Float64s(modes)

	uniq := make([]float64, 0, len(freq))
	for v := range freq {
		uniq = append(uniq, v)
	}
	sort.Float64s(uniq)

	steps := []string{"Count frequency of each value:"}
	for _, v := range uniq {
		steps = append(steps, fmt.Sprintf("  %s: %d times", d.fmt(v), freq[v]))
	}
	steps = append(steps, fmt.Sprintf("Mode = %s (appears %d times)", numeric.Join(modes, ", ", d.decimals), maxFreq))

	rec.Values = roundSlice(modes, d.decimals)
	if len(modes) == 1 {
		rec.Value = types.Float(d.round(modes[0]))
	}
	rec.Steps = steps
	return rec
}

func (d *dataset) dispersion() Dispersion {
	mean := stat.Mean(d.values, nil)
	sampleVar := stat.Variance(d.values, nil)
	sampleStd := math.Sqrt(sampleVar)
	popVar := stat.PopVariance(d.values, nil)
	popStd := math.Sqrt(popVar)
	min, max := floats.Min(d.values), floats.Max(d.values)

	deviations := make([]float64, d.n)
	squared := make([]float64, d.n)
	for i, v := range d.values {
		deviations[i] = v - mean
		squared[i] = deviations[i] * deviations[i]
	}
	ssd := floats.Sum(squared)

	return Dispersion{
		SampleVariance: &types.Record{
			Value:       types.Float(d.round(sampleVar)),
			Formula:     "s² = Σ(x - x̄)² / (n - 1)",
			Description: "Sample variance (divides by n-1 for an unbiased estimate)",
			Steps: []string{
				fmt.Sprintf("Mean (x̄) = %s", d.fmt(mean)),
				fmt.Sprintf("Deviations from mean: %s", numeric.FormatSlice(deviations, d.decimals)),
				fmt.Sprintf("Squared deviations: %s", numeric.FormatSlice(squared, d.decimals)),
				fmt.Sprintf("Sum of squared deviations: %s", d.fmt(ssd)),
				fmt.Sprintf("Sample variance = Σ(x - x̄)² / (n - 1) = %s / %d = %s", d.fmt(ssd), d.n-1, d.fmt(sampleVar)),
			},
		},
		SampleStdDev: &types.Record{
			Value:       types.Float(d.round(sampleStd)),
			Formula:     "s = √[Σ(x - x̄)² / (n - 1)]",
			Description: "Sample standard deviation (square root of sample variance)",
			Steps: []string{
				fmt.Sprintf("Sample standard deviation = √%s = %s", d.fmt(sampleVar), d.fmt(sampleStd)),
			},
		},
		PopulationVariance: &types.Record{
			Value:       types.Float(d.round(popVar)),
			Formula:     "σ² = Σ(x - μ)² / n",
			Description: "Population variance (divides by n)",
			Steps: []string{
				fmt.Sprintf("Population variance = Σ(x - μ)² / n = %s / %d = %s", d.fmt(ssd), d.n, d.fmt(popVar)),
			},
		},
		PopulationStdDev: &types.Record{
			Value:       types.Float(d.round(popStd)),
			Formula:     "σ = √[Σ(x - μ)² / n]",
			Description: "Population standard deviation (square root of population variance)",
			Steps: []string{
				fmt.Sprintf("Population standard deviation = √%s = %s", d.fmt(popVar), d.fmt(popStd)),
			},
		},
		Range: &types.Record{
			Value:       types.Float(d.round(max - min)),
			Formula:     "Range = Maximum - Minimum",
			Description: "The difference between the largest and smallest values",
			Steps: []string{
				fmt.Sprintf("Range = %s - %s = %s", d.fmt(max), d.fmt(min), d.fmt(max-min)),
			},
		},
	}
}

func (d *dataset) position() Position {
	q1 := numeric.Percentile(d.sorted, 25)
	q2 := numeric.Percentile(d.sorted, 50)
	q3 := numeric.Percentile(d.sorted, 75)

	return Position{
		Q1: &types.Record{
			Value:       types.Float(d.round(q1)),
			Formula:     "Q1 = 25th percentile",
			Description: "First quartile - 25% of data falls below this value",
			Steps:       []string{fmt.Sprintf("Q1 (25th percentile) = %s", d.fmt(q1))},
		},
		Q2: &types.Record{
			Value:       types.Float(d.round(q2)),
			Formula:     "Q2 = 50th percentile = Median",
			Description: "Second quartile - same as the median",
			Steps:       []string{fmt.Sprintf("Q2 (50th percentile) = %s", d.fmt(q2))},
		},
		Q3: &types.Record{
			Value:       types.Float(d.round(q3)),
			Formula:     "Q3 = 75th percentile",
			Description: "Third quartile - 75% of data falls below this value",
			Steps:       []string{fmt.Sprintf("Q3 (75th percentile) = %s", d.fmt(q3))},
		},
	}
}

// shape computes moment-based skewness and excess kurtosis. The population
// central moments are used (divisor n), so kurtosis of a normal sample is
// centered on zero after the -3 correction.
func (d *dataset) shape() Shape {
	mean := stat.Mean(d.values, nil)

	var m2, m3, m4 float64
	for _, v := range d.values {
		dev := v - mean
		m2 += dev * dev
		m3 += dev * dev * dev
		m4 += dev * dev * dev * dev
	}
	n := float64(d.n)
	m2, m3, m4 = m2/n, m3/n, m4/n

	skewRec := &types.Record{
		Formula:     "Skewness = E[(X - μ)³] / σ³",
		Description: "Measures asymmetry of the distribution",
	}
	kurtRec := &types.Record{
		Formula:     "Kurtosis = E[(X - μ)⁴] / σ⁴ - 3",
		Description: "Excess kurtosis: tail heaviness relative to the normal distribution",
	}

	if m2 == 0 {
		skewRec.Warning = "Skewness is undefined for a dataset with zero variance"
		kurtRec.Warning = "Kurtosis is undefined for a dataset with zero variance"
		return Shape{Skewness: skewRec, Kurtosis: kurtRec}
	}

	skew := m3 / math.Pow(m2, 1.5)
	kurt := m4/(m2*m2) - 3

	switch {
	case math.Abs(skew) < 0.5:
		skewRec.Interpretation = "Approximately symmetric"
	case skew > 0:
		skewRec.Interpretation = "Right-skewed (positively skewed)"
	default:
		skewRec.Interpretation = "Left-skewed (negatively skewed)"
	}

	switch {
	case math.Abs(kurt) < 0.5:
		kurtRec.Interpretation = "Approximately normal (mesokurtic)"
	case kurt > 0:
		kurtRec.Interpretation = "Heavy-tailed (leptokurtic)"
	default:
		kurtRec.Interpretation = "Light-tailed (platykurtic)"
	}

	skewRec.Value = types.Float(d.round(skew))
	kurtRec.Value = types.Float(d.round(kurt))
	return Shape{Skewness: skewRec, Kurtosis: kurtRec}
}

func (d *dataset) fiveNumberSummary() FiveNumber {
	min, max := d.sorted[0], d.sorted[d.n-1]
	q1 := numeric.Percentile(d.sorted, 25)
	median := numeric.Percentile(d.sorted, 50)
	q3 := numeric.Percentile(d.sorted, 75)
	iqr := q3 - q1

	return FiveNumber{
		Minimum: d.round(min),
		Q1:      d.round(q1),
		Median:  d.round(median),
		Q3:      d.round(q3),
		Maximum: d.round(max),
		IQR: &types.Record{
			Value:       types.Float(d.round(iqr)),
			Formula:     "IQR = Q3 - Q1",
			Description: "Interquartile range - spread of the middle 50% of data",
			Steps:       []string{fmt.Sprintf("IQR = %s - %s = %s", d.fmt(q3), d.fmt(q1), d.fmt(iqr))},
		},
	}
}

func (d *dataset) customPercentile(p float64) *types.Record {
	value := numeric.Percentile(d.sorted, p)
	pStr := numeric.Format(p, d.decimals)

	return &types.Record{
		Value:       types.Float(d.round(value)),
		Formula:     fmt.Sprintf("%sth percentile (linear interpolation at rank p/100 × (n-1))", pStr),
		Description: fmt.Sprintf("%s%% of the data falls below this value", pStr),
		Steps: []string{
			fmt.Sprintf("Rank = %s / 100 × (%d - 1) = %s", pStr, d.n, numeric.Format(p/100*float64(d.n-1), d.decimals)),
			fmt.Sprintf("%sth percentile = %s (interpolated between order statistics)", pStr, d.fmt(value)),
		},
	}
}

// standardError computes SE of the mean and the t-based margin of error at
// the requested confidence level.
func (d *dataset) standardError(level float64) *ErrorAnalysis {
	s := stat.StdDev(d.values, nil)
	se := s / math.Sqrt(float64(d.n))

	alpha := 1 - level
	df := float64(d.n - 1)
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	tCrit := tDist.Quantile(1 - alpha/2)
	me := tCrit * se

	levelPct := numeric.Format(level*100, 2)

	return &ErrorAnalysis{
		StandardError: &types.Record{
			Value:       types.Float(d.round(se)),
			Formula:     "SE = s / √n",
			Description: "Standard error of the sample mean",
			Steps: []string{
				fmt.Sprintf("Sample standard deviation (s) = %s", d.fmt(s)),
				fmt.Sprintf("Sample size (n) = %d", d.n),
				fmt.Sprintf("Standard error = %s / √%d = %s", d.fmt(s), d.n, d.fmt(se)),
			},
		},
		MarginOfError: &types.Record{
			Value:       types.Float(d.round(me)),
			Formula:     "ME = t_(α/2) × SE",
			Description: fmt.Sprintf("Margin of error for a %s%% confidence interval", levelPct),
			Steps: []string{
				fmt.Sprintf("Confidence level = %s%%", levelPct),
				fmt.Sprintf("Degrees of freedom = %d", d.n-1),
				fmt.Sprintf("t-critical value = %s", d.fmt(tCrit)),
				fmt.Sprintf("Margin of error = %s × %s = %s", d.fmt(tCrit), d.fmt(se), d.fmt(me)),
			},
		},
	}
}

func roundSlice(xs []float64, decimals int) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = numeric.Round(x, decimals)
	}
	return out
}
