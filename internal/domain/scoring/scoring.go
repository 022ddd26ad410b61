// Package scoring turns a ten-criterion breakdown into one bounded
// overall score via fixed weights and anti-outlier normalization.
package scoring

import (
	"fmt"
	"math"

	"github.com/okian/truscore/internal/domain/model"
)

// Criterion value and overall score bounds.
const (
	MinCriterion = 0
	MaxCriterion = 10
	MinScore     = 0.0
	MaxScore     = 100.0
)

// Normalization bands. Extreme ratings are compressed toward the middle
// so repeated runs over the same data converge; mid-range ratings pass
// through untouched.
const (
	lowBand  = 2
	highBand = 9
	lowBoost = 1.1
	highDamp = 0.98
)

// Criterion binds one breakdown field to its aggregation weight.
type Criterion struct {
	Name   string
	Weight float64
	value  func(model.Breakdown) int
	assign func(*model.Breakdown, int)
}

// criteria is the fixed criterion/weight table. The weights sum to
// exactly 10.0, which bounds the unclamped weighted sum to [0, 100]
// for any valid breakdown. The binding to breakdown fields is explicit
// here; payloads are never walked dynamically.
var criteria = []Criterion{
	{"project", 1.1, func(b model.Breakdown) int { return b.Project }, func(b *model.Breakdown, v int) { b.Project = v }},
	{"userbase", 0.9, func(b model.Breakdown) int { return b.Userbase }, func(b *model.Breakdown, v int) { b.Userbase = v }},
	{"utility", 1.2, func(b model.Breakdown) int { return b.Utility }, func(b *model.Breakdown, v int) { b.Utility = v }},
	{"security", 1.7, func(b model.Breakdown) int { return b.Security }, func(b *model.Breakdown, v int) { b.Security = v }},
	{"team", 0.4, func(b model.Breakdown) int { return b.Team }, func(b *model.Breakdown, v int) { b.Team = v }},
	{"tokenomics", 1.1, func(b model.Breakdown) int { return b.Tokenomics }, func(b *model.Breakdown, v int) { b.Tokenomics = v }},
	{"marketing", 1.5, func(b model.Breakdown) int { return b.Marketing }, func(b *model.Breakdown, v int) { b.Marketing = v }},
	{"roadmap", 1.0, func(b model.Breakdown) int { return b.Roadmap }, func(b *model.Breakdown, v int) { b.Roadmap = v }},
	{"clarity", 0.4, func(b model.Breakdown) int { return b.Clarity }, func(b *model.Breakdown, v int) { b.Clarity = v }},
	{"partnerships", 0.7, func(b model.Breakdown) int { return b.Partnerships }, func(b *model.Breakdown, v int) { b.Partnerships = v }},
}

// Criteria returns the fixed criterion table in aggregation order.
func Criteria() []Criterion {
	out := make([]Criterion, len(criteria))
	copy(out, criteria)
	return out
}

// CriterionCount is the number of criteria in a breakdown.
func CriterionCount() int {
	return len(criteria)
}

// Validate checks that every criterion of b lies within [0, 10].
func Validate(b model.Breakdown) error {
	for _, c := range criteria {
		v := c.value(b)
		if v < MinCriterion || v > MaxCriterion {
			return fmt.Errorf("%w: %s=%d", ErrCriterionOutOfRange, c.Name, v)
		}
	}
	return nil
}

// FromMap builds a Breakdown from criterion-name keyed values. The map
// must contain exactly the known criteria; missing keys, unknown keys,
// and out-of-range values are rejected.
func FromMap(values map[string]int) (model.Breakdown, error) {
	var b model.Breakdown
	if len(values) != len(criteria) {
		return b, fmt.Errorf("%w: got %d criteria, want %d", ErrMalformedBreakdown, len(values), len(criteria))
	}
	for _, c := range criteria {
		v, ok := values[c.Name]
		if !ok {
			return b, fmt.Errorf("%w: missing criterion %q", ErrMalformedBreakdown, c.Name)
		}
		if v < MinCriterion || v > MaxCriterion {
			return b, fmt.Errorf("%w: %s=%d", ErrCriterionOutOfRange, c.Name, v)
		}
		c.assign(&b, v)
	}
	return b, nil
}

// normalize compresses extreme criterion ratings toward the middle.
func normalize(v int) float64 {
	switch {
	case v <= lowBand:
		return float64(v) * lowBoost
	case v >= highBand:
		return math.Min(MaxCriterion, float64(v)*highDamp)
	default:
		return float64(v)
	}
}

// Aggregate computes the overall score for a breakdown: each criterion
// is normalized, weighted, and summed; the result is clamped to
// [0, 100] and rounded to two decimal places. Pure and deterministic.
func Aggregate(b model.Breakdown) float64 {
	var sum float64
	for _, c := range criteria {
		sum += normalize(c.value(b)) * c.Weight
	}
	sum = math.Max(MinScore, math.Min(MaxScore, sum))
	return math.Round(sum*100) / 100
}

// ValidScore reports whether s is a legal overall score.
func ValidScore(s float64) bool {
	return s >= MinScore && s <= MaxScore
}
