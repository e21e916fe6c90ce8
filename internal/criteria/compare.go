package criteria

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Op is a comparison operator in a criteria expression.
type Op string

const (
	OpLT  Op = "<"
	OpGT  Op = ">"
	OpLTE Op = "<="
	OpGTE Op = ">="
)

// Comparison is a parsed comparison expression such as "> 5", "<= 100" or
// ">= 2 days". Duration-unit comparisons only make sense against time-valued
// attributes (age); callers pick the matching Compare method.
type Comparison struct {
	Op       Op
	Value    float64
	Duration time.Duration // non-zero when a duration unit was present
	Percent  bool
}

var comparisonPattern = regexp.MustCompile(
	`^\s*(<=|>=|<|>)\s*(-?\d+(?:\.\d+)?)\s*(%|minutes?|hours?|days?|weeks?|months?|years?)?\s*$`,
)

var durationUnits = map[string]time.Duration{
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
	"week":   7 * 24 * time.Hour,
	"month":  30 * 24 * time.Hour,
	"year":   365 * 24 * time.Hour,
}

// ParseComparison parses a comparison expression. The operator is mandatory;
// an optional unit turns the comparison into a duration (age) or percentage
// comparison.
func ParseComparison(expr string) (*Comparison, error) {
	m := comparisonPattern.FindStringSubmatch(expr)
	if m == nil {
		return nil, fmt.Errorf("invalid comparison %q: expected e.g. %q or %q", expr, "> 5", "<= 2 days")
	}

	value, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid comparison %q: %w", expr, err)
	}

	c := &Comparison{Op: Op(m[1]), Value: value}

	switch unit := m[3]; {
	case unit == "":
	case unit == "%":
		c.Percent = true
	default:
		c.Duration = time.Duration(value * float64(durationUnits[strings.TrimSuffix(unit, "s")]))
	}

	return c, nil
}

// CompareFloat reports whether v satisfies the comparison.
func (c *Comparison) CompareFloat(v float64) bool {
	switch c.Op {
	case OpLT:
		return v < c.Value
	case OpGT:
		return v > c.Value
	case OpLTE:
		return v <= c.Value
	case OpGTE:
		return v >= c.Value
	}
	return false
}

// CompareInt reports whether n satisfies the comparison.
func (c *Comparison) CompareInt(n int) bool {
	return c.CompareFloat(float64(n))
}

// CompareDuration reports whether d satisfies a duration comparison. A
// comparison parsed without a unit compares d in whole days, matching how
// ages are most commonly written.
func (c *Comparison) CompareDuration(d time.Duration) bool {
	threshold := c.Duration
	if threshold == 0 {
		threshold = time.Duration(c.Value * float64(durationUnits["day"]))
	}
	switch c.Op {
	case OpLT:
		return d < threshold
	case OpGT:
		return d > threshold
	case OpLTE:
		return d <= threshold
	case OpGTE:
		return d >= threshold
	}
	return false
}

// String renders the comparison for audit reasons.
func (c *Comparison) String() string {
	suffix := ""
	if c.Percent {
		suffix = "%"
	} else if c.Duration > 0 {
		suffix = " " + c.Duration.String()
	}
	return fmt.Sprintf("%s %g%s", c.Op, c.Value, suffix)
}
