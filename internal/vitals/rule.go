package vitals

import "math"

// Names of the built-in vital signs. A snapshot value is routed to a rule by
// exact name match.
const (
	TemperatureName = "Temperature"
	PulseRateName   = "Pulse Rate"
	SpO2Name        = "SpO2"
)

// Rule classifies a single measurement value.
// Implementations must be immutable and free of side effects.
type Rule interface {
	Name() string
	InRange(value float32) bool
	AlertMessage() string
}

// Bounds is an inclusive range; an unset side is open.
type Bounds struct {
	Min    float32 `json:"min"`
	Max    float32 `json:"max"`
	HasMin bool    `json:"has_min"`
	HasMax bool    `json:"has_max"`
}

// Contains reports whether v lies within b. NaN is never contained.
func (b Bounds) Contains(v float32) bool {
	if isNaN(v) {
		return false
	}
	if b.HasMin && v < b.Min {
		return false
	}
	if b.HasMax && v > b.Max {
		return false
	}
	return true
}

// RangeRule checks a value against fixed inclusive bounds.
type RangeRule struct {
	name    string
	message string
	bounds  Bounds
}

func NewRangeRule(name string, min, max float32, message string) *RangeRule {
	return &RangeRule{name: name, message: message, bounds: Bounds{Min: min, Max: max, HasMin: true, HasMax: true}}
}

func NewLowerBoundRule(name string, min float32, message string) *RangeRule {
	return &RangeRule{name: name, message: message, bounds: Bounds{Min: min, HasMin: true}}
}

func NewUpperBoundRule(name string, max float32, message string) *RangeRule {
	return &RangeRule{name: name, message: message, bounds: Bounds{Max: max, HasMax: true}}
}

func (r *RangeRule) Name() string               { return r.name }
func (r *RangeRule) AlertMessage() string       { return r.message }
func (r *RangeRule) Bounds() Bounds             { return r.bounds }
func (r *RangeRule) InRange(value float32) bool { return r.bounds.Contains(value) }

// PredicateRule delegates classification to an arbitrary function.
type PredicateRule struct {
	name    string
	message string
	check   func(float32) bool
}

// NewPredicateRule wraps check as a Rule. NaN values and a nil check both
// classify as out of range.
func NewPredicateRule(name, message string, check func(float32) bool) *PredicateRule {
	return &PredicateRule{name: name, message: message, check: check}
}

func (r *PredicateRule) Name() string         { return r.name }
func (r *PredicateRule) AlertMessage() string { return r.message }

func (r *PredicateRule) InRange(value float32) bool {
	if r.check == nil || isNaN(value) {
		return false
	}
	return r.check(value)
}

func isNaN(v float32) bool { return math.IsNaN(float64(v)) }
