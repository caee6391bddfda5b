package vitals

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidDef = errors.New("invalid rule definition")

// Def is the serialisable form of a range rule, as stored in the rules table
// or a rules file.
type Def struct {
	Name    string   `yaml:"name" json:"name"`
	Min     *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max     *float64 `yaml:"max,omitempty" json:"max,omitempty"`
	Message string   `yaml:"message,omitempty" json:"message,omitempty"`
}

// Rule converts d into a RangeRule. A missing message defaults to
// "<name> is out of range!".
func (d Def) Rule() (*RangeRule, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidDef)
	}
	if d.Min == nil && d.Max == nil {
		return nil, fmt.Errorf("%w: %q has no bounds", ErrInvalidDef, name)
	}
	if d.Min != nil && d.Max != nil && *d.Min > *d.Max {
		return nil, fmt.Errorf("%w: %q min %.2f > max %.2f", ErrInvalidDef, name, *d.Min, *d.Max)
	}

	msg := d.Message
	if msg == "" {
		msg = name + " is out of range!"
	}

	r := &RangeRule{name: name, message: msg}
	if d.Min != nil {
		r.bounds.Min, r.bounds.HasMin = float32(*d.Min), true
	}
	if d.Max != nil {
		r.bounds.Max, r.bounds.HasMax = float32(*d.Max), true
	}
	return r, nil
}

// Build converts every definition, failing on the first invalid one.
func Build(defs []Def) ([]Rule, error) {
	out := make([]Rule, 0, len(defs))
	for i, d := range defs {
		r, err := d.Rule()
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// Describe renders r as a Def. Bounds are only known for RangeRule values.
func Describe(r Rule) Def {
	d := Def{Name: r.Name(), Message: r.AlertMessage()}
	if rr, ok := r.(*RangeRule); ok {
		b := rr.Bounds()
		if b.HasMin {
			v := float64(b.Min)
			d.Min = &v
		}
		if b.HasMax {
			v := float64(b.Max)
			d.Max = &v
		}
	}
	return d
}
