package engine

import "vitals-monitor/internal/vitals"

// Snapshot maps a vital sign name to its measured value.
// Rules are matched to values by exact name.
type Snapshot map[string]float32

// Vitals builds a snapshot from the three built-in measurements.
func Vitals(temperature, pulseRate, spo2 float32) Snapshot {
	return Snapshot{
		vitals.TemperatureName: temperature,
		vitals.PulseRateName:   pulseRate,
		vitals.SpO2Name:        spo2,
	}
}

type Violation struct {
	Rule    string  `json:"rule"`
	Message string  `json:"message"`
	Value   float32 `json:"value"`
}

// Report is the outcome of one evaluation. Violations and Skipped are in
// rule registration order.
type Report struct {
	OK         bool        `json:"ok"`
	Violations []Violation `json:"violations"`
	Skipped    []string    `json:"skipped,omitempty"`
}

// Messages returns the alert messages in delivery order.
func (r Report) Messages() []string {
	out := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		out = append(out, v.Message)
	}
	return out
}

// Limits mirrors the bounds of the built-in rules as last set through the
// Set*Limits methods.
type Limits struct {
	Temperature vitals.Bounds `json:"temperature"`
	PulseRate   vitals.Bounds `json:"pulse_rate"`
	SpO2        vitals.Bounds `json:"spo2"`
}

func defaultLimits() Limits {
	return Limits{
		Temperature: vitals.Temperature().Bounds(),
		PulseRate:   vitals.PulseRate().Bounds(),
		SpO2:        vitals.SpO2().Bounds(),
	}
}
