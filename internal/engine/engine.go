package engine

import (
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"vitals-monitor/internal/notify"
	"vitals-monitor/internal/vitals"
)

// Recorder receives evaluation telemetry.
type Recorder interface {
	ObserveEvaluation(ok bool, took time.Duration)
	ObserveViolation(rule string)
	ObserveSkipped(rule string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveEvaluation(bool, time.Duration) {}
func (nopRecorder) ObserveViolation(string)               {}
func (nopRecorder) ObserveSkipped(string)                 {}

// defaultNotifier builds the notifier installed by New and by SetNotifier(nil).
var defaultNotifier = func() notify.Notifier { return notify.NewConsole() }

// Monitor evaluates measurement snapshots against an ordered rule set and
// reports each violation to a single notifier.
//
// Monitor does no locking. Use one Monitor per goroutine or wrap it in a
// Locked.
type Monitor struct {
	rules    []vitals.Rule
	notifier notify.Notifier

	limits     Limits
	liveLimits bool

	log zerolog.Logger
	rec Recorder
}

type Option func(*Monitor)

func WithNotifier(n notify.Notifier) Option {
	return func(m *Monitor) {
		if n != nil {
			m.notifier = n
		}
	}
}

// WithRules replaces the built-in rule set.
func WithRules(rules ...vitals.Rule) Option {
	return func(m *Monitor) {
		m.rules = m.rules[:0]
		for _, r := range rules {
			if r != nil {
				m.rules = append(m.rules, r)
			}
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(m *Monitor) { m.log = l }
}

func WithRecorder(r Recorder) Option {
	return func(m *Monitor) {
		if r != nil {
			m.rec = r
		}
	}
}

// WithLiveLimits makes the Set*Limits methods rebuild the matching rules.
// Without it the setters only update the values returned by Limits.
func WithLiveLimits() Option {
	return func(m *Monitor) { m.liveLimits = true }
}

// New returns a Monitor with the built-in temperature, pulse rate and SpO2
// rules and a console notifier.
func New(opts ...Option) *Monitor {
	m := &Monitor{
		rules:    vitals.Defaults(),
		notifier: defaultNotifier(),
		limits:   defaultLimits(),
		log:      log.Logger.With().Str("component", "engine").Logger(),
		rec:      nopRecorder{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Evaluate checks the three built-in measurements and returns true iff no
// rule was violated. Rules whose name is not one of the built-in names are
// skipped.
func (m *Monitor) Evaluate(temperature, pulseRate, spo2 float32) bool {
	return m.EvaluateSnapshot(Vitals(temperature, pulseRate, spo2)).OK
}

// EvaluateSnapshot runs every rule, in registration order, against the value
// of the same name in snap. The notifier is called once per violation and
// evaluation never stops early. Rules without a value are skipped and count
// as neither pass nor fail.
func (m *Monitor) EvaluateSnapshot(snap Snapshot) Report {
	start := time.Now()
	rep := Report{OK: true, Violations: []Violation{}}

	for _, r := range m.rules {
		name := r.Name()
		v, ok := snap[name]
		if !ok {
			rep.Skipped = append(rep.Skipped, name)
			m.rec.ObserveSkipped(name)
			continue
		}
		if r.InRange(v) {
			continue
		}

		msg := r.AlertMessage()
		rep.OK = false
		rep.Violations = append(rep.Violations, Violation{Rule: name, Message: msg, Value: v})
		m.rec.ObserveViolation(name)
		m.notifier.Deliver(msg)
	}

	took := time.Since(start)
	m.rec.ObserveEvaluation(rep.OK, took)
	m.log.Debug().
		Bool("ok", rep.OK).
		Int("violations", len(rep.Violations)).
		Int("skipped", len(rep.Skipped)).
		Dur("took", took).
		Msg("snapshot evaluated")
	return rep
}

// SetNotifier replaces the active notifier. nil restores the console default.
func (m *Monitor) SetNotifier(n notify.Notifier) {
	if n == nil {
		n = defaultNotifier()
	}
	m.notifier = n
}

// SetAlertCallback routes every alert message to fn.
func (m *Monitor) SetAlertCallback(fn func(message string)) {
	if fn == nil {
		m.SetNotifier(nil)
		return
	}
	m.SetNotifier(notify.Func(fn))
}

// AddRule appends r. Names are not required to be unique.
func (m *Monitor) AddRule(r vitals.Rule) {
	if r == nil {
		return
	}
	m.rules = append(m.rules, r)
}

// RemoveRule drops every rule named name.
func (m *Monitor) RemoveRule(name string) {
	m.rules = slices.DeleteFunc(m.rules, func(r vitals.Rule) bool { return r.Name() == name })
}

// Rules returns a copy of the current rule sequence.
func (m *Monitor) Rules() []vitals.Rule {
	return slices.Clone(m.rules)
}

func (m *Monitor) Limits() Limits { return m.limits }

func (m *Monitor) SetTemperatureLimits(min, max float32) {
	m.limits.Temperature.Min, m.limits.Temperature.Max = min, max
	if m.liveLimits {
		m.rebuild(vitals.TemperatureName, m.limits.Temperature)
	}
}

func (m *Monitor) SetPulseRateLimits(min, max float32) {
	m.limits.PulseRate.Min, m.limits.PulseRate.Max = min, max
	if m.liveLimits {
		m.rebuild(vitals.PulseRateName, m.limits.PulseRate)
	}
}

// SetSpO2Limits stores only the lower bound; saturation has no upper limit.
func (m *Monitor) SetSpO2Limits(min, _ float32) {
	m.limits.SpO2.Min = min
	if m.liveLimits {
		m.rebuild(vitals.SpO2Name, m.limits.SpO2)
	}
}

// RestoreBuiltin appends the built-in rule called name and reports whether
// one exists. With live limits the rule carries the stored limits instead of
// the default bounds.
func (m *Monitor) RestoreBuiltin(name string) bool {
	d, ok := vitals.Default(name)
	if !ok {
		return false
	}
	var r vitals.Rule = d
	if m.liveLimits {
		r = boundedRule(name, m.limitsFor(name), d.AlertMessage())
	}
	m.AddRule(r)
	m.log.Info().Str("rule", name).Msg("built-in rule restored")
	return true
}

func (m *Monitor) limitsFor(name string) vitals.Bounds {
	switch name {
	case vitals.TemperatureName:
		return m.limits.Temperature
	case vitals.PulseRateName:
		return m.limits.PulseRate
	default:
		return m.limits.SpO2
	}
}

// rebuild swaps every rule named name for a RangeRule with bounds b,
// keeping its position and alert message.
func (m *Monitor) rebuild(name string, b vitals.Bounds) {
	for i, r := range m.rules {
		if r.Name() != name {
			continue
		}
		m.rules[i] = boundedRule(name, b, r.AlertMessage())
		m.log.Info().Str("rule", name).Msg("rule bounds updated")
	}
}

func boundedRule(name string, b vitals.Bounds, msg string) *vitals.RangeRule {
	switch {
	case b.HasMin && b.HasMax:
		return vitals.NewRangeRule(name, b.Min, b.Max, msg)
	case b.HasMin:
		return vitals.NewLowerBoundRule(name, b.Min, msg)
	default:
		return vitals.NewUpperBoundRule(name, b.Max, msg)
	}
}
