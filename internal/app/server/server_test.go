package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitals-monitor/internal/config"
	"vitals-monitor/internal/engine"
	"vitals-monitor/internal/notify"
	"vitals-monitor/internal/vitals"
)

type MockStore struct {
	defs []vitals.Def
	err  error
}

func (m *MockStore) LoadRuleDefs(ctx context.Context) ([]vitals.Def, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.defs, nil
}

func f(v float64) *float64 { return &v }

func ruleNames(l *engine.Locked) []string {
	var out []string
	l.With(func(m *engine.Monitor) {
		for _, r := range m.Rules() {
			out = append(out, r.Name())
		}
	})
	return out
}

func newLocked(alerts *[]string, opts ...engine.Option) *engine.Locked {
	opts = append(opts, engine.WithNotifier(notify.Func(func(msg string) {
		*alerts = append(*alerts, msg)
	})))
	return engine.NewLocked(engine.New(opts...))
}

func newRegistry(mon *engine.Locked) *ruleRegistry {
	return newRuleRegistry(mon, sourcePostgres, sourceFile)
}

func TestRuleRegistry_Refresh(t *testing.T) {
	tests := []struct {
		name      string
		store     *MockStore
		wantErr   bool
		wantRules []string
	}{
		{
			name:      "adds custom rules after built-ins",
			store:     &MockStore{defs: []vitals.Def{{Name: "Respiration", Min: f(12), Max: f(20)}}},
			wantRules: []string{"Temperature", "Pulse Rate", "SpO2", "Respiration"},
		},
		{
			name:      "override replaces built-in",
			store:     &MockStore{defs: []vitals.Def{{Name: "Temperature", Min: f(96), Max: f(100)}}},
			wantRules: []string{"Pulse Rate", "SpO2", "Temperature"},
		},
		{
			name:      "load error leaves rules untouched",
			store:     &MockStore{err: context.DeadlineExceeded},
			wantErr:   true,
			wantRules: []string{"Temperature", "Pulse Rate", "SpO2"},
		},
		{
			name:      "invalid definition leaves rules untouched",
			store:     &MockStore{defs: []vitals.Def{{Name: "Respiration"}}},
			wantErr:   true,
			wantRules: []string{"Temperature", "Pulse Rate", "SpO2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var alerts []string
			mon := newLocked(&alerts)
			reg := newRegistry(mon)

			err := reg.Refresh(context.Background(), sourcePostgres, tt.store)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantRules, ruleNames(mon))
		})
	}
}

func TestRuleRegistry_ReplacesPreviousSet(t *testing.T) {
	var alerts []string
	mon := newLocked(&alerts)
	reg := newRegistry(mon)

	require.NoError(t, reg.Apply(sourceFile, []vitals.Def{
		{Name: "Respiration", Min: f(12), Max: f(20)},
		{Name: "Temperature", Min: f(96), Max: f(100), Message: "Temperature outside ward limits!"},
	}))
	assert.False(t, mon.EvaluateSnapshot(engine.Vitals(95.5, 75, 95)).OK)
	assert.Equal(t, []string{"Temperature outside ward limits!"}, alerts)

	require.NoError(t, reg.Apply(sourceFile, []vitals.Def{{Name: "Glucose", Max: f(180)}}))
	assert.Equal(t, []string{"Pulse Rate", "SpO2", "Glucose", "Temperature"}, ruleNames(mon))

	alerts = nil
	assert.True(t, mon.EvaluateSnapshot(engine.Vitals(95.5, 75, 95)).OK)
	assert.Empty(t, alerts)

	require.NoError(t, reg.Apply(sourceFile, nil))
	assert.Equal(t, []string{"Pulse Rate", "SpO2", "Temperature"}, ruleNames(mon))
	assert.Empty(t, reg.CustomRules())
}

func TestRuleRegistry_DuplicateNames(t *testing.T) {
	var alerts []string
	mon := newLocked(&alerts)
	reg := newRegistry(mon)

	defs := []vitals.Def{
		{Name: "Respiration", Min: f(12)},
		{Name: "Respiration", Max: f(20)},
	}
	require.NoError(t, reg.Apply(sourceFile, defs))
	assert.Equal(t, []string{"Temperature", "Pulse Rate", "SpO2", "Respiration", "Respiration"}, ruleNames(mon))
	assert.Equal(t, map[string][]vitals.Def{sourceFile: defs}, reg.CustomRules())
}

func TestRuleRegistry_SourcesDoNotClobberEachOther(t *testing.T) {
	var alerts []string
	mon := newLocked(&alerts)
	reg := newRegistry(mon)

	require.NoError(t, reg.Apply(sourceFile, []vitals.Def{{Name: "Respiration", Min: f(12), Max: f(20)}}))
	require.NoError(t, reg.Apply(sourcePostgres, []vitals.Def{{Name: "Glucose", Max: f(180)}}))
	assert.Equal(t, []string{"Temperature", "Pulse Rate", "SpO2", "Glucose", "Respiration"}, ruleNames(mon))

	// reapplying one source keeps the other's rules
	require.NoError(t, reg.Apply(sourcePostgres, []vitals.Def{{Name: "Lactate", Max: f(2)}}))
	assert.Equal(t, []string{"Temperature", "Pulse Rate", "SpO2", "Lactate", "Respiration"}, ruleNames(mon))

	require.NoError(t, reg.Apply(sourceFile, nil))
	assert.Equal(t, []string{"Temperature", "Pulse Rate", "SpO2", "Lactate"}, ruleNames(mon))
}

func TestRuleRegistry_OverrideSharedAcrossSources(t *testing.T) {
	var alerts []string
	mon := newLocked(&alerts)
	reg := newRegistry(mon)

	require.NoError(t, reg.Apply(sourceFile, []vitals.Def{{Name: "Temperature", Min: f(97), Max: f(99), Message: "file limits"}}))
	require.NoError(t, reg.Apply(sourcePostgres, []vitals.Def{{Name: "Temperature", Min: f(96), Max: f(100), Message: "ward limits"}}))
	assert.Equal(t, []string{"Pulse Rate", "SpO2", "Temperature"}, ruleNames(mon))

	// the higher-ranked source wins
	assert.False(t, mon.EvaluateSnapshot(engine.Vitals(95.5, 75, 95)).OK)
	assert.Equal(t, []string{"ward limits"}, alerts)

	// dropping it uncovers the other source's override, not the built-in
	alerts = nil
	require.NoError(t, reg.Apply(sourcePostgres, nil))
	assert.Equal(t, []string{"Pulse Rate", "SpO2", "Temperature"}, ruleNames(mon))
	assert.False(t, mon.EvaluateSnapshot(engine.Vitals(96.5, 75, 95)).OK)
	assert.Equal(t, []string{"file limits"}, alerts)

	// and dropping that restores the built-in exactly once
	alerts = nil
	require.NoError(t, reg.Apply(sourceFile, nil))
	assert.Equal(t, []string{"Pulse Rate", "SpO2", "Temperature"}, ruleNames(mon))
	assert.True(t, mon.EvaluateSnapshot(engine.Vitals(96.5, 75, 95)).OK)
	assert.Empty(t, alerts)
}

func TestRuleRegistry_RestoredBuiltinUsesLiveLimits(t *testing.T) {
	var alerts []string
	mon := newLocked(&alerts, engine.WithLiveLimits())
	reg := newRegistry(mon)

	require.NoError(t, reg.Apply(sourceFile, []vitals.Def{{Name: "Temperature", Min: f(90), Max: f(110)}}))
	mon.With(func(m *engine.Monitor) { m.SetTemperatureLimits(96, 100) })
	require.NoError(t, reg.Apply(sourceFile, nil))

	assert.False(t, mon.EvaluateSnapshot(engine.Vitals(95.5, 75, 95)).OK)
	assert.Equal(t, []string{"Temperature is critical!"}, alerts)
}

func TestRuleRegistry_UnknownSource(t *testing.T) {
	var alerts []string
	reg := newRegistry(newLocked(&alerts))
	assert.Error(t, reg.Apply("s3", []vitals.Def{{Name: "Glucose", Max: f(180)}}))
}

func TestBuildNotifier(t *testing.T) {
	var cfg config.Config
	cfg.Monitor.Notifier = "log"
	assert.IsType(t, &notify.Log{}, buildNotifier(cfg))

	cfg.Monitor.Notifier = "console"
	assert.IsType(t, &notify.Console{}, buildNotifier(cfg))
}

func TestBuildMonitor_LiveLimits(t *testing.T) {
	var cfg config.Config
	cfg.Monitor.LiveLimits = true

	m := buildMonitor(cfg)
	var alerts []string
	m.SetAlertCallback(func(msg string) { alerts = append(alerts, msg) })

	m.SetTemperatureLimits(96, 100)
	assert.False(t, m.Evaluate(95, 75, 95))
	assert.Equal(t, []string{"Temperature is critical!"}, alerts)

	cfg.Monitor.LiveLimits = false
	m = buildMonitor(cfg)
	m.SetAlertCallback(func(string) {})
	m.SetTemperatureLimits(96, 100)
	assert.True(t, m.Evaluate(95, 75, 95))
}
