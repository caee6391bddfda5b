package vitals

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults_Ranges(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	tests := []struct {
		name  string
		rule  Rule
		value float32
		want  bool
	}{
		{"temperature normal", Temperature(), 98.6, true},
		{"temperature lower bound", Temperature(), 95.0, true},
		{"temperature upper bound", Temperature(), 102.0, true},
		{"temperature low", Temperature(), 94.9, false},
		{"temperature high", Temperature(), 103.0, false},
		{"pulse lower bound", PulseRate(), 60.0, true},
		{"pulse upper bound", PulseRate(), 100.0, true},
		{"pulse low", PulseRate(), 59.0, false},
		{"pulse high", PulseRate(), 110.0, false},
		{"spo2 lower bound", SpO2(), 90.0, true},
		{"spo2 low", SpO2(), 85.0, false},
		{"spo2 has no upper bound", SpO2(), 150.0, true},
		{"spo2 +inf", SpO2(), inf, true},
		{"temperature +inf", Temperature(), inf, false},
		{"temperature NaN", Temperature(), nan, false},
		{"spo2 NaN", SpO2(), nan, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule.InRange(tt.value))
		})
	}
}

func TestDefaults_NamesAndMessages(t *testing.T) {
	rules := Defaults()
	require.Len(t, rules, 3)

	assert.Equal(t, TemperatureName, rules[0].Name())
	assert.Equal(t, "Temperature is critical!", rules[0].AlertMessage())
	assert.Equal(t, PulseRateName, rules[1].Name())
	assert.Equal(t, "Pulse Rate is out of range!", rules[1].AlertMessage())
	assert.Equal(t, SpO2Name, rules[2].Name())
	assert.Equal(t, "Oxygen Saturation out of range!", rules[2].AlertMessage())

	_, ok := Default("Respiration")
	assert.False(t, ok)
	r, ok := Default(PulseRateName)
	require.True(t, ok)
	assert.Equal(t, PulseRateName, r.Name())
}

func TestBounds_OneSided(t *testing.T) {
	upper := NewUpperBoundRule("Glucose", 180, "Glucose too high!")
	assert.True(t, upper.InRange(float32(math.Inf(-1))))
	assert.True(t, upper.InRange(180))
	assert.False(t, upper.InRange(181))

	open := &RangeRule{name: "Open"}
	assert.True(t, open.InRange(1e30))
	assert.False(t, open.InRange(float32(math.NaN())))
}

func TestPredicateRule(t *testing.T) {
	even := NewPredicateRule("Even", "odd value", func(v float32) bool {
		return int(v)%2 == 0
	})
	assert.True(t, even.InRange(4))
	assert.False(t, even.InRange(5))
	assert.False(t, even.InRange(float32(math.NaN())))
	assert.Equal(t, "Even", even.Name())
	assert.Equal(t, "odd value", even.AlertMessage())

	assert.False(t, NewPredicateRule("nil", "x", nil).InRange(1))
}

func TestDef_Rule(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	tests := []struct {
		name    string
		def     Def
		wantErr bool
		check   func(t *testing.T, r *RangeRule)
	}{
		{
			name: "both bounds",
			def:  Def{Name: "Respiration", Min: f(12), Max: f(20), Message: "Respiration abnormal!"},
			check: func(t *testing.T, r *RangeRule) {
				assert.Equal(t, "Respiration abnormal!", r.AlertMessage())
				assert.True(t, r.InRange(12))
				assert.True(t, r.InRange(20))
				assert.False(t, r.InRange(21))
			},
		},
		{
			name: "default message",
			def:  Def{Name: " Glucose ", Max: f(180)},
			check: func(t *testing.T, r *RangeRule) {
				assert.Equal(t, "Glucose", r.Name())
				assert.Equal(t, "Glucose is out of range!", r.AlertMessage())
				assert.False(t, r.Bounds().HasMin)
			},
		},
		{name: "empty name", def: Def{Min: f(1)}, wantErr: true},
		{name: "no bounds", def: Def{Name: "x"}, wantErr: true},
		{name: "inverted", def: Def{Name: "x", Min: f(5), Max: f(1)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := tt.def.Rule()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidDef))
				return
			}
			require.NoError(t, err)
			tt.check(t, r)
		})
	}
}

func TestBuild_StopsOnInvalid(t *testing.T) {
	min := 1.0
	_, err := Build([]Def{{Name: "ok", Min: &min}, {Name: ""}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDef)

	rules, err := Build([]Def{{Name: "ok", Min: &min}})
	require.NoError(t, err)
	assert.Len(t, rules, 1)
}

func TestDescribe(t *testing.T) {
	d := Describe(SpO2())
	assert.Equal(t, SpO2Name, d.Name)
	require.NotNil(t, d.Min)
	assert.Equal(t, 90.0, *d.Min)
	assert.Nil(t, d.Max)

	p := Describe(NewPredicateRule("p", "msg", func(float32) bool { return true }))
	assert.Nil(t, p.Min)
	assert.Nil(t, p.Max)
	assert.Equal(t, "msg", p.Message)
}
