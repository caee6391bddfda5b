package vitals

// Temperature accepts 95.0 through 102.0 degrees Fahrenheit.
func Temperature() *RangeRule {
	return NewRangeRule(TemperatureName, 95.0, 102.0, "Temperature is critical!")
}

// PulseRate accepts 60 through 100 beats per minute.
func PulseRate() *RangeRule {
	return NewRangeRule(PulseRateName, 60.0, 100.0, "Pulse Rate is out of range!")
}

// SpO2 accepts any saturation of at least 90 percent.
func SpO2() *RangeRule {
	return NewLowerBoundRule(SpO2Name, 90.0, "Oxygen Saturation out of range!")
}

// Defaults returns fresh instances of the built-in rules in evaluation order.
func Defaults() []Rule {
	return []Rule{Temperature(), PulseRate(), SpO2()}
}

// Default returns the built-in rule registered under name, if any.
func Default(name string) (*RangeRule, bool) {
	switch name {
	case TemperatureName:
		return Temperature(), true
	case PulseRateName:
		return PulseRate(), true
	case SpO2Name:
		return SpO2(), true
	}
	return nil, false
}
