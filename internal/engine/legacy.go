package engine

// VitalsOK evaluates one set of readings with a throwaway default Monitor,
// for callers that only need a yes/no answer.
func VitalsOK(temperature, pulseRate, spo2 float32) bool {
	return New().Evaluate(temperature, pulseRate, spo2)
}
