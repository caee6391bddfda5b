package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vitals-monitor/internal/engine"
	"vitals-monitor/internal/vitals"
)

const maxBodyBytes = 64 << 10

// CustomRules lists the custom rule definitions held per source.
type CustomRules interface {
	CustomRules() map[string][]vitals.Def
}

type VitalsHandler struct {
	Mon    *engine.Locked
	Custom CustomRules
}

// NewVitalsHandler serves mon. custom may be nil when no rule sources are
// configured.
func NewVitalsHandler(mon *engine.Locked, custom CustomRules) *VitalsHandler {
	return &VitalsHandler{Mon: mon, Custom: custom}
}

// EvaluateRequest is one snapshot. Omitted vitals are not evaluated; Extra
// carries values for custom rules keyed by rule name.
type EvaluateRequest struct {
	Temperature *float32           `json:"temperature"`
	PulseRate   *float32           `json:"pulse_rate"`
	SpO2        *float32           `json:"spo2"`
	Extra       map[string]float32 `json:"extra"`
}

func (r EvaluateRequest) Snapshot() engine.Snapshot {
	snap := engine.Snapshot{}
	for name, v := range r.Extra {
		snap[name] = v
	}
	if r.Temperature != nil {
		snap[vitals.TemperatureName] = *r.Temperature
	}
	if r.PulseRate != nil {
		snap[vitals.PulseRateName] = *r.PulseRate
	}
	if r.SpO2 != nil {
		snap[vitals.SpO2Name] = *r.SpO2
	}
	return snap
}

// LimitsRequest carries new bounds for one vital sign. SpO2 only takes min.
type LimitsRequest struct {
	Min *float32 `json:"min"`
	Max *float32 `json:"max"`
}

// limitSetter binds a vital sign to its Monitor setter.
type limitSetter struct {
	set func(m *engine.Monitor, min, max float32)
	// lowerOnly vitals ignore max.
	lowerOnly bool
}

var limitSetters = map[string]limitSetter{
	"temperature": {set: (*engine.Monitor).SetTemperatureLimits},
	"pulse-rate":  {set: (*engine.Monitor).SetPulseRateLimits},
	"spo2":        {set: (*engine.Monitor).SetSpO2Limits, lowerOnly: true},
}

var (
	errMissingMin = errors.New("min is required")
	errMissingMax = errors.New("max is required")
	errInverted   = errors.New("min must not exceed max")
)

func (s limitSetter) check(req LimitsRequest) (min, max float32, err error) {
	if req.Min == nil {
		return 0, 0, errMissingMin
	}
	if s.lowerOnly {
		return *req.Min, 0, nil
	}
	if req.Max == nil {
		return 0, 0, errMissingMax
	}
	if *req.Min > *req.Max {
		return 0, 0, errInverted
	}
	return *req.Min, *req.Max, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data after JSON body")
	}
	return nil
}

func (h *VitalsHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := decode(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, h.Mon.EvaluateSnapshot(req.Snapshot()))
}

func (h *VitalsHandler) Rules(w http.ResponseWriter, _ *http.Request) {
	var defs []vitals.Def
	h.Mon.With(func(m *engine.Monitor) {
		for _, rule := range m.Rules() {
			defs = append(defs, vitals.Describe(rule))
		}
	})
	if defs == nil {
		defs = []vitals.Def{}
	}
	writeJSON(w, http.StatusOK, defs)
}

func (h *VitalsHandler) Limits(w http.ResponseWriter, _ *http.Request) {
	var lim engine.Limits
	h.Mon.With(func(m *engine.Monitor) { lim = m.Limits() })
	writeJSON(w, http.StatusOK, lim)
}

func (h *VitalsHandler) CustomRules(w http.ResponseWriter, _ *http.Request) {
	defs := map[string][]vitals.Def{}
	if h.Custom != nil {
		defs = h.Custom.CustomRules()
	}
	writeJSON(w, http.StatusOK, defs)
}

func (h *VitalsHandler) SetLimits(w http.ResponseWriter, r *http.Request) {
	setter, ok := limitSetters[chi.URLParam(r, "vital")]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown vital sign"})
		return
	}

	var req LimitsRequest
	if err := decode(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	min, max, err := setter.check(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	var lim engine.Limits
	h.Mon.With(func(m *engine.Monitor) {
		setter.set(m, min, max)
		lim = m.Limits()
	})
	writeJSON(w, http.StatusOK, lim)
}
