package bloodwork

import (
	"fmt"
	"sort"
	"strings"
)

// Status classifies a value against its reference range.
type Status string

const (
	StatusNormal   Status = "normal"
	StatusLow      Status = "low"
	StatusHigh     Status = "high"
	StatusCritical Status = "critical"
	StatusUnknown  Status = "unknown"
)

type criticalThreshold struct {
	low  *float64
	high *float64
}

func f(v float64) *float64 { return &v }

// criticalValues are thresholds at which a result warrants urgent medical
// attention regardless of how far outside the reference range it sits.
var criticalValues = map[string]criticalThreshold{
	"hemoglobin":        {low: f(7.0), high: f(20.0)},
	"white_blood_cells": {low: f(2000), high: f(30000)},
	"platelets":         {low: f(50000), high: f(1000000)},
	"glucose":           {low: f(50), high: f(400)},
	"potassium":         {low: f(2.5), high: f(6.5)},
	"sodium":            {low: f(120), high: f(160)},
	"creatinine":        {high: f(4.0)},
	"troponin":          {high: f(0.4)},
}

// CriticalLevel reports whether a value crosses a critical threshold and in
// which direction.
func CriticalLevel(key string, value float64) (Status, bool) {
	t, ok := criticalValues[key]
	if !ok {
		return StatusUnknown, false
	}
	if t.low != nil && value <= *t.low {
		return StatusLow, true
	}
	if t.high != nil && value >= *t.high {
		return StatusHigh, true
	}
	return StatusUnknown, false
}

// Classify places a value relative to its reference range, promoting to
// critical when a critical threshold is crossed.
func Classify(key string, value float64, gender Gender) Status {
	if _, critical := CriticalLevel(key, value); critical {
		return StatusCritical
	}
	rng, ok := NormalRange(key, gender)
	if !ok {
		return StatusUnknown
	}
	switch {
	case value < rng.Min:
		return StatusLow
	case value > rng.Max:
		return StatusHigh
	default:
		return StatusNormal
	}
}

// plausibleRanges bound values that could plausibly come from a human
// sample. Values outside are treated as extraction noise and dropped.
var plausibleRanges = map[string]Range{
	"hemoglobin":        {Min: 1, Max: 30},
	"white_blood_cells": {Min: 100, Max: 200000},
	"red_blood_cells":   {Min: 0.5, Max: 15},
	"platelets":         {Min: 1000, Max: 3000000},
	"hematocrit":        {Min: 5, Max: 80},
	"glucose":           {Min: 10, Max: 1500},
	"creatinine":        {Min: 0.05, Max: 30},
	"cholesterol":       {Min: 20, Max: 1000},
	"tsh":               {Min: 0.001, Max: 200},
	"sodium":            {Min: 80, Max: 220},
	"potassium":         {Min: 0.5, Max: 15},
}

// Validate drops values that cannot plausibly be real measurements and
// returns a warning per dropped parameter.
func Validate(values Values) (Values, []string) {
	clean := make(Values, len(values))
	var warnings []string
	for key, v := range values {
		if rng, ok := plausibleRanges[key]; ok && !rng.Contains(v) {
			warnings = append(warnings, fmt.Sprintf(
				"%s value %g is outside the plausible range %g-%g and was ignored",
				ParameterInfo(key).Name, v, rng.Min, rng.Max))
			continue
		}
		clean[key] = v
	}
	sort.Strings(warnings)
	return clean, warnings
}

// Finding is one classified parameter result.
type Finding struct {
	Key    string  `json:"key"`
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
	Status Status  `json:"status"`
	Min    float64 `json:"rangeMin"`
	Max    float64 `json:"rangeMax"`
}

// Assessment summarizes a full panel against reference ranges.
type Assessment struct {
	Findings      []Finding `json:"findings"`
	NormalCount   int       `json:"normalCount"`
	AbnormalCount int       `json:"abnormalCount"`
	CriticalCount int       `json:"criticalCount"`
	Urgency       string    `json:"urgency"`
	Emergencies   []string  `json:"emergencies,omitempty"`
}

// Assess classifies every parsed value and derives an overall urgency.
func Assess(values Values, gender Gender) Assessment {
	var a Assessment
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		v := values[key]
		info := ParameterInfo(key)
		rng, _ := NormalRange(key, gender)
		status := Classify(key, v, gender)
		a.Findings = append(a.Findings, Finding{
			Key:    key,
			Name:   info.Name,
			Value:  v,
			Unit:   info.Unit,
			Status: status,
			Min:    rng.Min,
			Max:    rng.Max,
		})
		switch status {
		case StatusNormal:
			a.NormalCount++
		case StatusLow, StatusHigh:
			a.AbnormalCount++
		case StatusCritical:
			a.CriticalCount++
			a.AbnormalCount++
		}
	}

	a.Emergencies = EmergencyIndicators(values)
	switch {
	case a.CriticalCount > 0 || len(a.Emergencies) > 0:
		a.Urgency = "urgent"
	case a.AbnormalCount > 2:
		a.Urgency = "elevated"
	case a.AbnormalCount > 0:
		a.Urgency = "routine"
	default:
		a.Urgency = "none"
	}
	return a
}

// EmergencyIndicators flags combinations that call for immediate medical
// attention. These deliberately use conservative cutoffs.
func EmergencyIndicators(values Values) []string {
	var out []string
	if hb, ok := values["hemoglobin"]; ok && hb < 13 {
		out = append(out, "Low hemoglobin may indicate anemia; seek medical evaluation")
	}
	if plt, ok := values["platelets"]; ok && plt <= 150000 {
		out = append(out, "Low platelet count increases bleeding risk; consult a doctor promptly")
	}
	if hct, ok := values["hematocrit"]; ok && hct > 55 {
		out = append(out, "Very high hematocrit can thicken blood; seek medical evaluation")
	}
	if glu, ok := values["glucose"]; ok && glu >= 400 {
		out = append(out, "Severely elevated glucose requires urgent medical attention")
	}
	if k, ok := values["potassium"]; ok && (k <= 2.5 || k >= 6.5) {
		out = append(out, "Critically abnormal potassium can affect heart rhythm; seek emergency care")
	}
	return out
}

// Tips returns lifestyle suggestions keyed off the abnormal findings.
func Tips(values Values, gender Gender) []string {
	var tips []string
	add := func(t string) { tips = append(tips, t) }

	if hb, ok := values["hemoglobin"]; ok {
		if rng, has := NormalRange("hemoglobin", gender); has && hb < rng.Min {
			add("Include iron-rich foods such as leafy greens, lentils, and lean meat")
			add("Pair iron-rich meals with vitamin C sources to improve absorption")
		}
	}
	if glu, ok := values["glucose"]; ok && glu > 100 {
		add("Reduce refined sugar intake and favor whole grains")
		add("Regular aerobic exercise helps regulate blood glucose")
	}
	if chol, ok := values["cholesterol"]; ok && chol > 200 {
		add("Limit saturated fats and include more fiber in your diet")
	}
	if vd, ok := values["vitamin_d"]; ok && vd < 20 {
		add("Consider safe sun exposure and vitamin D rich foods like fatty fish")
	}
	if b12, ok := values["vitamin_b12"]; ok && b12 < 160 {
		add("Include B12 sources such as eggs, dairy, and fortified cereals")
	}
	if len(tips) == 0 {
		add("Maintain a balanced diet, regular exercise, and adequate sleep")
		add("Stay hydrated and schedule routine checkups")
	}
	return tips
}

// FormatForPrompt renders parsed values with their reference ranges and
// status markers as a block suitable for inclusion in an LLM prompt.
func FormatForPrompt(values Values, gender Gender) string {
	if len(values) == 0 {
		return "No structured blood values were recognized in the report text."
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		v := values[key]
		info := ParameterInfo(key)
		status := Classify(key, v, gender)
		marker := strings.ToUpper(string(status))
		if rng, ok := NormalRange(key, gender); ok {
			fmt.Fprintf(&b, "- %s (%s): %s %s (Normal: %s-%s %s) [%s]\n",
				info.Name, info.Abbreviation, trimFloat(v), info.Unit,
				trimFloat(rng.Min), trimFloat(rng.Max), info.Unit, marker)
		} else {
			fmt.Fprintf(&b, "- %s (%s): %s %s [%s]\n",
				info.Name, info.Abbreviation, trimFloat(v), info.Unit, marker)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatPatient renders patient demographics for prompt context.
func FormatPatient(info PatientInfo) string {
	var parts []string
	if info.Name != "" {
		parts = append(parts, "Name: "+info.Name)
	}
	if info.Gender != GenderUnknown {
		parts = append(parts, "Gender: "+string(info.Gender))
	}
	if info.Age > 0 {
		parts = append(parts, fmt.Sprintf("Age: %d", info.Age))
	}
	if info.TestDate != "" {
		parts = append(parts, "Test date: "+info.TestDate)
	}
	if len(parts) == 0 {
		return "No patient details were found in the report."
	}
	return strings.Join(parts, ", ")
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
