package bloodwork

import (
	"regexp"
	"strconv"
	"strings"
)

// Values maps parameter keys to the numeric values found in a report.
type Values map[string]float64

// PatientInfo carries the demographics recovered from the report header.
type PatientInfo struct {
	Name     string `json:"name,omitempty"`
	Gender   Gender `json:"gender,omitempty"`
	Age      int    `json:"age,omitempty"`
	TestDate string `json:"testDate,omitempty"`
}

// valuePatterns lists the extraction patterns per parameter, most specific
// first. Lab reports vary a lot in layout, so each parameter carries a few
// fallbacks ranging from "name (abbrev) value" down to a bare abbreviation
// followed by a number.
var valuePatterns = map[string][]*regexp.Regexp{
	"hemoglobin": compileAll(
		`(?i)hemoglobin\s*\(hb\)[\s:]*(\d+\.?\d*)`,
		`(?i)haemoglobin\s*\(hb\)[\s:]*(\d+\.?\d*)`,
		`(?i)h[ae]moglobin[\s:]*(\d+\.?\d*)`,
		`(?i)\bhb\b[\s:]*(\d+\.?\d*)`,
	),
	"white_blood_cells": compileAll(
		`(?i)total\s+wbc\s+count[\s:]*(\d+)`,
		`(?i)white\s+blood\s+cells?[\s:]*(\d+\.?\d*)`,
		`(?i)\bwbc\b[\s:]*(\d+\.?\d*)`,
		`(?i)total\s+leu[ck]ocyte\s+count[\s:]*(\d+)`,
	),
	"red_blood_cells": compileAll(
		`(?i)total\s+rbc\s+count[\s:]*(\d+\.?\d*)`,
		`(?i)red\s+blood\s+cells?[\s:]*(\d+\.?\d*)`,
		`(?i)\brbc\b\s+count[\s:]*(\d+\.?\d*)`,
	),
	"platelets": compileAll(
		`(?i)platelet\s+count[\s:]*(\d+)`,
		`(?i)platelets?[\s:]*(\d+)`,
		`(?i)\bplt\b[\s:]*(\d+)`,
	),
	"hematocrit": compileAll(
		`(?i)packed\s+cell\s+volume\s*\(pcv\)[\s:]*(\d+\.?\d*)`,
		`(?i)h[ae]matocrit[\s:]*(\d+\.?\d*)`,
		`(?i)\bpcv\b[\s:]*(\d+\.?\d*)`,
		`(?i)\bhct\b[\s:]*(\d+\.?\d*)`,
	),
	"mcv": compileAll(
		`(?i)mean\s+corpuscular\s+volume\s*\(mcv\)[\s:]*(\d+\.?\d*)`,
		`(?i)\bmcv\b[\s:]*(\d+\.?\d*)`,
	),
	"mch": compileAll(
		`(?i)\bmch\b[\s:]*(\d+\.?\d*)`,
	),
	"mchc": compileAll(
		`(?i)\bmchc\b[\s:]*(\d+\.?\d*)`,
	),
	"rdw": compileAll(
		`(?i)\brdw\b[\s:]*(\d+\.?\d*)`,
	),
	"neutrophils": compileAll(
		`(?i)neutrophils?[\s:]*(\d+\.?\d*)`,
	),
	"lymphocytes": compileAll(
		`(?i)lymphocytes?[\s:]*(\d+\.?\d*)`,
	),
	"eosinophils": compileAll(
		`(?i)eosinophils?[\s:]*(\d+\.?\d*)`,
	),
	"monocytes": compileAll(
		`(?i)monocytes?[\s:]*(\d+\.?\d*)`,
	),
	"basophils": compileAll(
		`(?i)basophils?[\s:]*(\d+\.?\d*)`,
	),
	"glucose": compileAll(
		`(?i)fasting\s+(?:blood\s+)?glucose[\s:]*(\d+\.?\d*)`,
		`(?i)glucose[\s:]*(\d+\.?\d*)`,
		`(?i)blood\s+sugar[\s:]*(\d+\.?\d*)`,
	),
	"creatinine": compileAll(
		`(?i)creatinine[\s:]*(\d+\.?\d*)`,
	),
	"urea": compileAll(
		`(?i)blood\s+urea\s+nitrogen[\s:]*(\d+\.?\d*)`,
		`(?i)\burea\b[\s:]*(\d+\.?\d*)`,
		`(?i)\bbun\b[\s:]*(\d+\.?\d*)`,
	),
	"bilirubin": compileAll(
		`(?i)total\s+bilirubin[\s:]*(\d+\.?\d*)`,
		`(?i)bilirubin[\s:]*(\d+\.?\d*)`,
	),
	"cholesterol": compileAll(
		`(?i)total\s+cholesterol[\s:]*(\d+\.?\d*)`,
		`(?i)cholesterol[\s:]*(\d+\.?\d*)`,
	),
	"hdl": compileAll(
		`(?i)hdl(?:\s+cholesterol)?[\s:]*(\d+\.?\d*)`,
	),
	"ldl": compileAll(
		`(?i)ldl(?:\s+cholesterol)?[\s:]*(\d+\.?\d*)`,
	),
	"triglycerides": compileAll(
		`(?i)triglycerides?[\s:]*(\d+\.?\d*)`,
	),
	"alt": compileAll(
		`(?i)\balt\b[\s:]*(\d+\.?\d*)`,
		`(?i)\bsgpt\b[\s:]*(\d+\.?\d*)`,
		`(?i)alanine\s+(?:amino)?transferase[\s:]*(\d+\.?\d*)`,
	),
	"ast": compileAll(
		`(?i)\bast\b[\s:]*(\d+\.?\d*)`,
		`(?i)\bsgot\b[\s:]*(\d+\.?\d*)`,
		`(?i)aspartate\s+(?:amino)?transferase[\s:]*(\d+\.?\d*)`,
	),
	"alkaline_phosphatase": compileAll(
		`(?i)alkaline\s+phosphatase[\s:]*(\d+\.?\d*)`,
		`(?i)\balp\b[\s:]*(\d+\.?\d*)`,
	),
	"hba1c": compileAll(
		`(?i)hba1c[\s:]*(\d+\.?\d*)`,
		`(?i)glycated\s+h[ae]moglobin[\s:]*(\d+\.?\d*)`,
	),
	"fasting_insulin": compileAll(
		`(?i)fasting\s+insulin[\s:]*(\d+\.?\d*)`,
		`(?i)insulin[\s:]*(\d+\.?\d*)`,
	),
	"troponin": compileAll(
		`(?i)troponin(?:\s*[it])?[\s:]*(\d+\.?\d*)`,
	),
	"ck_mb": compileAll(
		`(?i)ck[\s-]*mb[\s:]*(\d+\.?\d*)`,
		`(?i)creatine\s+kinase[\s-]*mb[\s:]*(\d+\.?\d*)`,
	),
	"tsh": compileAll(
		`(?i)\btsh\b[\s:]*(\d+\.?\d*)`,
		`(?i)thyroid\s+stimulating\s+hormone[\s:]*(\d+\.?\d*)`,
	),
	"t3": compileAll(
		`(?i)\bt3\b[\s:]*(\d+\.?\d*)`,
	),
	"t4": compileAll(
		`(?i)\bt4\b[\s:]*(\d+\.?\d*)`,
	),
	"vitamin_d": compileAll(
		`(?i)vitamin\s*d[\s:]*(\d+\.?\d*)`,
		`(?i)25[\s-]*oh[\s-]*vitamin\s*d[\s:]*(\d+\.?\d*)`,
	),
	"vitamin_b12": compileAll(
		`(?i)vitamin\s*b[\s-]?12[\s:]*(\d+\.?\d*)`,
	),
	"folate": compileAll(
		`(?i)folate[\s:]*(\d+\.?\d*)`,
		`(?i)folic\s+acid[\s:]*(\d+\.?\d*)`,
	),
	"iron": compileAll(
		`(?i)serum\s+iron[\s:]*(\d+\.?\d*)`,
		`(?i)\biron\b[\s:]*(\d+\.?\d*)`,
	),
	"ferritin": compileAll(
		`(?i)ferritin[\s:]*(\d+\.?\d*)`,
	),
	"esr": compileAll(
		`(?i)\besr\b[\s:]*(\d+\.?\d*)`,
		`(?i)erythrocyte\s+sedimentation\s+rate[\s:]*(\d+\.?\d*)`,
	),
	"crp": compileAll(
		`(?i)\bcrp\b[\s:]*(\d+\.?\d*)`,
		`(?i)c[\s-]*reactive\s+protein[\s:]*(\d+\.?\d*)`,
	),
	"sodium": compileAll(
		`(?i)sodium[\s:]*(\d+\.?\d*)`,
		`(?i)\bna\+?\b[\s:]*(\d+\.?\d*)`,
	),
	"potassium": compileAll(
		`(?i)potassium[\s:]*(\d+\.?\d*)`,
		`(?i)\bk\+\b[\s:]*(\d+\.?\d*)`,
	),
	"chloride": compileAll(
		`(?i)chloride[\s:]*(\d+\.?\d*)`,
	),
	"calcium": compileAll(
		`(?i)calcium[\s:]*(\d+\.?\d*)`,
	),
	"magnesium": compileAll(
		`(?i)magnesium[\s:]*(\d+\.?\d*)`,
	),
	"total_protein": compileAll(
		`(?i)total\s+protein[\s:]*(\d+\.?\d*)`,
	),
	"albumin": compileAll(
		`(?i)albumin[\s:]*(\d+\.?\d*)`,
	),
	"globulin": compileAll(
		`(?i)globulin[\s:]*(\d+\.?\d*)`,
	),
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

// ParseValues scans extracted report text and returns every parameter it
// can recognize. For each parameter the first matching pattern wins.
func ParseValues(text string) Values {
	values := make(Values)
	for key, patterns := range valuePatterns {
		for _, re := range patterns {
			m := re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			v, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			values[key] = v
			break
		}
	}
	return values
}

var (
	patientNameRe = regexp.MustCompile(`(?i)(?:patient\s+name|name)[\s:]+([A-Za-z][A-Za-z.\s]{1,60}?)(?:\n|$|\s{2,})`)
	genderRe      = regexp.MustCompile(`(?i)(?:gender|sex)[\s:]+(male|female|m\b|f\b)`)
	ageRe         = regexp.MustCompile(`(?i)age[\s:]+(\d{1,3})`)
	testDateRe    = regexp.MustCompile(`(?i)(?:test\s+date|report\s+date|collected\s+on|date)[\s:]+(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}|\d{4}[/\-.]\d{1,2}[/\-.]\d{1,2})`)
)

// ParsePatientInfo pulls patient demographics out of the report header.
// Missing fields stay zero-valued.
func ParsePatientInfo(text string) PatientInfo {
	var info PatientInfo

	if m := patientNameRe.FindStringSubmatch(text); m != nil {
		info.Name = strings.TrimSpace(m[1])
	}
	if m := genderRe.FindStringSubmatch(text); m != nil {
		switch strings.ToLower(strings.TrimSpace(m[1])) {
		case "male", "m":
			info.Gender = GenderMale
		case "female", "f":
			info.Gender = GenderFemale
		}
	}
	if m := ageRe.FindStringSubmatch(text); m != nil {
		if age, err := strconv.Atoi(m[1]); err == nil && age > 0 && age < 130 {
			info.Age = age
		}
	}
	if m := testDateRe.FindStringSubmatch(text); m != nil {
		info.TestDate = strings.TrimSpace(m[1])
	}
	return info
}

func titleize(key string) string {
	parts := strings.Split(key, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

func upperKey(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, "_", ""))
}
