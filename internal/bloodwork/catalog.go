// Package bloodwork holds the lab-parameter reference data and the text
// parsing used to turn an extracted blood report into structured values.
package bloodwork

// Gender selects gender-specific reference ranges where they exist.
type Gender string

const (
	GenderUnknown Gender = ""
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
)

// Range is an inclusive reference interval.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v falls inside the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Parameter describes one blood panel parameter.
type Parameter struct {
	Key          string
	Name         string
	Abbreviation string
	Unit         string
	Description  string
	LowCauses    []string
	HighCauses   []string
}

type referenceRange struct {
	any    *Range
	male   *Range
	female *Range
}

func rr(min, max float64) referenceRange {
	return referenceRange{any: &Range{Min: min, Max: max}}
}

func rrGender(maleMin, maleMax, femaleMin, femaleMax float64) referenceRange {
	return referenceRange{
		male:   &Range{Min: maleMin, Max: maleMax},
		female: &Range{Min: femaleMin, Max: femaleMax},
	}
}

// normalRanges lists the reference intervals for each supported parameter.
// Gender-specific entries collapse to the combined min/max when the
// patient's gender is unknown.
var normalRanges = map[string]referenceRange{
	// Basic blood count
	"hemoglobin":        rrGender(13.0, 17.0, 12.0, 15.5), // g/dL
	"white_blood_cells": rr(4000, 11000),                  // /µL
	"red_blood_cells":   rrGender(4.5, 5.5, 4.0, 5.0),     // mill/cumm
	"platelets":         rr(150000, 410000),               // /µL
	"hematocrit":        rrGender(40, 50, 36, 46),         // %

	// Blood indices
	"mcv":  rr(83, 101),     // fL
	"mch":  rr(27, 32),      // pg
	"mchc": rr(32.5, 34.5),  // g/dL
	"rdw":  rr(11.6, 14.0),  // %

	// Differential count (percentages)
	"neutrophils": rr(50, 62),
	"lymphocytes": rr(20, 40),
	"eosinophils": rr(0, 6),
	"monocytes":   rr(0, 10),
	"basophils":   rr(0, 2),

	// Metabolic panel
	"glucose":    rr(70, 100), // mg/dL fasting
	"creatinine": rrGender(0.7, 1.3, 0.6, 1.1),
	"urea":       rr(7, 20),
	"bilirubin":  rr(0.3, 1.2),

	// Lipid panel
	"cholesterol":   rr(0, 200),
	"hdl":           rrGender(40, 999, 50, 999),
	"ldl":           rr(0, 100),
	"triglycerides": rr(0, 150),

	// Liver function
	"alt":                  rrGender(10, 40, 7, 35),
	"ast":                  rrGender(10, 40, 9, 32),
	"alkaline_phosphatase": rr(44, 147),

	// Diabetes markers
	"hba1c":           rr(4.0, 5.6),
	"fasting_insulin": rr(2.6, 24.9),

	// Thyroid function
	"tsh": rr(0.27, 4.20),
	"t3":  rr(80, 200),
	"t4":  rr(5.1, 14.1),

	// Vitamins and minerals
	"vitamin_d":   rr(20, 50),
	"vitamin_b12": rr(160, 950),
	"folate":      rr(2.7, 17.0),
	"iron":        rrGender(65, 176, 50, 170),
	"ferritin":    rrGender(12, 300, 12, 150),

	// Cardiac markers
	"troponin": rr(0, 0.04),
	"ck_mb":    rr(0, 6.3),

	// Inflammatory markers
	"esr": rrGender(0, 22, 0, 29),
	"crp": rr(0, 3.0),

	// Electrolytes
	"sodium":    rr(136, 145),
	"potassium": rr(3.5, 5.1),
	"chloride":  rr(98, 107),
	"calcium":   rr(8.5, 10.2),
	"magnesium": rr(1.7, 2.2),

	// Protein markers
	"total_protein": rr(6.0, 8.3),
	"albumin":       rr(3.5, 5.0),
	"globulin":      rr(2.3, 3.4),
}

// NormalRange returns the reference interval for a parameter. When the
// range is gender-specific and gender is unknown, the combined min/max
// across genders is returned.
func NormalRange(key string, gender Gender) (Range, bool) {
	ref, ok := normalRanges[key]
	if !ok {
		return Range{}, false
	}
	if ref.any != nil {
		return *ref.any, true
	}
	switch gender {
	case GenderMale:
		if ref.male != nil {
			return *ref.male, true
		}
	case GenderFemale:
		if ref.female != nil {
			return *ref.female, true
		}
	}
	if ref.male == nil || ref.female == nil {
		return Range{}, false
	}
	return Range{
		Min: minFloat(ref.male.Min, ref.female.Min),
		Max: maxFloat(ref.male.Max, ref.female.Max),
	}, true
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

var catalog = map[string]Parameter{
	"hemoglobin": {
		Key: "hemoglobin", Name: "Hemoglobin", Abbreviation: "Hb", Unit: "g/dL",
		Description: "Protein in red blood cells that carries oxygen",
		LowCauses:   []string{"Iron deficiency", "Chronic disease", "Blood loss"},
		HighCauses:  []string{"Dehydration", "Smoking", "Living at high altitude"},
	},
	"white_blood_cells": {
		Key: "white_blood_cells", Name: "White Blood Cells", Abbreviation: "WBC", Unit: "/µL",
		Description: "Cells that fight infection and disease",
		LowCauses:   []string{"Viral infections", "Autoimmune disorders", "Medications"},
		HighCauses:  []string{"Bacterial infections", "Stress", "Inflammatory conditions"},
	},
	"red_blood_cells": {
		Key: "red_blood_cells", Name: "Red Blood Cells", Abbreviation: "RBC", Unit: "mill/cumm",
		Description: "Cells that carry oxygen throughout the body",
		LowCauses:   []string{"Anemia", "Blood loss", "Nutritional deficiency"},
		HighCauses:  []string{"Dehydration", "Smoking", "High altitude"},
	},
	"platelets": {
		Key: "platelets", Name: "Platelets", Abbreviation: "PLT", Unit: "/µL",
		Description: "Blood cells that help with clotting",
		LowCauses:   []string{"Bone marrow disorders", "Medications", "Autoimmune conditions"},
		HighCauses:  []string{"Inflammation", "Cancer", "Blood disorders"},
	},
	"hematocrit": {
		Key: "hematocrit", Name: "Hematocrit/Packed Cell Volume", Abbreviation: "HCT/PCV", Unit: "%",
		Description: "Percentage of blood volume made up of red blood cells",
		LowCauses:   []string{"Anemia", "Blood loss", "Overhydration"},
		HighCauses:  []string{"Dehydration", "Polycythemia", "Smoking"},
	},
	"mcv": {
		Key: "mcv", Name: "Mean Corpuscular Volume", Abbreviation: "MCV", Unit: "fL",
		Description: "Average size of red blood cells",
		LowCauses:   []string{"Iron deficiency", "Thalassemia"},
		HighCauses:  []string{"Vitamin B12/folate deficiency", "Alcohol use"},
	},
	"mch": {
		Key: "mch", Name: "Mean Corpuscular Hemoglobin", Abbreviation: "MCH", Unit: "pg",
		Description: "Average amount of hemoglobin in each red blood cell",
		LowCauses:   []string{"Iron deficiency", "Thalassemia"},
		HighCauses:  []string{"Vitamin B12/folate deficiency", "Liver disease"},
	},
	"mchc": {
		Key: "mchc", Name: "Mean Corpuscular Hemoglobin Concentration", Abbreviation: "MCHC", Unit: "g/dL",
		Description: "Concentration of hemoglobin in red blood cells",
		LowCauses:   []string{"Iron deficiency", "Chronic disease"},
		HighCauses:  []string{"Hereditary spherocytosis", "Dehydration"},
	},
	"rdw": {
		Key: "rdw", Name: "Red Cell Distribution Width", Abbreviation: "RDW", Unit: "%",
		Description: "Variation in size of red blood cells",
		LowCauses:   []string{"Usually normal"},
		HighCauses:  []string{"Iron deficiency", "Vitamin deficiencies", "Mixed anemias"},
	},
	"neutrophils": {
		Key: "neutrophils", Name: "Neutrophils", Abbreviation: "NEUT", Unit: "%",
		Description: "Most common type of white blood cell, fights bacterial infections",
		LowCauses:   []string{"Viral infections", "Chemotherapy", "Autoimmune disorders"},
		HighCauses:  []string{"Bacterial infections", "Stress", "Inflammation"},
	},
	"lymphocytes": {
		Key: "lymphocytes", Name: "Lymphocytes", Abbreviation: "LYMPH", Unit: "%",
		Description: "White blood cells that fight viral infections and make antibodies",
		LowCauses:   []string{"Immunodeficiency", "Stress", "Steroids"},
		HighCauses:  []string{"Viral infections", "Leukemia", "Lymphoma"},
	},
	"eosinophils": {
		Key: "eosinophils", Name: "Eosinophils", Abbreviation: "EOS", Unit: "%",
		Description: "White blood cells that fight parasites and allergic reactions",
		LowCauses:   []string{"Usually normal when low"},
		HighCauses:  []string{"Allergies", "Parasitic infections", "Asthma"},
	},
	"monocytes": {
		Key: "monocytes", Name: "Monocytes", Abbreviation: "MONO", Unit: "%",
		Description: "White blood cells that become macrophages and fight infections",
		LowCauses:   []string{"Usually normal when low"},
		HighCauses:  []string{"Chronic infections", "Autoimmune disorders", "Blood cancers"},
	},
	"basophils": {
		Key: "basophils", Name: "Basophils", Abbreviation: "BASO", Unit: "%",
		Description: "White blood cells involved in allergic reactions",
		LowCauses:   []string{"Usually normal when low"},
		HighCauses:  []string{"Allergic reactions", "Blood disorders", "Infections"},
	},
	"glucose": {
		Key: "glucose", Name: "Blood Glucose", Abbreviation: "GLU", Unit: "mg/dL",
		Description: "Amount of sugar in blood",
		LowCauses:   []string{"Medication side effects", "Excessive exercise", "Poor nutrition"},
		HighCauses:  []string{"Diabetes", "Stress", "Certain medications"},
	},
	"cholesterol": {
		Key: "cholesterol", Name: "Total Cholesterol", Abbreviation: "CHOL", Unit: "mg/dL",
		Description: "Total amount of cholesterol in blood",
		LowCauses:   []string{"Malnutrition", "Liver disease", "Hyperthyroidism"},
		HighCauses:  []string{"Poor diet", "Genetics", "Sedentary lifestyle"},
	},
}

// ParameterInfo returns catalog metadata for a parameter key. Unknown keys
// get a generic placeholder so callers can always render something.
func ParameterInfo(key string) Parameter {
	if p, ok := catalog[key]; ok {
		return p
	}
	return Parameter{
		Key:          key,
		Name:         titleize(key),
		Abbreviation: upperKey(key),
		Unit:         "Various",
		Description:  "Blood parameter",
		LowCauses:    []string{"Various medical conditions"},
		HighCauses:   []string{"Various medical conditions"},
	}
}
