package bloodwork

// conversionFactors maps a parameter to the factor that converts its
// conventional unit into SI units.
var conversionFactors = map[string]struct {
	siUnit string
	factor float64
}{
	"glucose":       {siUnit: "mmol/L", factor: 0.0555}, // mg/dL -> mmol/L
	"cholesterol":   {siUnit: "mmol/L", factor: 0.0259},
	"hdl":           {siUnit: "mmol/L", factor: 0.0259},
	"ldl":           {siUnit: "mmol/L", factor: 0.0259},
	"triglycerides": {siUnit: "mmol/L", factor: 0.0113},
	"creatinine":    {siUnit: "µmol/L", factor: 88.4},
	"bilirubin":     {siUnit: "µmol/L", factor: 17.1},
	"urea":          {siUnit: "mmol/L", factor: 0.357},
	"vitamin_d":     {siUnit: "nmol/L", factor: 2.496},
}

// ToSI converts a value from its conventional unit to SI. The second return
// is the SI unit name; ok is false when no conversion is defined.
func ToSI(key string, value float64) (float64, string, bool) {
	c, ok := conversionFactors[key]
	if !ok {
		return 0, "", false
	}
	return value * c.factor, c.siUnit, true
}
