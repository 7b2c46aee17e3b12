package main

// macroSet is one set of macro totals: calories plus protein/carbs/fat grams.
// Values are unrounded floats — rounding is a presentation concern.
type macroSet struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// add returns the component-wise sum of two macro sets.
func (m macroSet) add(o macroSet) macroSet {
	return macroSet{
		Calories: m.Calories + o.Calories,
		Protein:  m.Protein + o.Protein,
		Carbs:    m.Carbs + o.Carbs,
		Fat:      m.Fat + o.Fat,
	}
}

// scaleMacros scales a food's per-100g profile to an arbitrary gram quantity.
// Pure and unrounded; never mutates the reference. Callers enforce grams > 0
// before logging, but the function itself just scales proportionally, so 0 or
// negative input yields a zero or negative result rather than a panic.
func scaleMacros(f foodRef, grams float64) macroSet {
	factor := grams / 100.0
	return macroSet{
		Calories: f.Calories * factor,
		Protein:  f.Protein * factor,
		Carbs:    f.Carbs * factor,
		Fat:      f.Fat * factor,
	}
}
