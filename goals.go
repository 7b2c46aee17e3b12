package main

import (
	"math"
	"strings"
)

// calculateGoals derives daily targets from a biometric profile.
// BMR via Mifflin-St Jeor: sex normalizing to "F" takes the -161 branch, any
// other value the +5 (male) branch — a deliberately permissive default, not a
// validation error. Maintenance = bmr * activityFactor; deficit calories
// apply deficitPct as a plain percentage (20 means 20%). deficitPct is not
// clamped here: the handlers constrain it to a sane UI range, but the math
// stays correct for out-of-range values (a negative deficit is a surplus).
//
// Macro targets come from body weight and the *maintenance* figure, not the
// deficit: protein = weight*2 g, fat = weight*0.8 g, and carbs fill whatever
// maintenance calories remain (floored at zero so a very light, very active
// profile never gets a negative carb target).
//
// All five outputs are rounded to the nearest integer.
func calculateGoals(sex string, age, weightKG, heightCM, activityFactor, deficitPct float64) (maintenanceKcal, deficitKcal, proteinG, carbsG, fatG int) {
	bmr := 10*weightKG + 6.25*heightCM - 5*age + 5
	if strings.EqualFold(strings.TrimSpace(sex), "f") {
		bmr = 10*weightKG + 6.25*heightCM - 5*age - 161
	}

	maintenance := bmr * activityFactor
	deficit := maintenance * (1 - deficitPct/100)

	protein := weightKG * 2.0
	fat := weightKG * 0.8
	remaining := math.Max(maintenance-(protein*4+fat*9), 0)
	carbs := remaining / 4

	return int(math.Round(maintenance)),
		int(math.Round(deficit)),
		int(math.Round(protein)),
		int(math.Round(carbs)),
		int(math.Round(fat))
}
