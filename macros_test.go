package main

import (
	"math"
	"testing"
)

const tol = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < tol
}

// TestScaleMacros_Identity verifies that 100g returns the reference profile
// exactly.
func TestScaleMacros_Identity(t *testing.T) {
	rice := foodRef{Name: "Rice", Calories: 130, Protein: 2.7, Carbs: 28, Fat: 0.3}
	got := scaleMacros(rice, 100)
	want := macroSet{Calories: 130, Protein: 2.7, Carbs: 28, Fat: 0.3}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

// TestScaleMacros_Linearity verifies proportional scaling: double the grams,
// double every macro.
func TestScaleMacros_Linearity(t *testing.T) {
	oats := foodRef{Name: "Oats", Calories: 389, Protein: 17, Carbs: 66, Fat: 6.9}

	g50 := scaleMacros(oats, 50)
	g150 := scaleMacros(oats, 150)

	if !almostEqual(g150.Calories, 3*g50.Calories) ||
		!almostEqual(g150.Protein, 3*g50.Protein) ||
		!almostEqual(g150.Carbs, 3*g50.Carbs) ||
		!almostEqual(g150.Fat, 3*g50.Fat) {
		t.Errorf("150g should be exactly 3x 50g: got %+v vs %+v", g150, g50)
	}
}

// TestScaleMacros_Zero verifies zero grams yields zero macros rather than an
// error or panic.
func TestScaleMacros_Zero(t *testing.T) {
	food := foodRef{Calories: 884, Fat: 100}
	if got := scaleMacros(food, 0); got != (macroSet{}) {
		t.Errorf("expected zero macros for 0g, got %+v", got)
	}
}

// TestScaleMacros_DoesNotMutateReference verifies the food reference is left
// untouched by scaling.
func TestScaleMacros_DoesNotMutateReference(t *testing.T) {
	food := foodRef{Name: "Salmon", Calories: 208, Protein: 20, Fat: 13}
	before := food
	scaleMacros(food, 250)
	if food != before {
		t.Errorf("scaleMacros mutated the reference: %+v -> %+v", before, food)
	}
}

// TestMacroSetAdd verifies component-wise addition.
func TestMacroSetAdd(t *testing.T) {
	a := macroSet{Calories: 100, Protein: 10, Carbs: 5, Fat: 2}
	b := macroSet{Calories: 50, Protein: 1, Carbs: 20, Fat: 0.5}
	got := a.add(b)
	want := macroSet{Calories: 150, Protein: 11, Carbs: 25, Fat: 2.5}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}
