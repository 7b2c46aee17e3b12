package main

import (
	"sort"
	"strings"
	"time"
)

/* ─── Domain structs ─────────────────────────────────────────────────── */

// user maps to the users table. AuthToken and Password are hidden from JSON responses.
type user struct {
	ID        int        `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	AuthToken string     `json:"-" db:"auth_token"`
	Password  string     `json:"-" db:"password"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// foodRef is a named nutrition profile. All four macro fields are per 100
// grams — scaling never mutates the reference.
type foodRef struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// logEntry is one recorded consumption event. The macro fields are a snapshot
// computed from grams and the food reference at creation (or last edit) time;
// they are immutable history and are not recomputed when the catalog changes.
type logEntry struct {
	ID        int64   `json:"id"`
	UserID    string  `json:"user_id"`
	EntryDate string  `json:"entry_date"`
	Meal      string  `json:"meal"`
	Name      string  `json:"name"`
	Grams     float64 `json:"grams"`
	Calories  float64 `json:"calories"`
	Protein   float64 `json:"protein"`
	Carbs     float64 `json:"carbs"`
	Fat       float64 `json:"fat"`
}

// macros returns the entry's snapshot as a macroSet.
func (e logEntry) macros() macroSet {
	return macroSet{Calories: e.Calories, Protein: e.Protein, Carbs: e.Carbs, Fat: e.Fat}
}

// dailyTotal is one day's aggregate in a rollup. Derived on every read,
// never persisted.
type dailyTotal struct {
	Date string `json:"date"`
	macroSet
}

/* ─── Row adapters ───────────────────────────────────────────────────── */
//
// The storage gateway hands back flat string-keyed rows with whatever locale
// formatting the backing store accumulated. These adapters are the one place
// raw text gets interpreted — the rest of the app only sees typed records.

func foodFromRow(r row) foodRef {
	return foodRef{
		ID:       toID(r["id"]),
		Name:     strings.TrimSpace(r["name"]),
		Category: strings.TrimSpace(r["category"]),
		Calories: toFloat(r["calories"]),
		Protein:  toFloat(r["protein"]),
		Carbs:    toFloat(r["carbs"]),
		Fat:      toFloat(r["fat"]),
	}
}

// entryFromRow normalizes entry_date to ISO where possible; a date that fails
// every layout is kept raw, which quietly drops the entry from date-filtered
// views instead of failing the whole read.
func entryFromRow(r row) logEntry {
	date, _ := normalizeDate(r["entry_date"])
	return logEntry{
		ID:        toID(r["id"]),
		UserID:    strings.TrimSpace(r["user_id"]),
		EntryDate: date,
		Meal:      strings.TrimSpace(r["meal"]),
		Name:      strings.TrimSpace(r["name"]),
		Grams:     toFloat(r["grams"]),
		Calories:  toFloat(r["calories"]),
		Protein:   toFloat(r["protein"]),
		Carbs:     toFloat(r["carbs"]),
		Fat:       toFloat(r["fat"]),
	}
}

func foodsFromRows(rows []row) []foodRef {
	foods := make([]foodRef, 0, len(rows))
	for _, r := range rows {
		foods = append(foods, foodFromRow(r))
	}
	sort.Slice(foods, func(i, j int) bool {
		if foods[i].Category != foods[j].Category {
			return foods[i].Category < foods[j].Category
		}
		return foods[i].Name < foods[j].Name
	})
	return foods
}

func entriesFromRows(rows []row) []logEntry {
	entries := make([]logEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, entryFromRow(r))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries
}

/* ─── Request / response types ───────────────────────────────────────── */

// createEntryRequest is the request body for POST /api/entries.
type createEntryRequest struct {
	Date  string  `json:"date"`
	Meal  string  `json:"meal"`
	Name  string  `json:"name"`
	Grams float64 `json:"grams"`
}

// updateEntryRequest is the request body for PUT /api/entries/:id.
// Pointer fields distinguish "not provided" from zero — only non-nil fields
// change, and any change re-scales the snapshot from the current food.
type updateEntryRequest struct {
	Meal  *string  `json:"meal"`
	Grams *float64 `json:"grams"`
}

// foodRequest is the request body for POST /api/foods and PUT /api/foods/:id
// (update is a full-field replace, so no pointers here).
type foodRequest struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// goalsRequest is the request body for POST /api/goals.
type goalsRequest struct {
	Sex            string  `json:"sex"`
	Age            float64 `json:"age"`
	WeightKG       float64 `json:"weight_kg"`
	HeightCM       float64 `json:"height_cm"`
	ActivityFactor float64 `json:"activity_factor"`
	DeficitPct     float64 `json:"deficit_pct"`
}

// goalsResponse carries the five derived targets.
type goalsResponse struct {
	MaintenanceKcal int `json:"maintenance_kcal"`
	DeficitKcal     int `json:"deficit_kcal"`
	ProteinG        int `json:"protein_g"`
	CarbsG          int `json:"carbs_g"`
	FatG            int `json:"fat_g"`
}

// macroTargets are the saved daily targets shown on the dashboard.
type macroTargets struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// dashboardResponse is the response shape for GET /api/dashboard/daily.
type dashboardResponse struct {
	Date      string       `json:"date"`
	Consumed  macroSet     `json:"consumed"`
	Targets   macroTargets `json:"targets"`
	Remaining macroTargets `json:"remaining"`
	Entries   []logEntry   `json:"entries"`
}
