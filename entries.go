package main

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// validMeals are the accepted meal slots for a log entry.
var validMeals = map[string]bool{
	"breakfast": true,
	"lunch":     true,
	"snack":     true,
	"dinner":    true,
}

func entryToRow(e logEntry) row {
	return row{
		"id":         formatID(e.ID),
		"user_id":    e.UserID,
		"entry_date": e.EntryDate,
		"meal":       e.Meal,
		"name":       e.Name,
		"grams":      formatFloat(e.Grams),
		"calories":   formatFloat(e.Calories),
		"protein":    formatFloat(e.Protein),
		"carbs":      formatFloat(e.Carbs),
		"fat":        formatFloat(e.Fat),
	}
}

// findFoodByName resolves a catalog entry by name, case-insensitively.
func (h *Handler) findFoodByName(ctx context.Context, name string) (foodRef, bool, error) {
	rows, err := h.store.ListRows(ctx, tabFoods)
	if err != nil {
		return foodRef{}, false, err
	}
	want := strings.TrimSpace(name)
	for _, r := range rows {
		f := foodFromRow(r)
		if strings.EqualFold(f.Name, want) {
			return f, true, nil
		}
	}
	return foodRef{}, false, nil
}

// loadEntries fetches and adapts all log entries.
func (h *Handler) loadEntries(ctx context.Context) ([]logEntry, error) {
	rows, err := h.store.ListRows(ctx, tabEntries)
	if err != nil {
		return nil, err
	}
	return entriesFromRows(rows), nil
}

/* ─── Entry handlers ─────────────────────────────────────────────────── */

// createEntry logs a consumption event. The macro snapshot is computed here
// from the referenced food's per-100g profile and stored with the entry, so
// later catalog edits never rewrite history.
// POST /api/entries.
func (h *Handler) createEntry(c *gin.Context) {
	userID := c.GetString("user_id")

	var body createEntryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validMeals[strings.ToLower(strings.TrimSpace(body.Meal))] {
		apiError(c, http.StatusBadRequest, "meal must be one of breakfast, lunch, snack, dinner")
		return
	}
	if body.Grams <= 0 {
		apiError(c, http.StatusBadRequest, "grams must be positive")
		return
	}

	date := strings.TrimSpace(body.Date)
	if date == "" {
		date = time.Now().Format("2006-01-02")
	} else {
		var ok bool
		if date, ok = normalizeDate(date); !ok {
			apiError(c, http.StatusBadRequest, "unrecognized date format")
			return
		}
	}

	food, found, err := h.findFoodByName(c.Request.Context(), body.Name)
	if err != nil {
		storeError(c, err, "failed to fetch foods")
		return
	}
	if !found {
		apiError(c, http.StatusNotFound, "food not found: "+body.Name)
		return
	}

	snap := scaleMacros(food, body.Grams)
	entry := logEntry{
		ID:        newRowID(),
		UserID:    userID,
		EntryDate: date,
		Meal:      strings.ToLower(strings.TrimSpace(body.Meal)),
		Name:      food.Name,
		Grams:     body.Grams,
		Calories:  snap.Calories,
		Protein:   snap.Protein,
		Carbs:     snap.Carbs,
		Fat:       snap.Fat,
	}
	if err := h.store.AppendRow(c.Request.Context(), tabEntries, entryToRow(entry)); err != nil {
		storeError(c, err, "failed to create entry")
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// listEntries returns the caller's log entries, optionally filtered to one
// date. GET /api/entries?date=YYYY-MM-DD.
func (h *Handler) listEntries(c *gin.Context) {
	userID := c.GetString("user_id")

	entries, err := h.loadEntries(c.Request.Context())
	if err != nil {
		storeError(c, err, "failed to fetch entries")
		return
	}

	date := c.Query("date")
	if date != "" {
		date, _ = normalizeDate(date)
	}

	out := make([]logEntry, 0, len(entries))
	for _, e := range entries {
		if e.UserID != userID {
			continue
		}
		if date != "" && e.EntryDate != date {
			continue
		}
		out = append(out, e)
	}
	c.JSON(http.StatusOK, out)
}

// updateEntry edits a log entry's meal and/or grams. An explicit edit is the
// one case where the snapshot is recomputed — from the food's current profile,
// not the one captured at logging time. If the food is gone from the catalog
// the edit is refused rather than guessing.
// PUT /api/entries/:id.
func (h *Handler) updateEntry(c *gin.Context) {
	userID := c.GetString("user_id")
	id := toID(c.Param("id"))
	if id == 0 {
		apiError(c, http.StatusBadRequest, "invalid id")
		return
	}

	var body updateEntryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Meal == nil && body.Grams == nil {
		apiError(c, http.StatusBadRequest, "nothing to update")
		return
	}
	if body.Meal != nil && !validMeals[strings.ToLower(strings.TrimSpace(*body.Meal))] {
		apiError(c, http.StatusBadRequest, "meal must be one of breakfast, lunch, snack, dinner")
		return
	}
	if body.Grams != nil && *body.Grams <= 0 {
		apiError(c, http.StatusBadRequest, "grams must be positive")
		return
	}

	entries, err := h.loadEntries(c.Request.Context())
	if err != nil {
		storeError(c, err, "failed to fetch entries")
		return
	}
	var entry logEntry
	found := false
	for _, e := range entries {
		if e.ID == id && e.UserID == userID {
			entry = e
			found = true
			break
		}
	}
	if !found {
		apiError(c, http.StatusNotFound, "entry not found")
		return
	}

	if body.Meal != nil {
		entry.Meal = strings.ToLower(strings.TrimSpace(*body.Meal))
	}
	if body.Grams != nil {
		food, ok, err := h.findFoodByName(c.Request.Context(), entry.Name)
		if err != nil {
			storeError(c, err, "failed to fetch foods")
			return
		}
		if !ok {
			apiError(c, http.StatusConflict, "food reference no longer exists: "+entry.Name)
			return
		}
		entry.Grams = *body.Grams
		snap := scaleMacros(food, entry.Grams)
		entry.Calories = snap.Calories
		entry.Protein = snap.Protein
		entry.Carbs = snap.Carbs
		entry.Fat = snap.Fat
	}

	partial := entryToRow(entry)
	delete(partial, "id")
	if err := h.store.UpdateRow(c.Request.Context(), tabEntries, id, partial); err != nil {
		storeError(c, err, "failed to update entry")
		return
	}
	c.JSON(http.StatusOK, entry)
}

// deleteEntry removes a log entry owned by the caller.
// DELETE /api/entries/:id.
func (h *Handler) deleteEntry(c *gin.Context) {
	userID := c.GetString("user_id")
	id := toID(c.Param("id"))
	if id == 0 {
		apiError(c, http.StatusBadRequest, "invalid id")
		return
	}

	entries, err := h.loadEntries(c.Request.Context())
	if err != nil {
		storeError(c, err, "failed to fetch entries")
		return
	}
	owned := false
	for _, e := range entries {
		if e.ID == id && e.UserID == userID {
			owned = true
			break
		}
	}
	if !owned {
		apiError(c, http.StatusNotFound, "entry not found")
		return
	}

	if err := h.store.DeleteRow(c.Request.Context(), tabEntries, id); err != nil {
		storeError(c, err, "failed to delete entry")
		return
	}
	c.Status(http.StatusNoContent)
}

/* ─── Dashboard handlers ─────────────────────────────────────────────── */

// targetsFor loads the caller's saved daily targets, falling back through
// global defaults for users who have never run the goal calculator.
func (h *Handler) targetsFor(ctx context.Context, userID string) macroTargets {
	s := h.settings()
	read := func(key, def string) float64 {
		v, err := s.get(ctx, key, def, userID, true)
		if err != nil {
			return toFloat(def)
		}
		f, ok := parseDecimal(v)
		if !ok {
			return toFloat(def)
		}
		return f
	}
	return macroTargets{
		Calories: read("target_deficit_calories", "1800"),
		Protein:  read("target_protein", "120"),
		Carbs:    read("target_carbs", "250"),
		Fat:      read("target_fat", "60"),
	}
}

// getDailyDashboard returns one day's consumed totals, the caller's targets,
// and what remains. GET /api/dashboard/daily?date= (defaults to today).
func (h *Handler) getDailyDashboard(c *gin.Context) {
	userID := c.GetString("user_id")

	date := c.Query("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	date, _ = normalizeDate(date)

	entries, err := h.loadEntries(c.Request.Context())
	if err != nil {
		storeError(c, err, "failed to fetch entries")
		return
	}

	dayEntries := make([]logEntry, 0)
	for _, e := range entries {
		if e.UserID == userID && e.EntryDate == date {
			dayEntries = append(dayEntries, e)
		}
	}

	consumed := totalsForDate(entries, date, userID)
	targets := h.targetsFor(c.Request.Context(), userID)

	c.JSON(http.StatusOK, dashboardResponse{
		Date:     date,
		Consumed: consumed,
		Targets:  targets,
		Remaining: macroTargets{
			Calories: targets.Calories - consumed.Calories,
			Protein:  targets.Protein - consumed.Protein,
			Carbs:    targets.Carbs - consumed.Carbs,
			Fat:      targets.Fat - consumed.Fat,
		},
		Entries: dayEntries,
	})
}

// getHistory returns per-day totals for the trailing window, today inclusive.
// GET /api/dashboard/history?days=N (default 30, capped at 365).
func (h *Handler) getHistory(c *gin.Context) {
	userID := c.GetString("user_id")

	days := 30
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			apiError(c, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = n
	}
	if days > 365 {
		days = 365
	}

	entries, err := h.loadEntries(c.Request.Context())
	if err != nil {
		storeError(c, err, "failed to fetch entries")
		return
	}
	c.JSON(http.StatusOK, rollupLastNDays(entries, days, userID, time.Now()))
}
