package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// profileKeys are the body-profile settings written by saveGoals, keyed by
// setting name to the request field that feeds it.
const (
	keySex      = "profile_sex"
	keyAge      = "profile_age"
	keyWeight   = "profile_weight_kg"
	keyHeight   = "profile_height_cm"
	keyActivity = "profile_activity_factor"
	keyDeficit  = "profile_deficit_pct"
)

func validateGoalsRequest(body goalsRequest) string {
	switch {
	case strings.TrimSpace(body.Sex) == "":
		return "sex is required"
	case body.Age < 10 || body.Age > 120:
		return "age must be between 10 and 120"
	case body.WeightKG < 30 || body.WeightKG > 300:
		return "weight_kg must be between 30 and 300"
	case body.HeightCM < 100 || body.HeightCM > 250:
		return "height_cm must be between 100 and 250"
	case body.ActivityFactor < 1.0 || body.ActivityFactor > 2.5:
		return "activity_factor must be between 1.0 and 2.5"
	case body.DeficitPct < 0 || body.DeficitPct > 30:
		return "deficit_pct must be between 0 and 30"
	}
	return ""
}

// saveGoals derives daily targets from the caller's body profile and persists
// both the profile and the targets. The derived targets are what the daily
// dashboard reads back. POST /api/goals.
func (h *Handler) saveGoals(c *gin.Context) {
	userID := c.GetString("user_id")

	var body goalsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateGoalsRequest(body); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}

	maintenance, deficit, protein, carbs, fat := calculateGoals(
		body.Sex, body.Age, body.WeightKG, body.HeightCM, body.ActivityFactor, body.DeficitPct)

	s := h.settings()
	ctx := c.Request.Context()
	saves := []struct{ key, value string }{
		{keySex, strings.TrimSpace(body.Sex)},
		{keyAge, formatFloat(body.Age)},
		{keyWeight, formatFloat(body.WeightKG)},
		{keyHeight, formatFloat(body.HeightCM)},
		{keyActivity, formatFloat(body.ActivityFactor)},
		{keyDeficit, formatFloat(body.DeficitPct)},
		{"target_maintenance", strconv.Itoa(maintenance)},
		{"target_deficit_calories", strconv.Itoa(deficit)},
		{"target_protein", strconv.Itoa(protein)},
		{"target_carbs", strconv.Itoa(carbs)},
		{"target_fat", strconv.Itoa(fat)},
	}
	for _, sv := range saves {
		if err := s.set(ctx, sv.key, sv.value, userID); err != nil {
			storeError(c, err, "failed to save goals")
			return
		}
	}

	c.JSON(http.StatusOK, goalsResponse{
		MaintenanceKcal: maintenance,
		DeficitKcal:     deficit,
		ProteinG:        protein,
		CarbsG:          carbs,
		FatG:            fat,
	})
}

// getGoals returns the caller's saved targets, recomputing nothing. Users who
// never saved a profile get the shipped defaults via global fallback.
// GET /api/goals.
func (h *Handler) getGoals(c *gin.Context) {
	userID := c.GetString("user_id")
	s := h.settings()
	ctx := c.Request.Context()

	readInt := func(key, def string) int {
		v, err := s.get(ctx, key, def, userID, true)
		if err != nil {
			v = def
		}
		f, ok := parseDecimal(v)
		if !ok {
			f, _ = parseDecimal(def)
		}
		return int(f)
	}

	c.JSON(http.StatusOK, goalsResponse{
		MaintenanceKcal: readInt("target_maintenance", "2200"),
		DeficitKcal:     readInt("target_deficit_calories", "1800"),
		ProteinG:        readInt("target_protein", "120"),
		CarbsG:          readInt("target_carbs", "250"),
		FatG:            readInt("target_fat", "60"),
	})
}

/* ─── Raw settings access ────────────────────────────────────────────── */

// getSetting reads one setting for the caller with global fallback.
// GET /api/settings/:key?default=.
func (h *Handler) getSetting(c *gin.Context) {
	userID := c.GetString("user_id")
	key := c.Param("key")

	value, err := h.settings().get(c.Request.Context(), key, c.Query("default"), userID, true)
	if err != nil {
		storeError(c, err, "failed to fetch setting")
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": value})
}

// putSetting writes one setting scoped to the caller. The global row is never
// touched. PUT /api/settings/:key.
func (h *Handler) putSetting(c *gin.Context) {
	userID := c.GetString("user_id")
	key := c.Param("key")

	var body struct {
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.settings().set(c.Request.Context(), key, body.Value, userID); err != nil {
		storeError(c, err, "failed to save setting")
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": body.Value})
}
