package main

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

// setupAPITest builds a router over a memStore with auth stubbed out: every
// request runs as the given user. No database needed.
func setupAPITest(userID string) (*gin.Engine, *memStore, *Handler) {
	gin.SetMode(gin.TestMode)
	store := newMemStore()
	h := &Handler{store: store}

	router := gin.New()
	api := router.Group("/api", func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})
	api.GET("/foods", h.listFoods)
	api.GET("/foods/categories", h.listCategories)
	api.POST("/foods", h.createFood)
	api.PUT("/foods/:id", h.updateFood)
	api.DELETE("/foods/:id", h.deleteFood)
	api.GET("/entries", h.listEntries)
	api.POST("/entries", h.createEntry)
	api.PUT("/entries/:id", h.updateEntry)
	api.DELETE("/entries/:id", h.deleteEntry)
	api.GET("/dashboard/daily", h.getDailyDashboard)
	api.GET("/dashboard/history", h.getHistory)
	api.GET("/goals", h.getGoals)
	api.POST("/goals", h.saveGoals)
	api.GET("/settings/:key", h.getSetting)
	api.PUT("/settings/:key", h.putSetting)

	return router, store, h
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func addRice(t *testing.T, router *gin.Engine) {
	t.Helper()
	w := doJSON(router, "POST", "/api/foods",
		`{"name":"Rice","category":"Grains","calories":130,"protein":2.7,"carbs":28,"fat":0.3}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("seeding Rice failed: %d %s", w.Code, w.Body.String())
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

/* ─── Entry lifecycle ────────────────────────────────────────────────── */

// TestCreateEntry_Snapshot verifies logging 200g of Rice snapshots the scaled
// macros onto the entry.
func TestCreateEntry_Snapshot(t *testing.T) {
	router, _, _ := setupAPITest("alice")
	addRice(t, router)

	w := doJSON(router, "POST", "/api/entries",
		`{"date":"2025-03-04","meal":"lunch","name":"Rice","grams":200}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var e logEntry
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatal(err)
	}
	if !near(e.Calories, 260) || !near(e.Protein, 5.4) || !near(e.Carbs, 56) || !near(e.Fat, 0.6) {
		t.Errorf("unexpected snapshot: %+v", e)
	}
	if e.UserID != "alice" || e.EntryDate != "2025-03-04" || e.Meal != "lunch" {
		t.Errorf("unexpected entry metadata: %+v", e)
	}
}

// TestCreateEntry_Validation covers the reject paths: unknown food, bad meal,
// non-positive grams, unparsable date.
func TestCreateEntry_Validation(t *testing.T) {
	router, _, _ := setupAPITest("alice")
	addRice(t, router)

	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"unknown food", `{"date":"2025-03-04","meal":"lunch","name":"Dragonfruit","grams":100}`, http.StatusNotFound},
		{"bad meal", `{"date":"2025-03-04","meal":"brunch","name":"Rice","grams":100}`, http.StatusBadRequest},
		{"zero grams", `{"date":"2025-03-04","meal":"lunch","name":"Rice","grams":0}`, http.StatusBadRequest},
		{"negative grams", `{"date":"2025-03-04","meal":"lunch","name":"Rice","grams":-5}`, http.StatusBadRequest},
		{"bad date", `{"date":"someday","meal":"lunch","name":"Rice","grams":100}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(router, "POST", "/api/entries", tc.body)
			if w.Code != tc.status {
				t.Errorf("expected %d, got %d: %s", tc.status, w.Code, w.Body.String())
			}
		})
	}
}

// TestUpdateEntry_RescalesFromCurrentFood verifies the edit path: changing
// grams recomputes the snapshot against the food's current profile.
func TestUpdateEntry_RescalesFromCurrentFood(t *testing.T) {
	router, _, _ := setupAPITest("alice")
	addRice(t, router)

	w := doJSON(router, "POST", "/api/entries",
		`{"date":"2025-03-04","meal":"lunch","name":"Rice","grams":200}`)
	var created logEntry
	json.Unmarshal(w.Body.Bytes(), &created)

	w = doJSON(router, "PUT", fmt.Sprintf("/api/entries/%d", created.ID), `{"grams":150}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var updated logEntry
	json.Unmarshal(w.Body.Bytes(), &updated)
	if !near(updated.Calories, 195) || !near(updated.Protein, 4.05) || !near(updated.Carbs, 42) || !near(updated.Fat, 0.45) {
		t.Errorf("expected rescaled snapshot for 150g, got %+v", updated)
	}
}

// TestUpdateEntry_MissingFoodConflict verifies editing grams of an entry
// whose food was deleted from the catalog is refused with 409 and leaves the
// entry untouched.
func TestUpdateEntry_MissingFoodConflict(t *testing.T) {
	router, _, _ := setupAPITest("alice")
	addRice(t, router)

	w := doJSON(router, "POST", "/api/entries",
		`{"date":"2025-03-04","meal":"lunch","name":"Rice","grams":200}`)
	var created logEntry
	json.Unmarshal(w.Body.Bytes(), &created)

	// Remove Rice from the catalog.
	var foods []foodRef
	w = doJSON(router, "GET", "/api/foods", "")
	json.Unmarshal(w.Body.Bytes(), &foods)
	w = doJSON(router, "DELETE", fmt.Sprintf("/api/foods/%d", foods[0].ID), "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete food failed: %d", w.Code)
	}

	w = doJSON(router, "PUT", fmt.Sprintf("/api/entries/%d", created.ID), `{"grams":150}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 when food is gone, got %d: %s", w.Code, w.Body.String())
	}

	// Snapshot must be unchanged.
	w = doJSON(router, "GET", "/api/entries?date=2025-03-04", "")
	var entries []logEntry
	json.Unmarshal(w.Body.Bytes(), &entries)
	if len(entries) != 1 || !near(entries[0].Calories, 260) {
		t.Errorf("entry snapshot must survive a failed edit: %+v", entries)
	}
}

// TestUpdateEntry_MealOnlyKeepsSnapshot verifies a meal-only edit does not
// touch the macro snapshot even when the catalog food changed meanwhile.
func TestUpdateEntry_MealOnlyKeepsSnapshot(t *testing.T) {
	router, _, _ := setupAPITest("alice")
	addRice(t, router)

	w := doJSON(router, "POST", "/api/entries",
		`{"date":"2025-03-04","meal":"lunch","name":"Rice","grams":200}`)
	var created logEntry
	json.Unmarshal(w.Body.Bytes(), &created)

	w = doJSON(router, "PUT", fmt.Sprintf("/api/entries/%d", created.ID), `{"meal":"dinner"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var updated logEntry
	json.Unmarshal(w.Body.Bytes(), &updated)
	if updated.Meal != "dinner" || !near(updated.Calories, 260) {
		t.Errorf("meal-only edit must keep the snapshot: %+v", updated)
	}
}

// TestEntries_UserIsolation verifies one user can neither see nor delete
// another user's entries.
func TestEntries_UserIsolation(t *testing.T) {
	aliceRouter, store, _ := setupAPITest("alice")
	addRice(t, aliceRouter)

	w := doJSON(aliceRouter, "POST", "/api/entries",
		`{"date":"2025-03-04","meal":"lunch","name":"Rice","grams":100}`)
	var created logEntry
	json.Unmarshal(w.Body.Bytes(), &created)

	// Same store, different user.
	gin.SetMode(gin.TestMode)
	bh := &Handler{store: store}
	bobRouter := gin.New()
	api := bobRouter.Group("/api", func(c *gin.Context) { c.Set("user_id", "bob"); c.Next() })
	api.GET("/entries", bh.listEntries)
	api.DELETE("/entries/:id", bh.deleteEntry)

	w = doJSON(bobRouter, "GET", "/api/entries?date=2025-03-04", "")
	var entries []logEntry
	json.Unmarshal(w.Body.Bytes(), &entries)
	if len(entries) != 0 {
		t.Errorf("bob must not see alice's entries: %+v", entries)
	}

	w = doJSON(bobRouter, "DELETE", fmt.Sprintf("/api/entries/%d", created.ID), "")
	if w.Code != http.StatusNotFound {
		t.Errorf("bob deleting alice's entry should 404, got %d", w.Code)
	}
}

/* ─── Dashboard ──────────────────────────────────────────────────────── */

// TestDailyDashboard verifies consumed totals, default targets, and the
// remaining arithmetic for one logged day.
func TestDailyDashboard(t *testing.T) {
	router, _, _ := setupAPITest("alice")
	addRice(t, router)

	doJSON(router, "POST", "/api/entries", `{"date":"2025-03-04","meal":"lunch","name":"Rice","grams":200}`)
	doJSON(router, "POST", "/api/entries", `{"date":"2025-03-04","meal":"dinner","name":"Rice","grams":100}`)
	doJSON(router, "POST", "/api/entries", `{"date":"2025-03-05","meal":"lunch","name":"Rice","grams":500}`)

	w := doJSON(router, "GET", "/api/dashboard/daily?date=2025-03-04", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp dashboardResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !near(resp.Consumed.Calories, 390) { // 260 + 130
		t.Errorf("expected 390 consumed kcal, got %v", resp.Consumed.Calories)
	}
	if len(resp.Entries) != 2 {
		t.Errorf("expected 2 entries for the day, got %d", len(resp.Entries))
	}
	// Shipped defaults apply before any goals are saved.
	if resp.Targets.Calories != 1800 {
		t.Errorf("expected default calorie target 1800, got %v", resp.Targets.Calories)
	}
	if !near(resp.Remaining.Calories, 1800-390) {
		t.Errorf("expected remaining %v, got %v", 1800-390, resp.Remaining.Calories)
	}
}

// TestGoalsRoundTrip verifies POST /api/goals persists targets that the
// dashboard and GET /api/goals read back.
func TestGoalsRoundTrip(t *testing.T) {
	router, _, _ := setupAPITest("alice")

	w := doJSON(router, "POST", "/api/goals",
		`{"sex":"M","age":25,"weight_kg":70,"height_cm":175,"activity_factor":1.55,"deficit_pct":20}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var saved goalsResponse
	json.Unmarshal(w.Body.Bytes(), &saved)
	if saved.MaintenanceKcal != 2594 || saved.DeficitKcal != 2075 ||
		saved.ProteinG != 140 || saved.CarbsG != 383 || saved.FatG != 56 {
		t.Errorf("unexpected derived goals: %+v", saved)
	}

	w = doJSON(router, "GET", "/api/goals", "")
	var got goalsResponse
	json.Unmarshal(w.Body.Bytes(), &got)
	if got != saved {
		t.Errorf("GET /api/goals should return saved targets: %+v vs %+v", got, saved)
	}

	w = doJSON(router, "GET", "/api/dashboard/daily?date=2025-03-04", "")
	var dash dashboardResponse
	json.Unmarshal(w.Body.Bytes(), &dash)
	if dash.Targets.Calories != 2075 || dash.Targets.Protein != 140 {
		t.Errorf("dashboard should use saved targets, got %+v", dash.Targets)
	}
}

// TestSaveGoals_Validation spot-checks the body validation bounds.
func TestSaveGoals_Validation(t *testing.T) {
	router, _, _ := setupAPITest("alice")

	cases := []string{
		`{"sex":"","age":25,"weight_kg":70,"height_cm":175,"activity_factor":1.55,"deficit_pct":20}`,
		`{"sex":"M","age":5,"weight_kg":70,"height_cm":175,"activity_factor":1.55,"deficit_pct":20}`,
		`{"sex":"M","age":25,"weight_kg":70,"height_cm":175,"activity_factor":1.55,"deficit_pct":45}`,
		`{"sex":"M","age":25,"weight_kg":70,"height_cm":175,"activity_factor":0.5,"deficit_pct":20}`,
	}
	for _, body := range cases {
		w := doJSON(router, "POST", "/api/goals", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for %s, got %d", body, w.Code)
		}
	}
}
