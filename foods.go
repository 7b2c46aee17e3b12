package main

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
)

// foodToRow renders a food reference for storage.
func foodToRow(f foodRef) row {
	return row{
		"id":       formatID(f.ID),
		"name":     f.Name,
		"category": f.Category,
		"calories": formatFloat(f.Calories),
		"protein":  formatFloat(f.Protein),
		"carbs":    formatFloat(f.Carbs),
		"fat":      formatFloat(f.Fat),
	}
}

// validateFoodRequest holds the shared checks for create and update.
// Macro fields are per 100g and must be non-negative.
func validateFoodRequest(body foodRequest) string {
	if strings.TrimSpace(body.Name) == "" {
		return "name is required"
	}
	if strings.TrimSpace(body.Category) == "" {
		return "category is required"
	}
	if body.Calories < 0 || body.Protein < 0 || body.Carbs < 0 || body.Fat < 0 {
		return "macro fields must be non-negative"
	}
	return ""
}

// listFoods returns the whole catalog sorted by category then name.
// GET /api/foods?category= optionally filters to one category.
func (h *Handler) listFoods(c *gin.Context) {
	rows, err := h.store.ListRows(c.Request.Context(), tabFoods)
	if err != nil {
		storeError(c, err, "failed to fetch foods")
		return
	}
	foods := foodsFromRows(rows)

	if cat := c.Query("category"); cat != "" {
		filtered := make([]foodRef, 0, len(foods))
		for _, f := range foods {
			if f.Category == cat {
				filtered = append(filtered, f)
			}
		}
		foods = filtered
	}
	c.JSON(http.StatusOK, foods)
}

// listCategories returns the distinct catalog categories, sorted.
// GET /api/foods/categories.
func (h *Handler) listCategories(c *gin.Context) {
	rows, err := h.store.ListRows(c.Request.Context(), tabFoods)
	if err != nil {
		storeError(c, err, "failed to fetch foods")
		return
	}

	seen := make(map[string]bool)
	cats := []string{}
	for _, r := range rows {
		cat := strings.TrimSpace(r["category"])
		if cat != "" && !seen[cat] {
			seen[cat] = true
			cats = append(cats, cat)
		}
	}
	sort.Strings(cats)
	c.JSON(http.StatusOK, cats)
}

// createFood adds a food reference to the catalog.
// POST /api/foods. Macro fields are per 100 grams.
func (h *Handler) createFood(c *gin.Context) {
	var body foodRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateFoodRequest(body); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}

	food := foodRef{
		ID:       newRowID(),
		Name:     strings.TrimSpace(body.Name),
		Category: strings.TrimSpace(body.Category),
		Calories: body.Calories,
		Protein:  body.Protein,
		Carbs:    body.Carbs,
		Fat:      body.Fat,
	}
	if err := h.store.AppendRow(c.Request.Context(), tabFoods, foodToRow(food)); err != nil {
		storeError(c, err, "failed to create food")
		return
	}
	c.JSON(http.StatusCreated, food)
}

// updateFood replaces all fields of a catalog entry by id. Existing log
// entries keep their macro snapshots — history is not rewritten by catalog
// edits.
// PUT /api/foods/:id.
func (h *Handler) updateFood(c *gin.Context) {
	id := toID(c.Param("id"))
	if id == 0 {
		apiError(c, http.StatusBadRequest, "invalid id")
		return
	}

	var body foodRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateFoodRequest(body); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}

	food := foodRef{
		ID:       id,
		Name:     strings.TrimSpace(body.Name),
		Category: strings.TrimSpace(body.Category),
		Calories: body.Calories,
		Protein:  body.Protein,
		Carbs:    body.Carbs,
		Fat:      body.Fat,
	}
	partial := foodToRow(food)
	delete(partial, "id")
	if err := h.store.UpdateRow(c.Request.Context(), tabFoods, id, partial); err != nil {
		storeError(c, err, "food not found")
		return
	}
	c.JSON(http.StatusOK, food)
}

// deleteFood removes a catalog entry by id. Log entries that referenced it
// stay valid (their snapshots stand); only future edits of those entries will
// notice the reference is gone.
// DELETE /api/foods/:id.
func (h *Handler) deleteFood(c *gin.Context) {
	id := toID(c.Param("id"))
	if id == 0 {
		apiError(c, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.store.DeleteRow(c.Request.Context(), tabFoods, id); err != nil {
		storeError(c, err, "failed to delete food")
		return
	}
	c.Status(http.StatusNoContent)
}
