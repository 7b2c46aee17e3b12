package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

/* ─── Request / Response types ───────────────────────────────────────── */

// mealPlanRequest is the request body for POST /api/meal-plan.
type mealPlanRequest struct {
	Preferences string `json:"preferences"`
}

// plannedItem is one food portion inside a generated plan. Macros are derived
// locally from the catalog, never trusted from the model.
type plannedItem struct {
	Name  string  `json:"name"`
	Grams float64 `json:"grams"`
	macroSet
}

// plannedMeal is one meal slot with its items and subtotal.
type plannedMeal struct {
	Meal   string        `json:"meal"`
	Items  []plannedItem `json:"items"`
	Totals macroSet      `json:"totals"`
}

// mealPlanResponse is the response for POST /api/meal-plan.
type mealPlanResponse struct {
	Meals  []plannedMeal `json:"meals"`
	Totals macroSet      `json:"totals"`
}

// rawPlan is the JSON shape we ask the model for.
type rawPlan struct {
	Meals []struct {
		Meal  string `json:"meal"`
		Items []struct {
			Name  string  `json:"name"`
			Grams float64 `json:"grams"`
		} `json:"items"`
	} `json:"meals"`
}

/* ─── Prompt constants ───────────────────────────────────────────────── */

const mealPlanSystemPrompt = `You are a meal planner. Build a one-day meal plan using ONLY foods from the provided list, matching the daily targets as closely as possible.
Return a JSON object with:
- "meals": array of objects, each with:
  - "meal" (one of: breakfast, lunch, snack, dinner)
  - "items": array of {"name": string (exactly as listed), "grams": number (positive)}
Use each meal slot at most once. Do not invent foods that are not in the list.
Return only valid JSON, no explanation.`

const workoutSystemPrompt = `You are a personal trainer. Build a weekly workout plan for the described user.
Return a JSON object with:
- "days": array of objects, each with:
  - "day" (string, e.g. "Monday")
  - "focus" (string, e.g. "Upper body")
  - "exercises": array of {"name": string, "sets": integer, "reps": string, "notes": string}
Respect any injuries or equipment limits mentioned. Return only valid JSON, no explanation.`

/* ─── Chat completions client ────────────────────────────────────────── */

// chatMessage is a single message in the chat completions request.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the request body for the chat completions API.
type chatRequest struct {
	Model          string                 `json:"model"`
	Messages       []chatMessage          `json:"messages"`
	Temperature    float64                `json:"temperature"`
	ResponseFormat map[string]interface{} `json:"response_format"`
}

// callChat sends a chat completions request and returns the raw content string
// from the first choice. Uses raw net/http — the endpoint is OpenAI-compatible
// (we run against Groq) so an SDK buys nothing.
func callChat(ctx context.Context, model string, messages []chatMessage, baseURL string) (string, error) {
	apiKey := os.Getenv("AI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("AI_API_KEY not set")
	}

	reqBody := chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: 0.3,
		ResponseFormat: map[string]interface{}{
			"type": "json_object",
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", baseURL+"/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ai provider returned status %d: %s", resp.StatusCode, string(respBytes))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return result.Choices[0].Message.Content, nil
}

// chatModel resolves the model name from settings, with a global fallback so
// one row can switch the whole deployment.
func (h *Handler) chatModel(ctx context.Context, userID string) string {
	model, err := h.settings().get(ctx, "ai_model", "llama-3.3-70b-versatile", userID, true)
	if err != nil || strings.TrimSpace(model) == "" {
		return "llama-3.3-70b-versatile"
	}
	return model
}

/* ─── Meal plan handler ──────────────────────────────────────────────── */

// generateMealPlan asks the model for a one-day plan constrained to the food
// catalog and the caller's saved targets. The model only picks names and
// gram amounts; every macro number in the response is computed from the
// catalog. Items naming unknown foods or non-positive grams are dropped.
// POST /api/meal-plan.
func (h *Handler) generateMealPlan(c *gin.Context) {
	userID := c.GetString("user_id")

	var req mealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	rows, err := h.store.ListRows(c.Request.Context(), tabFoods)
	if err != nil {
		storeError(c, err, "failed to fetch foods")
		return
	}
	foods := foodsFromRows(rows)
	if len(foods) == 0 {
		apiError(c, http.StatusConflict, "food catalog is empty")
		return
	}

	byName := make(map[string]foodRef, len(foods))
	var catalog strings.Builder
	for _, f := range foods {
		byName[strings.ToLower(f.Name)] = f
		fmt.Fprintf(&catalog, "- %s (per 100g: %.0f kcal, %.1fg protein, %.1fg carbs, %.1fg fat)\n",
			f.Name, f.Calories, f.Protein, f.Carbs, f.Fat)
	}

	targets := h.targetsFor(c.Request.Context(), userID)
	userPrompt := fmt.Sprintf("Daily targets: %.0f kcal, %.0fg protein, %.0fg carbs, %.0fg fat.\n\nAvailable foods:\n%s",
		targets.Calories, targets.Protein, targets.Carbs, targets.Fat, catalog.String())
	if strings.TrimSpace(req.Preferences) != "" {
		userPrompt += "\nPreferences: " + req.Preferences
	}

	content, err := callChat(c.Request.Context(), h.chatModel(c.Request.Context(), userID), []chatMessage{
		{Role: "system", Content: mealPlanSystemPrompt},
		{Role: "user", Content: userPrompt},
	}, h.aiBaseURL)
	if err != nil {
		log.Printf("[mealplan] AI error: %v", err)
		apiError(c, http.StatusBadGateway, "ai request failed")
		return
	}

	var plan rawPlan
	if err := json.Unmarshal([]byte(content), &plan); err != nil {
		// Surface what the model actually said so the failure is debuggable.
		log.Printf("[mealplan] unparseable AI response: %s", content)
		c.JSON(http.StatusBadGateway, gin.H{"error": "ai returned invalid plan", "raw": content})
		return
	}

	resp := mealPlanResponse{Meals: []plannedMeal{}}
	for _, m := range plan.Meals {
		slot := strings.ToLower(strings.TrimSpace(m.Meal))
		if !validMeals[slot] {
			continue
		}
		meal := plannedMeal{Meal: slot, Items: []plannedItem{}}
		for _, it := range m.Items {
			food, ok := byName[strings.ToLower(strings.TrimSpace(it.Name))]
			if !ok || it.Grams <= 0 {
				log.Printf("[mealplan] dropping item %q (%.0fg)", it.Name, it.Grams)
				continue
			}
			macros := scaleMacros(food, it.Grams)
			meal.Items = append(meal.Items, plannedItem{Name: food.Name, Grams: it.Grams, macroSet: macros})
			meal.Totals = meal.Totals.add(macros)
		}
		if len(meal.Items) == 0 {
			continue
		}
		resp.Totals = resp.Totals.add(meal.Totals)
		resp.Meals = append(resp.Meals, meal)
	}
	c.JSON(http.StatusOK, resp)
}

/* ─── Workout plan handlers ──────────────────────────────────────────── */

// workoutProfileRequest describes the user for plan generation, and doubles as
// the persisted profile.
type workoutProfileRequest struct {
	Goal        string `json:"goal"`
	DaysPerWeek int    `json:"days_per_week"`
	Equipment   string `json:"equipment"`
	Notes       string `json:"notes"`
}

// generateWorkoutPlan asks the model for a weekly plan and stores it verbatim
// as the caller's current plan. POST /api/workout-plan.
func (h *Handler) generateWorkoutPlan(c *gin.Context) {
	userID := c.GetString("user_id")

	var req workoutProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Goal) == "" {
		apiError(c, http.StatusBadRequest, "goal is required")
		return
	}
	if req.DaysPerWeek < 1 || req.DaysPerWeek > 7 {
		apiError(c, http.StatusBadRequest, "days_per_week must be between 1 and 7")
		return
	}

	profileJSON, _ := json.Marshal(req)
	userPrompt := fmt.Sprintf("Goal: %s\nTraining days per week: %d\nEquipment: %s\nNotes: %s",
		req.Goal, req.DaysPerWeek, req.Equipment, req.Notes)

	content, err := callChat(c.Request.Context(), h.chatModel(c.Request.Context(), userID), []chatMessage{
		{Role: "system", Content: workoutSystemPrompt},
		{Role: "user", Content: userPrompt},
	}, h.aiBaseURL)
	if err != nil {
		log.Printf("[workout] AI error: %v", err)
		apiError(c, http.StatusBadGateway, "ai request failed")
		return
	}

	var plan map[string]interface{}
	if err := json.Unmarshal([]byte(content), &plan); err != nil {
		log.Printf("[workout] unparseable AI response: %s", content)
		c.JSON(http.StatusBadGateway, gin.H{"error": "ai returned invalid plan", "raw": content})
		return
	}

	s := h.settings()
	ctx := c.Request.Context()
	if err := s.set(ctx, "workout_profile_json", string(profileJSON), userID); err != nil {
		storeError(c, err, "failed to save workout profile")
		return
	}
	if err := s.set(ctx, "workout_plan_json", content, userID); err != nil {
		storeError(c, err, "failed to save workout plan")
		return
	}
	c.JSON(http.StatusOK, plan)
}

// getWorkoutPlan returns the caller's stored plan, or 404 if none exists.
// GET /api/workout-plan.
func (h *Handler) getWorkoutPlan(c *gin.Context) {
	userID := c.GetString("user_id")

	stored, err := h.settings().get(c.Request.Context(), "workout_plan_json", "", userID, false)
	if err != nil {
		storeError(c, err, "failed to fetch workout plan")
		return
	}
	if stored == "" {
		apiError(c, http.StatusNotFound, "no workout plan saved")
		return
	}

	var plan map[string]interface{}
	if err := json.Unmarshal([]byte(stored), &plan); err != nil {
		log.Printf("[workout] corrupt stored plan for %s: %v", userID, err)
		apiError(c, http.StatusInternalServerError, "stored workout plan is corrupt")
		return
	}
	c.JSON(http.StatusOK, plan)
}

// saveWorkoutPlan replaces the stored plan with a manually edited one.
// PUT /api/workout-plan.
func (h *Handler) saveWorkoutPlan(c *gin.Context) {
	userID := c.GetString("user_id")

	var plan map[string]interface{}
	if err := c.ShouldBindJSON(&plan); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	planJSON, _ := json.Marshal(plan)
	if err := h.settings().set(c.Request.Context(), "workout_plan_json", string(planJSON), userID); err != nil {
		storeError(c, err, "failed to save workout plan")
		return
	}
	c.JSON(http.StatusOK, plan)
}

// clearWorkoutPlan removes the caller's stored plan by blanking the scoped
// value. DELETE /api/workout-plan.
func (h *Handler) clearWorkoutPlan(c *gin.Context) {
	userID := c.GetString("user_id")

	if err := h.settings().set(c.Request.Context(), "workout_plan_json", "", userID); err != nil {
		storeError(c, err, "failed to clear workout plan")
		return
	}
	c.Status(http.StatusNoContent)
}
