package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// lookupResult is one candidate from the external food database, normalized
// to the catalog's per-100g shape so the frontend can import it directly.
type lookupResult struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// lookupFood proxies a search against the external food database so the
// frontend never needs its own credentials. Results are per 100 grams.
// GET /api/food-lookup?q=.
func (h *Handler) lookupFood(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		apiError(c, http.StatusBadRequest, "q is required")
		return
	}
	if h.lookupBaseURL == "" {
		apiError(c, http.StatusNotImplemented, "food lookup is not configured")
		return
	}

	reqURL := fmt.Sprintf("%s/foods/search?q=%s&per=100g", h.lookupBaseURL, url.QueryEscape(query))
	httpReq, err := http.NewRequestWithContext(c.Request.Context(), "GET", reqURL, nil)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "lookup request failed")
		return
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		log.Printf("[lookup] request error: %v", err)
		apiError(c, http.StatusBadGateway, "food database unreachable")
		return
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		apiError(c, http.StatusBadGateway, "food database unreachable")
		return
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("[lookup] upstream status %d: %s", resp.StatusCode, string(respBytes))
		apiError(c, http.StatusBadGateway, "food database error")
		return
	}

	var results []lookupResult
	if err := json.Unmarshal(respBytes, &results); err != nil {
		log.Printf("[lookup] bad upstream payload: %v", err)
		apiError(c, http.StatusBadGateway, "food database error")
		return
	}
	c.JSON(http.StatusOK, results)
}
