package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func setupLookupTest(upstream http.HandlerFunc) (*gin.Engine, *httptest.Server) {
	mock := httptest.NewServer(upstream)
	gin.SetMode(gin.TestMode)
	h := &Handler{lookupBaseURL: mock.URL}
	router := gin.New()
	router.GET("/api/food-lookup", func(c *gin.Context) { c.Set("user_id", "alice"); c.Next() }, h.lookupFood)
	return router, mock
}

func TestLookupFood_Success(t *testing.T) {
	router, mock := setupLookupTest(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "rice" {
			t.Errorf("expected q=rice upstream, got %q", got)
		}
		json.NewEncoder(w).Encode([]lookupResult{
			{Name: "Rice, white, cooked", Category: "Grains", Calories: 130, Protein: 2.7, Carbs: 28, Fat: 0.3},
		})
	})
	defer mock.Close()

	w := doJSON(router, "GET", "/api/food-lookup?q=rice", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var results []lookupResult
	json.Unmarshal(w.Body.Bytes(), &results)
	if len(results) != 1 || results[0].Calories != 130 {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestLookupFood_MissingQuery(t *testing.T) {
	router, mock := setupLookupTest(func(w http.ResponseWriter, r *http.Request) {})
	defer mock.Close()

	if w := doJSON(router, "GET", "/api/food-lookup", ""); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without q, got %d", w.Code)
	}
}

func TestLookupFood_UpstreamError(t *testing.T) {
	router, mock := setupLookupTest(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})
	defer mock.Close()

	if w := doJSON(router, "GET", "/api/food-lookup?q=rice", ""); w.Code != http.StatusBadGateway {
		t.Errorf("expected 502 on upstream failure, got %d", w.Code)
	}
}

func TestLookupFood_NotConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &Handler{}
	router := gin.New()
	router.GET("/api/food-lookup", h.lookupFood)

	if w := doJSON(router, "GET", "/api/food-lookup?q=rice", ""); w.Code != http.StatusNotImplemented {
		t.Errorf("expected 501 when no upstream is configured, got %d", w.Code)
	}
}
