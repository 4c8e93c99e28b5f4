package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCatalog(t *testing.T) {
	app := newTestApp(t)
	token, _ := app.register(t, "trader@example.com")

	t.Run("create instrument", func(t *testing.T) {
		w := app.request(t, http.MethodPost, "/api/v1/instruments", token, gin.H{
			"ticker": "AAPL",
			"name":   "Apple Inc.",
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("rejects lowercase ticker", func(t *testing.T) {
		w := app.request(t, http.MethodPost, "/api/v1/instruments", token, gin.H{
			"ticker": "aapl",
			"name":   "Apple Inc.",
		})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})

	t.Run("rejects duplicate ticker", func(t *testing.T) {
		w := app.request(t, http.MethodPost, "/api/v1/instruments", token, gin.H{
			"ticker": "AAPL",
			"name":   "Apple Again",
		})
		if w.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", w.Code)
		}
	})

	t.Run("list returns the catalog", func(t *testing.T) {
		w := app.request(t, http.MethodGet, "/api/v1/instruments", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", w.Code, w.Body.String())
		}

		var resp struct {
			Instruments []struct {
				Ticker string `json:"ticker"`
			} `json:"instruments"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp.Instruments) != 1 || resp.Instruments[0].Ticker != "AAPL" {
			t.Fatalf("instruments = %+v, want only AAPL", resp.Instruments)
		}
	})

	t.Run("requires authentication", func(t *testing.T) {
		w := app.request(t, http.MethodGet, "/api/v1/instruments", "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
	})
}
