package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/engine"
)

// viewState mirrors the engine's streamed state for decoding.
type viewState struct {
	Holdings []struct {
		ID         string `json:"id"`
		Shares     int    `json:"shares"`
		Instrument struct {
			Ticker string `json:"ticker"`
		} `json:"instrument"`
	} `json:"holdings"`
	Available []struct {
		ID     string `json:"id"`
		Ticker string `json:"ticker"`
	} `json:"available"`
	Stats struct {
		TotalValue   float64 `json:"total_value"`
		HoldingCount int     `json:"holding_count"`
	} `json:"stats"`
	Loading bool `json:"loading"`
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) viewState {
	t.Helper()
	var state viewState
	if err := json.Unmarshal(w.Body.Bytes(), &state); err != nil {
		t.Fatalf("failed to decode view state %q: %v", w.Body.String(), err)
	}
	return state
}

// setup registers a user, seeds one instrument, and opens the session.
func setupPortfolio(t *testing.T, app *testApp) (token, userID, instrumentID string) {
	t.Helper()

	token, userID = app.register(t, "trader@example.com")

	w := app.request(t, http.MethodPost, "/api/v1/instruments", token, gin.H{
		"ticker": "AAPL",
		"name":   "Apple Inc.",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("instrument create status = %d: %s", w.Code, w.Body.String())
	}
	var instrument struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &instrument); err != nil {
		t.Fatalf("failed to decode instrument: %v", err)
	}
	return token, userID, instrument.ID
}

// waitForSession blocks until the user's in-flight store calls resolve.
func waitForSession(t *testing.T, app *testApp, userID string) *engine.Engine {
	t.Helper()
	eng, err := app.sessions.Session(userID)
	if err != nil {
		t.Fatalf("failed to resolve session: %v", err)
	}
	eng.Wait()
	return eng
}

func TestGetPortfolio(t *testing.T) {
	app := newTestApp(t)
	token, _, _ := setupPortfolio(t, app)

	w := app.request(t, http.MethodGet, "/api/v1/portfolio", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	state := decodeState(t, w)
	if state.Loading {
		t.Fatal("expected loaded state")
	}
	if len(state.Holdings) != 0 {
		t.Fatalf("holdings = %+v, want empty", state.Holdings)
	}
	if len(state.Available) != 1 || state.Available[0].Ticker != "AAPL" {
		t.Fatalf("available = %+v, want AAPL", state.Available)
	}
}

func TestBuyEndpoint(t *testing.T) {
	app := newTestApp(t)
	token, userID, instrumentID := setupPortfolio(t, app)

	t.Run("accepted with optimistic snapshot", func(t *testing.T) {
		w := app.request(t, http.MethodPost, "/api/v1/portfolio/buy", token, gin.H{
			"instrument_id": instrumentID,
		})
		if w.Code != http.StatusAccepted {
			t.Fatalf("status = %d: %s", w.Code, w.Body.String())
		}

		state := decodeState(t, w)
		if len(state.Holdings) != 1 || state.Holdings[0].Shares != 1 {
			t.Fatalf("holdings = %+v, want one AAPL share", state.Holdings)
		}
		if len(state.Available) != 0 {
			t.Fatalf("available = %+v, want empty", state.Available)
		}

		waitForSession(t, app, userID)
	})

	t.Run("buying again increments shares", func(t *testing.T) {
		w := app.request(t, http.MethodPost, "/api/v1/portfolio/buy", token, gin.H{
			"instrument_id": instrumentID,
		})
		if w.Code != http.StatusAccepted {
			t.Fatalf("status = %d: %s", w.Code, w.Body.String())
		}
		if state := decodeState(t, w); state.Holdings[0].Shares != 2 {
			t.Fatalf("shares = %d, want 2", state.Holdings[0].Shares)
		}
		waitForSession(t, app, userID)
	})

	t.Run("rejects malformed instrument id", func(t *testing.T) {
		w := app.request(t, http.MethodPost, "/api/v1/portfolio/buy", token, gin.H{
			"instrument_id": "not-a-uuid",
		})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})

	t.Run("unknown instrument", func(t *testing.T) {
		w := app.request(t, http.MethodPost, "/api/v1/portfolio/buy", token, gin.H{
			"instrument_id": "0191e0c2-0000-7000-8000-000000000000",
		})
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
	})
}

func TestSellEndpoint(t *testing.T) {
	app := newTestApp(t)
	token, userID, instrumentID := setupPortfolio(t, app)

	w := app.request(t, http.MethodPost, "/api/v1/portfolio/buy", token, gin.H{
		"instrument_id": instrumentID,
	})
	if w.Code != http.StatusAccepted {
		t.Fatalf("buy status = %d: %s", w.Code, w.Body.String())
	}
	eng := waitForSession(t, app, userID)
	holdingID := eng.Snapshot().Holdings[0].ID

	t.Run("selling the last share empties the portfolio", func(t *testing.T) {
		w := app.request(t, http.MethodPost, "/api/v1/portfolio/holdings/"+holdingID+"/sell", token, gin.H{
			"shares": 1,
		})
		if w.Code != http.StatusAccepted {
			t.Fatalf("status = %d: %s", w.Code, w.Body.String())
		}

		state := decodeState(t, w)
		if len(state.Holdings) != 0 {
			t.Fatalf("holdings = %+v, want empty", state.Holdings)
		}
		if len(state.Available) != 1 {
			t.Fatalf("available = %+v, want AAPL offered again", state.Available)
		}
		waitForSession(t, app, userID)
	})

	t.Run("rejects malformed holding id", func(t *testing.T) {
		w := app.request(t, http.MethodPost, "/api/v1/portfolio/holdings/garbage/sell", token, gin.H{
			"shares": 1,
		})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})

	t.Run("unknown holding", func(t *testing.T) {
		w := app.request(t, http.MethodPost, "/api/v1/portfolio/holdings/0191e0c2-0000-7000-8000-000000000000/sell", token, gin.H{
			"shares": 1,
		})
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
	})
}

func TestAddSharesEndpoint(t *testing.T) {
	app := newTestApp(t)
	token, userID, instrumentID := setupPortfolio(t, app)

	w := app.request(t, http.MethodPost, "/api/v1/portfolio/buy", token, gin.H{
		"instrument_id": instrumentID,
	})
	if w.Code != http.StatusAccepted {
		t.Fatalf("buy status = %d: %s", w.Code, w.Body.String())
	}
	eng := waitForSession(t, app, userID)
	holdingID := eng.Snapshot().Holdings[0].ID

	w = app.request(t, http.MethodPost, "/api/v1/portfolio/holdings/"+holdingID+"/add", token, gin.H{
		"shares": 1,
	})
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if state := decodeState(t, w); state.Holdings[0].Shares != 2 {
		t.Fatalf("shares = %d, want 2", state.Holdings[0].Shares)
	}
}

// closeNotifyRecorder adds the CloseNotifier contract Gin's stream
// helper expects from the writer.
type closeNotifyRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func newCloseNotifyRecorder() *closeNotifyRecorder {
	return &closeNotifyRecorder{httptest.NewRecorder(), make(chan bool, 1)}
}

func (r *closeNotifyRecorder) CloseNotify() <-chan bool { return r.closed }

func TestStreamEndpoint(t *testing.T) {
	app := newTestApp(t)
	token, _, _ := setupPortfolio(t, app)

	// A cancelled request context ends the stream after the initial frame.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/portfolio/stream", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer "+token)

	w := newCloseNotifyRecorder()
	app.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, "event:portfolio") && !strings.Contains(body, "event: portfolio") {
		t.Fatalf("stream body missing portfolio event: %q", body)
	}
}

func TestPortfolioRequiresAuth(t *testing.T) {
	app := newTestApp(t)
	w := app.request(t, http.MethodGet, "/api/v1/portfolio", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
