package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/engine"
	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/handlers"
	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/middleware"
	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/services"
	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/store"
	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/testutil"
	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

type testApp struct {
	router   *gin.Engine
	db       *gorm.DB
	store    store.HoldingStore
	sessions *engine.Manager
}

// newTestApp wires the full handler stack over an in-memory database,
// mirroring the server's route table.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	st, err := store.NewGormStore(db)
	testutil.AssertNoError(t, err)

	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	sessions := engine.NewManager(st, time.Hour)
	t.Cleanup(sessions.CloseAll)

	authHandler := handlers.NewAuthHandler(userService, auditService, sessions)
	catalogHandler := handlers.NewCatalogHandler(st, auditService)
	portfolioHandler := handlers.NewPortfolioHandler(sessions, auditService)

	router := gin.New()
	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())
	protected.GET("/profile", authHandler.Profile)
	protected.POST("/auth/logout", authHandler.Logout)

	instruments := protected.Group("/instruments")
	instruments.GET("", catalogHandler.List)
	instruments.POST("", catalogHandler.Create)

	portfolio := protected.Group("/portfolio")
	portfolio.GET("", portfolioHandler.Get)
	portfolio.GET("/stream", portfolioHandler.Stream)
	portfolio.POST("/buy", portfolioHandler.Buy)
	portfolio.POST("/holdings/:id/sell", portfolioHandler.Sell)
	portfolio.POST("/holdings/:id/add", portfolioHandler.AddShares)

	return &testApp{router: router, db: db, store: st, sessions: sessions}
}

// request performs a JSON request against the test router.
func (a *testApp) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// register creates a user through the API and returns its token and id.
func (a *testApp) register(t *testing.T, email string) (token, userID string) {
	t.Helper()

	w := a.request(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":    email,
		"password": "password123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode register response: %v", err)
	}
	return resp.Token, resp.User.ID
}

// errorCode extracts the error code from a JSON error response.
func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response %q: %v", w.Body.String(), err)
	}
	return resp.Error.Code
}
