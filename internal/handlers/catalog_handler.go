package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/OM-MUDDAPUR/Stock-broker-app/internal/errors"
	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/services"
	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/store"
)

// CatalogHandler serves the instrument catalog.
type CatalogHandler struct {
	store        store.HoldingStore
	auditService services.AuditServicer
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(st store.HoldingStore, auditService services.AuditServicer) *CatalogHandler {
	return &CatalogHandler{store: st, auditService: auditService}
}

// CreateInstrumentRequest represents the instrument creation body
type CreateInstrumentRequest struct {
	Ticker string `json:"ticker" binding:"required,ticker"`
	Name   string `json:"name" binding:"required,min=1,max=120"`
}

// List returns every instrument in the catalog.
func (h *CatalogHandler) List(c *gin.Context) {
	instruments, err := h.store.ListInstruments()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"instruments": instruments})
}

// Create adds a new instrument to the catalog.
func (h *CatalogHandler) Create(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		respondWithError(c, apperrors.ErrUnauthorized)
		return
	}

	var req CreateInstrumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	instrument, err := h.store.CreateInstrument(req.Ticker, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "create", "instrument", instrument.ID, c.ClientIP(), map[string]any{
		"ticker": instrument.Ticker,
		"name":   instrument.Name,
	})

	c.JSON(http.StatusCreated, instrument)
}
