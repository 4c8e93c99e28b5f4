package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/OM-MUDDAPUR/Stock-broker-app/internal/errors"
	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/engine"
	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/services"
	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/uuid"
)

// PortfolioHandler exposes the per-user portfolio session: the current
// view state, the three trade intents, and a live update stream.
//
// Trade intents return 202 with the optimistic snapshot: the local
// transform has applied but the store write is still in flight. The
// stream (or a later GET) reflects the reconciled outcome.
type PortfolioHandler struct {
	sessions     *engine.Manager
	auditService services.AuditServicer
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(sessions *engine.Manager, auditService services.AuditServicer) *PortfolioHandler {
	return &PortfolioHandler{sessions: sessions, auditService: auditService}
}

// BuyRequest represents the buy intent body
type BuyRequest struct {
	InstrumentID string `json:"instrument_id" binding:"required,uuid"`
}

// SharesRequest carries the share count the client's snapshot showed
// when the action was taken.
type SharesRequest struct {
	Shares int `json:"shares" binding:"required,min=1"`
}

// Get returns the current portfolio view state, starting a session on
// first access.
func (h *PortfolioHandler) Get(c *gin.Context) {
	eng, ok := h.session(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, eng.Snapshot())
}

// Buy handles the buy intent for an instrument.
func (h *PortfolioHandler) Buy(c *gin.Context) {
	eng, ok := h.session(c)
	if !ok {
		return
	}

	var req BuyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := eng.Buy(req.InstrumentID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(eng.UserID(), "buy", "holding", req.InstrumentID, c.ClientIP(), nil)

	c.JSON(http.StatusAccepted, eng.Snapshot())
}

// Sell handles the sell intent for a holding.
func (h *PortfolioHandler) Sell(c *gin.Context) {
	eng, ok := h.session(c)
	if !ok {
		return
	}

	holdingID, ok := holdingIDParam(c)
	if !ok {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid holding id"))
		return
	}

	var req SharesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := eng.Sell(holdingID, req.Shares); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(eng.UserID(), "sell", "holding", holdingID, c.ClientIP(), map[string]any{
		"shares_before": req.Shares,
	})

	c.JSON(http.StatusAccepted, eng.Snapshot())
}

// AddShares handles the add-shares intent for a holding.
func (h *PortfolioHandler) AddShares(c *gin.Context) {
	eng, ok := h.session(c)
	if !ok {
		return
	}

	holdingID, ok := holdingIDParam(c)
	if !ok {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid holding id"))
		return
	}

	var req SharesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := eng.AddShares(holdingID, req.Shares); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(eng.UserID(), "add_shares", "holding", holdingID, c.ClientIP(), map[string]any{
		"shares_before": req.Shares,
	})

	c.JSON(http.StatusAccepted, eng.Snapshot())
}

// Stream pushes view state updates over server-sent events until the
// client disconnects or the session closes.
func (h *PortfolioHandler) Stream(c *gin.Context) {
	eng, ok := h.session(c)
	if !ok {
		return
	}

	updates, unsubscribe := eng.Subscribe()
	defer unsubscribe()

	// Send the current state immediately so the client never starts blank.
	c.SSEvent("portfolio", eng.Snapshot())
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case state, open := <-updates:
			if !open {
				return false
			}
			c.SSEvent("portfolio", state)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// session resolves the caller's engine, writing the error response on
// failure.
func (h *PortfolioHandler) session(c *gin.Context) (*engine.Engine, bool) {
	userID, ok := getUserID(c)
	if !ok || !uuid.IsValid(userID) {
		respondWithError(c, apperrors.ErrUnauthorized)
		return nil, false
	}

	eng, err := h.sessions.Session(userID)
	if err != nil {
		respondWithError(c, err)
		return nil, false
	}
	return eng, true
}
