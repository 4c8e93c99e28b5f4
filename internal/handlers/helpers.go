package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/OM-MUDDAPUR/Stock-broker-app/internal/errors"
	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/logger"
	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/uuid"
)

// getUserID extracts the authenticated user's id from the Gin context.
func getUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("userID")
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// respondWithError writes a consistent JSON error response. AppErrors
// map to their own status and code; anything else becomes a generic 500.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("request failed",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	logger.Get().Errorw("request failed",
		"error", err.Error(),
		"path", c.Request.URL.Path,
	)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrInternalServer.Code,
			"message": apperrors.ErrInternalServer.Message,
		},
	})
}

// holdingIDParam reads and validates the :id path parameter. Both
// store-assigned UUIDs and provisional ids are accepted: a user can act
// on a holding whose insert has not yet confirmed.
func holdingIDParam(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if uuid.IsValid(id) || uuid.IsProvisional(id) {
		return id, true
	}
	return "", false
}
