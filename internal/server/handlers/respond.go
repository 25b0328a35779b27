package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shoeshop/pos-backend/internal/domain/apperr"
)

// writeError maps the error taxonomy onto HTTP status codes and emits a
// structured body with the human-readable message.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindStorage:
		status = http.StatusInternalServerError
		logger.Error("storage failure", zap.Error(err))
	}

	c.JSON(status, gin.H{"message": err.Error()})
}
