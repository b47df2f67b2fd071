package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/rental_ledger/internal/apperrors"
	"github.com/SscSPs/rental_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// respondWithError maps a service error to an HTTP status and writes it.
// fallback is the message used for unexpected failures so internals are not leaked.
func respondWithError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	var unbalanced *apperrors.UnbalancedEntryError
	var unknown *apperrors.UnknownAccountError

	switch {
	case errors.As(err, &unbalanced):
		logger.Warn("Unbalanced entry rejected", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":       err.Error(),
			"totalDebit":  unbalanced.TotalDebit,
			"totalCredit": unbalanced.TotalCredit,
			"difference":  unbalanced.Difference(),
		})
	case errors.As(err, &unknown):
		logger.Warn("Entry references unknown account", slog.String("account_code", unknown.Code))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "accountCode": unknown.Code})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate), errors.Is(err, apperrors.ErrConflict):
		logger.Warn("Conflict", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		logger.Warn("Forbidden", slog.String("error", err.Error()))
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// requireUserID reads the authenticated subject or writes 401.
func requireUserID(c *gin.Context, logger *slog.Logger) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
	return userID, ok
}
