package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"median/refcheck"
	"median/store"
	"median/views"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// writeError maps store errors onto HTTP responses.
func writeError(c *gin.Context, err error) {
	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": verr.Fields})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrLocked):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, views.ErrReadOnly):
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// writeBlocked reports a deletion stopped by references.
func writeBlocked(c *gin.Context, result refcheck.Result) {
	c.JSON(http.StatusConflict, gin.H{
		"error":      result.Error,
		"references": result.References,
		"tooltip":    refcheck.Tooltip(result.References),
	})
}

// writeBindError reports a malformed body. Failed binding rules answer
// like store validation so forms see one error shape.
func writeBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		key := strings.ToLower(fe.Field())
		if _, seen := fields[key]; seen {
			continue
		}
		switch fe.Tag() {
		case "required", "min":
			fields[key] = fmt.Sprintf("%s is required", fe.Field())
		case "max":
			fields[key] = fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		default:
			fields[key] = fmt.Sprintf("%s is invalid", fe.Field())
		}
	}
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": fields})
}
