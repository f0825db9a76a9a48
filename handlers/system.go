package handlers

import (
	"net/http"

	"median/middleware"
	"median/models"
	"median/notify"
	"median/store"

	"github.com/gin-gonic/gin"
)

// Version is reported by the root banner.
var Version = "dev"

func HealthCheck(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status: "ok",
			Data:   s.Counts(),
		})
	}
}

func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    "median",
		"status":  "running",
		"version": Version,
	})
}

// Generate accepts a code generation request. Generation itself is not
// implemented; the namespace is checked so clients see real errors.
func Generate(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.GenerateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.NamespaceID == "" {
			req.NamespaceID = models.GlobalNamespaceID
		}
		if _, err := s.GetNamespace(req.NamespaceID); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{
			"status":       "not implemented",
			"namespace_id": req.NamespaceID,
		})
	}
}

// Notifications hands the caller its pending notifications and clears them.
func Notifications(n notify.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := n.Drain(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		if items == nil {
			items = []notify.Notification{}
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}
