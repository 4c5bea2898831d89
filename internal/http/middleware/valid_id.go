package middleware

import (
	"net/http"

	"github.com/edirooss/flowplan/internal/domain/flow"
	"github.com/gin-gonic/gin"
)

// RequireValidID ensures the path param ":id" is a well-formed device/connection id.
func RequireValidID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !flow.ValidID(c.Param("id")) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "malformed id"})
			return
		}
		c.Next()
	}
}
