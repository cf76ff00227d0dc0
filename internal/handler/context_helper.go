package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/flightline-ops/sortie-core/internal/middleware"
	"github.com/flightline-ops/sortie-core/internal/models"
)

func claimsFromContext(c *gin.Context) *models.OrgClaims {
	value, exists := c.Get(middleware.ContextClaimsKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.OrgClaims)
	if !ok {
		return nil
	}
	return claims
}

func orgFromContext(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		return claims.OrgID
	}
	return ""
}
