package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/canteen-vms-api/internal/middleware"
	"github.com/noah-isme/canteen-vms-api/internal/models"
)

// timeNow is swapped in tests.
var timeNow = time.Now

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func profileFromClaims(claims *models.JWTClaims) models.UserInfo {
	return models.UserInfo{
		ID:           claims.UserID,
		SPNo:         claims.SPNo,
		FullName:     claims.FullName,
		Role:         claims.Role,
		CanteenID:    claims.CanteenID,
		CanteenName:  claims.CanteenName,
		LocationID:   claims.LocationID,
		LocationName: claims.LocationName,
	}
}
