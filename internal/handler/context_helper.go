package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-planner-api/internal/middleware"
	"github.com/noah-isme/timetable-planner-api/internal/models"
	appErrors "github.com/noah-isme/timetable-planner-api/pkg/errors"
	"github.com/noah-isme/timetable-planner-api/pkg/response"
)

// claimsFromContext returns the caller placed on the context by the JWT middleware, or nil
// for anonymous requests.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, _ := c.Get(middleware.ContextUserKey)
	claims, _ := value.(*models.JWTClaims)
	return claims
}

// requireClaims writes 401 and reports false when the request carries no caller.
func requireClaims(c *gin.Context) (*models.JWTClaims, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return claims, true
}

// studentScope picks whose plans or preferences a request acts on. Students are pinned to
// themselves; admins may name any student and default to their own id.
func studentScope(claims *models.JWTClaims, requested string) string {
	if claims.Role == models.RoleAdmin && requested != "" {
		return requested
	}
	return claims.UserID
}
