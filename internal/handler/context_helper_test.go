package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-planner-api/internal/middleware"
	"github.com/noah-isme/timetable-planner-api/internal/models"
)

func TestRequireClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, w := newGinContext(http.MethodGet, "/plans", nil)
	claims, ok := requireClaims(c)
	assert.False(t, ok)
	assert.Nil(t, claims)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, _ = newGinContext(http.MethodGet, "/plans", nil)
	c.Set(middleware.ContextUserKey, "not-claims")
	assert.Nil(t, claimsFromContext(c))

	c, _ = newGinContext(http.MethodGet, "/plans", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "s1", Role: models.RoleStudent})
	claims, ok = requireClaims(c)
	require.True(t, ok)
	assert.Equal(t, "s1", claims.UserID)
}

func TestStudentScope(t *testing.T) {
	student := &models.JWTClaims{UserID: "s1", Role: models.RoleStudent}
	admin := &models.JWTClaims{UserID: "a1", Role: models.RoleAdmin}

	assert.Equal(t, "s1", studentScope(student, ""))
	assert.Equal(t, "s1", studentScope(student, "s9"))
	assert.Equal(t, "a1", studentScope(admin, ""))
	assert.Equal(t, "s9", studentScope(admin, "s9"))
}
