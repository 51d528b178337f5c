package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestAuthMiddlewareHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{"Empty header", "", http.StatusUnauthorized},
		{"Invalid format", "Token abc", http.StatusUnauthorized},
		{"Empty token", "Bearer ", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			req := httptest.NewRequest("GET", "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			c.Request = req

			handler := AuthMiddleware("secret")
			handler(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	token, err := GenerateAccessToken(5, "fan@example.com", RoleFan, testSecret)
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	c.Request = req

	AuthMiddleware(testSecret)(c)

	assert.Equal(t, http.StatusOK, w.Code)
	id, ok := GetUserID(c)
	assert.True(t, ok)
	assert.Equal(t, 5, id)

	role, ok := GetUserRole(c)
	assert.True(t, ok)
	assert.Equal(t, RoleFan, role)
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		userRole       any
		requiredRole   string
		expectedStatus int
	}{
		{"Matching role", RoleAdmin, RoleAdmin, http.StatusOK},
		{"Wrong role", RoleFan, RoleAdmin, http.StatusForbidden},
		{"Missing role", nil, RoleAdmin, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/", nil)

			if tt.userRole != nil {
				c.Set("user_role", tt.userRole)
			}

			RequireRole(tt.requiredRole)(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
