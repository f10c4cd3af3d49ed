// internal/middleware/auth_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/r2certify/r2v3-backend/internal/utils"
)

type AuthMiddlewareSuite struct {
	suite.Suite
	router *gin.Engine
}

func (s *AuthMiddlewareSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("test-secret")

	s.router = gin.New()
	protected := s.router.Group("/protected")
	protected.Use(AuthRequired())
	{
		protected.GET("/me", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"tenant_type": c.GetString("tenant_type"),
			})
		})

		clients := protected.Group("/clients")
		clients.Use(ConsultantRequired())
		{
			clients.GET("", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"ok": true})
			})
		}
	}
}

func (s *AuthMiddlewareSuite) token(tenantType string) string {
	token, err := utils.GenerateJWT(uuid.New(), uuid.New(), "pat@acme.example", tenantType, "owner", 1)
	s.Require().NoError(err)
	return token
}

func (s *AuthMiddlewareSuite) request(path, authHeader string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *AuthMiddlewareSuite) TestMissingTokenRejected() {
	w := s.request("/protected/me", "")
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

func (s *AuthMiddlewareSuite) TestMalformedHeaderRejected() {
	w := s.request("/protected/me", "Token abc123")
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

func (s *AuthMiddlewareSuite) TestGarbageTokenRejected() {
	w := s.request("/protected/me", "Bearer not-a-jwt")
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

func (s *AuthMiddlewareSuite) TestValidTokenAccepted() {
	w := s.request("/protected/me", "Bearer "+s.token("business"))
	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.Contains(s.T(), w.Body.String(), "business")
}

func (s *AuthMiddlewareSuite) TestConsultantGateBlocksBusinessTenant() {
	w := s.request("/protected/clients", "Bearer "+s.token("business"))
	assert.Equal(s.T(), http.StatusForbidden, w.Code)
}

func (s *AuthMiddlewareSuite) TestConsultantGateAdmitsConsultant() {
	w := s.request("/protected/clients", "Bearer "+s.token("consultant"))
	assert.Equal(s.T(), http.StatusOK, w.Code)
}

func TestAuthMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareSuite))
}
