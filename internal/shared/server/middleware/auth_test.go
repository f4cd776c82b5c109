package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"mathgen-backend/internal/shared/auth"
)

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth("/api/auth/", "/api/health"))
	router.GET("/api/problem-sets", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": UserIDFromContext(c)})
	})
	router.POST("/api/auth/login", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.OPTIONS("/api/problem-sets", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestAuthAllowsOptionsWithoutIdentity(t *testing.T) {
	router := newAuthRouter()
	req := httptest.NewRequest(http.MethodOptions, "/api/problem-sets", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestAuthSkipsPublicPrefixes(t *testing.T) {
	router := newAuthRouter()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestAuthRejectsMissingToken(t *testing.T) {
	router := newAuthRouter()
	req := httptest.NewRequest(http.MethodGet, "/api/problem-sets", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthAcceptsBearerToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "middleware-secret")
	token, err := auth.SignJWT(auth.Claims{Sub: "user-42", Email: "u@example.com"})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}

	router := newAuthRouter()
	req := httptest.NewRequest(http.MethodGet, "/api/problem-sets", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if body := resp.Body.String(); body != `{"user":"user-42"}` {
		t.Fatalf("unexpected body: %s", body)
	}
}
