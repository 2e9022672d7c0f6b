package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func protectedEngine(api *API) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	protected := r.Group("/draft")
	protected.Use(BearerAuthRequired(api.Auth()))
	protected.GET("/whoami", func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no user"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"username": user.Username})
	})
	return r
}

func TestBearerAuthRejectsMissingHeader(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	r := protectedEngine(api)

	req := httptest.NewRequest(http.MethodGet, "/draft/whoami", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}

func TestBearerAuthRejectsBadToken(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	r := protectedEngine(api)

	req := httptest.NewRequest(http.MethodGet, "/draft/whoami", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}

func TestBearerAuthResolvesUser(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	token, _, err := api.Auth().IssueToken("tester", "secret-1")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	r := protectedEngine(api)

	req := httptest.NewRequest(http.MethodGet, "/draft/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
}
