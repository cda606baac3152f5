package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"marketplace-svc/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func loggedRequest(t *testing.T, authenticated bool) observer.LoggedEntry {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(LoggerMiddleware(zap.New(core)))
	if authenticated {
		router.Use(func(c *gin.Context) {
			c.Set(principalKey, models.Principal{UserID: 5, Role: models.RoleSeller, Active: true})
			c.Next()
		})
	}
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 log entry, got %d", len(entries))
	}
	return entries[0]
}

func TestLoggerMiddleware_LogsPrincipal(t *testing.T) {
	entry := loggedRequest(t, true)

	fields := entry.ContextMap()
	if fields["role"] != "seller" {
		t.Errorf("Expected role %q, got %v", "seller", fields["role"])
	}
	if fields["user_id"] != int64(5) {
		t.Errorf("Expected user_id 5, got %v", fields["user_id"])
	}
	if fields["path"] != "/ping" {
		t.Errorf("Expected path %q, got %v", "/ping", fields["path"])
	}
}

func TestLoggerMiddleware_AnonymousRequestHasNoRole(t *testing.T) {
	entry := loggedRequest(t, false)

	fields := entry.ContextMap()
	if _, exists := fields["role"]; exists {
		t.Errorf("Expected no role field for anonymous request, got %v", fields["role"])
	}
	if fields["status"] != int64(http.StatusOK) {
		t.Errorf("Expected status %d, got %v", http.StatusOK, fields["status"])
	}
}
