package controllers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OraComigo/models"
	"github.com/OraComigo/services"
	"github.com/OraComigo/storage"
)

// SetupTestServer builds a Server around an empty in-memory store.
func SetupTestServer(t *testing.T) *Server {
	t.Helper()
	store := services.NewStore(services.Options{
		Backend:      storage.NewMemoryBackend(),
		EditorEmails: []string{MockEditorSignup().Email},
	})
	return NewServer(store, nil, "test-secret-key", time.Hour)
}

// SetupTestContext creates a test Gin context with a response recorder
func SetupTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	return c, w
}

// SetAuthenticatedUser sets the currentUser and editor values in the Gin context
// This simulates what the CheckAuth middleware does
func SetAuthenticatedUser(c *gin.Context, user *models.User) {
	c.Set("currentUser", user)
	c.Set("editor", user.IsEditor())
}

// SetJSONBody attaches body as the request's JSON payload.
func SetJSONBody(c *gin.Context, method, path string, body interface{}) {
	jsonData, _ := json.Marshal(body)
	c.Request = httptest.NewRequest(method, path, bytes.NewBuffer(jsonData))
	c.Request.Header.Set("Content-Type", "application/json")
}

func SetParams(c *gin.Context, params ...string) {
	for i := 0; i+1 < len(params); i += 2 {
		c.Params = append(c.Params, gin.Param{Key: params[i], Value: params[i+1]})
	}
}
