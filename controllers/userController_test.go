package controllers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OraComigo/models"
)

func TestUserSignup(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
		expectEditor   bool
	}{
		{
			name:           "successful signup",
			body:           MockUserSignup(),
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "editor email gets editor role",
			body:           MockEditorSignup(),
			expectedStatus: http.StatusCreated,
			expectEditor:   true,
		},
		{
			name:           "missing password",
			body:           map[string]string{"name": "Maria", "email": "maria@example.com"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "short password",
			body:           models.UserSignup{Name: "Maria", Email: "maria@example.com", Password: "123"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := SetupTestServer(t)
			c, w := SetupTestContext()
			SetJSONBody(c, "POST", "/signup", tt.body)

			s.UserSignup(c)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			if tt.expectedStatus != http.StatusCreated {
				assert.NotNil(t, response["error"])
				return
			}

			assert.NotEmpty(t, response["token"])
			user := response["user"].(map[string]interface{})
			assert.Equal(t, "Peregrino", user["level"])
			if tt.expectEditor {
				assert.Equal(t, "EDITOR", user["role"])
			} else {
				assert.Equal(t, "USER", user["role"])
			}
			assert.NotContains(t, w.Body.String(), "password123")
		})
	}
}

func TestUserSignupDuplicateEmail(t *testing.T) {
	s := SetupTestServer(t)
	mustSignup(t, s, MockUserSignup())

	c, w := SetupTestContext()
	SetJSONBody(c, "POST", "/signup", MockUserSignup())
	s.UserSignup(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUserLogin(t *testing.T) {
	tests := []struct {
		name           string
		login          models.Login
		expectedStatus int
	}{
		{
			name:           "successful login",
			login:          models.Login{Email: "maria@example.com", Password: "password123"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "wrong password",
			login:          models.Login{Email: "maria@example.com", Password: "wrong"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "unknown email",
			login:          models.Login{Email: "nobody@example.com", Password: "password123"},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	s := SetupTestServer(t)
	user := mustSignup(t, s, MockUserSignup())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := SetupTestContext()
			SetJSONBody(c, "POST", "/login", tt.login)

			s.UserLogin(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var response struct {
				Token string      `json:"token"`
				User  models.User `json:"user"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, user.User_ID, response.User.User_ID)

			token, err := jwt.Parse(response.Token, func(*jwt.Token) (interface{}, error) {
				return []byte(s.Secret), nil
			})
			require.NoError(t, err)
			claims := token.Claims.(jwt.MapClaims)
			assert.Equal(t, user.User_ID, claims["id"])
			assert.Equal(t, "USER", claims["role"])
		})
	}
}

func TestGetUserProfile(t *testing.T) {
	s := SetupTestServer(t)
	user := mustSignup(t, s, MockUserSignup())

	c, w := SetupTestContext()
	SetAuthenticatedUser(c, user)
	s.GetUserProfile(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, false, response["editor"])
	assert.Equal(t, float64(5), response["gracesPerPrayer"])
	assert.Len(t, response["levels"], 4)
}

func TestStorePushToken(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
	}{
		{"valid ios token", models.PushTokenRequest{PushToken: "tok-1", Platform: "ios"}, http.StatusOK},
		{"invalid platform", models.PushTokenRequest{PushToken: "tok-1", Platform: "web"}, http.StatusBadRequest},
		{"missing token", map[string]string{"platform": "android"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := SetupTestServer(t)
			user := mustSignup(t, s, MockUserSignup())

			c, w := SetupTestContext()
			SetAuthenticatedUser(c, user)
			SetJSONBody(c, "POST", "/users/push-token", tt.body)
			s.StorePushToken(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Len(t, s.Store.PushTokens(user.User_ID), 1)
			}
		})
	}
}
