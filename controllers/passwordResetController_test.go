package controllers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OraComigo/models"
)

func TestForgotPassword(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
	}{
		{
			name:           "user not found - returns success for security",
			requestBody:    models.ForgotPasswordRequest{Email: "nonexistent@example.com"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "user exists but email is not configured",
			requestBody:    models.ForgotPasswordRequest{Email: "maria@example.com"},
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "invalid email",
			requestBody:    models.ForgotPasswordRequest{Email: "not-an-email"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing email",
			requestBody:    map[string]interface{}{"notEmail": "maria@example.com"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	s := SetupTestServer(t)
	mustSignup(t, s, MockUserSignup())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := SetupTestContext()
			SetJSONBody(c, "POST", "/auth/forgot-password", tt.requestBody)

			s.ForgotPassword(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestPasswordResetFlow(t *testing.T) {
	s := SetupTestServer(t)
	user := mustSignup(t, s, MockUserSignup())

	_, code, err := s.Store.RequestPasswordReset(user.Email)
	require.NoError(t, err)

	c, w := SetupTestContext()
	SetJSONBody(c, "POST", "/auth/verify-reset-code", models.VerifyResetCodeRequest{Email: user.Email, Code: code})
	s.VerifyResetCode(c)
	require.Equal(t, http.StatusOK, w.Code)

	var verified struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &verified))
	require.NotEmpty(t, verified.Token)

	c, w = SetupTestContext()
	SetJSONBody(c, "POST", "/auth/reset-password", models.ResetPasswordRequest{Token: verified.Token, NewPassword: "novaSenha1"})
	s.ResetPassword(c)
	require.Equal(t, http.StatusOK, w.Code)

	_, err = s.Store.Authenticate(user.Email, "novaSenha1")
	assert.NoError(t, err)
}

func TestVerifyResetCodeRejectsWrongCode(t *testing.T) {
	s := SetupTestServer(t)
	user := mustSignup(t, s, MockUserSignup())

	_, code, err := s.Store.RequestPasswordReset(user.Email)
	require.NoError(t, err)
	wrong := "000000"
	if code == wrong {
		wrong = "000001"
	}

	c, w := SetupTestContext()
	SetJSONBody(c, "POST", "/auth/verify-reset-code", models.VerifyResetCodeRequest{Email: user.Email, Code: wrong})
	s.VerifyResetCode(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotContains(t, w.Body.String(), "token")
}

func TestResetPasswordRejectsTokens(t *testing.T) {
	s := SetupTestServer(t)
	user := mustSignup(t, s, MockUserSignup())

	sessionToken, err := s.issueToken(user)
	require.NoError(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"reset_id": user.User_ID,
		"exp":      time.Now().Add(-time.Minute).Unix(),
	}).SignedString([]byte(s.Secret))
	require.NoError(t, err)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"reset_id": user.User_ID,
		"exp":      time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"session token is not a reset token", sessionToken},
		{"expired reset token", expired},
		{"wrong signature", forged},
		{"garbage", "not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := SetupTestContext()
			SetJSONBody(c, "POST", "/auth/reset-password", models.ResetPasswordRequest{Token: tt.token, NewPassword: "novaSenha1"})
			s.ResetPassword(c)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	_, err = s.Store.Authenticate(user.Email, "password123")
	assert.NoError(t, err)
}
