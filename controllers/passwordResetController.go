package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog/log"

	"github.com/OraComigo/models"
	"github.com/OraComigo/services"
)

const resetTokenTTL = 5 * time.Minute

const forgotPasswordMessage = "If this email exists in our system, a verification code has been sent."

// ForgotPassword starts the reset flow by emailing a 6-digit code. The reply is
// the same whether or not the email is registered.
func (s *Server) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid email address is required", "details": err.Error()})
		return
	}

	user, code, err := s.Store.RequestPasswordReset(req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusOK, gin.H{"message": forgotPasswordMessage})
		return
	}

	if err := s.Notifier.SendPasswordReset(user, code); err != nil {
		if errors.Is(err, services.ErrEmailUnavailable) {
			log.Error().Str("user_id", user.User_ID).Msg("Password reset requested but email is not configured")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Email service unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send verification email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": forgotPasswordMessage})
}

// VerifyResetCode trades a valid code for a short-lived reset token.
func (s *Server) VerifyResetCode(c *gin.Context) {
	var req models.VerifyResetCodeRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and 6-digit code are required", "details": err.Error()})
		return
	}

	userID, err := s.Store.VerifyResetCode(req.Email, req.Code)
	if errors.Is(err, models.ErrPermissionDenied) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := s.issueResetToken(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Verification code is valid",
		"token":   token,
	})
}

func (s *Server) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token and new password are required", "details": err.Error()})
		return
	}

	userID, err := s.parseResetToken(req.Token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	if err := s.Store.ResetPassword(c.Request.Context(), userID, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password reset successfully. You can now login with your new password.",
	})
}

// issueResetToken signs a token carrying "reset_id" rather than "id", so
// CheckAuth never accepts it as a session.
func (s *Server) issueResetToken(userID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"reset_id": userID,
		"exp":      time.Now().Add(resetTokenTTL).Unix(),
	})
	return token.SignedString([]byte(s.Secret))
}

func (s *Server) parseResetToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.Secret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid reset token")
	}
	userID, ok := claims["reset_id"].(string)
	if !ok || userID == "" {
		return "", errors.New("reset token has no user")
	}
	return userID, nil
}
