package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog/log"

	"github.com/OraComigo/models"
)

func (s *Server) UserSignup(c *gin.Context) {
	var input models.UserSignup

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := s.Store.Signup(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	go s.Notifier.SendWelcome(user)

	token, err := s.issueToken(user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully.",
		"token":   token,
		"user":    user,
	})
}

func (s *Server) UserLogin(c *gin.Context) {
	var input models.Login

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := s.Store.Authenticate(input.Email, input.Password)
	if errors.Is(err, models.ErrPermissionDenied) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := s.issueToken(user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User logged in successfully.",
		"token":   token,
		"user":    user,
	})
}

func (s *Server) issueToken(user *models.User) (string, error) {
	generateToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   user.User_ID,
		"exp":  time.Now().Add(s.TokenTTL).Unix(),
		"role": string(user.Role),
	})

	token, err := generateToken.SignedString([]byte(s.Secret))
	if err != nil {
		log.Error().Err(err).Str("user_id", user.User_ID).Msg("Failed to sign token")
		return "", err
	}
	return token, nil
}

// GetUserProfile returns the caller with everything the home screen needs.
func (s *Server) GetUserProfile(c *gin.Context) {
	user := currentUser(c)

	c.JSON(http.StatusOK, gin.H{
		"user":            user,
		"editor":          c.MustGet("editor"),
		"gracesPerPrayer": s.Store.GracesPerPrayer(),
		"levels":          models.LevelTiers,
	})
}

func (s *Server) StorePushToken(c *gin.Context) {
	var req models.PushTokenRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := currentUser(c)
	if err := s.Store.StorePushToken(c.Request.Context(), user.User_ID, req.PushToken, req.Platform); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Push token stored successfully"})
}
