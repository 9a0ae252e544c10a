package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/OraComigo/metrics"
	"github.com/OraComigo/models"
	"github.com/OraComigo/services"
)

// Server holds what the handlers need. Every handler is a method so tests can
// build one around an in-memory store.
type Server struct {
	Store    *services.Store
	Notifier *services.Notifier
	Secret   string
	TokenTTL time.Duration
}

func NewServer(store *services.Store, notifier *services.Notifier, secret string, tokenTTL time.Duration) *Server {
	return &Server{
		Store:    store,
		Notifier: notifier,
		Secret:   secret,
		TokenTTL: tokenTTL,
	}
}

func currentUser(c *gin.Context) *models.User {
	return c.MustGet("currentUser").(*models.User)
}

// respondError maps the error taxonomy onto HTTP statuses. Anything outside it
// is logged and reported as a 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrPermissionDenied):
		metrics.RecordPermissionDenied(c.FullPath())
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Str("method", c.Request.Method).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
