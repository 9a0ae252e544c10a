package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OraComigo/models"
)

func (s *Server) AddScheduleSlot(c *gin.Context) {
	var input models.ScheduleSlotCreate

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	schedule, err := s.Store.AddScheduleSlot(c.Request.Context(), currentUser(c).User_ID, input.Period, input.Prayer_ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"schedule": schedule})
}

func (s *Server) UpdateScheduleSlot(c *gin.Context) {
	var input models.ScheduleSlotUpdate

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	schedule, err := s.Store.UpdateScheduleSlot(c.Request.Context(), currentUser(c).User_ID, c.Param("schedule_id"), input.Prayer_ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"schedule": schedule})
}

func (s *Server) RemoveScheduleSlot(c *gin.Context) {
	schedule, err := s.Store.RemoveScheduleSlot(c.Request.Context(), currentUser(c).User_ID, c.Param("schedule_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"schedule": schedule})
}

func (s *Server) ToggleSlotCompletion(c *gin.Context) {
	user, err := s.Store.ToggleSlotCompletion(c.Request.Context(), currentUser(c).User_ID, c.Param("schedule_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"schedule": user.Schedule,
		"history":  user.History,
		"streak":   user.Streak,
	})
}
