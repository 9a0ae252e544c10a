package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/OraComigo/models"
)

func (s *Server) GetCirculos(c *gin.Context) {
	circulos := s.Store.ListCirculos()

	views := make([]models.CirculoView, 0, len(circulos))
	for _, circulo := range circulos {
		views = append(views, circulo.View(false))
	}

	c.JSON(http.StatusOK, gin.H{"circulos": views})
}

func (s *Server) GetCirculo(c *gin.Context) {
	user := currentUser(c)

	circulo, err := s.Store.GetCirculo(c.Param("circulo_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"circulo":     circulo.View(true),
		"isMember":    user.HasJoined(circulo.Circulo_ID),
		"isModerator": circulo.IsModerator(user.User_ID),
	})
}

func (s *Server) CreateCirculo(c *gin.Context) {
	var input models.CirculoCreate

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	circulo, err := s.Store.CreateCirculo(c.Request.Context(), currentUser(c).User_ID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Circulo created successfully.",
		"circulo": circulo.View(false),
	})
}

func (s *Server) UpdateCirculo(c *gin.Context) {
	var patch models.CirculoUpdate

	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	circulo, err := s.Store.UpdateCirculoProfile(c.Request.Context(), c.Param("circulo_id"), currentUser(c).User_ID, patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"circulo": circulo.View(false)})
}

func (s *Server) ToggleMembership(c *gin.Context) {
	result, err := s.Store.ToggleMembership(c.Request.Context(), currentUser(c).User_ID, c.Param("circulo_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) GetCirculoMembers(c *gin.Context) {
	members, err := s.Store.GetCirculoMembers(c.Param("circulo_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": members})
}

func (s *Server) SetModeratorRole(c *gin.Context) {
	var input models.ModeratorRoleUpdate

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	circulo, err := s.Store.SetModeratorRole(c.Request.Context(), c.Param("circulo_id"), currentUser(c).User_ID, c.Param("user_id"), *input.Is_Moderator)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"moderatorIds": circulo.Moderator_IDs})
}

func (s *Server) RemoveMember(c *gin.Context) {
	targetID := c.Param("user_id")

	circulo, err := s.Store.RemoveMember(c.Request.Context(), c.Param("circulo_id"), currentUser(c).User_ID, targetID)
	if err != nil {
		respondError(c, err)
		return
	}

	if target, err := s.Store.GetUser(targetID); err == nil {
		go s.Notifier.NotifyMemberRemoved(target, circulo)
	} else {
		log.Warn().Err(err).Str("user_id", targetID).Msg("Removed member could not be loaded for notification")
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Member removed.",
		"memberCount": circulo.Member_Count,
	})
}

func (s *Server) AddScheduleItem(c *gin.Context) {
	var input models.ScheduleItemInput

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	circulo, err := s.Store.AddScheduleItem(c.Request.Context(), c.Param("circulo_id"), currentUser(c).User_ID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"schedule": circulo.Schedule})
}

func (s *Server) UpdateScheduleItem(c *gin.Context) {
	var input models.ScheduleItemInput

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	circulo, err := s.Store.UpdateScheduleItem(c.Request.Context(), c.Param("circulo_id"), c.Param("item_id"), currentUser(c).User_ID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"schedule": circulo.Schedule})
}

func (s *Server) DeleteScheduleItem(c *gin.Context) {
	circulo, err := s.Store.DeleteScheduleItem(c.Request.Context(), c.Param("circulo_id"), c.Param("item_id"), currentUser(c).User_ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"schedule": circulo.Schedule})
}

