package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OraComigo/models"
)

func (s *Server) GetPrayers(c *gin.Context) {
	user := currentUser(c)
	prayers := s.Store.ListPrayers(user.User_ID)

	category := models.PrayerCategory(c.Query("category"))
	devotions := c.Query("devotion") == "true"

	filtered := make([]*models.Prayer, 0, len(prayers))
	for _, p := range prayers {
		if category != "" && p.Category != category {
			continue
		}
		if c.Query("devotion") != "" && p.Is_Devotion != devotions {
			continue
		}
		filtered = append(filtered, p)
	}

	c.JSON(http.StatusOK, gin.H{
		"prayers":    filtered,
		"categories": models.PrayerCategories,
	})
}

func (s *Server) GetPrayer(c *gin.Context) {
	user := currentUser(c)

	prayer, err := s.Store.GetPrayer(c.Param("prayer_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !prayer.IsPublished() && !user.IsEditor() && prayer.Author_ID != user.User_ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "prayer not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"prayer":              prayer,
		"referencedPrayerIds": models.ReferencedPrayerIDs(prayer.Text),
	})
}

func (s *Server) CreatePrayer(c *gin.Context) {
	var input models.PrayerCreate

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prayer, err := s.Store.AddPrayer(c.Request.Context(), currentUser(c).User_ID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	if !prayer.IsPublished() {
		c.JSON(http.StatusAccepted, gin.H{
			"message": "Prayer sent for review.",
			"prayer":  prayer,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Prayer published successfully.",
		"prayer":  prayer,
	})
}

func (s *Server) UpdatePrayer(c *gin.Context) {
	var patch models.PrayerUpdate

	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prayer, err := s.Store.UpdatePrayer(c.Request.Context(), currentUser(c).User_ID, c.Param("prayer_id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"prayer": prayer})
}

func (s *Server) ApprovePrayer(c *gin.Context) {
	editorID := currentUser(c).User_ID

	prayer, err := s.Store.ApprovePrayer(c.Request.Context(), editorID, c.Param("prayer_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	go s.Notifier.NotifyAuthorOfPrayerApproved(context.Background(), prayer, editorID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Prayer approved.",
		"prayer":  prayer,
	})
}

// RecordPrayer is the "I prayed this" action.
func (s *Server) RecordPrayer(c *gin.Context) {
	record, err := s.Store.RecordPrayer(c.Request.Context(), currentUser(c).User_ID, c.Param("prayer_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

func (s *Server) ToggleFavorite(c *gin.Context) {
	favorites, err := s.Store.ToggleFavorite(c.Request.Context(), currentUser(c).User_ID, c.Param("prayer_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"favoritePrayerIds": favorites})
}
