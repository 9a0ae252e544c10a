package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OraComigo/models"
)

func (s *Server) GetCirculoFeed(c *gin.Context) {
	circulo, err := s.Store.GetCirculo(c.Param("circulo_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":      circulo.Feed(),
		"pinnedPost": circulo.PinnedPost(),
	})
}

func (s *Server) CreatePost(c *gin.Context) {
	var input models.PostCreate

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := s.Store.AddPost(c.Request.Context(), c.Param("circulo_id"), currentUser(c).User_ID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"post": post})
}

// CreateReply answers a post or reply. An unknown parent is not an error: the
// response carries a nil reply.
func (s *Server) CreateReply(c *gin.Context) {
	var input models.PostCreate

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	circuloID := c.Param("circulo_id")
	reply, parentAuthorID, err := s.Store.AddReply(c.Request.Context(), circuloID, c.Param("post_id"), currentUser(c).User_ID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	if reply == nil {
		c.JSON(http.StatusOK, gin.H{"reply": nil})
		return
	}

	if circulo, err := s.Store.GetCirculo(circuloID); err == nil {
		go s.Notifier.NotifyAuthorOfReply(context.Background(), circulo, reply, parentAuthorID)
	}

	c.JSON(http.StatusCreated, gin.H{"reply": reply})
}

func (s *Server) React(c *gin.Context) {
	var input models.ReactionCreate

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := s.Store.React(c.Request.Context(), c.Param("circulo_id"), c.Param("post_id"), currentUser(c).User_ID, input.Emoji)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reactions": post.Reactions})
}

func (s *Server) DeletePost(c *gin.Context) {
	err := s.Store.DeletePost(c.Request.Context(), c.Param("circulo_id"), c.Param("post_id"), currentUser(c).User_ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted."})
}

func (s *Server) PinPost(c *gin.Context) {
	post, err := s.Store.PinPost(c.Request.Context(), c.Param("circulo_id"), c.Param("post_id"), currentUser(c).User_ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"postId":   post.Post_ID,
		"isPinned": post.Is_Pinned,
	})
}
