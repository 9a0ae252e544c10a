package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OraComigo/models"
)

func (s *Server) GetUserNotifications(c *gin.Context) {
	notifications := s.Store.ListNotifications(currentUser(c).User_ID)

	unread := 0
	for _, n := range notifications {
		if n.Notification_Status == models.NotificationStatusUnread {
			unread++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"unreadCount":   unread,
	})
}

func (s *Server) ToggleUserNotificationStatus(c *gin.Context) {
	notification, err := s.Store.ToggleNotificationStatus(c.Request.Context(), currentUser(c).User_ID, c.Param("notification_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Notification marked as " + notification.Notification_Status,
		"notification": notification,
	})
}

func (s *Server) DeleteUserNotification(c *gin.Context) {
	if err := s.Store.DeleteNotification(c.Request.Context(), currentUser(c).User_ID, c.Param("notification_id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted successfully"})
}

func (s *Server) MarkAllNotificationsAsRead(c *gin.Context) {
	updated, err := s.Store.MarkAllNotificationsRead(c.Request.Context(), currentUser(c).User_ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "All notifications marked as read",
		"updatedCount": updated,
	})
}
