package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"school-management-api/config"
	"school-management-api/models"
	"school-management-api/services"
)

// ===== NOTIFICATION CONTROLLERS =====

// NotificationResponse carries the raw row plus, when the notification is an
// unlock-request message, its parsed display form (tags stripped, URL line
// moved into action_link). Notifications that fail to parse stay plain and
// non-actionable.
type NotificationResponse struct {
	models.Notification
	Unlock *services.UnlockRequestInfo `json:"unlock,omitempty"`
}

// GetNotifications lists the current user's notifications, newest first.
// Clients poll this endpoint; the same unread rows reappear until marked
// read, so consumers must tolerate duplicates.
func GetNotifications(c *gin.Context) {
	userID := c.GetInt("userID")

	query := config.DB.Model(&models.Notification{}).
		Where("user_id = ?", userID)
	if c.Query("unread_only") == "true" {
		query = query.Where("is_read = ?", false)
	}

	var notifications []models.Notification
	if err := query.Order("create_at DESC").Limit(200).Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	responses := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		resp := NotificationResponse{Notification: n}
		if info, ok := services.ParseUnlockRequest(n.Title, n.Message); ok {
			resp.Unlock = &info
		}
		responses = append(responses, resp)
	}

	c.JSON(http.StatusOK, gin.H{"notifications": responses})
}

// MarkNotificationRead handles PUT /notifications/:id/read. Only the
// recipient may mark their own notification.
func MarkNotificationRead(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	userID := c.GetInt("userID")

	var notif models.Notification
	if err := config.DB.Where("notification_id = ? AND user_id = ?", id, userID).First(&notif).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	now := time.Now()
	notif.IsRead = true
	notif.UpdateAt = &now
	if err := config.DB.Save(&notif).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// GetNotificationConfig exposes the polling interval so clients don't
// hardcode the staleness bound.
func GetNotificationConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"poll_interval_seconds": int(config.NotifyPollInterval().Seconds()),
	})
}
