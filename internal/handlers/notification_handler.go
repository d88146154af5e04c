package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taskboard/internal/services"
)

type NotificationHandler struct {
	service services.NotificationService
}

func NewNotificationHandler(service services.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// GET /notifications?unread=true
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	unreadOnly := c.Query("unread") == "true"

	notifications, err := h.service.ListFor(c.Request.Context(), userID, unreadOnly)
	if err != nil {
		log.Printf("[notif][list][err] userID=%d: %v", userID, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// POST /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	n, err := h.service.MarkRead(c.Request.Context(), id, userID)
	if err != nil {
		log.Printf("[notif][read][err] id=%d userID=%d: %v", id, userID, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// POST /notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	if err := h.service.MarkAllRead(c.Request.Context(), userID); err != nil {
		log.Printf("[notif][read-all][err] userID=%d: %v", userID, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "all notifications marked as read"})
}

// DELETE /notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, userID); err != nil {
		log.Printf("[notif][delete][err] id=%d userID=%d: %v", id, userID, err)
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
