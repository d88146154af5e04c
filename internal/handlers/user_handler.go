package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/services"
)

type UserHandler struct {
	service services.UserService
}

func NewUserHandler(service services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// POST /register
func (h *UserHandler) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[user][register][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.service.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		log.Printf("[user][register][err] email=%q: %v", req.Email, err)
		respondError(c, err)
		return
	}
	log.Printf("[user][register][ok] id=%d email=%q", user.ID, user.Email)
	c.JSON(http.StatusCreated, user)
}

// GET /users/me
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	user, err := h.service.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// PUT /users/me/telegram { "chat_id": 123, "enable": true }
func (h *UserHandler) LinkTelegram(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req struct {
		ChatID int64 `json:"chat_id"`
		Enable bool  `json:"enable"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.LinkTelegram(c.Request.Context(), userID, req.ChatID, req.Enable); err != nil {
		log.Printf("[user][telegram][err] userID=%d: %v", userID, err)
		respondError(c, err)
		return
	}
	log.Printf("[user][telegram][ok] userID=%d chatID=%d enable=%v", userID, req.ChatID, req.Enable)
	c.JSON(http.StatusOK, gin.H{"message": "telegram settings updated"})
}
