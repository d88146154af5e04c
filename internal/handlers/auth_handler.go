package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"taskboard/internal/middleware"
	"taskboard/internal/models"
	"taskboard/internal/services"
	"taskboard/internal/utils"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 30 * 24 * time.Hour
)

type AuthHandler struct {
	userService services.UserService
	authService services.AuthService
}

func NewAuthHandler(userService services.UserService, authService services.AuthService) *AuthHandler {
	return &AuthHandler{userService: userService, authService: authService}
}

// POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[auth][login][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email := strings.TrimSpace(req.Email)
	log.Printf("[auth][login] attempt email=%q", email)

	user, err := h.userService.GetByEmail(c.Request.Context(), email)
	if err != nil || user == nil {
		log.Printf("[auth][login][deny] email=%q: %v", email, err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if err := h.authService.CheckPassword(user.PasswordHash, strings.TrimSpace(req.Password)); err != nil {
		log.Printf("[auth][login][deny] password mismatch userID=%d", user.ID)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	accessToken, err := h.signAccessToken(user.ID)
	if err != nil {
		log.Printf("[auth][login][err] sign access token userID=%d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}

	// Refresh (opaque) -> хранится в БД
	rt, err := utils.NewRefreshToken(32)
	if err != nil {
		log.Printf("[auth][login][err] new refresh token userID=%d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate refresh token"})
		return
	}
	rtExp := time.Now().Add(refreshTokenTTL)
	if err := h.userService.UpdateRefresh(c.Request.Context(), user.ID, rt, rtExp); err != nil {
		log.Printf("[auth][login][err] store refresh token userID=%d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store refresh token"})
		return
	}

	log.Printf("[auth][login][ok] userID=%d", user.ID)
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    user, // у модели PasswordHash помечен json:"-", наружу не уйдет
		"tokens": gin.H{
			"access_token":  accessToken,
			"refresh_token": rt,
		},
	})
}

// POST /refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	old := strings.TrimSpace(req.RefreshToken)
	user, err := h.userService.GetByRefreshToken(c.Request.Context(), old)
	if err != nil || user == nil || user.RefreshToken == nil || user.RefreshExpiresAt == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}
	if time.Now().After(*user.RefreshExpiresAt) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token expired"})
		return
	}

	// rotate refresh
	newRT, err := utils.NewRefreshToken(32)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rotate refresh token"})
		return
	}
	newExp := time.Now().Add(refreshTokenTTL)
	if err := h.userService.UpdateRefresh(c.Request.Context(), user.ID, newRT, newExp); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store refresh token"})
		return
	}

	accessToken, err := h.signAccessToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}

	log.Printf("[auth][refresh][ok] userID=%d", user.ID)
	c.JSON(http.StatusOK, gin.H{
		"access_token":  accessToken,
		"refresh_token": newRT,
	})
}

func (h *AuthHandler) signAccessToken(userID int64) (string, error) {
	claims := &middleware.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(middleware.SigningKey())
}
