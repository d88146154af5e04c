package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"taskboard/internal/models"
	"taskboard/internal/services"
)

type TaskHandler struct {
	service services.TaskService
}

func NewTaskHandler(service services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

type taskRequest struct {
	Title        string              `json:"title" binding:"required"`
	Description  string              `json:"description"`
	DeadlineDate string              `json:"deadline_date"` // RFC3339
	DeadlineTime string              `json:"deadline_time"` // "HH:MM"
	Priority     models.TaskPriority `json:"priority"`      // LOW|MEDIUM|HIGH
}

func (r *taskRequest) apply(t *models.Task) error {
	t.Title = r.Title
	t.Description = r.Description
	t.Priority = r.Priority
	t.DeadlineDate = nil
	t.DeadlineTime = nil
	if r.DeadlineDate != "" {
		parsed, err := time.Parse(time.RFC3339, r.DeadlineDate)
		if err != nil {
			return err
		}
		t.DeadlineDate = &parsed
	}
	if r.DeadlineTime != "" {
		dt := r.DeadlineTime
		t.DeadlineTime = &dt
	}
	return nil
}

// POST /tasks
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[task][create][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task := &models.Task{OwnerID: userID}
	if err := req.apply(task); err != nil {
		log.Printf("[task][create][err] invalid deadline_date=%q: %v", req.DeadlineDate, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deadline_date (RFC3339)"})
		return
	}

	created, err := h.service.Create(c.Request.Context(), task)
	if err != nil {
		log.Printf("[task][create][err] %v", err)
		respondError(c, err)
		return
	}
	log.Printf("[task][create][ok] id=%d owner=%d title=%q", created.ID, created.OwnerID, created.Title)
	c.JSON(http.StatusCreated, created)
}

// GET /tasks — задачи, где пользователь владелец ИЛИ с ним поделились
func (h *TaskHandler) List(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	tasks, err := h.service.ListFor(c.Request.Context(), userID)
	if err != nil {
		log.Printf("[task][list][err] userID=%d: %v", userID, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// GET /tasks/:id
func (h *TaskHandler) GetByID(c *gin.Context) {
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

	task, err := h.service.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// PUT /tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
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

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[task][update][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := &models.Task{}
	if err := req.apply(update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deadline_date (RFC3339)"})
		return
	}

	updated, err := h.service.Update(c.Request.Context(), userID, id, update)
	if err != nil {
		log.Printf("[task][update][err] id=%d userID=%d: %v", id, userID, err)
		respondError(c, err)
		return
	}
	log.Printf("[task][update][ok] id=%d", id)
	c.JSON(http.StatusOK, updated)
}

// POST /tasks/:id/toggle
func (h *TaskHandler) ToggleComplete(c *gin.Context) {
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

	task, err := h.service.ToggleComplete(c.Request.Context(), userID, id)
	if err != nil {
		log.Printf("[task][toggle][err] id=%d userID=%d: %v", id, userID, err)
		respondError(c, err)
		return
	}
	log.Printf("[task][toggle][ok] id=%d completed=%v", id, task.Completed)
	c.JSON(http.StatusOK, task)
}

// DELETE /tasks/:id — только владелец
func (h *TaskHandler) Delete(c *gin.Context) {
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

	if err := h.service.Delete(c.Request.Context(), userID, id); err != nil {
		log.Printf("[task][delete][err] id=%d userID=%d: %v", id, userID, err)
		respondError(c, err)
		return
	}
	log.Printf("[task][delete][ok] id=%d", id)
	c.Status(http.StatusNoContent)
}

// POST /tasks/:id/share { "user_id": 2 }
func (h *TaskHandler) Share(c *gin.Context) {
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

	var req struct {
		UserID int64 `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.service.Share(c.Request.Context(), userID, id, req.UserID)
	if err != nil {
		log.Printf("[task][share][err] id=%d owner=%d target=%d: %v", id, userID, req.UserID, err)
		respondError(c, err)
		return
	}
	log.Printf("[task][share][ok] id=%d target=%d", id, req.UserID)
	c.JSON(http.StatusOK, task)
}

// POST /tasks/:id/unshare { "user_id": 2 }
func (h *TaskHandler) Unshare(c *gin.Context) {
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

	var req struct {
		UserID int64 `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.service.Unshare(c.Request.Context(), userID, id, req.UserID)
	if err != nil {
		log.Printf("[task][unshare][err] id=%d owner=%d target=%d: %v", id, userID, req.UserID, err)
		respondError(c, err)
		return
	}
	log.Printf("[task][unshare][ok] id=%d target=%d", id, req.UserID)
	c.JSON(http.StatusOK, task)
}
