package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"munitask/internal/models"
	"munitask/internal/services"
)

type NotificationHandler struct {
	service services.NotificationService
}

func NewNotificationHandler(service services.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// @Summary      Listar avisos del usuario
// @Description  Devuelve los avisos del usuario autenticado, del más reciente al más antiguo
// @Tags         Notifications
// @Produce      json
// @Param        limit        query     int   false  "Máximo de filas (tope 100)"
// @Param        skip         query     int   false  "Desplazamiento"
// @Param        unread_only  query     bool  false  "Solo no leídos"
// @Success      200  {array}  models.Notification
// @Router       /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	log.Printf("[notification][list] call by userID=%d q=%v", userID, c.Request.URL.RawQuery)

	var q models.NotificationQuery
	if v, ok := c.GetQuery("limit"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			q.Limit = n
		}
	}
	if v, ok := c.GetQuery("skip"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			q.Skip = n
		}
	}
	if v, ok := c.GetQuery("unread_only"); ok {
		q.UnreadOnly = v == "true" || v == "1"
	}

	items, err := h.service.ListForUser(c.Request.Context(), userID, q)
	if err != nil {
		respondError(c, "[notification][list]", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GET /notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	count, err := h.service.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "[notification][unread-count]", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

// PATCH /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	n, err := h.service.MarkAsRead(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, "[notification][mark-read]", err)
		return
	}
	log.Printf("[notification][mark-read][ok] id=%d userID=%d", id, userID)
	c.JSON(http.StatusOK, n)
}

// POST /notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	updated, err := h.service.MarkAllAsRead(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "[notification][mark-all]", err)
		return
	}
	log.Printf("[notification][mark-all][ok] userID=%d updated=%d", userID, updated)
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// DELETE /notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.service.Delete(c.Request.Context(), id, userID); err != nil {
		respondError(c, "[notification][delete]", err)
		return
	}
	log.Printf("[notification][delete][ok] id=%d userID=%d", id, userID)
	c.JSON(http.StatusOK, gin.H{"message": "notification deleted"})
}
