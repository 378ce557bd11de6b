package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"munitask/internal/models"
	"munitask/internal/services"
)

type RoleHandler struct {
	service services.RoleService
}

func NewRoleHandler(service services.RoleService) *RoleHandler {
	return &RoleHandler{service: service}
}

// POST /roles
func (h *RoleHandler) Create(c *gin.Context) {
	var role models.Role
	if err := c.ShouldBindJSON(&role); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.CreateRole(&role); err != nil {
		respondError(c, "[role][create]", err)
		return
	}
	log.Printf("[role][create][ok] id=%d name=%q", role.ID, role.Name)
	c.JSON(http.StatusCreated, role)
}

// GET /roles
func (h *RoleHandler) List(c *gin.Context) {
	roles, err := h.service.ListRoles()
	if err != nil {
		respondError(c, "[role][list]", err)
		return
	}
	c.JSON(http.StatusOK, roles)
}

// GET /roles/count
func (h *RoleHandler) GetCount(c *gin.Context) {
	total, err := h.service.GetRoleCount()
	if err != nil {
		respondError(c, "[role][count]", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": total})
}

// GET /roles/:id
func (h *RoleHandler) GetByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	role, err := h.service.GetRoleByID(id)
	if err != nil {
		respondError(c, "[role][getByID]", err)
		return
	}
	if role == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "role not found"})
		return
	}
	c.JSON(http.StatusOK, role)
}

// PUT /roles/:id
func (h *RoleHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var role models.Role
	if err := c.ShouldBindJSON(&role); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	role.ID = id
	if err := h.service.UpdateRole(&role); err != nil {
		respondError(c, "[role][update]", err)
		return
	}
	log.Printf("[role][update][ok] id=%d", id)
	c.JSON(http.StatusOK, role)
}

// DELETE /roles/:id
func (h *RoleHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.service.DeleteRole(id); err != nil {
		respondError(c, "[role][delete]", err)
		return
	}
	log.Printf("[role][delete][ok] id=%d", id)
	c.JSON(http.StatusOK, gin.H{"message": "role deleted"})
}
