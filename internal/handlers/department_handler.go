package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"munitask/internal/models"
	"munitask/internal/services"
)

type DepartmentHandler struct {
	service services.DepartmentService
}

func NewDepartmentHandler(service services.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{service: service}
}

// POST /departments
func (h *DepartmentHandler) Create(c *gin.Context) {
	var dep models.Department
	if err := c.ShouldBindJSON(&dep); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.Create(&dep); err != nil {
		respondError(c, "[department][create]", err)
		return
	}
	log.Printf("[department][create][ok] id=%d name=%q", dep.ID, dep.Name)
	c.JSON(http.StatusCreated, dep)
}

// GET /departments
func (h *DepartmentHandler) List(c *gin.Context) {
	deps, err := h.service.List()
	if err != nil {
		respondError(c, "[department][list]", err)
		return
	}
	c.JSON(http.StatusOK, deps)
}

// GET /departments/:id
func (h *DepartmentHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	dep, err := h.service.GetByID(id)
	if err != nil {
		respondError(c, "[department][getByID]", err)
		return
	}
	if dep == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "department not found"})
		return
	}
	c.JSON(http.StatusOK, dep)
}

// PUT /departments/:id
func (h *DepartmentHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var dep models.Department
	if err := c.ShouldBindJSON(&dep); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dep.ID = id
	if err := h.service.Update(&dep); err != nil {
		respondError(c, "[department][update]", err)
		return
	}
	log.Printf("[department][update][ok] id=%d", id)
	c.JSON(http.StatusOK, dep)
}

// DELETE /departments/:id
func (h *DepartmentHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.service.Delete(id); err != nil {
		respondError(c, "[department][delete]", err)
		return
	}
	log.Printf("[department][delete][ok] id=%d", id)
	c.JSON(http.StatusOK, gin.H{"message": "department deleted"})
}
