package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"munitask/internal/authz"
	"munitask/internal/models"
	"munitask/internal/services"
)

type UserHandler struct {
	service services.UserService
}

func NewUserHandler(service services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// @Summary      Alta de usuario
// @Description  Crea un usuario; solo administradores
// @Tags         Users
// @Accept       json
// @Produce      json
// @Success      201  {object}  models.User
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	userID, roleID := getUserAndRole(c)
	log.Printf("[user][create] call by userID=%d role=%d", userID, roleID)

	var req struct {
		FullName     string `json:"full_name" binding:"required"`
		Email        string `json:"email" binding:"required,email"`
		Password     string `json:"password" binding:"required,min=6"`
		RoleID       int    `json:"role_id" binding:"required"`
		DepartmentID *int64 `json:"department_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[user][create][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := &models.User{
		FullName:     strings.TrimSpace(req.FullName),
		Email:        req.Email,
		RoleID:       req.RoleID,
		DepartmentID: req.DepartmentID,
	}
	if err := h.service.CreateUser(user, req.Password); err != nil {
		respondError(c, "[user][create]", err)
		return
	}
	log.Printf("[user][create][ok] id=%d email=%q role=%d", user.ID, user.Email, user.RoleID)
	c.JSON(http.StatusCreated, user)
}

// GET /users/:id
func (h *UserHandler) GetByID(c *gin.Context) {
	requesterID, roleID := getUserAndRole(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	// un empleado solo ve su propia ficha
	if roleID == authz.RoleEmployee && id != requesterID {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
		return
	}

	user, err := h.service.GetUserByID(id)
	if err != nil {
		respondError(c, "[user][getByID]", err)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// GET /users
func (h *UserHandler) List(c *gin.Context) {
	userID, roleID := getUserAndRole(c)
	log.Printf("[user][list] call by userID=%d role=%d", userID, roleID)

	limit := 50
	offset := 0
	if v, ok := c.GetQuery("limit"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v, ok := c.GetQuery("offset"); ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	users, err := h.service.ListUsers(limit, offset)
	if err != nil {
		respondError(c, "[user][list]", err)
		return
	}
	total, err := h.service.GetUserCount()
	if err != nil {
		respondError(c, "[user][list]", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": users, "total": total})
}

// GET /users/count
func (h *UserHandler) GetCount(c *gin.Context) {
	total, err := h.service.GetUserCount()
	if err != nil {
		respondError(c, "[user][count]", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": total})
}

// GET /users/count/role/:role_id
func (h *UserHandler) GetCountByRole(c *gin.Context) {
	roleID, err := strconv.Atoi(c.Param("role_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role id"})
		return
	}
	total, err := h.service.GetUserCountByRole(roleID)
	if err != nil {
		respondError(c, "[user][count-by-role]", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"role_id": roleID, "count": total})
}

// PUT /users/:id
func (h *UserHandler) Update(c *gin.Context) {
	requesterID, roleID := getUserAndRole(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req struct {
		FullName     string `json:"full_name" binding:"required"`
		Email        string `json:"email" binding:"required,email"`
		RoleID       int    `json:"role_id"`
		DepartmentID *int64 `json:"department_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	current, err := h.service.GetUserByID(id)
	if err != nil {
		respondError(c, "[user][update]", err)
		return
	}
	if current == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	// cambiar el rol exige administrador
	if req.RoleID != 0 && req.RoleID != current.RoleID && roleID != authz.RoleAdmin {
		log.Printf("[user][update][deny] userID=%d role=%d tried role change on %d", requesterID, roleID, id)
		c.JSON(http.StatusForbidden, gin.H{"error": "only admins can change roles"})
		return
	}

	current.FullName = strings.TrimSpace(req.FullName)
	current.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.RoleID != 0 {
		current.RoleID = req.RoleID
	}
	current.DepartmentID = req.DepartmentID

	if err := h.service.UpdateUser(current); err != nil {
		respondError(c, "[user][update]", err)
		return
	}
	log.Printf("[user][update][ok] id=%d", id)
	c.JSON(http.StatusOK, current)
}

// DELETE /users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	requesterID, roleID := getUserAndRole(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if roleID != authz.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
		return
	}
	if id == requesterID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete own account"})
		return
	}
	if err := h.service.DeleteUser(id); err != nil {
		respondError(c, "[user][delete]", err)
		return
	}
	log.Printf("[user][delete][ok] id=%d by userID=%d", id, requesterID)
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}
