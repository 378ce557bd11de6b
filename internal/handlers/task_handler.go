package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"munitask/internal/authz"
	"munitask/internal/models"
	"munitask/internal/services"
)

type TaskHandler struct {
	service services.TaskService
}

func NewTaskHandler(service services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// @Summary      Crear tarea
// @Description  Da de alta una tarea; siempre nace en estado pendiente
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Success      201  {object}  models.Task
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req struct {
		Title        string  `json:"title" binding:"required"`
		Description  string  `json:"description"`
		DueDate      string  `json:"due_date"` // RFC3339
		DepartmentID int64   `json:"department_id" binding:"required"`
		AssigneeIDs  []int64 `json:"assignee_ids"`
	}

	userID, roleID := getUserAndRole(c)
	log.Printf("[task][create] call by userID=%d role=%d", userID, roleID)

	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[task][create][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// los empleados solo pueden asignarse a sí mismos
	if roleID == authz.RoleEmployee {
		for _, aid := range req.AssigneeIDs {
			if aid != userID {
				log.Printf("[task][create][deny] employee=%d tried assign to %d", userID, aid)
				c.JSON(http.StatusForbidden, gin.H{"error": "employees can assign only to self"})
				return
			}
		}
	}

	var due *time.Time
	if req.DueDate != "" {
		t, err := time.Parse(time.RFC3339, req.DueDate)
		if err != nil {
			log.Printf("[task][create][err] invalid due_date=%q: %v", req.DueDate, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due_date (RFC3339)"})
			return
		}
		due = &t
	}

	task := &models.Task{
		Title:        req.Title,
		Description:  req.Description,
		DueDate:      due,
		DepartmentID: req.DepartmentID,
		CreatorID:    userID,
		AssigneeIDs:  req.AssigneeIDs,
	}

	created, err := h.service.Create(c.Request.Context(), task)
	if err != nil {
		respondError(c, "[task][create]", err)
		return
	}
	log.Printf("[task][create][ok] id=%d assignees=%d title=%q", created.ID, len(created.AssigneeIDs), created.Title)
	c.JSON(http.StatusCreated, created)
}

// @Summary      Detalle de tarea
// @Tags         Tasks
// @Produce      json
// @Param        id   path      int  true  "ID de la tarea"
// @Success      200  {object}  models.Task
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	userID, roleID := getUserAndRole(c)
	log.Printf("[task][getByID] call by userID=%d role=%d id_param=%s", userID, roleID, c.Param("id"))

	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	task, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, "[task][getByID]", err)
		return
	}
	if task == nil {
		log.Printf("[task][getByID][404] id=%d", id)
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.JSON(http.StatusOK, task)
}

// GET /tasks
func (h *TaskHandler) GetAll(c *gin.Context) {
	userID, roleID := getUserAndRole(c)
	log.Printf("[task][list] call by userID=%d role=%d q=%v", userID, roleID, c.Request.URL.RawQuery)

	var filter models.TaskFilter
	if v, ok := c.GetQuery("assignee_id"); ok {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.AssigneeID = &id
		}
	}
	if v, ok := c.GetQuery("creator_id"); ok {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.CreatorID = &id
		}
	}
	if v, ok := c.GetQuery("department_id"); ok {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.DepartmentID = &id
		}
	}
	if v, ok := c.GetQuery("status"); ok && v != "" {
		st := models.TaskStatus(v)
		filter.Status = &st
	}

	tasks, err := h.service.GetAll(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "[task][list]", err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// PUT /tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	userID, roleID := getUserAndRole(c)
	log.Printf("[task][update] call by userID=%d role=%d id_param=%s", userID, roleID, c.Param("id"))

	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req struct {
		Title        string            `json:"title" binding:"required"`
		Description  string            `json:"description"`
		DueDate      *string           `json:"due_date"` // RFC3339; null limpia la fecha
		DepartmentID int64             `json:"department_id"`
		Status       models.TaskStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var due *time.Time
	if req.DueDate != nil && *req.DueDate != "" {
		t, err := time.Parse(time.RFC3339, *req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due_date (RFC3339)"})
			return
		}
		due = &t
	}

	updated, err := h.service.Update(c.Request.Context(), id, &models.Task{
		Title:        req.Title,
		Description:  req.Description,
		DueDate:      due,
		DepartmentID: req.DepartmentID,
		Status:       req.Status,
	})
	if err != nil {
		respondError(c, "[task][update]", err)
		return
	}
	log.Printf("[task][update][ok] id=%d status=%s", updated.ID, updated.Status)
	c.JSON(http.StatusOK, updated)
}

// PATCH /tasks/:id/status
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	userID, roleID := getUserAndRole(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req struct {
		Status models.TaskStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, "[task][status]", err)
		return
	}
	log.Printf("[task][status][ok] id=%d status=%s by userID=%d role=%d", id, task.Status, userID, roleID)
	c.JSON(http.StatusOK, task)
}

// DELETE /tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	userID, roleID := getUserAndRole(c)
	log.Printf("[task][delete] call by userID=%d role=%d id_param=%s", userID, roleID, c.Param("id"))

	if !authz.IsElevated(roleID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, "[task][delete]", err)
		return
	}
	log.Printf("[task][delete][ok] id=%d", id)
	c.JSON(http.StatusOK, gin.H{"message": "task deleted"})
}

// POST /tasks/:id/assignees
func (h *TaskHandler) Assign(c *gin.Context) {
	userID, roleID := getUserAndRole(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
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

	if roleID == authz.RoleEmployee && req.UserID != userID {
		log.Printf("[task][assign][deny] employee=%d tried assign to %d", userID, req.UserID)
		c.JSON(http.StatusForbidden, gin.H{"error": "employees can assign only to self"})
		return
	}

	task, err := h.service.Assign(c.Request.Context(), id, req.UserID)
	if err != nil {
		respondError(c, "[task][assign]", err)
		return
	}
	log.Printf("[task][assign][ok] task=%d user=%d", id, req.UserID)
	c.JSON(http.StatusOK, task)
}

// DELETE /tasks/:id/assignees/:userId
func (h *TaskHandler) Unassign(c *gin.Context) {
	userID, roleID := getUserAndRole(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	target, ok := parseIDParam(c, "userId")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if roleID == authz.RoleEmployee && target != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "employees can unassign only themselves"})
		return
	}

	task, err := h.service.Unassign(c.Request.Context(), id, target)
	if err != nil {
		respondError(c, "[task][unassign]", err)
		return
	}
	log.Printf("[task][unassign][ok] task=%d user=%d", id, target)
	c.JSON(http.StatusOK, task)
}

// POST /tasks/:id/attachments
func (h *TaskHandler) Attach(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req struct {
		FileID int64 `json:"file_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	task, err := h.service.Attach(c.Request.Context(), id, req.FileID)
	if err != nil {
		respondError(c, "[task][attach]", err)
		return
	}
	log.Printf("[task][attach][ok] task=%d file=%d", id, req.FileID)
	c.JSON(http.StatusOK, task)
}

// DELETE /tasks/:id/attachments/:fileId
func (h *TaskHandler) Detach(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	fileID, ok := parseIDParam(c, "fileId")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file id"})
		return
	}
	task, err := h.service.Detach(c.Request.Context(), id, fileID)
	if err != nil {
		respondError(c, "[task][detach]", err)
		return
	}
	log.Printf("[task][detach][ok] task=%d file=%d", id, fileID)
	c.JSON(http.StatusOK, task)
}

// @Summary      Resolver tarea
// @Description  Cierra la tarea adjuntando el fichero de resolución
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        id   path      int  true  "ID de la tarea"
// @Success      200  {object}  models.Task
// @Failure      400  {object}  map[string]string
// @Router       /tasks/{id}/resolve [post]
func (h *TaskHandler) Resolve(c *gin.Context) {
	userID, roleID := getUserAndRole(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req struct {
		ResolutionFileID int64 `json:"resolution_file_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// el empleado solo puede resolver tareas que tiene asignadas
	if roleID == authz.RoleEmployee {
		current, err := h.service.GetByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, "[task][resolve]", err)
			return
		}
		if current == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		if !current.HasAssignee(userID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not assigned to this task"})
			return
		}
	}

	task, err := h.service.Resolve(c.Request.Context(), id, req.ResolutionFileID)
	if err != nil {
		respondError(c, "[task][resolve]", err)
		return
	}
	log.Printf("[task][resolve][ok] task=%d file=%d", id, req.ResolutionFileID)
	c.JSON(http.StatusOK, task)
}

// POST /tasks/:id/reopen
func (h *TaskHandler) Reopen(c *gin.Context) {
	_, roleID := getUserAndRole(c)
	if !authz.IsElevated(roleID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	task, err := h.service.Reopen(c.Request.Context(), id)
	if err != nil {
		respondError(c, "[task][reopen]", err)
		return
	}
	log.Printf("[task][reopen][ok] task=%d", id)
	c.JSON(http.StatusOK, task)
}
