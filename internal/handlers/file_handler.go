package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"munitask/internal/authz"
	"munitask/internal/services"
)

type FileHandler struct {
	service services.FileService
}

func NewFileHandler(service services.FileService) *FileHandler {
	return &FileHandler{service: service}
}

// @Summary      Subir fichero
// @Description  Sube un fichero al almacenamiento local; queda suelto hasta adjuntarse a una tarea
// @Tags         Files
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Fichero"
// @Success      201   {object}  models.File
// @Failure      400   {object}  map[string]string
// @Router       /files [post]
func (h *FileHandler) Upload(c *gin.Context) {
	userID, roleID := getUserAndRole(c)
	log.Printf("[file][upload] call by userID=%d role=%d", userID, roleID)

	header, err := c.FormFile("file")
	if err != nil {
		log.Printf("[file][upload][err] form file: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field is required"})
		return
	}

	f, err := h.service.SaveUpload(c.Request.Context(), header, userID)
	if err != nil {
		respondError(c, "[file][upload]", err)
		return
	}
	log.Printf("[file][upload][ok] id=%d name=%q size=%d", f.ID, f.FileName, f.Size)
	c.JSON(http.StatusCreated, f)
}

// GET /files/:id
func (h *FileHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	f, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, "[file][get]", err)
		return
	}
	if f == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	c.JSON(http.StatusOK, f)
}

// GET /files/:id/download
func (h *FileHandler) Download(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	f, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, "[file][download]", err)
		return
	}
	if f == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	log.Printf("[file][download][ok] id=%d name=%q", f.ID, f.FileName)
	c.FileAttachment(h.service.AbsolutePath(f), f.FileName)
}

// GET /tasks/:id/files
func (h *FileHandler) ListByTask(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	files, err := h.service.ListByTask(c.Request.Context(), taskID)
	if err != nil {
		respondError(c, "[file][list-by-task]", err)
		return
	}
	c.JSON(http.StatusOK, files)
}

// DELETE /files/:id
func (h *FileHandler) Delete(c *gin.Context) {
	userID, roleID := getUserAndRole(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	f, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, "[file][delete]", err)
		return
	}
	if f == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	// solo el que subió el fichero o un rol elevado pueden borrarlo
	if f.UploadedBy != userID && !authz.IsElevated(roleID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot delete files uploaded by others"})
		return
	}

	if err := h.service.DeleteFile(c.Request.Context(), id); err != nil {
		respondError(c, "[file][delete]", err)
		return
	}
	log.Printf("[file][delete][ok] id=%d by userID=%d", id, userID)
	c.JSON(http.StatusOK, gin.H{"message": "file deleted"})
}
