package handlers

import (
	"log"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"munitask/internal/services"
)

type ReportHandler struct {
	service  services.ReportService
	filesDir string
}

func NewReportHandler(service services.ReportService, filesDir string) *ReportHandler {
	return &ReportHandler{service: service, filesDir: filesDir}
}

// @Summary      Resumen de tareas
// @Description  Contadores agregados por estado y departamento, más el total de vencidas
// @Tags         Reports
// @Produce      json
// @Success      200  {object}  models.TaskSummary
// @Router       /reports/tasks/summary [get]
func (h *ReportHandler) TaskSummary(c *gin.Context) {
	userID, roleID := getUserAndRole(c)
	log.Printf("[report][summary] call by userID=%d role=%d", userID, roleID)

	summary, err := h.service.TaskSummary(c.Request.Context())
	if err != nil {
		respondError(c, "[report][summary]", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GET /reports/tasks/overdue
func (h *ReportHandler) OverdueTasks(c *gin.Context) {
	userID, roleID := getUserAndRole(c)
	log.Printf("[report][overdue] call by userID=%d role=%d", userID, roleID)

	tasks, err := h.service.OverdueTasks(c.Request.Context())
	if err != nil {
		respondError(c, "[report][overdue]", err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// GET /reports/tasks/summary/pdf
func (h *ReportHandler) TaskSummaryPDF(c *gin.Context) {
	userID, roleID := getUserAndRole(c)
	log.Printf("[report][summary-pdf] call by userID=%d role=%d", userID, roleID)

	rel, err := h.service.ExportTaskSummaryPDF(c.Request.Context())
	if err != nil {
		respondError(c, "[report][summary-pdf]", err)
		return
	}
	name := filepath.Base(rel)
	abs := filepath.Join(h.filesDir, name)
	log.Printf("[report][summary-pdf][ok] file=%s", name)
	c.FileAttachment(abs, name)
}
