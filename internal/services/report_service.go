package services

import (
	"context"
	"time"

	"munitask/internal/models"
	"munitask/internal/pdf"
	"munitask/internal/repositories"
)

type ReportService interface {
	TaskSummary(ctx context.Context) (*models.TaskSummary, error)
	OverdueTasks(ctx context.Context) ([]models.Task, error)
	ExportTaskSummaryPDF(ctx context.Context) (string, error)
}

type reportService struct {
	tasks     repositories.TaskRepository
	generator pdf.Generator
}

func NewReportService(tasks repositories.TaskRepository, generator pdf.Generator) ReportService {
	return &reportService{tasks: tasks, generator: generator}
}

func (s *reportService) TaskSummary(ctx context.Context) (*models.TaskSummary, error) {
	byStatus, err := s.tasks.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byDepartment, err := s.tasks.CountByDepartment(ctx)
	if err != nil {
		return nil, err
	}
	overdue, err := s.tasks.CountOverdue(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	var total int64
	for _, n := range byStatus {
		total += n
	}
	return &models.TaskSummary{
		Total:        total,
		ByStatus:     byStatus,
		ByDepartment: byDepartment,
		Overdue:      overdue,
	}, nil
}

// OverdueTasks lista las tareas abiertas con vencimiento anterior a hoy.
func (s *reportService) OverdueTasks(ctx context.Context) ([]models.Task, error) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.tasks.FindOverdue(ctx, today, scanStatuses)
}

func (s *reportService) ExportTaskSummaryPDF(ctx context.Context) (string, error) {
	summary, err := s.TaskSummary(ctx)
	if err != nil {
		return "", err
	}
	return s.generator.GenerateTaskSummary(pdf.SummaryData{
		Summary:     *summary,
		GeneratedAt: time.Now(),
	})
}
