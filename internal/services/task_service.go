// internal/services/task_service.go
package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"munitask/internal/apperrors"
	"munitask/internal/models"
	"munitask/internal/repositories"
)

// TaskService es el único punto de entrada para mutar tareas.
// Los avisos síncronos (asignación) son efecto secundario en el mejor
// esfuerzo: su fallo se registra y nunca tumba la mutación.
type TaskService interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	GetAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, id int64, updateData *models.Task) (*models.Task, error)
	UpdateStatus(ctx context.Context, id int64, to models.TaskStatus) (*models.Task, error)
	Delete(ctx context.Context, id int64) error

	Assign(ctx context.Context, taskID, userID int64) (*models.Task, error)
	Unassign(ctx context.Context, taskID, userID int64) (*models.Task, error)
	Attach(ctx context.Context, taskID, fileID int64) (*models.Task, error)
	Detach(ctx context.Context, taskID, fileID int64) (*models.Task, error)
	Resolve(ctx context.Context, taskID, resolutionFileID int64) (*models.Task, error)
	Reopen(ctx context.Context, taskID int64) (*models.Task, error)
}

type taskService struct {
	repo          repositories.TaskRepository
	notifications repositories.NotificationRepository
	files         FileService
}

func NewTaskService(repo repositories.TaskRepository, notifications repositories.NotificationRepository, files FileService) TaskService {
	return &taskService{repo: repo, notifications: notifications, files: files}
}

func (s *taskService) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	if task.Title == "" {
		return nil, apperrors.Validation("title is required")
	}
	if task.DepartmentID == 0 {
		return nil, apperrors.Validation("department_id is required")
	}

	// toda tarea nace pendiente, decida lo que decida el cliente
	task.Status = models.StatusPending
	task.ResolutionFileID = nil
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	if err := s.repo.Store(ctx, task); err != nil {
		return nil, err
	}

	for _, uid := range task.AssigneeIDs {
		s.notifyAssigned(ctx, uid, task)
	}
	return task, nil
}

func (s *taskService) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *taskService) GetAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	return s.repo.FindAll(ctx, filter)
}

func (s *taskService) Update(ctx context.Context, id int64, updateData *models.Task) (*models.Task, error) {
	current, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}

	if updateData.Title == "" {
		return nil, apperrors.Validation("title is required")
	}

	if updateData.Status != current.Status {
		if !isKnownStatus(updateData.Status) {
			return nil, apperrors.Validation("unknown status %q", updateData.Status)
		}
		// resolved se entra por Resolve y se sale por Reopen; el update
		// genérico no puede saltarse el fichero de resolución
		if current.Status == models.StatusResolved || updateData.Status == models.StatusResolved {
			return nil, apperrors.Validation("status %q requires the resolve/reopen operations", models.StatusResolved)
		}
		if !canTransition(current.Status, updateData.Status) {
			return nil, apperrors.Validation("illegal status transition from %q to %q", current.Status, updateData.Status)
		}
	}

	current.Title = updateData.Title
	current.Description = updateData.Description
	current.DueDate = updateData.DueDate
	if updateData.DepartmentID != 0 {
		current.DepartmentID = updateData.DepartmentID
	}
	current.Status = updateData.Status
	current.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, current); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *taskService) UpdateStatus(ctx context.Context, id int64, to models.TaskStatus) (*models.Task, error) {
	current, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	if to == current.Status {
		return current, nil
	}
	if !isKnownStatus(to) {
		return nil, apperrors.Validation("unknown status %q", to)
	}
	if current.Status == models.StatusResolved || to == models.StatusResolved {
		return nil, apperrors.Validation("status %q requires the resolve/reopen operations", models.StatusResolved)
	}
	if !canTransition(current.Status, to) {
		return nil, apperrors.Validation("illegal status transition from %q to %q", current.Status, to)
	}

	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *taskService) Delete(ctx context.Context, id int64) error {
	current, err := s.mustGet(ctx, id)
	if err != nil {
		return err
	}

	// borrado en cascada de adjuntos, en el mejor esfuerzo
	for _, fid := range current.AttachmentIDs {
		if err := s.files.DeleteFile(ctx, fid); err != nil {
			log.Printf("[task][delete] attachment %d of task %d: %v", fid, id, err)
		}
	}
	if current.ResolutionFileID != nil {
		if err := s.files.DeleteFile(ctx, *current.ResolutionFileID); err != nil {
			log.Printf("[task][delete] resolution file %d of task %d: %v", *current.ResolutionFileID, id, err)
		}
	}
	return s.repo.Delete(ctx, id)
}

func (s *taskService) Assign(ctx context.Context, taskID, userID int64) (*models.Task, error) {
	current, err := s.mustGet(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if current.HasAssignee(userID) {
		// idempotente: ni escritura ni aviso repetido
		return current, nil
	}

	added, err := s.repo.AddAssignee(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}
	if added {
		s.notifyAssigned(ctx, userID, current)
	}
	return s.repo.FindByID(ctx, taskID)
}

func (s *taskService) Unassign(ctx context.Context, taskID, userID int64) (*models.Task, error) {
	if _, err := s.mustGet(ctx, taskID); err != nil {
		return nil, err
	}
	// quitar asignación no emite aviso
	if err := s.repo.RemoveAssignee(ctx, taskID, userID); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, taskID)
}

func (s *taskService) Attach(ctx context.Context, taskID, fileID int64) (*models.Task, error) {
	current, err := s.mustGet(ctx, taskID)
	if err != nil {
		return nil, err
	}

	f, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, apperrors.NotFound("file %d not found", fileID)
	}
	if f.TaskID != nil && *f.TaskID == taskID {
		return current, nil
	}
	if f.TaskID != nil {
		return nil, apperrors.Validation("file %d is already attached to task %d", fileID, *f.TaskID)
	}

	if err := s.files.Attach(ctx, fileID, taskID); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, taskID)
}

func (s *taskService) Detach(ctx context.Context, taskID, fileID int64) (*models.Task, error) {
	current, err := s.mustGet(ctx, taskID)
	if err != nil {
		return nil, err
	}

	f, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if f == nil || f.TaskID == nil || *f.TaskID != taskID {
		// no estaba adjunto: el detach repetido es un no-op
		return current, nil
	}
	if err := s.files.Detach(ctx, fileID); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, taskID)
}

func (s *taskService) Resolve(ctx context.Context, taskID, resolutionFileID int64) (*models.Task, error) {
	current, err := s.mustGet(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if current.Status != models.StatusPending && current.Status != models.StatusInProgress {
		return nil, apperrors.Validation("task %d cannot be resolved from status %q", taskID, current.Status)
	}

	f, err := s.files.GetByID(ctx, resolutionFileID)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, apperrors.NotFound("resolution file %d not found", resolutionFileID)
	}

	if err := s.repo.SetResolution(ctx, taskID, &resolutionFileID, models.StatusResolved); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, taskID)
}

func (s *taskService) Reopen(ctx context.Context, taskID int64) (*models.Task, error) {
	current, err := s.mustGet(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if current.Status != models.StatusResolved {
		return nil, apperrors.Validation("task %d is not resolved", taskID)
	}

	oldFile := current.ResolutionFileID
	if err := s.repo.SetResolution(ctx, taskID, nil, models.StatusPending); err != nil {
		return nil, err
	}

	// el fichero de resolución anterior se elimina en el mejor esfuerzo;
	// su fallo no bloquea la reapertura
	if oldFile != nil {
		if err := s.files.DeleteFile(ctx, *oldFile); err != nil {
			log.Printf("[task][reopen] resolution file %d of task %d: %v", *oldFile, taskID, err)
		}
	}
	return s.repo.FindByID(ctx, taskID)
}

func (s *taskService) mustGet(ctx context.Context, id int64) (*models.Task, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperrors.NotFound("task %d not found", id)
	}
	return current, nil
}

func (s *taskService) notifyAssigned(ctx context.Context, userID int64, task *models.Task) {
	n := &models.Notification{
		UserID:  userID,
		Type:    models.NotificationTaskAssigned,
		Title:   "Nueva tarea asignada",
		Message: fmt.Sprintf("Se te ha asignado la tarea: %s", task.Title),
		TaskID:  &task.ID,
	}
	if _, err := s.notifications.CreateDedup(ctx, n); err != nil {
		log.Printf("[task][notify] task_assigned user=%d task=%d: %v", userID, task.ID, err)
	}
}
