// internal/models/task.go
package models

import "time"

// TaskStatus define los estados posibles de una tarea.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusResolved   TaskStatus = "resolved"
	// StatusCompleted existe en el esquema heredado pero ningún flujo lo asigna.
	StatusCompleted TaskStatus = "completed"
)

// Task representa una tarea municipal asignable a uno o varios empleados.
type Task struct {
	ID               int64      `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	DueDate          *time.Time `json:"due_date,omitempty"` // semántica de fecha: se compara a medianoche local
	Status           TaskStatus `json:"status"`
	DepartmentID     int64      `json:"department_id"`
	CreatorID        int64      `json:"creator_id"`
	AssigneeIDs      []int64    `json:"assignee_ids"`
	AttachmentIDs    []int64    `json:"attachment_ids"`
	ResolutionFileID *int64     `json:"resolution_file_id,omitempty"` // no nulo sii status=resolved
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// HasAssignee indica si el usuario ya figura entre los asignados.
func (t *Task) HasAssignee(userID int64) bool {
	for _, id := range t.AssigneeIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// TaskFilter define los parámetros disponibles para filtrar tareas.
type TaskFilter struct {
	AssigneeID   *int64
	CreatorID    *int64
	DepartmentID *int64
	Status       *TaskStatus
}
