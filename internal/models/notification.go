// internal/models/notification.go
package models

import "time"

// NotificationType distingue los avisos que genera el sistema.
type NotificationType string

const (
	NotificationTaskAssigned NotificationType = "task_assigned"
	NotificationTaskDueToday NotificationType = "task_due_today"
	NotificationTaskOverdue  NotificationType = "task_overdue"

	// Declarados en el esquema heredado; ningún flujo los emite todavía.
	NotificationTaskCompleted NotificationType = "task_completed"
	NotificationTaskUpdated   NotificationType = "task_updated"
)

// Notification es un aviso dirigido a un único usuario.
// Como máximo existe una fila por tupla (user_id, task_id, type);
// lo garantiza un índice único en la tabla.
type Notification struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	TaskID    *int64           `json:"task_id,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
}

// NotificationQuery pagina el listado por usuario.
type NotificationQuery struct {
	Limit      int
	Skip       int
	UnreadOnly bool
}
