// internal/services/notification_engine.go
package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"munitask/internal/models"
	"munitask/internal/repositories"
)

// NotificationEngine recorre las tareas con vencimiento y garantiza que
// cada usuario asignado reciba exactamente un aviso por tipo. Un fallo
// al evaluar una unidad (tarea, usuario) se registra y se salta: no
// aborta el lote y se reintenta solo en el siguiente escaneo, porque
// nada quedó creado para esa unidad.
type NotificationEngine struct {
	tasks         repositories.TaskRepository
	notifications repositories.NotificationRepository

	now func() time.Time
}

func NewNotificationEngine(tasks repositories.TaskRepository, notifications repositories.NotificationRepository) *NotificationEngine {
	return &NotificationEngine{tasks: tasks, notifications: notifications, now: time.Now}
}

// estados no terminales que entran en el escaneo
var scanStatuses = []models.TaskStatus{models.StatusPending, models.StatusInProgress}

// tareas evaluadas en paralelo como máximo por pasada
const maxScanWorkers = 4

// Scan ejecuta una pasada completa: tareas que vencen hoy y tareas vencidas.
// La ventana "vence hoy" es el intervalo semiabierto [hoy 00:00, mañana 00:00).
func (e *NotificationEngine) Scan(ctx context.Context) error {
	now := e.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := today.AddDate(0, 0, 1)

	var created int

	dueToday, err := e.tasks.FindDueBetween(ctx, today, tomorrow, scanStatuses)
	if err != nil {
		log.Printf("[engine] due-today query failed: %v", err)
	} else {
		created += e.emitForTasks(ctx, dueToday, models.NotificationTaskDueToday)
	}

	overdue, err := e.tasks.FindOverdue(ctx, today, scanStatuses)
	if err != nil {
		log.Printf("[engine] overdue query failed: %v", err)
	} else {
		created += e.emitForTasks(ctx, overdue, models.NotificationTaskOverdue)
	}

	if ctx.Err() != nil {
		log.Printf("[engine] scan cancelled: %v", ctx.Err())
		return ctx.Err()
	}
	log.Printf("[engine] scan done due_today=%d overdue=%d created=%d", len(dueToday), len(overdue), created)
	return nil
}

// emitForTasks evalúa las tareas con concurrencia acotada; los usuarios de
// una misma tarea se recorren en secuencia. La corrección no depende del
// paralelismo sino de la escritura idempotente.
func (e *NotificationEngine) emitForTasks(ctx context.Context, tasks []models.Task, typ models.NotificationType) int {
	semaphore := make(chan struct{}, maxScanWorkers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0

	for i := range tasks {
		wg.Add(1)
		go func(t *models.Task) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			// sin asignados no hay a quién avisar
			for _, uid := range t.AssigneeIDs {
				if ctx.Err() != nil {
					return
				}
				if e.ensureNotified(ctx, uid, t, typ) {
					mu.Lock()
					created++
					mu.Unlock()
				}
			}
		}(&tasks[i])
	}
	wg.Wait()
	return created
}

// ensureNotified deja exactamente un aviso para la tupla (usuario, tarea, tipo).
// La lectura previa es solo un atajo; la corrección descansa en el índice
// único de notifications, que convierte el insert duplicado en un no-op.
func (e *NotificationEngine) ensureNotified(ctx context.Context, userID int64, t *models.Task, typ models.NotificationType) bool {
	exists, err := e.notifications.ExistsFor(ctx, userID, t.ID, typ)
	if err != nil {
		log.Printf("[engine] exists check failed user=%d task=%d type=%s: %v", userID, t.ID, typ, err)
		return false
	}
	if exists {
		// leído o no, el aviso no se recrea
		return false
	}

	n := &models.Notification{
		UserID: userID,
		Type:   typ,
		TaskID: &t.ID,
	}
	switch typ {
	case models.NotificationTaskDueToday:
		n.Title = "Tarea que vence hoy"
		n.Message = fmt.Sprintf("La tarea %q vence hoy", t.Title)
	case models.NotificationTaskOverdue:
		n.Title = "Tarea vencida"
		n.Message = fmt.Sprintf("La tarea %q está vencida", t.Title)
	default:
		log.Printf("[engine] unexpected notification type %s for task %d", typ, t.ID)
		return false
	}

	createdRow, err := e.notifications.CreateDedup(ctx, n)
	if err != nil {
		log.Printf("[engine] create failed user=%d task=%d type=%s: %v", userID, t.ID, typ, err)
		return false
	}
	if !createdRow {
		// otro escaneo ganó la carrera; el índice único hizo su trabajo
		return false
	}
	log.Printf("[engine] notified user=%d task=%d type=%s", userID, t.ID, typ)
	return true
}
