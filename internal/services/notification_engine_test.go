package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"munitask/internal/models"
)

var engineNow = time.Date(2025, time.March, 12, 10, 30, 0, 0, time.Local)

func newTestEngine(tasks *fakeTaskRepo, notifications *fakeNotificationRepo) *NotificationEngine {
	e := NewNotificationEngine(tasks, notifications)
	e.now = func() time.Time { return engineNow }
	return e
}

func dueAt(t time.Time) *time.Time { return &t }

func TestEngineNotifiesEveryAssigneeOnce(t *testing.T) {
	tasks := newFakeTaskRepo()
	notifs := newFakeNotificationRepo()

	tasks.put(&models.Task{
		Title:        "Reparar lámpara del puente",
		Status:       models.StatusPending,
		DepartmentID: 1,
		AssigneeIDs:  []int64{7, 9},
		DueDate:      dueAt(engineNow.Add(2 * time.Hour)),
	})

	engine := newTestEngine(tasks, notifs)
	require.NoError(t, engine.Scan(context.Background()))

	require.Len(t, notifs.rows, 2)
	for _, n := range notifs.rows {
		assert.Equal(t, models.NotificationTaskDueToday, n.Type)
		assert.Equal(t, "Tarea que vence hoy", n.Title)
		assert.Equal(t, `La tarea "Reparar lámpara del puente" vence hoy`, n.Message)
		assert.False(t, n.Read)
	}

	// escaneos repetidos no duplican
	require.NoError(t, engine.Scan(context.Background()))
	require.NoError(t, engine.Scan(context.Background()))
	assert.Len(t, notifs.rows, 2)
}

func TestEngineOverdueMessage(t *testing.T) {
	tasks := newFakeTaskRepo()
	notifs := newFakeNotificationRepo()

	tasks.put(&models.Task{
		Title:        "Podar los plátanos de la avenida",
		Status:       models.StatusInProgress,
		DepartmentID: 2,
		AssigneeIDs:  []int64{4},
		DueDate:      dueAt(engineNow.AddDate(0, 0, -3)),
	})

	engine := newTestEngine(tasks, notifs)
	require.NoError(t, engine.Scan(context.Background()))

	require.Len(t, notifs.rows, 1)
	n := notifs.rows[0]
	assert.Equal(t, models.NotificationTaskOverdue, n.Type)
	assert.Equal(t, "Tarea vencida", n.Title)
	assert.Equal(t, `La tarea "Podar los plátanos de la avenida" está vencida`, n.Message)
}

func TestEngineDoesNotResurrectReadNotifications(t *testing.T) {
	tasks := newFakeTaskRepo()
	notifs := newFakeNotificationRepo()

	tasks.put(&models.Task{
		Title:        "Revisar alcantarillado",
		Status:       models.StatusPending,
		DepartmentID: 1,
		AssigneeIDs:  []int64{5},
		DueDate:      dueAt(engineNow.AddDate(0, 0, -1)),
	})

	engine := newTestEngine(tasks, notifs)
	require.NoError(t, engine.Scan(context.Background()))
	require.Len(t, notifs.rows, 1)

	// el usuario lee el aviso; el siguiente escaneo no lo recrea
	require.NoError(t, notifs.MarkRead(context.Background(), notifs.rows[0].ID, time.Now()))
	require.NoError(t, engine.Scan(context.Background()))

	require.Len(t, notifs.rows, 1)
	assert.True(t, notifs.rows[0].Read)
}

func TestEngineSkipsTasksWithoutAssignees(t *testing.T) {
	tasks := newFakeTaskRepo()
	notifs := newFakeNotificationRepo()

	tasks.put(&models.Task{
		Title:        "Sin asignar",
		Status:       models.StatusPending,
		DepartmentID: 1,
		DueDate:      dueAt(engineNow.Add(time.Hour)),
	})

	engine := newTestEngine(tasks, notifs)
	require.NoError(t, engine.Scan(context.Background()))
	assert.Empty(t, notifs.rows)
}

func TestEngineSkipsResolvedTasks(t *testing.T) {
	tasks := newFakeTaskRepo()
	notifs := newFakeNotificationRepo()

	fid := int64(100)
	tasks.put(&models.Task{
		Title:            "Ya resuelta",
		Status:           models.StatusResolved,
		DepartmentID:     1,
		AssigneeIDs:      []int64{3},
		ResolutionFileID: &fid,
		DueDate:          dueAt(engineNow.AddDate(0, 0, -2)),
	})

	engine := newTestEngine(tasks, notifs)
	require.NoError(t, engine.Scan(context.Background()))
	assert.Empty(t, notifs.rows)
}

func TestEngineDueTodayWindowIsHalfOpen(t *testing.T) {
	tasks := newFakeTaskRepo()
	notifs := newFakeNotificationRepo()

	today := time.Date(engineNow.Year(), engineNow.Month(), engineNow.Day(), 0, 0, 0, 0, engineNow.Location())
	tomorrow := today.AddDate(0, 0, 1)

	tasks.put(&models.Task{
		Title: "Vence a medianoche de hoy", Status: models.StatusPending,
		DepartmentID: 1, AssigneeIDs: []int64{1}, DueDate: dueAt(today),
	})
	tasks.put(&models.Task{
		Title: "Vence al filo del día", Status: models.StatusPending,
		DepartmentID: 1, AssigneeIDs: []int64{2}, DueDate: dueAt(tomorrow.Add(-time.Second)),
	})
	tasks.put(&models.Task{
		Title: "Vence mañana", Status: models.StatusPending,
		DepartmentID: 1, AssigneeIDs: []int64{3}, DueDate: dueAt(tomorrow),
	})

	engine := newTestEngine(tasks, notifs)
	require.NoError(t, engine.Scan(context.Background()))

	require.Len(t, notifs.rows, 2)
	for _, n := range notifs.rows {
		assert.Equal(t, models.NotificationTaskDueToday, n.Type)
		assert.NotEqual(t, int64(3), n.UserID)
	}
}

func TestEnginePerUnitFailureDoesNotAbortBatch(t *testing.T) {
	tasks := newFakeTaskRepo()
	notifs := newFakeNotificationRepo()

	tasks.put(&models.Task{
		Title:        "Limpieza de pintadas",
		Status:       models.StatusPending,
		DepartmentID: 1,
		AssigneeIDs:  []int64{11, 12},
		DueDate:      dueAt(engineNow.Add(time.Hour)),
	})

	notifs.createErr = errors.New("insert failed")
	notifs.createErrForUser = 11

	engine := newTestEngine(tasks, notifs)
	require.NoError(t, engine.Scan(context.Background()))

	// el fallo del usuario 11 no impide avisar al 12
	require.Len(t, notifs.rows, 1)
	assert.Equal(t, int64(12), notifs.rows[0].UserID)

	// recuperado el fallo, el siguiente escaneo completa la unidad pendiente
	notifs.createErr = nil
	require.NoError(t, engine.Scan(context.Background()))
	require.Len(t, notifs.rows, 2)
}

func TestEngineQueryFailureStillRunsOtherHalf(t *testing.T) {
	tasks := newFakeTaskRepo()
	notifs := newFakeNotificationRepo()

	tasks.put(&models.Task{
		Title:        "Vencida hace días",
		Status:       models.StatusPending,
		DepartmentID: 1,
		AssigneeIDs:  []int64{8},
		DueDate:      dueAt(engineNow.AddDate(0, 0, -5)),
	})

	tasks.dueErr = errors.New("query timeout")

	engine := newTestEngine(tasks, notifs)
	require.NoError(t, engine.Scan(context.Background()))

	require.Len(t, notifs.rows, 1)
	assert.Equal(t, models.NotificationTaskOverdue, notifs.rows[0].Type)
}

func TestEngineScanHonoursCancelledContext(t *testing.T) {
	tasks := newFakeTaskRepo()
	notifs := newFakeNotificationRepo()

	tasks.put(&models.Task{
		Title:        "Cualquiera",
		Status:       models.StatusPending,
		DepartmentID: 1,
		AssigneeIDs:  []int64{1},
		DueDate:      dueAt(engineNow.Add(time.Hour)),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := newTestEngine(tasks, notifs)
	err := engine.Scan(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, notifs.rows)
}

func TestEngineDueTodayAndOverdueAreSeparateNotifications(t *testing.T) {
	tasks := newFakeTaskRepo()
	notifs := newFakeNotificationRepo()

	task := tasks.put(&models.Task{
		Title:        "Cambiar señal de tráfico",
		Status:       models.StatusPending,
		DepartmentID: 1,
		AssigneeIDs:  []int64{6},
		DueDate:      dueAt(engineNow.Add(time.Hour)),
	})

	engine := newTestEngine(tasks, notifs)
	require.NoError(t, engine.Scan(context.Background()))
	require.Len(t, notifs.rows, 1)
	assert.Equal(t, models.NotificationTaskDueToday, notifs.rows[0].Type)

	// pasan dos días y la tarea sigue abierta: ahora toca el aviso de vencida,
	// que convive con el de "vence hoy" ya emitido
	engine.now = func() time.Time { return engineNow.AddDate(0, 0, 2) }
	require.NoError(t, engine.Scan(context.Background()))

	require.Len(t, notifs.rows, 2)
	types := []models.NotificationType{notifs.rows[0].Type, notifs.rows[1].Type}
	assert.Contains(t, types, models.NotificationTaskDueToday)
	assert.Contains(t, types, models.NotificationTaskOverdue)
	for _, n := range notifs.rows {
		require.NotNil(t, n.TaskID)
		assert.Equal(t, task.ID, *n.TaskID)
	}
}
