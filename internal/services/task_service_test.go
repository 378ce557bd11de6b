package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"munitask/internal/apperrors"
	"munitask/internal/models"
)

func newTestTaskService() (TaskService, *fakeTaskRepo, *fakeNotificationRepo, *fakeFileService) {
	tasks := newFakeTaskRepo()
	notifs := newFakeNotificationRepo()
	files := newFakeFileService()
	return NewTaskService(tasks, notifs, files), tasks, notifs, files
}

func TestTaskCreateNotifiesEachAssignee(t *testing.T) {
	svc, _, notifs, _ := newTestTaskService()

	created, err := svc.Create(context.Background(), &models.Task{
		Title:        "Vaciar papeleras del parque",
		DepartmentID: 3,
		CreatorID:    1,
		AssigneeIDs:  []int64{10, 20},
		Status:       models.StatusResolved, // se ignora: toda tarea nace pendiente
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, created.Status)
	assert.Nil(t, created.ResolutionFileID)

	require.Len(t, notifs.rows, 2)
	for _, n := range notifs.rows {
		assert.Equal(t, models.NotificationTaskAssigned, n.Type)
		assert.Equal(t, "Nueva tarea asignada", n.Title)
		assert.Equal(t, "Se te ha asignado la tarea: Vaciar papeleras del parque", n.Message)
		require.NotNil(t, n.TaskID)
		assert.Equal(t, created.ID, *n.TaskID)
	}
}

func TestTaskCreateValidation(t *testing.T) {
	svc, _, _, _ := newTestTaskService()

	_, err := svc.Create(context.Background(), &models.Task{DepartmentID: 1})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Create(context.Background(), &models.Task{Title: "Sin departamento"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestTaskCreateNotificationFailureDoesNotFailCreate(t *testing.T) {
	svc, tasks, notifs, _ := newTestTaskService()
	notifs.createErr = errors.New("db unavailable")

	created, err := svc.Create(context.Background(), &models.Task{
		Title:        "Aviso fallido",
		DepartmentID: 1,
		AssigneeIDs:  []int64{5},
	})
	require.NoError(t, err)

	stored, err := tasks.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Empty(t, notifs.rows)
}

func TestTaskAssignIsIdempotent(t *testing.T) {
	svc, tasks, notifs, _ := newTestTaskService()
	task := tasks.put(&models.Task{Title: "Barrer plaza", Status: models.StatusPending, DepartmentID: 1})

	_, err := svc.Assign(context.Background(), task.ID, 42)
	require.NoError(t, err)
	require.Len(t, notifs.rows, 1)

	// repetir la asignación no escribe ni avisa de nuevo
	updated, err := svc.Assign(context.Background(), task.ID, 42)
	require.NoError(t, err)
	assert.Equal(t, []int64{42}, updated.AssigneeIDs)
	assert.Len(t, notifs.rows, 1)
}

func TestTaskUnassignDoesNotNotify(t *testing.T) {
	svc, tasks, notifs, _ := newTestTaskService()
	task := tasks.put(&models.Task{
		Title: "Regar jardineras", Status: models.StatusPending,
		DepartmentID: 1, AssigneeIDs: []int64{7},
	})

	updated, err := svc.Unassign(context.Background(), task.ID, 7)
	require.NoError(t, err)
	assert.Empty(t, updated.AssigneeIDs)
	assert.Empty(t, notifs.rows)
}

func TestTaskUpdateTransitions(t *testing.T) {
	cases := []struct {
		name string
		from models.TaskStatus
		to   models.TaskStatus
		ok   bool
	}{
		{"pendiente a en curso", models.StatusPending, models.StatusInProgress, true},
		{"mismo estado", models.StatusInProgress, models.StatusInProgress, true},
		{"en curso a pendiente", models.StatusInProgress, models.StatusPending, false},
		{"pendiente a resuelta por update", models.StatusPending, models.StatusResolved, false},
		{"estado desconocido", models.StatusPending, models.TaskStatus("archived"), false},
		{"estado heredado sin uso", models.StatusPending, models.StatusCompleted, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, tasks, _, _ := newTestTaskService()
			task := tasks.put(&models.Task{Title: "Tarea", Status: tc.from, DepartmentID: 1})

			updated, err := svc.Update(context.Background(), task.ID, &models.Task{
				Title:  "Tarea",
				Status: tc.to,
			})
			if tc.ok {
				require.NoError(t, err)
				assert.Equal(t, tc.to, updated.Status)
			} else {
				require.Error(t, err)
				assert.True(t, apperrors.IsValidation(err))
			}
		})
	}
}

func TestTaskUpdateStatusOperation(t *testing.T) {
	svc, tasks, _, _ := newTestTaskService()
	task := tasks.put(&models.Task{Title: "Cambio de estado", Status: models.StatusPending, DepartmentID: 1})

	updated, err := svc.UpdateStatus(context.Background(), task.ID, models.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, updated.Status)

	// mismo estado: no-op
	same, err := svc.UpdateStatus(context.Background(), task.ID, models.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, same.Status)

	// resolved solo por la operación de resolución
	_, err = svc.UpdateStatus(context.Background(), task.ID, models.StatusResolved)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestTaskUpdateCannotLeaveResolved(t *testing.T) {
	svc, tasks, _, _ := newTestTaskService()
	fid := int64(9)
	task := tasks.put(&models.Task{
		Title: "Cerrada", Status: models.StatusResolved,
		DepartmentID: 1, ResolutionFileID: &fid,
	})

	_, err := svc.Update(context.Background(), task.ID, &models.Task{
		Title:  "Cerrada",
		Status: models.StatusPending,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestTaskResolveAndReopenRoundTrip(t *testing.T) {
	svc, tasks, _, files := newTestTaskService()
	task := tasks.put(&models.Task{Title: "Asfaltar bache", Status: models.StatusInProgress, DepartmentID: 1})
	resolution := files.add(&models.File{FileName: "informe.pdf", StoredPath: "abc.pdf", UploadedBy: 2})

	resolved, err := svc.Resolve(context.Background(), task.ID, resolution.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolutionFileID)
	assert.Equal(t, resolution.ID, *resolved.ResolutionFileID)

	reopened, err := svc.Reopen(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, reopened.Status)
	assert.Nil(t, reopened.ResolutionFileID)
	// el fichero de resolución anterior se elimina
	assert.Contains(t, files.deleted, resolution.ID)
}

func TestTaskResolveRequiresExistingFile(t *testing.T) {
	svc, tasks, _, _ := newTestTaskService()
	task := tasks.put(&models.Task{Title: "Sin fichero", Status: models.StatusPending, DepartmentID: 1})

	_, err := svc.Resolve(context.Background(), task.ID, 999)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	stored, _ := tasks.FindByID(context.Background(), task.ID)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestTaskResolveRejectedFromResolved(t *testing.T) {
	svc, tasks, _, files := newTestTaskService()
	fid := int64(5)
	task := tasks.put(&models.Task{
		Title: "Ya cerrada", Status: models.StatusResolved,
		DepartmentID: 1, ResolutionFileID: &fid,
	})
	other := files.add(&models.File{FileName: "otro.pdf", StoredPath: "x.pdf", UploadedBy: 1})

	_, err := svc.Resolve(context.Background(), task.ID, other.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestTaskReopenRequiresResolved(t *testing.T) {
	svc, tasks, _, _ := newTestTaskService()
	task := tasks.put(&models.Task{Title: "Abierta", Status: models.StatusPending, DepartmentID: 1})

	_, err := svc.Reopen(context.Background(), task.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestTaskReopenToleratesFileDeletionFailure(t *testing.T) {
	svc, tasks, _, files := newTestTaskService()
	resolution := files.add(&models.File{FileName: "informe.pdf", StoredPath: "r.pdf", UploadedBy: 3})
	task := tasks.put(&models.Task{
		Title: "Resuelta", Status: models.StatusResolved,
		DepartmentID: 1, ResolutionFileID: &resolution.ID,
	})
	files.failDelete[resolution.ID] = errors.New("disk error")

	reopened, err := svc.Reopen(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, reopened.Status)
	assert.Nil(t, reopened.ResolutionFileID)
}

func TestTaskAttachValidations(t *testing.T) {
	svc, tasks, _, files := newTestTaskService()
	task := tasks.put(&models.Task{Title: "Con adjuntos", Status: models.StatusPending, DepartmentID: 1})
	otherTaskID := int64(99)
	attached := files.add(&models.File{FileName: "a.jpg", StoredPath: "a.jpg", UploadedBy: 1, TaskID: &otherTaskID})
	loose := files.add(&models.File{FileName: "b.jpg", StoredPath: "b.jpg", UploadedBy: 1})

	// fichero ya adjunto a otra tarea
	_, err := svc.Attach(context.Background(), task.ID, attached.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	// fichero inexistente
	_, err = svc.Attach(context.Background(), task.ID, 12345)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	// fichero suelto: se adjunta
	_, err = svc.Attach(context.Background(), task.ID, loose.ID)
	require.NoError(t, err)
	f, _ := files.GetByID(context.Background(), loose.ID)
	require.NotNil(t, f.TaskID)
	assert.Equal(t, task.ID, *f.TaskID)

	// adjuntar dos veces a la misma tarea es un no-op
	_, err = svc.Attach(context.Background(), task.ID, loose.ID)
	require.NoError(t, err)
}

func TestTaskDeleteCascadesFiles(t *testing.T) {
	svc, tasks, _, files := newTestTaskService()

	att := files.add(&models.File{FileName: "foto.jpg", StoredPath: "f.jpg", UploadedBy: 1})
	res := files.add(&models.File{FileName: "acta.pdf", StoredPath: "p.pdf", UploadedBy: 1})
	task := tasks.put(&models.Task{
		Title: "Para borrar", Status: models.StatusResolved, DepartmentID: 1,
		AttachmentIDs: []int64{att.ID}, ResolutionFileID: &res.ID,
	})

	require.NoError(t, svc.Delete(context.Background(), task.ID))

	assert.Contains(t, files.deleted, att.ID)
	assert.Contains(t, files.deleted, res.ID)
	gone, _ := tasks.FindByID(context.Background(), task.ID)
	assert.Nil(t, gone)
}

func TestTaskDeleteToleratesFileErrors(t *testing.T) {
	svc, tasks, _, files := newTestTaskService()

	att := files.add(&models.File{FileName: "foto.jpg", StoredPath: "f.jpg", UploadedBy: 1})
	task := tasks.put(&models.Task{
		Title: "Adjunto roto", Status: models.StatusPending, DepartmentID: 1,
		AttachmentIDs: []int64{att.ID},
	})
	files.failDelete[att.ID] = errors.New("disk error")

	require.NoError(t, svc.Delete(context.Background(), task.ID))
	gone, _ := tasks.FindByID(context.Background(), task.ID)
	assert.Nil(t, gone)
}

func TestTaskOperationsOnMissingTask(t *testing.T) {
	svc, _, _, _ := newTestTaskService()
	ctx := context.Background()

	_, err := svc.Update(ctx, 404, &models.Task{Title: "x", Status: models.StatusPending})
	assert.True(t, apperrors.IsNotFound(err))
	_, err = svc.Assign(ctx, 404, 1)
	assert.True(t, apperrors.IsNotFound(err))
	_, err = svc.Resolve(ctx, 404, 1)
	assert.True(t, apperrors.IsNotFound(err))
	_, err = svc.Reopen(ctx, 404)
	assert.True(t, apperrors.IsNotFound(err))
	err = svc.Delete(ctx, 404)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestTaskUpdateKeepsDueDateSemantics(t *testing.T) {
	svc, tasks, _, _ := newTestTaskService()
	due := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.Local)
	task := tasks.put(&models.Task{Title: "Con fecha", Status: models.StatusPending, DepartmentID: 1, DueDate: &due})

	// el update puede limpiar la fecha de vencimiento
	updated, err := svc.Update(context.Background(), task.ID, &models.Task{
		Title:  "Con fecha",
		Status: models.StatusPending,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.DueDate)
}
