package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"sort"
	"sync"
	"time"

	"munitask/internal/models"
)

// Fakes en memoria de los repositorios; suficientes para ejercitar los
// servicios sin base de datos.

type fakeTaskRepo struct {
	tasks  map[int64]*models.Task
	nextID int64

	dueErr     error
	overdueErr error
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[int64]*models.Task)}
}

func (r *fakeTaskRepo) put(t *models.Task) *models.Task {
	if t.ID == 0 {
		r.nextID++
		t.ID = r.nextID
	} else if t.ID > r.nextID {
		r.nextID = t.ID
	}
	cp := *t
	r.tasks[cp.ID] = &cp
	return &cp
}

func (r *fakeTaskRepo) Store(ctx context.Context, task *models.Task) error {
	stored := r.put(task)
	task.ID = stored.ID
	return nil
}

func (r *fakeTaskRepo) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTaskRepo) FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	var out []models.Task
	for _, t := range r.tasks {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.DepartmentID != nil && t.DepartmentID != *filter.DepartmentID {
			continue
		}
		if filter.CreatorID != nil && t.CreatorID != *filter.CreatorID {
			continue
		}
		if filter.AssigneeID != nil && !t.HasAssignee(*filter.AssigneeID) {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTaskRepo) Update(ctx context.Context, task *models.Task) error {
	if _, ok := r.tasks[task.ID]; !ok {
		return fmt.Errorf("task %d not found", task.ID)
	}
	r.put(task)
	return nil
}

func (r *fakeTaskRepo) Delete(ctx context.Context, id int64) error {
	delete(r.tasks, id)
	return nil
}

func (r *fakeTaskRepo) UpdateStatus(ctx context.Context, id int64, to models.TaskStatus) error {
	t, ok := r.tasks[id]
	if !ok {
		return fmt.Errorf("task %d not found", id)
	}
	t.Status = to
	return nil
}

func (r *fakeTaskRepo) SetResolution(ctx context.Context, id int64, fileID *int64, to models.TaskStatus) error {
	t, ok := r.tasks[id]
	if !ok {
		return fmt.Errorf("task %d not found", id)
	}
	t.Status = to
	t.ResolutionFileID = fileID
	return nil
}

func (r *fakeTaskRepo) AddAssignee(ctx context.Context, taskID, userID int64) (bool, error) {
	t, ok := r.tasks[taskID]
	if !ok {
		return false, fmt.Errorf("task %d not found", taskID)
	}
	if t.HasAssignee(userID) {
		return false, nil
	}
	t.AssigneeIDs = append(t.AssigneeIDs, userID)
	return true, nil
}

func (r *fakeTaskRepo) RemoveAssignee(ctx context.Context, taskID, userID int64) error {
	t, ok := r.tasks[taskID]
	if !ok {
		return fmt.Errorf("task %d not found", taskID)
	}
	out := t.AssigneeIDs[:0]
	for _, id := range t.AssigneeIDs {
		if id != userID {
			out = append(out, id)
		}
	}
	t.AssigneeIDs = out
	return nil
}

func statusIn(st models.TaskStatus, statuses []models.TaskStatus) bool {
	for _, s := range statuses {
		if s == st {
			return true
		}
	}
	return false
}

func (r *fakeTaskRepo) FindDueBetween(ctx context.Context, start, end time.Time, statuses []models.TaskStatus) ([]models.Task, error) {
	if r.dueErr != nil {
		return nil, r.dueErr
	}
	var out []models.Task
	for _, t := range r.tasks {
		if t.DueDate == nil || !statusIn(t.Status, statuses) {
			continue
		}
		if !t.DueDate.Before(start) && t.DueDate.Before(end) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTaskRepo) FindOverdue(ctx context.Context, before time.Time, statuses []models.TaskStatus) ([]models.Task, error) {
	if r.overdueErr != nil {
		return nil, r.overdueErr
	}
	var out []models.Task
	for _, t := range r.tasks {
		if t.DueDate == nil || !statusIn(t.Status, statuses) {
			continue
		}
		if t.DueDate.Before(before) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTaskRepo) CountByStatus(ctx context.Context) (map[models.TaskStatus]int64, error) {
	out := make(map[models.TaskStatus]int64)
	for _, t := range r.tasks {
		out[t.Status]++
	}
	return out, nil
}

func (r *fakeTaskRepo) CountByDepartment(ctx context.Context) ([]models.DepartmentCount, error) {
	counts := make(map[int64]int64)
	for _, t := range r.tasks {
		counts[t.DepartmentID]++
	}
	var out []models.DepartmentCount
	for id, n := range counts {
		out = append(out, models.DepartmentCount{DepartmentID: id, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DepartmentID < out[j].DepartmentID })
	return out, nil
}

func (r *fakeTaskRepo) CountOverdue(ctx context.Context, before time.Time) (int64, error) {
	var n int64
	for _, t := range r.tasks {
		if t.DueDate != nil && t.DueDate.Before(before) && statusIn(t.Status, scanStatuses) {
			n++
		}
	}
	return n, nil
}

type fakeNotificationRepo struct {
	mu     sync.Mutex // el motor escanea con varios workers
	rows   []*models.Notification
	nextID int64

	existsErr error
	createErr error
	// si no es nil, CreateDedup falla solo para este usuario
	createErrForUser int64
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (r *fakeNotificationRepo) find(userID, taskID int64, typ models.NotificationType) *models.Notification {
	for _, n := range r.rows {
		if n.UserID == userID && n.TaskID != nil && *n.TaskID == taskID && n.Type == typ {
			return n
		}
	}
	return nil
}

func (r *fakeNotificationRepo) CreateDedup(ctx context.Context, n *models.Notification) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil && (r.createErrForUser == 0 || r.createErrForUser == n.UserID) {
		return false, r.createErr
	}
	if n.TaskID != nil && r.find(n.UserID, *n.TaskID, n.Type) != nil {
		return false, nil
	}
	r.nextID++
	cp := *n
	cp.ID = r.nextID
	cp.CreatedAt = time.Now()
	r.rows = append(r.rows, &cp)
	n.ID = cp.ID
	n.CreatedAt = cp.CreatedAt
	return true, nil
}

func (r *fakeNotificationRepo) ExistsFor(ctx context.Context, userID, taskID int64, typ models.NotificationType) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.existsErr != nil {
		return false, r.existsErr
	}
	return r.find(userID, taskID, typ) != nil, nil
}

func (r *fakeNotificationRepo) FindByID(ctx context.Context, id int64) (*models.Notification, error) {
	for _, n := range r.rows {
		if n.ID == id {
			cp := *n
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeNotificationRepo) FindByUser(ctx context.Context, userID int64, q models.NotificationQuery) ([]models.Notification, error) {
	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var all []models.Notification
	for _, n := range r.rows {
		if n.UserID != userID {
			continue
		}
		if q.UnreadOnly && n.Read {
			continue
		}
		all = append(all, *n)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if q.Skip > 0 {
		if q.Skip >= len(all) {
			return nil, nil
		}
		all = all[q.Skip:]
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id int64, at time.Time) error {
	for _, n := range r.rows {
		if n.ID == id {
			n.Read = true
			t := at
			n.ReadAt = &t
			return nil
		}
	}
	return fmt.Errorf("notification %d not found", id)
}

func (r *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID int64, at time.Time) (int64, error) {
	var updated int64
	for _, n := range r.rows {
		if n.UserID == userID && !n.Read {
			n.Read = true
			t := at
			n.ReadAt = &t
			updated++
		}
	}
	return updated, nil
}

func (r *fakeNotificationRepo) DeleteByID(ctx context.Context, id int64) error {
	out := r.rows[:0]
	for _, n := range r.rows {
		if n.ID != id {
			out = append(out, n)
		}
	}
	r.rows = out
	return nil
}

func (r *fakeNotificationRepo) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var n int64
	for _, row := range r.rows {
		if row.UserID == userID && !row.Read {
			n++
		}
	}
	return n, nil
}

type fakeFileService struct {
	files   map[int64]*models.File
	nextID  int64
	deleted []int64
	// ficheros cuyo borrado debe fallar
	failDelete map[int64]error
}

func newFakeFileService() *fakeFileService {
	return &fakeFileService{files: make(map[int64]*models.File), failDelete: make(map[int64]error)}
}

func (f *fakeFileService) add(file *models.File) *models.File {
	if file.ID == 0 {
		f.nextID++
		file.ID = f.nextID
	} else if file.ID > f.nextID {
		f.nextID = file.ID
	}
	cp := *file
	f.files[cp.ID] = &cp
	return &cp
}

func (f *fakeFileService) SaveUpload(ctx context.Context, header *multipart.FileHeader, uploadedBy int64) (*models.File, error) {
	return nil, fmt.Errorf("not implemented in fake")
}

func (f *fakeFileService) GetByID(ctx context.Context, id int64) (*models.File, error) {
	file, ok := f.files[id]
	if !ok {
		return nil, nil
	}
	cp := *file
	return &cp, nil
}

func (f *fakeFileService) ListByTask(ctx context.Context, taskID int64) ([]models.File, error) {
	var out []models.File
	for _, file := range f.files {
		if file.TaskID != nil && *file.TaskID == taskID {
			out = append(out, *file)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeFileService) Attach(ctx context.Context, fileID, taskID int64) error {
	file, ok := f.files[fileID]
	if !ok {
		return fmt.Errorf("file %d not found", fileID)
	}
	tid := taskID
	file.TaskID = &tid
	return nil
}

func (f *fakeFileService) Detach(ctx context.Context, fileID int64) error {
	file, ok := f.files[fileID]
	if !ok {
		return fmt.Errorf("file %d not found", fileID)
	}
	file.TaskID = nil
	return nil
}

func (f *fakeFileService) DeleteFile(ctx context.Context, id int64) error {
	if err, ok := f.failDelete[id]; ok {
		return err
	}
	if _, ok := f.files[id]; !ok {
		return fmt.Errorf("file %d not found", id)
	}
	delete(f.files, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeFileService) AbsolutePath(file *models.File) string {
	return "/tmp/" + file.StoredPath
}
