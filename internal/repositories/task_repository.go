package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"munitask/internal/models"
)

type TaskRepository interface {
	Store(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id int64) (*models.Task, error)
	FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id int64) error

	UpdateStatus(ctx context.Context, id int64, to models.TaskStatus) error
	// SetResolution cambia estado y fichero de resolución en una sola escritura,
	// para que el invariante (resolution_file_id no nulo sii resolved) no tenga ventana.
	SetResolution(ctx context.Context, id int64, fileID *int64, to models.TaskStatus) error

	AddAssignee(ctx context.Context, taskID, userID int64) (bool, error)
	RemoveAssignee(ctx context.Context, taskID, userID int64) error

	// Consultas del escáner de vencimientos.
	FindDueBetween(ctx context.Context, start, end time.Time, statuses []models.TaskStatus) ([]models.Task, error)
	FindOverdue(ctx context.Context, before time.Time, statuses []models.TaskStatus) ([]models.Task, error)

	// Agregados para informes.
	CountByStatus(ctx context.Context) (map[models.TaskStatus]int64, error)
	CountByDepartment(ctx context.Context) ([]models.DepartmentCount, error)
	CountOverdue(ctx context.Context, before time.Time) (int64, error)
}

type taskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) TaskRepository {
	return &taskRepository{db: db}
}

const taskSelect = `
SELECT t.id, t.title, t.description, t.due_date, t.status, t.department_id, t.creator_id,
       t.resolution_file_id, t.created_at, t.updated_at,
       COALESCE((SELECT array_agg(a.user_id ORDER BY a.user_id) FROM task_assignees a WHERE a.task_id = t.id), '{}'),
       COALESCE((SELECT array_agg(f.id ORDER BY f.id) FROM files f WHERE f.task_id = t.id), '{}')
FROM tasks t`

func scanTask(scanner interface{ Scan(...interface{}) error }) (*models.Task, error) {
	t := &models.Task{}
	var (
		due        sql.NullTime
		resolution sql.NullInt64
		assignees  pq.Int64Array
		files      pq.Int64Array
	)
	if err := scanner.Scan(
		&t.ID, &t.Title, &t.Description, &due, &t.Status, &t.DepartmentID, &t.CreatorID,
		&resolution, &t.CreatedAt, &t.UpdatedAt, &assignees, &files,
	); err != nil {
		return nil, err
	}
	if due.Valid {
		d := due.Time
		t.DueDate = &d
	}
	if resolution.Valid {
		id := resolution.Int64
		t.ResolutionFileID = &id
	}
	t.AssigneeIDs = []int64(assignees)
	t.AttachmentIDs = []int64(files)
	return t, nil
}

func statusStrings(statuses []models.TaskStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

func (r *taskRepository) Store(ctx context.Context, task *models.Task) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store task: %w", err)
	}
	defer tx.Rollback()

	const q = `
		INSERT INTO tasks (title, description, due_date, status, department_id, creator_id,
		                   resolution_file_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,NULL,$7,$8)
		RETURNING id, created_at, updated_at`
	if err := tx.QueryRowContext(ctx, q,
		task.Title, task.Description, task.DueDate, task.Status,
		task.DepartmentID, task.CreatorID, task.CreatedAt, task.UpdatedAt,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt); err != nil {
		return fmt.Errorf("store task: %w", err)
	}

	for _, uid := range task.AssigneeIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO task_assignees (task_id, user_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
			task.ID, uid,
		); err != nil {
			return fmt.Errorf("store task assignee %d: %w", uid, err)
		}
	}
	return tx.Commit()
}

func (r *taskRepository) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	row := r.db.QueryRowContext(ctx, taskSelect+` WHERE t.id = $1`, id)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find task: %w", err)
	}
	return task, nil
}

func (r *taskRepository) FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	baseQuery := taskSelect

	conditions := []string{}
	args := []interface{}{}
	argID := 1

	if filter.AssigneeID != nil {
		conditions = append(conditions,
			fmt.Sprintf("EXISTS (SELECT 1 FROM task_assignees a WHERE a.task_id = t.id AND a.user_id = $%d)", argID))
		args = append(args, *filter.AssigneeID)
		argID++
	}
	if filter.CreatorID != nil {
		conditions = append(conditions, fmt.Sprintf("t.creator_id = $%d", argID))
		args = append(args, *filter.CreatorID)
		argID++
	}
	if filter.DepartmentID != nil {
		conditions = append(conditions, fmt.Sprintf("t.department_id = $%d", argID))
		args = append(args, *filter.DepartmentID)
		argID++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("t.status = $%d", argID))
		args = append(args, *filter.Status)
		argID++
	}

	if len(conditions) > 0 {
		baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	}
	baseQuery += " ORDER BY t.created_at DESC"

	return r.queryTasks(ctx, baseQuery, args...)
}

func (r *taskRepository) queryTasks(ctx context.Context, query string, args ...interface{}) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	const q = `
		UPDATE tasks SET
			title=$1, description=$2, due_date=$3, status=$4, department_id=$5, updated_at=$6
		WHERE id=$7`
	_, err := r.db.ExecContext(ctx, q,
		task.Title, task.Description, task.DueDate, task.Status,
		task.DepartmentID, task.UpdatedAt, task.ID,
	)
	return err
}

func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return err
}

func (r *taskRepository) UpdateStatus(ctx context.Context, id int64, to models.TaskStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET status=$1, updated_at=NOW() WHERE id=$2`, to, id)
	return err
}

func (r *taskRepository) SetResolution(ctx context.Context, id int64, fileID *int64, to models.TaskStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET status=$1, resolution_file_id=$2, updated_at=NOW() WHERE id=$3`,
		to, fileID, id)
	return err
}

func (r *taskRepository) AddAssignee(ctx context.Context, taskID, userID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO task_assignees (task_id, user_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
		taskID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *taskRepository) RemoveAssignee(ctx context.Context, taskID, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM task_assignees WHERE task_id=$1 AND user_id=$2`, taskID, userID)
	return err
}

func (r *taskRepository) FindDueBetween(ctx context.Context, start, end time.Time, statuses []models.TaskStatus) ([]models.Task, error) {
	q := taskSelect + `
WHERE t.due_date IS NOT NULL
  AND t.due_date >= $1 AND t.due_date < $2
  AND t.status = ANY($3)
ORDER BY t.due_date ASC`
	return r.queryTasks(ctx, q, start, end, pq.Array(statusStrings(statuses)))
}

func (r *taskRepository) FindOverdue(ctx context.Context, before time.Time, statuses []models.TaskStatus) ([]models.Task, error) {
	q := taskSelect + `
WHERE t.due_date IS NOT NULL
  AND t.due_date < $1
  AND t.status = ANY($2)
ORDER BY t.due_date ASC`
	return r.queryTasks(ctx, q, before, pq.Array(statusStrings(statuses)))
}

func (r *taskRepository) CountByStatus(ctx context.Context) (map[models.TaskStatus]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM tasks GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[models.TaskStatus]int64{}
	for rows.Next() {
		var s models.TaskStatus
		var n int64
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		out[s] = n
	}
	return out, rows.Err()
}

func (r *taskRepository) CountByDepartment(ctx context.Context) ([]models.DepartmentCount, error) {
	const q = `
		SELECT d.id, d.name, COUNT(t.id)
		FROM departments d
		LEFT JOIN tasks t ON t.department_id = d.id
		GROUP BY d.id, d.name
		ORDER BY d.name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DepartmentCount
	for rows.Next() {
		var c models.DepartmentCount
		if err := rows.Scan(&c.DepartmentID, &c.DepartmentName, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *taskRepository) CountOverdue(ctx context.Context, before time.Time) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE due_date IS NOT NULL AND due_date < $1 AND status IN ('pending','in_progress')`,
		before).Scan(&n)
	return n, err
}
