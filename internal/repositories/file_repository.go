package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"munitask/internal/models"
)

type FileRepository interface {
	Create(ctx context.Context, f *models.File) error
	GetByID(ctx context.Context, id int64) (*models.File, error)
	ListByTask(ctx context.Context, taskID int64) ([]models.File, error)
	// Attach/Detach son idempotentes: repetir la operación deja el mismo estado.
	Attach(ctx context.Context, fileID, taskID int64) error
	Detach(ctx context.Context, fileID int64) error
	Delete(ctx context.Context, id int64) error
}

type fileRepository struct {
	db *sql.DB
}

func NewFileRepository(db *sql.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(ctx context.Context, f *models.File) error {
	const q = `
		INSERT INTO files (file_name, stored_path, mime_type, size, task_id, uploaded_by)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at`
	if err := r.db.QueryRowContext(ctx, q,
		f.FileName, f.StoredPath, f.MimeType, f.Size, f.TaskID, f.UploadedBy,
	).Scan(&f.ID, &f.CreatedAt); err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	return nil
}

func (r *fileRepository) GetByID(ctx context.Context, id int64) (*models.File, error) {
	const q = `
		SELECT id, file_name, stored_path, mime_type, size, task_id, uploaded_by, created_at
		FROM files WHERE id=$1`
	f := &models.File{}
	var taskID sql.NullInt64
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&f.ID, &f.FileName, &f.StoredPath, &f.MimeType, &f.Size, &taskID, &f.UploadedBy, &f.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}
	if taskID.Valid {
		t := taskID.Int64
		f.TaskID = &t
	}
	return f, nil
}

func (r *fileRepository) ListByTask(ctx context.Context, taskID int64) ([]models.File, error) {
	const q = `
		SELECT id, file_name, stored_path, mime_type, size, task_id, uploaded_by, created_at
		FROM files WHERE task_id=$1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.File
	for rows.Next() {
		var f models.File
		var tid sql.NullInt64
		if err := rows.Scan(&f.ID, &f.FileName, &f.StoredPath, &f.MimeType, &f.Size, &tid, &f.UploadedBy, &f.CreatedAt); err != nil {
			return nil, err
		}
		if tid.Valid {
			t := tid.Int64
			f.TaskID = &t
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *fileRepository) Attach(ctx context.Context, fileID, taskID int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE files SET task_id=$1 WHERE id=$2`, taskID, fileID)
	return err
}

func (r *fileRepository) Detach(ctx context.Context, fileID int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE files SET task_id=NULL WHERE id=$1`, fileID)
	return err
}

func (r *fileRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id=$1`, id)
	return err
}
