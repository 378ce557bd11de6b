package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"munitask/internal/models"
)

type NotificationRepository interface {
	// CreateDedup inserta el aviso salvo que ya exista uno para la misma tupla
	// (user_id, task_id, type). Devuelve si realmente se creó una fila.
	// La unicidad la garantiza el índice de la tabla, no una lectura previa.
	CreateDedup(ctx context.Context, n *models.Notification) (bool, error)
	ExistsFor(ctx context.Context, userID, taskID int64, typ models.NotificationType) (bool, error)

	FindByID(ctx context.Context, id int64) (*models.Notification, error)
	FindByUser(ctx context.Context, userID int64, q models.NotificationQuery) ([]models.Notification, error)
	MarkRead(ctx context.Context, id int64, at time.Time) error
	MarkAllRead(ctx context.Context, userID int64, at time.Time) (int64, error)
	DeleteByID(ctx context.Context, id int64) error
	CountUnread(ctx context.Context, userID int64) (int64, error)
}

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) CreateDedup(ctx context.Context, n *models.Notification) (bool, error) {
	const q = `
		INSERT INTO notifications (user_id, type, title, message, task_id, read, created_at)
		VALUES ($1,$2,$3,$4,$5,FALSE,NOW())
		ON CONFLICT (user_id, task_id, type) WHERE task_id IS NOT NULL DO NOTHING
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, q,
		n.UserID, n.Type, n.Title, n.Message, n.TaskID,
	).Scan(&n.ID, &n.CreatedAt)
	if err == sql.ErrNoRows {
		// ya existía; el insert quedó en nada
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create notification: %w", err)
	}
	return true, nil
}

func (r *notificationRepository) ExistsFor(ctx context.Context, userID, taskID int64, typ models.NotificationType) (bool, error) {
	const q = `SELECT 1 FROM notifications WHERE user_id=$1 AND task_id=$2 AND type=$3 LIMIT 1`
	var dummy int
	err := r.db.QueryRowContext(ctx, q, userID, taskID, typ).Scan(&dummy)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func scanNotification(scanner interface{ Scan(...interface{}) error }) (*models.Notification, error) {
	n := &models.Notification{}
	var (
		taskID sql.NullInt64
		readAt sql.NullTime
	)
	if err := scanner.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &taskID, &n.Read, &n.CreatedAt, &readAt); err != nil {
		return nil, err
	}
	if taskID.Valid {
		id := taskID.Int64
		n.TaskID = &id
	}
	if readAt.Valid {
		t := readAt.Time
		n.ReadAt = &t
	}
	return n, nil
}

const notificationSelect = `
SELECT id, user_id, type, title, message, task_id, read, created_at, read_at
FROM notifications`

func (r *notificationRepository) FindByID(ctx context.Context, id int64) (*models.Notification, error) {
	row := r.db.QueryRowContext(ctx, notificationSelect+` WHERE id = $1`, id)
	n, err := scanNotification(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find notification: %w", err)
	}
	return n, nil
}

func (r *notificationRepository) FindByUser(ctx context.Context, userID int64, q models.NotificationQuery) ([]models.Notification, error) {
	query := notificationSelect + ` WHERE user_id = $1`
	args := []interface{}{userID}
	if q.UnreadOnly {
		query += ` AND read = FALSE`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	skip := q.Skip
	if skip < 0 {
		skip = 0
	}
	query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, skip)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read=TRUE, read_at=$1 WHERE id=$2`, at, id)
	return err
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID int64, at time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read=TRUE, read_at=$1 WHERE user_id=$2 AND read=FALSE`, at, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *notificationRepository) DeleteByID(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id=$1`, id)
	return err
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id=$1 AND read=FALSE`, userID).Scan(&n)
	return n, err
}
