package repositories

import (
	"database/sql"
	"time"

	"munitask/internal/models"
)

type PasswordResetRepository interface {
	Create(userID int64, token string, expiresAt time.Time) (int64, error)
	GetByToken(token string) (*models.PasswordReset, error)
	MarkUsed(id int64) error
}

type passwordResetRepository struct {
	db *sql.DB
}

func NewPasswordResetRepository(db *sql.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Create(userID int64, token string, expiresAt time.Time) (int64, error) {
	const q = `
		INSERT INTO password_resets (user_id, token, expires_at)
		VALUES ($1,$2,$3) RETURNING id`
	var id int64
	err := r.db.QueryRow(q, userID, token, expiresAt).Scan(&id)
	return id, err
}

func (r *passwordResetRepository) GetByToken(token string) (*models.PasswordReset, error) {
	const q = `
		SELECT id, user_id, token, expires_at, used_at, created_at
		FROM password_resets WHERE token=$1`
	pr := &models.PasswordReset{}
	var usedAt sql.NullTime
	err := r.db.QueryRow(q, token).Scan(&pr.ID, &pr.UserID, &pr.Token, &pr.ExpiresAt, &usedAt, &pr.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if usedAt.Valid {
		t := usedAt.Time
		pr.UsedAt = &t
	}
	return pr, nil
}

func (r *passwordResetRepository) MarkUsed(id int64) error {
	_, err := r.db.Exec(`UPDATE password_resets SET used_at=NOW() WHERE id=$1`, id)
	return err
}
