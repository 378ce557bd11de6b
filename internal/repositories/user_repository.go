package repositories

import (
	"database/sql"
	"time"

	"munitask/internal/models"
)

type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int64) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	UpdatePassword(userID int64, passwordHash string) error
	Delete(id int64) error
	List(limit, offset int) ([]*models.User, error)
	GetCount() (int, error)
	GetCountByRole(roleID int) (int, error)

	// refresh opaco
	UpdateRefresh(userID int64, token string, expiresAt time.Time) error
	ClearRefresh(userID int64) error
	GetByRefreshToken(token string) (*models.User, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userSelect = `
	SELECT id, full_name, email, password_hash, role_id, department_id,
	       refresh_token, refresh_expires_at, refresh_revoked, created_at
	FROM users`

func (r *userRepository) scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var (
		dept sql.NullInt64
		rt   sql.NullString
		rte  sql.NullTime
		rr   sql.NullBool
	)
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.RoleID, &dept,
		&rt, &rte, &rr, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	if dept.Valid {
		d := dept.Int64
		u.DepartmentID = &d
	}
	if rt.Valid {
		s := rt.String
		u.RefreshToken = &s
	}
	if rte.Valid {
		t := rte.Time
		u.RefreshExpiresAt = &t
	}
	if rr.Valid {
		u.RefreshRevoked = rr.Bool
	}
	return u, nil
}

func (r *userRepository) Create(user *models.User) error {
	const q = `
		INSERT INTO users (full_name, email, password_hash, role_id, department_id,
		                   refresh_token, refresh_expires_at, refresh_revoked)
		VALUES ($1,$2,$3,$4,$5,NULL,NULL,FALSE)
		RETURNING id, created_at`
	return r.DB.QueryRow(q,
		user.FullName, user.Email, user.PasswordHash, user.RoleID, user.DepartmentID,
	).Scan(&user.ID, &user.CreatedAt)
}

func (r *userRepository) GetByID(id int64) (*models.User, error) {
	u, err := r.scanUser(r.DB.QueryRow(userSelect+` WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	u, err := r.scanUser(r.DB.QueryRow(userSelect+` WHERE LOWER(email) = LOWER($1)`, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (r *userRepository) Update(user *models.User) error {
	const q = `
		UPDATE users SET full_name=$1, email=$2, role_id=$3, department_id=$4
		WHERE id=$5`
	_, err := r.DB.Exec(q, user.FullName, user.Email, user.RoleID, user.DepartmentID, user.ID)
	return err
}

func (r *userRepository) UpdatePassword(userID int64, passwordHash string) error {
	_, err := r.DB.Exec(`UPDATE users SET password_hash=$1 WHERE id=$2`, passwordHash, userID)
	return err
}

func (r *userRepository) Delete(id int64) error {
	_, err := r.DB.Exec(`DELETE FROM users WHERE id = $1`, id)
	return err
}

func (r *userRepository) List(limit, offset int) ([]*models.User, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.DB.Query(userSelect+` ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u := &models.User{}
		var (
			dept sql.NullInt64
			rt   sql.NullString
			rte  sql.NullTime
			rr   sql.NullBool
		)
		if err := rows.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.RoleID, &dept,
			&rt, &rte, &rr, &u.CreatedAt); err != nil {
			return nil, err
		}
		if dept.Valid {
			d := dept.Int64
			u.DepartmentID = &d
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepository) GetCount() (int, error) {
	var count int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

func (r *userRepository) GetCountByRole(roleID int) (int, error) {
	var count int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM users WHERE role_id=$1`, roleID).Scan(&count)
	return count, err
}

func (r *userRepository) UpdateRefresh(userID int64, token string, expiresAt time.Time) error {
	_, err := r.DB.Exec(
		`UPDATE users SET refresh_token=$1, refresh_expires_at=$2, refresh_revoked=FALSE WHERE id=$3`,
		token, expiresAt, userID)
	return err
}

func (r *userRepository) ClearRefresh(userID int64) error {
	_, err := r.DB.Exec(
		`UPDATE users SET refresh_token=NULL, refresh_expires_at=NULL, refresh_revoked=TRUE WHERE id=$1`,
		userID)
	return err
}

func (r *userRepository) GetByRefreshToken(token string) (*models.User, error) {
	u, err := r.scanUser(r.DB.QueryRow(userSelect+` WHERE refresh_token = $1 AND refresh_revoked = FALSE`, token))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}
