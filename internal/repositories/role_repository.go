package repositories

import (
	"database/sql"

	"munitask/internal/models"
)

type RoleRepository interface {
	Create(role *models.Role) error
	GetByID(id int) (*models.Role, error)
	List() ([]models.Role, error)
	Update(role *models.Role) error
	Delete(id int) error
	GetCount() (int, error)
}

type roleRepository struct {
	db *sql.DB
}

func NewRoleRepository(db *sql.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) Create(role *models.Role) error {
	const q = `INSERT INTO roles (id, name, description) VALUES ($1,$2,$3)`
	_, err := r.db.Exec(q, role.ID, role.Name, role.Description)
	return err
}

func (r *roleRepository) GetByID(id int) (*models.Role, error) {
	role := &models.Role{}
	err := r.db.QueryRow(`SELECT id, name, description FROM roles WHERE id=$1`, id).
		Scan(&role.ID, &role.Name, &role.Description)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return role, nil
}

func (r *roleRepository) List() ([]models.Role, error) {
	rows, err := r.db.Query(`SELECT id, name, description FROM roles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []models.Role
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *roleRepository) Update(role *models.Role) error {
	_, err := r.db.Exec(`UPDATE roles SET name=$1, description=$2 WHERE id=$3`,
		role.Name, role.Description, role.ID)
	return err
}

func (r *roleRepository) Delete(id int) error {
	_, err := r.db.Exec(`DELETE FROM roles WHERE id=$1`, id)
	return err
}

func (r *roleRepository) GetCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM roles`).Scan(&count)
	return count, err
}
