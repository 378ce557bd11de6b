package repositories

import (
	"database/sql"

	"munitask/internal/models"
)

type DepartmentRepository interface {
	Create(dep *models.Department) error
	GetByID(id int64) (*models.Department, error)
	List() ([]models.Department, error)
	Update(dep *models.Department) error
	Delete(id int64) error
}

type departmentRepository struct {
	db *sql.DB
}

func NewDepartmentRepository(db *sql.DB) DepartmentRepository {
	return &departmentRepository{db: db}
}

func (r *departmentRepository) Create(dep *models.Department) error {
	const q = `INSERT INTO departments (name, description) VALUES ($1,$2) RETURNING id, created_at`
	return r.db.QueryRow(q, dep.Name, dep.Description).Scan(&dep.ID, &dep.CreatedAt)
}

func (r *departmentRepository) GetByID(id int64) (*models.Department, error) {
	dep := &models.Department{}
	err := r.db.QueryRow(`SELECT id, name, description, created_at FROM departments WHERE id=$1`, id).
		Scan(&dep.ID, &dep.Name, &dep.Description, &dep.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return dep, nil
}

func (r *departmentRepository) List() ([]models.Department, error) {
	rows, err := r.db.Query(`SELECT id, name, description, created_at FROM departments ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deps []models.Department
	for rows.Next() {
		var d models.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.CreatedAt); err != nil {
			return nil, err
		}
		deps = append(deps, d)
	}
	return deps, rows.Err()
}

func (r *departmentRepository) Update(dep *models.Department) error {
	_, err := r.db.Exec(`UPDATE departments SET name=$1, description=$2 WHERE id=$3`,
		dep.Name, dep.Description, dep.ID)
	return err
}

func (r *departmentRepository) Delete(id int64) error {
	_, err := r.db.Exec(`DELETE FROM departments WHERE id=$1`, id)
	return err
}
