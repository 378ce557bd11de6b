package services

import (
	"strings"

	"munitask/internal/apperrors"
	"munitask/internal/models"
	"munitask/internal/repositories"
)

type DepartmentService interface {
	Create(dep *models.Department) error
	GetByID(id int64) (*models.Department, error)
	List() ([]models.Department, error)
	Update(dep *models.Department) error
	Delete(id int64) error
}

type departmentService struct {
	repo repositories.DepartmentRepository
}

func NewDepartmentService(repo repositories.DepartmentRepository) DepartmentService {
	return &departmentService{repo: repo}
}

func (s *departmentService) Create(dep *models.Department) error {
	if strings.TrimSpace(dep.Name) == "" {
		return apperrors.Validation("name is required")
	}
	return s.repo.Create(dep)
}

func (s *departmentService) GetByID(id int64) (*models.Department, error) {
	return s.repo.GetByID(id)
}

func (s *departmentService) List() ([]models.Department, error) {
	return s.repo.List()
}

func (s *departmentService) Update(dep *models.Department) error {
	if strings.TrimSpace(dep.Name) == "" {
		return apperrors.Validation("name is required")
	}
	return s.repo.Update(dep)
}

func (s *departmentService) Delete(id int64) error {
	return s.repo.Delete(id)
}
