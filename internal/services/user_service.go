package services

import (
	"log"
	"strings"
	"time"

	"munitask/internal/apperrors"
	"munitask/internal/models"
	"munitask/internal/repositories"
)

type UserService interface {
	CreateUser(user *models.User, plainPassword string) error
	GetUserByID(id int64) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	UpdateUser(user *models.User) error
	DeleteUser(id int64) error
	ListUsers(limit, offset int) ([]*models.User, error)
	GetUserCount() (int, error)
	GetUserCountByRole(roleID int) (int, error)

	UpdateRefresh(userID int64, token string, expiresAt time.Time) error
	ClearRefresh(userID int64) error
	GetByRefreshToken(token string) (*models.User, error)
}

type userService struct {
	repo         repositories.UserRepository
	emailService EmailService
	authService  AuthService
}

func NewUserService(repo repositories.UserRepository, emailService EmailService, authService AuthService) UserService {
	return &userService{
		repo:         repo,
		emailService: emailService,
		authService:  authService,
	}
}

func (s *userService) CreateUser(user *models.User, plainPassword string) error {
	if strings.TrimSpace(user.Email) == "" {
		return apperrors.Validation("email is required")
	}
	if strings.TrimSpace(plainPassword) == "" {
		return apperrors.Validation("password is required")
	}

	hashed, err := s.authService.HashPassword(strings.TrimSpace(plainPassword))
	if err != nil {
		return err
	}
	user.PasswordHash = hashed
	user.Email = strings.TrimSpace(strings.ToLower(user.Email))

	if err := s.repo.Create(user); err != nil {
		return err
	}

	if s.emailService != nil {
		// el correo de bienvenida no bloquea el alta
		if err := s.emailService.SendWelcomeEmail(user.Email, user.FullName); err != nil {
			log.Printf("[user][create] welcome email to %s failed: %v", user.Email, err)
		}
	}
	return nil
}

func (s *userService) GetUserByID(id int64) (*models.User, error) {
	return s.repo.GetByID(id)
}

func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	return s.repo.GetByEmail(email)
}

func (s *userService) UpdateUser(user *models.User) error {
	return s.repo.Update(user)
}

func (s *userService) DeleteUser(id int64) error {
	return s.repo.Delete(id)
}

func (s *userService) ListUsers(limit, offset int) ([]*models.User, error) {
	return s.repo.List(limit, offset)
}

func (s *userService) GetUserCount() (int, error) {
	return s.repo.GetCount()
}

func (s *userService) GetUserCountByRole(roleID int) (int, error) {
	return s.repo.GetCountByRole(roleID)
}

func (s *userService) UpdateRefresh(userID int64, token string, expiresAt time.Time) error {
	return s.repo.UpdateRefresh(userID, token, expiresAt)
}

func (s *userService) ClearRefresh(userID int64) error {
	return s.repo.ClearRefresh(userID)
}

func (s *userService) GetByRefreshToken(token string) (*models.User, error) {
	return s.repo.GetByRefreshToken(token)
}
