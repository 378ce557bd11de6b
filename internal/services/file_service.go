package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"munitask/internal/apperrors"
	"munitask/internal/models"
	"munitask/internal/repositories"
)

// FileService cubre la mecánica de almacenamiento de adjuntos:
// fila en BD + fichero en disco bajo files.root_dir.
type FileService interface {
	SaveUpload(ctx context.Context, header *multipart.FileHeader, uploadedBy int64) (*models.File, error)
	GetByID(ctx context.Context, id int64) (*models.File, error)
	ListByTask(ctx context.Context, taskID int64) ([]models.File, error)
	Attach(ctx context.Context, fileID, taskID int64) error
	Detach(ctx context.Context, fileID int64) error
	// DeleteFile borra la fila y, en el mejor esfuerzo, el fichero en disco.
	DeleteFile(ctx context.Context, id int64) error
	AbsolutePath(f *models.File) string
}

type fileService struct {
	repo    repositories.FileRepository
	rootDir string
}

func NewFileService(repo repositories.FileRepository, rootDir string) FileService {
	return &fileService{repo: repo, rootDir: filepath.Clean(rootDir)}
}

func (s *fileService) SaveUpload(ctx context.Context, header *multipart.FileHeader, uploadedBy int64) (*models.File, error) {
	if header == nil || header.Filename == "" {
		return nil, apperrors.Validation("file is required")
	}

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	// nombre en disco: uuid + extensión original, nunca el nombre del cliente
	original := filepath.Base(header.Filename)
	stored := uuid.NewString() + strings.ToLower(filepath.Ext(original))

	if err := os.MkdirAll(s.rootDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure files root: %w", err)
	}
	dst, err := os.Create(filepath.Join(s.rootDir, stored))
	if err != nil {
		return nil, fmt.Errorf("create stored file: %w", err)
	}
	defer dst.Close()

	size, err := io.Copy(dst, src)
	if err != nil {
		return nil, fmt.Errorf("write stored file: %w", err)
	}

	f := &models.File{
		FileName:   original,
		StoredPath: stored,
		MimeType:   header.Header.Get("Content-Type"),
		Size:       size,
		UploadedBy: uploadedBy,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		// la fila falló: no dejamos el fichero huérfano en disco
		if rmErr := os.Remove(filepath.Join(s.rootDir, stored)); rmErr != nil {
			log.Printf("[file][save] cleanup failed for %s: %v", stored, rmErr)
		}
		return nil, err
	}
	return f, nil
}

func (s *fileService) GetByID(ctx context.Context, id int64) (*models.File, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *fileService) ListByTask(ctx context.Context, taskID int64) ([]models.File, error) {
	return s.repo.ListByTask(ctx, taskID)
}

func (s *fileService) Attach(ctx context.Context, fileID, taskID int64) error {
	return s.repo.Attach(ctx, fileID, taskID)
}

func (s *fileService) Detach(ctx context.Context, fileID int64) error {
	return s.repo.Detach(ctx, fileID)
}

func (s *fileService) DeleteFile(ctx context.Context, id int64) error {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if f == nil {
		return apperrors.NotFound("file %d not found", id)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := os.Remove(s.AbsolutePath(f)); err != nil && !os.IsNotExist(err) {
		// el registro ya no existe; el fichero suelto solo se registra
		log.Printf("[file][delete] disk remove failed id=%d path=%s: %v", id, f.StoredPath, err)
	}
	return nil
}

func (s *fileService) AbsolutePath(f *models.File) string {
	return filepath.Join(s.rootDir, filepath.Base(f.StoredPath))
}
