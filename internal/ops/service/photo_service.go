package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/akzente/fieldops/internal/ops/entity"
	"github.com/akzente/fieldops/internal/ops/repository"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// PhotoService stores visit photos in object storage and records them
// against the report. Storage is a collaborator: with no client configured
// only the metadata row is written.
type PhotoService struct {
	reportRepo  *repository.ReportRepository
	minioClient *minio.Client
	bucketName  string
}

func NewPhotoService(reportRepo *repository.ReportRepository, minioClient *minio.Client, bucketName string) *PhotoService {
	return &PhotoService{
		reportRepo:  reportRepo,
		minioClient: minioClient,
		bucketName:  bucketName,
	}
}

// Upload stores one photo and records it.
func (s *PhotoService) Upload(ctx context.Context, reportID, uploadedBy, fileName, contentType string, reader io.Reader, size int64) (*entity.ReportPhoto, error) {
	report, err := s.reportRepo.FindByID(ctx, reportID)
	if err != nil {
		return nil, err
	}

	objectKey := fmt.Sprintf("reports/%s/%s%s", report.ID, uuid.New().String()[:16], filepath.Ext(fileName))

	if s.minioClient != nil {
		_, err = s.minioClient.PutObject(ctx, s.bucketName, objectKey, reader, size, minio.PutObjectOptions{
			ContentType: contentType,
		})
		if err != nil {
			return nil, fmt.Errorf("upload photo: %w", err)
		}
	}

	photo := &entity.ReportPhoto{
		ID:         uuid.New().String()[:32],
		ReportID:   report.ID,
		ObjectKey:  objectKey,
		FileName:   fileName,
		Size:       size,
		UploadedBy: uploadedBy,
		CreatedAt:  time.Now(),
	}
	if err := s.reportRepo.AddPhoto(ctx, photo); err != nil {
		return nil, fmt.Errorf("record photo: %w", err)
	}
	return photo, nil
}

// List returns a report's photos.
func (s *PhotoService) List(ctx context.Context, reportID string) ([]entity.ReportPhoto, error) {
	return s.reportRepo.ListPhotos(ctx, reportID)
}
