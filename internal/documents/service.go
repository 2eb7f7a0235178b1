package documents

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"greenlight/approval-portal/approval-portal-backend/pkg/storage"
)

// Service stores step documents in the blob store. Uploading is independent
// of the step update; callers chain upload then step-update.
type Service interface {
	UploadDocument(ctx context.Context, body io.Reader, fileName, projectID string, stepID int) (string, error)
	RemoveDocument(ctx context.Context, fileName, projectID string, stepID int) error
}

// Notifier receives document events for the presentation layer.
type Notifier interface {
	DocumentUploaded(projectID string, stepID int, fileName string)
}

type documentService struct {
	s3       storage.S3Client
	bucket   string
	notifier Notifier
	logger   *zap.Logger
}

func NewService(s3 storage.S3Client, bucket string, notifier Notifier, logger *zap.Logger) Service {
	return &documentService{
		s3:       s3,
		bucket:   bucket,
		notifier: notifier,
		logger:   logger,
	}
}

// objectKey is deterministic per project and step, so re-uploading a file
// for the same step overwrites the previous one.
func objectKey(projectID string, stepID int, fileName string) string {
	return fmt.Sprintf("projects/%s/step_%d/%s", projectID, stepID, fileName)
}

func (s *documentService) UploadDocument(ctx context.Context, body io.Reader, fileName, projectID string, stepID int) (string, error) {
	key := objectKey(projectID, stepID, fileName)
	if err := s.s3.Upload(ctx, s.bucket, key, body); err != nil {
		s.logger.Error("document upload failed",
			zap.String("project_id", projectID), zap.Int("step_id", stepID),
			zap.String("file", fileName), zap.Error(err))
		return "", err
	}

	url := s.s3.PublicURL(s.bucket, key)
	if s.notifier != nil {
		s.notifier.DocumentUploaded(projectID, stepID, fileName)
	}
	return url, nil
}

func (s *documentService) RemoveDocument(ctx context.Context, fileName, projectID string, stepID int) error {
	return s.s3.Delete(ctx, s.bucket, objectKey(projectID, stepID, fileName))
}
