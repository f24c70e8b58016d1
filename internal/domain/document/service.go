package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"loan-origination/internal/infrastructure/monitoring"
	"loan-origination/internal/pkg/apperrors"
)

var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".pdf":  {},
	".doc":  {},
	".docx": {},
}

var allowedMimeTypes = map[string]struct{}{
	"image/jpeg":         {},
	"image/jpg":          {},
	"image/png":          {},
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
}

type UploadInput struct {
	LoanApplicationID string
	DocumentType      string
	DocumentName      string
	Filename          string
	MimeType          string
	Size              int64
	Contents          io.Reader
	UploadedByID      string
}

type VerifyInput struct {
	DocumentName      *string
	IsVerified        *bool
	VerificationNotes *string
}

type Service interface {
	Upload(ctx context.Context, input UploadInput) (*Document, error)

	GetDocument(ctx context.Context, id string) (*Document, error)

	ListByApplication(ctx context.Context, applicationID string) ([]*Document, error)

	// Verify applies a verification patch; setting IsVerified stamps the
	// verifying user and time.
	Verify(ctx context.Context, id string, input VerifyInput, verifiedByID string) (*Document, error)

	// Delete removes the blob first, then the record. A missing blob is
	// logged and ignored so orphaned records can still be cleaned up.
	Delete(ctx context.Context, id string) error
}

type documentService struct {
	repo        Repository
	store       BlobStore
	maxFileSize int64
	logger      *slog.Logger
}

func NewService(repo Repository, store BlobStore, maxFileSize int64, logger *slog.Logger) Service {
	if repo == nil || store == nil {
		panic("document service dependencies cannot be nil")
	}
	return &documentService{
		repo:        repo,
		store:       store,
		maxFileSize: maxFileSize,
		logger:      logger.With(slog.String("component", "documentService")),
	}
}

func (s *documentService) Upload(ctx context.Context, input UploadInput) (*Document, error) {
	s.logger.InfoContext(ctx, "Uploading loan document", "application_id", input.LoanApplicationID, "filename", input.Filename)

	if input.DocumentType == "" {
		return nil, apperrors.NewValidationError("document_type", "cannot be empty")
	}
	if input.DocumentName == "" {
		return nil, apperrors.NewValidationError("document_name", "cannot be empty")
	}
	if s.maxFileSize > 0 && input.Size > s.maxFileSize {
		return nil, fmt.Errorf("%w: file size exceeds maximum allowed size of %dMB",
			apperrors.ErrInvalidArgument, s.maxFileSize/(1024*1024))
	}

	ext := strings.ToLower(filepath.Ext(input.Filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return nil, fmt.Errorf("%w: file type %q not allowed", apperrors.ErrInvalidArgument, ext)
	}
	if _, ok := allowedMimeTypes[input.MimeType]; !ok {
		return nil, fmt.Errorf("%w: MIME type %q not allowed", apperrors.ErrInvalidArgument, input.MimeType)
	}

	storedName := uuid.NewString() + ext
	subdir := filepath.Join("loan-documents", input.LoanApplicationID)
	path, size, err := s.store.Save(ctx, subdir, storedName, input.Contents)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to store uploaded file", "error", err)
		return nil, fmt.Errorf("%w: failed to save file: %v", apperrors.ErrInternalServer, err)
	}

	now := time.Now().UTC()
	created, err := s.repo.Save(ctx, &Document{
		ID:                uuid.NewString(),
		LoanApplicationID: input.LoanApplicationID,
		DocumentType:      input.DocumentType,
		DocumentName:      input.DocumentName,
		FilePath:          path,
		FileSize:          size,
		MimeType:          input.MimeType,
		UploadedByID:      input.UploadedByID,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		// The record failed; do not leave the blob behind.
		if delErr := s.store.Delete(ctx, path); delErr != nil {
			s.logger.WarnContext(ctx, "Failed to remove orphaned blob", "path", path, "error", delErr)
		}
		return nil, err
	}

	monitoring.RecordDocumentUpload()
	s.logger.InfoContext(ctx, "Loan document uploaded", "document_id", created.ID, "path", path)
	return created, nil
}

func (s *documentService) GetDocument(ctx context.Context, id string) (*Document, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: document %s not found", apperrors.ErrNotFound, id)
		}
		return nil, err
	}
	return d, nil
}

func (s *documentService) ListByApplication(ctx context.Context, applicationID string) ([]*Document, error) {
	return s.repo.FindByApplicationID(ctx, applicationID)
}

func (s *documentService) Verify(ctx context.Context, id string, input VerifyInput, verifiedByID string) (*Document, error) {
	d, err := s.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.DocumentName != nil {
		d.DocumentName = *input.DocumentName
	}
	if input.VerificationNotes != nil {
		d.VerificationNotes = input.VerificationNotes
	}
	if input.IsVerified != nil {
		d.IsVerified = *input.IsVerified
		d.VerifiedByID = &verifiedByID
		now := time.Now().UTC()
		d.VerifiedAt = &now
	}
	d.UpdatedAt = time.Now().UTC()

	return s.repo.Update(ctx, d)
}

func (s *documentService) Delete(ctx context.Context, id string) error {
	d, err := s.GetDocument(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, d.FilePath); err != nil {
		s.logger.WarnContext(ctx, "Failed to delete stored file", "path", d.FilePath, "error", err)
	}

	return s.repo.Delete(ctx, id)
}
