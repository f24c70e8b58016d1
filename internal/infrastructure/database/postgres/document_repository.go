package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"loan-origination/internal/domain/document"
	"loan-origination/internal/infrastructure/monitoring"
	"loan-origination/internal/pkg/apperrors"
)

const documentColumns = `id, loan_application_id, document_type, document_name, file_path,
	file_size, mime_type, uploaded_by_id, is_verified, verified_by_id, verified_at,
	verification_notes, created_at, updated_at`

type DocumentRepository struct {
	db     DBPool
	logger *slog.Logger
}

func NewDocumentRepository(db DBPool, logger *slog.Logger) *DocumentRepository {
	return &DocumentRepository{db: db, logger: logger.With("component", "DocumentRepository")}
}

var _ document.Repository = (*DocumentRepository)(nil)

func scanDocument(row pgx.Row) (*document.Document, error) {
	var d document.Document
	err := row.Scan(
		&d.ID, &d.LoanApplicationID, &d.DocumentType, &d.DocumentName, &d.FilePath,
		&d.FileSize, &d.MimeType, &d.UploadedByID, &d.IsVerified, &d.VerifiedByID, &d.VerifiedAt,
		&d.VerificationNotes, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DocumentRepository) Save(ctx context.Context, d *document.Document) (*document.Document, error) {
	query := `
        INSERT INTO loan_documents (id, loan_application_id, document_type, document_name, file_path,
                                    file_size, mime_type, uploaded_by_id, is_verified, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING ` + documentColumns

	status := "success"
	startTime := time.Now()

	created, err := scanDocument(r.db.QueryRow(ctx, query,
		d.ID, d.LoanApplicationID, d.DocumentType, d.DocumentName, d.FilePath,
		d.FileSize, d.MimeType, d.UploadedByID, d.IsVerified, d.CreatedAt, d.UpdatedAt,
	))

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("SaveDocument", status, time.Since(startTime))

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert document record", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return created, nil
}

func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*document.Document, error) {
	d, err := scanDocument(r.db.QueryRow(ctx, `SELECT `+documentColumns+` FROM loan_documents WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get document", "document_id", id, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return d, nil
}

func (r *DocumentRepository) FindByApplicationID(ctx context.Context, applicationID string) ([]*document.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM loan_documents WHERE loan_application_id = $1 ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, applicationID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query documents", "application_id", applicationID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	documents := make([]*document.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan document row", "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		documents = append(documents, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return documents, nil
}

func (r *DocumentRepository) Update(ctx context.Context, d *document.Document) (*document.Document, error) {
	query := `
        UPDATE loan_documents
        SET document_type = $1, document_name = $2, is_verified = $3, verified_by_id = $4,
            verified_at = $5, verification_notes = $6, updated_at = NOW()
        WHERE id = $7
        RETURNING ` + documentColumns

	updated, err := scanDocument(r.db.QueryRow(ctx, query,
		d.DocumentType, d.DocumentName, d.IsVerified, d.VerifiedByID,
		d.VerifiedAt, d.VerificationNotes, d.ID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to update document", "document_id", d.ID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return updated, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM loan_documents WHERE id = $1`, id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete document", "document_id", id, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
