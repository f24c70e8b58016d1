package document

import "time"

type Document struct {
	ID                string     `json:"id"`
	LoanApplicationID string     `json:"loan_application_id"`
	DocumentType      string     `json:"document_type"`
	DocumentName      string     `json:"document_name"`
	FilePath          string     `json:"file_path"`
	FileSize          int64      `json:"file_size"`
	MimeType          string     `json:"mime_type"`
	UploadedByID      string     `json:"uploaded_by_id"`
	IsVerified        bool       `json:"is_verified"`
	VerifiedByID      *string    `json:"verified_by_id,omitempty"`
	VerifiedAt        *time.Time `json:"verified_at,omitempty"`
	VerificationNotes *string    `json:"verification_notes,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
