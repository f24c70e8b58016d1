package dto

import "fmt"

type VerifyDocumentRequest struct {
	IsVerified        bool    `json:"is_verified"`
	VerificationNotes *string `json:"verification_notes,omitempty"`
}

type UploadDocumentResponse struct {
	ID                string `json:"id"`
	LoanApplicationID string `json:"loan_application_id"`
	DocumentType      string `json:"document_type"`
	DocumentName      string `json:"document_name"`
	FileSize          int64  `json:"file_size"`
	MimeType          string `json:"mime_type"`
}

func ValidateDocumentType(documentType string) error {
	if documentType == "" {
		return fmt.Errorf("document_type is required")
	}
	return nil
}
