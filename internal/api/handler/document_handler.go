package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"loan-origination/internal/api/handler/dto"
	"loan-origination/internal/api/middleware"
	"loan-origination/internal/domain/document"
	"loan-origination/internal/pkg/apperrors"
)

type DocumentHandler struct {
	service     document.Service
	maxFileSize int64
	logger      *slog.Logger
}

func NewDocumentHandler(s document.Service, maxFileSize int64, l *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		service:     s,
		maxFileSize: maxFileSize,
		logger:      l.With("component", "DocumentHandler"),
	}
}

// UploadDocument attaches a file to a loan application.
//
// @Summary Upload a document
// @Description Accepts a multipart form with a "file" part and a "document_type" field.
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param applicationID path string true "Application ID"
// @Param file formData file true "Document file"
// @Param document_type formData string true "Document type"
// @Success 201 {object} document.Document "Document stored"
// @Failure 400 {object} dto.ErrorResponse "Bad file type, oversize file or missing fields"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /loan-applications/{applicationID}/documents [post]
// @Security BearerAuth
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	applicationID := chi.URLParam(r, "applicationID")

	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		respondError(w, fmt.Errorf("%w: failed to parse multipart form: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	documentType := r.FormValue("document_type")
	if err := dto.ValidateDocumentType(documentType); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, fmt.Errorf("%w: file part is required: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	defer file.Close()

	created, err := h.service.Upload(r.Context(), document.UploadInput{
		LoanApplicationID: applicationID,
		DocumentType:      documentType,
		DocumentName:      header.Filename,
		Filename:          header.Filename,
		MimeType:          header.Header.Get("Content-Type"),
		Size:              header.Size,
		Contents:          file,
		UploadedByID:      middleware.UserIDFromContext(r.Context()),
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// ListDocuments lists the documents attached to an application.
//
// @Summary List application documents
// @Tags Documents
// @Produce json
// @Param applicationID path string true "Application ID"
// @Success 200 {array} document.Document "Documents"
// @Router /loan-applications/{applicationID}/documents [get]
// @Security BearerAuth
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	documents, err := h.service.ListByApplication(r.Context(), chi.URLParam(r, "applicationID"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, documents)
}

// GetDocument fetches a single document record.
//
// @Summary Get a document
// @Tags Documents
// @Produce json
// @Param documentID path string true "Document ID"
// @Success 200 {object} document.Document "Document"
// @Failure 404 {object} dto.ErrorResponse "Document not found"
// @Router /documents/{documentID} [get]
// @Security BearerAuth
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.GetDocument(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, d)
}

// VerifyDocument marks a document as verified or rejected by a reviewer.
//
// @Summary Verify a document
// @Tags Documents
// @Accept json
// @Produce json
// @Param documentID path string true "Document ID"
// @Param request body dto.VerifyDocumentRequest true "Verification payload"
// @Success 200 {object} document.Document "Updated document"
// @Failure 404 {object} dto.ErrorResponse "Document not found"
// @Router /documents/{documentID}/verify [patch]
// @Security BearerAuth
func (h *DocumentHandler) VerifyDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "documentID")

	var req dto.VerifyDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	updated, err := h.service.Verify(r.Context(), id, document.VerifyInput{
		IsVerified:        &req.IsVerified,
		VerificationNotes: req.VerificationNotes,
	}, middleware.UserIDFromContext(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// DeleteDocument removes a document and its stored file.
//
// @Summary Delete a document
// @Tags Documents
// @Param documentID path string true "Document ID"
// @Success 204 "Document deleted"
// @Failure 404 {object} dto.ErrorResponse "Document not found"
// @Router /documents/{documentID} [delete]
// @Security BearerAuth
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "documentID")); err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
