package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/alphalabs/mobile-api/internal/middleware"
	"github.com/alphalabs/mobile-api/internal/service"
)

// Multipart framing around the file part.
const multipartOverhead = 1 << 20

// DocumentHandler handles HTTP requests for document upload and retrieval.
type DocumentHandler struct {
	service *service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(svc *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: svc}
}

// HandleUpload handles POST /api/documents/upload requests. The file is
// read from the multipart field "file".
func (h *DocumentHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("Could not validate credentials"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.service.MaxSize()+multipartOverhead)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		if isBodyTooLarge(err) {
			h.writeTooLarge(w)
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid multipart body"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("file is required"))
		return
	}
	defer file.Close()

	resp, err := h.service.Upload(r.Context(), user.ID, service.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFileTooLarge):
			h.writeTooLarge(w)
		case errors.Is(err, service.ErrFileTypeNotAllowed):
			writeJSON(w, http.StatusBadRequest, errorResponse("File type not allowed"))
		case errors.Is(err, service.ErrFileRequired):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		default:
			internalError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleList handles GET /api/documents/ requests.
func (h *DocumentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("Could not validate credentials"))
		return
	}

	resp, err := h.service.ListDocuments(r.Context(), user.ID)
	if err != nil {
		internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleGet handles GET /api/documents/{documentID} requests.
func (h *DocumentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("Could not validate credentials"))
		return
	}

	docID, err := pathID(r, "documentID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid document id"))
		return
	}

	resp, err := h.service.GetDocument(r.Context(), user.ID, docID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleContent handles GET /api/documents/{documentID}/content requests by
// streaming the stored bytes.
func (h *DocumentHandler) HandleContent(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("Could not validate credentials"))
		return
	}

	docID, err := pathID(r, "documentID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid document id"))
		return
	}

	doc, content, err := h.service.OpenContent(r.Context(), user.ID, docID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer content.Close()

	w.Header().Set("Content-Type", doc.MimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": doc.OriginalFilename,
	}))
	if doc.FileSize > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(doc.FileSize, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, content); err != nil {
		slog.Warn("streaming document interrupted", "document_id", doc.ID, "error", err)
	}
}

// HandleDelete handles DELETE /api/documents/{documentID} requests.
func (h *DocumentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("Could not validate credentials"))
		return
	}

	docID, err := pathID(r, "documentID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid document id"))
		return
	}

	if err := h.service.DeleteDocument(r.Context(), user.ID, docID); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *DocumentHandler) writeTooLarge(w http.ResponseWriter) {
	writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse(
		fmt.Sprintf("File size exceeds maximum limit of %d bytes", h.service.MaxSize()),
	))
}

func (h *DocumentHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrDocumentNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse("Document not found"))
		return
	}
	internalError(w, r, err)
}
