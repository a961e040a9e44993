package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/alphalabs/mobile-api/internal/model"
	"github.com/alphalabs/mobile-api/internal/repository"
	"github.com/alphalabs/mobile-api/internal/storage"
)

var (
	ErrDocumentNotFound   = errors.New("document not found")
	ErrFileRequired       = errors.New("file is required")
	ErrFileTooLarge       = errors.New("file exceeds the maximum upload size")
	ErrFileTypeNotAllowed = errors.New("file type not allowed")
)

var allowedMimeTypes = map[string]bool{
	"application/pdf":    true,
	"text/plain":         true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"image/jpeg": true,
	"image/png":  true,
}

// DocumentStore is the metadata persistence the document flows depend on.
type DocumentStore interface {
	Create(ctx context.Context, doc *model.Document) error
	GetForUser(ctx context.Context, docID, userID int64) (*model.Document, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Document, error)
	SoftDelete(ctx context.Context, docID, userID int64) error
}

// Upload is an incoming file.
type Upload struct {
	Filename    string
	ContentType string
	// Size is the declared size, or -1 when unknown.
	Size int64
	Body io.Reader
}

// DocumentService handles document uploads and retrieval. Bytes go to blob
// storage; metadata goes to the database.
type DocumentService struct {
	docs    DocumentStore
	blobs   storage.Store
	maxSize int64
	now     func() time.Time
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(docs DocumentStore, blobs storage.Store, maxSize int64) *DocumentService {
	return &DocumentService{
		docs:    docs,
		blobs:   blobs,
		maxSize: maxSize,
		now:     time.Now,
	}
}

// MaxSize returns the upload size limit in bytes.
func (s *DocumentService) MaxSize() int64 {
	return s.maxSize
}

// Upload validates and stores a file for the user. If recording the metadata
// fails the stored bytes are removed again.
func (s *DocumentService) Upload(ctx context.Context, userID int64, up Upload) (model.DocumentResponse, error) {
	filename := path.Base(strings.ReplaceAll(strings.TrimSpace(up.Filename), "\\", "/"))
	if up.Body == nil || filename == "" || filename == "." || filename == "/" {
		return model.DocumentResponse{}, ErrFileRequired
	}
	if up.Size > s.maxSize {
		return model.DocumentResponse{}, ErrFileTooLarge
	}

	mimeType, ok := normalizeMimeType(up.ContentType)
	if !ok {
		return model.DocumentResponse{}, ErrFileTypeNotAllowed
	}

	key := storage.NewKey(s.now().UTC(), path.Ext(filename))
	body := &countingReader{r: io.LimitReader(up.Body, s.maxSize+1)}
	if err := s.blobs.Save(ctx, key, body, up.Size, mimeType); err != nil {
		return model.DocumentResponse{}, fmt.Errorf("storing document: %w", err)
	}
	if body.n > s.maxSize {
		s.discard(key)
		return model.DocumentResponse{}, ErrFileTooLarge
	}

	doc := &model.Document{
		ClientID:         model.DefaultClientID,
		Title:            filename,
		OriginalFilename: filename,
		StorageKey:       key,
		FileSize:         body.n,
		MimeType:         mimeType,
		UploadedBy:       userID,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		s.discard(key)
		return model.DocumentResponse{}, err
	}

	return toDocumentResponse(doc), nil
}

// ListDocuments returns the user's documents, newest first.
func (s *DocumentService) ListDocuments(ctx context.Context, userID int64) ([]model.DocumentResponse, error) {
	docs, err := s.docs.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]model.DocumentResponse, 0, len(docs))
	for i := range docs {
		resp = append(resp, toDocumentResponse(&docs[i]))
	}
	return resp, nil
}

// GetDocument returns the metadata of one of the user's documents.
func (s *DocumentService) GetDocument(ctx context.Context, userID, docID int64) (model.DocumentResponse, error) {
	doc, err := s.ownedDocument(ctx, userID, docID)
	if err != nil {
		return model.DocumentResponse{}, err
	}
	return toDocumentResponse(doc), nil
}

// OpenContent returns the document metadata and a reader over its bytes.
// The caller must close the reader.
func (s *DocumentService) OpenContent(ctx context.Context, userID, docID int64) (*model.Document, io.ReadCloser, error) {
	doc, err := s.ownedDocument(ctx, userID, docID)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.blobs.Open(ctx, doc.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			slog.Warn("document blob missing", "document_id", doc.ID, "key", doc.StorageKey)
			return nil, nil, ErrDocumentNotFound
		}
		return nil, nil, err
	}
	return doc, rc, nil
}

// DeleteDocument hides one of the user's documents. The stored bytes are kept.
func (s *DocumentService) DeleteDocument(ctx context.Context, userID, docID int64) error {
	if err := s.docs.SoftDelete(ctx, docID, userID); err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return ErrDocumentNotFound
		}
		return err
	}
	return nil
}

func (s *DocumentService) ownedDocument(ctx context.Context, userID, docID int64) (*model.Document, error) {
	doc, err := s.docs.GetForUser(ctx, docID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return doc, nil
}

// discard removes a blob whose upload could not be completed. It runs on a
// fresh context so a cancelled request still cleans up.
func (s *DocumentService) discard(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.blobs.Delete(ctx, key); err != nil {
		slog.Error("failed to remove orphaned blob", "key", key, "error", err)
	}
}

func normalizeMimeType(contentType string) (string, bool) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", false
	}
	mediaType = strings.ToLower(mediaType)
	return mediaType, allowedMimeTypes[mediaType]
}

func toDocumentResponse(d *model.Document) model.DocumentResponse {
	return model.DocumentResponse{
		ID:               d.ID,
		Title:            d.Title,
		OriginalFilename: d.OriginalFilename,
		FileSize:         d.FileSize,
		MimeType:         d.MimeType,
		UploadedBy:       d.UploadedBy,
		CreatedOn:        d.CreatedAt,
	}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
