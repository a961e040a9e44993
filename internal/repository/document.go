package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/alphalabs/mobile-api/internal/model"
)

var ErrDocumentNotFound = errors.New("document not found")

const documentColumns = `id, client_id, title, original_filename, file_path, file_size, mime_type,
	is_deleted, uploaded_by, created_at, updated_at`

// DocumentRepository handles document metadata persistence. Soft-deleted
// rows are invisible to every read.
type DocumentRepository struct {
	db *DB
}

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(db *DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create inserts document metadata and sets the generated ID and timestamps.
func (r *DocumentRepository) Create(ctx context.Context, doc *model.Document) error {
	query := `INSERT INTO documents (client_id, title, original_filename, file_path, file_size, mime_type,
		is_deleted, uploaded_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := nowUTC()
	id, err := r.db.insert(ctx, r.db, query,
		doc.ClientID, doc.Title, doc.OriginalFilename, doc.StorageKey, doc.FileSize, doc.MimeType,
		false, doc.UploadedBy, now, now,
	)
	if err != nil {
		return err
	}

	doc.ID = id
	doc.IsDeleted = false
	doc.CreatedAt = now
	doc.UpdatedAt = now
	return nil
}

// GetForUser retrieves a live document uploaded by userID.
func (r *DocumentRepository) GetForUser(ctx context.Context, docID, userID int64) (*model.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents
		WHERE id = ? AND uploaded_by = ? AND is_deleted = ?`

	doc, err := scanDocument(r.db.QueryRowContext(ctx, r.db.rebind(query), docID, userID, false))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}

	return doc, nil
}

// ListByUser returns the user's live documents, newest first.
func (r *DocumentRepository) ListByUser(ctx context.Context, userID int64) ([]model.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents
		WHERE uploaded_by = ? AND is_deleted = ?
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, r.db.rebind(query), userID, false)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	return docs, rows.Err()
}

// SoftDelete flags a live document owned by userID as deleted.
func (r *DocumentRepository) SoftDelete(ctx context.Context, docID, userID int64) error {
	query := `UPDATE documents SET is_deleted = ?, updated_at = ?
		WHERE id = ? AND uploaded_by = ? AND is_deleted = ?`

	result, err := r.db.ExecContext(ctx, r.db.rebind(query), true, nowUTC(), docID, userID, false)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func scanDocument(row rowScanner) (*model.Document, error) {
	doc := &model.Document{}
	var (
		title      sql.NullString
		size       sql.NullInt64
		mimeType   sql.NullString
		uploadedBy sql.NullInt64
	)
	if err := row.Scan(
		&doc.ID, &doc.ClientID, &title, &doc.OriginalFilename, &doc.StorageKey, &size, &mimeType,
		&doc.IsDeleted, &uploadedBy, &doc.CreatedAt, &doc.UpdatedAt,
	); err != nil {
		return nil, err
	}

	doc.Title = title.String
	doc.FileSize = size.Int64
	doc.MimeType = mimeType.String
	doc.UploadedBy = uploadedBy.Int64
	return doc, nil
}
