package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphalabs/mobile-api/internal/model"
	"github.com/alphalabs/mobile-api/internal/repository"
	"github.com/alphalabs/mobile-api/internal/repository/repotest"
	"github.com/alphalabs/mobile-api/internal/storage"
)

type recordingStore struct {
	storage.Store
	saved   []string
	deleted []string
}

func (r *recordingStore) Save(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	r.saved = append(r.saved, key)
	return r.Store.Save(ctx, key, body, size, contentType)
}

func (r *recordingStore) Delete(ctx context.Context, key string) error {
	r.deleted = append(r.deleted, key)
	return r.Store.Delete(ctx, key)
}

func newTestDocumentService(t *testing.T, docs DocumentStore, maxSize int64) (*DocumentService, *recordingStore) {
	t.Helper()
	local, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	blobs := &recordingStore{Store: local}
	return NewDocumentService(docs, blobs, maxSize), blobs
}

func pdfUpload(body string) Upload {
	return Upload{
		Filename:    "report.PDF",
		ContentType: "application/pdf",
		Size:        int64(len(body)),
		Body:        strings.NewReader(body),
	}
}

func TestUploadDocument(t *testing.T) {
	env := newTestEnv(t)
	alice := repotest.CreateUser(t, env.db, "alice@example.com")
	svc, blobs := newTestDocumentService(t, repository.NewDocumentRepository(env.db), 1024)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, alice.ID, pdfUpload("%PDF-1.7 content"))
	require.NoError(t, err)
	assert.Equal(t, "report.PDF", doc.Title)
	assert.Equal(t, "report.PDF", doc.OriginalFilename)
	assert.Equal(t, int64(16), doc.FileSize)
	assert.Equal(t, "application/pdf", doc.MimeType)
	assert.Equal(t, alice.ID, doc.UploadedBy)

	require.Len(t, blobs.saved, 1)
	assert.True(t, strings.HasSuffix(blobs.saved[0], ".pdf"))

	meta, rc, err := svc.OpenContent(ctx, alice.ID, doc.ID)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 content", string(data))
	assert.Equal(t, "application/pdf", meta.MimeType)
}

func TestUploadDocument_Rejections(t *testing.T) {
	env := newTestEnv(t)
	alice := repotest.CreateUser(t, env.db, "alice@example.com")
	svc, blobs := newTestDocumentService(t, repository.NewDocumentRepository(env.db), 8)
	ctx := context.Background()

	_, err := svc.Upload(ctx, alice.ID, pdfUpload("definitely too large"))
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.Empty(t, blobs.saved)

	undeclared := pdfUpload("definitely too large")
	undeclared.Size = -1
	_, err = svc.Upload(ctx, alice.ID, undeclared)
	assert.ErrorIs(t, err, ErrFileTooLarge)
	require.Len(t, blobs.saved, 1)
	assert.Equal(t, blobs.saved, blobs.deleted)

	exe := pdfUpload("MZ")
	exe.ContentType = "application/x-msdownload"
	_, err = svc.Upload(ctx, alice.ID, exe)
	assert.ErrorIs(t, err, ErrFileTypeNotAllowed)

	_, err = svc.Upload(ctx, alice.ID, Upload{Filename: "", ContentType: "text/plain", Body: bytes.NewReader(nil)})
	assert.ErrorIs(t, err, ErrFileRequired)
}

func TestUploadDocument_ContentTypeParameters(t *testing.T) {
	env := newTestEnv(t)
	alice := repotest.CreateUser(t, env.db, "alice@example.com")
	svc, _ := newTestDocumentService(t, repository.NewDocumentRepository(env.db), 1024)

	up := Upload{Filename: "notes.txt", ContentType: "Text/Plain; charset=utf-8", Size: 5, Body: strings.NewReader("notes")}
	doc, err := svc.Upload(context.Background(), alice.ID, up)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", doc.MimeType)
}

type failingDocumentStore struct {
	DocumentStore
}

func (failingDocumentStore) Create(context.Context, *model.Document) error {
	return errors.New("insert failed")
}

func TestUploadDocument_MetadataFailureRemovesBlob(t *testing.T) {
	svc, blobs := newTestDocumentService(t, failingDocumentStore{}, 1024)

	_, err := svc.Upload(context.Background(), 1, pdfUpload("%PDF"))
	require.Error(t, err)

	require.Len(t, blobs.saved, 1)
	assert.Equal(t, blobs.saved, blobs.deleted)

	_, err = blobs.Open(context.Background(), blobs.saved[0])
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDocuments_ScopedToOwner(t *testing.T) {
	env := newTestEnv(t)
	alice := repotest.CreateUser(t, env.db, "alice@example.com")
	bob := repotest.CreateUser(t, env.db, "bob@example.com")
	svc, _ := newTestDocumentService(t, repository.NewDocumentRepository(env.db), 1024)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, alice.ID, pdfUpload("%PDF"))
	require.NoError(t, err)

	_, err = svc.GetDocument(ctx, bob.ID, doc.ID)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	_, _, err = svc.OpenContent(ctx, bob.ID, doc.ID)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	assert.ErrorIs(t, svc.DeleteDocument(ctx, bob.ID, doc.ID), ErrDocumentNotFound)

	list, err := svc.ListDocuments(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, svc.DeleteDocument(ctx, alice.ID, doc.ID))
	_, err = svc.GetDocument(ctx, alice.ID, doc.ID)
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	list, err = svc.ListDocuments(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
