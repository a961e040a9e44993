package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphalabs/mobile-api/internal/model"
	"github.com/alphalabs/mobile-api/internal/repository"
	"github.com/alphalabs/mobile-api/internal/repository/repotest"
)

func TestDocumentRepository_Lifecycle(t *testing.T) {
	db := repotest.Open(t)
	repotest.SeedClient(t, db)
	alice := repotest.CreateUser(t, db, "alice@example.com")
	bob := repotest.CreateUser(t, db, "bob@example.com")

	repo := repository.NewDocumentRepository(db)
	ctx := context.Background()

	first := &model.Document{
		ClientID: model.DefaultClientID, Title: "report.pdf", OriginalFilename: "report.pdf",
		StorageKey: "documents/2026/03/01/a.pdf", FileSize: 1024, MimeType: "application/pdf",
		UploadedBy: alice.ID,
	}
	require.NoError(t, repo.Create(ctx, first))
	second := &model.Document{
		ClientID: model.DefaultClientID, Title: "notes.txt", OriginalFilename: "notes.txt",
		StorageKey: "documents/2026/03/01/b.txt", FileSize: 12, MimeType: "text/plain",
		UploadedBy: alice.ID,
	}
	require.NoError(t, repo.Create(ctx, second))

	got, err := repo.GetForUser(ctx, first.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "documents/2026/03/01/a.pdf", got.StorageKey)
	assert.Equal(t, int64(1024), got.FileSize)
	assert.Equal(t, "application/pdf", got.MimeType)

	_, err = repo.GetForUser(ctx, first.ID, bob.ID)
	assert.ErrorIs(t, err, repository.ErrDocumentNotFound)

	docs, err := repo.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, second.ID, docs[0].ID)

	assert.ErrorIs(t, repo.SoftDelete(ctx, first.ID, bob.ID), repository.ErrDocumentNotFound)
	require.NoError(t, repo.SoftDelete(ctx, first.ID, alice.ID))
	assert.ErrorIs(t, repo.SoftDelete(ctx, first.ID, alice.ID), repository.ErrDocumentNotFound)

	_, err = repo.GetForUser(ctx, first.ID, alice.ID)
	assert.ErrorIs(t, err, repository.ErrDocumentNotFound)

	docs, err = repo.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, second.ID, docs[0].ID)
}
