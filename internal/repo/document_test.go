package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/docflow/internal/models"
)

func TestDocumentCRUD(t *testing.T) {
	r := initTestRepo(t)
	ctx := context.Background()

	doc := models.Document{
		Name:     "report.pdf",
		Type:     "application/pdf",
		Status:   models.DocumentStatusUploaded,
		FilePath: "./uploads/report.pdf",
	}
	require.NoError(t, r.CreateDocument(ctx, &doc))
	require.NotZero(t, doc.ID)

	docs, err := r.Documents(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	got, err := r.DocumentByID(ctx, doc.ID)
	require.NoError(t, err)
	require.Equal(t, "report.pdf", got.Name)

	got.Status = "Processed"
	require.NoError(t, r.SaveDocument(ctx, got))

	saved, err := r.DocumentByID(ctx, doc.ID)
	require.NoError(t, err)
	require.Equal(t, "Processed", saved.Status)

	require.NoError(t, r.DeleteDocument(ctx, doc.ID))
	require.ErrorIs(t, r.DeleteDocument(ctx, doc.ID), ErrDocumentNotFound)

	_, err = r.DocumentByID(ctx, doc.ID)
	require.ErrorIs(t, err, ErrDocumentNotFound)
}
