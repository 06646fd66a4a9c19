package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/docflow/internal/models"
)

func (env *testEnv) ingestDocument(t *testing.T, tok string) models.Document {
	t.Helper()

	rec := env.doUpload("/documents/ingest", "file", "report.pdf", []byte("file contents"), nil, tok)
	require.Equal(t, http.StatusCreated, rec.Code)

	var doc models.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	return doc
}

func TestDocumentsRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, http.StatusUnauthorized, env.doJSON(http.MethodGet, "/documents", nil, "").Code)
	require.Equal(t, http.StatusUnauthorized, env.doUpload("/documents/ingest", "file", "a.txt", []byte("x"), nil, "").Code)
}

func TestDocumentsIngest(t *testing.T) {
	env := newTestEnv(t)
	tok := env.registerAndLogin("a@x.com", "password", models.RoleViewer)

	doc := env.ingestDocument(t, tok)
	require.NotZero(t, doc.ID)
	require.Equal(t, models.DocumentStatusUploaded, doc.Status)
	require.NotEmpty(t, doc.Name)
	require.NotEqual(t, "report.pdf", doc.Name)

	// The upload really is on disk.
	data, err := os.ReadFile(doc.FilePath)
	require.NoError(t, err)
	require.Equal(t, []byte("file contents"), data)
}

func TestDocumentsIngestWithMetadata(t *testing.T) {
	env := newTestEnv(t)
	tok := env.registerAndLogin("a@x.com", "password", models.RoleViewer)

	fields := map[string]string{"name": "q3-report.pdf", "type": "application/pdf"}
	rec := env.doUpload("/documents/ingest", "file", "report.pdf", []byte("file contents"), fields, tok)
	require.Equal(t, http.StatusCreated, rec.Code)

	var doc models.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Equal(t, "q3-report.pdf", doc.Name)
	require.Equal(t, "application/pdf", doc.Type)
	require.Equal(t, models.DocumentStatusUploaded, doc.Status)

	// The file on disk still gets its own unique name.
	require.NotContains(t, doc.FilePath, "q3-report.pdf")
	data, err := os.ReadFile(doc.FilePath)
	require.NoError(t, err)
	require.Equal(t, []byte("file contents"), data)
}

func TestDocumentsIngestWithoutFile(t *testing.T) {
	env := newTestEnv(t)
	tok := env.registerAndLogin("a@x.com", "password", models.RoleViewer)

	rec := env.doJSON(http.MethodPost, "/documents/ingest", map[string]string{"name": "x"}, tok)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentsListAndGet(t *testing.T) {
	env := newTestEnv(t)
	tok := env.registerAndLogin("a@x.com", "password", models.RoleViewer)
	doc := env.ingestDocument(t, tok)

	rec := env.doJSON(http.MethodGet, "/documents", nil, tok)
	require.Equal(t, http.StatusOK, rec.Code)

	var docs []models.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
	require.Len(t, docs, 1)

	rec = env.doJSON(http.MethodGet, fmt.Sprintf("/documents/%d", doc.ID), nil, tok)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Equal(t, http.StatusNotFound, env.doJSON(http.MethodGet, "/documents/999", nil, tok).Code)
}

func TestDocumentsUpdate(t *testing.T) {
	env := newTestEnv(t)
	tok := env.registerAndLogin("a@x.com", "password", models.RoleViewer)
	doc := env.ingestDocument(t, tok)

	rec := env.doJSON(http.MethodPut, fmt.Sprintf("/documents/%d", doc.ID),
		map[string]string{"name": "renamed.pdf", "status": "Processed"}, tok)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Equal(t, "renamed.pdf", updated.Name)
	require.Equal(t, "Processed", updated.Status)

	require.Equal(t, http.StatusNotFound,
		env.doJSON(http.MethodPut, "/documents/999", map[string]string{"name": "x"}, tok).Code)
}

func TestDocumentsStatus(t *testing.T) {
	env := newTestEnv(t)
	tok := env.registerAndLogin("a@x.com", "password", models.RoleViewer)
	doc := env.ingestDocument(t, tok)

	rec := env.doJSON(http.MethodGet, fmt.Sprintf("/documents/status/%d", doc.ID), nil, tok)
	require.Equal(t, http.StatusOK, rec.Code)

	var status struct {
		ID       uint   `json:"id"`
		Status   string `json:"status"`
		FilePath string `json:"file_path"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.Equal(t, doc.ID, status.ID)
	require.Equal(t, models.DocumentStatusUploaded, status.Status)
	require.Equal(t, doc.FilePath, status.FilePath)
}

func TestDocumentsDownload(t *testing.T) {
	env := newTestEnv(t)
	tok := env.registerAndLogin("a@x.com", "password", models.RoleViewer)
	doc := env.ingestDocument(t, tok)

	rec := env.doJSON(http.MethodGet, fmt.Sprintf("/documents/download/%d", doc.ID), nil, tok)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "file contents", rec.Body.String())
	require.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	require.Equal(t, http.StatusNotFound, env.doJSON(http.MethodGet, "/documents/download/999", nil, tok).Code)
}

func TestDocumentsDelete(t *testing.T) {
	env := newTestEnv(t)
	tok := env.registerAndLogin("a@x.com", "password", models.RoleViewer)
	doc := env.ingestDocument(t, tok)

	require.Equal(t, http.StatusNoContent, env.doJSON(http.MethodDelete, fmt.Sprintf("/documents/%d", doc.ID), nil, tok).Code)
	require.Equal(t, http.StatusNotFound, env.doJSON(http.MethodDelete, fmt.Sprintf("/documents/%d", doc.ID), nil, tok).Code)

	// The stored file is removed with the record.
	_, err := os.Stat(doc.FilePath)
	require.True(t, os.IsNotExist(err))
}

func TestDocumentsSearchValidation(t *testing.T) {
	env := newTestEnv(t)
	tok := env.registerAndLogin("a@x.com", "password", models.RoleViewer)

	require.Equal(t, http.StatusBadRequest, env.doJSON(http.MethodGet, "/documents/search", nil, tok).Code)
}
