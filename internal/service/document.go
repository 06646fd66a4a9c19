package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/Skotchmaster/docflow/internal/es"
	"github.com/Skotchmaster/docflow/internal/logging"
	"github.com/Skotchmaster/docflow/internal/models"
	"github.com/Skotchmaster/docflow/internal/mykafka"
	"github.com/Skotchmaster/docflow/internal/repo"
	"github.com/Skotchmaster/docflow/internal/storage"
)

type DocumentService struct {
	Repo     *repo.GormRepo
	Files    *storage.FileStore
	Index    *es.DocumentIndex
	Producer *mykafka.Producer
}

type DocumentUpdate struct {
	Name   string
	Status string
}

// IngestMeta carries client-supplied metadata accompanying an upload.
// Empty fields fall back to values derived from the file itself.
type IngestMeta struct {
	Name   string
	Type   string
	Status string
}

// Ingest stores the uploaded file and persists its metadata. Search
// indexing and events are best effort; the upload itself is the contract.
func (s *DocumentService) Ingest(ctx context.Context, fh *multipart.FileHeader, meta IngestMeta) (*models.Document, error) {
	l := logging.FromContext(ctx).With("svc", "documents.ingest")

	name, path, err := s.Files.Save(fh)
	if err != nil {
		l.Error("ingest_failed", "reason", "cannot store file", "error", err)
		return nil, err
	}

	doc := models.Document{
		Name:     name,
		Type:     fh.Header.Get("Content-Type"),
		Status:   models.DocumentStatusUploaded,
		FilePath: path,
	}
	if meta.Name != "" {
		doc.Name = meta.Name
	}
	if meta.Type != "" {
		doc.Type = meta.Type
	}
	if meta.Status != "" {
		doc.Status = meta.Status
	}
	if err := s.Repo.CreateDocument(ctx, &doc); err != nil {
		l.Error("ingest_failed", "error", err)
		if rmErr := s.Files.Remove(path); rmErr != nil {
			l.Warn("orphan_file_left_behind", "path", path, "error", rmErr)
		}
		return nil, err
	}

	if err := s.Index.IndexDocument(ctx, &doc); err != nil {
		l.Warn("es_index_failed", "document_id", doc.ID, "error", err)
	}
	s.publish(ctx, doc.ID, map[string]interface{}{
		"type":       "document_ingested",
		"DocumentID": doc.ID,
		"name":       doc.Name,
	})

	l.Info("document_ingested", "document_id", doc.ID, "name", doc.Name)
	return &doc, nil
}

func (s *DocumentService) List(ctx context.Context) ([]models.Document, error) {
	return s.Repo.Documents(ctx)
}

func (s *DocumentService) Get(ctx context.Context, id uint) (*models.Document, error) {
	return s.Repo.DocumentByID(ctx, id)
}

func (s *DocumentService) Update(ctx context.Context, id uint, upd DocumentUpdate) (*models.Document, error) {
	l := logging.FromContext(ctx).With("svc", "documents.update", "document_id", id)

	doc, err := s.Repo.DocumentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != "" {
		doc.Name = upd.Name
	}
	if upd.Status != "" {
		doc.Status = upd.Status
	}

	if err := s.Repo.SaveDocument(ctx, doc); err != nil {
		return nil, err
	}

	if err := s.Index.IndexDocument(ctx, doc); err != nil {
		l.Warn("es_index_failed", "error", err)
	}

	l.Info("document_updated")
	return doc, nil
}

func (s *DocumentService) Delete(ctx context.Context, id uint) error {
	l := logging.FromContext(ctx).With("svc", "documents.delete", "document_id", id)

	doc, err := s.Repo.DocumentByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteDocument(ctx, id); err != nil {
		return err
	}

	if err := s.Files.Remove(doc.FilePath); err != nil {
		l.Warn("file_remove_failed", "path", doc.FilePath, "error", err)
	}
	if err := s.Index.DeleteDocument(ctx, id); err != nil {
		l.Warn("es_delete_failed", "error", err)
	}
	s.publish(ctx, id, map[string]interface{}{
		"type":       "document_deleted",
		"DocumentID": id,
	})

	l.Info("document_deleted")
	return nil
}

func (s *DocumentService) Search(ctx context.Context, query string, from, size int) (int64, []models.Document, error) {
	return s.Index.Search(ctx, query, from, size)
}

func (s *DocumentService) publish(ctx context.Context, docID uint, event map[string]interface{}) {
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.Producer.PublishEvent(pubCtx, "document_events", fmt.Sprint(docID), event); err != nil {
		logging.FromContext(ctx).Warn("kafka_publish_failed", "error", err)
	}
}
