package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/docflow/internal/models"
)

func (r *GormRepo) CreateDocument(ctx context.Context, d *models.Document) error {
	return r.DB.WithContext(ctx).Create(d).Error
}

func (r *GormRepo) Documents(ctx context.Context) ([]models.Document, error) {
	var docs []models.Document
	if err := r.DB.WithContext(ctx).Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *GormRepo) DocumentByID(ctx context.Context, id uint) (*models.Document, error) {
	var doc models.Document
	if err := r.DB.WithContext(ctx).First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (r *GormRepo) SaveDocument(ctx context.Context, d *models.Document) error {
	return r.DB.WithContext(ctx).Save(d).Error
}

func (r *GormRepo) DeleteDocument(ctx context.Context, id uint) error {
	result := r.DB.WithContext(ctx).Delete(&models.Document{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDocumentNotFound
	}
	return nil
}
