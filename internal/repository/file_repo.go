package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"mediavault/internal/domain"
)

type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

// Attachments are stored as structured JSON blobs on the record itself;
// there is no separate attachment table.
type fileModel struct {
	ID              int64          `gorm:"column:id;primaryKey;autoIncrement"`
	Name            string         `gorm:"column:name;size:128;not null"`
	StorageBackend  string         `gorm:"column:storage_backend;not null;default:local"`
	MainFile        datatypes.JSON `gorm:"column:main_file"`
	AdditionalFiles datatypes.JSON `gorm:"column:additional_files"`
	CreatedAt       time.Time      `gorm:"column:created_at"`
	UpdatedAt       time.Time      `gorm:"column:updated_at"`
}

func (fileModel) TableName() string { return "files" }

func toFileModel(f *domain.File) (fileModel, error) {
	m := fileModel{
		ID:             f.ID,
		Name:           f.Name,
		StorageBackend: string(f.StorageBackend),
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}

	if f.MainFile != nil {
		raw, err := json.Marshal(f.MainFile)
		if err != nil {
			return fileModel{}, fmt.Errorf("marshal main attachment: %w", err)
		}
		m.MainFile = raw
	}

	additional := f.AdditionalFiles
	if additional == nil {
		additional = []domain.Attachment{}
	}
	raw, err := json.Marshal(additional)
	if err != nil {
		return fileModel{}, fmt.Errorf("marshal additional attachments: %w", err)
	}
	m.AdditionalFiles = raw

	return m, nil
}

func toDomainFile(m fileModel) (*domain.File, error) {
	f := &domain.File{
		ID:             m.ID,
		Name:           m.Name,
		StorageBackend: domain.StorageBackend(m.StorageBackend),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}

	if len(m.MainFile) > 0 && string(m.MainFile) != "null" {
		var att domain.Attachment
		if err := json.Unmarshal(m.MainFile, &att); err != nil {
			return nil, fmt.Errorf("unmarshal main attachment: %w", err)
		}
		f.MainFile = &att
	}

	if len(m.AdditionalFiles) > 0 {
		if err := json.Unmarshal(m.AdditionalFiles, &f.AdditionalFiles); err != nil {
			return nil, fmt.Errorf("unmarshal additional attachments: %w", err)
		}
	}

	return f, nil
}

func (r *FileRepository) Create(ctx context.Context, f *domain.File) error {
	m, err := toFileModel(f)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	restored, err := toDomainFile(m)
	if err != nil {
		return err
	}
	*f = *restored
	return nil
}

func (r *FileRepository) GetByID(ctx context.Context, id int64) (*domain.File, error) {
	var m fileModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return toDomainFile(m)
}

func (r *FileRepository) List(ctx context.Context) ([]domain.File, error) {
	var models []fileModel
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, err
	}
	files := make([]domain.File, 0, len(models))
	for _, m := range models {
		f, err := toDomainFile(m)
		if err != nil {
			return nil, err
		}
		files = append(files, *f)
	}
	return files, nil
}

func (r *FileRepository) Update(ctx context.Context, f *domain.File) error {
	m, err := toFileModel(f)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Save(&m).Error; err != nil {
		return err
	}
	restored, err := toDomainFile(m)
	if err != nil {
		return err
	}
	*f = *restored
	return nil
}

func (r *FileRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&fileModel{}, id).Error
}
