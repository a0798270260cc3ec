package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"mediavault/internal/domain"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

type profileModel struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID       int64     `gorm:"column:user_id;not null;uniqueIndex"`
	Address      string    `gorm:"column:address;not null"`
	Document     string    `gorm:"column:document;not null"`
	DocumentType string    `gorm:"column:document_type;not null"`
	BirthDate    time.Time `gorm:"column:birth_date;not null"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (profileModel) TableName() string { return "profiles" }

func toDomainProfile(m profileModel) *domain.Profile {
	return &domain.Profile{
		ID:           m.ID,
		UserID:       m.UserID,
		Address:      m.Address,
		Document:     m.Document,
		DocumentType: m.DocumentType,
		BirthDate:    m.BirthDate,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toProfileModel(p *domain.Profile) profileModel {
	return profileModel{
		ID:           p.ID,
		UserID:       p.UserID,
		Address:      p.Address,
		Document:     p.Document,
		DocumentType: p.DocumentType,
		BirthDate:    p.BirthDate,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (r *ProfileRepository) Create(ctx context.Context, p *domain.Profile) error {
	m := toProfileModel(p)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*p = *toDomainProfile(m)
	return nil
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Profile, error) {
	var m profileModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		return nil, err
	}
	return toDomainProfile(m), nil
}

func (r *ProfileRepository) Update(ctx context.Context, p *domain.Profile) error {
	m := toProfileModel(p)
	if err := r.db.WithContext(ctx).Save(&m).Error; err != nil {
		return err
	}
	*p = *toDomainProfile(m)
	return nil
}

func (r *ProfileRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&profileModel{}).Error
}
