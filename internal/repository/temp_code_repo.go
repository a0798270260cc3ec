package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"mediavault/internal/domain"
)

type TempCodeRepository struct {
	db *gorm.DB
}

func NewTempCodeRepository(db *gorm.DB) *TempCodeRepository {
	return &TempCodeRepository{db: db}
}

type tempCodeModel struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Email     string    `gorm:"column:email;not null;index"`
	Code      string    `gorm:"column:code;not null"`
	Type      string    `gorm:"column:type;not null;default:general"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (tempCodeModel) TableName() string { return "temp_codes" }

func (r *TempCodeRepository) Create(ctx context.Context, t *domain.TempCode) error {
	m := tempCodeModel{
		Email:     t.Email,
		Code:      t.Code,
		Type:      t.Type,
		ExpiresAt: t.ExpiresAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	t.ID = m.ID
	t.CreatedAt = m.CreatedAt
	return nil
}

// GetValid returns the most recent unexpired code for email/code/type.
func (r *TempCodeRepository) GetValid(ctx context.Context, email, code, codeType string) (*domain.TempCode, error) {
	var m tempCodeModel
	err := r.db.WithContext(ctx).
		Where("email = ? AND code = ? AND type = ? AND expires_at > ?", email, code, codeType, time.Now()).
		Order("created_at DESC").
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &domain.TempCode{
		ID:        m.ID,
		Email:     m.Email,
		Code:      m.Code,
		Type:      m.Type,
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
	}, nil
}

// Get returns the most recent code regardless of expiry, so callers can
// distinguish "expired" from "wrong code".
func (r *TempCodeRepository) Get(ctx context.Context, email, code, codeType string) (*domain.TempCode, error) {
	var m tempCodeModel
	err := r.db.WithContext(ctx).
		Where("email = ? AND code = ? AND type = ?", email, code, codeType).
		Order("created_at DESC").
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &domain.TempCode{
		ID:        m.ID,
		Email:     m.Email,
		Code:      m.Code,
		Type:      m.Type,
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
	}, nil
}

func (r *TempCodeRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&tempCodeModel{}, id).Error
}

// DeleteExpired purges every code past its expiry and reports how many rows
// were removed.
func (r *TempCodeRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&tempCodeModel{})
	return res.RowsAffected, res.Error
}
