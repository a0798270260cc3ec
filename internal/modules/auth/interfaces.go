package auth

import (
	"context"

	"mediavault/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

type TempCodeRepository interface {
	Create(ctx context.Context, t *domain.TempCode) error
	GetValid(ctx context.Context, email, code, codeType string) (*domain.TempCode, error)
	Get(ctx context.Context, email, code, codeType string) (*domain.TempCode, error)
	Delete(ctx context.Context, id int64) error
}

type Mailer interface {
	SendWelcome(ctx context.Context, email, name string) error
	SendRecoveryCode(ctx context.Context, email, code string) error
}
