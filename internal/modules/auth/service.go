package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"mediavault/internal/domain"
)

const recoveryCodeTTL = 15 * time.Minute

type jwtService interface {
	GenerateToken(userID int64, email, role string) (string, error)
}

// Service contains all business logic for authentication and password recovery.
type Service struct {
	users  UserRepository
	codes  TempCodeRepository
	jwt    jwtService
	mailer Mailer
	log    *logrus.Logger
}

func NewService(users UserRepository, codes TempCodeRepository, jwt jwtService, mailer Mailer, log *logrus.Logger) *Service {
	return &Service{
		users:  users,
		codes:  codes,
		jwt:    jwt,
		mailer: mailer,
		log:    log,
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	if !digitsOnly(req.Phone) {
		return nil, ErrInvalidPhone
	}

	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         req.Name,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		Phone:        req.Phone,
		Role:         domain.RoleUser,
		Status:       domain.StatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// the ExistsByEmail check races with concurrent registrations
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	// best effort, registration already succeeded
	if err := s.mailer.SendWelcome(ctx, user.Email, user.Name); err != nil {
		s.log.WithError(err).WithField("email", user.Email).Warn("could not send welcome email")
	}

	return user, nil
}

// Login checks the credentials and returns the user with a signed token.
// A missing user and a wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}

	return user, token, nil
}

// RecoverPassword issues a short-lived one-time code and mails it to the
// account's address.
func (s *Service) RecoverPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generate recovery code: %w", err)
	}

	tc := &domain.TempCode{
		Email:     user.Email,
		Code:      code,
		Type:      domain.TempCodeRecovery,
		ExpiresAt: time.Now().Add(recoveryCodeTTL),
	}
	if err := s.codes.Create(ctx, tc); err != nil {
		return fmt.Errorf("store recovery code: %w", err)
	}

	if err := s.mailer.SendRecoveryCode(ctx, user.Email, code); err != nil {
		return fmt.Errorf("send recovery code: %w", err)
	}
	return nil
}

// VerifyCode checks a recovery code without consuming it.
func (s *Service) VerifyCode(ctx context.Context, email, code string) error {
	_, err := s.codes.GetValid(ctx, email, code, domain.TempCodeRecovery)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return s.classifyCodeMiss(ctx, email, code)
}

// classifyCodeMiss explains a failed GetValid lookup: a matching row exists
// but is past its expiry, or the code never existed. Always returns a
// non-nil error.
func (s *Service) classifyCodeMiss(ctx context.Context, email, code string) error {
	_, err := s.codes.Get(ctx, email, code, domain.TempCodeRecovery)
	if err == nil {
		return ErrCodeExpired
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return ErrInvalidCode
}

// ResetPassword consumes a valid recovery code and replaces the account
// password.
func (s *Service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if req.Password != req.ConfirmPassword {
		return ErrPasswordMismatch
	}

	tc, err := s.codes.GetValid(ctx, req.Email, req.Code, domain.TempCodeRecovery)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.classifyCodeMiss(ctx, req.Email, req.Code)
		}
		return err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.codes.Delete(ctx, tc.ID); err != nil {
		s.log.WithError(err).WithField("email", req.Email).Warn("could not delete used recovery code")
	}
	return nil
}

// generateCode returns a uniformly random 6-digit code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
