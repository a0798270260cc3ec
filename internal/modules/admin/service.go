package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"mediavault/internal/domain"
)

const birthDateLayout = "2006-01-02"

// Service implements user and profile administration.
type Service struct {
	users    UserRepository
	profiles ProfileRepository
	log      *logrus.Logger
}

func NewService(users UserRepository, profiles ProfileRepository, log *logrus.Logger) *Service {
	return &Service{users: users, profiles: profiles, log: log}
}

// CreateUser creates an account, hashing the password, and optionally its
// profile in the same call.
func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (*domain.User, *domain.Profile, error) {
	role, status, err := resolveRoleStatus(req.Role, req.Status)
	if err != nil {
		return nil, nil, err
	}

	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, nil, ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         req.Name,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		Phone:        req.Phone,
		Role:         role,
		Status:       status,
	}
	if err := s.users.Create(ctx, user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, nil, ErrEmailAlreadyExists
		}
		return nil, nil, err
	}

	var profile *domain.Profile
	if req.Profile != nil {
		profile, err = s.buildProfile(user.ID, *req.Profile)
		if err != nil {
			return nil, nil, err
		}
		if err := s.profiles.Create(ctx, profile); err != nil {
			return nil, nil, fmt.Errorf("create profile: %w", err)
		}
	}

	return user, profile, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// GetUser returns the user and its profile. A missing profile is not an
// error; the second result is nil.
func (s *Service) GetUser(ctx context.Context, id int64) (*domain.User, *domain.Profile, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}

	profile, err := s.profiles.GetByUserID(ctx, id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, err
		}
		profile = nil
	}

	return user, profile, nil
}

// UpdateUser applies the non-empty fields of the request. A profile payload
// updates the existing profile or creates one when the user has none.
func (s *Service) UpdateUser(ctx context.Context, id int64, req UpdateUserRequest) (*domain.User, *domain.Profile, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Email != "" && !strings.EqualFold(req.Email, user.Email) {
		exists, err := s.users.ExistsByEmail(ctx, req.Email)
		if err != nil {
			return nil, nil, fmt.Errorf("check email: %w", err)
		}
		if exists {
			return nil, nil, ErrEmailAlreadyExists
		}
		user.Email = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if req.Role != "" {
		role := domain.UserRole(req.Role)
		if role != domain.RoleAdmin && role != domain.RoleUser {
			return nil, nil, ErrInvalidRole
		}
		user.Role = role
	}
	if req.Status != "" {
		status := domain.UserStatus(req.Status)
		if status != domain.StatusActive && status != domain.StatusInactive {
			return nil, nil, ErrInvalidStatus
		}
		user.Status = status
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, nil, err
	}

	var profile *domain.Profile
	if req.Profile != nil {
		profile, err = s.upsertProfile(ctx, id, *req.Profile)
		if err != nil {
			return nil, nil, err
		}
	} else {
		profile, err = s.profiles.GetByUserID(ctx, id)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, err
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			profile = nil
		}
	}

	return user, profile, nil
}

// DeleteUser removes the account and its profile. A missing profile does not
// block account deletion.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.profiles.DeleteByUserID(ctx, id); err != nil {
		s.log.WithError(err).WithField("user_id", id).Warn("could not delete user profile")
	}
	return s.users.Delete(ctx, id)
}

func (s *Service) upsertProfile(ctx context.Context, userID int64, in ProfileInput) (*domain.Profile, error) {
	existing, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		profile, err := s.buildProfile(userID, in)
		if err != nil {
			return nil, err
		}
		if err := s.profiles.Create(ctx, profile); err != nil {
			return nil, fmt.Errorf("create profile: %w", err)
		}
		return profile, nil
	}

	if in.Address != "" {
		existing.Address = in.Address
	}
	if in.Document != "" {
		existing.Document = in.Document
	}
	if in.DocumentType != "" {
		existing.DocumentType = in.DocumentType
	}
	if in.BirthDate != "" {
		birth, err := time.Parse(birthDateLayout, in.BirthDate)
		if err != nil {
			return nil, ErrInvalidBirthDate
		}
		existing.BirthDate = birth
	}
	if err := s.profiles.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return existing, nil
}

func (s *Service) buildProfile(userID int64, in ProfileInput) (*domain.Profile, error) {
	profile := &domain.Profile{
		UserID:       userID,
		Address:      in.Address,
		Document:     in.Document,
		DocumentType: in.DocumentType,
	}
	if in.BirthDate != "" {
		birth, err := time.Parse(birthDateLayout, in.BirthDate)
		if err != nil {
			return nil, ErrInvalidBirthDate
		}
		profile.BirthDate = birth
	}
	return profile, nil
}

func resolveRoleStatus(role, status string) (domain.UserRole, domain.UserStatus, error) {
	r := domain.RoleUser
	if role != "" {
		r = domain.UserRole(role)
		if r != domain.RoleAdmin && r != domain.RoleUser {
			return "", "", ErrInvalidRole
		}
	}
	st := domain.StatusActive
	if status != "" {
		st = domain.UserStatus(status)
		if st != domain.StatusActive && st != domain.StatusInactive {
			return "", "", ErrInvalidStatus
		}
	}
	return r, st, nil
}
