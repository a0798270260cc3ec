package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"mediavault/internal/domain"
)

const birthDateLayout = "2006-01-02"

// Service reads and updates the authenticated user's own profile.
type Service struct {
	users    UserRepository
	profiles ProfileRepository
}

func NewService(users UserRepository, profiles ProfileRepository) *Service {
	return &Service{users: users, profiles: profiles}
}

// Get returns the account with its profile. Accounts created without a
// profile return a nil profile.
func (s *Service) Get(ctx context.Context, userID int64) (*domain.User, *domain.Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}

	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, err
		}
		p = nil
	}
	return user, p, nil
}

// Update applies the non-empty fields. Profile fields create the profile row
// on first use.
func (s *Service) Update(ctx context.Context, userID int64, req UpdateRequest) (*domain.User, *domain.Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}

	if req.Name != "" || req.Phone != "" {
		if req.Name != "" {
			user.Name = req.Name
		}
		if req.Phone != "" {
			user.Phone = req.Phone
		}
		if err := s.users.Update(ctx, user); err != nil {
			return nil, nil, err
		}
	}

	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	hasProfileFields := req.Address != "" || req.Document != "" || req.DocumentType != "" || req.BirthDate != ""
	if !hasProfileFields {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			p = nil
		}
		return user, p, nil
	}

	create := errors.Is(err, gorm.ErrRecordNotFound)
	if create {
		p = &domain.Profile{UserID: userID}
	}

	if req.Address != "" {
		p.Address = req.Address
	}
	if req.Document != "" {
		p.Document = req.Document
	}
	if req.DocumentType != "" {
		p.DocumentType = req.DocumentType
	}
	if req.BirthDate != "" {
		birth, err := time.Parse(birthDateLayout, req.BirthDate)
		if err != nil {
			return nil, nil, ErrInvalidBirthDate
		}
		p.BirthDate = birth
	}

	if create {
		if err := s.profiles.Create(ctx, p); err != nil {
			return nil, nil, fmt.Errorf("create profile: %w", err)
		}
	} else {
		if err := s.profiles.Update(ctx, p); err != nil {
			return nil, nil, fmt.Errorf("update profile: %w", err)
		}
	}

	return user, p, nil
}
