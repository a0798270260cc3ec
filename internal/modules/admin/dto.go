package admin

import "time"

type ProfileInput struct {
	Address      string `json:"address"`
	Document     string `json:"document"`
	DocumentType string `json:"document_type"`
	BirthDate    string `json:"birth_date"` // YYYY-MM-DD
}

type CreateUserRequest struct {
	Name     string        `json:"name" validate:"required,max=128"`
	Email    string        `json:"email" validate:"required,email"`
	Phone    string        `json:"phone" validate:"omitempty,numeric"`
	Password string        `json:"password" validate:"required,min=6"`
	Role     string        `json:"role"`
	Status   string        `json:"status"`
	Profile  *ProfileInput `json:"profile"`
}

// UpdateUserRequest is partial: empty fields keep their current values. A
// non-empty Password is re-hashed.
type UpdateUserRequest struct {
	Name     string        `json:"name" validate:"omitempty,max=128"`
	Email    string        `json:"email" validate:"omitempty,email"`
	Phone    string        `json:"phone" validate:"omitempty,numeric"`
	Password string        `json:"password" validate:"omitempty,min=6"`
	Role     string        `json:"role"`
	Status   string        `json:"status"`
	Profile  *ProfileInput `json:"profile"`
}

type ProfileResponse struct {
	Address      string `json:"address"`
	Document     string `json:"document"`
	DocumentType string `json:"document_type"`
	BirthDate    string `json:"birth_date,omitempty"`
}

type UserResponse struct {
	ID        int64            `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Phone     string           `json:"phone,omitempty"`
	Role      string           `json:"role"`
	Status    string           `json:"status"`
	Profile   *ProfileResponse `json:"profile,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}
