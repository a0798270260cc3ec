package profile

import "time"

// UpdateRequest is partial: empty fields keep their current values.
type UpdateRequest struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	Document     string `json:"document"`
	DocumentType string `json:"document_type"`
	BirthDate    string `json:"birth_date"` // YYYY-MM-DD
}

type Response struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	Document     string    `json:"document,omitempty"`
	DocumentType string    `json:"document_type,omitempty"`
	BirthDate    string    `json:"birth_date,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
