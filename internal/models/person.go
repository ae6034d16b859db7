package models

import (
	"time"

	"github.com/google/uuid"
)

// Person is a single contact record
type Person struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PersonInput holds the fields required to create a person
type PersonInput struct {
	Name        string `json:"name" yaml:"name"`
	Email       string `json:"email" yaml:"email"`
	PhoneNumber string `json:"phoneNumber" yaml:"phoneNumber"`
}

// PersonPatch is a partial update. Nil fields are left unchanged.
type PersonPatch struct {
	Name        *string `json:"name,omitempty"`
	Email       *string `json:"email,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
}

// IsEmpty reports whether the patch changes no fields
func (p PersonPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.PhoneNumber == nil
}

// NewPerson creates a new Person with a generated UUID and both timestamps set to now
func NewPerson(input PersonInput, now time.Time) *Person {
	return &Person{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Email:       input.Email,
		PhoneNumber: input.PhoneNumber,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
