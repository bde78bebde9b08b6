// Package model holds the domain entities stored in PostgreSQL and the
// request payloads accepted by the API.
package model

import (
	"time"

	"github.com/davranaff/coffee/internal/validation"
)

const (
	DefaultPageLimit = 100
	MaxPageLimit     = 100
)

// Base carries the columns shared by every table.
type Base struct {
	ID        int64     `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Pagination is embedded into list requests.
type Pagination struct {
	Skip  int `query:"skip" validate:"min=0"`
	Limit int `query:"limit" validate:"min=0"`
}

// Offset is the number of rows to skip.
func (p Pagination) Offset() int {
	return max(p.Skip, 0)
}

// Size is the page size, defaulting to and capped at 100.
func (p Pagination) Size() int {
	if p.Limit <= 0 || p.Limit > MaxPageLimit {
		return DefaultPageLimit
	}
	return p.Limit
}

// MessageResponse is the body of endpoints that only confirm an action.
type MessageResponse struct {
	Message string `json:"message"`
}

// EmptyRequest is used by routes that take no input.
type EmptyRequest struct{}

func (r *EmptyRequest) Validate() error {
	return nil
}

// IDRequest carries a numeric ":id" path parameter.
type IDRequest struct {
	ID int64 `param:"id" json:"-" validate:"required,gt=0"`
}

func (r *IDRequest) Validate() error {
	return validation.Validator().Struct(r)
}
