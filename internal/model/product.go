package model

import (
	"github.com/davranaff/coffee/internal/validation"
	"github.com/shopspring/decimal"
)

type Category struct {
	Base
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description" db:"description"`
	ImageURL    *string `json:"image_url" db:"image_url"`
	IsActive    bool    `json:"is_active" db:"is_active"`
}

type Product struct {
	Base
	Name        string          `json:"name" db:"name"`
	Description *string         `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Stock       int             `json:"stock" db:"stock"`
	ImageURL    *string         `json:"image_url" db:"image_url"`
	IsAvailable bool            `json:"is_available" db:"is_available"`
	CategoryID  int64           `json:"category_id" db:"category_id"`
}

type CreateCategoryRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
	IsActive    *bool   `json:"is_active"`
}

func (r *CreateCategoryRequest) Validate() error {
	return validation.Validator().Struct(r)
}

type ListProductsRequest struct {
	Pagination
	CategoryID  *int64           `query:"category_id"`
	Search      string           `query:"search" validate:"max=100"`
	MinPrice    *decimal.Decimal `query:"min_price"`
	MaxPrice    *decimal.Decimal `query:"max_price"`
	IsAvailable *bool            `query:"is_available"`
}

func (r *ListProductsRequest) Validate() error {
	if err := validation.Validator().Struct(r); err != nil {
		return err
	}

	var errs validation.CustomValidationErrors
	if r.MinPrice != nil && r.MinPrice.IsNegative() {
		errs = append(errs, validation.CustomValidationError{Field: "min_price", Message: "must not be negative"})
	}
	if r.MaxPrice != nil && r.MaxPrice.IsNegative() {
		errs = append(errs, validation.CustomValidationError{Field: "max_price", Message: "must not be negative"})
	}
	if r.MinPrice != nil && r.MaxPrice != nil && r.MinPrice.GreaterThan(*r.MaxPrice) {
		errs = append(errs, validation.CustomValidationError{Field: "min_price", Message: "must not exceed max_price"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ProductFilter is the repository view of ListProductsRequest.
type ProductFilter struct {
	CategoryID  *int64
	Search      string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	IsAvailable *bool
	Offset      int
	Limit       int
}

type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"min=0"`
	ImageURL    *string         `json:"image_url" validate:"omitempty,url"`
	IsAvailable *bool           `json:"is_available"`
	CategoryID  int64           `json:"category_id" validate:"required,gt=0"`
}

func (r *CreateProductRequest) Validate() error {
	if err := validation.Validator().Struct(r); err != nil {
		return err
	}
	if !r.Price.IsPositive() {
		return validation.CustomValidationErrors{{Field: "price", Message: "must be greater than 0"}}
	}
	return nil
}

type UpdateProductRequest struct {
	ID          int64            `param:"id" json:"-" validate:"required,gt=0"`
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock" validate:"omitempty,min=0"`
	ImageURL    *string          `json:"image_url" validate:"omitempty,url"`
	IsAvailable *bool            `json:"is_available"`
	CategoryID  *int64           `json:"category_id" validate:"omitempty,gt=0"`
}

func (r *UpdateProductRequest) Validate() error {
	if err := validation.Validator().Struct(r); err != nil {
		return err
	}
	if r.Price != nil && !r.Price.IsPositive() {
		return validation.CustomValidationErrors{{Field: "price", Message: "must be greater than 0"}}
	}
	return nil
}
