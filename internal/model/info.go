package model

import (
	"regexp"

	"github.com/davranaff/coffee/internal/validation"
)

// Opening and closing times travel as "HH:MM".
var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

type CoffeeShopLocation struct {
	Base
	Name        string   `json:"name" db:"name"`
	Address     string   `json:"address" db:"address"`
	City        string   `json:"city" db:"city"`
	PostalCode  *string  `json:"postal_code" db:"postal_code"`
	Phone       *string  `json:"phone" db:"phone"`
	Email       *string  `json:"email" db:"email"`
	Description *string  `json:"description" db:"description"`
	Latitude    *float64 `json:"latitude" db:"latitude"`
	Longitude   *float64 `json:"longitude" db:"longitude"`
	IsActive    bool     `json:"is_active" db:"is_active"`
	OpeningTime *string  `json:"opening_time" db:"opening_time"`
	ClosingTime *string  `json:"closing_time" db:"closing_time"`
}

type StaticInfo struct {
	Base
	Key         string  `json:"key" db:"key"`
	Value       string  `json:"value" db:"value"`
	Description *string `json:"description" db:"description"`
}

type SocialMedia struct {
	Facebook  string `json:"facebook"`
	Instagram string `json:"instagram"`
	Twitter   string `json:"twitter"`
}

type CompanyInfo struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Phone       string               `json:"phone"`
	Email       string               `json:"email"`
	Website     string               `json:"website"`
	SocialMedia SocialMedia          `json:"social_media"`
	Locations   []CoffeeShopLocation `json:"locations"`
}

func validateClock(field string, value *string) validation.CustomValidationErrors {
	if value == nil || clockPattern.MatchString(*value) {
		return nil
	}
	return validation.CustomValidationErrors{{Field: field, Message: "must be a time in HH:MM format"}}
}

type CreateLocationRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Address     string   `json:"address" validate:"required,max=500"`
	City        string   `json:"city" validate:"required,max=100"`
	PostalCode  *string  `json:"postal_code" validate:"omitempty,max=20"`
	Phone       *string  `json:"phone" validate:"omitempty,max=32"`
	Email       *string  `json:"email" validate:"omitempty,email"`
	Description *string  `json:"description"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,longitude"`
	IsActive    *bool    `json:"is_active"`
	OpeningTime *string  `json:"opening_time"`
	ClosingTime *string  `json:"closing_time"`
}

func (r *CreateLocationRequest) Validate() error {
	if err := validation.Validator().Struct(r); err != nil {
		return err
	}
	errs := append(validateClock("opening_time", r.OpeningTime), validateClock("closing_time", r.ClosingTime)...)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListLocationsRequest struct {
	City string `query:"city" validate:"max=100"`
}

func (r *ListLocationsRequest) Validate() error {
	return validation.Validator().Struct(r)
}

type UpdateLocationRequest struct {
	ID          int64    `param:"id" json:"-" validate:"required,gt=0"`
	Name        *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Address     *string  `json:"address" validate:"omitempty,min=1,max=500"`
	City        *string  `json:"city" validate:"omitempty,min=1,max=100"`
	PostalCode  *string  `json:"postal_code" validate:"omitempty,max=20"`
	Phone       *string  `json:"phone" validate:"omitempty,max=32"`
	Email       *string  `json:"email" validate:"omitempty,email"`
	Description *string  `json:"description"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,longitude"`
	IsActive    *bool    `json:"is_active"`
	OpeningTime *string  `json:"opening_time"`
	ClosingTime *string  `json:"closing_time"`
}

func (r *UpdateLocationRequest) Validate() error {
	if err := validation.Validator().Struct(r); err != nil {
		return err
	}
	errs := append(validateClock("opening_time", r.OpeningTime), validateClock("closing_time", r.ClosingTime)...)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type StaticInfoKeyRequest struct {
	Key string `param:"key" json:"-" validate:"required,max=100"`
}

func (r *StaticInfoKeyRequest) Validate() error {
	return validation.Validator().Struct(r)
}

type CreateStaticInfoRequest struct {
	Key         string  `json:"key" validate:"required,max=100"`
	Value       string  `json:"value" validate:"required"`
	Description *string `json:"description"`
}

func (r *CreateStaticInfoRequest) Validate() error {
	return validation.Validator().Struct(r)
}

type UpdateStaticInfoRequest struct {
	Key         string  `param:"key" json:"-" validate:"required,max=100"`
	Value       *string `json:"value"`
	Description *string `json:"description"`
}

func (r *UpdateStaticInfoRequest) Validate() error {
	return validation.Validator().Struct(r)
}
