// Package seed loads catalogue, location and company data from a YAML file
// into a fresh database.
package seed

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/davranaff/coffee/internal/model"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type File struct {
	Categories []Category        `yaml:"categories"`
	Locations  []Location        `yaml:"locations"`
	Static     map[string]string `yaml:"static"`
}

type Category struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	ImageURL    string    `yaml:"image_url"`
	Products    []Product `yaml:"products"`
}

type Product struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Price       decimal.Decimal `yaml:"price"`
	Stock       int             `yaml:"stock"`
	ImageURL    string          `yaml:"image_url"`
}

type Location struct {
	Name        string   `yaml:"name"`
	Address     string   `yaml:"address"`
	City        string   `yaml:"city"`
	PostalCode  string   `yaml:"postal_code"`
	Phone       string   `yaml:"phone"`
	Email       string   `yaml:"email"`
	Description string   `yaml:"description"`
	Latitude    *float64 `yaml:"latitude"`
	Longitude   *float64 `yaml:"longitude"`
	OpeningTime string   `yaml:"opening_time"`
	ClosingTime string   `yaml:"closing_time"`
}

// Catalog is the product side the seeder writes through.
type Catalog interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, req *model.CreateCategoryRequest) (*model.Category, error)
	Create(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error)
}

// Info is the locations and static info side the seeder writes through.
type Info interface {
	ListLocations(ctx context.Context, req *model.ListLocationsRequest) ([]model.CoffeeShopLocation, error)
	CreateLocation(ctx context.Context, req *model.CreateLocationRequest) (*model.CoffeeShopLocation, error)
	UpsertStatic(ctx context.Context, req *model.CreateStaticInfoRequest) (*model.StaticInfo, error)
}

type Result struct {
	Categories int
	Products   int
	Locations  int
	Static     int
}

func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed YAML: %w", err)
	}
	return &f, nil
}

// Apply writes f through the services so the usual validation applies.
// Categories and locations whose name already exists are skipped along
// with their products; static entries are upserted. Running it twice is
// safe.
func Apply(ctx context.Context, logger *zerolog.Logger, catalog Catalog, info Info, f *File) (*Result, error) {
	result := &Result{}

	existing, err := catalog.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(existing))
	for _, c := range existing {
		seen[strings.ToLower(c.Name)] = true
	}

	for _, c := range f.Categories {
		if seen[strings.ToLower(c.Name)] {
			logger.Info().Str("category", c.Name).Msg("category exists, skipping")
			continue
		}

		catReq := &model.CreateCategoryRequest{
			Name:        c.Name,
			Description: optional(c.Description),
			ImageURL:    optional(c.ImageURL),
		}
		if err := catReq.Validate(); err != nil {
			return nil, fmt.Errorf("category %q: %w", c.Name, err)
		}

		category, err := catalog.CreateCategory(ctx, catReq)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", c.Name, err)
		}
		seen[strings.ToLower(c.Name)] = true
		result.Categories++

		for _, p := range c.Products {
			prodReq := &model.CreateProductRequest{
				Name:        p.Name,
				Description: optional(p.Description),
				Price:       p.Price,
				Stock:       p.Stock,
				ImageURL:    optional(p.ImageURL),
				CategoryID:  category.ID,
			}
			if err := prodReq.Validate(); err != nil {
				return nil, fmt.Errorf("product %q: %w", p.Name, err)
			}
			if _, err := catalog.Create(ctx, prodReq); err != nil {
				return nil, fmt.Errorf("product %q: %w", p.Name, err)
			}
			result.Products++
		}
	}

	locations, err := info.ListLocations(ctx, &model.ListLocationsRequest{})
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(locations))
	for _, l := range locations {
		known[strings.ToLower(l.Name)] = true
	}

	for _, l := range f.Locations {
		if known[strings.ToLower(l.Name)] {
			continue
		}

		req := &model.CreateLocationRequest{
			Name:        l.Name,
			Address:     l.Address,
			City:        l.City,
			PostalCode:  optional(l.PostalCode),
			Phone:       optional(l.Phone),
			Email:       optional(l.Email),
			Description: optional(l.Description),
			Latitude:    l.Latitude,
			Longitude:   l.Longitude,
			OpeningTime: optional(l.OpeningTime),
			ClosingTime: optional(l.ClosingTime),
		}
		if err := req.Validate(); err != nil {
			return nil, fmt.Errorf("location %q: %w", l.Name, err)
		}
		if _, err := info.CreateLocation(ctx, req); err != nil {
			return nil, fmt.Errorf("location %q: %w", l.Name, err)
		}
		known[strings.ToLower(l.Name)] = true
		result.Locations++
	}

	for key, value := range f.Static {
		if _, err := info.UpsertStatic(ctx, &model.CreateStaticInfoRequest{Key: key, Value: value}); err != nil {
			return nil, fmt.Errorf("static %q: %w", key, err)
		}
		result.Static++
	}

	logger.Info().
		Int("categories", result.Categories).
		Int("products", result.Products).
		Int("locations", result.Locations).
		Int("static", result.Static).
		Msg("seed applied")

	return result, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
