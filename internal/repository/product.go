package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/davranaff/coffee/internal/model"
	"github.com/davranaff/coffee/internal/server"
	"github.com/jackc/pgx/v5"
)

const (
	categoryColumns = `id, name, description, image_url, is_active, created_at, updated_at`
	productColumns  = `id, name, description, price, stock, image_url, is_available, category_id, created_at, updated_at`
)

type ProductRepository struct {
	server *server.Server
}

func NewProductRepository(s *server.Server) *ProductRepository {
	return &ProductRepository{server: s}
}

// ---- categories ----

func (r *ProductRepository) ListActiveCategories(ctx context.Context) ([]model.Category, error) {
	stmt := `SELECT ` + categoryColumns + ` FROM categories WHERE is_active ORDER BY name, id`

	rows, err := r.server.DB.Conn(ctx).Query(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Category])
	if err != nil {
		return nil, fmt.Errorf("failed to collect categories: %w", err)
	}
	return categories, nil
}

func (r *ProductRepository) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	stmt := `SELECT ` + categoryColumns + ` FROM categories WHERE id = @id`

	rows, err := r.server.DB.Conn(ctx).Query(ctx, stmt, pgx.NamedArgs{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to get category %d: %w", id, err)
	}

	category, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.Category])
	if err != nil {
		return nil, notFound("categories", err)
	}
	return &category, nil
}

func (r *ProductRepository) CreateCategory(ctx context.Context, req *model.CreateCategoryRequest) (*model.Category, error) {
	stmt := `
		INSERT INTO categories (name, description, image_url, is_active)
		VALUES (@name, @description, @image_url, COALESCE(@is_active, TRUE))
		RETURNING ` + categoryColumns

	rows, err := r.server.DB.Conn(ctx).Query(ctx, stmt, pgx.NamedArgs{
		"name":        req.Name,
		"description": req.Description,
		"image_url":   req.ImageURL,
		"is_active":   req.IsActive,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	category, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.Category])
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// ---- products ----

func (r *ProductRepository) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	var conditions []string
	args := pgx.NamedArgs{
		"offset": filter.Offset,
		"limit":  filter.Limit,
	}

	if filter.CategoryID != nil {
		conditions = append(conditions, "category_id = @category_id")
		args["category_id"] = *filter.CategoryID
	}
	if filter.Search != "" {
		conditions = append(conditions, "name ILIKE @search")
		args["search"] = "%" + escapeLike(filter.Search) + "%"
	}
	if filter.MinPrice != nil {
		conditions = append(conditions, "price >= @min_price")
		args["min_price"] = *filter.MinPrice
	}
	if filter.MaxPrice != nil {
		conditions = append(conditions, "price <= @max_price")
		args["max_price"] = *filter.MaxPrice
	}
	if filter.IsAvailable != nil {
		conditions = append(conditions, "is_available = @is_available")
		args["is_available"] = *filter.IsAvailable
	}

	stmt := `SELECT ` + productColumns + ` FROM products`
	if len(conditions) > 0 {
		stmt += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	stmt += ` ORDER BY id OFFSET @offset LIMIT @limit`

	rows, err := r.server.DB.Conn(ctx).Query(ctx, stmt, args)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	products, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Product])
	if err != nil {
		return nil, fmt.Errorf("failed to collect products: %w", err)
	}
	return products, nil
}

func (r *ProductRepository) getOne(ctx context.Context, stmt string, args pgx.NamedArgs) (*model.Product, error) {
	rows, err := r.server.DB.Conn(ctx).Query(ctx, stmt, args)
	if err != nil {
		return nil, fmt.Errorf("failed to execute product query: %w", err)
	}

	product, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.Product])
	if err != nil {
		return nil, notFound("products", err)
	}
	return &product, nil
}

func (r *ProductRepository) Get(ctx context.Context, id int64) (*model.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = @id`, pgx.NamedArgs{"id": id})
}

// GetForUpdate locks the product row until the surrounding transaction ends.
func (r *ProductRepository) GetForUpdate(ctx context.Context, id int64) (*model.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = @id FOR UPDATE`, pgx.NamedArgs{"id": id})
}

func (r *ProductRepository) Create(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error) {
	stmt := `
		INSERT INTO products (name, description, price, stock, image_url, is_available, category_id)
		VALUES (@name, @description, @price, @stock, @image_url, COALESCE(@is_available, TRUE), @category_id)
		RETURNING ` + productColumns

	return r.getOne(ctx, stmt, pgx.NamedArgs{
		"name":         req.Name,
		"description":  req.Description,
		"price":        req.Price,
		"stock":        req.Stock,
		"image_url":    req.ImageURL,
		"is_available": req.IsAvailable,
		"category_id":  req.CategoryID,
	})
}

// Update applies the non-nil fields of req.
func (r *ProductRepository) Update(ctx context.Context, req *model.UpdateProductRequest) (*model.Product, error) {
	stmt := `
		UPDATE products SET
			name = COALESCE(@name, name),
			description = COALESCE(@description, description),
			price = COALESCE(@price::numeric, price),
			stock = COALESCE(@stock::integer, stock),
			image_url = COALESCE(@image_url, image_url),
			is_available = COALESCE(@is_available::boolean, is_available),
			category_id = COALESCE(@category_id::bigint, category_id)
		WHERE id = @id
		RETURNING ` + productColumns

	return r.getOne(ctx, stmt, pgx.NamedArgs{
		"id":           req.ID,
		"name":         req.Name,
		"description":  req.Description,
		"price":        req.Price,
		"stock":        req.Stock,
		"image_url":    req.ImageURL,
		"is_available": req.IsAvailable,
		"category_id":  req.CategoryID,
	})
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.server.DB.Conn(ctx).Exec(ctx, `DELETE FROM products WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("products", pgx.ErrNoRows)
	}
	return nil
}

// AdjustStock adds delta (negative to take stock) to the product's stock.
// The stock check constraint rejects results below zero.
func (r *ProductRepository) AdjustStock(ctx context.Context, id int64, delta int) error {
	stmt := `UPDATE products SET stock = stock + @delta WHERE id = @id`

	tag, err := r.server.DB.Conn(ctx).Exec(ctx, stmt, pgx.NamedArgs{"id": id, "delta": delta})
	if err != nil {
		return fmt.Errorf("failed to adjust stock of product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("products", pgx.ErrNoRows)
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
