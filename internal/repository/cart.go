package repository

import (
	"context"
	"fmt"

	"github.com/davranaff/coffee/internal/model"
	"github.com/davranaff/coffee/internal/server"
	"github.com/jackc/pgx/v5"
)

const (
	cartColumns     = `id, user_id, created_at, updated_at`
	cartItemColumns = `id, cart_id, product_id, quantity, created_at, updated_at`
)

type CartRepository struct {
	server *server.Server
}

func NewCartRepository(s *server.Server) *CartRepository {
	return &CartRepository{server: s}
}

func (r *CartRepository) GetByUserID(ctx context.Context, userID int64) (*model.Cart, error) {
	stmt := `SELECT ` + cartColumns + ` FROM carts WHERE user_id = @user_id`

	rows, err := r.server.DB.Conn(ctx).Query(ctx, stmt, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to get cart of user %d: %w", userID, err)
	}

	cart, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.Cart])
	if err != nil {
		return nil, notFound("carts", err)
	}
	return &cart, nil
}

// GetOrCreate returns the user's cart, creating it on first use. Concurrent
// first calls resolve to the same row through the unique user_id constraint.
func (r *CartRepository) GetOrCreate(ctx context.Context, userID int64) (*model.Cart, error) {
	stmt := `
		INSERT INTO carts (user_id) VALUES (@user_id)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING ` + cartColumns

	rows, err := r.server.DB.Conn(ctx).Query(ctx, stmt, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to get or create cart of user %d: %w", userID, err)
	}

	cart, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.Cart])
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// ListItems returns the cart lines together with their products, oldest
// first. With availableOnly, lines whose product is unavailable are skipped.
func (r *CartRepository) ListItems(ctx context.Context, cartID int64, availableOnly bool) ([]model.CartItem, error) {
	stmt := `
		SELECT
			ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at,
			p.id, p.name, p.description, p.price, p.stock, p.image_url, p.is_available,
			p.category_id, p.created_at, p.updated_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = @cart_id AND (NOT @available_only OR p.is_available)
		ORDER BY ci.id`

	rows, err := r.server.DB.Conn(ctx).Query(ctx, stmt, pgx.NamedArgs{
		"cart_id":        cartID,
		"available_only": availableOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list items of cart %d: %w", cartID, err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.CartItem, error) {
		var item model.CartItem
		var product model.Product
		err := row.Scan(
			&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt,
			&product.ID, &product.Name, &product.Description, &product.Price, &product.Stock,
			&product.ImageURL, &product.IsAvailable, &product.CategoryID, &product.CreatedAt, &product.UpdatedAt,
		)
		item.Product = &product
		return item, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect cart items: %w", err)
	}
	return items, nil
}

func (r *CartRepository) getItem(ctx context.Context, stmt string, args pgx.NamedArgs) (*model.CartItem, error) {
	rows, err := r.server.DB.Conn(ctx).Query(ctx, stmt, args)
	if err != nil {
		return nil, fmt.Errorf("failed to execute cart item query: %w", err)
	}

	item, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.CartItem])
	if err != nil {
		return nil, notFound("cart_items", err)
	}
	return &item, nil
}

// GetItem looks an item up within one cart, so items of other carts read as missing.
func (r *CartRepository) GetItem(ctx context.Context, cartID, itemID int64) (*model.CartItem, error) {
	stmt := `SELECT ` + cartItemColumns + ` FROM cart_items WHERE id = @id AND cart_id = @cart_id`
	return r.getItem(ctx, stmt, pgx.NamedArgs{"id": itemID, "cart_id": cartID})
}

func (r *CartRepository) GetItemByProduct(ctx context.Context, cartID, productID int64) (*model.CartItem, error) {
	stmt := `SELECT ` + cartItemColumns + ` FROM cart_items WHERE cart_id = @cart_id AND product_id = @product_id`
	return r.getItem(ctx, stmt, pgx.NamedArgs{"cart_id": cartID, "product_id": productID})
}

func (r *CartRepository) AddItem(ctx context.Context, cartID, productID int64, quantity int) (*model.CartItem, error) {
	stmt := `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES (@cart_id, @product_id, @quantity)
		RETURNING ` + cartItemColumns

	return r.getItem(ctx, stmt, pgx.NamedArgs{
		"cart_id":    cartID,
		"product_id": productID,
		"quantity":   quantity,
	})
}

func (r *CartRepository) UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) (*model.CartItem, error) {
	stmt := `UPDATE cart_items SET quantity = @quantity WHERE id = @id RETURNING ` + cartItemColumns
	return r.getItem(ctx, stmt, pgx.NamedArgs{"id": itemID, "quantity": quantity})
}

func (r *CartRepository) DeleteItem(ctx context.Context, itemID int64) error {
	tag, err := r.server.DB.Conn(ctx).Exec(ctx, `DELETE FROM cart_items WHERE id = @id`, pgx.NamedArgs{"id": itemID})
	if err != nil {
		return fmt.Errorf("failed to delete cart item %d: %w", itemID, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("cart_items", pgx.ErrNoRows)
	}
	return nil
}

func (r *CartRepository) Clear(ctx context.Context, cartID int64) error {
	_, err := r.server.DB.Conn(ctx).Exec(ctx, `DELETE FROM cart_items WHERE cart_id = @cart_id`, pgx.NamedArgs{"cart_id": cartID})
	if err != nil {
		return fmt.Errorf("failed to clear cart %d: %w", cartID, err)
	}
	return nil
}
