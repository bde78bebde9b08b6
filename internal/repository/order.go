package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/davranaff/coffee/internal/model"
	"github.com/davranaff/coffee/internal/server"
	"github.com/jackc/pgx/v5"
)

const (
	orderColumns     = `id, user_id, status, total_amount, delivery_address, contact_phone, created_at, updated_at`
	orderItemColumns = `id, order_id, product_id, product_name, quantity, price, created_at, updated_at`
)

type OrderRepository struct {
	server *server.Server
}

func NewOrderRepository(s *server.Server) *OrderRepository {
	return &OrderRepository{server: s}
}

func (r *OrderRepository) getOne(ctx context.Context, stmt string, args pgx.NamedArgs) (*model.Order, error) {
	rows, err := r.server.DB.Conn(ctx).Query(ctx, stmt, args)
	if err != nil {
		return nil, fmt.Errorf("failed to execute order query: %w", err)
	}

	order, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.Order])
	if err != nil {
		return nil, notFound("orders", err)
	}
	return &order, nil
}

func (r *OrderRepository) list(ctx context.Context, stmt string, args pgx.NamedArgs) ([]model.Order, error) {
	rows, err := r.server.DB.Conn(ctx).Query(ctx, stmt, args)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	orders, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Order])
	if err != nil {
		return nil, fmt.Errorf("failed to collect orders: %w", err)
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Create inserts the order row and its items. It must run inside a transaction.
func (r *OrderRepository) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	stmt := `
		INSERT INTO orders (user_id, status, total_amount, delivery_address, contact_phone)
		VALUES (@user_id, @status, @total_amount, @delivery_address, @contact_phone)
		RETURNING ` + orderColumns

	created, err := r.getOne(ctx, stmt, pgx.NamedArgs{
		"user_id":          order.UserID,
		"status":           string(order.Status),
		"total_amount":     order.TotalAmount,
		"delivery_address": order.DeliveryAddress,
		"contact_phone":    order.ContactPhone,
	})
	if err != nil {
		return nil, err
	}

	itemStmt := `
		INSERT INTO order_items (order_id, product_id, product_name, quantity, price)
		VALUES (@order_id, @product_id, @product_name, @quantity, @price)
		RETURNING ` + orderItemColumns

	created.Items = make([]model.OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		rows, err := r.server.DB.Conn(ctx).Query(ctx, itemStmt, pgx.NamedArgs{
			"order_id":     created.ID,
			"product_id":   item.ProductID,
			"product_name": item.ProductName,
			"quantity":     item.Quantity,
			"price":        item.Price,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to insert order item: %w", err)
		}

		inserted, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.OrderItem])
		if err != nil {
			return nil, err
		}
		created.Items = append(created.Items, inserted)
	}

	return created, nil
}

// Get returns the order with its items.
func (r *OrderRepository) Get(ctx context.Context, id int64) (*model.Order, error) {
	order, err := r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return nil, err
	}

	orders := []model.Order{*order}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// GetForUpdate locks the order row (items are loaded too) until the
// surrounding transaction ends.
func (r *OrderRepository) GetForUpdate(ctx context.Context, id int64) (*model.Order, error) {
	order, err := r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = @id FOR UPDATE`, pgx.NamedArgs{"id": id})
	if err != nil {
		return nil, err
	}

	orders := []model.Order{*order}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// ListByUser returns the user's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID int64, offset, limit int) ([]model.Order, error) {
	stmt := `
		SELECT ` + orderColumns + ` FROM orders
		WHERE user_id = @user_id
		ORDER BY created_at DESC, id DESC
		OFFSET @offset LIMIT @limit`

	return r.list(ctx, stmt, pgx.NamedArgs{"user_id": userID, "offset": offset, "limit": limit})
}

// ListAll returns every order, newest first, optionally of one status.
func (r *OrderRepository) ListAll(ctx context.Context, status *model.OrderStatus, offset, limit int) ([]model.Order, error) {
	stmt := `
		SELECT ` + orderColumns + ` FROM orders
		WHERE (@status::text IS NULL OR status = @status::text)
		ORDER BY created_at DESC, id DESC
		OFFSET @offset LIMIT @limit`

	var statusArg *string
	if status != nil {
		s := string(*status)
		statusArg = &s
	}

	return r.list(ctx, stmt, pgx.NamedArgs{"status": statusArg, "offset": offset, "limit": limit})
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) (*model.Order, error) {
	stmt := `UPDATE orders SET status = @status WHERE id = @id RETURNING ` + orderColumns

	order, err := r.getOne(ctx, stmt, pgx.NamedArgs{"id": id, "status": string(status)})
	if err != nil {
		return nil, err
	}

	orders := []model.Order{*order}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// ListStaleIDs returns the ids of orders in status whose last update is older than before.
func (r *OrderRepository) ListStaleIDs(ctx context.Context, status model.OrderStatus, before time.Time) ([]int64, error) {
	stmt := `SELECT id FROM orders WHERE status = @status AND updated_at < @before ORDER BY id`

	rows, err := r.server.DB.Conn(ctx).Query(ctx, stmt, pgx.NamedArgs{"status": string(status), "before": before})
	if err != nil {
		return nil, fmt.Errorf("failed to list stale orders: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to collect stale order ids: %w", err)
	}
	return ids, nil
}

func (r *OrderRepository) attachItems(ctx context.Context, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
	}

	stmt := `SELECT ` + orderItemColumns + ` FROM order_items WHERE order_id = ANY(@ids) ORDER BY id`

	rows, err := r.server.DB.Conn(ctx).Query(ctx, stmt, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}

	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.OrderItem])
	if err != nil {
		return fmt.Errorf("failed to collect order items: %w", err)
	}

	byOrder := make(map[int64][]model.OrderItem, len(orders))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}
	for i := range orders {
		orders[i].Items = byOrder[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []model.OrderItem{}
		}
	}
	return nil
}
