package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/davranaff/coffee/internal/lib/email"
	"github.com/davranaff/coffee/internal/model"
	"github.com/davranaff/coffee/internal/sqlerr"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type OrderService struct {
	tx       Transactor
	orders   OrderStore
	carts    CartStore
	products ProductStore
	users    UserStore
	notifier Notifier
	logger   *zerolog.Logger
}

func NewOrderService(
	tx Transactor,
	orders OrderStore,
	carts CartStore,
	products ProductStore,
	users UserStore,
	notifier Notifier,
	logger *zerolog.Logger,
) *OrderService {
	return &OrderService{
		tx:       tx,
		orders:   orders,
		carts:    carts,
		products: products,
		users:    users,
		notifier: notifier,
		logger:   logger,
	}
}

// Place turns the caller's cart into a pending order. Prices and names are
// snapshotted, stock is taken and the cart is emptied in one transaction;
// any failure leaves cart, stock and orders untouched.
func (s *OrderService) Place(ctx context.Context, user *model.User, req *model.CreateOrderRequest) (*model.Order, error) {
	var placed *model.Order

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		cart, err := s.carts.GetByUserID(ctx, user.ID)
		if err != nil {
			if sqlerr.IsNotFound(err) {
				return badRequestWithCode("Cart not found", "CART_NOT_FOUND")
			}
			return err
		}

		items, err := s.carts.ListItems(ctx, cart.ID, false)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return badRequestWithCode("Cart is empty", "CART_EMPTY")
		}

		// lock products in id order so concurrent checkouts cannot deadlock
		sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

		order := &model.Order{
			UserID:          user.ID,
			Status:          model.OrderStatusPending,
			TotalAmount:     decimal.Zero,
			DeliveryAddress: req.DeliveryAddress,
			ContactPhone:    req.ContactPhone,
			Items:           make([]model.OrderItem, 0, len(items)),
		}

		for _, item := range items {
			product, err := s.products.GetForUpdate(ctx, item.ProductID)
			if err != nil {
				if sqlerr.IsNotFound(err) {
					return badRequestWithCode(fmt.Sprintf("Product with ID %d not found", item.ProductID), "PRODUCT_NOT_FOUND")
				}
				return err
			}
			if !product.IsAvailable {
				return badRequestWithCode(fmt.Sprintf("Product '%s' is unavailable", product.Name), "PRODUCT_UNAVAILABLE")
			}
			if product.Stock < item.Quantity {
				return badRequestWithCode(fmt.Sprintf("Not enough stock for product '%s'", product.Name), "INSUFFICIENT_STOCK")
			}

			productID := product.ID
			order.Items = append(order.Items, model.OrderItem{
				ProductID:   &productID,
				ProductName: product.Name,
				Quantity:    item.Quantity,
				Price:       product.Price,
			})
			order.TotalAmount = order.TotalAmount.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}

		created, err := s.orders.Create(ctx, order)
		if err != nil {
			return err
		}

		for _, item := range items {
			if err := s.products.AdjustStock(ctx, item.ProductID, -item.Quantity); err != nil {
				return err
			}
		}

		if err := s.carts.Clear(ctx, cart.ID); err != nil {
			return err
		}

		placed = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyConfirmation(ctx, user, placed)
	return placed, nil
}

func (s *OrderService) ListMine(ctx context.Context, userID int64, req *model.ListOrdersRequest) ([]model.Order, error) {
	return s.orders.ListByUser(ctx, userID, req.Offset(), req.Size())
}

func (s *OrderService) ListAll(ctx context.Context, req *model.ListAllOrdersRequest) ([]model.Order, error) {
	return s.orders.ListAll(ctx, req.Status, req.Offset(), req.Size())
}

// Get returns one of the caller's orders.
func (s *OrderService) Get(ctx context.Context, userID, orderID int64) (*model.Order, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, forbidden("No access to the order")
	}
	return order, nil
}

// Cancel lets the owner cancel a pending or processing order and puts the
// items back into stock.
func (s *OrderService) Cancel(ctx context.Context, userID, orderID int64) (*model.Order, error) {
	var cancelled *model.Order

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.UserID != userID {
			return forbidden("No access to the order")
		}
		if !order.Status.IsCancellable() {
			return badRequest("Order cannot be cancelled in its current status")
		}

		cancelled, err = s.cancelLocked(ctx, order)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

// UpdateStatus moves an order along pending -> processing -> completed, or
// to cancelled (restocking) from either open state.
func (s *OrderService) UpdateStatus(ctx context.Context, req *model.UpdateOrderStatusRequest) (*model.Order, error) {
	var updated *model.Order

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetForUpdate(ctx, req.ID)
		if err != nil {
			return err
		}

		if !order.Status.CanTransitionTo(req.Status) {
			return badRequestWithCode(
				fmt.Sprintf("Cannot change order status from %s to %s", order.Status, req.Status),
				"INVALID_STATUS_TRANSITION",
			)
		}

		if req.Status == model.OrderStatusCancelled {
			updated, err = s.cancelLocked(ctx, order)
			return err
		}

		updated, err = s.orders.UpdateStatus(ctx, order.ID, req.Status)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifyStatus(ctx, updated)
	return updated, nil
}

// CancelAbandoned cancels processing orders that have not been touched since
// before. Each order is handled in its own transaction; failures are
// collected and the remaining orders are still processed.
func (s *OrderService) CancelAbandoned(ctx context.Context, before time.Time) (int, error) {
	ids, err := s.orders.ListStaleIDs(ctx, model.OrderStatusProcessing, before)
	if err != nil {
		return 0, err
	}

	var (
		cancelled int
		failures  []error
	)
	for _, id := range ids {
		var changed bool
		err := s.tx.InTx(ctx, func(ctx context.Context) error {
			changed = false
			order, err := s.orders.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			// re-check under the lock: staff may have moved it meanwhile
			if order.Status != model.OrderStatusProcessing || !order.UpdatedAt.Before(before) {
				return nil
			}

			if _, err := s.cancelLocked(ctx, order); err != nil {
				return err
			}
			changed = true
			return nil
		})
		if err != nil {
			failures = append(failures, fmt.Errorf("order %d: %w", id, err))
			continue
		}
		if changed {
			cancelled++
		}
	}

	return cancelled, errors.Join(failures...)
}

// cancelLocked restocks and cancels an order already locked by the caller's
// transaction.
func (s *OrderService) cancelLocked(ctx context.Context, order *model.Order) (*model.Order, error) {
	for _, item := range order.Items {
		if item.ProductID == nil {
			continue
		}
		err := s.products.AdjustStock(ctx, *item.ProductID, item.Quantity)
		if err != nil && !sqlerr.IsNotFound(err) {
			return nil, err
		}
	}
	return s.orders.UpdateStatus(ctx, order.ID, model.OrderStatusCancelled)
}

func (s *OrderService) notifyConfirmation(ctx context.Context, user *model.User, order *model.Order) {
	lines := make([]email.OrderLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, email.OrderLine{Name: item.ProductName, Quantity: item.Quantity, Price: item.Price})
	}

	data := email.OrderConfirmationData{
		FirstName:   user.FirstName,
		OrderID:     order.ID,
		Items:       lines,
		TotalAmount: order.TotalAmount,
	}
	if order.DeliveryAddress != nil {
		data.DeliveryAddress = *order.DeliveryAddress
	}

	if err := s.notifier.EnqueueOrderConfirmationEmail(ctx, user.Email, data); err != nil {
		s.logger.Error().Err(err).Int64("order_id", order.ID).Msg("failed to enqueue order confirmation email")
	}
}

func (s *OrderService) notifyStatus(ctx context.Context, order *model.Order) {
	owner, err := s.users.GetByID(ctx, order.UserID)
	if err != nil {
		s.logger.Error().Err(err).Int64("order_id", order.ID).Msg("failed to load order owner for status email")
		return
	}

	err = s.notifier.EnqueueOrderStatusEmail(ctx, owner.Email, email.OrderStatusData{
		FirstName: owner.FirstName,
		OrderID:   order.ID,
		Status:    string(order.Status),
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("order_id", order.ID).Msg("failed to enqueue order status email")
	}
}
