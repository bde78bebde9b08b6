package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/davranaff/coffee/internal/model"
	"github.com/davranaff/coffee/internal/sqlerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	svc      *OrderService
	db       *memDB
	tx       *memTx
	notifier *recordingNotifier
}

func newOrderFixture() orderFixture {
	db := newMemDB()
	tx := &memTx{db: db}
	notifier := &recordingNotifier{}
	svc := NewOrderService(tx, memOrders{db}, memCarts{db}, memProducts{db}, memUsers{db}, notifier, &testLogger)
	return orderFixture{svc: svc, db: db, tx: tx, notifier: notifier}
}

func TestPlaceOrder_SnapshotsTakesStockAndClearsCart(t *testing.T) {
	f := newOrderFixture()
	user := f.db.addUser("ada@example.com", model.RoleUser)
	latte := f.db.addProduct("Latte", "4.50", 10, true)
	croissant := f.db.addProduct("Croissant", "3.25", 3, true)
	f.db.addCartItem(user.ID, latte.ID, 2)
	f.db.addCartItem(user.ID, croissant.ID, 3)

	order, err := f.svc.Place(context.Background(), user, &model.CreateOrderRequest{DeliveryAddress: ptr("12 Roastery Lane")})
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, "18.75", order.TotalAmount.StringFixed(2))
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Latte", order.Items[0].ProductName)
	assert.Equal(t, "4.5", order.Items[0].Price.String())

	assert.Equal(t, 8, f.db.products[latte.ID].Stock)
	assert.Equal(t, 0, f.db.products[croissant.ID].Stock)
	assert.Empty(t, f.db.cartItems)

	require.Len(t, f.notifier.confirmation, 1)
	assert.Equal(t, order.ID, f.notifier.confirmation[0].OrderID)
	assert.Equal(t, "12 Roastery Lane", f.notifier.confirmation[0].DeliveryAddress)

	// later price changes do not touch the snapshot
	p := f.db.products[latte.ID]
	p.Price = p.Price.Mul(p.Price)
	f.db.products[latte.ID] = p
	stored, err := f.svc.Get(context.Background(), user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "4.5", stored.Items[0].Price.String())
}

func TestPlaceOrder_Rejections(t *testing.T) {
	f := newOrderFixture()
	user := f.db.addUser("ada@example.com", model.RoleUser)

	_, err := f.svc.Place(context.Background(), user, &model.CreateOrderRequest{})
	requireHTTPError(t, err, http.StatusBadRequest, "Cart not found")

	_, err = memCarts{f.db}.GetOrCreate(context.Background(), user.ID)
	require.NoError(t, err)
	_, err = f.svc.Place(context.Background(), user, &model.CreateOrderRequest{})
	requireHTTPError(t, err, http.StatusBadRequest, "Cart is empty")

	retired := f.db.addProduct("Retired blend", "9.99", 10, false)
	item := f.db.addCartItem(user.ID, retired.ID, 1)
	_, err = f.svc.Place(context.Background(), user, &model.CreateOrderRequest{})
	requireHTTPError(t, err, http.StatusBadRequest, "Product 'Retired blend' is unavailable")
	delete(f.db.cartItems, item.ID)

	scarce := f.db.addProduct("Geisha", "12.00", 1, true)
	f.db.addCartItem(user.ID, scarce.ID, 2)
	_, err = f.svc.Place(context.Background(), user, &model.CreateOrderRequest{})
	requireHTTPError(t, err, http.StatusBadRequest, "Not enough stock for product 'Geisha'")

	assert.Empty(t, f.db.orders)
	assert.Empty(t, f.notifier.confirmation)
}

func TestPlaceOrder_RollsBackOnFailure(t *testing.T) {
	f := newOrderFixture()
	user := f.db.addUser("ada@example.com", model.RoleUser)
	latte := f.db.addProduct("Latte", "4.50", 10, true)
	f.db.addCartItem(user.ID, latte.ID, 2)
	f.db.adjustStockErr = errors.New("connection reset")

	_, err := f.svc.Place(context.Background(), user, &model.CreateOrderRequest{})
	require.Error(t, err)

	assert.Empty(t, f.db.orders)
	assert.Len(t, f.db.cartItems, 1)
	assert.Equal(t, 10, f.db.products[latte.ID].Stock)
	assert.Empty(t, f.notifier.confirmation)
}

func placeOne(t *testing.T, f orderFixture, user *model.User, stock, quantity int) (*model.Order, model.Product) {
	t.Helper()
	product := f.db.addProduct("Latte", "4.50", stock, true)
	f.db.addCartItem(user.ID, product.ID, quantity)
	order, err := f.svc.Place(context.Background(), user, &model.CreateOrderRequest{})
	require.NoError(t, err)
	return order, product
}

func TestGetOrder_OwnerOnly(t *testing.T) {
	f := newOrderFixture()
	ada := f.db.addUser("ada@example.com", model.RoleUser)
	bob := f.db.addUser("bob@example.com", model.RoleUser)
	order, _ := placeOne(t, f, ada, 5, 1)

	_, err := f.svc.Get(context.Background(), bob.ID, order.ID)
	requireHTTPError(t, err, http.StatusForbidden, "No access to the order")

	_, err = f.svc.Get(context.Background(), ada.ID, 9999)
	require.Error(t, err)
	assert.True(t, sqlerr.IsNotFound(err))

	got, err := f.svc.Get(context.Background(), ada.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

func TestCancelOrder_RestocksAndGuardsStatus(t *testing.T) {
	f := newOrderFixture()
	ada := f.db.addUser("ada@example.com", model.RoleUser)
	bob := f.db.addUser("bob@example.com", model.RoleUser)
	order, product := placeOne(t, f, ada, 5, 2)
	assert.Equal(t, 3, f.db.products[product.ID].Stock)

	_, err := f.svc.Cancel(context.Background(), bob.ID, order.ID)
	requireHTTPError(t, err, http.StatusForbidden, "No access to the order")

	cancelled, err := f.svc.Cancel(context.Background(), ada.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, 5, f.db.products[product.ID].Stock)

	_, err = f.svc.Cancel(context.Background(), ada.ID, order.ID)
	requireHTTPError(t, err, http.StatusBadRequest, "Order cannot be cancelled in its current status")
	assert.Equal(t, 5, f.db.products[product.ID].Stock)
}

func TestUpdateStatus_Transitions(t *testing.T) {
	f := newOrderFixture()
	ada := f.db.addUser("ada@example.com", model.RoleUser)
	order, product := placeOne(t, f, ada, 5, 2)

	_, err := f.svc.UpdateStatus(context.Background(), &model.UpdateOrderStatusRequest{ID: order.ID, Status: model.OrderStatusCompleted})
	requireHTTPError(t, err, http.StatusBadRequest, "Cannot change order status from pending to completed")

	processing, err := f.svc.UpdateStatus(context.Background(), &model.UpdateOrderStatusRequest{ID: order.ID, Status: model.OrderStatusProcessing})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusProcessing, processing.Status)

	completed, err := f.svc.UpdateStatus(context.Background(), &model.UpdateOrderStatusRequest{ID: order.ID, Status: model.OrderStatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCompleted, completed.Status)
	assert.Equal(t, 3, f.db.products[product.ID].Stock)

	_, err = f.svc.UpdateStatus(context.Background(), &model.UpdateOrderStatusRequest{ID: order.ID, Status: model.OrderStatusCancelled})
	requireHTTPError(t, err, http.StatusBadRequest, "Cannot change order status from completed to cancelled")

	require.Len(t, f.notifier.status, 2)
	assert.Equal(t, "completed", f.notifier.status[1].Status)
}

func TestUpdateStatus_CancelRestocks(t *testing.T) {
	f := newOrderFixture()
	ada := f.db.addUser("ada@example.com", model.RoleUser)
	order, product := placeOne(t, f, ada, 5, 2)

	_, err := f.svc.UpdateStatus(context.Background(), &model.UpdateOrderStatusRequest{ID: order.ID, Status: model.OrderStatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, 5, f.db.products[product.ID].Stock)
}

func TestListOrders(t *testing.T) {
	f := newOrderFixture()
	ada := f.db.addUser("ada@example.com", model.RoleUser)
	bob := f.db.addUser("bob@example.com", model.RoleUser)
	first, _ := placeOne(t, f, ada, 5, 1)
	second, _ := placeOne(t, f, ada, 5, 1)
	placeOne(t, f, bob, 5, 1)

	mine, err := f.svc.ListMine(context.Background(), ada.ID, &model.ListOrdersRequest{})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)

	_, err = f.svc.UpdateStatus(context.Background(), &model.UpdateOrderStatusRequest{ID: first.ID, Status: model.OrderStatusProcessing})
	require.NoError(t, err)

	status := model.OrderStatusProcessing
	processing, err := f.svc.ListAll(context.Background(), &model.ListAllOrdersRequest{Status: &status})
	require.NoError(t, err)
	require.Len(t, processing, 1)
	assert.Equal(t, first.ID, processing[0].ID)

	all, err := f.svc.ListAll(context.Background(), &model.ListAllOrdersRequest{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCancelAbandoned(t *testing.T) {
	f := newOrderFixture()
	ada := f.db.addUser("ada@example.com", model.RoleUser)
	stale, product := placeOne(t, f, ada, 5, 2)
	fresh, _ := placeOne(t, f, ada, 5, 1)
	pending, _ := placeOne(t, f, ada, 5, 1)

	for _, id := range []int64{stale.ID, fresh.ID} {
		_, err := f.svc.UpdateStatus(context.Background(), &model.UpdateOrderStatusRequest{ID: id, Status: model.OrderStatusProcessing})
		require.NoError(t, err)
	}

	o := f.db.orders[stale.ID]
	o.UpdatedAt = f.db.now.Add(-100 * time.Hour)
	f.db.orders[stale.ID] = o

	cancelled, err := f.svc.CancelAbandoned(context.Background(), f.db.now.Add(-72*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, cancelled)

	assert.Equal(t, model.OrderStatusCancelled, f.db.orders[stale.ID].Status)
	assert.Equal(t, model.OrderStatusProcessing, f.db.orders[fresh.ID].Status)
	assert.Equal(t, model.OrderStatusPending, f.db.orders[pending.ID].Status)
	assert.Equal(t, 5, f.db.products[product.ID].Stock)
}

func TestCancelAbandoned_CommitFailureIsNotCounted(t *testing.T) {
	f := newOrderFixture()
	ada := f.db.addUser("ada@example.com", model.RoleUser)
	stale, product := placeOne(t, f, ada, 5, 2)

	_, err := f.svc.UpdateStatus(context.Background(), &model.UpdateOrderStatusRequest{ID: stale.ID, Status: model.OrderStatusProcessing})
	require.NoError(t, err)

	o := f.db.orders[stale.ID]
	o.UpdatedAt = f.db.now.Add(-100 * time.Hour)
	f.db.orders[stale.ID] = o

	f.tx.commitErr = errors.New("connection reset")
	cancelled, err := f.svc.CancelAbandoned(context.Background(), f.db.now.Add(-72*time.Hour))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, 0, cancelled)

	assert.Equal(t, model.OrderStatusProcessing, f.db.orders[stale.ID].Status)
	assert.Equal(t, 3, f.db.products[product.ID].Stock)
}
