package service

import (
	"context"
	"errors"
	"testing"

	"github.com/davranaff/coffee/internal/errs"
	"github.com/davranaff/coffee/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (db *memDB) addUser(email string, role model.Role) *model.User {
	u := model.User{Base: db.base(), Email: email, FirstName: "Test", IsActive: true, IsVerified: true, Role: role}
	db.users[u.ID] = u
	return &u
}

func (db *memDB) addCategory(name string) model.Category {
	c := model.Category{Base: db.base(), Name: name, IsActive: true}
	db.categories[c.ID] = c
	return c
}

func (db *memDB) addProduct(name, price string, stock int, available bool) model.Product {
	p := model.Product{
		Base:        db.base(),
		Name:        name,
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
		IsAvailable: available,
	}
	db.products[p.ID] = p
	return p
}

func (db *memDB) addCartItem(userID, productID int64, quantity int) model.CartItem {
	cart, _ := memCarts{db}.GetOrCreate(context.Background(), userID)
	item := model.CartItem{Base: db.base(), CartID: cart.ID, ProductID: productID, Quantity: quantity}
	db.cartItems[item.ID] = item
	return item
}

// requireHTTPError asserts err is an *errs.HTTPError with the given status
// and message.
func requireHTTPError(t *testing.T, err error, status int, message string) {
	t.Helper()
	require.Error(t, err)

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr), "expected HTTPError, got %T: %v", err, err)
	assert.Equal(t, status, httpErr.Status)
	if message != "" {
		assert.Equal(t, message, httpErr.Message)
	}
}

func ptr[T any](v T) *T {
	return &v
}
