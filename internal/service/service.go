// Package service contains the business logic.
//
// It sits between the handler and repository layers. It receives validated
// requests from the handlers, enforces the shop's rules (ownership, stock,
// order transitions, chat access) and calls repository methods through the
// small interfaces declared below, so each service can be tested against
// in-memory fakes.
package service

import (
	"context"
	"time"

	"github.com/davranaff/coffee/internal/errs"
	"github.com/davranaff/coffee/internal/lib/email"
	"github.com/davranaff/coffee/internal/model"
)

// Transactor runs fn inside one database transaction. Repository calls made
// with the ctx passed to fn join that transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier enqueues transactional emails.
type Notifier interface {
	EnqueueVerificationEmail(ctx context.Context, to, firstName, code string) error
	EnqueueOrderConfirmationEmail(ctx context.Context, to string, data email.OrderConfirmationData) error
	EnqueueOrderStatusEmail(ctx context.Context, to string, data email.OrderStatusData) error
}

type UserStore interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) (*model.User, error)
	Update(ctx context.Context, id int64, update model.UserUpdate) (*model.User, error)
	MarkVerified(ctx context.Context, id int64) error
	Promote(ctx context.Context, id int64, role model.Role, passwordHash string) (*model.User, error)
	List(ctx context.Context, offset, limit int) ([]model.User, error)
	DeleteUnverifiedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type ProductStore interface {
	ListActiveCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id int64) (*model.Category, error)
	CreateCategory(ctx context.Context, req *model.CreateCategoryRequest) (*model.Category, error)
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)
	Get(ctx context.Context, id int64) (*model.Product, error)
	GetForUpdate(ctx context.Context, id int64) (*model.Product, error)
	Create(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error)
	Update(ctx context.Context, req *model.UpdateProductRequest) (*model.Product, error)
	Delete(ctx context.Context, id int64) error
	AdjustStock(ctx context.Context, id int64, delta int) error
}

type CartStore interface {
	GetByUserID(ctx context.Context, userID int64) (*model.Cart, error)
	GetOrCreate(ctx context.Context, userID int64) (*model.Cart, error)
	ListItems(ctx context.Context, cartID int64, availableOnly bool) ([]model.CartItem, error)
	GetItem(ctx context.Context, cartID, itemID int64) (*model.CartItem, error)
	GetItemByProduct(ctx context.Context, cartID, productID int64) (*model.CartItem, error)
	AddItem(ctx context.Context, cartID, productID int64, quantity int) (*model.CartItem, error)
	UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) (*model.CartItem, error)
	DeleteItem(ctx context.Context, itemID int64) error
	Clear(ctx context.Context, cartID int64) error
}

type OrderStore interface {
	Create(ctx context.Context, order *model.Order) (*model.Order, error)
	Get(ctx context.Context, id int64) (*model.Order, error)
	GetForUpdate(ctx context.Context, id int64) (*model.Order, error)
	ListByUser(ctx context.Context, userID int64, offset, limit int) ([]model.Order, error)
	ListAll(ctx context.Context, status *model.OrderStatus, offset, limit int) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) (*model.Order, error)
	ListStaleIDs(ctx context.Context, status model.OrderStatus, before time.Time) ([]int64, error)
}

type ChatStore interface {
	GetSession(ctx context.Context, id int64) (*model.ChatSession, error)
	GetActiveSessionByUser(ctx context.Context, userID int64) (*model.ChatSession, error)
	CreateSession(ctx context.Context, userID int64) (*model.ChatSession, error)
	ListActiveSessions(ctx context.Context) ([]model.ChatSession, error)
	CloseSession(ctx context.Context, id int64) (*model.ChatSession, error)
	TouchSession(ctx context.Context, id int64) error
	CreateMessage(ctx context.Context, sessionID, senderID int64, content string) (*model.ChatMessage, error)
	ListMessages(ctx context.Context, sessionID int64, offset, limit int) ([]model.ChatMessage, error)
	LastMessages(ctx context.Context, ids []int64, n int) (map[int64][]model.ChatMessage, error)
	CountUnread(ctx context.Context, sessionID, readerID int64) (int, error)
	MarkRead(ctx context.Context, sessionID, readerID int64) (int64, error)
}

type InfoStore interface {
	ListActiveLocations(ctx context.Context, city string) ([]model.CoffeeShopLocation, error)
	GetLocation(ctx context.Context, id int64) (*model.CoffeeShopLocation, error)
	CreateLocation(ctx context.Context, req *model.CreateLocationRequest) (*model.CoffeeShopLocation, error)
	UpdateLocation(ctx context.Context, req *model.UpdateLocationRequest) (*model.CoffeeShopLocation, error)
	ListStaticInfo(ctx context.Context) ([]model.StaticInfo, error)
	GetStaticInfo(ctx context.Context, key string) (*model.StaticInfo, error)
	CreateStaticInfo(ctx context.Context, req *model.CreateStaticInfoRequest) (*model.StaticInfo, error)
	UpsertStaticInfo(ctx context.Context, req *model.CreateStaticInfoRequest) (*model.StaticInfo, error)
	UpdateStaticInfo(ctx context.Context, req *model.UpdateStaticInfoRequest) (*model.StaticInfo, error)
}

func badRequest(message string) *errs.HTTPError {
	return errs.NewBadRequestError(message, true, nil, nil, nil)
}

func badRequestWithCode(message, code string) *errs.HTTPError {
	return errs.NewBadRequestError(message, true, &code, nil, nil)
}

func notFound(message string) *errs.HTTPError {
	return errs.NewNotFoundError(message, true, nil)
}

func forbidden(message string) *errs.HTTPError {
	return errs.NewForbiddenError(message, true)
}

func unauthorized(message string) *errs.HTTPError {
	return errs.NewUnauthorizedError(message, true)
}
