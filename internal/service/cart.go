package service

import (
	"context"

	"github.com/davranaff/coffee/internal/model"
	"github.com/davranaff/coffee/internal/sqlerr"
)

type CartService struct {
	carts    CartStore
	products ProductStore
}

func NewCartService(carts CartStore, products ProductStore) *CartService {
	return &CartService{carts: carts, products: products}
}

// Get returns the caller's cart, creating it on first use. Lines whose
// product is no longer available are left out and the total is computed
// from current prices.
func (s *CartService) Get(ctx context.Context, userID int64) (*model.Cart, error) {
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := s.carts.ListItems(ctx, cart.ID, true)
	if err != nil {
		return nil, err
	}

	cart.Items = items
	if cart.Items == nil {
		cart.Items = []model.CartItem{}
	}
	cart.Recalculate()
	return cart, nil
}

// AddItem puts a product into the cart, merging with an existing line for
// the same product.
func (s *CartService) AddItem(ctx context.Context, userID int64, req *model.AddCartItemRequest) (*model.CartItem, error) {
	product, err := s.orderable(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.carts.GetItemByProduct(ctx, cart.ID, product.ID)
	if err != nil && !sqlerr.IsNotFound(err) {
		return nil, err
	}

	quantity := req.Quantity
	if existing != nil {
		quantity += existing.Quantity
	}
	if quantity > product.Stock {
		return nil, insufficientStock(product)
	}

	var item *model.CartItem
	if existing != nil {
		item, err = s.carts.UpdateItemQuantity(ctx, existing.ID, quantity)
	} else {
		item, err = s.carts.AddItem(ctx, cart.ID, product.ID, quantity)
	}
	if err != nil {
		return nil, err
	}

	item.Product = product
	return item, nil
}

// UpdateItem sets the quantity of a cart line. The same availability and
// stock rules as AddItem apply to the new quantity.
func (s *CartService) UpdateItem(ctx context.Context, userID int64, req *model.UpdateCartItemRequest) (*model.CartItem, error) {
	item, err := s.ownedItem(ctx, userID, req.ItemID)
	if err != nil {
		return nil, err
	}

	product, err := s.orderable(ctx, item.ProductID)
	if err != nil {
		return nil, err
	}
	if req.Quantity > product.Stock {
		return nil, insufficientStock(product)
	}

	updated, err := s.carts.UpdateItemQuantity(ctx, item.ID, req.Quantity)
	if err != nil {
		return nil, err
	}

	updated.Product = product
	return updated, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID int64) (*model.MessageResponse, error) {
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	if err := s.carts.DeleteItem(ctx, item.ID); err != nil {
		return nil, err
	}
	return &model.MessageResponse{Message: "Item removed from cart"}, nil
}

func (s *CartService) Clear(ctx context.Context, userID int64) (*model.MessageResponse, error) {
	cart, err := s.carts.GetByUserID(ctx, userID)
	if err != nil {
		if sqlerr.IsNotFound(err) {
			return nil, notFound("Cart not found")
		}
		return nil, err
	}

	if err := s.carts.Clear(ctx, cart.ID); err != nil {
		return nil, err
	}
	return &model.MessageResponse{Message: "Cart cleared"}, nil
}

// orderable loads a product that can be put into a cart.
func (s *CartService) orderable(ctx context.Context, productID int64) (*model.Product, error) {
	product, err := s.products.Get(ctx, productID)
	if err != nil {
		if sqlerr.IsNotFound(err) {
			return nil, badRequestWithCode("Product not found", "PRODUCT_NOT_FOUND")
		}
		return nil, err
	}
	if !product.IsAvailable {
		return nil, badRequestWithCode("Product unavailable", "PRODUCT_UNAVAILABLE")
	}
	return product, nil
}

func insufficientStock(product *model.Product) error {
	return badRequestWithCode("Not enough stock for product '"+product.Name+"'", "INSUFFICIENT_STOCK")
}

// ownedItem loads an item of the caller's cart. Items of other carts answer
// exactly like missing ones.
func (s *CartService) ownedItem(ctx context.Context, userID, itemID int64) (*model.CartItem, error) {
	cart, err := s.carts.GetByUserID(ctx, userID)
	if err != nil {
		if sqlerr.IsNotFound(err) {
			return nil, notFound("Cart not found")
		}
		return nil, err
	}

	item, err := s.carts.GetItem(ctx, cart.ID, itemID)
	if err != nil {
		if sqlerr.IsNotFound(err) {
			return nil, notFound("Cart item not found")
		}
		return nil, err
	}
	return item, nil
}
