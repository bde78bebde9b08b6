package service

import (
	"context"

	"github.com/davranaff/coffee/internal/model"
	"github.com/davranaff/coffee/internal/sqlerr"
)

type ProductService struct {
	products ProductStore
}

func NewProductService(products ProductStore) *ProductService {
	return &ProductService{products: products}
}

func (s *ProductService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.products.ListActiveCategories(ctx)
}

func (s *ProductService) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	return s.products.GetCategory(ctx, id)
}

func (s *ProductService) CreateCategory(ctx context.Context, req *model.CreateCategoryRequest) (*model.Category, error) {
	return s.products.CreateCategory(ctx, req)
}

func (s *ProductService) List(ctx context.Context, req *model.ListProductsRequest) ([]model.Product, error) {
	return s.products.List(ctx, model.ProductFilter{
		CategoryID:  req.CategoryID,
		Search:      req.Search,
		MinPrice:    req.MinPrice,
		MaxPrice:    req.MaxPrice,
		IsAvailable: req.IsAvailable,
		Offset:      req.Offset(),
		Limit:       req.Size(),
	})
}

func (s *ProductService) Get(ctx context.Context, id int64) (*model.Product, error) {
	return s.products.Get(ctx, id)
}

func (s *ProductService) Create(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error) {
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}
	return s.products.Create(ctx, req)
}

// Update applies a partial update. The product is looked up first so a
// missing product answers 404 before the category is checked.
func (s *ProductService) Update(ctx context.Context, req *model.UpdateProductRequest) (*model.Product, error) {
	if _, err := s.products.Get(ctx, req.ID); err != nil {
		return nil, err
	}

	if req.CategoryID != nil {
		if err := s.checkCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
	}

	return s.products.Update(ctx, req)
}

func (s *ProductService) Delete(ctx context.Context, id int64) (*model.MessageResponse, error) {
	if err := s.products.Delete(ctx, id); err != nil {
		return nil, err
	}
	return &model.MessageResponse{Message: "Product successfully deleted"}, nil
}

func (s *ProductService) checkCategory(ctx context.Context, id int64) error {
	_, err := s.products.GetCategory(ctx, id)
	if err != nil {
		if sqlerr.IsNotFound(err) {
			return badRequestWithCode("Category not found", "CATEGORY_NOT_FOUND")
		}
		return err
	}
	return nil
}
