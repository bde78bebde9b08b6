package seed

import (
	"context"
	"testing"

	"github.com/davranaff/coffee/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	categories []model.Category
	products   []model.CreateProductRequest
}

func (f *fakeCatalog) ListCategories(context.Context) ([]model.Category, error) {
	return f.categories, nil
}

func (f *fakeCatalog) CreateCategory(_ context.Context, req *model.CreateCategoryRequest) (*model.Category, error) {
	c := model.Category{Name: req.Name, IsActive: true}
	c.ID = int64(len(f.categories) + 1)
	f.categories = append(f.categories, c)
	return &c, nil
}

func (f *fakeCatalog) Create(_ context.Context, req *model.CreateProductRequest) (*model.Product, error) {
	f.products = append(f.products, *req)
	return &model.Product{Name: req.Name, Price: req.Price, CategoryID: req.CategoryID}, nil
}

type fakeInfo struct {
	locations []model.CoffeeShopLocation
	static    map[string]string
}

func (f *fakeInfo) ListLocations(context.Context, *model.ListLocationsRequest) ([]model.CoffeeShopLocation, error) {
	return f.locations, nil
}

func (f *fakeInfo) CreateLocation(_ context.Context, req *model.CreateLocationRequest) (*model.CoffeeShopLocation, error) {
	l := model.CoffeeShopLocation{Name: req.Name, City: req.City}
	f.locations = append(f.locations, l)
	return &l, nil
}

func (f *fakeInfo) UpsertStatic(_ context.Context, req *model.CreateStaticInfoRequest) (*model.StaticInfo, error) {
	if f.static == nil {
		f.static = map[string]string{}
	}
	f.static[req.Key] = req.Value
	return &model.StaticInfo{Key: req.Key, Value: req.Value}, nil
}

const sample = `
categories:
  - name: Espresso drinks
    products:
      - name: Espresso
        price: "2.50"
        stock: 10
      - name: Cappuccino
        price: "3.80"
        stock: 5
locations:
  - name: Downtown
    address: 1 Main St
    city: Tashkent
    opening_time: "08:00"
static:
  company_name: Beans & Co
`

func TestParse(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	require.Len(t, f.Categories, 1)
	require.Len(t, f.Categories[0].Products, 2)
	assert.Equal(t, "2.5", f.Categories[0].Products[0].Price.String())
	assert.Equal(t, "Tashkent", f.Locations[0].City)
	assert.Equal(t, "Beans & Co", f.Static["company_name"])
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("categories: [oops"))
	require.Error(t, err)
}

func TestApply_IsIdempotent(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	logger := zerolog.Nop()
	catalog := &fakeCatalog{}
	info := &fakeInfo{}

	result, err := Apply(context.Background(), &logger, catalog, info, f)
	require.NoError(t, err)
	assert.Equal(t, &Result{Categories: 1, Products: 2, Locations: 1, Static: 1}, result)
	assert.Equal(t, int64(1), catalog.products[0].CategoryID)
	assert.Nil(t, catalog.products[0].Description)

	result, err = Apply(context.Background(), &logger, catalog, info, f)
	require.NoError(t, err)
	assert.Equal(t, &Result{Static: 1}, result)
	assert.Len(t, catalog.products, 2)
	assert.Len(t, info.locations, 1)
}

func TestApply_RejectsInvalidProduct(t *testing.T) {
	f, err := Parse([]byte(`
categories:
  - name: Broken
    products:
      - name: Free coffee
        price: "0"
`))
	require.NoError(t, err)

	logger := zerolog.Nop()
	_, err = Apply(context.Background(), &logger, &fakeCatalog{}, &fakeInfo{}, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Free coffee")
}
