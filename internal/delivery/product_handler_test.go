package delivery

import (
	"net/http"
	"testing"

	"honeystore/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newProductRouter() (*mockProductUseCase, http.Handler) {
	products := new(mockProductUseCase)
	return products, newTestRouter(NewProductHandler(products, quietLogger()))
}

func TestListProductsFilterAndPagination(t *testing.T) {
	products, r := newProductRouter()
	filter := domain.ProductFilter{Category: domain.CategoryRaw, Featured: true, Search: "altai", Page: 2, Limit: 5}
	products.On("ListProducts", mock.Anything, filter).Return(&domain.ProductPage{
		Products: []domain.Product{{ID: "p-6", Name: "Altai raw honey", Price: 45000, Category: domain.CategoryRaw}},
		Page:     2,
		Limit:    5,
		Total:    6,
		Pages:    2,
	}, nil).Once()

	w := doRequest(r, http.MethodGet, "/products?category=raw&featured=true&search=altai&page=2&limit=5", "", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pagination":{"page":2,"limit":5,"total":6,"pages":2}`)
	assert.Contains(t, w.Body.String(), `"id":"p-6"`)
	products.AssertExpectations(t)
}

func TestListProductsBadPage(t *testing.T) {
	products, r := newProductRouter()

	w := doRequest(r, http.MethodGet, "/products?page=two", "", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	products.AssertNotCalled(t, "ListProducts", mock.Anything, mock.Anything)
}

func TestGetProductNotFound(t *testing.T) {
	products, r := newProductRouter()
	products.On("GetProductByID", mock.Anything, "nope").Return(nil, domain.ErrNotFound).Once()

	w := doRequest(r, http.MethodGet, "/products/nope", "", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, w.Body.String())
}

func TestCreateProductAdminOnly(t *testing.T) {
	products, r := newProductRouter()
	body := `{"name":"Flower honey","price":30000,"category":"raw","stock":10}`
	products.On("CreateProduct", mock.Anything, adminSession, mock.MatchedBy(func(p *domain.Product) bool {
		return p.Name == "Flower honey" && p.Price == 30000
	})).Return(&domain.Product{ID: "p-9", Name: "Flower honey"}, nil).Once()

	assert.Equal(t, http.StatusForbidden, doRequest(r, http.MethodPost, "/products", "customer", body).Code)
	assert.Equal(t, http.StatusForbidden, doRequest(r, http.MethodPost, "/products", "", body).Code)

	w := doRequest(r, http.MethodPost, "/products", "admin", body)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"p-9"`)
	products.AssertNumberOfCalls(t, "CreateProduct", 1)
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	products, r := newProductRouter()
	products.On("UpdateProduct", mock.Anything, adminSession, "p-9", mock.Anything).
		Return(&domain.Product{ID: "p-9", Name: "Renamed"}, nil).Once()
	products.On("DeleteProduct", mock.Anything, adminSession, "p-9").Return(nil).Once()
	products.On("DeleteProduct", mock.Anything, customerSession, "p-9").Return(domain.ErrForbidden).Once()

	w := doRequest(r, http.MethodPut, "/products/p-9", "admin", `{"name":"Renamed","price":1,"category":"raw"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodDelete, "/products/p-9", "admin", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	w = doRequest(r, http.MethodDelete, "/products/p-9", "customer", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListCategoriesIsNotAProductID(t *testing.T) {
	products, r := newProductRouter()
	products.On("ListCategories", mock.Anything).Return([]domain.CategorySummary{
		{Category: domain.CategoryRaw, ProductCount: 4},
	}, nil).Once()

	w := doRequest(r, http.MethodGet, "/products/categories", "", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"categories":[{"category":"raw","productCount":4}]}`, w.Body.String())
	products.AssertNotCalled(t, "GetProductByID", mock.Anything, mock.Anything)
}
