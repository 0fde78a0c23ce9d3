package usecase

import (
	"context"
	"testing"

	"honeystore/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProductWritesRequireAdmin(t *testing.T) {
	repo := &mockProductRepo{}
	uc := NewProductUseCase(repo, quietLogger())
	p := &domain.Product{Name: "Raw honey", Price: 45000, Category: domain.CategoryRaw}

	_, err := uc.CreateProduct(context.Background(), nil, p)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.CreateProduct(context.Background(), customer, p)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	err = uc.DeleteProduct(context.Background(), customer, "p-1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	repo.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
}

func TestCreateProductValidatesCategory(t *testing.T) {
	repo := &mockProductRepo{}
	uc := NewProductUseCase(repo, quietLogger())

	_, err := uc.CreateProduct(context.Background(), admin, &domain.Product{Name: "Raw honey", Price: 45000, Category: "jam"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	repo.On("CreateProduct", mock.Anything, mock.AnythingOfType("*domain.Product")).
		Return(&domain.Product{ID: "p-1", Name: "Raw honey"}, nil)
	created, err := uc.CreateProduct(context.Background(), admin, &domain.Product{Name: "Raw honey", Price: 45000, Category: domain.CategoryRaw})
	require.NoError(t, err)
	assert.Equal(t, "p-1", created.ID)
}

func TestListProductsPaging(t *testing.T) {
	repo := &mockProductRepo{}
	uc := NewProductUseCase(repo, quietLogger())
	repo.On("ListProducts", mock.Anything, domain.ProductFilter{Page: 1, Limit: 12}).
		Return([]domain.Product{{ID: "p-1"}}, 25, nil)

	page, err := uc.ListProducts(context.Background(), domain.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 12, page.Limit)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 3, page.Pages)

	_, err = uc.ListProducts(context.Background(), domain.ProductFilter{Category: "jam"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestListCategoriesFillsMissingCounts(t *testing.T) {
	repo := &mockProductRepo{}
	uc := NewProductUseCase(repo, quietLogger())
	repo.On("CountByCategory", mock.Anything).
		Return(map[domain.ProductCategory]int{domain.CategoryRaw: 4, domain.CategoryBeeProducts: 1}, nil).Once()

	got, err := uc.ListCategories(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []domain.CategorySummary{
		{Category: domain.CategoryRaw, ProductCount: 4},
		{Category: domain.CategoryFlavored, ProductCount: 0},
		{Category: domain.CategoryGiftSet, ProductCount: 0},
		{Category: domain.CategoryBeeProducts, ProductCount: 1},
	}, got)
}
