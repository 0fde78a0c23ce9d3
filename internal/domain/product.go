package domain

import (
	"context"
	"time"
)

type ProductCategory string

const (
	CategoryRaw         ProductCategory = "raw"
	CategoryFlavored    ProductCategory = "flavored"
	CategoryGiftSet     ProductCategory = "gift-set"
	CategoryBeeProducts ProductCategory = "bee-products"
)

// Categories lists every category in storefront display order.
var Categories = []ProductCategory{CategoryRaw, CategoryFlavored, CategoryGiftSet, CategoryBeeProducts}

func IsValidCategory(c ProductCategory) bool {
	switch c {
	case CategoryRaw, CategoryFlavored, CategoryGiftSet, CategoryBeeProducts:
		return true
	default:
		return false
	}
}

type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	NameEn        string          `json:"nameEn"`
	Description   string          `json:"description"`
	DescriptionEn string          `json:"descriptionEn"`
	Price         int64           `json:"price"`
	SalePrice     *int64          `json:"salePrice,omitempty"`
	Images        []string        `json:"images"`
	Category      ProductCategory `json:"category"`
	Tags          []string        `json:"tags"`
	Stock         int             `json:"stock"`
	Weight        int             `json:"weight"`
	Origin        string          `json:"origin"`
	IsOrganic     bool            `json:"isOrganic"`
	IsFeatured    bool            `json:"isFeatured"`
	IsActive      bool            `json:"isActive"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// EffectivePrice is the sale price when one is set, the list price otherwise.
func (p *Product) EffectivePrice() int64 {
	if p.SalePrice != nil && *p.SalePrice > 0 && *p.SalePrice < p.Price {
		return *p.SalePrice
	}
	return p.Price
}

type ProductFilter struct {
	Category ProductCategory
	Featured bool
	Search   string
	Page     int
	Limit    int
}

type ProductPage struct {
	Products []Product `json:"products"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
	Total    int       `json:"total"`
	Pages    int       `json:"pages"`
}

type CategorySummary struct {
	Category     ProductCategory `json:"category"`
	ProductCount int             `json:"productCount"`
}

type ProductRepository interface {
	CreateProduct(ctx context.Context, product *Product) (*Product, error)
	GetProductByID(ctx context.Context, id string) (*Product, error)
	UpdateProduct(ctx context.Context, product *Product) (*Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, int, error)
	// CountByCategory counts active products; categories with none are absent.
	CountByCategory(ctx context.Context) (map[ProductCategory]int, error)
}

type ProductUseCase interface {
	CreateProduct(ctx context.Context, session *Session, product *Product) (*Product, error)
	GetProductByID(ctx context.Context, id string) (*Product, error)
	UpdateProduct(ctx context.Context, session *Session, id string, product *Product) (*Product, error)
	DeleteProduct(ctx context.Context, session *Session, id string) error
	ListProducts(ctx context.Context, filter ProductFilter) (*ProductPage, error)
	ListCategories(ctx context.Context) ([]CategorySummary, error)
}
