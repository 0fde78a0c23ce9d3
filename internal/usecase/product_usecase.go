package usecase

import (
	"context"
	"fmt"
	"strings"

	"honeystore/internal/domain"

	"github.com/sirupsen/logrus"
)

const (
	defaultProductPageSize = 12
	maxProductPageSize     = 100
)

var _ domain.ProductUseCase = (*productUseCase)(nil)

type productUseCase struct {
	productRepo domain.ProductRepository
	log         *logrus.Logger
}

func NewProductUseCase(repo domain.ProductRepository, logger *logrus.Logger) domain.ProductUseCase {
	return &productUseCase{
		productRepo: repo,
		log:         logger,
	}
}

func requireAdmin(session *domain.Session) error {
	if session == nil {
		return domain.ErrUnauthorized
	}
	if !session.IsAdmin() {
		return fmt.Errorf("admin role required: %w", domain.ErrForbidden)
	}
	return nil
}

func validateProduct(p *domain.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return domain.NewValidationError("name", "name is required")
	}
	if p.Price < 0 {
		return domain.NewValidationError("price", "price cannot be negative")
	}
	if p.SalePrice != nil && *p.SalePrice < 0 {
		return domain.NewValidationError("salePrice", "sale price cannot be negative")
	}
	if !domain.IsValidCategory(p.Category) {
		return domain.NewValidationError("category", "unknown category "+string(p.Category))
	}
	if p.Stock < 0 {
		return domain.NewValidationError("stock", "stock cannot be negative")
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return nil
}

func (uc *productUseCase) CreateProduct(ctx context.Context, session *domain.Session, product *domain.Product) (*domain.Product, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	product.ID = ""
	uc.log.Infof("Use Case: Admin %s creating product '%s'", session.UserID, product.Name)
	return uc.productRepo.CreateProduct(ctx, product)
}

func (uc *productUseCase) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	return uc.productRepo.GetProductByID(ctx, id)
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, session *domain.Session, id string, product *domain.Product) (*domain.Product, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	product.ID = id
	uc.log.Infof("Use Case: Admin %s updating product %s", session.UserID, id)
	return uc.productRepo.UpdateProduct(ctx, product)
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, session *domain.Session, id string) error {
	if err := requireAdmin(session); err != nil {
		return err
	}
	uc.log.Infof("Use Case: Admin %s deleting product %s", session.UserID, id)
	return uc.productRepo.DeleteProduct(ctx, id)
}

func (uc *productUseCase) ListProducts(ctx context.Context, filter domain.ProductFilter) (*domain.ProductPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultProductPageSize
	}
	if filter.Limit > maxProductPageSize {
		filter.Limit = maxProductPageSize
	}
	if filter.Category != "" && !domain.IsValidCategory(filter.Category) {
		return nil, domain.NewValidationError("category", "unknown category "+string(filter.Category))
	}

	products, total, err := uc.productRepo.ListProducts(ctx, filter)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list products: %v", err)
		return nil, fmt.Errorf("could not list products: %w", err)
	}
	return &domain.ProductPage{
		Products: products,
		Page:     filter.Page,
		Limit:    filter.Limit,
		Total:    total,
		Pages:    (total + filter.Limit - 1) / filter.Limit,
	}, nil
}

func (uc *productUseCase) ListCategories(ctx context.Context) ([]domain.CategorySummary, error) {
	counts, err := uc.productRepo.CountByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list categories: %w", err)
	}
	summaries := make([]domain.CategorySummary, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		summaries = append(summaries, domain.CategorySummary{Category: c, ProductCount: counts[c]})
	}
	return summaries, nil
}
