package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"honeystore/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const productColumns = `id, name, name_en, description, description_en, price, sale_price, images, category, tags, stock, weight, origin, is_organic, is_featured, is_active, created_at, updated_at`

type postgresProductRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresProductRepository(db *sql.DB, logger *logrus.Logger) domain.ProductRepository {
	return &postgresProductRepository{
		db:  db,
		log: logger,
	}
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		p    domain.Product
		sale sql.NullInt64
	)
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.NameEn,
		&p.Description,
		&p.DescriptionEn,
		&p.Price,
		&sale,
		pq.Array(&p.Images),
		&p.Category,
		pq.Array(&p.Tags),
		&p.Stock,
		&p.Weight,
		&p.Origin,
		&p.IsOrganic,
		&p.IsFeatured,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if sale.Valid {
		v := sale.Int64
		p.SalePrice = &v
	}
	return &p, nil
}

func nullablePrice(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func (r *postgresProductRepository) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	query := `
        INSERT INTO products (id, name, name_en, description, description_en, price, sale_price, images, category,
                              tags, stock, weight, origin, is_organic, is_featured, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
        RETURNING ` + productColumns

	created, err := scanProduct(r.db.QueryRowContext(ctx, query,
		product.ID,
		product.Name,
		product.NameEn,
		product.Description,
		product.DescriptionEn,
		product.Price,
		nullablePrice(product.SalePrice),
		pq.Array(product.Images),
		product.Category,
		pq.Array(product.Tags),
		product.Stock,
		product.Weight,
		product.Origin,
		product.IsOrganic,
		product.IsFeatured,
		product.IsActive,
	))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqCheckViolation {
			return nil, domain.NewValidationError(pqErr.Column, pqErr.Message)
		}
		r.log.Errorf("Repository: Failed to create product '%s': %v", product.Name, err)
		return nil, fmt.Errorf("could not create product: %w", err)
	}

	r.log.Infof("Repository: Product created successfully with ID: %s", created.ID)
	return created, nil
}

func (r *postgresProductRepository) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Product with ID %s not found", id)
			return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
		}
		r.log.Errorf("Repository: Failed to get product by ID %s: %v", id, err)
		return nil, fmt.Errorf("could not retrieve product: %w", err)
	}
	return product, nil
}

func (r *postgresProductRepository) UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if _, err := uuid.Parse(product.ID); err != nil {
		return nil, fmt.Errorf("product %s: %w", product.ID, domain.ErrNotFound)
	}
	query := `
        UPDATE products
        SET name = $2, name_en = $3, description = $4, description_en = $5, price = $6, sale_price = $7,
            images = $8, category = $9, tags = $10, stock = $11, weight = $12, origin = $13,
            is_organic = $14, is_featured = $15, is_active = $16, updated_at = NOW()
        WHERE id = $1
        RETURNING ` + productColumns

	updated, err := scanProduct(r.db.QueryRowContext(ctx, query,
		product.ID,
		product.Name,
		product.NameEn,
		product.Description,
		product.DescriptionEn,
		product.Price,
		nullablePrice(product.SalePrice),
		pq.Array(product.Images),
		product.Category,
		pq.Array(product.Tags),
		product.Stock,
		product.Weight,
		product.Origin,
		product.IsOrganic,
		product.IsFeatured,
		product.IsActive,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Product with ID %s not found for update", product.ID)
			return nil, fmt.Errorf("product %s: %w", product.ID, domain.ErrNotFound)
		}
		r.log.Errorf("Repository: Failed to update product %s: %v", product.ID, err)
		return nil, fmt.Errorf("could not update product: %w", err)
	}

	r.log.Infof("Repository: Product %s updated", updated.ID)
	return updated, nil
}

func (r *postgresProductRepository) DeleteProduct(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.log.Errorf("Repository: Failed to delete product %s: %v", id, err)
		return fmt.Errorf("could not delete product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not read delete result: %w", err)
	}
	if n == 0 {
		r.log.Warnf("Repository: Product with ID %s not found for deletion", id)
		return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	r.log.Infof("Repository: Product %s deleted", id)
	return nil
}

// ListProducts returns one page of active products and the total match count.
func (r *postgresProductRepository) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error) {
	where := []string{"is_active = TRUE"}
	args := []any{}
	argCounter := 1

	if filter.Category != "" {
		where = append(where, fmt.Sprintf("category = $%d", argCounter))
		args = append(args, filter.Category)
		argCounter++
	}
	if filter.Featured {
		where = append(where, "is_featured = TRUE")
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		where = append(where, fmt.Sprintf("(name ILIKE $%[1]d OR name_en ILIKE $%[1]d OR description ILIKE $%[1]d)", argCounter))
		args = append(args, "%"+s+"%")
		argCounter++
	}
	whereSQL := " WHERE " + strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`+whereSQL, args...).Scan(&total); err != nil {
		r.log.Errorf("Repository: Failed to count products: %v", err)
		return nil, 0, fmt.Errorf("could not count products: %w", err)
	}

	limit, page := filter.Limit, filter.Page
	if limit <= 0 || limit > 100 {
		limit = 12
	}
	if page < 1 {
		page = 1
	}
	query := `SELECT ` + productColumns + ` FROM products` + whereSQL +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argCounter, argCounter+1)
	args = append(args, limit, (page-1)*limit)

	r.log.Debugf("Repository: Executing product list query: %s with args: %v", query, args)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.log.Errorf("Repository: Failed to list products: %v", err)
		return nil, 0, fmt.Errorf("could not retrieve products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.log.Errorf("Repository: Failed to scan product row: %v", err)
			return nil, 0, fmt.Errorf("error scanning product data: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}
	return products, total, nil
}

func (r *postgresProductRepository) CountByCategory(ctx context.Context) (map[domain.ProductCategory]int, error) {
	query := `SELECT category, COUNT(*) FROM products WHERE is_active = TRUE GROUP BY category`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.log.Errorf("Repository: Failed to count products by category: %v", err)
		return nil, fmt.Errorf("could not count products: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.ProductCategory]int)
	for rows.Next() {
		var (
			category domain.ProductCategory
			n        int
		)
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("could not scan category count: %w", err)
		}
		counts[category] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category counts: %w", err)
	}
	return counts, nil
}
