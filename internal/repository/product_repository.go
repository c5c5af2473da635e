package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const productColumns = `id, slug, name, category, price, stock_quantity, moq, image_url, metadata, created_at`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID,
		&p.Slug,
		&p.Name,
		&p.Category,
		&p.Price,
		&p.StockQuantity,
		&p.MOQ,
		&p.ImageURL,
		&p.Metadata,
		&p.CreatedAt,
	)
	return p, err
}

func (r *productRepository) queryProducts(ctx context.Context, query string, args ...any) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// GetAll retrieves products with pagination support.
func (r *productRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY name LIMIT $1 OFFSET $2`

	products, err := r.queryProducts(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	return products, nil
}

// GetByRef retrieves a product and its variants by UUID or slug.
func (r *productRepository) GetByRef(ctx context.Context, ref string) (*model.Product, error) {
	var row pgx.Row
	if id, err := uuid.Parse(ref); err == nil {
		row = r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	} else {
		row = r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE slug = $1`, ref)
	}

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("ref", ref).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("ref", ref).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	variants, err := r.getVariants(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Variants = variants

	return &p, nil
}

func (r *productRepository) getVariants(ctx context.Context, productID uuid.UUID) ([]model.ProductVariant, error) {
	query := `
		SELECT id, product_id, name, price, stock_quantity
		FROM product_variants
		WHERE product_id = $1
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to query variants")
		return nil, fmt.Errorf("failed to query variants: %w", err)
	}
	defer rows.Close()

	var variants []model.ProductVariant
	for rows.Next() {
		var (
			v     model.ProductVariant
			price decimal.NullDecimal
		)
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Name, &price, &v.StockQuantity); err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		if price.Valid {
			v.Price = &price.Decimal
		}
		variants = append(variants, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating variants: %w", err)
	}

	return variants, nil
}

// GetByIDs retrieves multiple products by their IDs.
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	products, err := r.queryProducts(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, fmt.Errorf("failed to query products by IDs: %w", err)
	}

	return products, nil
}

// ResolveSlugs maps each known slug to its product ID.
func (r *productRepository) ResolveSlugs(ctx context.Context, slugs []string) (map[string]uuid.UUID, error) {
	resolved := make(map[string]uuid.UUID, len(slugs))
	if len(slugs) == 0 {
		return resolved, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT slug, id FROM products WHERE slug = ANY($1)`, slugs)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(slugs)).Msg("failed to resolve product slugs")
		return nil, fmt.Errorf("failed to resolve product slugs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			slug string
			id   uuid.UUID
		)
		if err := rows.Scan(&slug, &id); err != nil {
			return nil, fmt.Errorf("failed to scan slug: %w", err)
		}
		resolved[slug] = id
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating slugs: %w", err)
	}

	r.logger.Debug().
		Int("requested", len(slugs)).
		Int("resolved", len(resolved)).
		Msg("product slugs resolved")

	return resolved, nil
}
