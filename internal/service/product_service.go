package service

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

// Catalog page bounds.
const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// productService serves the catalog pages and resolves cart references.
type productService struct {
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewProductService wires the catalog to its repository.
func NewProductService(productRepo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// GetAll returns one catalog page. limit is clamped to [1, 100] and defaults to 10.
func (s *productService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	products, err := s.productRepo.GetAll(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to list catalog page")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	s.logger.Debug().
		Int("count", len(products)).
		Int("limit", limit).
		Int("offset", offset).
		Msg("catalog page served")

	return products, nil
}

// GetByRef resolves the reference a cart line carries, a product UUID or its slug.
// A blank or unknown reference is PRODUCT_NOT_FOUND.
func (s *productService) GetByRef(ctx context.Context, ref string) (*model.Product, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		s.logger.Warn().Msg("product reference is empty")
		return nil, model.ErrProductNotFound
	}

	product, err := s.productRepo.GetByRef(ctx, ref)
	if err != nil {
		s.logger.Error().Err(err).Str("product_ref", ref).Msg("failed to get product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Str("product_ref", ref).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	return product, nil
}
