package service

import (
	"context"
	"strings"

	"storefront/internal/cart"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	store    cart.Store
	products ProductService
	logger   zerolog.Logger
}

// NewCartService creates a cart service over store, resolving products through products.
func NewCartService(store cart.Store, products ProductService, logger zerolog.Logger) CartService {
	return &cartService{
		store:    store,
		products: products,
		logger:   logger.With().Str("service", "cart").Logger(),
	}
}

func (s *cartService) Items(sessionID string) []cart.Item {
	return s.store.Items(sessionID)
}

// Add snapshots price, stock and MOQ at the time the line is added.
// A variant's own price and stock override the product's.
func (s *cartService) Add(ctx context.Context, sessionID string, req model.AddCartItemRequest) ([]cart.Item, error) {
	ref := strings.TrimSpace(req.ProductID)
	product, err := s.products.GetByRef(ctx, ref)
	if err != nil {
		return nil, err
	}

	moq := max(product.MOQ, 1)
	quantity := req.Quantity
	if quantity == 0 {
		quantity = moq
	}

	item := cart.Item{
		ID:           ref,
		Name:         product.Name,
		Quantity:     quantity,
		UnitPrice:    product.Price,
		Image:        product.ImageURL,
		Slug:         product.Slug,
		StockCeiling: product.StockQuantity,
		MOQ:          moq,
	}

	if req.Variant != nil {
		variant := findVariant(product, *req.Variant)
		if variant == nil {
			s.logger.Debug().Str("product_ref", ref).Str("variant", *req.Variant).Msg("variant not found")
			return nil, model.ErrVariantNotFound
		}
		name := variant.Name
		item.Variant = &name
		if variant.Price != nil {
			item.UnitPrice = *variant.Price
		}
		item.StockCeiling = variant.StockQuantity
	}

	return s.store.Add(sessionID, item)
}

func (s *cartService) Update(sessionID, id string, req model.UpdateCartItemRequest) ([]cart.Item, error) {
	return s.store.Update(sessionID, id, req.Variant, req.Quantity)
}

func (s *cartService) Remove(sessionID, id string, variant *string) ([]cart.Item, error) {
	return s.store.Remove(sessionID, id, variant)
}

func (s *cartService) Clear(sessionID string) {
	s.store.Clear(sessionID)
}

func findVariant(p *model.Product, name string) *model.ProductVariant {
	for i := range p.Variants {
		if strings.EqualFold(p.Variants[i].Name, name) {
			return &p.Variants[i]
		}
	}
	return nil
}
