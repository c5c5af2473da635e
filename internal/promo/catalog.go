package promo

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// catalog is read-only after construction.
type catalog struct {
	codes  map[string]decimal.Decimal
	logger zerolog.Logger
}

// NewCatalog loads every path concurrently and merges them in order, so later files override earlier ones.
// Any load failure aborts start-up.
func NewCatalog(ctx context.Context, paths []string, loader Loader, logger zerolog.Logger) (Catalog, error) {
	logger = logger.With().Str("component", "promo-catalog").Logger()

	sets := make([]Set, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			set, err := loader.Load(gctx, path)
			if err != nil {
				return fmt.Errorf("failed to load promo file %s: %w", path, err)
			}
			sets[i] = set
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("promo catalog initialisation failed")
		return nil, err
	}

	c := &catalog{
		codes:  make(map[string]decimal.Decimal),
		logger: logger,
	}
	for _, set := range sets {
		set.Range(func(code string, percent decimal.Decimal) {
			c.codes[code] = percent
		})
	}

	logger.Info().
		Int("file_count", len(paths)).
		Int("total_codes", len(c.codes)).
		Msg("promo catalog initialised")

	return c, nil
}

// Lookup normalises code and resolves its promotion.
func (c *catalog) Lookup(code string) (Promotion, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) < MinCodeLength || len(code) > MaxCodeLength {
		c.logger.Debug().Int("length", len(code)).Msg("promo code length invalid")
		return Promotion{}, model.ErrInvalidPromoLength
	}

	percent, ok := c.codes[code]
	if !ok {
		c.logger.Debug().Str("promo_code", code).Msg("promo code unknown")
		return Promotion{}, model.ErrInvalidPromoCode
	}

	return Promotion{Code: code, Percent: percent}, nil
}

func (c *catalog) Size() int {
	return len(c.codes)
}
