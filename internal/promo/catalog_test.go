package promo

import (
	"context"
	"errors"
	"sync"
	"testing"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalog_MergesInOrder(t *testing.T) {
	first := createTestPromoFile(t, "a.gz", []string{"SUMMER,15", "WELCOME"})
	second := createTestPromoFile(t, "b.gz", []string{"SUMMER,25", "VIP,50"})

	c, err := NewCatalog(context.Background(), []string{first, second}, NewFileLoader(zerolog.Nop()), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 3, c.Size())

	p, err := c.Lookup("summer")
	require.NoError(t, err)
	assert.Equal(t, "SUMMER", p.Code)
	assert.True(t, p.Percent.Equal(decimal.NewFromInt(25)))
}

func TestNewCatalog_LoadFailure(t *testing.T) {
	loader := &mockLoader{loadFunc: func(_ context.Context, path string) (Set, error) {
		if path == "broken.gz" {
			return nil, errors.New("corrupt")
		}
		return setOf("GOOD"), nil
	}}

	c, err := NewCatalog(context.Background(), []string{"ok.gz", "broken.gz"}, loader, zerolog.Nop())

	require.Error(t, err)
	assert.Nil(t, c)
	assert.Contains(t, err.Error(), "broken.gz")
}

func TestNewCatalog_NoFiles(t *testing.T) {
	c, err := NewCatalog(context.Background(), nil, &mockLoader{}, zerolog.Nop())
	require.NoError(t, err)

	_, err = c.Lookup("ANYCODE")
	assert.Equal(t, model.ErrInvalidPromoCode, err)
}

func TestCatalog_Lookup(t *testing.T) {
	c, err := NewCatalog(context.Background(), []string{"x.gz"}, &mockLoader{
		loadFunc: func(context.Context, string) (Set, error) { return setOf("WELCOME"), nil },
	}, zerolog.Nop())
	require.NoError(t, err)

	tests := []struct {
		name    string
		code    string
		wantErr error
	}{
		{"exact", "WELCOME", nil},
		{"lower case and padded", "  welcome ", nil},
		{"too short", "WEL", model.ErrInvalidPromoLength},
		{"too long", "WELCOMEWELCOMEWELCOMEWELCOMEWELCO", model.ErrInvalidPromoLength},
		{"unknown", "GOODBYE", model.ErrInvalidPromoCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := c.Lookup(tt.code)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "WELCOME", p.Code)
		})
	}
}

func TestCatalog_ConcurrentLookups(t *testing.T) {
	c, err := NewCatalog(context.Background(), []string{"x.gz"}, &mockLoader{
		loadFunc: func(context.Context, string) (Set, error) { return setOf("WELCOME"), nil },
	}, zerolog.Nop())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, err := c.Lookup("WELCOME")
				assert.NoError(t, err)
			} else {
				_, err := c.Lookup("NOTHERE")
				assert.Equal(t, model.ErrInvalidPromoCode, err)
			}
		}(i)
	}
	wg.Wait()
}

func TestPromotion_Discount(t *testing.T) {
	tests := []struct {
		name     string
		percent  string
		subtotal string
		want     string
	}{
		{"ten percent", "10", "100.00", "10"},
		{"rounds to cents", "15", "33.33", "5"},
		{"fractional percent", "12.5", "19.99", "2.5"},
		{"full discount", "100", "42.10", "42.1"},
		{"zero subtotal", "50", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Promotion{Code: "X", Percent: decimal.RequireFromString(tt.percent)}
			got := p.Discount(decimal.RequireFromString(tt.subtotal))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}
