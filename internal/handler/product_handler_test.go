package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"storefront/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newProductRouter(svc *MockProductService) *gin.Engine {
	h := NewProductHandler(svc, zerolog.Nop())
	r := gin.New()
	r.GET("/api/products", h.GetAll)
	r.GET("/api/products/:ref", h.GetByRef)
	return r
}

func TestProductHandler_GetAll(t *testing.T) {
	testProducts := []model.Product{
		{ID: uuid.New(), Slug: "kente-scarf", Name: "Kente Scarf", Price: decimal.RequireFromString("50")},
		{ID: uuid.New(), Slug: "shea-butter", Name: "Shea Butter", Price: decimal.RequireFromString("25.5")},
	}

	tests := []struct {
		name           string
		query          string
		expectedLimit  int
		expectedOffset int
		mockReturn     []model.Product
		mockError      error
		expectedStatus int
		expectedCount  int
		skipMock       bool
	}{
		{
			name:           "Success with default pagination",
			expectedLimit:  10,
			mockReturn:     testProducts,
			expectedStatus: http.StatusOK,
			expectedCount:  2,
		},
		{
			name:           "Success with custom pagination",
			query:          "?limit=5&offset=10",
			expectedLimit:  5,
			expectedOffset: 10,
			mockReturn:     testProducts[:1],
			expectedStatus: http.StatusOK,
			expectedCount:  1,
		},
		{
			name:           "Invalid limit parameter",
			query:          "?limit=invalid",
			expectedStatus: http.StatusBadRequest,
			skipMock:       true,
		},
		{
			name:           "Invalid offset parameter",
			query:          "?offset=invalid",
			expectedStatus: http.StatusBadRequest,
			skipMock:       true,
		},
		{
			name:           "Service error",
			expectedLimit:  10,
			mockError:      errors.New("database error"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockProductService)
			if !tt.skipMock {
				svc.On("GetAll", mock.Anything, tt.expectedLimit, tt.expectedOffset).Return(tt.mockReturn, tt.mockError)
			}

			w := doJSON(t, newProductRouter(svc), http.MethodGet, "/api/products"+tt.query, nil, nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var products []model.Product
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
				assert.Len(t, products, tt.expectedCount)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestProductHandler_GetByRef(t *testing.T) {
	product := &model.Product{
		ID:    uuid.New(),
		Slug:  "kente-scarf",
		Name:  "Kente Scarf",
		Price: decimal.RequireFromString("50"),
		Variants: []model.ProductVariant{
			{ID: uuid.New(), Name: "Large", StockQuantity: 4},
		},
	}

	tests := []struct {
		name           string
		ref            string
		mockReturn     *model.Product
		mockError      error
		expectedStatus int
	}{
		{"Found by slug", "kente-scarf", product, nil, http.StatusOK},
		{"Found by id", product.ID.String(), product, nil, http.StatusOK},
		{"Not found", "ghost", nil, model.ErrProductNotFound, http.StatusNotFound},
		{"Service error", "kente-scarf", nil, errors.New("database error"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockProductService)
			svc.On("GetByRef", mock.Anything, tt.ref).Return(tt.mockReturn, tt.mockError)

			w := doJSON(t, newProductRouter(svc), http.MethodGet, "/api/products/"+tt.ref, nil, nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var got model.Product
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.Equal(t, "Kente Scarf", got.Name)
				assert.Len(t, got.Variants, 1)
			}
			svc.AssertExpectations(t)
		})
	}
}
