package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"storefront/internal/cart"
	"storefront/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCartRouter(svc *MockCartService) *gin.Engine {
	h := NewCartHandler(svc, zerolog.Nop())
	r := gin.New()
	r.GET("/api/cart", h.Get)
	r.DELETE("/api/cart", h.Clear)
	r.POST("/api/cart/items", h.AddItem)
	r.PATCH("/api/cart/items/:id", h.UpdateItem)
	r.DELETE("/api/cart/items/:id", h.RemoveItem)
	return r
}

var sessionHeader = map[string]string{CartSessionHeader: "sess-1"}

func testLines() []cart.Item {
	return []cart.Item{
		{ID: "kente-scarf", Name: "Kente Scarf", Quantity: 2, UnitPrice: decimal.RequireFromString("50"), MOQ: 1},
		{ID: "shea-butter", Name: "Shea Butter", Variant: strPtr("250g"), Quantity: 1, UnitPrice: decimal.RequireFromString("25.5"), MOQ: 1},
	}
}

func decodeCart(t *testing.T, body []byte) cartResponse {
	t.Helper()
	var resp cartResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp
}

func TestCartHandler_Get(t *testing.T) {
	svc := new(MockCartService)
	svc.On("Items", "sess-1").Return(testLines())
	svc.On("Items", "empty").Return(nil)
	r := newCartRouter(svc)

	w := doJSON(t, r, http.MethodGet, "/api/cart", nil, sessionHeader)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeCart(t, w.Body.Bytes())
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, 3, resp.Count)
	assert.True(t, resp.Subtotal.Equal(decimal.RequireFromString("125.5")))

	w = doJSON(t, r, http.MethodGet, "/api/cart", nil, map[string]string{CartSessionHeader: "empty"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[],"count":0,"subtotal":0}`, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/api/cart", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, model.ErrCodeMissingField, decodeError(t, w).Error)
}

func TestCartHandler_AddItem(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		setup          func(m *MockCartService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "Added",
			body: map[string]any{"productId": "kente-scarf", "quantity": 2},
			setup: func(m *MockCartService) {
				m.On("Add", mock.Anything, "sess-1", model.AddCartItemRequest{ProductID: "kente-scarf", Quantity: 2}).
					Return(testLines()[:1], nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Missing product id",
			body:           map[string]any{"quantity": 2},
			setup:          func(*MockCartService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidJSON,
		},
		{
			name: "Below MOQ",
			body: map[string]any{"productId": "kente-scarf", "quantity": 1},
			setup: func(m *MockCartService) {
				m.On("Add", mock.Anything, "sess-1", mock.Anything).Return(nil, model.NewBelowMOQError("Kente Scarf", 2))
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeBelowMOQ,
		},
		{
			name: "Unknown product",
			body: map[string]any{"productId": "ghost"},
			setup: func(m *MockCartService) {
				m.On("Add", mock.Anything, "sess-1", mock.Anything).Return(nil, model.ErrProductNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   model.ErrCodeProductNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCartService)
			tt.setup(svc)

			w := doJSON(t, newCartRouter(svc), http.MethodPost, "/api/cart/items", tt.body, sessionHeader)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, w).Error)
			} else {
				assert.Len(t, decodeCart(t, w.Body.Bytes()).Items, 1)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestCartHandler_UpdateAndRemove(t *testing.T) {
	svc := new(MockCartService)
	svc.On("Update", "sess-1", "shea-butter", model.UpdateCartItemRequest{Variant: strPtr("250g"), Quantity: 3}).
		Return(testLines(), nil)
	svc.On("Remove", "sess-1", "shea-butter", strPtr("250g")).Return(testLines()[:1], nil)
	svc.On("Remove", "sess-1", "kente-scarf", (*string)(nil)).Return(nil, model.ErrCartItemNotFound)
	svc.On("Clear", "sess-1").Return()
	r := newCartRouter(svc)

	w := doJSON(t, r, http.MethodPatch, "/api/cart/items/shea-butter", map[string]any{"variant": "250g", "quantity": 3}, sessionHeader)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPatch, "/api/cart/items/shea-butter", map[string]any{"quantity": -1}, sessionHeader)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/api/cart/items/shea-butter?variant=250g", nil, sessionHeader)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeCart(t, w.Body.Bytes()).Items, 1)

	w = doJSON(t, r, http.MethodDelete, "/api/cart/items/kente-scarf", nil, sessionHeader)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/api/cart", nil, sessionHeader)
	assert.Equal(t, http.StatusNoContent, w.Code)

	svc.AssertExpectations(t)
}
