package model

// AddCartItemRequest adds a product, optionally a named variant, to the session cart.
type AddCartItemRequest struct {
	ProductID string  `json:"productId" binding:"required"`
	Variant   *string `json:"variant,omitempty"`
	Quantity  int     `json:"quantity"`
}

// UpdateCartItemRequest sets the quantity of an existing cart line. Zero removes it.
type UpdateCartItemRequest struct {
	Variant  *string `json:"variant,omitempty"`
	Quantity int     `json:"quantity" binding:"min=0"`
}
