package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/captcha"
	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/model"
	"storefront/internal/notification"
	"storefront/internal/payment"
	"storefront/internal/promo"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// NumberSource issues order and tracking numbers.
type NumberSource interface {
	OrderNumber() string
	TrackingNumber() string
}

// OrderDeps collects the collaborators of the order service.
type OrderDeps struct {
	Orders    repository.OrderRepository
	Products  repository.ProductRepository
	Customers CustomerService
	Carts     cart.Store
	Captcha   captcha.Verifier
	// Promos may be nil, in which case every promo code is rejected.
	Promos    promo.Catalog
	Payments  *payment.Dispatcher
	Notifier  notification.Notifier
	Validator *checkout.Validator
	Numbers   NumberSource

	Currency    string
	CallbackURL string
}

// orderService implements OrderService.
type orderService struct {
	OrderDeps
	logger zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(deps OrderDeps, logger zerolog.Logger) OrderService {
	if deps.Currency == "" {
		deps.Currency = model.DefaultCurrency
	}
	return &orderService{
		OrderDeps: deps,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// PlaceOrder validates the checkout, writes the order and its items in one transaction,
// then either hands the buyer to a gateway or confirms a manual payment.
// Nothing is written when validation, captcha, promo or product resolution fails.
func (s *orderService) PlaceOrder(ctx context.Context, req model.PlaceOrderRequest) (*model.PlaceOrderResponse, error) {
	form := checkout.Form{
		Shipping:       checkout.NormalizeShipping(req.Shipping),
		DeliveryMethod: req.DeliveryMethod,
		PaymentMethod:  req.PaymentMethod,
	}
	if err := s.Validator.Validate(form); err != nil {
		return nil, err
	}

	items := s.Carts.Items(req.SessionID)
	if len(items) == 0 {
		return nil, model.ErrEmptyCart
	}

	if err := s.Captcha.Verify(ctx, req.CaptchaToken, req.RemoteIP); err != nil {
		if errors.Is(err, model.ErrCaptchaFailed) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("captcha verification unavailable")
		return nil, fmt.Errorf("failed to verify captcha: %w", err)
	}

	var gateway payment.Gateway
	if !form.PaymentMethod.Manual() {
		gw, ok := s.Payments.Gateway(form.PaymentMethod)
		if !ok {
			s.logger.Error().Str("payment_method", string(form.PaymentMethod)).Msg("payment gateway not configured")
			return nil, model.ErrGatewayNotConfigured
		}
		gateway = gw
	}

	subtotal := model.RoundMoney(cart.Subtotal(items))
	discount := decimal.Zero
	promoCode := ""
	if code := strings.TrimSpace(req.PromoCode); code != "" {
		if s.Promos == nil {
			return nil, model.ErrInvalidPromoCode
		}
		p, err := s.Promos.Lookup(code)
		if err != nil {
			s.logger.Debug().Str("promo_code", code).Err(err).Msg("promo code rejected")
			return nil, err
		}
		discount = p.Discount(subtotal)
		promoCode = p.Code
	}

	productIDs, products, err := s.resolveProducts(ctx, items)
	if err != nil {
		return nil, err
	}

	order := s.newOrder(req, form.Shipping, subtotal, discount, promoCode)
	orderItems := make([]model.OrderItem, len(items))
	for i, item := range items {
		product := products[productIDs[i]]
		meta := model.OrderItemMetadata{
			Image:            item.Image,
			Slug:             item.Slug,
			PreorderShipping: product.PreorderShipping(),
		}
		if meta.Image == "" {
			meta.Image = product.ImageURL
		}
		if meta.Slug == "" {
			meta.Slug = product.Slug
		}
		orderItems[i] = model.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   productIDs[i],
			ProductName: item.Name,
			VariantName: item.Variant,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  model.RoundMoney(item.LineTotal()),
			Metadata:    meta,
		}
	}

	if err := s.persist(ctx, order, orderItems); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_number", order.OrderNumber).
		Str("payment_method", string(order.PaymentMethod)).
		Int("item_count", len(orderItems)).
		Str("total", order.Total.StringFixed(2)).
		Msg("order created")

	s.Customers.UpsertFromOrder(ctx, order)

	resp := &model.PlaceOrderResponse{
		OrderNumber:    order.OrderNumber,
		TrackingNumber: order.Metadata.TrackingNumber,
		Total:          order.Total,
		Currency:       order.Currency,
	}

	if gateway == nil {
		s.Carts.Clear(req.SessionID)
		s.Notifier.Dispatch(orderEvent(notification.OrderCreated, order))
		resp.Next = model.NextConfirmation
		resp.RedirectURL = "/order-success?order=" + order.OrderNumber
		return resp, nil
	}

	result, err := gateway.Initialize(ctx, payment.InitRequest{
		OrderReference: order.OrderNumber,
		Amount:         order.Total,
		CustomerEmail:  order.Email,
		Currency:       order.Currency,
		CallbackURL:    s.CallbackURL,
	})
	if err != nil {
		// The order stays pending and the cart is kept so the buyer can retry.
		s.logger.Error().
			Err(err).
			Str("order_number", order.OrderNumber).
			Str("gateway", string(gateway.Method())).
			Msg("payment initialisation failed")
		return nil, model.NewPaymentInitError(checkout.FriendlyMessage(err.Error()))
	}

	s.Carts.Clear(req.SessionID)
	resp.Next = model.NextRedirect
	resp.RedirectURL = result.URL
	return resp, nil
}

// resolveProducts maps every cart line to a product ID, resolving slugs in one query,
// and batch-fetches those products. Returns a resolution error naming the first unknown line.
func (s *orderService) resolveProducts(ctx context.Context, items []cart.Item) ([]uuid.UUID, map[uuid.UUID]model.Product, error) {
	ids := make([]uuid.UUID, len(items))
	var slugs []string
	for i, item := range items {
		if id, err := uuid.Parse(item.ID); err == nil {
			ids[i] = id
			continue
		}
		slugs = append(slugs, item.ID)
	}

	if len(slugs) > 0 {
		resolved, err := s.Products.ResolveSlugs(ctx, slugs)
		if err != nil {
			s.logger.Error().Err(err).Int("slug_count", len(slugs)).Msg("failed to resolve product slugs")
			return nil, nil, fmt.Errorf("failed to resolve products: %w", err)
		}
		for i, item := range items {
			if ids[i] != uuid.Nil {
				continue
			}
			id, ok := resolved[item.ID]
			if !ok {
				s.logger.Warn().Str("product_ref", item.ID).Msg("cart item does not resolve to a product")
				return nil, nil, model.NewResolutionError(item.Name)
			}
			ids[i] = id
		}
	}

	unique := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			unique = append(unique, id)
		}
	}

	found, err := s.Products.GetByIDs(ctx, unique)
	if err != nil {
		s.logger.Error().Err(err).Int("product_count", len(unique)).Msg("failed to fetch products")
		return nil, nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	products := make(map[uuid.UUID]model.Product, len(found))
	for _, p := range found {
		products[p.ID] = p
	}
	for i, item := range items {
		if _, ok := products[ids[i]]; !ok {
			s.logger.Warn().Str("product_ref", item.ID).Msg("cart item references a missing product")
			return nil, nil, model.NewResolutionError(item.Name)
		}
	}

	return ids, products, nil
}

func (s *orderService) newOrder(req model.PlaceOrderRequest, shipping model.ShippingDetails, subtotal, discount decimal.Decimal, promoCode string) *model.Order {
	now := time.Now()
	tax := decimal.Zero
	shippingTotal := decimal.Zero

	return &model.Order{
		ID:              uuid.New(),
		OrderNumber:     s.Numbers.OrderNumber(),
		UserID:          req.UserID,
		Email:           shipping.Email,
		Phone:           shipping.Phone,
		Status:          model.OrderStatusPending,
		PaymentStatus:   model.PaymentStatusPending,
		Currency:        s.Currency,
		Subtotal:        subtotal,
		TaxTotal:        tax,
		ShippingTotal:   shippingTotal,
		DiscountTotal:   discount,
		Total:           model.RoundMoney(subtotal.Add(tax).Add(shippingTotal).Sub(discount)),
		ShippingMethod:  req.DeliveryMethod,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: shipping,
		BillingAddress:  shipping,
		Metadata: model.OrderMetadata{
			GuestCheckout:  req.UserID == nil,
			FirstName:      shipping.FirstName,
			LastName:       shipping.LastName,
			TrackingNumber: s.Numbers.TrackingNumber(),
			PaymentMethod:  req.PaymentMethod,
			PromoCode:      promoCode,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// persist writes the order and its items atomically.
func (s *orderService) persist(ctx context.Context, order *model.Order, items []model.OrderItem) (err error) {
	tx, err := s.Orders.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.Orders.CreateOrder(ctx, tx, order); err != nil {
		if errors.Is(err, model.ErrDuplicateOrderNumber) {
			s.logger.Error().Str("order_number", order.OrderNumber).Msg("order number collision")
			return err
		}
		s.logger.Error().Err(err).Str("order_number", order.OrderNumber).Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	if err = s.Orders.CreateOrderItems(ctx, tx, items); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_number", order.OrderNumber).
			Int("item_count", len(items)).
			Msg("failed to create order items")
		return fmt.Errorf("failed to create order items: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_number", order.OrderNumber).Msg("failed to commit transaction")
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// GetByNumber retrieves an order and its items.
func (s *orderService) GetByNumber(ctx context.Context, orderNumber string) (*model.OrderResponse, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, model.ErrMissingOrderNumber
	}

	order, items, err := s.Orders.GetByNumber(ctx, orderNumber)
	if err != nil {
		s.logger.Error().Err(err).Str("order_number", orderNumber).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_number", orderNumber).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	return &model.OrderResponse{Order: order, Items: items}, nil
}

// orderEventPayload is the notification body for order lifecycle events.
type orderEventPayload struct {
	OrderNumber    string              `json:"order_number"`
	TrackingNumber string              `json:"tracking_number"`
	Email          string              `json:"email"`
	Phone          string              `json:"phone"`
	Name           string              `json:"name"`
	Total          decimal.Decimal     `json:"total"`
	Currency       string              `json:"currency"`
	PaymentMethod  model.PaymentMethod `json:"payment_method"`
}

func orderEvent(t notification.EventType, order *model.Order) notification.Event {
	return notification.Event{
		Type: t,
		Payload: orderEventPayload{
			OrderNumber:    order.OrderNumber,
			TrackingNumber: order.Metadata.TrackingNumber,
			Email:          order.Email,
			Phone:          order.Phone,
			Name:           order.ShippingAddress.FullName(),
			Total:          order.Total,
			Currency:       order.Currency,
			PaymentMethod:  order.PaymentMethod,
		},
	}
}
