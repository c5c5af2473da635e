package service

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/checkout"
	"storefront/internal/model"
	"storefront/internal/notification"
	"storefront/internal/payment"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

// Verification outcome messages shown on the order-success page.
const (
	MsgAlreadyPaid      = "Order already paid"
	MsgPaymentFailed    = "Payment failed"
	MsgAwaitingManual   = "Payment awaiting manual confirmation"
	MsgNotConfirmed     = "Payment not confirmed"
	MsgPaymentConfirmed = "Payment verified and order updated"
	MsgPaymentMismatch  = "Payment does not match this order"
)

// PaymentDeps collects the collaborators of the payment service.
type PaymentDeps struct {
	Orders    repository.OrderRepository
	Customers CustomerService
	Payments  *payment.Dispatcher
	Notifier  notification.Notifier

	Currency    string
	CallbackURL string
}

// paymentService implements PaymentService.
type paymentService struct {
	PaymentDeps
	logger zerolog.Logger
}

// NewPaymentService creates a new payment service.
func NewPaymentService(deps PaymentDeps, logger zerolog.Logger) PaymentService {
	if deps.Currency == "" {
		deps.Currency = model.DefaultCurrency
	}
	return &paymentService{
		PaymentDeps: deps,
		logger:      logger.With().Str("service", "payment").Logger(),
	}
}

// Initialize starts a hosted checkout for an existing pending order. The stored total and
// email are charged; the amount and email in the request are ignored.
func (s *paymentService) Initialize(ctx context.Context, method model.PaymentMethod, req model.PaymentInitRequest) (*model.PaymentInitResponse, error) {
	if !method.Valid() || method.Manual() {
		return nil, model.ErrUnsupportedPayment
	}

	orderNumber := strings.TrimSpace(req.OrderID)
	if orderNumber == "" {
		return nil, &model.ValidationError{Fields: map[string]string{"orderId": "Order ID is required"}}
	}

	order, err := s.load(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus != model.PaymentStatusPending {
		return nil, model.ErrOrderNotPending
	}
	if order.PaymentMethod != method {
		s.logger.Warn().
			Str("order_number", orderNumber).
			Str("order_method", string(order.PaymentMethod)).
			Str("requested_method", string(method)).
			Msg("payment method does not match order")
		return nil, model.ErrPaymentMethodChanged
	}

	gateway, ok := s.Payments.Gateway(method)
	if !ok {
		s.logger.Error().Str("payment_method", string(method)).Msg("payment gateway not configured")
		return nil, model.ErrGatewayNotConfigured
	}

	currency := order.Currency
	if currency == "" {
		currency = s.Currency
	}

	result, err := gateway.Initialize(ctx, payment.InitRequest{
		OrderReference: order.OrderNumber,
		Amount:         model.RoundMoney(order.Total),
		CustomerEmail:  order.Email,
		Currency:       currency,
		CallbackURL:    s.CallbackURL,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("gateway", string(method)).Str("order_number", orderNumber).Msg("payment initialisation failed")
		return nil, model.NewPaymentInitError(checkout.FriendlyMessage(err.Error()))
	}

	return &model.PaymentInitResponse{Success: true, URL: result.URL}, nil
}

// Verify asks the order's gateway about the transaction. Confirmation flips the order to paid
// and decrements stock exactly once, however many callers race here.
func (s *paymentService) Verify(ctx context.Context, req model.VerifyPaymentRequest) (*model.VerifyPaymentResponse, error) {
	orderNumber := strings.TrimSpace(req.OrderNumber)
	if orderNumber == "" {
		return nil, model.ErrMissingOrderNumber
	}

	order, err := s.load(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if resp := settled(order); resp != nil {
		return resp, nil
	}

	if order.PaymentMethod.Manual() {
		return &model.VerifyPaymentResponse{
			Status:        order.Status,
			PaymentStatus: order.PaymentStatus,
			Message:       MsgAwaitingManual,
		}, nil
	}

	gateway, ok := s.Payments.Gateway(order.PaymentMethod)
	if !ok {
		s.logger.Error().Str("payment_method", string(order.PaymentMethod)).Msg("payment gateway not configured")
		return nil, model.ErrGatewayNotConfigured
	}

	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		reference = orderNumber
	}

	v, err := gateway.Verify(ctx, reference)
	if err != nil {
		s.logger.Error().Err(err).Str("order_number", orderNumber).Str("reference", reference).Msg("payment verification failed")
		return nil, model.NewDomainError(model.ErrCodePaymentVerifyFailed, checkout.FriendlyMessage(err.Error()))
	}

	log := s.logger.With().
		Str("order_number", orderNumber).
		Str("gateway", string(gateway.Method())).
		Str("gateway_status", v.GatewayStatus).
		Logger()

	// A transaction recorded against another order never settles this one.
	if v.Status != payment.StatusPending && v.OrderReference != order.OrderNumber {
		log.Warn().
			Str("reference", reference).
			Str("transaction_order", v.OrderReference).
			Msg("transaction belongs to another order")
		return mismatch(order), nil
	}

	switch v.Status {
	case payment.StatusConfirmed:
		if reason := underpaid(order, v); reason != "" {
			log.Warn().
				Str("reference", reference).
				Str("paid", v.Amount.StringFixed(2)).
				Str("paid_currency", v.Currency).
				Str("total", order.Total.StringFixed(2)).
				Str("currency", order.Currency).
				Msg(reason)
			return mismatch(order), nil
		}
		return s.markPaid(ctx, order, string(gateway.Method())+":"+reference, log)

	case payment.StatusFailed:
		moved, err := s.Orders.MarkFailed(ctx, orderNumber, v.GatewayStatus)
		if err != nil {
			log.Error().Err(err).Msg("failed to mark order failed")
			return nil, fmt.Errorf("failed to update order: %w", err)
		}
		if !moved {
			return s.reload(ctx, orderNumber)
		}
		log.Info().Msg("payment failed")
		return &model.VerifyPaymentResponse{
			Status:        order.Status,
			PaymentStatus: model.PaymentStatusFailed,
			Message:       MsgPaymentFailed,
		}, nil

	default:
		log.Debug().Msg("payment not confirmed yet")
		return &model.VerifyPaymentResponse{
			Status:        order.Status,
			PaymentStatus: model.PaymentStatusPending,
			Message:       MsgNotConfirmed,
		}, nil
	}
}

// underpaid reports why a confirmed transaction cannot settle the order, or "".
func underpaid(order *model.Order, v *payment.Verification) string {
	if v.Currency != "" && order.Currency != "" && !strings.EqualFold(v.Currency, order.Currency) {
		return "gateway currency differs from order currency"
	}
	if v.Amount.LessThan(model.RoundMoney(order.Total)) {
		return "gateway amount is below order total"
	}
	return ""
}

// mismatch leaves the order pending.
func mismatch(order *model.Order) *model.VerifyPaymentResponse {
	return &model.VerifyPaymentResponse{
		Status:        order.Status,
		PaymentStatus: model.PaymentStatusPending,
		Message:       MsgPaymentMismatch,
	}
}

func (s *paymentService) markPaid(ctx context.Context, order *model.Order, reference string, log zerolog.Logger) (*model.VerifyPaymentResponse, error) {
	paid, err := s.Orders.MarkPaid(ctx, order.OrderNumber, reference)
	if err != nil {
		log.Error().Err(err).Msg("failed to mark order paid")
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	if paid == nil {
		log.Debug().Msg("order already settled by another request")
		return s.reload(ctx, order.OrderNumber)
	}

	log.Info().Str("total", paid.Total.StringFixed(2)).Msg("payment confirmed")

	s.Customers.RecordPaidOrder(ctx, paid.Email, paid.Total)
	s.Notifier.Dispatch(orderEvent(notification.OrderConfirmed, paid))

	return &model.VerifyPaymentResponse{
		Success:       true,
		Status:        paid.Status,
		PaymentStatus: paid.PaymentStatus,
		Message:       MsgPaymentConfirmed,
	}, nil
}

// reload answers from the stored state after losing a transition race.
func (s *paymentService) reload(ctx context.Context, orderNumber string) (*model.VerifyPaymentResponse, error) {
	order, err := s.load(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if resp := settled(order); resp != nil {
		return resp, nil
	}
	return &model.VerifyPaymentResponse{
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		Message:       MsgNotConfirmed,
	}, nil
}

func (s *paymentService) load(ctx context.Context, orderNumber string) (*model.Order, error) {
	order, _, err := s.Orders.GetByNumber(ctx, orderNumber)
	if err != nil {
		s.logger.Error().Err(err).Str("order_number", orderNumber).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

// settled returns the response for an order that already left pending, or nil.
func settled(order *model.Order) *model.VerifyPaymentResponse {
	switch order.PaymentStatus {
	case model.PaymentStatusPaid:
		return &model.VerifyPaymentResponse{
			Success:       true,
			Status:        order.Status,
			PaymentStatus: model.PaymentStatusPaid,
			Message:       MsgAlreadyPaid,
		}
	case model.PaymentStatusFailed:
		return &model.VerifyPaymentResponse{
			Status:        order.Status,
			PaymentStatus: model.PaymentStatusFailed,
			Message:       MsgPaymentFailed,
		}
	}
	return nil
}
