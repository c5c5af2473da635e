package service

import (
	"context"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// customerService implements CustomerService.
type customerService struct {
	customerRepo repository.CustomerRepository
	logger       zerolog.Logger
}

// NewCustomerService creates a new customer service.
func NewCustomerService(customerRepo repository.CustomerRepository, logger zerolog.Logger) CustomerService {
	return &customerService{
		customerRepo: customerRepo,
		logger:       logger.With().Str("service", "customer").Logger(),
	}
}

// UpsertFromOrder keeps one customer per email. Checkout never fails because of it.
func (s *customerService) UpsertFromOrder(ctx context.Context, order *model.Order) {
	addr := order.ShippingAddress
	customer, err := s.customerRepo.Upsert(ctx, model.CustomerUpsert{
		Email:     order.Email,
		Phone:     order.Phone,
		FullName:  addr.FullName(),
		FirstName: addr.FirstName,
		LastName:  addr.LastName,
		UserID:    order.UserID,
		Address:   addr,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("order_number", order.OrderNumber).Msg("failed to upsert customer")
		return
	}

	s.logger.Debug().
		Str("customer_id", customer.ID.String()).
		Str("order_number", order.OrderNumber).
		Msg("customer upserted")
}

func (s *customerService) RecordPaidOrder(ctx context.Context, email string, total decimal.Decimal) {
	if err := s.customerRepo.RecordPaidOrder(ctx, email, total); err != nil {
		s.logger.Warn().Err(err).Str("email", email).Msg("failed to update customer statistics")
	}
}
