package checkout

import (
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validShipping() model.ShippingDetails {
	return model.ShippingDetails{
		FirstName: "Ama",
		LastName:  "Mensah",
		Email:     "ama@example.com",
		Phone:     "0241234567",
		Address:   "12 Ring Road",
		City:      "Accra",
		Region:    "Greater Accra",
	}
}

func TestValidator_ValidateShipping(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name     string
		mutate   func(s *model.ShippingDetails)
		expected map[string]string
	}{
		{
			name:     "valid",
			mutate:   func(s *model.ShippingDetails) {},
			expected: map[string]string{},
		},
		{
			name: "missing names",
			mutate: func(s *model.ShippingDetails) {
				s.FirstName = ""
				s.LastName = ""
			},
			expected: map[string]string{
				"firstName": "First name is required",
				"lastName":  "Last name is required",
			},
		},
		{
			name:     "missing email",
			mutate:   func(s *model.ShippingDetails) { s.Email = "" },
			expected: map[string]string{"email": "Email is required"},
		},
		{
			name:     "malformed email",
			mutate:   func(s *model.ShippingDetails) { s.Email = "ama@example" },
			expected: map[string]string{"email": "Invalid email"},
		},
		{
			name:     "unknown region",
			mutate:   func(s *model.ShippingDetails) { s.Region = "Lagos" },
			expected: map[string]string{"region": "Invalid region"},
		},
		{
			name: "missing contact and destination",
			mutate: func(s *model.ShippingDetails) {
				s.Phone = ""
				s.Address = ""
				s.City = ""
				s.Region = ""
			},
			expected: map[string]string{
				"phone":   "Phone is required",
				"address": "Address is required",
				"city":    "City is required",
				"region":  "Region is required",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validShipping()
			tt.mutate(&s)
			assert.Equal(t, tt.expected, v.ValidateShipping(s))
		})
	}
}

func TestValidator_AllRegionsAccepted(t *testing.T) {
	v := NewValidator()
	for _, region := range Regions {
		s := validShipping()
		s.Region = region
		assert.Empty(t, v.ValidateShipping(s), region)
	}
}

func TestValidator_Validate(t *testing.T) {
	v := NewValidator()

	err := v.Validate(Form{
		Shipping:       validShipping(),
		DeliveryMethod: model.DeliveryDoorstep,
		PaymentMethod:  model.PaymentPaystack,
	})
	require.NoError(t, err)

	err = v.Validate(Form{
		Shipping:       validShipping(),
		DeliveryMethod: "drone",
		PaymentMethod:  "barter",
	})
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Invalid delivery method", verr.Fields["deliveryMethod"])
	assert.Equal(t, "Invalid payment method", verr.Fields["paymentMethod"])
}

func TestValidator_Advance(t *testing.T) {
	v := NewValidator()
	form := Form{Shipping: validShipping()}

	next, err := v.Advance(StepShipping, form)
	require.NoError(t, err)
	assert.Equal(t, StepDelivery, next)

	next, err = v.Advance(StepDelivery, form)
	require.Error(t, err)
	assert.Equal(t, StepDelivery, next)

	form.DeliveryMethod = model.DeliveryPickup
	next, err = v.Advance(StepDelivery, form)
	require.NoError(t, err)
	assert.Equal(t, StepPayment, next)

	form.PaymentMethod = model.PaymentCash
	next, err = v.Advance(StepPayment, form)
	require.NoError(t, err)
	assert.Equal(t, StepPlaceOrder, next)

	bad := Form{Shipping: model.ShippingDetails{}}
	next, err = v.Advance(StepShipping, bad)
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, StepShipping, next)
	assert.Len(t, verr.Fields, 7)

	_, err = v.Advance("review", form)
	assert.Error(t, err)
}

func TestNormalizeShipping(t *testing.T) {
	s := NormalizeShipping(model.ShippingDetails{FirstName: "  Ama ", Region: " Volta"})
	assert.Equal(t, "Ama", s.FirstName)
	assert.Equal(t, "Volta", s.Region)
}

func TestNumberGenerator_Formats(t *testing.T) {
	g := NewNumberGenerator()

	assert.Regexp(t, regexp.MustCompile(`^ORD-\d{13}-\d{1,3}$`), g.OrderNumber())

	tracking := g.TrackingNumber()
	assert.Regexp(t, regexp.MustCompile(`^SLI-[A-HJ-NP-Z2-9]{6}$`), tracking)
	assert.False(t, strings.ContainsAny(tracking[4:], "01IO"))
}

func TestNumberGenerator_Deterministic(t *testing.T) {
	fixed := time.UnixMilli(1718000000123)
	seq := []int{7, 0, 31, 1, 2, 3, 4}
	i := 0
	g := &NumberGenerator{
		now: func() time.Time { return fixed },
		intN: func(n int) int {
			v := seq[i%len(seq)] % n
			i++
			return v
		},
	}

	assert.Equal(t, "ORD-1718000000123-7", g.OrderNumber())
	assert.Equal(t, "SLI-A9BCDE", g.TrackingNumber())
}

func TestNumberGenerator_SameMillisecondDiffers(t *testing.T) {
	fixed := time.UnixMilli(1718000000123)
	suffix := 0
	g := &NumberGenerator{
		now: func() time.Time { return fixed },
		intN: func(n int) int {
			suffix++
			return suffix % n
		},
	}

	assert.NotEqual(t, g.OrderNumber(), g.OrderNumber())
}

func TestFriendlyMessage(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"Email rate limit exceeded", "Our system is experiencing high demand. Please wait a few minutes and try again, or contact us for help."},
		{"User already registered", "An account with this email already exists. Try signing in instead."},
		{"Password is too weak", "Your password is too weak. Please use at least 8 characters with a mix of letters, numbers, and symbols."},
		{"dial tcp: lookup api.paystack.co: no such host", "Connection error. Please check your internet and try again."},
		{"card declined", "card declined"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, FriendlyMessage(tt.in))
		})
	}
}
