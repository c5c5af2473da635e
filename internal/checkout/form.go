// Package checkout validates the checkout wizard and generates order references.
package checkout

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"storefront/internal/model"

	"github.com/go-playground/validator/v10"
)

// Step is a page of the linear checkout wizard.
type Step string

const (
	StepShipping   Step = "shipping"
	StepDelivery   Step = "delivery"
	StepPayment    Step = "payment"
	StepPlaceOrder Step = "place_order"
)

// Regions offered by the shipping form.
var Regions = []string{
	"Greater Accra",
	"Ashanti",
	"Western",
	"Central",
	"Eastern",
	"Northern",
	"Volta",
	"Upper East",
	"Upper West",
	"Brong-Ahafo",
	"Ahafo",
	"Bono",
	"Bono East",
	"North East",
	"Savannah",
	"Oti",
	"Western North",
}

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

var fieldLabels = map[string]string{
	"firstName": "First name",
	"lastName":  "Last name",
	"email":     "Email",
	"phone":     "Phone",
	"address":   "Address",
	"city":      "City",
	"region":    "Region",
}

// Form is the state collected across the wizard.
type Form struct {
	Shipping       model.ShippingDetails `json:"shipping"`
	DeliveryMethod model.DeliveryMethod  `json:"deliveryMethod"`
	PaymentMethod  model.PaymentMethod   `json:"paymentMethod"`
}

// Validator checks checkout forms. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// NewValidator registers the checkout-specific rules.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	allowed := make(map[string]struct{}, len(Regions))
	for _, r := range Regions {
		allowed[r] = struct{}{}
	}
	_ = v.RegisterValidation("region", func(fl validator.FieldLevel) bool {
		_, ok := allowed[fl.Field().String()]
		return ok
	})
	_ = v.RegisterValidation("looseemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})

	return &Validator{validate: v}
}

// NormalizeShipping trims surrounding whitespace from every field.
func NormalizeShipping(s model.ShippingDetails) model.ShippingDetails {
	return model.ShippingDetails{
		FirstName: strings.TrimSpace(s.FirstName),
		LastName:  strings.TrimSpace(s.LastName),
		Email:     strings.TrimSpace(s.Email),
		Phone:     strings.TrimSpace(s.Phone),
		Address:   strings.TrimSpace(s.Address),
		City:      strings.TrimSpace(s.City),
		Region:    strings.TrimSpace(s.Region),
	}
}

// ValidateShipping returns field -> message for every invalid shipping field.
func (v *Validator) ValidateShipping(s model.ShippingDetails) map[string]string {
	fields := make(map[string]string)

	err := v.validate.Struct(s)
	if err == nil {
		return fields
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields["shipping"] = err.Error()
		return fields
	}

	for _, fe := range verrs {
		name := fe.Field()
		if _, seen := fields[name]; seen {
			continue
		}
		switch fe.Tag() {
		case "required":
			fields[name] = fieldLabels[name] + " is required"
		case "looseemail":
			fields[name] = "Invalid email"
		case "region":
			fields[name] = "Invalid region"
		default:
			fields[name] = "Invalid " + strings.ToLower(fieldLabels[name])
		}
	}
	return fields
}

// Validate checks the whole form and returns a *model.ValidationError on failure.
func (v *Validator) Validate(form Form) error {
	fields := v.ValidateShipping(form.Shipping)
	if !form.DeliveryMethod.Valid() {
		fields["deliveryMethod"] = "Invalid delivery method"
	}
	if !form.PaymentMethod.Valid() {
		fields["paymentMethod"] = "Invalid payment method"
	}
	if len(fields) > 0 {
		return &model.ValidationError{Fields: fields}
	}
	return nil
}

// Advance validates the fields owned by the current step and returns the next step.
func (v *Validator) Advance(step Step, form Form) (Step, error) {
	fields := map[string]string{}

	switch step {
	case StepShipping:
		fields = v.ValidateShipping(form.Shipping)
		if len(fields) == 0 {
			return StepDelivery, nil
		}
	case StepDelivery:
		if form.DeliveryMethod.Valid() {
			return StepPayment, nil
		}
		fields["deliveryMethod"] = "Invalid delivery method"
	case StepPayment:
		if err := v.Validate(form); err != nil {
			return StepPayment, err
		}
		return StepPlaceOrder, nil
	default:
		fields["step"] = "Unknown checkout step"
	}

	return step, &model.ValidationError{Fields: fields}
}
