package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripe_Initialize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseForm())

		assert.Equal(t, "payment", r.PostForm.Get("mode"))
		assert.Equal(t, "10000", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
		assert.Equal(t, "ghs", r.PostForm.Get("line_items[0][price_data][currency]"))
		assert.Equal(t, "ORD-1718000000123-7", r.PostForm.Get("client_reference_id"))
		assert.True(t, strings.HasSuffix(r.PostForm.Get("success_url"), "&reference={CHECKOUT_SESSION_ID}"))
		assert.Contains(t, r.PostForm.Get("cancel_url"), "payment_cancelled=true")

		_, _ = w.Write([]byte(`{"id":"cs_test_1","url":"https://checkout.stripe.com/c/pay/cs_test_1","status":"open","payment_status":"unpaid"}`))
	}))
	defer srv.Close()

	gw := NewStripe(StripeConfig{SecretKey: "sk_test", BaseURL: srv.URL}, srv.Client(), zerolog.Nop())
	res, err := gw.Initialize(context.Background(), testInitRequest())

	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", res.URL)
	assert.Equal(t, "cs_test_1", res.Reference)
}

func TestStripe_Initialize_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid currency: ghs","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	gw := NewStripe(StripeConfig{SecretKey: "sk_test", BaseURL: srv.URL}, srv.Client(), zerolog.Nop())
	_, err := gw.Initialize(context.Background(), testInitRequest())

	require.Error(t, err)
	assert.Equal(t, "Invalid currency: ghs", err.Error())
}

func TestStripe_Verify(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus Status
	}{
		{"paid", `{"id":"cs_1","status":"complete","payment_status":"paid","amount_total":10000}`, StatusConfirmed},
		{"open", `{"id":"cs_1","status":"open","payment_status":"unpaid"}`, StatusPending},
		{"expired", `{"id":"cs_1","status":"expired","payment_status":"unpaid"}`, StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/v1/checkout/sessions/cs_1", r.URL.Path)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			gw := NewStripe(StripeConfig{SecretKey: "sk_test", BaseURL: srv.URL}, srv.Client(), zerolog.Nop())
			v, err := gw.Verify(context.Background(), "cs_1")

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, v.Status)
			assert.Equal(t, "cs_1", v.Reference)
		})
	}
}

func TestStripe_Verify_ReadsOrderReference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"cs_1","status":"complete","payment_status":"paid","amount_total":4550,"currency":"ghs","client_reference_id":"ORD-1718000000123-7"}`))
	}))
	defer srv.Close()

	gw := NewStripe(StripeConfig{SecretKey: "sk_test", BaseURL: srv.URL}, srv.Client(), zerolog.Nop())
	v, err := gw.Verify(context.Background(), "cs_1")

	require.NoError(t, err)
	assert.Equal(t, "ORD-1718000000123-7", v.OrderReference)
	assert.Equal(t, "GHS", v.Currency)
	assert.Equal(t, "45.5", v.Amount.String())
}
