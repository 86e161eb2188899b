package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phillip/event-registration-go/payments"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *CinetPay {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewCinetPay(Config{
		APIKey:    "key",
		SiteID:    "site",
		BaseURL:   srv.URL + "/",
		NotifyURL: "https://backend.example.com/api/payment/notify",
		Timeout:   2 * time.Second,
	}, nil)
}

func TestCreateCheckout(t *testing.T) {
	var got paymentRequest
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payment", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"code":"201","message":"CREATED","data":{"payment_token":"tok","payment_url":"https://pay.example.com/tok"}}`))
	})

	session, err := gw.CreateCheckout(context.Background(), payments.CheckoutRequest{
		TransactionID: "SIFIA-INST-1",
		Amount:        500000,
		Currency:      "FCFA",
		Description:   "SIFIA 2025 - Exhibitor - Gold",
		Customer:      payments.Customer{ID: "r1", Name: "Awa", Phone: "22501020304"},
		ReturnURL:     "https://front.example.com/payment-success",
		CancelURL:     "https://front.example.com/payment-failure",
		Language:      "fr",
		Metadata:      payments.CheckoutMetadata{RegistrationID: "r1", InstallmentID: "i1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/tok", session.PaymentURL)
	assert.Equal(t, "tok", session.PaymentToken)

	assert.Equal(t, "key", got.APIKey)
	assert.Equal(t, "site", got.SiteID)
	assert.Equal(t, "ALL", got.Channels)
	assert.Equal(t, "https://backend.example.com/api/payment/notify", got.NotifyURL)
	assert.JSONEq(t, `{"registration_id":"r1","installment_id":"i1","is_installment":false}`, got.Metadata)
}

func TestCreateCheckoutRejected(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"608","message":"MINIMUM_REQUIRED_FIELDS"}`))
	})

	_, err := gw.CreateCheckout(context.Background(), payments.CheckoutRequest{TransactionID: "t"})
	var perr *payments.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, payments.KindGateway, perr.Kind)
	assert.Equal(t, "payment gateway rejected the checkout", perr.Message)
	assert.NotContains(t, perr.Message, "MINIMUM_REQUIRED_FIELDS")
	require.Error(t, perr.Err)
	assert.Contains(t, perr.Err.Error(), "608")
	assert.Contains(t, perr.Err.Error(), "MINIMUM_REQUIRED_FIELDS")
}

func TestVerifyTransaction(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payment/check", r.URL.Path)
		var body checkRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "SIFIA-INST-1", body.TransactionID)
		_, _ = w.Write([]byte(`{"code":"00","message":"SUCCES","data":{"status":"ACCEPTED","payment_method":"OM","amount":"500000"}}`))
	})

	v, err := gw.VerifyTransaction(context.Background(), "SIFIA-INST-1")
	require.NoError(t, err)
	assert.Equal(t, payments.StatusAccepted, v.Status)
	assert.Equal(t, "OM", v.PaymentMethod)
	assert.Equal(t, int64(500000), v.Amount)
}

func TestVerifyTransactionFailures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
		"no status": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"code":"627","message":"TRANSACTION_CANCEL"}`))
		},
		"not json": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			gw := newTestGateway(t, handler)
			_, err := gw.VerifyTransaction(context.Background(), "t")
			var perr *payments.Error
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, payments.KindGateway, perr.Kind)
			assert.NotContains(t, perr.Message, "TRANSACTION_CANCEL")
		})
	}
}

func TestVerifyTransactionTimeout(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := gw.VerifyTransaction(ctx, "t")
	require.Error(t, err)
	assert.True(t, payments.IsKind(err, payments.KindGateway))
}
