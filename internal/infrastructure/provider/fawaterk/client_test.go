package fawaterk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainErrors "github.com/streamtip/donation-service/internal/domain/errors"
	"go.uber.org/zap"
)

func invoiceRequest() *InvoiceRequest {
	return &InvoiceRequest{
		CartItems: []CartItem{{
			Name:     "Donation",
			Price:    decimal.NewFromInt(50),
			Quantity: 1,
		}},
		CartTotal: decimal.NewFromInt(50),
		Customer: Customer{
			FirstName: "Ahmed",
			LastName:  "Donor",
			Email:     "streamer@donations.com",
			Phone:     "01000000000",
		},
		Currency:        "EGP",
		PaymentMethodID: 3,
	}
}

func TestCreateInvoice_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/createInvoiceLink", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Write([]byte(`{"status":"success","data":{"url":"https://pay.example/x","invoiceKey":"key-123","invoiceId":777}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", zap.NewNop())
	invoice, err := client.CreateInvoice(context.Background(), invoiceRequest())
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/x", invoice.URL)
	assert.Equal(t, "key-123", invoice.InvoiceKey)
	assert.Equal(t, int64(777), invoice.InvoiceID)
}

func TestCreateInvoice_PartialSuccessIsFailure(t *testing.T) {
	// Gateway reports success but omits invoiceKey
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":{"url":"https://pay.example/x","invoiceId":777}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", zap.NewNop())
	invoice, err := client.CreateInvoice(context.Background(), invoiceRequest())
	assert.Nil(t, invoice)
	require.Error(t, err)

	var gatewayErr *domainErrors.GatewayError
	require.ErrorAs(t, err, &gatewayErr)
	assert.Equal(t, "PARTIAL_RESPONSE", gatewayErr.Code)
}

func TestCreateInvoice_GatewayFailureStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"failed","message":"invalid payment method"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", zap.NewNop())
	_, err := client.CreateInvoice(context.Background(), invoiceRequest())
	require.Error(t, err)

	var gatewayErr *domainErrors.GatewayError
	require.ErrorAs(t, err, &gatewayErr)
	assert.Equal(t, "invalid payment method", gatewayErr.Message)
}

func TestCreateInvoice_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"code":"UPSTREAM_DOWN","message":"try later"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", zap.NewNop())
	_, err := client.CreateInvoice(context.Background(), invoiceRequest())
	require.Error(t, err)

	var gatewayErr *domainErrors.GatewayError
	require.ErrorAs(t, err, &gatewayErr)
	assert.Equal(t, "UPSTREAM_DOWN", gatewayErr.Code)
}

func TestListPaymentMethods(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/getPaymentmethods", r.URL.Path)
		w.Write([]byte(`{"status":"success","data":[
			{"paymentId":2,"name_en":"Credit Card","redirect":"true"},
			{"paymentId":3,"name_en":"Vodafone Cash","redirect":"false"}
		]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", zap.NewNop())
	methods, err := client.ListPaymentMethods(context.Background())
	require.NoError(t, err)
	require.Len(t, methods, 2)

	assert.False(t, methods[0].RequiresWallet())
	assert.True(t, methods[0].RequiresRedirect())
	assert.True(t, methods[1].RequiresWallet())
	assert.False(t, methods[1].RequiresRedirect())
}
