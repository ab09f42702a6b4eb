package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	handler "github.com/streamtip/donation-service/internal/adapter/handler/http"
	domainErrors "github.com/streamtip/donation-service/internal/domain/errors"
	"github.com/streamtip/donation-service/internal/domain/model"
	"github.com/streamtip/donation-service/internal/infrastructure/crypto"
	"github.com/streamtip/donation-service/internal/usecase"
	"go.uber.org/zap"
)

// MockDonationRepository is a mock implementation of DonationRepository
type MockDonationRepository struct {
	mock.Mock
}

func (m *MockDonationRepository) Create(ctx context.Context, donation *model.Donation) error {
	args := m.Called(ctx, donation)
	return args.Error(0)
}

func (m *MockDonationRepository) GetByID(ctx context.Context, id int64) (*model.Donation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Donation), args.Error(1)
}

func (m *MockDonationRepository) GetByInvoiceID(ctx context.Context, invoiceID string) (*model.Donation, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Donation), args.Error(1)
}

func (m *MockDonationRepository) ListByStreamer(ctx context.Context, streamerID int64, limit, offset int) ([]model.Donation, error) {
	args := m.Called(ctx, streamerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Donation), args.Error(1)
}

func (m *MockDonationRepository) AttachInvoice(ctx context.Context, id int64, invoiceURL, invoiceKey, invoiceID string) error {
	args := m.Called(ctx, id, invoiceURL, invoiceKey, invoiceID)
	return args.Error(0)
}

func (m *MockDonationRepository) SetStatus(ctx context.Context, id int64, status model.DonationStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockDonationRepository) TransitionByInvoiceID(ctx context.Context, invoiceID string, target model.DonationStatus) (int64, error) {
	args := m.Called(ctx, invoiceID, target)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDonationRepository) CompleteByID(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

// MockProcessedWebhookRepository is a mock implementation of ProcessedWebhookRepository
type MockProcessedWebhookRepository struct {
	mock.Mock
}

func (m *MockProcessedWebhookRepository) Seen(ctx context.Context, idempotencyKey string) (bool, error) {
	args := m.Called(ctx, idempotencyKey)
	return args.Bool(0), args.Error(1)
}

func (m *MockProcessedWebhookRepository) Record(ctx context.Context, idempotencyKey string) error {
	args := m.Called(ctx, idempotencyKey)
	return args.Error(0)
}

type webhookFixture struct {
	handler  *handler.WebhookHandler
	signer   *crypto.Signer
	repo     *MockDonationRepository
	ledger   *MockProcessedWebhookRepository
	echoInst *echo.Echo
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	logger := zap.NewNop()
	signer, err := crypto.NewSigner("webhook-secret")
	require.NoError(t, err)

	repo := new(MockDonationRepository)
	ledger := new(MockProcessedWebhookRepository)
	processor := usecase.NewWebhookProcessor(repo, ledger, signer, &usecase.LogNotifier{Logger: logger}, logger)

	return &webhookFixture{
		handler:  handler.NewWebhookHandler(processor, logger),
		signer:   signer,
		repo:     repo,
		ledger:   ledger,
		echoInst: echo.New(),
	}
}

func (f *webhookFixture) post(t *testing.T, body []byte, headers map[string]string, h echo.HandlerFunc) *httptest.ResponseRecorder {
	req := httptest.NewRequest(nethttp.MethodPost, "/api/payments/webhook/paid", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := f.echoInst.NewContext(req, rec)
	require.NoError(t, h(c))
	return rec
}

func TestWebhookHandler_PaidSuccess(t *testing.T) {
	f := newWebhookFixture(t)

	body := []byte(`{"invoice_id":777,"status":"paid","amount":50,"currency":"EGP","payload":{"donation_id":1,"streamer_id":7}}`)
	f.ledger.On("Seen", mock.Anything, "777").Return(false, nil)
	f.repo.On("TransitionByInvoiceID", mock.Anything, "777", model.DonationStatusCompleted).Return(int64(1), nil)
	f.ledger.On("Record", mock.Anything, "777").Return(nil)

	rec := f.post(t, body, map[string]string{
		"x-fawaterk-signature": f.signer.SignBytes(body),
	}, f.handler.HandlePaid)

	assert.Equal(t, nethttp.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp["status"])
	f.repo.AssertExpectations(t)
}

func TestWebhookHandler_FallbackSignatureHeader(t *testing.T) {
	f := newWebhookFixture(t)

	body := []byte(`{"invoice_id":777,"status":"paid","amount":50,"currency":"EGP"}`)
	f.ledger.On("Seen", mock.Anything, "777").Return(false, nil)
	f.repo.On("TransitionByInvoiceID", mock.Anything, "777", model.DonationStatusCompleted).Return(int64(1), nil)
	f.ledger.On("Record", mock.Anything, "777").Return(nil)

	rec := f.post(t, body, map[string]string{
		"signature": f.signer.SignBytes(body),
	}, f.handler.HandlePaid)

	assert.Equal(t, nethttp.StatusOK, rec.Code)
}

func TestWebhookHandler_InvalidSignature(t *testing.T) {
	f := newWebhookFixture(t)

	body := []byte(`{"invoice_id":777,"status":"paid","amount":50,"currency":"EGP"}`)
	rec := f.post(t, body, map[string]string{
		"x-fawaterk-signature": "deadbeef",
	}, f.handler.HandlePaid)

	assert.Equal(t, nethttp.StatusUnauthorized, rec.Code)
	f.repo.AssertNotCalled(t, "TransitionByInvoiceID", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhookHandler_MissingSignature(t *testing.T) {
	f := newWebhookFixture(t)

	body := []byte(`{"invoice_id":777,"status":"paid","amount":50,"currency":"EGP"}`)
	rec := f.post(t, body, nil, f.handler.HandlePaid)

	assert.Equal(t, nethttp.StatusUnauthorized, rec.Code)
}

func TestWebhookHandler_StructurallyInvalid(t *testing.T) {
	f := newWebhookFixture(t)

	body := []byte(`{"status":"paid","amount":50,"currency":"EGP"}`)
	rec := f.post(t, body, map[string]string{
		"x-fawaterk-signature": f.signer.SignBytes(body),
	}, f.handler.HandlePaid)

	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
}

func TestWebhookHandler_ReplayReturns200(t *testing.T) {
	f := newWebhookFixture(t)

	body := []byte(`{"invoice_id":777,"status":"paid","amount":50,"currency":"EGP"}`)
	f.ledger.On("Seen", mock.Anything, "777").Return(true, nil)

	rec := f.post(t, body, map[string]string{
		"x-fawaterk-signature": f.signer.SignBytes(body),
	}, f.handler.HandlePaid)

	assert.Equal(t, nethttp.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Already processed", resp["message"])
	f.repo.AssertNotCalled(t, "TransitionByInvoiceID", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhookHandler_UnknownInvoiceReturns200(t *testing.T) {
	f := newWebhookFixture(t)

	body := []byte(`{"invoice_id":999,"status":"paid","amount":50,"currency":"EGP"}`)
	f.ledger.On("Seen", mock.Anything, "999").Return(false, nil)
	f.repo.On("TransitionByInvoiceID", mock.Anything, "999", model.DonationStatusCompleted).Return(int64(0), nil)
	f.repo.On("GetByInvoiceID", mock.Anything, "999").Return(nil, domainErrors.NewNotFoundError("donation", "999"))

	rec := f.post(t, body, map[string]string{
		"x-fawaterk-signature": f.signer.SignBytes(body),
	}, f.handler.HandlePaid)

	assert.Equal(t, nethttp.StatusOK, rec.Code)
}

func TestWebhookHandler_PersistenceFailureReturns500(t *testing.T) {
	f := newWebhookFixture(t)

	body := []byte(`{"invoice_id":777,"status":"paid","amount":50,"currency":"EGP"}`)
	f.ledger.On("Seen", mock.Anything, "777").Return(false, nil)
	f.repo.On("TransitionByInvoiceID", mock.Anything, "777", model.DonationStatusCompleted).Return(int64(0), domainErrors.NewPersistenceError("transition donation", assert.AnError))

	rec := f.post(t, body, map[string]string{
		"x-fawaterk-signature": f.signer.SignBytes(body),
	}, f.handler.HandlePaid)

	assert.Equal(t, nethttp.StatusInternalServerError, rec.Code)
}

func TestWebhookHandler_FailedEndpoint(t *testing.T) {
	f := newWebhookFixture(t)

	body := []byte(`{"invoice_id":777,"status":"failed"}`)
	f.ledger.On("Seen", mock.Anything, "777").Return(false, nil)
	f.repo.On("TransitionByInvoiceID", mock.Anything, "777", model.DonationStatusFailed).Return(int64(1), nil)
	f.ledger.On("Record", mock.Anything, "777").Return(nil)

	rec := f.post(t, body, map[string]string{
		"x-fawaterk-signature": f.signer.SignBytes(body),
	}, f.handler.HandleFailed)

	assert.Equal(t, nethttp.StatusOK, rec.Code)
	f.repo.AssertExpectations(t)
}
