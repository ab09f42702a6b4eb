package http_test

import (
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
	"go.uber.org/zap"
)

func callbackRequest(t *testing.T, donationID string, h echo.HandlerFunc) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(nethttp.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("donationId")
	c.SetParamValues(donationID)
	require.NoError(t, h(c))
	return rec
}

func TestCallbackHandler_Success(t *testing.T) {
	repo := new(MockDonationRepository)
	h := handler.NewCallbackHandler(repo, zap.NewNop())

	repo.On("SetStatus", mock.Anything, int64(42), model.DonationStatusCompleted).Return(nil)

	rec := callbackRequest(t, "42", h.HandleSuccess)
	assert.Equal(t, nethttp.StatusFound, rec.Code)
	assert.Equal(t, "/payments/success?donation=42", rec.Header().Get("Location"))
	repo.AssertExpectations(t)
}

func TestCallbackHandler_Failed(t *testing.T) {
	repo := new(MockDonationRepository)
	h := handler.NewCallbackHandler(repo, zap.NewNop())

	repo.On("SetStatus", mock.Anything, int64(42), model.DonationStatusFailed).Return(nil)

	rec := callbackRequest(t, "42", h.HandleFailed)
	assert.Equal(t, nethttp.StatusFound, rec.Code)
	assert.Equal(t, "/payments/failed?donation=42", rec.Header().Get("Location"))
}

func TestCallbackHandler_Pending(t *testing.T) {
	repo := new(MockDonationRepository)
	h := handler.NewCallbackHandler(repo, zap.NewNop())

	repo.On("SetStatus", mock.Anything, int64(42), model.DonationStatusPending).Return(nil)

	rec := callbackRequest(t, "42", h.HandlePending)
	assert.Equal(t, nethttp.StatusFound, rec.Code)
	assert.Equal(t, "/payments/pending?donation=42", rec.Header().Get("Location"))
}

func TestCallbackHandler_BadDonationID(t *testing.T) {
	repo := new(MockDonationRepository)
	h := handler.NewCallbackHandler(repo, zap.NewNop())

	rec := callbackRequest(t, "not-a-number", h.HandleSuccess)
	assert.Equal(t, nethttp.StatusFound, rec.Code)
	assert.Equal(t, "/payments/error.html", rec.Header().Get("Location"))
	repo.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestCallbackHandler_PersistenceFailure(t *testing.T) {
	repo := new(MockDonationRepository)
	h := handler.NewCallbackHandler(repo, zap.NewNop())

	repo.On("SetStatus", mock.Anything, int64(42), model.DonationStatusCompleted).
		Return(domainErrors.NewPersistenceError("set status", assert.AnError))

	rec := callbackRequest(t, "42", h.HandleSuccess)
	assert.Equal(t, nethttp.StatusFound, rec.Code)
	assert.Equal(t, "/payments/error.html", rec.Header().Get("Location"))
}
