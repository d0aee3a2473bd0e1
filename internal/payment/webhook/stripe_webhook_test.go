package webhook

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cozycorner-be/internal/order"
	"cozycorner-be/internal/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Checkout(ctx context.Context, userID uint, input order.CreateOrderInput) (*order.Order, error) {
	args := m.Called(ctx, userID, input)
	if o := args.Get(0); o != nil {
		return o.(*order.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, userID, orderID uint, isAdmin bool) (*order.Order, error) {
	args := m.Called(ctx, userID, orderID, isAdmin)
	if o := args.Get(0); o != nil {
		return o.(*order.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) ListMyOrders(ctx context.Context, userID uint) ([]order.Order, error) {
	args := m.Called(ctx, userID)
	if o := args.Get(0); o != nil {
		return o.([]order.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) ListAllOrders(ctx context.Context) ([]order.Order, error) {
	args := m.Called(ctx)
	if o := args.Get(0); o != nil {
		return o.([]order.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, orderID uint, status order.Status) (*order.Order, error) {
	args := m.Called(ctx, orderID, status)
	if o := args.Get(0); o != nil {
		return o.(*order.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) CancelOwn(ctx context.Context, userID, orderID uint) (*order.Order, error) {
	args := m.Called(ctx, userID, orderID)
	if o := args.Get(0); o != nil {
		return o.(*order.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) ApplyPaymentSucceeded(ctx context.Context, paymentID string) error {
	args := m.Called(ctx, paymentID)
	return args.Error(0)
}

func (m *MockOrderService) ApplyPaymentFailed(ctx context.Context, paymentID string) error {
	args := m.Called(ctx, paymentID)
	return args.Error(0)
}

func (m *MockOrderService) Stats(ctx context.Context) (*order.StatsSummary, error) {
	args := m.Called(ctx)
	if s := args.Get(0); s != nil {
		return s.(*order.StatsSummary), args.Error(1)
	}
	return nil, args.Error(1)
}

// stubGateway only implements signature verification; intent calls are unused
// by the webhook path.
type stubGateway struct {
	verifyErr error
}

func (g *stubGateway) CreateIntent(ctx context.Context, amount float64, currency, description string) (*payment.Intent, error) {
	return nil, errors.New("not implemented")
}

func (g *stubGateway) RetrieveIntent(ctx context.Context, intentID string) (*payment.Intent, error) {
	return nil, errors.New("not implemented")
}

func (g *stubGateway) VerifyWebhookSignature(payload []byte, sigHeader string) error {
	return g.verifyErr
}

func postWebhook(h *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/payments/webhook", bytes.NewBufferString(body))
	req.Header.Set("Stripe-Signature", "t=1,v1=sig")
	rec := httptest.NewRecorder()
	h.Webhook(rec, req)
	return rec
}

func TestWebhook_Succeeded(t *testing.T) {
	svc := new(MockOrderService)
	svc.On("ApplyPaymentSucceeded", mock.Anything, "pi_123").Return(nil)

	h := NewHandler(svc, &stubGateway{})
	rec := postWebhook(h, `{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_123"}}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "received")
	svc.AssertExpectations(t)
}

func TestWebhook_Failed(t *testing.T) {
	svc := new(MockOrderService)
	svc.On("ApplyPaymentFailed", mock.Anything, "pi_123").Return(nil)

	h := NewHandler(svc, &stubGateway{})
	rec := postWebhook(h, `{"id":"evt_2","type":"payment_intent.payment_failed","data":{"object":{"id":"pi_123"}}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestWebhook_InvalidSignature(t *testing.T) {
	svc := new(MockOrderService)

	h := NewHandler(svc, &stubGateway{verifyErr: payment.ErrInvalidSignature})
	rec := postWebhook(h, `{"id":"evt_3","type":"payment_intent.succeeded","data":{"object":{"id":"pi_123"}}}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	svc.AssertNotCalled(t, "ApplyPaymentSucceeded", mock.Anything, mock.Anything)
}

func TestWebhook_UnknownEventTypeAcked(t *testing.T) {
	svc := new(MockOrderService)

	h := NewHandler(svc, &stubGateway{})
	rec := postWebhook(h, `{"id":"evt_4","type":"charge.refunded","data":{"object":{"id":"ch_1"}}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertNotCalled(t, "ApplyPaymentSucceeded", mock.Anything, mock.Anything)
	svc.AssertNotCalled(t, "ApplyPaymentFailed", mock.Anything, mock.Anything)
}

func TestWebhook_UnknownIntentAcked(t *testing.T) {
	svc := new(MockOrderService)
	svc.On("ApplyPaymentSucceeded", mock.Anything, "pi_nope").Return(order.ErrOrderNotFound)

	h := NewHandler(svc, &stubGateway{})
	rec := postWebhook(h, `{"id":"evt_5","type":"payment_intent.succeeded","data":{"object":{"id":"pi_nope"}}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestWebhook_ServiceError(t *testing.T) {
	svc := new(MockOrderService)
	svc.On("ApplyPaymentSucceeded", mock.Anything, "pi_123").Return(errors.New("db down"))

	h := NewHandler(svc, &stubGateway{})
	rec := postWebhook(h, `{"id":"evt_6","type":"payment_intent.succeeded","data":{"object":{"id":"pi_123"}}}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWebhook_InvalidJSON(t *testing.T) {
	h := NewHandler(new(MockOrderService), &stubGateway{})
	rec := postWebhook(h, `{not-json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
