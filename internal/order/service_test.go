package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"cozycorner-be/internal/menu"
	"cozycorner-be/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, o *Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uint) (*Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) GetByPaymentID(ctx context.Context, paymentID string) (*Order, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID uint) ([]Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Order), args.Error(1)
}

func (m *MockRepository) ListAll(ctx context.Context) ([]Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Order), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, id uint, status Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockRepository) AttachPaymentIntent(ctx context.Context, orderID uint, intentID string) error {
	args := m.Called(ctx, orderID, intentID)
	return args.Error(0)
}

func (m *MockRepository) ApplyPaymentResult(ctx context.Context, paymentID string, paymentStatus PaymentStatus, status Status) (*Order, bool, error) {
	args := m.Called(ctx, paymentID, paymentStatus, status)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*Order), args.Bool(1), args.Error(2)
}

func (m *MockRepository) CancelPending(ctx context.Context, orderID, userID uint) (*Order, error) {
	args := m.Called(ctx, orderID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) StatsSummary(ctx context.Context) (*StatsSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*StatsSummary), args.Error(1)
}

func (m *MockRepository) Recent(ctx context.Context, limit int) ([]Order, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Order), args.Error(1)
}

func (m *MockRepository) DailyRevenue(ctx context.Context, since time.Time) ([]RevenuePoint, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]RevenuePoint), args.Error(1)
}

type mockMenuRepo struct {
	mock.Mock
}

func (m *mockMenuRepo) List(ctx context.Context, filter *menu.ListFilter) ([]menu.MenuItem, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]menu.MenuItem), args.Error(1)
}

func (m *mockMenuRepo) Search(ctx context.Context, query string) ([]menu.MenuItem, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]menu.MenuItem), args.Error(1)
}

func (m *mockMenuRepo) Featured(ctx context.Context) ([]menu.MenuItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]menu.MenuItem), args.Error(1)
}

func (m *mockMenuRepo) GetByID(ctx context.Context, id uint) (*menu.MenuItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*menu.MenuItem), args.Error(1)
}

func (m *mockMenuRepo) Create(ctx context.Context, item *menu.MenuItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *mockMenuRepo) Update(ctx context.Context, item *menu.MenuItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *mockMenuRepo) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockMenuRepo) CountAvailable(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type recordingNotifier struct {
	events []notify.Event
	err    error
}

func (r *recordingNotifier) Publish(ctx context.Context, event notify.Event) error {
	r.events = append(r.events, event)
	return r.err
}

// --- Checkout ---

func TestCheckout_TotalWithDeliveryFee(t *testing.T) {
	repo := new(MockRepository)
	menuRepo := new(mockMenuRepo)
	notifier := &recordingNotifier{}
	svc := NewService(repo, menuRepo, notifier)
	ctx := context.Background()

	menuRepo.On("GetByID", ctx, uint(1)).
		Return(&menu.MenuItem{ID: 1, Name: "Burger", Price: 10.00, Available: true}, nil)
	menuRepo.On("GetByID", ctx, uint(2)).
		Return(&menu.MenuItem{ID: 2, Name: "Fries", Price: 5.00, Available: true}, nil)

	repo.On("Create", ctx, mock.AnythingOfType("*order.Order")).Return(nil).Once()

	o, err := svc.Checkout(ctx, 7, CreateOrderInput{
		Items: []CreateItemInput{
			{MenuItemID: 1, Quantity: 2},
			{MenuItemID: 2, Quantity: 1},
		},
		OrderType:       TypeDelivery,
		DeliveryAddress: &DeliveryAddress{Street: "1 Main St", City: "Springfield"},
	})

	require.NoError(t, err)
	// 2×10.00 + 1×5.00 + 5.00 delivery fee
	assert.Equal(t, 30.00, o.TotalAmount)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, PaymentPending, o.PaymentStatus)
	assert.Len(t, o.Items, 2)
	// Price was copied from the catalog at order time.
	assert.Equal(t, 10.00, o.Items[0].Price)

	// Confirmation notification was published.
	require.Len(t, notifier.events, 1)
	assert.Equal(t, notify.EventOrderConfirmation, notifier.events[0].Type)

	repo.AssertExpectations(t)
}

func TestCheckout_PickupSkipsDeliveryFee(t *testing.T) {
	repo := new(MockRepository)
	menuRepo := new(mockMenuRepo)
	svc := NewService(repo, menuRepo, nil)
	ctx := context.Background()

	menuRepo.On("GetByID", ctx, uint(1)).
		Return(&menu.MenuItem{ID: 1, Name: "Latte", Price: 4.25, Available: true}, nil)
	repo.On("Create", ctx, mock.Anything).Return(nil).Once()

	o, err := svc.Checkout(ctx, 7, CreateOrderInput{
		Items:     []CreateItemInput{{MenuItemID: 1, Quantity: 2}},
		OrderType: TypePickup,
	})

	require.NoError(t, err)
	assert.Equal(t, 8.50, o.TotalAmount)
}

func TestCheckout_UnavailableItemPersistsNothing(t *testing.T) {
	repo := new(MockRepository)
	menuRepo := new(mockMenuRepo)
	svc := NewService(repo, menuRepo, nil)
	ctx := context.Background()

	menuRepo.On("GetByID", ctx, uint(1)).
		Return(&menu.MenuItem{ID: 1, Name: "Soup", Price: 6.00, Available: true}, nil)
	menuRepo.On("GetByID", ctx, uint(9)).
		Return(&menu.MenuItem{ID: 9, Name: "Off menu", Price: 3.00, Available: false}, nil)

	_, err := svc.Checkout(ctx, 7, CreateOrderInput{
		Items: []CreateItemInput{
			{MenuItemID: 1, Quantity: 1},
			{MenuItemID: 9, Quantity: 1},
		},
		OrderType: TypePickup,
	})

	assert.ErrorIs(t, err, ErrItemUnavailable)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCheckout_MissingItemPersistsNothing(t *testing.T) {
	repo := new(MockRepository)
	menuRepo := new(mockMenuRepo)
	svc := NewService(repo, menuRepo, nil)
	ctx := context.Background()

	menuRepo.On("GetByID", ctx, uint(404)).Return(nil, menu.ErrMenuItemNotFound)

	_, err := svc.Checkout(ctx, 7, CreateOrderInput{
		Items:     []CreateItemInput{{MenuItemID: 404, Quantity: 1}},
		OrderType: TypePickup,
	})

	assert.ErrorIs(t, err, ErrItemUnavailable)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCheckout_Validation(t *testing.T) {
	svc := NewService(new(MockRepository), new(mockMenuRepo), nil)
	ctx := context.Background()

	_, err := svc.Checkout(ctx, 7, CreateOrderInput{OrderType: TypePickup})
	assert.ErrorIs(t, err, ErrEmptyOrder)

	_, err = svc.Checkout(ctx, 7, CreateOrderInput{
		Items:     []CreateItemInput{{MenuItemID: 1, Quantity: 0}},
		OrderType: TypePickup,
	})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.Checkout(ctx, 7, CreateOrderInput{
		Items:     []CreateItemInput{{MenuItemID: 1, Quantity: 1}},
		OrderType: "dine-in",
	})
	assert.ErrorIs(t, err, ErrInvalidOrderType)

	_, err = svc.Checkout(ctx, 7, CreateOrderInput{
		Items:     []CreateItemInput{{MenuItemID: 1, Quantity: 1}},
		OrderType: TypeDelivery,
	})
	assert.ErrorIs(t, err, ErrMissingAddress)
}

func TestCheckout_NotifierFailureDoesNotFailOrder(t *testing.T) {
	repo := new(MockRepository)
	menuRepo := new(mockMenuRepo)
	notifier := &recordingNotifier{err: errors.New("broker down")}
	svc := NewService(repo, menuRepo, notifier)
	ctx := context.Background()

	menuRepo.On("GetByID", ctx, uint(1)).
		Return(&menu.MenuItem{ID: 1, Name: "Tea", Price: 2.50, Available: true}, nil)
	repo.On("Create", ctx, mock.Anything).Return(nil).Once()

	o, err := svc.Checkout(ctx, 7, CreateOrderInput{
		Items:     []CreateItemInput{{MenuItemID: 1, Quantity: 1}},
		OrderType: TypePickup,
	})

	assert.NoError(t, err)
	assert.NotNil(t, o)
}

// --- Status transitions ---

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("AdminAdvance", func(t *testing.T) {
		repo := new(MockRepository)
		notifier := &recordingNotifier{}
		svc := NewService(repo, new(mockMenuRepo), notifier)

		repo.On("GetByID", ctx, uint(1)).
			Return(&Order{ID: 1, UserID: 3, Status: StatusConfirmed}, nil).Once()
		repo.On("UpdateStatus", ctx, uint(1), StatusPreparing).Return(nil).Once()

		o, err := svc.UpdateStatus(ctx, 1, StatusPreparing)
		require.NoError(t, err)
		assert.Equal(t, StatusPreparing, o.Status)
		require.Len(t, notifier.events, 1)
		assert.Equal(t, notify.EventOrderStatusUpdate, notifier.events[0].Type)
	})

	t.Run("PendingReservedForWebhook", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(mockMenuRepo), nil)

		repo.On("GetByID", ctx, uint(1)).
			Return(&Order{ID: 1, Status: StatusPending}, nil).Once()

		_, err := svc.UpdateStatus(ctx, 1, StatusConfirmed)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NoExitFromTerminal", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(mockMenuRepo), nil)

		repo.On("GetByID", ctx, uint(1)).
			Return(&Order{ID: 1, Status: StatusDelivered}, nil).Once()

		_, err := svc.UpdateStatus(ctx, 1, StatusCancelled)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("UnknownStatus", func(t *testing.T) {
		svc := NewService(new(MockRepository), new(mockMenuRepo), nil)

		_, err := svc.UpdateStatus(ctx, 1, Status("shipped"))
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("CancellationEvent", func(t *testing.T) {
		repo := new(MockRepository)
		notifier := &recordingNotifier{}
		svc := NewService(repo, new(mockMenuRepo), notifier)

		repo.On("GetByID", ctx, uint(2)).
			Return(&Order{ID: 2, Status: StatusPreparing}, nil).Once()
		repo.On("UpdateStatus", ctx, uint(2), StatusCancelled).Return(nil).Once()

		_, err := svc.UpdateStatus(ctx, 2, StatusCancelled)
		require.NoError(t, err)
		require.Len(t, notifier.events, 1)
		assert.Equal(t, notify.EventOrderCancellation, notifier.events[0].Type)
	})
}

// --- Webhook reconciliation ---

func TestApplyPaymentSucceeded_Idempotent(t *testing.T) {
	repo := new(MockRepository)
	notifier := &recordingNotifier{}
	svc := NewService(repo, new(mockMenuRepo), notifier)
	ctx := context.Background()

	confirmed := &Order{ID: 1, UserID: 3, Status: StatusConfirmed, PaymentStatus: PaymentCompleted}

	// First delivery flips the order.
	repo.On("ApplyPaymentResult", ctx, "pi_123", PaymentCompleted, StatusConfirmed).
		Return(confirmed, true, nil).Once()
	// Redelivery matches no pending row: no change, no event.
	repo.On("ApplyPaymentResult", ctx, "pi_123", PaymentCompleted, StatusConfirmed).
		Return(confirmed, false, nil).Once()

	require.NoError(t, svc.ApplyPaymentSucceeded(ctx, "pi_123"))
	require.NoError(t, svc.ApplyPaymentSucceeded(ctx, "pi_123"))

	assert.Len(t, notifier.events, 1)
	repo.AssertExpectations(t)
}

func TestApplyPaymentFailed_AfterSuccessIsNoOp(t *testing.T) {
	repo := new(MockRepository)
	notifier := &recordingNotifier{}
	svc := NewService(repo, new(mockMenuRepo), notifier)
	ctx := context.Background()

	// The order already completed; a late failure event changes nothing.
	repo.On("ApplyPaymentResult", ctx, "pi_123", PaymentFailed, StatusCancelled).
		Return(&Order{ID: 1, Status: StatusConfirmed, PaymentStatus: PaymentCompleted}, false, nil).Once()

	require.NoError(t, svc.ApplyPaymentFailed(ctx, "pi_123"))
	assert.Empty(t, notifier.events)
}

func TestApplyPaymentSucceeded_UnknownIntent(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, new(mockMenuRepo), nil)
	ctx := context.Background()

	repo.On("ApplyPaymentResult", ctx, "pi_nope", PaymentCompleted, StatusConfirmed).
		Return(nil, false, ErrOrderNotFound).Once()

	assert.ErrorIs(t, svc.ApplyPaymentSucceeded(ctx, "pi_nope"), ErrOrderNotFound)
}

// --- Ownership / cancel ---

func TestGetOrder_HidesOthersOrders(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, new(mockMenuRepo), nil)
	ctx := context.Background()

	repo.On("GetByID", ctx, uint(5)).
		Return(&Order{ID: 5, UserID: 99}, nil)

	_, err := svc.GetOrder(ctx, 7, 5, false)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	// Admin sees everything.
	o, err := svc.GetOrder(ctx, 7, 5, true)
	assert.NoError(t, err)
	assert.Equal(t, uint(5), o.ID)
}

func TestCancelOwn(t *testing.T) {
	repo := new(MockRepository)
	notifier := &recordingNotifier{}
	svc := NewService(repo, new(mockMenuRepo), notifier)
	ctx := context.Background()

	repo.On("CancelPending", ctx, uint(1), uint(7)).
		Return(&Order{ID: 1, UserID: 7, Status: StatusCancelled}, nil).Once()

	o, err := svc.CancelOwn(ctx, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, o.Status)
	require.Len(t, notifier.events, 1)
	assert.Equal(t, notify.EventOrderCancellation, notifier.events[0].Type)
}
