package order

import (
	"context"
	"fmt"
	"math"
	"time"

	"cozycorner-be/internal/logger"
	"cozycorner-be/internal/menu"
	"cozycorner-be/internal/metrics"
	"cozycorner-be/internal/notify"
	"cozycorner-be/internal/utils"

	"go.uber.org/zap"
)

type CreateItemInput struct {
	MenuItemID          uint   `json:"menuItem"`
	Quantity            int    `json:"quantity"`
	SpecialInstructions string `json:"specialInstructions,omitempty"`
}

type CreateOrderInput struct {
	Items               []CreateItemInput `json:"items"`
	OrderType           Type              `json:"orderType"`
	DeliveryAddress     *DeliveryAddress  `json:"deliveryAddress,omitempty"`
	SpecialInstructions string            `json:"specialInstructions,omitempty"`
}

type Service interface {
	Checkout(ctx context.Context, userID uint, input CreateOrderInput) (*Order, error)
	GetOrder(ctx context.Context, userID, orderID uint, isAdmin bool) (*Order, error)
	ListMyOrders(ctx context.Context, userID uint) ([]Order, error)
	ListAllOrders(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, orderID uint, status Status) (*Order, error)
	CancelOwn(ctx context.Context, userID, orderID uint) (*Order, error)
	ApplyPaymentSucceeded(ctx context.Context, paymentID string) error
	ApplyPaymentFailed(ctx context.Context, paymentID string) error
	Stats(ctx context.Context) (*StatsSummary, error)
}

type service struct {
	repo     Repository
	menuRepo menu.Repository
	notifier notify.Notifier
}

func NewService(repo Repository, menuRepo menu.Repository, notifier notify.Notifier) Service {
	return &service{repo: repo, menuRepo: menuRepo, notifier: notifier}
}

// Checkout validates the requested lines against the catalog, prices the
// order from the catalog (never from client input), and persists it pending
// payment.
func (s *service) Checkout(ctx context.Context, userID uint, input CreateOrderInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.Uint("user_id", userID),
		zap.Int("item_count", len(input.Items)),
		zap.String("order_type", string(input.OrderType)),
	)

	if input.OrderType != TypePickup && input.OrderType != TypeDelivery {
		return nil, ErrInvalidOrderType
	}
	if len(input.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	if input.OrderType == TypeDelivery && input.DeliveryAddress == nil {
		return nil, ErrMissingAddress
	}

	var total float64
	items := make([]Item, 0, len(input.Items))

	for _, line := range input.Items {
		if line.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}

		menuItem, err := s.menuRepo.GetByID(ctx, line.MenuItemID)
		if err != nil || !menuItem.Available {
			log.Warn("order line rejected", zap.Uint("menu_item_id", line.MenuItemID))
			return nil, fmt.Errorf("menu item %d: %w", line.MenuItemID, ErrItemUnavailable)
		}

		total += menuItem.Price * float64(line.Quantity)
		items = append(items, Item{
			MenuItemID:          menuItem.ID,
			Name:                menuItem.Name,
			Quantity:            line.Quantity,
			Price:               menuItem.Price,
			SpecialInstructions: line.SpecialInstructions,
		})
	}

	if input.OrderType == TypeDelivery {
		total += DeliveryFee
	}
	total = math.Round(total*100) / 100

	o := &Order{
		UserID:              userID,
		Items:               items,
		TotalAmount:         total,
		Status:              StatusPending,
		OrderType:           input.OrderType,
		DeliveryAddress:     input.DeliveryAddress,
		SpecialInstructions: input.SpecialInstructions,
		PaymentStatus:       PaymentPending,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		log.Error("failed to persist order", zap.Error(err))
		return nil, err
	}

	metrics.Default.OrdersCreated.Inc()
	log.Info("order created",
		zap.Uint("order_id", o.ID),
		zap.Float64("total", o.TotalAmount),
	)

	s.publish(ctx, notify.EventOrderConfirmation, o)
	return o, nil
}

func (s *service) GetOrder(ctx context.Context, userID, orderID uint, isAdmin bool) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && o.UserID != userID {
		// Hide other users' orders entirely.
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (s *service) ListMyOrders(ctx context.Context, userID uint) ([]Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) ListAllOrders(ctx context.Context) ([]Order, error) {
	return s.repo.ListAll(ctx)
}

// UpdateStatus performs an admin-driven transition. Transitions out of
// pending are reserved for the payment webhook, and terminal states admit
// no exit.
func (s *service) UpdateStatus(ctx context.Context, orderID uint, status Status) (*Order, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, status)
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !AdminCanSet(o.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, status)
	}

	if err := s.repo.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	o.Status = status
	o.UpdatedAt = time.Now()

	eventType := notify.EventOrderStatusUpdate
	if status == StatusCancelled {
		eventType = notify.EventOrderCancellation
	}
	s.publish(ctx, eventType, o)

	return o, nil
}

func (s *service) CancelOwn(ctx context.Context, userID, orderID uint) (*Order, error) {
	o, err := s.repo.CancelPending(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, notify.EventOrderCancellation, o)
	return o, nil
}

func (s *service) ApplyPaymentSucceeded(ctx context.Context, paymentID string) error {
	o, changed, err := s.repo.ApplyPaymentResult(ctx, paymentID, PaymentCompleted, StatusConfirmed)
	if err != nil {
		return err
	}
	if changed {
		s.publish(ctx, notify.EventOrderConfirmation, o)
	}
	return nil
}

func (s *service) ApplyPaymentFailed(ctx context.Context, paymentID string) error {
	o, changed, err := s.repo.ApplyPaymentResult(ctx, paymentID, PaymentFailed, StatusCancelled)
	if err != nil {
		return err
	}
	if changed {
		s.publish(ctx, notify.EventOrderCancellation, o)
	}
	return nil
}

func (s *service) Stats(ctx context.Context) (*StatsSummary, error) {
	return s.repo.StatsSummary(ctx)
}

// publish sends a customer notification best-effort. Failures are logged and
// never propagated; the state change already happened.
func (s *service) publish(ctx context.Context, eventType string, o *Order) {
	if s.notifier == nil {
		return
	}

	evt := notify.Event{
		Type:       eventType,
		UserID:     o.UserID,
		Email:      utils.GetUserEmailFromContext(ctx),
		OccurredAt: time.Now(),
		Data: map[string]interface{}{
			"orderId":     o.ID,
			"status":      string(o.Status),
			"totalAmount": o.TotalAmount,
			"orderType":   string(o.OrderType),
		},
	}
	if err := s.notifier.Publish(ctx, evt); err != nil {
		logger.FromCtx(ctx).Warn("failed to publish order notification",
			zap.Uint("order_id", o.ID),
			zap.String("event", eventType),
			zap.Error(err),
		)
	}
}
