package reservation

import (
	"context"
	"regexp"
	"time"

	"cozycorner-be/internal/logger"
	"cozycorner-be/internal/metrics"
	"cozycorner-be/internal/notify"
	"cozycorner-be/internal/utils"

	"go.uber.org/zap"
)

type Service interface {
	CheckAvailability(ctx context.Context, date, timeSlot string) (*Availability, error)
	Create(ctx context.Context, userID uint, input CreateInput) (*Reservation, error)
	Get(ctx context.Context, userID, id uint, isAdmin bool) (*Reservation, error)
	ListMine(ctx context.Context, userID uint) ([]Reservation, error)
	ListAll(ctx context.Context) ([]Reservation, error)
	Update(ctx context.Context, userID, id uint, input CreateInput) (*Reservation, error)
	Cancel(ctx context.Context, userID, id uint) (*Reservation, error)
	SetStatus(ctx context.Context, id uint, status Status) (*Reservation, error)
}

type service struct {
	repo     Repository
	notifier notify.Notifier
}

func NewService(repo Repository, notifier notify.Notifier) Service {
	return &service{repo: repo, notifier: notifier}
}

var timePattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

func validateSlot(input *CreateInput) error {
	parsed, err := time.Parse("2006-01-02", input.Date)
	if err != nil {
		return ErrInvalidDate
	}
	input.Date = parsed.Format("2006-01-02")

	if !timePattern.MatchString(input.Time) {
		return ErrInvalidTime
	}
	if input.PartySize < 1 || input.PartySize > MaxPartySize {
		return ErrInvalidPartySize
	}
	return nil
}

func (s *service) CheckAvailability(ctx context.Context, date, timeSlot string) (*Availability, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, ErrInvalidDate
	}
	if !timePattern.MatchString(timeSlot) {
		return nil, ErrInvalidTime
	}

	count, err := s.repo.CountActive(ctx, date, timeSlot)
	if err != nil {
		return nil, err
	}

	remaining := SlotCapacity - count
	if remaining < 0 {
		remaining = 0
	}
	return &Availability{
		Available:       remaining > 0,
		RemainingTables: remaining,
	}, nil
}

func (s *service) Create(ctx context.Context, userID uint, input CreateInput) (*Reservation, error) {
	if err := validateSlot(&input); err != nil {
		return nil, err
	}

	res := &Reservation{
		UserID:          userID,
		Date:            input.Date,
		Time:            input.Time,
		PartySize:       input.PartySize,
		SpecialRequests: input.SpecialRequests,
		Status:          StatusPending,
	}

	if err := s.repo.CreateInSlot(ctx, res); err != nil {
		return nil, err
	}

	metrics.Default.ReservationsCreated.Inc()
	s.publish(ctx, notify.EventReservationConfirmed, res)
	return res, nil
}

func (s *service) Get(ctx context.Context, userID, id uint, isAdmin bool) (*Reservation, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && res.UserID != userID {
		return nil, ErrReservationNotFound
	}
	return res, nil
}

func (s *service) ListMine(ctx context.Context, userID uint) ([]Reservation, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) ListAll(ctx context.Context) ([]Reservation, error) {
	return s.repo.ListAll(ctx)
}

func (s *service) Update(ctx context.Context, userID, id uint, input CreateInput) (*Reservation, error) {
	if err := validateSlot(&input); err != nil {
		return nil, err
	}

	// Ownership first, so a missing reservation reads as not-found rather
	// than a full slot.
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, ErrReservationNotFound
	}
	if existing.Status == StatusCancelled {
		return nil, ErrReservationNotFound
	}

	res := &Reservation{
		ID:              id,
		UserID:          userID,
		Date:            input.Date,
		Time:            input.Time,
		PartySize:       input.PartySize,
		SpecialRequests: input.SpecialRequests,
	}
	if err := s.repo.UpdateInSlot(ctx, res); err != nil {
		return nil, err
	}

	s.publish(ctx, notify.EventReservationUpdated, res)
	return res, nil
}

func (s *service) Cancel(ctx context.Context, userID, id uint) (*Reservation, error) {
	res, err := s.repo.Cancel(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, notify.EventReservationCancelled, res)
	return res, nil
}

func (s *service) SetStatus(ctx context.Context, id uint, status Status) (*Reservation, error) {
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if status == StatusCancelled {
		s.publish(ctx, notify.EventReservationCancelled, res)
	} else {
		s.publish(ctx, notify.EventReservationUpdated, res)
	}
	return res, nil
}

func (s *service) publish(ctx context.Context, eventType string, res *Reservation) {
	if s.notifier == nil {
		return
	}
	event := notify.Event{
		Type:       eventType,
		UserID:     res.UserID,
		Email:      utils.GetUserEmailFromContext(ctx),
		OccurredAt: time.Now(),
		Data: map[string]interface{}{
			"reservationId": res.ID,
			"date":          res.Date,
			"time":          res.Time,
			"partySize":     res.PartySize,
			"status":        res.Status,
		},
	}
	if err := s.notifier.Publish(ctx, event); err != nil {
		logger.FromCtx(ctx).Warn("reservation notification failed",
			zap.Uint("reservation_id", res.ID),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
