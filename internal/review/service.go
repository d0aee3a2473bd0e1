package review

import (
	"context"
	"strings"

	"cozycorner-be/internal/order"
)

type Service interface {
	Submit(ctx context.Context, userID uint, input SubmitInput) (*Review, error)
	ListApproved(ctx context.Context) ([]Review, error)
	Featured(ctx context.Context) ([]Review, error)
	Stats(ctx context.Context) (*Stats, error)
	ListMine(ctx context.Context, userID uint) ([]Review, error)
	ListAll(ctx context.Context) ([]Review, error)
	Update(ctx context.Context, userID, id uint, input SubmitInput) (*Review, error)
	Delete(ctx context.Context, userID, id uint) error
	Moderate(ctx context.Context, moderatorID, id uint, input ModerateInput) (*Review, error)
}

type service struct {
	repo      Repository
	orderRepo order.Repository
}

func NewService(repo Repository, orderRepo order.Repository) Service {
	return &service{repo: repo, orderRepo: orderRepo}
}

func validateContent(rating int, comment string) error {
	if rating < MinRating || rating > MaxRating {
		return ErrInvalidRating
	}
	if len(strings.TrimSpace(comment)) < MinCommentLength {
		return ErrCommentTooShort
	}
	return nil
}

// Submit records a pending review. Only the order's owner may review it, and
// only once the order has been delivered.
func (s *service) Submit(ctx context.Context, userID uint, input SubmitInput) (*Review, error) {
	if err := validateContent(input.Rating, input.Comment); err != nil {
		return nil, err
	}

	o, err := s.orderRepo.GetByID(ctx, input.OrderID)
	if err != nil {
		if err == order.ErrOrderNotFound {
			return nil, ErrOrderNotEligible
		}
		return nil, err
	}
	if o.UserID != userID || o.Status != order.StatusDelivered {
		return nil, ErrOrderNotEligible
	}

	rev := &Review{
		UserID:  userID,
		OrderID: input.OrderID,
		Rating:  input.Rating,
		Comment: strings.TrimSpace(input.Comment),
		Images:  input.Images,
		Status:  StatusPending,
	}
	if err := s.repo.Create(ctx, rev); err != nil {
		return nil, err
	}
	return rev, nil
}

func (s *service) ListApproved(ctx context.Context) ([]Review, error) {
	return s.repo.ListApproved(ctx)
}

func (s *service) Featured(ctx context.Context) ([]Review, error) {
	return s.repo.Featured(ctx)
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}

func (s *service) ListMine(ctx context.Context, userID uint) ([]Review, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) ListAll(ctx context.Context) ([]Review, error) {
	return s.repo.ListAll(ctx)
}

func (s *service) Update(ctx context.Context, userID, id uint, input SubmitInput) (*Review, error) {
	if err := validateContent(input.Rating, input.Comment); err != nil {
		return nil, err
	}

	rev := &Review{
		ID:      id,
		UserID:  userID,
		Rating:  input.Rating,
		Comment: strings.TrimSpace(input.Comment),
		Images:  input.Images,
	}
	if err := s.repo.Update(ctx, rev); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, userID, id uint) error {
	return s.repo.Delete(ctx, id, userID)
}

func (s *service) Moderate(ctx context.Context, moderatorID, id uint, input ModerateInput) (*Review, error) {
	if !ValidStatus(input.Status) {
		return nil, ErrInvalidStatus
	}
	return s.repo.Moderate(ctx, id, input, moderatorID)
}
