package review

import "errors"

var (
	ErrReviewNotFound   = errors.New("review not found")
	ErrOrderNotEligible = errors.New("order not found or not eligible for review")
	ErrDuplicateReview  = errors.New("order already reviewed")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrCommentTooShort  = errors.New("comment must be at least 10 characters long")
	ErrInvalidStatus    = errors.New("invalid review status")
)
