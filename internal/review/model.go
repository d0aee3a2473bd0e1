package review

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

const (
	MinRating = 1
	MaxRating = 5

	// MinCommentLength keeps "great" style one-worders out.
	MinCommentLength = 10

	// FeaturedMinRating and FeaturedLimit shape the storefront highlight strip.
	FeaturedMinRating = 4
	FeaturedLimit     = 6
)

type Review struct {
	ID                uint       `json:"id"`
	UserID            uint       `json:"userId"`
	UserName          string     `json:"userName,omitempty"`
	OrderID           uint       `json:"orderId"`
	Rating            int        `json:"rating"`
	Comment           string     `json:"comment"`
	Images            []string   `json:"images,omitempty"`
	Status            Status     `json:"status"`
	ModerationComment string     `json:"moderationComment,omitempty"`
	ModeratedBy       *uint      `json:"moderatedBy,omitempty"`
	ModeratedAt       *time.Time `json:"moderatedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// Stats is the public aggregate over approved reviews.
type Stats struct {
	AverageRating      float64       `json:"averageRating"`
	TotalReviews       int64         `json:"totalReviews"`
	RatingDistribution map[int]int64 `json:"ratingDistribution"`
}

type SubmitInput struct {
	OrderID uint     `json:"orderId"`
	Rating  int      `json:"rating"`
	Comment string   `json:"comment"`
	Images  []string `json:"images"`
}

type ModerateInput struct {
	Status            Status `json:"status"`
	ModerationComment string `json:"moderationComment"`
}
