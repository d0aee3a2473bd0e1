package reservation

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// SlotCapacity is the number of tables available per (date, time) slot.
const SlotCapacity = 20

// MaxPartySize caps a single booking; a party cannot exceed one slot's tables.
const MaxPartySize = 20

type Reservation struct {
	ID              uint      `json:"id"`
	UserID          uint      `json:"userId"`
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	PartySize       int       `json:"partySize"`
	SpecialRequests string    `json:"specialRequests,omitempty"`
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Availability reports how much of a slot remains bookable.
type Availability struct {
	Available       bool `json:"available"`
	RemainingTables int  `json:"remainingTables"`
}

type CreateInput struct {
	Date            string `json:"date"`
	Time            string `json:"time"`
	PartySize       int    `json:"partySize"`
	SpecialRequests string `json:"specialRequests"`
}
