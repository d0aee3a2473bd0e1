package order

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "failed"
	PaymentRefunded   PaymentStatus = "refunded"
)

type Type string

const (
	TypePickup   Type = "pickup"
	TypeDelivery Type = "delivery"
)

// DeliveryFee is the flat surcharge applied to delivery orders.
const DeliveryFee = 5.00

type Item struct {
	ID                  uint    `json:"id"`
	OrderID             uint    `json:"orderId"`
	MenuItemID          uint    `json:"menuItemId"`
	Name                string  `json:"name"`
	Quantity            int     `json:"quantity"`
	Price               float64 `json:"price"`
	SpecialInstructions string  `json:"specialInstructions,omitempty"`
}

type DeliveryAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

type Order struct {
	ID                  uint             `json:"id"`
	UserID              uint             `json:"userId"`
	Items               []Item           `json:"items"`
	TotalAmount         float64          `json:"totalAmount"`
	Status              Status           `json:"status"`
	OrderType           Type             `json:"orderType"`
	DeliveryAddress     *DeliveryAddress `json:"deliveryAddress,omitempty"`
	SpecialInstructions string           `json:"specialInstructions,omitempty"`
	PaymentStatus       PaymentStatus    `json:"paymentStatus"`
	PaymentID           *string          `json:"paymentId,omitempty"`
	CreatedAt           time.Time        `json:"createdAt"`
	UpdatedAt           time.Time        `json:"updatedAt"`
}

// transitions holds the forward edges of the order status machine.
// delivered and cancelled are terminal.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusDelivered, StatusCancelled},
}

func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

func IsTerminal(s Status) bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether the machine permits from -> to at all,
// regardless of who drives it.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AdminCanSet reports whether an explicit admin status set is allowed.
// pending->confirmed and pending->cancelled belong to the payment webhook.
func AdminCanSet(from, to Status) bool {
	if from == StatusPending {
		return false
	}
	return CanTransition(from, to)
}
