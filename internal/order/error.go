package order

import "errors"

var (
	ErrOrderNotFound          = errors.New("order not found")
	ErrItemUnavailable        = errors.New("menu item is not available")
	ErrEmptyOrder             = errors.New("order must contain at least one item")
	ErrInvalidQuantity        = errors.New("quantity must be at least 1")
	ErrInvalidOrderType       = errors.New("order type must be pickup or delivery")
	ErrMissingAddress         = errors.New("delivery orders require a delivery address")
	ErrInvalidTransition      = errors.New("status transition not permitted")
	ErrNotCancellable         = errors.New("order can no longer be cancelled")
	ErrDuplicatePaymentIntent = errors.New("payment intent already attached to another order")
)
