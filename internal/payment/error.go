package payment

import "errors"

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrStaleTimestamp   = errors.New("webhook timestamp outside tolerance")
	ErrIntentNotFound   = errors.New("payment intent not found")
)
