package menu

import "errors"

var (
	ErrMenuItemNotFound = errors.New("menu item not found")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidPrice     = errors.New("price must be non-negative")
)
