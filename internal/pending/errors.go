package pending

import "errors"

var (
	ErrAlreadyPending = errors.New("removal already pending for this item")
	ErrNotInCart      = errors.New("item is not in the cart")
	ErrClosed         = errors.New("pending-delete manager is closed")
)
