package domain

import "fmt"

// SyncError is any cart gateway transport or payload-shape failure.
type SyncError struct {
	Op  string
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("cart sync %s failed: %v", e.Op, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// InvalidCheckoutState is raised before any network call when the cart or
// user identity cannot form a checkout request.
type InvalidCheckoutState struct {
	Reason string
}

func (e *InvalidCheckoutState) Error() string {
	return "invalid checkout state: " + e.Reason
}

// PaymentInitiationError means the backend refused to create a payment
// session or returned no URL. The cart is left as it was.
type PaymentInitiationError struct {
	Err error
}

func (e *PaymentInitiationError) Error() string {
	return fmt.Sprintf("payment initiation failed: %v", e.Err)
}

func (e *PaymentInitiationError) Unwrap() error { return e.Err }

// ConfirmationError covers a missing session id on return and any
// confirmation failure reported by, or while reaching, the backend.
type ConfirmationError struct {
	SessionID string
	Err       error
}

func (e *ConfirmationError) Error() string {
	if e.SessionID == "" {
		return fmt.Sprintf("payment confirmation failed: %v", e.Err)
	}
	return fmt.Sprintf("payment confirmation for session %s failed: %v", e.SessionID, e.Err)
}

func (e *ConfirmationError) Unwrap() error { return e.Err }
