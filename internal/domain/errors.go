package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates an entity with the same identity is already stored.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidCheckoutState indicates the cart snapshot cannot be turned into an order.
	ErrInvalidCheckoutState = errors.New("invalid checkout state")
	// ErrUnauthorized indicates the principal may not access or mutate the order.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSignatureInvalid indicates a charge proof failed verification.
	ErrSignatureInvalid = errors.New("signature invalid")
	// ErrGatewayUnavailable indicates the payment gateway call failed or timed out.
	ErrGatewayUnavailable = errors.New("gateway unavailable")
	// ErrAmountMismatch indicates the client-claimed amount differs from the order total.
	ErrAmountMismatch = errors.New("amount mismatch")
	// ErrInvalidTransition indicates the order is not in a state that allows the requested transition.
	ErrInvalidTransition = errors.New("invalid order transition")
)
