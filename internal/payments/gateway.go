package payments

import "context"

// Intent is a gateway-side payment order. Amount is in minor units.
type Intent struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status,omitempty"`
}

// IntentRequest asks the gateway to open an intent for one order.
type IntentRequest struct {
	Amount   int64
	Currency string
	Receipt  string
}

// Gateway is the subset of the payment provider API the checkout flow needs.
type Gateway interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	LookupIntent(ctx context.Context, intentID string) (*Intent, error)
}
