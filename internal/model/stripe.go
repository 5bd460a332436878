package model

// Wire shapes for the subset of gateway webhook payloads this service
// consumes. Field sets follow Stripe's event envelope.

type StripeEvent struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Created int64           `json:"created"`
	Data    StripeEventData `json:"data"`
}

type StripeEventData struct {
	Object StripeObject `json:"object"`
}

// StripeObject is the union of the object fields we read across event
// types; unknown fields are simply absent.
type StripeObject struct {
	ID       string            `json:"id"`
	Object   string            `json:"object"` // payment_intent, invoice, subscription
	Status   string            `json:"status"`
	Metadata map[string]string `json:"metadata"`

	// invoice events
	Subscription string `json:"subscription"`
	AmountPaid   int64  `json:"amount_paid"`

	// subscription events
	CancelAt           int64 `json:"cancel_at"`
	CurrentPeriodStart int64 `json:"current_period_start"`
	CurrentPeriodEnd   int64 `json:"current_period_end"`
}
