package dto

type TipRequest struct {
	CreatorID string `json:"creator_id"`
	Amount    int64  `json:"amount"` // minor currency units
	Message   string `json:"message"`
}

type ChargeResponse struct {
	TransactionID string `json:"transaction_id"`
	ClientSecret  string `json:"client_secret"`
}

type UnlockPostRequest struct {
	ContentID string `json:"content_id"`
}

type UnlockMessageRequest struct {
	MessageID string `json:"message_id"`
}

type SubscribeRequest struct {
	TierID           string `json:"tier_id"`
	PaymentMethodRef string `json:"payment_method_ref"`
}

type SubscriptionResponse struct {
	ID            string  `json:"id"`
	CreatorID     string  `json:"creator_id"`
	TierID        string  `json:"tier_id"`
	Status        string  `json:"status"`
	StartDate     string  `json:"start_date"`
	EndDate       *string `json:"end_date,omitempty"`
	NextBillingAt *string `json:"next_billing_at,omitempty"`
}

type TierResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Amount   int64  `json:"amount"` // minor currency units
	Currency string `json:"currency"`
}

type BroadcastRequest struct {
	Body     string `json:"body"`
	PPVPrice *int64 `json:"ppv_price,omitempty"`
}

type BroadcastResponse struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

type AppendMediaRequest struct {
	MediaURL string `json:"media_url"`
	Version  int64  `json:"version"`
}
