package model

import "time"

const (
	RoleFan     = "fan"
	RoleCreator = "creator"
	RoleAdmin   = "admin"
)

const (
	TxnKindTip          = "tip"
	TxnKindSubscription = "subscription"
	TxnKindPPVMessage   = "ppv_message"
	TxnKindPPVPost      = "ppv_post"
)

const (
	TxnStatusPending  = "pending"
	TxnStatusCleared  = "cleared"
	TxnStatusFailed   = "failed"
	TxnStatusRefunded = "refunded" // in the taxonomy, no transition path sets it yet
)

const (
	SubStatusActive   = "active"
	SubStatusCanceled = "canceled"
	SubStatusExpired  = "expired" // reachable in principle, set by no current code path
)

const (
	VisibilityPublic      = "public"
	VisibilitySubscribers = "subscribers"
	VisibilityPPV         = "ppv"
)

type User struct {
	ID       string `gorm:"primaryKey;size:64;not null"`
	Username string `gorm:"size:64;uniqueIndex;not null"`
	Role     string `gorm:"size:16;index;not null"` // fan, creator, admin

	// Gateway references. CustomerRef is set for anyone who has paid,
	// AccountRef only for creators with a connected payout account.
	CustomerRef       string `gorm:"size:64;index"`
	AccountRef        string `gorm:"size:64;index"`
	DefaultPaymentRef string `gorm:"size:64"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Tier struct {
	ID        string `gorm:"primaryKey;size:64;not null"`
	CreatorID string `gorm:"size:64;index;not null"`
	Name      string `gorm:"size:64;not null"`
	// Gateway price/plan id this tier bills against
	PriceRef string `gorm:"size:64;not null"`
	Amount   int64  `gorm:"not null"` // minor currency units per period
	Currency string `gorm:"size:8;not null"`
	Active   bool   `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Content struct {
	ID         string `gorm:"primaryKey;size:64;not null"`
	CreatorID  string `gorm:"size:64;index;not null"`
	Title      string `gorm:"size:256;not null"`
	Body       string `gorm:"type:text"`
	Visibility string `gorm:"size:16;index;not null"` // public, subscribers, ppv
	PPVPrice   *int64 // minor units; required when visibility is ppv

	// JSON array of media URLs. Appends go through a version check to
	// avoid lost updates between concurrent read-modify-write cycles.
	MediaURLs string `gorm:"type:text"`
	Version   int64  `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Message struct {
	ID          string `gorm:"primaryKey;size:64;not null"`
	SenderID    string `gorm:"size:64;index;not null"`
	RecipientID string `gorm:"size:64;index;not null"`
	Body        string `gorm:"type:text;not null"`
	PPVPrice    *int64 // minor units; nil for free messages
	Unlocked    bool   `gorm:"not null;default:false"`

	CreatedAt time.Time
}

// Transaction records one financial event. Every field except Status
// (and UpdatedAt) is fixed at creation; Payout+Fee == Amount always.
type Transaction struct {
	// uuid assigned locally, except subscription-kind rows where it
	// equals the gateway subscription id so invoice webhooks correlate.
	ID      string `gorm:"primaryKey;size:64;not null"`
	PayerID string `gorm:"size:64;index;not null"`
	PayeeID string `gorm:"size:64;index;not null"`
	Kind    string `gorm:"size:16;index;not null"` // tip, subscription, ppv_message, ppv_post
	Amount  int64  `gorm:"not null"`               // gross, minor units
	Fee     int64  `gorm:"not null"`               // platform commission
	Payout  int64  `gorm:"not null"`               // creator share
	Status  string `gorm:"size:16;index;not null"` // pending, cleared, failed, refunded
	// id of the thing this charge unlocks: a post for ppv_post, a
	// message for ppv_message; nil for tips and subscriptions
	RelatedID *string `gorm:"size:64"`
	// Gateway payment-intent (or subscription) id, empty until the
	// gateway call succeeds
	GatewayRef string `gorm:"size:64;index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Subscription struct {
	// equals the gateway subscription id
	ID        string `gorm:"primaryKey;size:64;not null"`
	PayerID   string `gorm:"size:64;index;not null"`
	CreatorID string `gorm:"size:64;index;not null"`
	TierID    string `gorm:"size:64;not null"`
	Status    string `gorm:"size:16;index;not null"` // active, canceled, expired
	StartDate time.Time
	// period end access runs through after an at-period-end cancel
	EndDate       *time.Time
	NextBillingAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
