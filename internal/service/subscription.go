package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"podm-backend/internal/apperr"
	"podm-backend/internal/auth"
	"podm-backend/internal/client"
	"podm-backend/internal/config"
	"podm-backend/internal/fee"
	"podm-backend/internal/model"
	"podm-backend/internal/repository"
)

// SubscriptionService keeps the ledger's Subscription rows consistent
// with the gateway's recurring-billing objects. The ledger id always
// equals the gateway subscription id. Because the store has no
// multi-record transactions, gateway-then-ledger ordering plus an
// explicit compensating cancel stands in for atomicity.
type SubscriptionService interface {
	Subscribe(ctx context.Context, caller auth.CallerContext, tierID, paymentMethodRef string) (*model.Subscription, error)
	Cancel(ctx context.Context, caller auth.CallerContext, subscriptionID string) (*model.Subscription, error)
	Resubscribe(ctx context.Context, caller auth.CallerContext, subscriptionID string) (*model.Subscription, error)
	HasAccess(ctx context.Context, caller auth.CallerContext, creatorID string) (bool, error)
	ListTiers(ctx context.Context, creatorID string) ([]*model.Tier, error)
}

type subscriptionServiceImpl struct {
	stripeClient client.StripeClient
	billingCfg   *config.Billing
	userRepo     repository.UserRepository
	tierRepo     repository.TierRepository
	subRepo      repository.SubscriptionRepository
	txnRepo      repository.TransactionRepository
	logger       *slog.Logger
}

func NewSubscriptionService(
	stripeClient client.StripeClient,
	billingCfg *config.Billing,
	userRepo repository.UserRepository,
	tierRepo repository.TierRepository,
	subRepo repository.SubscriptionRepository,
	txnRepo repository.TransactionRepository,
	logger *slog.Logger,
) SubscriptionService {
	return &subscriptionServiceImpl{
		stripeClient: stripeClient,
		billingCfg:   billingCfg,
		userRepo:     userRepo,
		tierRepo:     tierRepo,
		subRepo:      subRepo,
		txnRepo:      txnRepo,
		logger:       logger,
	}
}

func (s *subscriptionServiceImpl) Subscribe(ctx context.Context, caller auth.CallerContext, tierID, paymentMethodRef string) (*model.Subscription, error) {
	if paymentMethodRef == "" {
		return nil, fmt.Errorf("%w: payment method required", apperr.ErrInvalidInput)
	}

	tier, err := s.tierRepo.Get(ctx, tierID)
	if err != nil {
		return nil, fmt.Errorf("get tier: %w", err)
	}
	if !tier.Active {
		return nil, fmt.Errorf("%w: tier is no longer offered", apperr.ErrInvalidInput)
	}
	if tier.CreatorID == caller.ID {
		return nil, fmt.Errorf("%w: cannot subscribe to yourself", apperr.ErrInvalidInput)
	}

	// one live subscription per payer per tier; policy check, not a
	// storage constraint
	existing, err := s.subRepo.ListByPayerAndCreator(ctx, caller.ID, tier.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	for _, sub := range existing {
		if sub.Status == model.SubStatusActive && sub.TierID == tierID {
			return nil, fmt.Errorf("%w: already subscribed to this tier", apperr.ErrInvalidInput)
		}
	}

	payer, err := s.userRepo.Get(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("get payer: %w", err)
	}

	customerRef := payer.CustomerRef
	if customerRef == "" {
		customerRef, err = s.stripeClient.CreateCustomer(ctx, payer.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrGateway, err)
		}
		if err := s.userRepo.SetCustomerRef(ctx, payer.ID, customerRef); err != nil {
			return nil, fmt.Errorf("store customer ref: %w", err)
		}
	}

	if err := s.stripeClient.AttachPaymentMethod(ctx, customerRef, paymentMethodRef); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrGateway, err)
	}
	if err := s.stripeClient.SetDefaultPaymentMethod(ctx, customerRef, paymentMethodRef); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrGateway, err)
	}
	if err := s.userRepo.SetDefaultPaymentRef(ctx, payer.ID, paymentMethodRef); err != nil {
		s.logger.Error("store default payment ref", "user_id", payer.ID, "error", err)
	}

	gwSub, err := s.stripeClient.CreateSubscription(ctx, customerRef, tier.PriceRef)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrGateway, err)
	}

	start := time.Unix(gwSub.CurrentPeriodStart, 0)
	next := time.Unix(gwSub.CurrentPeriodEnd, 0)
	sub := &model.Subscription{
		ID:            gwSub.ID,
		PayerID:       caller.ID,
		CreatorID:     tier.CreatorID,
		TierID:        tier.ID,
		Status:        model.SubStatusActive,
		StartDate:     start,
		NextBillingAt: &next,
	}

	if err := s.subRepo.Create(ctx, sub); err != nil {
		// the gateway would keep billing for a subscription we cannot
		// see; cancel it before surfacing the failure
		s.compensateGatewaySubscription(ctx, gwSub.ID)
		return nil, fmt.Errorf("create subscription record: %w", err)
	}

	platformFee, payout := fee.Split(tier.Amount, s.billingCfg.CommissionPercent)
	txn := &model.Transaction{
		ID:         gwSub.ID, // invoice webhooks correlate by subscription id
		PayerID:    caller.ID,
		PayeeID:    tier.CreatorID,
		Kind:       model.TxnKindSubscription,
		Amount:     tier.Amount,
		Fee:        platformFee,
		Payout:     payout,
		Status:     model.TxnStatusPending,
		GatewayRef: gwSub.ID,
	}
	if err := s.txnRepo.Create(ctx, txn); err != nil {
		s.compensateGatewaySubscription(ctx, gwSub.ID)
		if markErr := s.subRepo.MarkCanceled(ctx, gwSub.ID, time.Now()); markErr != nil {
			s.logger.Error("mark orphaned subscription canceled", "subscription_id", gwSub.ID, "error", markErr)
		}
		return nil, fmt.Errorf("create subscription transaction: %w", err)
	}

	return sub, nil
}

func (s *subscriptionServiceImpl) compensateGatewaySubscription(ctx context.Context, gatewaySubID string) {
	if _, err := s.stripeClient.CancelSubscription(ctx, gatewaySubID, false); err != nil {
		// worst case for the payer; needs manual reconciliation
		s.logger.Error("compensating gateway cancel failed", "subscription_id", gatewaySubID, "error", err)
	}
}

func (s *subscriptionServiceImpl) Cancel(ctx context.Context, caller auth.CallerContext, subscriptionID string) (*model.Subscription, error) {
	sub, err := s.ownedSubscription(ctx, caller, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.Status != model.SubStatusActive {
		return nil, fmt.Errorf("%w: subscription is not active", apperr.ErrInvalidInput)
	}

	// cancel at period end: access already paid for is not revoked
	gwSub, err := s.stripeClient.CancelSubscription(ctx, subscriptionID, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrGateway, err)
	}

	endDate, err := periodEnd(gwSub, sub)
	if err != nil {
		// the gateway cancel went through; the local row stays active
		// until a period end can be established
		return nil, fmt.Errorf("%w: %v", apperr.ErrGateway, err)
	}
	if err := s.subRepo.MarkCanceled(ctx, subscriptionID, endDate); err != nil {
		// gateway is already canceled; the stale local row needs a
		// reconciliation pass, nothing else to unwind here
		return nil, fmt.Errorf("mark subscription canceled: %w", err)
	}

	sub.Status = model.SubStatusCanceled
	sub.EndDate = &endDate
	return sub, nil
}

func (s *subscriptionServiceImpl) Resubscribe(ctx context.Context, caller auth.CallerContext, subscriptionID string) (*model.Subscription, error) {
	sub, err := s.ownedSubscription(ctx, caller, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.Status != model.SubStatusCanceled || sub.EndDate == nil || sub.EndDate.Before(time.Now()) {
		return nil, fmt.Errorf("%w: subscription cannot be resumed, start a new one", apperr.ErrInvalidInput)
	}

	if _, err := s.stripeClient.ResumeSubscription(ctx, subscriptionID); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrGateway, err)
	}

	if err := s.subRepo.MarkActive(ctx, subscriptionID); err != nil {
		return nil, fmt.Errorf("mark subscription active: %w", err)
	}

	sub.Status = model.SubStatusActive
	sub.EndDate = nil
	return sub, nil
}

// HasAccess reports whether the caller currently has subscriber access
// to the creator: any active subscription, or a canceled one still
// inside its paid period. A payer can hold rows across several tiers;
// one lapsed row must not mask a live one.
func (s *subscriptionServiceImpl) HasAccess(ctx context.Context, caller auth.CallerContext, creatorID string) (bool, error) {
	subs, err := s.subRepo.ListByPayerAndCreator(ctx, caller.ID, creatorID)
	if err != nil {
		return false, fmt.Errorf("list subscriptions: %w", err)
	}

	for _, sub := range subs {
		switch sub.Status {
		case model.SubStatusActive:
			return true, nil
		case model.SubStatusCanceled:
			if sub.EndDate != nil && sub.EndDate.After(time.Now()) {
				return true, nil
			}
		}
	}
	return false, nil
}

// ListTiers returns the creator's currently offered tiers, the set a
// fan picks from before subscribing.
func (s *subscriptionServiceImpl) ListTiers(ctx context.Context, creatorID string) ([]*model.Tier, error) {
	if _, err := s.userRepo.Get(ctx, creatorID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("creator: %w", apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("get creator: %w", err)
	}

	tiers, err := s.tierRepo.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("list tiers: %w", err)
	}
	return tiers, nil
}

// ownedSubscription loads a subscription and enforces ownership.
// Not-found and not-owned collapse into one authorization error so the
// endpoint does not leak which subscription ids exist.
func (s *subscriptionServiceImpl) ownedSubscription(ctx context.Context, caller auth.CallerContext, subscriptionID string) (*model.Subscription, error) {
	sub, err := s.subRepo.Get(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("subscription: %w", apperr.ErrUnauthorized)
		}
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	if sub.PayerID != caller.ID {
		return nil, fmt.Errorf("subscription: %w", apperr.ErrUnauthorized)
	}
	return sub, nil
}

// periodEnd resolves when a canceled subscription's paid access lapses.
// Some gateway responses omit both timestamps, so the ledger's next
// billing date is the fallback before giving up.
func periodEnd(gwSub *client.GatewaySubscription, sub *model.Subscription) (time.Time, error) {
	if gwSub.CancelAt > 0 {
		return time.Unix(gwSub.CancelAt, 0), nil
	}
	if gwSub.CurrentPeriodEnd > 0 {
		return time.Unix(gwSub.CurrentPeriodEnd, 0), nil
	}
	if sub.NextBillingAt != nil && !sub.NextBillingAt.IsZero() {
		return *sub.NextBillingAt, nil
	}
	return time.Time{}, fmt.Errorf("subscription %s: no period end in gateway response or ledger", sub.ID)
}
