package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"podm-backend/internal/apperr"
	"podm-backend/internal/auth"
	"podm-backend/internal/client"
	"podm-backend/internal/config"
	"podm-backend/internal/dto"
	"podm-backend/internal/fee"
	"podm-backend/internal/model"
	"podm-backend/internal/repository"

	"github.com/google/uuid"
)

// BillingService owns the Transaction lifecycle: it opens pending
// ledger transactions, hands them to the gateway, and reconciles their
// status from webhook events. Pending -> Cleared|Failed, nothing moves
// back.
type BillingService interface {
	Tip(ctx context.Context, caller auth.CallerContext, req *dto.TipRequest) (*dto.ChargeResponse, error)
	UnlockPost(ctx context.Context, caller auth.CallerContext, contentID string) (*dto.ChargeResponse, error)
	UnlockMessage(ctx context.Context, caller auth.CallerContext, messageID string) (*dto.ChargeResponse, error)
	HandleWebhook(ctx context.Context, signatureHeader string, body []byte) error
}

type billingServiceImpl struct {
	stripeClient     client.StripeClient
	billingCfg       *config.Billing
	userRepo         repository.UserRepository
	contentRepo      repository.ContentRepository
	messageRepo      repository.MessageRepository
	txnRepo          repository.TransactionRepository
	webhookEventRepo repository.WebhookEventRepository
	logger           *slog.Logger
}

func NewBillingService(
	stripeClient client.StripeClient,
	billingCfg *config.Billing,
	userRepo repository.UserRepository,
	contentRepo repository.ContentRepository,
	messageRepo repository.MessageRepository,
	txnRepo repository.TransactionRepository,
	webhookEventRepo repository.WebhookEventRepository,
	logger *slog.Logger,
) BillingService {
	return &billingServiceImpl{
		stripeClient:     stripeClient,
		billingCfg:       billingCfg,
		userRepo:         userRepo,
		contentRepo:      contentRepo,
		messageRepo:      messageRepo,
		txnRepo:          txnRepo,
		webhookEventRepo: webhookEventRepo,
		logger:           logger,
	}
}

func (s *billingServiceImpl) Tip(ctx context.Context, caller auth.CallerContext, req *dto.TipRequest) (*dto.ChargeResponse, error) {
	if req.Amount < s.billingCfg.MinTipAmount {
		return nil, fmt.Errorf("%w: tip amount below minimum of %d", apperr.ErrInvalidInput, s.billingCfg.MinTipAmount)
	}
	if req.CreatorID == caller.ID {
		return nil, fmt.Errorf("%w: cannot tip yourself", apperr.ErrInvalidInput)
	}

	creator, err := s.userRepo.Get(ctx, req.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("get creator: %w", err)
	}

	resp, err := s.initiateCharge(ctx, caller, creator, model.TxnKindTip, req.Amount, nil)
	if err != nil {
		return nil, err
	}

	if req.Message != "" {
		msg := &model.Message{
			ID:          uuid.NewString(),
			SenderID:    caller.ID,
			RecipientID: creator.ID,
			Body:        req.Message,
		}
		if err := s.messageRepo.Create(ctx, msg); err != nil {
			// the charge is already in flight; the note is best-effort
			s.logger.Error("store tip message", "transaction_id", resp.TransactionID, "error", err)
		}
	}

	return resp, nil
}

func (s *billingServiceImpl) UnlockPost(ctx context.Context, caller auth.CallerContext, contentID string) (*dto.ChargeResponse, error) {
	content, err := s.contentRepo.Get(ctx, contentID)
	if err != nil {
		return nil, fmt.Errorf("get content: %w", err)
	}
	if content.Visibility != model.VisibilityPPV || content.PPVPrice == nil {
		return nil, fmt.Errorf("%w: content is not pay-per-view", apperr.ErrInvalidInput)
	}
	if content.CreatorID == caller.ID {
		return nil, fmt.Errorf("%w: cannot purchase your own content", apperr.ErrInvalidInput)
	}

	creator, err := s.userRepo.Get(ctx, content.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("get creator: %w", err)
	}

	return s.initiateCharge(ctx, caller, creator, model.TxnKindPPVPost, *content.PPVPrice, &content.ID)
}

func (s *billingServiceImpl) UnlockMessage(ctx context.Context, caller auth.CallerContext, messageID string) (*dto.ChargeResponse, error) {
	msg, err := s.messageRepo.Get(ctx, messageID)
	if err != nil || msg.RecipientID != caller.ID {
		// not-found and not-addressed-to-caller collapse so callers
		// cannot probe other users' messages
		return nil, fmt.Errorf("unlock message: %w", apperr.ErrUnauthorized)
	}
	if msg.PPVPrice == nil {
		return nil, fmt.Errorf("%w: message is not pay-per-view", apperr.ErrInvalidInput)
	}
	if msg.Unlocked {
		return nil, fmt.Errorf("%w: message already unlocked", apperr.ErrInvalidInput)
	}

	sender, err := s.userRepo.Get(ctx, msg.SenderID)
	if err != nil {
		return nil, fmt.Errorf("get sender: %w", err)
	}

	return s.initiateCharge(ctx, caller, sender, model.TxnKindPPVMessage, *msg.PPVPrice, &msg.ID)
}

// initiateCharge opens a pending ledger transaction, then asks the
// gateway for a payment intent routing the platform fee to us and the
// remainder to the payee's connected account. A synchronous gateway
// rejection marks the transaction failed by its ledger id (the gateway
// ref does not exist yet at that point).
func (s *billingServiceImpl) initiateCharge(
	ctx context.Context,
	caller auth.CallerContext,
	payee *model.User,
	kind string,
	amount int64,
	relatedID *string,
) (*dto.ChargeResponse, error) {
	if payee.AccountRef == "" {
		return nil, fmt.Errorf("%w: payee has no connected payout account", apperr.ErrInvalidInput)
	}

	platformFee, payout := fee.Split(amount, s.billingCfg.CommissionPercent)

	txn := &model.Transaction{
		ID:        uuid.NewString(),
		PayerID:   caller.ID,
		PayeeID:   payee.ID,
		Kind:      kind,
		Amount:    amount,
		Fee:       platformFee,
		Payout:    payout,
		Status:    model.TxnStatusPending,
		RelatedID: relatedID,
	}
	if err := s.txnRepo.Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	var customerRef string
	if payer, err := s.userRepo.Get(ctx, caller.ID); err == nil {
		customerRef = payer.CustomerRef
	}

	intent, err := s.stripeClient.CreatePaymentIntent(ctx, &client.CreatePaymentIntentInput{
		Amount:         amount,
		Currency:       s.billingCfg.Currency,
		ApplicationFee: platformFee,
		PayeeAccount:   payee.AccountRef,
		CustomerRef:    customerRef,
		TransactionID:  txn.ID,
	})
	if err != nil {
		if _, markErr := s.txnRepo.MarkFailed(ctx, txn.ID); markErr != nil {
			s.logger.Error("mark transaction failed", "transaction_id", txn.ID, "error", markErr)
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrGateway, err)
	}

	if err := s.txnRepo.SetGatewayRef(ctx, txn.ID, intent.ID); err != nil {
		s.logger.Error("store gateway ref", "transaction_id", txn.ID, "intent_id", intent.ID, "error", err)
	}

	return &dto.ChargeResponse{
		TransactionID: txn.ID,
		ClientSecret:  intent.ClientSecret,
	}, nil
}

// HandleWebhook reconciles ledger transactions from gateway events.
// Events the service does not understand, and events whose correlation
// id resolves to nothing, are logged and acknowledged: answering with
// an error would only trigger endless redelivery.
func (s *billingServiceImpl) HandleWebhook(ctx context.Context, signatureHeader string, body []byte) error {
	if err := s.stripeClient.VerifyWebhookSignature(signatureHeader, body); err != nil {
		return fmt.Errorf("%w: verify webhook signature: %v", apperr.ErrInvalidInput, err)
	}

	var event model.StripeEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.logger.Warn("undecodable webhook payload", "error", err)
		return nil
	}

	processed, err := s.webhookEventRepo.Exists(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("check webhook event: %w", err)
	}
	if processed {
		s.logger.Debug("webhook event redelivered", "event_id", event.ID)
		return nil
	}

	switch event.Type {
	case "payment_intent.succeeded":
		err = s.reconcile(ctx, event.Data.Object.Metadata["transaction_id"], true)
	case "payment_intent.payment_failed":
		err = s.reconcile(ctx, event.Data.Object.Metadata["transaction_id"], false)
	case "invoice.payment_succeeded":
		// subscription-kind transactions share the gateway
		// subscription id, so the invoice correlates directly
		err = s.reconcile(ctx, event.Data.Object.Subscription, true)
	case "invoice.payment_failed":
		err = s.reconcile(ctx, event.Data.Object.Subscription, false)
	default:
		s.logger.Info("unhandled webhook event type", "event_type", event.Type, "event_id", event.ID)
	}
	if err != nil {
		return err
	}

	if err := s.webhookEventRepo.MarkProcessed(ctx, event.ID, event.Type); err != nil {
		// the status-guarded updates make redelivery harmless anyway
		s.logger.Error("mark webhook event processed", "event_id", event.ID, "error", err)
	}

	return nil
}

func (s *billingServiceImpl) reconcile(ctx context.Context, txnID string, succeeded bool) error {
	if txnID == "" {
		s.logger.Warn("webhook event without correlation id")
		return nil
	}

	txn, err := s.txnRepo.Get(ctx, txnID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			s.logger.Warn("webhook references unknown transaction", "transaction_id", txnID)
			return nil
		}
		return fmt.Errorf("get transaction: %w", err)
	}

	if succeeded {
		applied, err := s.txnRepo.MarkCleared(ctx, txnID)
		if err != nil {
			return fmt.Errorf("mark transaction cleared: %w", err)
		}
		if !applied {
			s.logger.Debug("transaction already terminal", "transaction_id", txnID, "status", txn.Status)
			return nil
		}
		if txn.Kind == model.TxnKindPPVMessage && txn.RelatedID != nil {
			if err := s.messageRepo.MarkUnlocked(ctx, *txn.RelatedID); err != nil {
				s.logger.Error("unlock message", "message_id", *txn.RelatedID, "error", err)
			}
		}
		return nil
	}

	applied, err := s.txnRepo.MarkFailed(ctx, txnID)
	if err != nil {
		return fmt.Errorf("mark transaction failed: %w", err)
	}
	if !applied {
		s.logger.Debug("transaction already terminal", "transaction_id", txnID, "status", txn.Status)
	}
	return nil
}
