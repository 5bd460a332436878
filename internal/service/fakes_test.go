package service

import (
	"context"
	"sort"
	"time"

	"podm-backend/internal/apperr"
	"podm-backend/internal/client"
	"podm-backend/internal/model"
)

// in-memory fakes for the repositories and the gateway client

type fakeStripe struct {
	intentInputs []*client.CreatePaymentIntentInput
	intentErr    error
	intent       *client.PaymentIntent

	createdCustomers int
	customerErr      error

	attached   []string
	defaulted  []string
	attachErr  error
	defaultErr error

	createSubErr error
	gwSub        *client.GatewaySubscription

	cancelCalls  []fakeCancelCall
	cancelResult *client.GatewaySubscription
	cancelErr    error

	resumeCalls []string
	resumeErr   error

	sigErr error
}

type fakeCancelCall struct {
	ID          string
	AtPeriodEnd bool
}

func (f *fakeStripe) CreatePaymentIntent(_ context.Context, in *client.CreatePaymentIntentInput) (*client.PaymentIntent, error) {
	f.intentInputs = append(f.intentInputs, in)
	if f.intentErr != nil {
		return nil, f.intentErr
	}
	if f.intent != nil {
		return f.intent, nil
	}
	return &client.PaymentIntent{ID: "pi_test", ClientSecret: "pi_test_secret", Status: "requires_confirmation"}, nil
}

func (f *fakeStripe) CreateCustomer(context.Context, string) (string, error) {
	if f.customerErr != nil {
		return "", f.customerErr
	}
	f.createdCustomers++
	return "cus_test", nil
}

func (f *fakeStripe) AttachPaymentMethod(_ context.Context, _, methodRef string) error {
	if f.attachErr != nil {
		return f.attachErr
	}
	f.attached = append(f.attached, methodRef)
	return nil
}

func (f *fakeStripe) SetDefaultPaymentMethod(_ context.Context, _, methodRef string) error {
	if f.defaultErr != nil {
		return f.defaultErr
	}
	f.defaulted = append(f.defaulted, methodRef)
	return nil
}

func (f *fakeStripe) CreateSubscription(context.Context, string, string) (*client.GatewaySubscription, error) {
	if f.createSubErr != nil {
		return nil, f.createSubErr
	}
	if f.gwSub != nil {
		return f.gwSub, nil
	}
	return &client.GatewaySubscription{ID: "sub_test", Status: "active"}, nil
}

func (f *fakeStripe) CancelSubscription(_ context.Context, id string, atPeriodEnd bool) (*client.GatewaySubscription, error) {
	f.cancelCalls = append(f.cancelCalls, fakeCancelCall{ID: id, AtPeriodEnd: atPeriodEnd})
	if f.cancelErr != nil {
		return nil, f.cancelErr
	}
	if f.cancelResult != nil {
		return f.cancelResult, nil
	}
	return &client.GatewaySubscription{ID: id, Status: "canceled"}, nil
}

func (f *fakeStripe) ResumeSubscription(_ context.Context, id string) (*client.GatewaySubscription, error) {
	f.resumeCalls = append(f.resumeCalls, id)
	if f.resumeErr != nil {
		return nil, f.resumeErr
	}
	return &client.GatewaySubscription{ID: id, Status: "active"}, nil
}

func (f *fakeStripe) VerifyWebhookSignature(string, []byte) error {
	return f.sigErr
}

type fakeUserRepo struct {
	users map[string]*model.User
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]*model.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Get(_ context.Context, id string) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) SetCustomerRef(_ context.Context, id, ref string) error {
	if u, ok := r.users[id]; ok {
		u.CustomerRef = ref
	}
	return nil
}

func (r *fakeUserRepo) SetDefaultPaymentRef(_ context.Context, id, ref string) error {
	if u, ok := r.users[id]; ok {
		u.DefaultPaymentRef = ref
	}
	return nil
}

type fakeTxnRepo struct {
	txns      map[string]*model.Transaction
	createErr error
}

func newFakeTxnRepo() *fakeTxnRepo {
	return &fakeTxnRepo{txns: map[string]*model.Transaction{}}
}

func (r *fakeTxnRepo) Create(_ context.Context, txn *model.Transaction) error {
	if r.createErr != nil {
		return r.createErr
	}
	cp := *txn
	r.txns[txn.ID] = &cp
	return nil
}

func (r *fakeTxnRepo) Get(_ context.Context, id string) (*model.Transaction, error) {
	txn, ok := r.txns[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *txn
	return &cp, nil
}

func (r *fakeTxnRepo) SetGatewayRef(_ context.Context, id, ref string) error {
	if txn, ok := r.txns[id]; ok {
		txn.GatewayRef = ref
	}
	return nil
}

func (r *fakeTxnRepo) MarkCleared(_ context.Context, id string) (bool, error) {
	return r.mark(id, model.TxnStatusCleared), nil
}

func (r *fakeTxnRepo) MarkFailed(_ context.Context, id string) (bool, error) {
	return r.mark(id, model.TxnStatusFailed), nil
}

func (r *fakeTxnRepo) mark(id, status string) bool {
	txn, ok := r.txns[id]
	if !ok || txn.Status != model.TxnStatusPending {
		return false
	}
	txn.Status = status
	txn.UpdatedAt = time.Now()
	return true
}

type fakeSubRepo struct {
	subs      map[string]*model.Subscription
	createErr error
}

func newFakeSubRepo() *fakeSubRepo {
	return &fakeSubRepo{subs: map[string]*model.Subscription{}}
}

func (r *fakeSubRepo) Create(_ context.Context, sub *model.Subscription) error {
	if r.createErr != nil {
		return r.createErr
	}
	cp := *sub
	r.subs[sub.ID] = &cp
	return nil
}

func (r *fakeSubRepo) Get(_ context.Context, id string) (*model.Subscription, error) {
	sub, ok := r.subs[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *sub
	return &cp, nil
}

func (r *fakeSubRepo) ListByPayerAndCreator(_ context.Context, payerID, creatorID string) ([]*model.Subscription, error) {
	var subs []*model.Subscription
	for _, sub := range r.subs {
		if sub.PayerID == payerID && sub.CreatorID == creatorID {
			cp := *sub
			subs = append(subs, &cp)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].CreatedAt.After(subs[j].CreatedAt) })
	return subs, nil
}

func (r *fakeSubRepo) MarkCanceled(_ context.Context, id string, endDate time.Time) error {
	if sub, ok := r.subs[id]; ok {
		sub.Status = model.SubStatusCanceled
		sub.EndDate = &endDate
	}
	return nil
}

func (r *fakeSubRepo) MarkActive(_ context.Context, id string) error {
	if sub, ok := r.subs[id]; ok {
		sub.Status = model.SubStatusActive
		sub.EndDate = nil
	}
	return nil
}

func (r *fakeSubRepo) ListActivePayerIDs(_ context.Context, creatorID string) ([]string, error) {
	var ids []string
	for _, sub := range r.subs {
		if sub.CreatorID == creatorID && sub.Status == model.SubStatusActive {
			ids = append(ids, sub.PayerID)
		}
	}
	return ids, nil
}

type fakeTierRepo struct {
	tiers map[string]*model.Tier
}

func newFakeTierRepo(tiers ...*model.Tier) *fakeTierRepo {
	r := &fakeTierRepo{tiers: map[string]*model.Tier{}}
	for _, tier := range tiers {
		r.tiers[tier.ID] = tier
	}
	return r
}

func (r *fakeTierRepo) Get(_ context.Context, id string) (*model.Tier, error) {
	tier, ok := r.tiers[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return tier, nil
}

func (r *fakeTierRepo) ListByCreator(_ context.Context, creatorID string) ([]*model.Tier, error) {
	var tiers []*model.Tier
	for _, tier := range r.tiers {
		if tier.CreatorID == creatorID {
			tiers = append(tiers, tier)
		}
	}
	return tiers, nil
}

type fakeContentRepo struct {
	contents map[string]*model.Content
}

func newFakeContentRepo(contents ...*model.Content) *fakeContentRepo {
	r := &fakeContentRepo{contents: map[string]*model.Content{}}
	for _, c := range contents {
		r.contents[c.ID] = c
	}
	return r
}

func (r *fakeContentRepo) Create(_ context.Context, c *model.Content) error {
	r.contents[c.ID] = c
	return nil
}

func (r *fakeContentRepo) Get(_ context.Context, id string) (*model.Content, error) {
	c, ok := r.contents[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return c, nil
}

func (r *fakeContentRepo) AppendMedia(_ context.Context, id, _ string, version int64) error {
	c, ok := r.contents[id]
	if !ok {
		return apperr.ErrNotFound
	}
	if c.Version != version {
		return apperr.ErrConflict
	}
	c.Version++
	return nil
}

type fakeMessageRepo struct {
	msgs       map[string]*model.Message
	createErrs map[string]error // recipient id -> forced error
	created    []string         // recipient ids in creation order
}

func newFakeMessageRepo(msgs ...*model.Message) *fakeMessageRepo {
	r := &fakeMessageRepo{msgs: map[string]*model.Message{}, createErrs: map[string]error{}}
	for _, m := range msgs {
		r.msgs[m.ID] = m
	}
	return r
}

func (r *fakeMessageRepo) Create(_ context.Context, msg *model.Message) error {
	if err := r.createErrs[msg.RecipientID]; err != nil {
		return err
	}
	r.created = append(r.created, msg.RecipientID)
	r.msgs[msg.ID] = msg
	return nil
}

func (r *fakeMessageRepo) Get(_ context.Context, id string) (*model.Message, error) {
	msg, ok := r.msgs[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return msg, nil
}

func (r *fakeMessageRepo) MarkUnlocked(_ context.Context, id string) error {
	if msg, ok := r.msgs[id]; ok {
		msg.Unlocked = true
	}
	return nil
}

type fakeWebhookEventRepo struct {
	processed map[string]string
}

func newFakeWebhookEventRepo() *fakeWebhookEventRepo {
	return &fakeWebhookEventRepo{processed: map[string]string{}}
}

func (r *fakeWebhookEventRepo) Exists(_ context.Context, eventID string) (bool, error) {
	_, ok := r.processed[eventID]
	return ok, nil
}

func (r *fakeWebhookEventRepo) MarkProcessed(_ context.Context, eventID, eventType string) error {
	r.processed[eventID] = eventType
	return nil
}
