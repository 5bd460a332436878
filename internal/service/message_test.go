package service

import (
	"context"
	"errors"
	"testing"

	"podm-backend/internal/apperr"
	"podm-backend/internal/auth"
	"podm-backend/internal/dto"
	"podm-backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callerCreator() auth.CallerContext {
	return auth.CallerContext{ID: creator.ID, Role: model.RoleCreator}
}

func newMessageFixture() (*fakeSubRepo, *fakeMessageRepo, MessageService) {
	users := newFakeUserRepo(
		&model.User{ID: fan.ID, Username: fan.Username, Role: fan.Role},
		&model.User{ID: creator.ID, Username: creator.Username, Role: creator.Role},
	)
	subs := newFakeSubRepo()
	msgs := newFakeMessageRepo()
	return subs, msgs, NewMessageService(users, subs, msgs, testLogger())
}

func TestBroadcastRequiresCreator(t *testing.T) {
	_, _, svc := newMessageFixture()

	_, err := svc.Broadcast(context.Background(), callerFan(), &dto.BroadcastRequest{Body: "hi"})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestBroadcastIsBestEffort(t *testing.T) {
	subs, msgs, svc := newMessageFixture()
	for _, payerID := range []string{"f1", "f2", "f3"} {
		subs.subs["sub_"+payerID] = &model.Subscription{
			ID: "sub_" + payerID, PayerID: payerID,
			CreatorID: creator.ID, Status: model.SubStatusActive,
		}
	}
	msgs.createErrs["f2"] = errors.New("recipient store failed")

	result, err := svc.Broadcast(context.Background(), callerCreator(), &dto.BroadcastRequest{Body: "new post up"})
	require.NoError(t, err, "one failed send must not fail the broadcast")

	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, 1, result.Failed)
	// the failure in the middle did not stop later recipients
	assert.ElementsMatch(t, []string{"f1", "f3"}, msgs.created)
}

func TestBroadcastNoSubscribers(t *testing.T) {
	_, _, svc := newMessageFixture()

	result, err := svc.Broadcast(context.Background(), callerCreator(), &dto.BroadcastRequest{Body: "hello"})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Sent)
	assert.Equal(t, 0, result.Failed)
}

func TestSendPPVRequiresCreator(t *testing.T) {
	_, _, svc := newMessageFixture()
	price := int64(500)

	_, err := svc.Send(context.Background(), callerFan(), creator.ID, "pay me", &price)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestSendCreatesMessage(t *testing.T) {
	_, msgs, svc := newMessageFixture()

	msg, err := svc.Send(context.Background(), callerCreator(), fan.ID, "thanks for subscribing", nil)
	require.NoError(t, err)
	assert.Equal(t, creator.ID, msg.SenderID)
	assert.Equal(t, fan.ID, msg.RecipientID)
	assert.NotEmpty(t, msg.ID)
	assert.Contains(t, msgs.msgs, msg.ID)
}
