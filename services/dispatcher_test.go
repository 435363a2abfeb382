package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"elsahm-admin/apperr"
	"elsahm-admin/models"
	"elsahm-admin/push"
	"elsahm-admin/relational"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testMessage() Message {
	return Message{UserID: "user-1", Title: "رد على شكواك", Body: "تم الحل", Type: models.NotificationComplaintResponse}
}

func TestDispatch_Outcomes(t *testing.T) {
	tests := []struct {
		name     string
		inAppErr error
		pushErr  error
		outcome  Outcome
		failed   []string
	}{
		{"both succeed", nil, nil, OutcomeSuccess, nil},
		{"in-app fails", errors.New("store down"), nil, OutcomePartial, []string{ChannelInApp}},
		{"push fails", nil, errors.New("gateway down"), OutcomePartial, []string{ChannelPush}},
		{"both fail", errors.New("store down"), errors.New("gateway down"), OutcomeFailure, []string{ChannelInApp, ChannelPush}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifications := new(MockNotificationStore)
			sender := new(MockPushSender)
			notifications.On("Insert", mock.Anything, mock.Anything).Return(tt.inAppErr)
			if tt.pushErr != nil {
				sender.On("Send", mock.Anything, mock.Anything).Return(nil, tt.pushErr)
			} else {
				sender.On("Send", mock.Anything, mock.Anything).Return(&push.Result{ID: "n1", Recipients: 2}, nil)
			}

			d := NewDispatcher(notifications, sender, nil)
			report, err := d.Dispatch(context.Background(), testMessage(), ModeBoth)
			require.NoError(t, err)

			assert.Equal(t, tt.outcome, report.Outcome)
			assert.Equal(t, tt.failed, report.FailedChannels())
			notifications.AssertNumberOfCalls(t, "Insert", 1)
			sender.AssertNumberOfCalls(t, "Send", 1)
		})
	}
}

func TestDispatch_PartialText(t *testing.T) {
	inAppOnly := DispatchReport{
		InApp:   ChannelResult{Attempted: true, OK: true},
		Push:    ChannelResult{Attempted: true},
		Outcome: OutcomePartial,
	}
	assert.Contains(t, inAppOnly.Text(), "داخل التطبيق فقط")

	failure := DispatchReport{InApp: ChannelResult{Attempted: true}, Outcome: OutcomeFailure}
	assert.Equal(t, "فشل إرسال الإشعار", failure.Text())
}

func TestDispatch_PushNon2xxKeepsInApp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":["Invalid app_id"]}`))
	}))
	defer server.Close()

	notifications := new(MockNotificationStore)
	notifications.On("Insert", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return n.UserID == "user-1" && !n.IsRead
	})).Return(nil)

	d := NewDispatcher(notifications, push.NewClient("app", "key", server.URL, 2*time.Second), nil)
	report, err := d.Dispatch(context.Background(), testMessage(), ModeBoth)
	require.NoError(t, err)

	assert.True(t, report.InApp.OK)
	assert.False(t, report.Push.OK)
	assert.Contains(t, report.Push.Error, "400")
	assert.Equal(t, OutcomePartial, report.Outcome)
	notifications.AssertExpectations(t)
}

func TestDispatch_PanicDoesNotStopOtherChannel(t *testing.T) {
	notifications := new(MockNotificationStore)
	sender := new(MockPushSender)
	notifications.On("Insert", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		panic("nil map")
	})
	sender.On("Send", mock.Anything, mock.Anything).Return(&push.Result{Recipients: 1}, nil)

	d := NewDispatcher(notifications, sender, nil)
	report, err := d.Dispatch(context.Background(), testMessage(), ModeBoth)
	require.NoError(t, err)

	assert.False(t, report.InApp.OK)
	assert.Contains(t, report.InApp.Error, "panic")
	assert.True(t, report.Push.OK)
	assert.Equal(t, OutcomePartial, report.Outcome)
}

func TestDispatch_Preconditions(t *testing.T) {
	notifications := new(MockNotificationStore)
	sender := new(MockPushSender)
	d := NewDispatcher(notifications, sender, nil)
	ctx := context.Background()

	msg := testMessage()
	msg.UserID = "  "
	_, err := d.Dispatch(ctx, msg, ModeBoth)
	assert.True(t, apperr.IsPrecondition(err))

	_, err = d.Dispatch(ctx, testMessage(), Mode("sms"))
	assert.True(t, apperr.IsValidation(err))

	msg = testMessage()
	msg.Title = ""
	_, err = d.Dispatch(ctx, msg, ModeInApp)
	assert.True(t, apperr.IsValidation(err))

	_, err = d.NotifyComplaintAuthor(ctx, &models.Complaint{Title: "بدون مستخدم"}, "t", "b", ModeBoth)
	assert.True(t, apperr.IsPrecondition(err))

	notifications.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestDispatch_SingleChannelModes(t *testing.T) {
	notifications := new(MockNotificationStore)
	sender := new(MockPushSender)
	notifications.On("Insert", mock.Anything, mock.Anything).Return(nil)
	sender.On("Send", mock.Anything, mock.MatchedBy(func(req push.Request) bool {
		return len(req.PlayerIDs) == 1 && len(req.ExternalUserIDs) == 0
	})).Return(&push.Result{Recipients: 1}, nil)

	d := NewDispatcher(notifications, sender, nil)
	ctx := context.Background()

	report, err := d.Dispatch(ctx, testMessage(), ModeInApp)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, report.Outcome)
	assert.False(t, report.Push.Attempted)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)

	msg := Message{Title: "t", Body: "b", Tokens: []string{"device-1"}}
	report, err = d.Dispatch(ctx, msg, ModePush)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, report.Outcome)
	assert.False(t, report.InApp.Attempted)
}

func TestDispatch_NoPushSender(t *testing.T) {
	notifications := new(MockNotificationStore)
	notifications.On("Insert", mock.Anything, mock.Anything).Return(nil)

	d := NewDispatcher(notifications, nil, nil)
	report, err := d.Dispatch(context.Background(), testMessage(), ModeBoth)
	require.NoError(t, err)
	assert.Equal(t, OutcomePartial, report.Outcome)
}

func TestDispatch_RecordsLog(t *testing.T) {
	notifications := new(MockNotificationStore)
	sender := new(MockPushSender)
	logger := new(MockDispatchLogger)
	notifications.On("Insert", mock.Anything, mock.Anything).Return(nil)
	sender.On("Send", mock.Anything, mock.Anything).Return(nil, errors.New("gateway down"))
	logger.On("Insert", mock.Anything, mock.MatchedBy(func(e *relational.DispatchLog) bool {
		return e.UserID == "user-1" && e.ComplaintID != "" && e.InAppOK && !e.PushOK &&
			e.Outcome == string(OutcomePartial) && len(e.FailedChannels) == 1
	})).Return(errors.New("postgres down"))

	d := NewDispatcher(notifications, sender, logger)
	complaint := newComplaint(models.StatusInProgress)
	report, err := d.NotifyComplaintAuthor(context.Background(), complaint, "رد على شكواك", "تم الحل", ModeBoth)

	require.NoError(t, err)
	assert.Equal(t, OutcomePartial, report.Outcome)
	logger.AssertExpectations(t)
}

func TestWalletRechargeMessage(t *testing.T) {
	msg := WalletRechargeMessage("user-1", 50, "EGP")
	assert.Equal(t, models.NotificationWalletRecharge, msg.Type)
	assert.Contains(t, msg.Body, "50 EGP")
	assert.Equal(t, 50.0, msg.Data["amount"])

	assert.Equal(t, "12.5", formatAmount(12.5))
	assert.Equal(t, "100", formatAmount(100))
}
