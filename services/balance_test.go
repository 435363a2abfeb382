package services

import (
	"context"
	"errors"
	"testing"

	"elsahm-admin/apperr"
	"elsahm-admin/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(ctx context.Context) { c.calls++ }

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{"50", 50, false},
		{" 12.75 ", 12.75, false},
		{"abc", 0, true},
		{"", 0, true},
		{"0", 0, true},
		{"-10", 0, true},
		{"NaN", 0, true},
		{"Inf", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseAmount(tt.raw)
			if tt.wantErr {
				assert.True(t, apperr.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCredit_NonNumericAmountNeverReachesStore(t *testing.T) {
	store := newMemoryBalanceStore(models.User{ID: "user-1", Balance: 100})
	notifier := new(MockNotifier)
	svc := NewBalanceService(store, notifier, nil, "EGP")

	_, err := svc.Credit(context.Background(), CreditInput{UserID: "user-1", Amount: "abc"})

	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "amount", verr.Field)
	assert.Empty(t, store.transactions)
	notifier.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestCredit_AddsAndRecordsBothBalances(t *testing.T) {
	store := newMemoryBalanceStore(models.User{ID: "user-1", Balance: 100})
	notifier := new(MockNotifier)
	stats := &countingInvalidator{}
	notifier.On("Dispatch", mock.Anything, mock.MatchedBy(func(m Message) bool {
		return m.UserID == "user-1" && m.Type == models.NotificationWalletRecharge
	}), ModeBoth).Return(DispatchReport{Outcome: OutcomeSuccess}, nil)

	svc := NewBalanceService(store, notifier, stats, "EGP")
	result, err := svc.Credit(context.Background(), CreditInput{
		UserID:   "user-1",
		Amount:   "50",
		Notes:    "شحن يدوي",
		Operator: testOperator,
	})
	require.NoError(t, err)

	assert.Equal(t, 100.0, result.Transaction.PreviousBalance)
	assert.Equal(t, 150.0, result.Transaction.NewBalance)
	assert.Equal(t, models.TransactionDeposit, result.Transaction.Type)
	assert.Equal(t, "admin-1", result.Transaction.PerformedBy)
	assert.Equal(t, OutcomeSuccess, result.Notification.Outcome)
	assert.Equal(t, 1, stats.calls)

	user, err := svc.GetUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 150.0, user.Balance)

	txs, err := svc.ListTransactions(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "شحن يدوي", txs[0].Notes)
	notifier.AssertExpectations(t)
}

func TestCredit_MissingUserChangesNothing(t *testing.T) {
	store := newMemoryBalanceStore(models.User{ID: "user-1", Balance: 100})
	notifier := new(MockNotifier)
	svc := NewBalanceService(store, notifier, nil, "EGP")

	_, err := svc.Credit(context.Background(), CreditInput{UserID: "ghost", Amount: "50"})

	assert.ErrorIs(t, err, apperr.ErrUserNotFound)
	assert.Empty(t, store.transactions)
	assert.Equal(t, 100.0, store.users["user-1"].Balance)
	notifier.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestCredit_NotificationFailureKeepsCredit(t *testing.T) {
	store := newMemoryBalanceStore(models.User{ID: "user-1", Balance: 10})
	notifier := new(MockNotifier)
	notifier.On("Dispatch", mock.Anything, mock.Anything, ModeBoth).
		Return(DispatchReport{}, errors.New("unexpected"))

	svc := NewBalanceService(store, notifier, nil, "EGP")
	result, err := svc.Credit(context.Background(), CreditInput{UserID: "user-1", Amount: "5"})

	require.NoError(t, err)
	assert.Equal(t, 15.0, result.Transaction.NewBalance)
	assert.Equal(t, "unexpected", result.NotifyError)
	assert.Nil(t, result.Notification)
	assert.Len(t, store.transactions, 1)
}

func TestCredit_RequiresUser(t *testing.T) {
	svc := NewBalanceService(newMemoryBalanceStore(), nil, nil, "EGP")
	_, err := svc.Credit(context.Background(), CreditInput{Amount: "5"})
	assert.True(t, apperr.IsValidation(err))
}
