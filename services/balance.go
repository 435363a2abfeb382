package services

import (
	"context"
	"log"
	"math"
	"strconv"
	"strings"

	"elsahm-admin/apperr"
	"elsahm-admin/models"
)

// CreditInput is a wallet credit as typed by the operator.
type CreditInput struct {
	UserID   string
	Amount   string
	Notes    string
	Operator Operator
}

// CreditResult is the committed transaction plus what the follow-up
// notification did. A failed notification never undoes the credit.
type CreditResult struct {
	Transaction  *models.BalanceTransaction `json:"transaction"`
	Notification *DispatchReport            `json:"notification,omitempty"`
	NotifyError  string                     `json:"notifyError,omitempty"`
}

// StatsInvalidator drops cached dashboard numbers after a write.
type StatsInvalidator interface {
	Invalidate(ctx context.Context)
}

type BalanceService struct {
	store    BalanceStore
	notifier Notifier
	stats    StatsInvalidator
	currency string
}

func NewBalanceService(store BalanceStore, notifier Notifier, stats StatsInvalidator, currency string) *BalanceService {
	return &BalanceService{
		store:    store,
		notifier: notifier,
		stats:    stats,
		currency: currency,
	}
}

// ParseAmount accepts a finite number greater than zero.
func ParseAmount(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, apperr.NewValidationError("amount", "المبلغ مطلوب")
	}
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, apperr.NewValidationError("amount", "المبلغ يجب أن يكون رقماً")
	}
	if amount <= 0 {
		return 0, apperr.NewValidationError("amount", "المبلغ يجب أن يكون أكبر من صفر")
	}
	return amount, nil
}

// Credit adds the amount to the user's wallet in one store transaction,
// then announces it on both channels.
func (s *BalanceService) Credit(ctx context.Context, in CreditInput) (*CreditResult, error) {
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return nil, apperr.NewValidationError("userId", "معرف المستخدم مطلوب")
	}
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return nil, err
	}

	tx, err := s.store.CreditBalance(ctx, userID, amount, strings.TrimSpace(in.Notes), in.Operator.ID)
	if err != nil {
		log.Printf("Balance credit for user %s failed: %v", userID, err)
		return nil, err
	}
	log.Printf("Credited %.2f to user %s: %.2f -> %.2f", amount, userID, tx.PreviousBalance, tx.NewBalance)

	if s.stats != nil {
		s.stats.Invalidate(ctx)
	}

	result := &CreditResult{Transaction: tx}
	if s.notifier == nil {
		return result, nil
	}

	report, err := s.notifier.Dispatch(ctx, WalletRechargeMessage(userID, amount, s.currency), ModeBoth)
	if err != nil {
		log.Printf("Wallet recharge notification for user %s not sent: %v", userID, err)
		result.NotifyError = err.Error()
		return result, nil
	}
	if report.Outcome != OutcomeSuccess {
		log.Printf("Wallet recharge notification for user %s: %s", userID, report.Outcome)
	}
	result.Notification = &report
	return result, nil
}

func (s *BalanceService) ListTransactions(ctx context.Context, userID string) ([]models.BalanceTransaction, error) {
	return s.store.ListTransactions(ctx, userID)
}

func (s *BalanceService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.store.GetUser(ctx, userID)
}
