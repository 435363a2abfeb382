package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the slice of the app user document the console touches. App
// user ids are auth uids, so the id is kept as a string.
type User struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Balance     float64   `json:"balance" bson:"balance"`
	FCMTokens   []string  `json:"fcmTokens,omitempty" bson:"fcmTokens,omitempty"`
	FCMToken    string    `json:"fcmToken,omitempty" bson:"fcmToken,omitempty"`
	LastUpdated time.Time `json:"lastUpdated,omitempty" bson:"lastUpdated,omitempty"`
}

// DeviceTokens returns every push token of the user, legacy field included,
// without duplicates.
func (u *User) DeviceTokens() []string {
	seen := make(map[string]bool, len(u.FCMTokens)+1)
	var out []string
	for _, t := range append(append([]string{}, u.FCMTokens...), u.FCMToken) {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

const (
	TransactionDeposit   = "deposit"
	TransactionCompleted = "completed"
)

// BalanceTransaction is the audit record of one wallet credit. Insert-only.
type BalanceTransaction struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID          string             `json:"userId" bson:"userId"`
	Amount          float64            `json:"amount" bson:"amount"`
	Type            string             `json:"type" bson:"type"`
	Notes           string             `json:"notes" bson:"notes"`
	PreviousBalance float64            `json:"previousBalance" bson:"previousBalance"`
	NewBalance      float64            `json:"newBalance" bson:"newBalance"`
	Status          string             `json:"status" bson:"status"`
	PerformedBy     string             `json:"performedBy,omitempty" bson:"performedBy,omitempty"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
}

// NewBalanceTransaction builds the deposit record for crediting amount on
// top of previous.
func NewBalanceTransaction(userID string, previous, amount float64, notes, performedBy string, now time.Time) BalanceTransaction {
	return BalanceTransaction{
		ID:              primitive.NewObjectID(),
		UserID:          userID,
		Amount:          amount,
		Type:            TransactionDeposit,
		Notes:           notes,
		PreviousBalance: previous,
		NewBalance:      previous + amount,
		Status:          TransactionCompleted,
		PerformedBy:     performedBy,
		CreatedAt:       now,
	}
}
