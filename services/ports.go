package services

import (
	"context"

	"elsahm-admin/models"
	"elsahm-admin/push"
	"elsahm-admin/relational"
)

// ComplaintStore is the document store view of complaints.
type ComplaintStore interface {
	List(ctx context.Context, f models.ComplaintFilter) ([]models.Complaint, error)
	Get(ctx context.Context, id string) (*models.Complaint, error)
	Create(ctx context.Context, complaint *models.Complaint) error
	AppendResponse(ctx context.Context, id string, resp models.Response, adminReply bool) (*models.Complaint, error)
	SetStatus(ctx context.Context, id string, status models.ComplaintStatus) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, status models.ComplaintStatus) (int64, error)
}

// NotificationStore is channel A.
type NotificationStore interface {
	Insert(ctx context.Context, n *models.Notification) error
}

// PushSender is channel B.
type PushSender interface {
	Send(ctx context.Context, req push.Request) (*push.Result, error)
}

// DispatchLogger records dispatch outcomes on the relational backend.
type DispatchLogger interface {
	Insert(ctx context.Context, entry *relational.DispatchLog) error
}

// BalanceStore owns wallet balances and their audit trail.
type BalanceStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	CreditBalance(ctx context.Context, userID string, amount float64, notes, performedBy string) (*models.BalanceTransaction, error)
	ListTransactions(ctx context.Context, userID string) ([]models.BalanceTransaction, error)
}

// UserStats feeds the dashboard.
type UserStats interface {
	CountUsers(ctx context.Context) (int64, error)
	TotalBalance(ctx context.Context) (float64, error)
}

// Notifier is what post-commit side effects dispatch through.
type Notifier interface {
	Dispatch(ctx context.Context, msg Message, mode Mode) (DispatchReport, error)
}

// OptimisticSink receives replies right after they are persisted so open
// live views can render them before the next refresh.
type OptimisticSink interface {
	Optimistic(complaintID string, resp models.Response)
}

// Operator is the console user a write is attributed to.
type Operator struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
