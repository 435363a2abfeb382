package relational

import (
	"context"
	"time"

	"elsahm-admin/apperr"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// DispatchLog records the outcome of one notification dispatch.
type DispatchLog struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	ComplaintID    string         `json:"complaint_id" gorm:"index"`
	UserID         string         `json:"user_id" gorm:"index;not null"`
	Kind           string         `json:"kind"`
	Mode           string         `json:"mode"`
	Outcome        string         `json:"outcome"`
	InAppOK        bool           `json:"in_app_ok"`
	PushOK         bool           `json:"push_ok"`
	FailedChannels pq.StringArray `json:"failed_channels" gorm:"type:text[]"`
	Message        string         `json:"message"`
	CreatedAt      time.Time      `json:"created_at"`
}

type DispatchLogRepository struct {
	db *gorm.DB
}

func NewDispatchLogRepository(db *gorm.DB) *DispatchLogRepository {
	return &DispatchLogRepository{db: db}
}

func (r *DispatchLogRepository) Insert(ctx context.Context, entry *DispatchLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return apperr.NewRemoteError("insert dispatch log", err)
	}
	return nil
}

// ListByUser returns the newest entries for userID first.
func (r *DispatchLogRepository) ListByUser(ctx context.Context, userID string, limit int) ([]DispatchLog, error) {
	if limit <= 0 {
		limit = 50
	}

	entries := []DispatchLog{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, apperr.NewRemoteError("list dispatch log", err)
	}
	return entries, nil
}
