package repository

import (
	"context"
	"time"

	"elsahm-admin/apperr"
	db "elsahm-admin/database"
	"elsahm-admin/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// NotificationRepository writes the in-app notification records the mobile
// app reads.
type NotificationRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewNotificationRepository(m *db.Mongo, timeout time.Duration) *NotificationRepository {
	return &NotificationRepository{
		coll:    m.Collection(db.NotificationsCollection),
		timeout: timeout,
	}
}

func (r *NotificationRepository) Insert(ctx context.Context, n *models.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	n.ID = primitive.NewObjectID()
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}
	n.IsRead = false

	if _, err := r.coll.InsertOne(ctx, n); err != nil {
		return apperr.NewRemoteError("insert notification", err)
	}
	return nil
}
