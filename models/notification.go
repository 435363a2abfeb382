package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	NotificationComplaintResponse = "complaint_response"
	NotificationWalletRecharge    = "wallet_recharge"
	NotificationGeneral           = "general"
)

// Notification is the in-app record read by the mobile app.
type Notification struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID         string             `json:"userId" bson:"userId"`
	Title          string             `json:"title" bson:"title"`
	Body           string             `json:"body" bson:"body"`
	Type           string             `json:"type" bson:"type"`
	Timestamp      time.Time          `json:"timestamp" bson:"timestamp"`
	IsRead         bool               `json:"isRead" bson:"isRead"`
	TargetScreen   string             `json:"targetScreen,omitempty" bson:"targetScreen,omitempty"`
	AdditionalData map[string]any     `json:"additionalData,omitempty" bson:"additionalData,omitempty"`
}

// DashboardStats is the summary shown on the console landing page.
type DashboardStats struct {
	TotalComplaints      int64     `json:"totalComplaints"`
	OpenComplaints       int64     `json:"openComplaints"`
	InProgressComplaints int64     `json:"inProgressComplaints"`
	ClosedComplaints     int64     `json:"closedComplaints"`
	TotalUsers           int64     `json:"totalUsers"`
	TotalBalance         float64   `json:"totalBalance"`
	GeneratedAt          time.Time `json:"generatedAt"`
}
