package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ComplaintStatus is the lifecycle state of a complaint.
type ComplaintStatus string

const (
	StatusOpen       ComplaintStatus = "open"
	StatusInProgress ComplaintStatus = "in-progress"
	StatusClosed     ComplaintStatus = "closed"
)

// Valid reports whether s is one of the known statuses.
func (s ComplaintStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusClosed:
		return true
	}
	return false
}

// StatusAfterAdminReply returns the status a complaint moves to when an
// operator reply is appended. Only open moves; closed never changes here.
func StatusAfterAdminReply(s ComplaintStatus) ComplaintStatus {
	if s == StatusOpen {
		return StatusInProgress
	}
	return s
}

type Complaint struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID      string             `json:"userId" bson:"userId"`
	UserName    string             `json:"userName" bson:"userName"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description" bson:"description"`
	Status      ComplaintStatus    `json:"status" bson:"status"`
	ImageURL    string             `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	Responses   []Response         `json:"responses" bson:"responses"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// Response is one message in a complaint thread.
type Response struct {
	ID            string    `json:"id" bson:"id"`
	ResponseText  string    `json:"responseText" bson:"responseText"`
	ResponderID   string    `json:"responderId" bson:"responderId"`
	ResponderName string    `json:"responderName" bson:"responderName"`
	IsAdmin       bool      `json:"isAdmin" bson:"isAdmin"`
	ImageURL      string    `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`

	// Pending marks an optimistic response not yet seen in the store.
	Pending bool `json:"pending,omitempty" bson:"-"`
}

// CanReply reports whether responses may be appended.
func (c *Complaint) CanReply() bool {
	return c.Status != StatusClosed
}

// HasAuthor reports whether the complaint carries a user to notify.
func (c *Complaint) HasAuthor() bool {
	return strings.TrimSpace(c.UserID) != ""
}

// SameMessage matches an optimistic response against a stored one by
// content and timestamp. Ids are not compared: the local id of an
// optimistic entry is not guaranteed to be the stored one.
func SameMessage(local, stored Response) bool {
	if local.ResponseText != stored.ResponseText || local.IsAdmin != stored.IsAdmin {
		return false
	}
	if local.ImageURL != stored.ImageURL {
		return false
	}
	d := local.CreatedAt.Sub(stored.CreatedAt)
	if d < 0 {
		d = -d
	}
	return d <= time.Second
}

// ReconcileResponses merges optimistic responses into the authoritative
// list. Pending entries that match a stored response are dropped; the rest
// are kept after the stored ones, still marked pending.
func ReconcileResponses(stored, pending []Response) (merged []Response, stillPending []Response) {
	merged = make([]Response, 0, len(stored)+len(pending))
	merged = append(merged, stored...)

	for _, p := range pending {
		matched := false
		for _, s := range stored {
			if SameMessage(p, s) {
				matched = true
				break
			}
		}
		if !matched {
			p.Pending = true
			stillPending = append(stillPending, p)
			merged = append(merged, p)
		}
	}
	return merged, stillPending
}
