package services

import (
	"context"
	"log"
	"strings"
	"time"

	"elsahm-admin/apperr"
	"elsahm-admin/imagehost"
	"elsahm-admin/models"

	"github.com/google/uuid"
)

// ReplyInput is one operator reply as received from the console.
type ReplyInput struct {
	ComplaintID string
	Text        string
	Image       *imagehost.Upload
	Operator    Operator
}

// ReplyResult is the persisted reply and the complaint after the append.
type ReplyResult struct {
	Response  models.Response   `json:"response"`
	Complaint *models.Complaint `json:"complaint"`
}

// NewComplaintInput is a complaint opened by an operator on behalf of a user.
type NewComplaintInput struct {
	UserID      string
	UserName    string
	Title       string
	Description string
	Image       *imagehost.Upload
}

// ResponseComposer validates, uploads and appends operator replies.
type ResponseComposer struct {
	store         ComplaintStore
	host          imagehost.Host
	maxImageBytes int64
	sink          OptimisticSink

	now   func() time.Time
	newID func() string
}

func NewResponseComposer(store ComplaintStore, host imagehost.Host, maxImageBytes int64) *ResponseComposer {
	return &ResponseComposer{
		store:         store,
		host:          host,
		maxImageBytes: maxImageBytes,
		now:           time.Now,
		newID:         uuid.NewString,
	}
}

// WithSink sets where persisted replies are announced.
func (c *ResponseComposer) WithSink(sink OptimisticSink) *ResponseComposer {
	c.sink = sink
	return c
}

func (c *ResponseComposer) validateImage(img *imagehost.Upload) error {
	if img == nil {
		return nil
	}
	return imagehost.Validate(*img, c.maxImageBytes)
}

func (c *ResponseComposer) upload(ctx context.Context, img *imagehost.Upload) (string, error) {
	if img == nil {
		return "", nil
	}
	if c.host == nil {
		return "", apperr.NewPreconditionError("لا توجد خدمة رفع صور مهيأة")
	}
	url, err := c.host.Upload(ctx, *img)
	if err != nil {
		log.Printf("Image upload failed: %v", err)
		return "", apperr.NewRemoteError("upload image", err)
	}
	return url, nil
}

// Submit appends an operator reply. Input is validated before any network
// call; the image is uploaded before the append, so a failed upload leaves
// the thread untouched.
func (c *ResponseComposer) Submit(ctx context.Context, in ReplyInput) (*ReplyResult, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, apperr.NewValidationError("responseText", "نص الرد مطلوب")
	}
	if err := c.validateImage(in.Image); err != nil {
		return nil, err
	}

	complaint, err := c.store.Get(ctx, in.ComplaintID)
	if err != nil {
		return nil, err
	}
	if !complaint.CanReply() {
		return nil, apperr.ErrComplaintClosed
	}

	imageURL, err := c.upload(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	resp := models.Response{
		ID:            c.newID(),
		ResponseText:  text,
		ResponderID:   in.Operator.ID,
		ResponderName: in.Operator.Name,
		IsAdmin:       true,
		ImageURL:      imageURL,
		CreatedAt:     c.now().UTC().Truncate(time.Millisecond),
	}

	updated, err := c.store.AppendResponse(ctx, in.ComplaintID, resp, true)
	if err != nil {
		log.Printf("Failed to append response to complaint %s: %v", in.ComplaintID, err)
		return nil, err
	}

	if c.sink != nil {
		c.sink.Optimistic(in.ComplaintID, resp)
	}

	log.Printf("Response %s appended to complaint %s, status %s", resp.ID, in.ComplaintID, updated.Status)
	return &ReplyResult{Response: resp, Complaint: updated}, nil
}

// Reopen moves a complaint back to open.
func (c *ResponseComposer) Reopen(ctx context.Context, id string) error {
	return c.store.SetStatus(ctx, id, models.StatusOpen)
}

// SetStatus sets any known status explicitly.
func (c *ResponseComposer) SetStatus(ctx context.Context, id string, status models.ComplaintStatus) error {
	if !status.Valid() {
		return apperr.NewValidationError("status", "حالة غير معروفة")
	}
	return c.store.SetStatus(ctx, id, status)
}

func (c *ResponseComposer) Delete(ctx context.Context, id string) error {
	return c.store.Delete(ctx, id)
}

// CreateComplaint opens a complaint with an optional attached image.
func (c *ResponseComposer) CreateComplaint(ctx context.Context, in NewComplaintInput) (*models.Complaint, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return nil, apperr.NewValidationError("userId", "معرف المستخدم مطلوب")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.NewValidationError("title", "عنوان الشكوى مطلوب")
	}
	if err := c.validateImage(in.Image); err != nil {
		return nil, err
	}

	imageURL, err := c.upload(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	complaint := &models.Complaint{
		UserID:      strings.TrimSpace(in.UserID),
		UserName:    in.UserName,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Status:      models.StatusOpen,
		ImageURL:    imageURL,
		Responses:   []models.Response{},
		CreatedAt:   c.now().UTC(),
	}
	if err := c.store.Create(ctx, complaint); err != nil {
		return nil, err
	}
	return complaint, nil
}
