package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"elsahm-admin/apperr"
	"elsahm-admin/models"
	"elsahm-admin/push"
	"elsahm-admin/relational"
)

// Mode selects the channels a dispatch attempts.
type Mode string

const (
	ModeInApp Mode = "in_app"
	ModePush  Mode = "push"
	ModeBoth  Mode = "both"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeInApp, ModePush, ModeBoth:
		return true
	}
	return false
}

func (m Mode) inApp() bool { return m == ModeInApp || m == ModeBoth }
func (m Mode) push() bool  { return m == ModePush || m == ModeBoth }

// Outcome summarizes a dispatch across the attempted channels.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePartial Outcome = "partial"
	OutcomeFailure Outcome = "failure"
)

const (
	ChannelInApp = "in_app"
	ChannelPush  = "push"
)

// Message is one notification to an app user.
type Message struct {
	UserID       string         `json:"userId"`
	Title        string         `json:"title"`
	Body         string         `json:"body"`
	Type         string         `json:"type"`
	TargetScreen string         `json:"targetScreen,omitempty"`
	Data         map[string]any `json:"additionalData,omitempty"`

	// Tokens address devices directly on the push channel.
	Tokens []string `json:"-"`
	// ComplaintID is recorded in the dispatch log only.
	ComplaintID string `json:"-"`
}

// ChannelResult is what happened on one channel.
type ChannelResult struct {
	Attempted  bool   `json:"attempted"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
	Recipients int    `json:"recipients,omitempty"`
}

// DispatchReport collects both channel results.
type DispatchReport struct {
	InApp   ChannelResult `json:"inApp"`
	Push    ChannelResult `json:"push"`
	Outcome Outcome       `json:"outcome"`
}

func outcomeOf(results ...ChannelResult) Outcome {
	attempted, ok := 0, 0
	for _, r := range results {
		if !r.Attempted {
			continue
		}
		attempted++
		if r.OK {
			ok++
		}
	}
	switch {
	case attempted == 0 || ok == 0:
		return OutcomeFailure
	case ok == attempted:
		return OutcomeSuccess
	default:
		return OutcomePartial
	}
}

// FailedChannels lists the attempted channels that failed.
func (r DispatchReport) FailedChannels() []string {
	var failed []string
	if r.InApp.Attempted && !r.InApp.OK {
		failed = append(failed, ChannelInApp)
	}
	if r.Push.Attempted && !r.Push.OK {
		failed = append(failed, ChannelPush)
	}
	return failed
}

// Text is the banner shown to the operator.
func (r DispatchReport) Text() string {
	switch r.Outcome {
	case OutcomeSuccess:
		if r.InApp.Attempted && r.Push.Attempted {
			return "تم إرسال الإشعار داخل التطبيق وكإشعار فوري بنجاح"
		}
		if r.Push.Attempted {
			return "تم إرسال الإشعار الفوري بنجاح"
		}
		return "تم إرسال الإشعار داخل التطبيق بنجاح"
	case OutcomePartial:
		if r.InApp.OK {
			return "تم الإرسال داخل التطبيق فقط، فشل الإشعار الفوري"
		}
		return "تم إرسال الإشعار الفوري فقط، فشل الإشعار داخل التطبيق"
	default:
		return "فشل إرسال الإشعار"
	}
}

// Dispatcher delivers a message through the in-app store and the push
// gateway. Each channel is attempted on its own; one failing never stops
// the other.
type Dispatcher struct {
	notifications NotificationStore
	push          PushSender
	log           DispatchLogger
}

// NewDispatcher creates a dispatcher. A nil push sender makes the push
// channel fail on every attempt; a nil logger disables the dispatch log.
func NewDispatcher(notifications NotificationStore, sender PushSender, logger DispatchLogger) *Dispatcher {
	return &Dispatcher{
		notifications: notifications,
		push:          sender,
		log:           logger,
	}
}

// attempt runs fn, turning a panic into an error.
func attempt(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

// Dispatch sends msg on the channels selected by mode. The returned error
// is only for requests refused before any call; delivery failures are in
// the report.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message, mode Mode) (DispatchReport, error) {
	if !mode.Valid() {
		return DispatchReport{}, apperr.NewValidationError("mode", "طريقة إرسال غير معروفة")
	}
	msg.UserID = strings.TrimSpace(msg.UserID)
	if msg.UserID == "" && !(mode == ModePush && len(msg.Tokens) > 0) {
		return DispatchReport{}, apperr.NewPreconditionError("لا يوجد معرف مستخدم لإرسال الإشعار إليه")
	}
	if strings.TrimSpace(msg.Title) == "" {
		return DispatchReport{}, apperr.NewValidationError("title", "عنوان الإشعار مطلوب")
	}
	if strings.TrimSpace(msg.Body) == "" {
		return DispatchReport{}, apperr.NewValidationError("body", "نص الإشعار مطلوب")
	}
	if msg.Type == "" {
		msg.Type = models.NotificationGeneral
	}

	var report DispatchReport

	if mode.inApp() {
		report.InApp.Attempted = true
		err := attempt(func() error { return d.sendInApp(ctx, msg) })
		if err != nil {
			log.Printf("In-app notification for user %s failed: %v", msg.UserID, err)
			report.InApp.Error = err.Error()
		} else {
			report.InApp.OK = true
		}
	}

	if mode.push() {
		report.Push.Attempted = true
		var result *push.Result
		err := attempt(func() error {
			var err error
			result, err = d.sendPush(ctx, msg)
			return err
		})
		if err != nil {
			log.Printf("Push notification for user %s failed: %v", msg.UserID, err)
			report.Push.Error = err.Error()
		} else {
			report.Push.OK = true
			if result != nil {
				report.Push.Recipients = result.Recipients
			}
		}
	}

	report.Outcome = outcomeOf(report.InApp, report.Push)
	log.Printf("Dispatch to user %s (%s): %s", msg.UserID, mode, report.Outcome)

	d.record(ctx, msg, mode, report)
	return report, nil
}

func (d *Dispatcher) sendInApp(ctx context.Context, msg Message) error {
	if d.notifications == nil {
		return fmt.Errorf("in-app notifications are not configured")
	}
	if msg.UserID == "" {
		return fmt.Errorf("no user id for in-app notification")
	}
	return d.notifications.Insert(ctx, &models.Notification{
		UserID:         msg.UserID,
		Title:          msg.Title,
		Body:           msg.Body,
		Type:           msg.Type,
		TargetScreen:   msg.TargetScreen,
		AdditionalData: msg.Data,
	})
}

func (d *Dispatcher) sendPush(ctx context.Context, msg Message) (*push.Result, error) {
	if d.push == nil {
		return nil, fmt.Errorf("push notifications are not configured")
	}

	data := map[string]any{"type": msg.Type}
	if msg.TargetScreen != "" {
		data["targetScreen"] = msg.TargetScreen
	}
	for k, v := range msg.Data {
		data[k] = v
	}

	req := push.Request{Title: msg.Title, Body: msg.Body, Data: data}
	if len(msg.Tokens) > 0 {
		req.PlayerIDs = msg.Tokens
	} else {
		req.ExternalUserIDs = []string{msg.UserID}
	}
	return d.push.Send(ctx, req)
}

// record writes the dispatch log entry. Failures are logged only.
func (d *Dispatcher) record(ctx context.Context, msg Message, mode Mode, report DispatchReport) {
	if d.log == nil {
		return
	}
	entry := &relational.DispatchLog{
		ComplaintID:    msg.ComplaintID,
		UserID:         msg.UserID,
		Kind:           msg.Type,
		Mode:           string(mode),
		Outcome:        string(report.Outcome),
		InAppOK:        report.InApp.OK,
		PushOK:         report.Push.OK,
		FailedChannels: report.FailedChannels(),
		Message:        msg.Title,
	}
	if err := attempt(func() error { return d.log.Insert(ctx, entry) }); err != nil {
		log.Printf("Failed to record dispatch log: %v", err)
	}
}

// NotifyComplaintAuthor notifies the author of complaint. A complaint
// without an author is refused before any call.
func (d *Dispatcher) NotifyComplaintAuthor(ctx context.Context, complaint *models.Complaint, title, body string, mode Mode) (DispatchReport, error) {
	if complaint == nil || !complaint.HasAuthor() {
		return DispatchReport{}, apperr.NewPreconditionError("الشكوى لا تحتوي على معرف مستخدم")
	}
	id := complaint.ID.Hex()
	return d.Dispatch(ctx, Message{
		UserID:       complaint.UserID,
		Title:        title,
		Body:         body,
		Type:         models.NotificationComplaintResponse,
		TargetScreen: "complaint_details",
		Data: map[string]any{
			"complaintId": id,
			"status":      string(complaint.Status),
		},
		ComplaintID: id,
	}, mode)
}

// WalletRechargeMessage is the notification announcing a wallet credit.
func WalletRechargeMessage(userID string, amount float64, currency string) Message {
	return Message{
		UserID:       userID,
		Title:        "تم شحن رصيدك",
		Body:         fmt.Sprintf("تم إضافة %s %s إلى محفظتك", formatAmount(amount), currency),
		Type:         models.NotificationWalletRecharge,
		TargetScreen: "wallet",
		Data: map[string]any{
			"amount":   amount,
			"currency": currency,
		},
	}
}

func formatAmount(amount float64) string {
	s := fmt.Sprintf("%.2f", amount)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
