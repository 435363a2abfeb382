package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"elsahm-admin/apperr"
	"elsahm-admin/models"
	"elsahm-admin/services"

	"github.com/gin-gonic/gin"
)

// SendNotification writes the in-app record and pushes to the user.
func (h *Handler) SendNotification(c *gin.Context) {
	var input struct {
		UserID         string         `json:"userId"`
		Title          string         `json:"title"`
		Body           string         `json:"body"`
		Type           string         `json:"type"`
		TargetScreen   string         `json:"targetScreen"`
		AdditionalData map[string]any `json:"additionalData"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if strings.TrimSpace(input.UserID) == "" {
		respondError(c, apperr.NewValidationError("userId", "معرف المستخدم مطلوب"))
		return
	}

	report, err := h.opts.Dispatcher.Dispatch(c.Request.Context(), services.Message{
		UserID:       input.UserID,
		Title:        input.Title,
		Body:         input.Body,
		Type:         input.Type,
		TargetScreen: input.TargetScreen,
		Data:         input.AdditionalData,
	}, services.ModeBoth)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(statusForReport(report), gin.H{"report": report, "message": report.Text()})
}

// SendPushNotification pushes to a device token or a user, without an
// in-app record.
func (h *Handler) SendPushNotification(c *gin.Context) {
	var input struct {
		Token        string `json:"token"`
		UserID       string `json:"userId"`
		Notification struct {
			Title string `json:"title"`
			Body  string `json:"body"`
		} `json:"notification"`
		Data map[string]any `json:"data"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if input.Token == "" && input.UserID == "" {
		respondError(c, apperr.NewValidationError("token", "يجب تحديد رمز الجهاز أو معرف المستخدم"))
		return
	}

	msg := services.Message{
		UserID: input.UserID,
		Title:  input.Notification.Title,
		Body:   input.Notification.Body,
		Type:   models.NotificationGeneral,
		Data:   input.Data,
	}
	if input.Token != "" {
		msg.Tokens = []string{input.Token}
	}

	report, err := h.opts.Dispatcher.Dispatch(c.Request.Context(), msg, services.ModePush)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(statusForReport(report), gin.H{"report": report, "message": report.Text()})
}

// SendWalletRechargeNotification announces a credit that was applied
// elsewhere.
func (h *Handler) SendWalletRechargeNotification(c *gin.Context) {
	var input struct {
		UserID   string  `json:"userId"`
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if strings.TrimSpace(input.UserID) == "" {
		respondError(c, apperr.NewValidationError("userId", "معرف المستخدم مطلوب"))
		return
	}
	if input.Amount <= 0 {
		respondError(c, apperr.NewValidationError("amount", "المبلغ يجب أن يكون أكبر من صفر"))
		return
	}
	if input.Currency == "" {
		input.Currency = h.opts.Currency
	}

	msg := services.WalletRechargeMessage(input.UserID, input.Amount, input.Currency)
	report, err := h.opts.Dispatcher.Dispatch(c.Request.Context(), msg, services.ModeBoth)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(statusForReport(report), gin.H{"report": report, "message": report.Text()})
}

// ListDispatchLog returns the recorded dispatches for a user.
func (h *Handler) ListDispatchLog(c *gin.Context) {
	if h.opts.DispatchLog == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Relational backend not configured"})
		return
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit", "field": "limit"})
			return
		}
		limit = n
	}

	entries, err := h.opts.DispatchLog.ListByUser(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
