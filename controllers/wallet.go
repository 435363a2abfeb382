package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"

	middlewares "elsahm-admin/middleware"
	"elsahm-admin/services"

	"github.com/gin-gonic/gin"
)

// CreditBalance credits a user's wallet. The amount is kept as raw JSON so
// any value the client typed, out-of-range numbers included, is rejected
// with a field error instead of a generic bind failure.
func (h *Handler) CreditBalance(c *gin.Context) {
	var input struct {
		Amount json.RawMessage `json:"amount"`
		Notes  string          `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	result, err := h.opts.Balance.Credit(c.Request.Context(), services.CreditInput{
		UserID:   c.Param("id"),
		Amount:   amountText(input.Amount),
		Notes:    input.Notes,
		Operator: middlewares.OperatorFrom(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	body := gin.H{
		"message":     "Balance updated",
		"transaction": result.Transaction,
	}
	if result.Notification != nil {
		body["notification"] = result.Notification
		body["notificationMessage"] = result.Notification.Text()
	}
	if result.NotifyError != "" {
		body["notificationError"] = result.NotifyError
	}
	c.JSON(http.StatusOK, body)
}

func (h *Handler) GetUserWallet(c *gin.Context) {
	user, err := h.opts.Balance.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":          user.ID,
		"name":        user.Name,
		"balance":     user.Balance,
		"currency":    h.opts.Currency,
		"lastUpdated": user.LastUpdated,
	})
}

func (h *Handler) ListTransactions(c *gin.Context) {
	txs, err := h.opts.Balance.ListTransactions(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, txs)
}

// amountText returns the amount as the client wrote it. Strings are
// unquoted, null is empty.
func amountText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if raw[0] == '"' && json.Unmarshal(raw, &s) == nil {
		return s
	}
	return string(raw)
}
