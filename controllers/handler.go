package controllers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"elsahm-admin/apperr"
	"elsahm-admin/relational"
	"elsahm-admin/services"
	"elsahm-admin/threadsync"

	"github.com/gin-gonic/gin"
)

// Options are the dependencies of the HTTP handlers. PaymentMethods and
// DispatchLog are nil when no relational backend is configured.
type Options struct {
	Auth           *services.AuthService
	Complaints     services.ComplaintStore
	Composer       *services.ResponseComposer
	Dispatcher     *services.Dispatcher
	Balance        *services.BalanceService
	Stats          *services.StatsService
	PaymentMethods *relational.PaymentMethodRepository
	DispatchLog    *relational.DispatchLogRepository

	LiveSource    threadsync.ChangeSource
	Hub           *threadsync.Hub
	AlertDuration time.Duration
	Origins       []string

	MaxImageBytes int64
	Currency      string
	SecureCookie  bool
}

type Handler struct {
	opts Options
}

func NewHandler(opts Options) *Handler {
	return &Handler{opts: opts}
}

// respondError maps service errors to HTTP statuses.
func respondError(c *gin.Context, err error) {
	var verr *apperr.ValidationError
	var perr *apperr.PreconditionError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field})
	case errors.As(err, &perr):
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": perr.Message})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Complaint not found"})
	case errors.Is(err, apperr.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, apperr.ErrComplaintClosed):
		c.JSON(http.StatusConflict, gin.H{"error": "Complaint is closed"})
	case apperr.IsRemote(err):
		log.Printf("Remote call failed on %s: %v", c.FullPath(), err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		log.Printf("Unexpected error on %s: %v", c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// Healthz reports liveness.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"relational": h.opts.PaymentMethods != nil,
	})
}
