package controllers

import (
	"net/http"
	"strconv"

	"elsahm-admin/relational"

	"github.com/gin-gonic/gin"
)

type paymentMethodInput struct {
	Name       string   `json:"name"`
	NameAr     string   `json:"name_ar"`
	Details    string   `json:"details"`
	Currencies []string `json:"currencies"`
	IsActive   *bool    `json:"is_active"`
	SortOrder  int      `json:"sort_order"`
}

func (in paymentMethodInput) model() *relational.PaymentMethod {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return &relational.PaymentMethod{
		Name:       in.Name,
		NameAr:     in.NameAr,
		Details:    in.Details,
		Currencies: in.Currencies,
		IsActive:   active,
		SortOrder:  in.SortOrder,
	}
}

// paymentMethods aborts with 503 when no relational backend is configured.
func (h *Handler) paymentMethods(c *gin.Context) *relational.PaymentMethodRepository {
	if h.opts.PaymentMethods == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Relational backend not configured"})
		return nil
	}
	return h.opts.PaymentMethods
}

func paymentMethodID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment method ID"})
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) ListPaymentMethods(c *gin.Context) {
	repo := h.paymentMethods(c)
	if repo == nil {
		return
	}
	methods, err := repo.List(c.Request.Context(), c.Query("active") == "1")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, methods)
}

func (h *Handler) GetPaymentMethod(c *gin.Context) {
	repo := h.paymentMethods(c)
	if repo == nil {
		return
	}
	id, ok := paymentMethodID(c)
	if !ok {
		return
	}
	method, err := repo.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, method)
}

func (h *Handler) CreatePaymentMethod(c *gin.Context) {
	repo := h.paymentMethods(c)
	if repo == nil {
		return
	}
	var input paymentMethodInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	method := input.model()
	if err := repo.Create(c.Request.Context(), method); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, method)
}

func (h *Handler) UpdatePaymentMethod(c *gin.Context) {
	repo := h.paymentMethods(c)
	if repo == nil {
		return
	}
	id, ok := paymentMethodID(c)
	if !ok {
		return
	}
	var patch relational.PaymentMethodPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	method, err := repo.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, method)
}

// UpsertPaymentMethod creates or replaces a method by name.
func (h *Handler) UpsertPaymentMethod(c *gin.Context) {
	repo := h.paymentMethods(c)
	if repo == nil {
		return
	}
	var input paymentMethodInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	method, err := repo.Upsert(c.Request.Context(), input.model())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, method)
}

func (h *Handler) DeletePaymentMethod(c *gin.Context) {
	repo := h.paymentMethods(c)
	if repo == nil {
		return
	}
	id, ok := paymentMethodID(c)
	if !ok {
		return
	}
	if err := repo.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment method deleted"})
}
