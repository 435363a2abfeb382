package controllers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"elsahm-admin/apperr"
	"elsahm-admin/imagehost"
	middlewares "elsahm-admin/middleware"
	"elsahm-admin/models"
	"elsahm-admin/services"

	"github.com/gin-gonic/gin"
)

// readImage reads an optional image part. At most maxBytes+1 bytes are
// read so an oversized file still fails validation without being buffered.
func (h *Handler) readImage(c *gin.Context, field string) (*imagehost.Upload, error) {
	file, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.NewValidationError(field, "ملف الصورة غير صالح")
	}

	f, err := file.Open()
	if err != nil {
		return nil, apperr.NewValidationError(field, "تعذر قراءة ملف الصورة")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.opts.MaxImageBytes+1))
	if err != nil {
		return nil, apperr.NewValidationError(field, "تعذر قراءة ملف الصورة")
	}

	contentType := file.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	return &imagehost.Upload{
		Filename:    file.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

func (h *Handler) ListComplaints(c *gin.Context) {
	filter := models.ComplaintFilter{
		Status:  models.ComplaintStatus(c.Query("status")),
		Keyword: c.Query("q"),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status", "field": "status"})
		return
	}

	var err error
	if v := c.Query("limit"); v != "" {
		if filter.Limit, err = strconv.ParseInt(v, 10, 64); err != nil || filter.Limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit", "field": "limit"})
			return
		}
	}
	if v := c.Query("skip"); v != "" {
		if filter.Skip, err = strconv.ParseInt(v, 10, 64); err != nil || filter.Skip < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid skip", "field": "skip"})
			return
		}
	}

	complaints, err := h.opts.Complaints.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, complaints)
}

func (h *Handler) GetComplaint(c *gin.Context) {
	complaint, err := h.opts.Complaints.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, complaint)
}

// CreateComplaint opens a complaint on behalf of a user (multipart form).
func (h *Handler) CreateComplaint(c *gin.Context) {
	image, err := h.readImage(c, "image")
	if err != nil {
		respondError(c, err)
		return
	}

	complaint, err := h.opts.Composer.CreateComplaint(c.Request.Context(), services.NewComplaintInput{
		UserID:      c.PostForm("userId"),
		UserName:    c.PostForm("userName"),
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Image:       image,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, complaint)
}

// AddResponse appends an operator reply (multipart: responseText, image).
func (h *Handler) AddResponse(c *gin.Context) {
	image, err := h.readImage(c, "image")
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.opts.Composer.Submit(c.Request.Context(), services.ReplyInput{
		ComplaintID: c.Param("id"),
		Text:        c.PostForm("responseText"),
		Image:       image,
		Operator:    middlewares.OperatorFrom(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *Handler) UpdateComplaintStatus(c *gin.Context) {
	var input struct {
		Status models.ComplaintStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "field": "status"})
		return
	}

	if err := h.opts.Composer.SetStatus(c.Request.Context(), c.Param("id"), input.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Status updated", "status": input.Status})
}

func (h *Handler) ReopenComplaint(c *gin.Context) {
	if err := h.opts.Composer.Reopen(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Complaint reopened", "status": models.StatusOpen})
}

func (h *Handler) DeleteComplaint(c *gin.Context) {
	if err := h.opts.Composer.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	log.Printf("Complaint %s deleted by %s", c.Param("id"), c.GetString(middlewares.OperatorIDKey))
	c.JSON(http.StatusOK, gin.H{"message": "Complaint deleted"})
}

// NotifyComplaintAuthor sends a notification to the author of a complaint.
func (h *Handler) NotifyComplaintAuthor(c *gin.Context) {
	var input struct {
		Title string        `json:"title"`
		Body  string        `json:"body"`
		Mode  services.Mode `json:"mode"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if input.Mode == "" {
		input.Mode = services.ModeBoth
	}

	complaint, err := h.opts.Complaints.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	report, err := h.opts.Dispatcher.NotifyComplaintAuthor(c.Request.Context(), complaint, input.Title, input.Body, input.Mode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(statusForReport(report), gin.H{"report": report, "message": report.Text()})
}

// statusForReport is 200 unless every attempted channel failed.
func statusForReport(report services.DispatchReport) int {
	if report.Outcome == services.OutcomeFailure {
		return http.StatusBadGateway
	}
	return http.StatusOK
}
