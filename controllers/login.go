package controllers

import (
	"errors"
	"log"
	"net/http"
	"time"

	middlewares "elsahm-admin/middleware"
	"elsahm-admin/services"

	"github.com/gin-gonic/gin"
)

// Login handles the shared-password gate.
func (h *Handler) Login(c *gin.Context) {
	type LoginInput struct {
		Password string `json:"password" binding:"required"`
	}

	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	token, expiresAt, err := h.opts.Auth.Login(input.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
		return
	}
	if err != nil {
		log.Println("Failed to generate token:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	// ตั้งค่า cookie
	sameSite := http.SameSiteLaxMode
	if h.opts.SecureCookie {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middlewares.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		Secure:   h.opts.SecureCookie,
		HttpOnly: true,
		SameSite: sameSite,
	})

	c.JSON(http.StatusOK, gin.H{
		"message":   "Login successful",
		"token":     token,
		"expiresAt": expiresAt,
	})
}
