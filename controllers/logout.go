package controllers

import (
	"net/http"

	middlewares "elsahm-admin/middleware"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Logout(c *gin.Context) {
	// ลบ cookie ที่ชื่อว่า "token"
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middlewares.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   h.opts.SecureCookie,
		HttpOnly: true,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
