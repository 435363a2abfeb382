package middlewares

import (
	"net/http"
	"strings"

	"elsahm-admin/services"

	"github.com/gin-gonic/gin"
)

const (
	TokenCookie     = "token"
	OperatorIDKey   = "operator_id"
	OperatorNameKey = "operator_name"
)

// TokenParser resolves a session token to the operator it was issued to.
type TokenParser interface {
	Parse(token string) (*services.Operator, error)
}

// tokenFrom reads the token cookie, then the bearer header.
func tokenFrom(c *gin.Context) string {
	if token, err := c.Cookie(TokenCookie); err == nil && token != "" {
		return token
	}
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	// browsers cannot set headers on websocket upgrades
	return c.Query("token")
}

func AuthMiddleware(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFrom(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token required"})
			c.Abort()
			return
		}

		operator, err := parser.Parse(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		// เก็บ operator ลง context
		c.Set(OperatorIDKey, operator.ID)
		c.Set(OperatorNameKey, operator.Name)
		c.Next()
	}
}

// OperatorFrom returns the operator set by AuthMiddleware.
func OperatorFrom(c *gin.Context) services.Operator {
	return services.Operator{
		ID:   c.GetString(OperatorIDKey),
		Name: c.GetString(OperatorNameKey),
	}
}
