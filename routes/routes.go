package routes

import (
	"elsahm-admin/controllers"
	middlewares "elsahm-admin/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *controllers.Handler, parser middlewares.TokenParser, origins []string) {
	// CORS Middleware
	r.Use(middlewares.CORSMiddleware(origins))

	r.GET("/healthz", h.Healthz)

	// รวม routes
	SetupAuthRoutes(r, h)

	api := r.Group("/api", middlewares.AuthMiddleware(parser))
	SetupComplaintRoutes(api, h)
	SetupWalletRoutes(api, h)
	SetupNotificationRoutes(api, h)
	SetupPaymentMethodRoutes(api, h)
	api.GET("/stats", h.GetStats)
}

func SetupComplaintRoutes(api *gin.RouterGroup, h *controllers.Handler) {
	complaints := api.Group("/complaints")
	complaints.GET("", h.ListComplaints)
	complaints.POST("", h.CreateComplaint)
	complaints.GET("/:id", h.GetComplaint)
	complaints.DELETE("/:id", h.DeleteComplaint)
	complaints.POST("/:id/responses", h.AddResponse)
	complaints.PATCH("/:id/status", h.UpdateComplaintStatus)
	complaints.POST("/:id/reopen", h.ReopenComplaint)
	complaints.POST("/:id/notify", h.NotifyComplaintAuthor)
	complaints.GET("/:id/live", h.ComplaintLive)
}

func SetupWalletRoutes(api *gin.RouterGroup, h *controllers.Handler) {
	users := api.Group("/users")
	users.GET("/:id/wallet", h.GetUserWallet)
	users.POST("/:id/balance", h.CreditBalance)
	users.GET("/:id/transactions", h.ListTransactions)
	users.GET("/:id/dispatch-log", h.ListDispatchLog)
}

func SetupNotificationRoutes(api *gin.RouterGroup, h *controllers.Handler) {
	notifications := api.Group("/notifications")
	notifications.POST("/send", h.SendNotification)
	notifications.POST("/push", h.SendPushNotification)
	notifications.POST("/wallet-recharge", h.SendWalletRechargeNotification)
}

func SetupPaymentMethodRoutes(api *gin.RouterGroup, h *controllers.Handler) {
	methods := api.Group("/payment-methods")
	methods.GET("", h.ListPaymentMethods)
	methods.POST("", h.CreatePaymentMethod)
	methods.PUT("", h.UpsertPaymentMethod)
	methods.GET("/:id", h.GetPaymentMethod)
	methods.PUT("/:id", h.UpdatePaymentMethod)
	methods.DELETE("/:id", h.DeletePaymentMethod)
}
