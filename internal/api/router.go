package api

import (
	"crowdfund_ledger/internal/config"     // Configuration
	"crowdfund_ledger/internal/ledger"     // Ledger service
	"crowdfund_ledger/internal/metrics"    // Prometheus collectors
	"crowdfund_ledger/internal/middleware" // Auth and rate limiting

	"github.com/gin-gonic/gin" // Gin web framework
)

// NewRouter wires every route over svc. limiter may be nil to disable rate limiting.
func NewRouter(svc *ledger.Service, cfg *config.Config, limiter *middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// limit guards mutating routes
	limit := func(c *gin.Context) { c.Next() }
	if limiter != nil {
		limit = limiter.Middleware()
	}
	if cfg.MetricsEnabled {
		r.Use(metrics.GinMiddleware())
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	// Auth routes
	r.POST("/user", limit, RegisterHandler(svc))
	r.POST("/user/login", limit, LoginHandler(svc, cfg.JWTSecret))

	auth := middleware.JWTAuthMiddleware(cfg.JWTSecret)

	// Wallet routes
	wallet := r.Group("/wallet", auth)
	wallet.GET("", GetWalletHandler(svc))
	wallet.POST("/deposit", limit, DepositHandler(svc))
	wallet.POST("/withdraw", limit, WithdrawHandler(svc))
	wallet.GET("/transactions", GetTransactionHistoryHandler(svc))
	wallet.GET("/reconcile", ReconcileHandler(svc))

	// Fund request routes
	requests := r.Group("/fund-requests", auth)
	requests.GET("", ListFundRequestsHandler(svc))
	requests.POST("", limit, CreateFundRequestHandler(svc))
	requests.GET("/:id", GetFundRequestHandler(svc))
	requests.POST("/:id/cancel", limit, CancelFundRequestHandler(svc))
	requests.POST("/:id/endorse", limit, EndorseHandler(svc))
	requests.POST("/:id/documents", limit, AttachDocumentHandler(svc))
	requests.POST("/:id/donations", limit, DonateHandler(svc))
	requests.GET("/:id/donations", ListRequestDonationsHandler(svc))

	// Donor routes
	donations := r.Group("/donations", auth)
	donations.GET("", MyDonationsHandler(svc))
	donations.GET("/total", TotalDonatedHandler(svc))

	// Notification routes
	notifications := r.Group("/notifications", auth)
	notifications.GET("", ListNotificationsHandler(svc))
	notifications.POST("/:id/read", MarkNotificationReadHandler(svc))

	// Admin routes, role checked against the store on every request
	admin := r.Group("/admin", auth, middleware.AdminOnlyMiddleware(svc))
	admin.GET("/users", ListUsersHandler(svc))
	admin.GET("/transactions", ListTransactionsHandler(svc))
	admin.GET("/reconcile/:userID", AdminReconcileHandler(svc))

	return r
}
