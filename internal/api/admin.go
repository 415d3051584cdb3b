package api

import (
	"net/http" // HTTP status codes
	"time"     // Date filters

	"crowdfund_ledger/internal/domain" // Domain models
	"crowdfund_ledger/internal/ledger" // Ledger service
	"crowdfund_ledger/internal/store"  // Filters

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Money
)

// UserAdminResponse represents the user data returned to admin
type UserAdminResponse struct {
	ID       string          `json:"id"`       // User ID
	Username string          `json:"username"` // Username
	Role     string          `json:"role"`     // User role
	Balance  decimal.Decimal `json:"balance"`  // Wallet balance
	Created  time.Time       `json:"created_at"`
}

// ListUsersHandler returns all users with their wallet balance
func ListUsersHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.Users(c.Request.Context(), pageFromQuery(c))
		if err != nil {
			respondError(c, err)
			return
		}
		users := make([]UserAdminResponse, len(list.Items))
		for i, u := range list.Items {
			users[i] = UserAdminResponse{
				ID:       u.ID,
				Username: u.Username,
				Role:     u.Role,
				Balance:  u.Wallet.Balance,
				Created:  u.CreatedAt,
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"users":       users,           // List of users
			"page":        list.Page,       // Current page
			"page_size":   list.PageSize,   // Page size
			"total":       list.Total,      // Total number of users
			"total_pages": list.TotalPages, // Total pages
		})
	}
}

// parseDate accepts RFC 3339 timestamps or plain dates
func parseDate(s string) (*time.Time, bool) {
	if s == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, true
		}
	}
	return nil, false
}

// ListTransactionsHandler returns all wallet transactions, optionally filtered by user_id, type, from and to
func ListTransactionsHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := store.TransactionFilter{
			UserID: c.Query("user_id"),
			Kind:   domain.TransactionKind(c.Query("type")),
		}
		if filter.Kind != "" && !filter.Kind.Valid() {
			badRequest(c, "Unknown transaction type")
			return
		}
		var ok bool
		if filter.From, ok = parseDate(c.Query("from")); !ok {
			badRequest(c, "Invalid from date")
			return
		}
		if filter.To, ok = parseDate(c.Query("to")); !ok {
			badRequest(c, "Invalid to date")
			return
		}
		list, err := svc.Transactions(c.Request.Context(), filter, pageFromQuery(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"transactions": list.Items,      // List of transactions
			"page":         list.Page,       // Current page
			"page_size":    list.PageSize,   // Page size
			"total":        list.Total,      // Total number of transactions
			"total_pages":  list.TotalPages, // Total pages
		})
	}
}

// AdminReconcileHandler reconciles any user's wallet
func AdminReconcileHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := svc.Reconcile(c.Request.Context(), c.Param("userID"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}
