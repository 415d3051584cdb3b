package api

import (
	"net/http" // HTTP status codes

	"crowdfund_ledger/internal/ledger"     // Ledger service
	"crowdfund_ledger/internal/middleware" // Acting user

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Money
)

// DepositRequest is the body of POST /wallet/deposit
type DepositRequest struct {
	Amount decimal.Decimal `json:"amount"` // Deposit amount, at most 2 decimal places
	Method string          `json:"method"` // Funding method, e.g. card
}

// WithdrawRequest is the body of POST /wallet/withdraw
type WithdrawRequest struct {
	Amount decimal.Decimal `json:"amount"` // Withdrawal amount
}

// GetWalletHandler returns wallet info for the authenticated user
func GetWalletHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		wallet, hit, err := svc.Wallet(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"wallet": wallet, "cached": hit})
	}
}

// DepositHandler credits the authenticated user's wallet
func DepositHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DepositRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid amount")
			return
		}
		if req.Method == "" {
			req.Method = "card" // Default funding method
		}
		tx, err := svc.Deposit(c.Request.Context(), middleware.UserID(c), req.Amount, req.Method)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Deposit successful", "transaction": tx})
	}
}

// WithdrawHandler debits the authenticated user's wallet
func WithdrawHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req WithdrawRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid amount")
			return
		}
		tx, err := svc.Withdraw(c.Request.Context(), middleware.UserID(c), req.Amount)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Withdrawal successful", "transaction": tx})
	}
}

// GetTransactionHistoryHandler returns the authenticated user's wallet transactions, newest first
func GetTransactionHistoryHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, hit, err := svc.History(c.Request.Context(), middleware.UserID(c), pageFromQuery(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"transactions": list.Items,      // Page of transactions
			"page":         list.Page,       // Current page
			"page_size":    list.PageSize,   // Page size
			"total":        list.Total,      // Total transactions
			"total_pages":  list.TotalPages, // Total pages
			"cached":       hit,             // Served from a snapshot
		})
	}
}

// ReconcileHandler compares the authenticated user's balance with their ledger
func ReconcileHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := svc.Reconcile(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}
