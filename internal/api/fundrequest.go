package api

import (
	"net/http" // HTTP status codes
	"time"     // Deadlines

	"crowdfund_ledger/internal/domain"     // Domain models
	"crowdfund_ledger/internal/ledger"     // Ledger service
	"crowdfund_ledger/internal/middleware" // Acting user
	"crowdfund_ledger/internal/store"      // Filters

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Money
)

// CreateFundRequestRequest is the body of POST /fund-requests
type CreateFundRequestRequest struct {
	Title        string          `json:"title" binding:"required"`
	Description  string          `json:"description"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	Category     domain.Category `json:"category" binding:"required"`
	Urgency      domain.Urgency  `json:"urgency" binding:"required"`
	Deadline     *time.Time      `json:"deadline"` // RFC 3339, optional
}

// AttachDocumentRequest is the body of POST /fund-requests/:id/documents
type AttachDocumentRequest struct {
	URI string `json:"uri" binding:"required"` // Already uploaded document
}

// DonateRequest is the body of POST /fund-requests/:id/donations
type DonateRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	IsAnonymous bool            `json:"is_anonymous"`
	Message     *string         `json:"message"`
}

// ListFundRequestsHandler lists requests filtered by status, category and owner_id
func ListFundRequestsHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := store.FundRequestFilter{
			OwnerID:  c.Query("owner_id"),
			Status:   domain.Status(c.Query("status")),
			Category: domain.Category(c.Query("category")),
		}
		if filter.Status != "" && !filter.Status.Valid() {
			badRequest(c, "Unknown status")
			return
		}
		if filter.Category != "" && !filter.Category.Valid() {
			badRequest(c, "Unknown category")
			return
		}
		list, err := svc.FundRequests(c.Request.Context(), filter, pageFromQuery(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"fund_requests": list.Items,
			"page":          list.Page,
			"page_size":     list.PageSize,
			"total":         list.Total,
			"total_pages":   list.TotalPages,
		})
	}
}

// CreateFundRequestHandler opens a fund request owned by the authenticated user
func CreateFundRequestHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateFundRequestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		r, err := svc.CreateFundRequest(c.Request.Context(), middleware.UserID(c), domain.FundRequestDraft{
			Title:        req.Title,
			Description:  req.Description,
			TargetAmount: req.TargetAmount,
			Category:     req.Category,
			Urgency:      req.Urgency,
			Deadline:     req.Deadline,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"fund_request": r})
	}
}

// GetFundRequestHandler returns one request
func GetFundRequestHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, hit, err := svc.FundRequest(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"fund_request": r, "remaining": r.Remaining(), "cached": hit})
	}
}

// CancelFundRequestHandler cancels the authenticated owner's active request
func CancelFundRequestHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, err := svc.CancelFundRequest(c.Request.Context(), c.Param("id"), middleware.UserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"fund_request": r})
	}
}

// EndorseHandler records the authenticated user's endorsement
func EndorseHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, err := svc.Endorse(c.Request.Context(), c.Param("id"), middleware.UserID(c))
		if err != nil {
			respondError(c, err) // Replays are 409 duplicate_endorsement
			return
		}
		c.JSON(http.StatusOK, gin.H{"fund_request": r, "threshold": svc.VerificationThreshold()})
	}
}

// AttachDocumentHandler appends a document URI to the owner's request
func AttachDocumentHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AttachDocumentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		r, err := svc.AttachDocument(c.Request.Context(), c.Param("id"), middleware.UserID(c), req.URI)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"fund_request": r})
	}
}

// DonateHandler settles a donation from the authenticated user's wallet
func DonateHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DonateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid amount")
			return
		}
		receipt, err := svc.Donate(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.Amount, req.IsAnonymous, req.Message)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, receipt)
	}
}

// ListRequestDonationsHandler lists donations to a request, hiding anonymous donors
func ListRequestDonationsHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.DonationsForRequest(c.Request.Context(), middleware.UserID(c), c.Param("id"), pageFromQuery(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"donations":   list.Items,
			"page":        list.Page,
			"page_size":   list.PageSize,
			"total":       list.Total,
			"total_pages": list.TotalPages,
		})
	}
}
