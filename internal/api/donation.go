package api

import (
	"net/http" // HTTP status codes

	"crowdfund_ledger/internal/ledger"     // Ledger service
	"crowdfund_ledger/internal/middleware" // Acting user

	"github.com/gin-gonic/gin" // Gin web framework
)

// MyDonationsHandler lists the authenticated user's donations
func MyDonationsHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.DonationsByDonor(c.Request.Context(), middleware.UserID(c), pageFromQuery(c))
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

// TotalDonatedHandler sums the authenticated user's donations
func TotalDonatedHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		total, err := svc.TotalDonated(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"total_donated": total})
	}
}
