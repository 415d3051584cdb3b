package api

import (
	"net/http" // HTTP status codes

	"crowdfund_ledger/internal/ledger"     // Ledger service
	"crowdfund_ledger/internal/middleware" // Acting user

	"github.com/gin-gonic/gin" // Gin web framework
)

// ListNotificationsHandler lists the authenticated user's notifications, newest first
func ListNotificationsHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.Notifications(c.Request.Context(), middleware.UserID(c), pageFromQuery(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"notifications": list.Items,
			"page":          list.Page,
			"page_size":     list.PageSize,
			"total":         list.Total,
			"total_pages":   list.TotalPages,
		})
	}
}

// MarkNotificationReadHandler marks one notification as read
func MarkNotificationReadHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.MarkNotificationRead(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
	}
}
