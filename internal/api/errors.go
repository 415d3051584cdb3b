package api

import (
	"errors"   // Error matching
	"net/http" // HTTP status codes
	"strconv"  // Query parsing

	"crowdfund_ledger/internal/domain"     // Ledger errors
	"crowdfund_ledger/internal/middleware" // Acting user
	"crowdfund_ledger/internal/store"      // Paging

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"` // Human readable message
	Code  string `json:"code"`  // Stable machine readable code
}

var statusByError = []struct {
	err    error
	status int
}{
	{domain.ErrInvalidAmount, http.StatusBadRequest},
	{domain.ErrInvalidInput, http.StatusBadRequest},
	{domain.ErrInsufficientFunds, http.StatusUnprocessableEntity},
	{domain.ErrRequestNotFound, http.StatusNotFound},
	{domain.ErrWalletNotFound, http.StatusNotFound},
	{domain.ErrUserNotFound, http.StatusNotFound},
	{domain.ErrNotificationNotFound, http.StatusNotFound},
	{domain.ErrNotOwner, http.StatusForbidden},
	{domain.ErrSelfVerificationNotAllowed, http.StatusForbidden},
	{domain.ErrRequestNotActive, http.StatusConflict},
	{domain.ErrInvalidTransition, http.StatusConflict},
	{domain.ErrDuplicateEndorsement, http.StatusConflict},
	{domain.ErrUserExists, http.StatusConflict},
	{domain.ErrTransientConflict, http.StatusConflict},
}

// statusFor maps a ledger error to its HTTP status, 500 for anything else
func statusFor(err error) int {
	for _, s := range statusByError {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}

// respondError writes err as an ErrorResponse. Unknown errors are logged and
// reported without detail.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"path":    c.FullPath(),
			"user_id": middleware.UserID(c),
			"error":   err.Error(),
		}).Error("Request failed")
		c.JSON(status, ErrorResponse{Error: "Internal server error", Code: "internal"})
		return
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: domain.Kind(err)})
}

// badRequest reports a malformed body or query
func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: "invalid_input"})
}

// pageFromQuery reads page and page_size (default 1 and 20, size at most 100)
func pageFromQuery(c *gin.Context) store.Page {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("page_size"))
	return store.NewPage(page, size)
}
