package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/models"
)

const (
	// AccountKey is the context key for the calling account
	AccountKey = "account"
	// AccountHeader carries the calling account, set by the authenticating proxy
	AccountHeader = "X-Account-ID"
)

// Account reads the calling account from the X-Account-ID header and stores
// it normalized in the context. Authentication happens upstream; a missing
// header leaves the zero account, which every role check rejects.
func Account() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(AccountKey, models.ParseAccount(c.GetHeader(AccountHeader)))
		c.Next()
	}
}

// GetAccount retrieves the calling account from the Gin context.
// Returns the zero account if not found.
func GetAccount(c *gin.Context) models.Account {
	if account, exists := c.Get(AccountKey); exists {
		if a, ok := account.(models.Account); ok {
			return a
		}
	}
	return ""
}
