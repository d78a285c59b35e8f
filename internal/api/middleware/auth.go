package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/domain"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/service"
)

const accountKey = "ims.account"

// BasicAuth authenticates every request against the account store.
func BasicAuth(accounts *service.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="ims"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		account, err := accounts.Authenticate(c.Request.Context(), service.Credentials{Username: username, Password: password})
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrValidation):
			c.Header("WWW-Authenticate", `Basic realm="ims"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
			return
		default:
			log.Error().Err(err).Msg("authentication failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "authentication failed"})
			return
		}

		c.Set(accountKey, account)
		c.Next()
	}
}

// Account returns the account stored by BasicAuth.
func Account(c *gin.Context) (domain.Account, bool) {
	v, ok := c.Get(accountKey)
	if !ok {
		return domain.Account{}, false
	}
	account, ok := v.(domain.Account)
	return account, ok
}
