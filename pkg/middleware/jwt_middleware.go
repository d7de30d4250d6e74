package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pmsportal/pkg/utils"
)

const SessionCookie = "pms_session"

// Context keys set by JWTAuthMiddleware.
const (
	CtxUserID     = "user_id"
	CtxRole       = "Role"
	CtxNuvamaCode = "nuvama_code"
)

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

// JWTAuthMiddleware accepts a bearer token or the session cookie.
func JWTAuthMiddleware(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			utils.RespondError(c, http.StatusUnauthorized, "Authorization header missing or invalid")
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(CtxUserID, claims.Subject)
		c.Set(CtxRole, claims.Role)
		c.Set(CtxNuvamaCode, claims.NuvamaCode)
		c.Next()
	}
}

func RoleMiddleware(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(CtxRole)
		for _, r := range allowed {
			if role == r {
				c.Next()
				return
			}
		}
		utils.RespondError(c, http.StatusForbidden, "Forbidden: insufficient permissions")
		c.Abort()
	}
}

// ScopeNuvamaCode resolves the account a request acts on. Admins may name any account;
// clients get their own, and naming another one is forbidden.
func ScopeNuvamaCode(c *gin.Context, requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if c.GetString(CtxRole) == utils.RoleAdmin {
		return requested, nil
	}
	own := c.GetString(CtxNuvamaCode)
	if own == "" {
		return "", utils.ErrForbidden
	}
	if requested != "" && !strings.EqualFold(requested, own) {
		return "", fmt.Errorf("%w: account %s is not yours", utils.ErrForbidden, requested)
	}
	return own, nil
}
