package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows credentialed requests from the listed origins only. Wildcards are
// dropped; with no origins left no CORS headers are sent and browsers keep same-origin.
func CORSMiddleware(origins []string) gin.HandlerFunc {
	allowed := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" || strings.Contains(o, "*") {
			continue
		}
		allowed = append(allowed, o)
	}
	if len(allowed) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return cors.New(cors.Config{
		AllowOrigins:     allowed,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", TraceHeader},
		ExposeHeaders:    []string{TraceHeader},
		AllowCredentials: true,
		MaxAge:           5 * time.Minute,
	})
}
