package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// TrustedHostMiddleware 拒绝 Host 头不在白名单内的请求。
// "*" 放行任意 Host，"*.example.com" 匹配其任意子域名。
func TrustedHostMiddleware(allowed []string) gin.HandlerFunc {
	exact := make(map[string]struct{}, len(allowed))
	var suffixes []string
	anyHost := false
	for _, h := range allowed {
		h = strings.ToLower(strings.TrimSpace(h))
		switch {
		case h == "*":
			anyHost = true
		case strings.HasPrefix(h, "*."):
			suffixes = append(suffixes, h[1:])
		case h != "":
			exact[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		if anyHost {
			c.Next()
			return
		}

		host := strings.ToLower(c.Request.Host)
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		host = strings.Trim(host, "[]")

		if _, ok := exact[host]; ok {
			c.Next()
			return
		}
		for _, suffix := range suffixes {
			if strings.HasSuffix(host, suffix) {
				c.Next()
				return
			}
		}

		LoggerFromContext(c).Warn("untrusted host", "host", c.Request.Host)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid host header"})
	}
}
