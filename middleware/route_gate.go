package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// RouteGate bỏ qua protect cho các route public, còn lại giao cho protect quyết định.
//
// Pattern có dạng "[METHOD ]/path": ":param" khớp đúng một segment,
// "*" ở cuối khớp phần còn lại (kể cả rỗng).
func RouteGate(publicRoutes []string, protect gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsPublicRoute(publicRoutes, c.Request.Method, c.Request.URL.Path) {
			c.Next()
			return
		}
		protect(c)
	}
}

func IsPublicRoute(publicRoutes []string, method, path string) bool {
	for _, pattern := range publicRoutes {
		if matchRoute(pattern, method, path) {
			return true
		}
	}
	return false
}

func matchRoute(pattern, method, path string) bool {
	if i := strings.IndexByte(pattern, ' '); i > 0 {
		if !strings.EqualFold(pattern[:i], method) {
			return false
		}
		pattern = strings.TrimSpace(pattern[i+1:])
	}

	want := splitPath(pattern)
	got := splitPath(path)

	for i, seg := range want {
		if seg == "*" && i == len(want)-1 {
			return true
		}
		if i >= len(got) {
			return false
		}
		if strings.HasPrefix(seg, ":") {
			continue
		}
		if seg != got[i] {
			return false
		}
	}
	return len(want) == len(got)
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
