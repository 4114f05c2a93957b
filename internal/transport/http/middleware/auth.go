package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-gin-social-graph/internal/core/auth"
	"go-gin-social-graph/internal/domain"
	resp "go-gin-social-graph/internal/transport/http/response"
)

const KeyPrincipal = "principal"

type TokenVerifier interface {
	Verify(token string) (*auth.Principal, error)
}

// Authenticate requires "Authorization: Bearer <token>" and attaches the
// verified principal to both the gin and the request context. Expired and
// malformed tokens get the same answer.
func Authenticate(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, tok, ok := strings.Cut(strings.TrimSpace(c.GetHeader("Authorization")), " ")
		tok = strings.TrimSpace(tok)
		if !ok || !strings.EqualFold(scheme, "Bearer") || tok == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(http.StatusUnauthorized, "missing token"))
			return
		}
		p, err := v.Verify(tok)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(http.StatusUnauthorized, "invalid or expired token"))
			return
		}
		c.Set(KeyPrincipal, p)
		c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), p))
		c.Next()
	}
}

// RequireRole admits principals whose role is one of roles (exact match).
// It must run after Authenticate.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalOf(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(http.StatusUnauthorized, ""))
			return
		}
		if !p.HasRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, resp.Error(http.StatusForbidden, ""))
			return
		}
		c.Next()
	}
}

func PrincipalOf(c *gin.Context) (*auth.Principal, bool) {
	if v, ok := c.Get(KeyPrincipal); ok {
		if p, ok := v.(*auth.Principal); ok && p != nil {
			return p, true
		}
	}
	return auth.PrincipalFrom(c.Request.Context())
}
