package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	domain "github.com/siyaamtanzeel/Motoshop/internal/entity"
	"github.com/siyaamtanzeel/Motoshop/internal/logging"
)

const callerKey = "caller"

// TokenParser verifies a bearer token and returns its subject.
type TokenParser interface {
	Parse(raw string) (string, error)
}

// CallerResolver loads the current role and status of a token subject.
type CallerResolver interface {
	CurrentCaller(ctx context.Context, userID string) (*domain.Caller, error)
}

type Authz struct {
	tokens  TokenParser
	callers CallerResolver
}

func NewAuthz(tokens TokenParser, callers CallerResolver) *Authz {
	return &Authz{tokens: tokens, callers: callers}
}

// Require checks the bearer token and loads the caller it names.
// With roles given, the caller must hold one of them.
func (a *Authz) Require(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			unauth(c, "invalid_request", "missing bearer token")
			return
		}

		sub, err := a.tokens.Parse(strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			unauth(c, "invalid_token", "invalid jwt")
			return
		}

		caller, err := a.callers.CurrentCaller(c.Request.Context(), sub)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthenticated) {
				unauth(c, "invalid_token", "account unavailable")
				return
			}
			logging.From(c).Error("resolve caller failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "internal error"})
			return
		}

		if len(roles) > 0 && !hasRole(caller.Role, roles) {
			forbidden(c, "insufficient_scope", "missing required role")
			return
		}

		c.Set(callerKey, caller)
		logging.With(c, logging.From(c).With("caller_id", caller.ID))
		c.Next()
	}
}

// RequireRole narrows a group already guarded by Require.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := Caller(c)
		if caller == nil {
			unauth(c, "invalid_request", "missing bearer token")
			return
		}
		if !hasRole(caller.Role, roles) {
			forbidden(c, "insufficient_scope", "missing required role")
			return
		}
		c.Next()
	}
}

// Caller returns the authenticated caller, or nil on public routes.
func Caller(c *gin.Context) *domain.Caller {
	if v, ok := c.Get(callerKey); ok {
		if caller, ok := v.(*domain.Caller); ok {
			return caller
		}
	}
	return nil
}

func hasRole(have domain.Role, want []domain.Role) bool {
	for _, r := range want {
		if have == r {
			return true
		}
	}
	return false
}

func unauth(c *gin.Context, code, desc string) {
	c.Header("WWW-Authenticate", `Bearer error="`+code+`", error_description="`+desc+`"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": code, "message": desc})
}

func forbidden(c *gin.Context, code, desc string) {
	c.Header("WWW-Authenticate", `Bearer error="`+code+`", error_description="`+desc+`"`)
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": code, "message": desc})
}
