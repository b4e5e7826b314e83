package httpapi

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/mailbox/internal/server/models"
	"github.com/dmitrijs2005/mailbox/internal/server/ratelimit"
)

type ctxKey int

const userContextKey ctxKey = iota

// userFrom returns the authenticated user stored by admit, or nil on
// anonymous routes.
func userFrom(ctx context.Context) *models.User {
	u, _ := ctx.Value(userContextKey).(*models.User)
	return u
}

// clientIP extracts the client source address. The first X-Forwarded-For hop
// is honored only when the server is configured to sit behind a trusted
// proxy; otherwise the peer address wins.
func (s *Server) clientIP(r *http.Request) string {
	if s.cfg.TrustForwardedFor {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// admit is the admission-control gate every API route passes through. It
// authenticates the bearer credential when the route requires one, then runs
// the named rate-limit policies in order, denying with 429 on the first
// exhausted budget.
//
// All credential failures produce the identical 401 body; the reason is kept
// for the log only, so probing clients cannot tell a missing header from a
// revoked token.
func (s *Server) admit(next http.HandlerFunc, requireAuth bool, policyNames ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var user *models.User
		if requireAuth {
			u, err := s.auth.Authenticate(ctx, r)
			if err != nil {
				s.logger.Info(ctx, "authentication failed", "path", r.URL.Path, "reason", err.Error())
				writeError(w, http.StatusUnauthorized, CodeAuthInvalid, "invalid or missing credentials")
				return
			}
			user = u
			ctx = context.WithValue(ctx, userContextKey, user)
		}

		for _, name := range policyNames {
			p, ok := s.policies.Get(name)
			if !ok {
				continue
			}

			scopeValue := s.clientIP(r)
			if p.Scope == ratelimit.ScopePerUser && user != nil {
				scopeValue = user.ID
			}

			d, err := s.limiter.CheckAndConsume(ctx, scopeValue, p)
			if err != nil && d.Allowed {
				// Store fault with fail-open: admitted, already logged by
				// the limiter.
				continue
			}
			if !d.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(ratelimit.RetryAfterSeconds(d.RetryAfter)))
				writeError(w, http.StatusTooManyRequests, CodeRateLimited, "rate limit exceeded")
				return
			}
		}

		next(w, r.WithContext(ctx))
	}
}
