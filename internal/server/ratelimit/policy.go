// Package ratelimit implements fixed-window admission control backed by a
// shared counter store with per-key TTL. Policies are static at runtime;
// counters self-expire, so stale windows never need explicit cleanup.
package ratelimit

import (
	"time"

	"github.com/dmitrijs2005/mailbox/internal/server/config"
)

// Scope is the identity dimension a policy counts against.
type Scope uint8

const (
	// ScopePerUser counts against the authenticated user ID. Anonymous
	// requests fall back to the source address.
	ScopePerUser Scope = iota
	// ScopePerIP counts against the client source address.
	ScopePerIP
)

func (s Scope) String() string {
	if s == ScopePerIP {
		return "ip"
	}
	return "user"
}

// Names of the built-in policies.
const (
	PolicyAPICalls           = "api_calls"
	PolicyLoginAttempts      = "login_attempts"
	PolicyEmailSending       = "email_sending"
	PolicyAttachmentDownload = "attachment_download"
)

// Policy is a named (max_requests, window, scope) triple.
type Policy struct {
	Name        string
	MaxRequests int
	Window      time.Duration
	Scope       Scope
}

// Registry is a fixed, read-only table of named policies.
type Registry struct {
	policies map[string]Policy
}

// NewRegistry builds the policy table from configuration. The table is
// immutable afterwards.
func NewRegistry(cfg *config.Config) *Registry {
	r := &Registry{policies: make(map[string]Policy, 4)}
	r.add(Policy{Name: PolicyAPICalls, MaxRequests: cfg.APICalls.MaxRequests, Window: cfg.APICalls.Window, Scope: ScopePerUser})
	r.add(Policy{Name: PolicyLoginAttempts, MaxRequests: cfg.LoginAttempts.MaxRequests, Window: cfg.LoginAttempts.Window, Scope: ScopePerIP})
	r.add(Policy{Name: PolicyEmailSending, MaxRequests: cfg.EmailSending.MaxRequests, Window: cfg.EmailSending.Window, Scope: ScopePerUser})
	r.add(Policy{Name: PolicyAttachmentDownload, MaxRequests: cfg.AttachmentDownload.MaxRequests, Window: cfg.AttachmentDownload.Window, Scope: ScopePerUser})
	return r
}

func (r *Registry) add(p Policy) {
	r.policies[p.Name] = p
}

// Get returns the named policy.
func (r *Registry) Get(name string) (Policy, bool) {
	p, ok := r.policies[name]
	return p, ok
}
