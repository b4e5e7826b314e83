// Package auth resolves the opaque bearer credential carried by incoming
// requests to a registered user. The three failure modes are distinguished
// internally for diagnostics but must be reported identically to clients.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/mailbox/internal/common"
	"github.com/dmitrijs2005/mailbox/internal/server/models"
)

var (
	// ErrMissingCredential: no Authorization header at all.
	ErrMissingCredential = errors.New("missing credential")
	// ErrMalformedCredential: header present but not "Bearer <token>".
	ErrMalformedCredential = errors.New("malformed credential")
	// ErrInvalidCredential: well-formed token that resolves to no active user.
	ErrInvalidCredential = errors.New("invalid credential")
)

// TokenResolver is the identity registry slice the authenticator needs.
type TokenResolver interface {
	GetByToken(ctx context.Context, token string) (*models.User, error)
}

// ParseBearer extracts the token from an Authorization header value.
func ParseBearer(header string) (string, error) {
	if header == "" {
		return "", ErrMissingCredential
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrMalformedCredential
	}

	return parts[1], nil
}

// Authenticator resolves bearer tokens via the identity registry.
type Authenticator struct {
	users TokenResolver
}

func NewAuthenticator(users TokenResolver) *Authenticator {
	return &Authenticator{users: users}
}

// Authenticate resolves the request's bearer credential to a user. It has no
// side effects: last_login is touched by explicit login only, never here.
//
// Registry faults are folded into ErrInvalidCredential (wrapped, so callers
// can still unwrap the cause for logs): admitting a request with unknown
// identity is unacceptable, so the identity side always fails closed.
func (a *Authenticator) Authenticate(ctx context.Context, r *http.Request) (*models.User, error) {
	token, err := ParseBearer(r.Header.Get("Authorization"))
	if err != nil {
		return nil, err
	}

	user, err := a.users.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	if user.Status != models.UserStatusActive {
		return nil, ErrInvalidCredential
	}

	return user, nil
}
