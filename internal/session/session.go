// Package session models authenticated game sessions: the legacy
// Yggdrasil variant and the Microsoft/Xbox-Live OAuth variant, plus a
// durable on-disk store keyed by session type and account identity.
package session

import (
	"context"
	"fmt"
)

// Session is the common contract every authenticated session type
// implements, regardless of which provider issued it.
type Session interface {
	// Validate reports whether the session can be used as is. It does
	// not change the session's tokens; an implementation may note state
	// for the next Refresh (OAuthSession records a pending rename).
	Validate(ctx context.Context) (bool, error)
	// Refresh brings the session up to date in place, normally by
	// exchanging its refresh material for a new access token.
	Refresh(ctx context.Context) error
	// Invalidate revokes the session's tokens with the provider where
	// the provider has a revoke endpoint; for OAuthSession it does nothing.
	Invalidate(ctx context.Context) error
	// FormatTokenArgument renders the access-token launch argument,
	// using the legacy "token:<token>:<uuid>" form when legacy is true.
	FormatTokenArgument(legacy bool) string

	typeTag() string
	username() string
	uuid() string
}

// Identity is the player-facing identity common to every session type.
type Identity struct {
	Username string
	UUID     string
}

const (
	typeYggdrasil = "yggdrasil"
	typeMicrosoft = "microsoft"
)

func formatToken(accessToken, uuid string, legacy bool) string {
	if legacy {
		return fmt.Sprintf("token:%s:%s", accessToken, uuid)
	}
	return accessToken
}
