// Package auth drives the interactive login flows on top of the
// session types: the Yggdrasil username/password exchange and the
// Microsoft OAuth loopback-listener chain.
package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/kestrelcraft/launchcore/internal/httpapi"
	"github.com/kestrelcraft/launchcore/internal/session"
)

// LoginLegacy authenticates a Yggdrasil username/password pair,
// generating a fresh client token for the new session.
func LoginLegacy(ctx context.Context, client *httpapi.Client, emailOrUsername, password string) (*session.LegacySession, error) {
	return session.AuthenticateLegacy(ctx, client, emailOrUsername, password, uuid.New().String())
}
