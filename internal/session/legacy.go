package session

import (
	"context"
	"fmt"

	"github.com/kestrelcraft/launchcore/internal/httpapi"
)

const authserverURLTemplate = "https://authserver.mojang.com/%s"

// LegacyError reports a failure returned by the Yggdrasil auth server.
type LegacyError struct {
	Message string
}

func (e *LegacyError) Error() string {
	return fmt.Sprintf("yggdrasil auth error: %s", e.Message)
}

// LegacySession is a Yggdrasil-style session authenticated against
// authserver.mojang.com.
type LegacySession struct {
	client      *httpapi.Client
	AccessToken string
	Username    string
	UUID        string
	ClientToken string
}

// AuthenticateLegacy exchanges a username/password pair for a new
// LegacySession.
func AuthenticateLegacy(ctx context.Context, client *httpapi.Client, emailOrUsername, password, clientToken string) (*LegacySession, error) {
	payload := map[string]any{
		"agent": map[string]any{
			"name":    "Minecraft",
			"version": 1,
		},
		"username":    emailOrUsername,
		"password":    password,
		"clientToken": clientToken,
	}

	var res struct {
		AccessToken      string `json:"accessToken"`
		ClientToken      string `json:"clientToken"`
		SelectedProfile  struct {
			Name string `json:"name"`
			ID   string `json:"id"`
		} `json:"selectedProfile"`
		ErrorMessage string `json:"errorMessage"`
	}

	code, err := client.PostJSON(ctx, legacyURL("authenticate"), payload, &res)
	if err != nil {
		return nil, err
	}
	if code != 200 {
		return nil, &LegacyError{Message: res.ErrorMessage}
	}

	return &LegacySession{
		client:      client,
		AccessToken: res.AccessToken,
		Username:    res.SelectedProfile.Name,
		UUID:        res.SelectedProfile.ID,
		ClientToken: res.ClientToken,
	}, nil
}

// Validate asks authserver.mojang.com whether the access token is still
// usable; a 204 response means yes.
func (s *LegacySession) Validate(ctx context.Context) (bool, error) {
	code, err := s.request(ctx, "validate", map[string]any{
		"accessToken": s.AccessToken,
		"clientToken": s.ClientToken,
	}, nil)
	if err != nil {
		return false, err
	}
	return code == 204, nil
}

// Refresh exchanges the current access token for a new one, also
// picking up any username change (the upstream profile rename case).
func (s *LegacySession) Refresh(ctx context.Context) error {
	var res struct {
		AccessToken     string `json:"accessToken"`
		SelectedProfile struct {
			Name string `json:"name"`
		} `json:"selectedProfile"`
		ErrorMessage string `json:"errorMessage"`
	}
	code, err := s.request(ctx, "refresh", map[string]any{
		"accessToken": s.AccessToken,
		"clientToken": s.ClientToken,
	}, &res)
	if err != nil {
		return err
	}
	if code != 200 {
		return &LegacyError{Message: res.ErrorMessage}
	}
	s.AccessToken = res.AccessToken
	s.Username = res.SelectedProfile.Name
	return nil
}

// Invalidate revokes the session's access token server-side.
func (s *LegacySession) Invalidate(ctx context.Context) error {
	_, err := s.request(ctx, "invalidate", map[string]any{
		"accessToken": s.AccessToken,
		"clientToken": s.ClientToken,
	}, nil)
	return err
}

// FormatTokenArgument renders the access-token launch argument.
func (s *LegacySession) FormatTokenArgument(legacy bool) string {
	return formatToken(s.AccessToken, s.UUID, legacy)
}

func (s *LegacySession) typeTag() string  { return typeYggdrasil }
func (s *LegacySession) username() string { return s.Username }
func (s *LegacySession) uuid() string     { return s.UUID }

func (s *LegacySession) request(ctx context.Context, endpoint string, payload, out any) (int, error) {
	return s.client.PostJSON(ctx, legacyURL(endpoint), payload, out)
}

func legacyURL(endpoint string) string {
	return fmt.Sprintf(authserverURLTemplate, endpoint)
}
