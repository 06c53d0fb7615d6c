package session

import (
	"context"
	"fmt"
	"net/url"

	"github.com/kestrelcraft/launchcore/internal/httpapi"
)

const (
	msOAuthTokenURL = "https://login.live.com/oauth20_token.srf"
	msXBLAuthDomain = "user.auth.xboxlive.com"
	msXBLAuthURL    = "https://user.auth.xboxlive.com/user/authenticate"
	msXSTSAuthURL   = "https://xsts.auth.xboxlive.com/xsts/authorize"
	mcAuthURL       = "https://api.minecraftservices.com/authentication/login_with_xbox"
	mcProfileURL    = "https://api.minecraftservices.com/minecraft/profile"
)

// OAuthError reports a failure at a specific hop of the Microsoft/Xbox
// OAuth chain.
type OAuthError struct {
	Stage   string
	Message string
}

func (e *OAuthError) Error() string {
	return fmt.Sprintf("microsoft auth error at %s: %s", e.Stage, e.Message)
}

// OAuthSession is a Microsoft-account session, authenticated through the
// Xbox Live / XSTS / Minecraft services chain.
type OAuthSession struct {
	client       *httpapi.Client
	AccessToken  string
	Username     string
	UUID         string
	RefreshToken string
	ClientID     string
	RedirectURI  string

	pendingUsername string
}

// Validate checks the Minecraft profile endpoint for the current access
// token, picking up on a profile rename without fully invalidating the
// session (mirroring the upstream "new username pending refresh" flow).
func (s *OAuthSession) Validate(ctx context.Context) (bool, error) {
	s.pendingUsername = ""
	var profile struct {
		Name string `json:"name"`
	}
	code, err := s.client.BearerGetJSON(ctx, mcProfileURL, s.AccessToken, &profile)
	if err != nil {
		return false, err
	}
	if code != 200 {
		return false, nil
	}
	if profile.Name != s.Username {
		s.pendingUsername = profile.Name
		return false, nil
	}
	return true, nil
}

// Refresh either applies a pending username change noticed during the
// last Validate call, or performs a full Microsoft refresh-token
// exchange when there is none pending.
func (s *OAuthSession) Refresh(ctx context.Context) error {
	if s.pendingUsername != "" {
		s.Username = s.pendingUsername
		s.pendingUsername = ""
		return nil
	}

	res, err := refreshMicrosoftToken(ctx, s.client, s.ClientID, s.RedirectURI, s.RefreshToken)
	if err != nil {
		return err
	}
	s.AccessToken = res.AccessToken
	s.Username = res.Username
	s.UUID = res.UUID
	s.RefreshToken = res.RefreshToken
	return nil
}

// Invalidate is a no-op for Microsoft sessions: there is no dedicated
// revoke endpoint in the OAuth chain used here.
func (s *OAuthSession) Invalidate(ctx context.Context) error {
	return nil
}

// FormatTokenArgument renders the access-token launch argument.
func (s *OAuthSession) FormatTokenArgument(legacy bool) string {
	return formatToken(s.AccessToken, s.UUID, legacy)
}

func (s *OAuthSession) typeTag() string  { return typeMicrosoft }
func (s *OAuthSession) username() string { return s.Username }
func (s *OAuthSession) uuid() string     { return s.UUID }

type microsoftAuthResult struct {
	RefreshToken string
	AccessToken  string
	Username     string
	UUID         string
}

func refreshMicrosoftToken(ctx context.Context, client *httpapi.Client, clientID, redirectURI, refreshToken string) (*microsoftAuthResult, error) {
	form := url.Values{
		"client_id":     {clientID},
		"redirect_uri":  {redirectURI},
		"refresh_token": {refreshToken},
		"grant_type":    {"refresh_token"},
		"scope":         {"xboxlive.signin"},
	}
	return authenticateBase(ctx, client, form)
}

// AuthenticateMicrosoft exchanges an OAuth authorization code (captured by
// the loopback listener in internal/auth) for a full OAuthSession, walking
// the Microsoft token, Xbox Live, XSTS, and Minecraft services hops.
func AuthenticateMicrosoft(ctx context.Context, client *httpapi.Client, clientID, code, redirectURI string) (*OAuthSession, error) {
	form := url.Values{
		"client_id":    {clientID},
		"redirect_uri": {redirectURI},
		"code":         {code},
		"grant_type":   {"authorization_code"},
		"scope":        {"xboxlive.signin"},
	}
	res, err := authenticateBase(ctx, client, form)
	if err != nil {
		return nil, err
	}
	return &OAuthSession{
		client:       client,
		AccessToken:  res.AccessToken,
		Username:     res.Username,
		UUID:         res.UUID,
		RefreshToken: res.RefreshToken,
		ClientID:     clientID,
		RedirectURI:  redirectURI,
	}, nil
}

type xboxAuthRequest struct {
	Properties   xboxAuthProperties `json:"Properties"`
	RelyingParty string             `json:"RelyingParty"`
	TokenType    string             `json:"TokenType"`
}

type xboxAuthProperties struct {
	AuthMethod string   `json:"AuthMethod,omitempty"`
	SiteName   string   `json:"SiteName,omitempty"`
	RpsTicket  string   `json:"RpsTicket,omitempty"`
	SandboxID  string   `json:"SandboxId,omitempty"`
	UserTokens []string `json:"UserTokens,omitempty"`
}

type xboxAuthResponse struct {
	Token         string `json:"Token"`
	DisplayClaims struct {
		XUI []struct {
			UHS string `json:"uhs"`
		} `json:"xui"`
	} `json:"DisplayClaims"`
}

func (r xboxAuthResponse) userHash() string {
	if len(r.DisplayClaims.XUI) == 0 {
		return ""
	}
	return r.DisplayClaims.XUI[0].UHS
}

// authenticateBase walks the full chain from a Microsoft OAuth token
// request payload (either an authorization-code or refresh-token grant)
// through Xbox Live, XSTS, and Minecraft services, to a minimal result.
func authenticateBase(ctx context.Context, client *httpapi.Client, msTokenForm url.Values) (*microsoftAuthResult, error) {
	var msToken struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		Error        string `json:"error"`
	}
	if _, err := client.PostForm(ctx, msOAuthTokenURL, msTokenForm, &msToken); err != nil {
		return nil, err
	}
	if msToken.Error != "" {
		return nil, &OAuthError{Stage: "microsoft.oauth", Message: msToken.Error}
	}

	var xbl xboxAuthResponse
	if _, err := client.PostJSON(ctx, msXBLAuthURL, xboxAuthRequest{
		Properties: xboxAuthProperties{
			AuthMethod: "RPS",
			SiteName:   msXBLAuthDomain,
			RpsTicket:  "d=" + msToken.AccessToken,
		},
		RelyingParty: "http://auth.xboxlive.com",
		TokenType:    "JWT",
	}, &xbl); err != nil {
		return nil, err
	}
	xblUserHash := xbl.userHash()

	var xsts xboxAuthResponse
	if _, err := client.PostJSON(ctx, msXSTSAuthURL, xboxAuthRequest{
		Properties: xboxAuthProperties{
			SandboxID:  "RETAIL",
			UserTokens: []string{xbl.Token},
		},
		RelyingParty: "rp://api.minecraftservices.com/",
		TokenType:    "JWT",
	}, &xsts); err != nil {
		return nil, err
	}

	if xblUserHash != xsts.userHash() {
		return nil, &OAuthError{Stage: "microsoft.inconsistent_user_hash"}
	}

	var mcAuth struct {
		AccessToken string `json:"access_token"`
	}
	if _, err := client.PostJSON(ctx, mcAuthURL, map[string]any{
		"identityToken": fmt.Sprintf("XBL3.0 x=%s;%s", xblUserHash, xsts.Token),
	}, &mcAuth); err != nil {
		return nil, err
	}

	var profile struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	code, err := client.BearerGetJSON(ctx, mcProfileURL, mcAuth.AccessToken, &profile)
	if err != nil {
		return nil, err
	}
	switch code {
	case 404:
		return nil, &OAuthError{Stage: "microsoft.does_not_own_minecraft"}
	case 401:
		return nil, &OAuthError{Stage: "microsoft.outdated_token"}
	case 200:
	default:
		return nil, &OAuthError{Stage: "microsoft.error", Message: fmt.Sprintf("status %d", code)}
	}

	return &microsoftAuthResult{
		RefreshToken: msToken.RefreshToken,
		AccessToken:  mcAuth.AccessToken,
		Username:     profile.Name,
		UUID:         profile.ID,
	}, nil
}
