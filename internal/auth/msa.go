package auth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// MSAzureAppID is the Azure AD application ID this launcher authenticates
// as. It is a public client ID (not a secret) shared by every installation.
const MSAzureAppID = "708e91b5-99f8-4a1d-80ec-e746cbb24771"

const (
	msOAuthCodeURL   = "https://login.live.com/oauth20_authorize.srf"
	msOAuthLogoutURL = "https://login.live.com/oauth20_logout.srf"
)

// GetAuthenticationURL builds the browser URL that starts the Microsoft
// OAuth authorization-code + id_token flow, requesting a form_post
// response back to redirectURI.
func GetAuthenticationURL(clientID, redirectURI, email, nonce string) string {
	q := url.Values{
		"client_id":     {clientID},
		"redirect_uri":  {redirectURI},
		"response_type": {"code id_token"},
		"scope":         {"xboxlive.signin offline_access openid email"},
		"login_hint":    {email},
		"nonce":         {nonce},
		"response_mode": {"form_post"},
	}
	return msOAuthCodeURL + "?" + q.Encode()
}

// GetLogoutURL builds the URL used to clear the browser's Microsoft
// session after authorization, so a different account can sign in next
// time without the login page auto-filling the previous one.
func GetLogoutURL(clientID, redirectURI string) string {
	q := url.Values{
		"client_id":    {clientID},
		"redirect_uri": {redirectURI},
	}
	return msOAuthLogoutURL + "?" + q.Encode()
}

// CheckTokenID verifies that a captured id_token's nonce and email claims
// match what this flow expects, without verifying its signature — the
// token only ever round-trips locally between the browser and this
// process's own loopback listener.
func CheckTokenID(idToken, email, nonce string) bool {
	parts := strings.Split(idToken, ".")
	if len(parts) != 3 {
		return false
	}
	payload, err := base64URLDecode(parts[1])
	if err != nil {
		return false
	}

	var claims struct {
		Nonce string `json:"nonce"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return false
	}
	return claims.Nonce == nonce && claims.Email == email
}

func base64URLDecode(s string) ([]byte, error) {
	if rem := len(s) % 4; rem > 0 {
		s += strings.Repeat("=", 4-rem)
	}
	data, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding base64url token segment: %w", err)
	}
	return data, nil
}
