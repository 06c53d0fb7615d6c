package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/kestrelcraft/launchcore/internal/httpapi"
	"github.com/stretchr/testify/require"
)

func TestLegacySession_FormatTokenArgument(t *testing.T) {
	sess := &LegacySession{AccessToken: "abc", UUID: "uuid-1"}
	require.Equal(t, "abc", sess.FormatTokenArgument(false))
	require.Equal(t, "token:abc:uuid-1", sess.FormatTokenArgument(true))
}

func TestOAuthSession_FormatTokenArgument(t *testing.T) {
	sess := &OAuthSession{AccessToken: "xyz", UUID: "uuid-2"}
	require.Equal(t, "xyz", sess.FormatTokenArgument(false))
	require.Equal(t, "token:xyz:uuid-2", sess.FormatTokenArgument(true))
}

func TestStore_SaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sessions.json")
	legacyPath := filepath.Join(dir, "sessions.txt")

	store := NewStore(path, legacyPath)
	store.PutLegacy("player@example.com", &LegacySession{
		AccessToken: "tok-1",
		Username:    "Steve",
		UUID:        "uuid-1",
		ClientToken: "client-1",
	})
	store.PutMicrosoft("ms@example.com", &OAuthSession{
		AccessToken:  "tok-2",
		Username:     "Alex",
		UUID:         "uuid-2",
		RefreshToken: "refresh-2",
		ClientID:     "client-id",
		RedirectURI:  "http://localhost:12782/code",
	})
	require.NoError(t, store.Save())

	reloaded := NewStore(path, legacyPath)
	require.NoError(t, reloaded.Load(httpapi.New()))

	legacy, ok := reloaded.GetLegacy("player@example.com")
	require.True(t, ok)
	require.Equal(t, "tok-1", legacy.AccessToken)
	require.Equal(t, "Steve", legacy.Username)

	ms, ok := reloaded.GetMicrosoft("ms@example.com")
	require.True(t, ok)
	require.Equal(t, "tok-2", ms.AccessToken)
	require.Equal(t, "refresh-2", ms.RefreshToken)
}

func TestStore_MigratesLegacyTextFileOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sessions.json")
	legacyPath := filepath.Join(dir, "sessions.txt")

	require.NoError(t, os.WriteFile(legacyPath, []byte("player@example.com client-1 Steve uuid-1 tok-1\n"), 0o644))

	store := NewStore(path, legacyPath)
	require.NoError(t, store.Load(httpapi.New()))

	legacy, ok := store.GetLegacy("player@example.com")
	require.True(t, ok)
	require.Equal(t, "tok-1", legacy.AccessToken)
	require.Equal(t, "Steve", legacy.Username)
	require.Equal(t, "uuid-1", legacy.UUID)
	require.Equal(t, "client-1", legacy.ClientToken)

	_, err := os.Stat(legacyPath)
	require.True(t, os.IsNotExist(err), "legacy file should be deleted after migration")
}

// rewriteToLocalhost points every outbound request at a local test server
// regardless of the scheme/host baked into the fixed Microsoft/Xbox URLs,
// preserving the path so the server's mux can still dispatch per hop.
type rewriteToLocalhost struct {
	addr string
}

func (t *rewriteToLocalhost) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	u := *req.URL
	u.Scheme = "http"
	u.Host = t.addr
	req.URL = &u
	return http.DefaultTransport.RoundTrip(req)
}

func TestAuthenticateBase_InconsistentUserHashFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth20_token.srf", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"access_token":  "ms-token",
			"refresh_token": "ms-refresh",
		})
	})
	mux.HandleFunc("/user/authenticate", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"Token": "xbl-token",
			"DisplayClaims": map[string]any{
				"xui": []map[string]string{{"uhs": "hash-from-xbl"}},
			},
		})
	})
	mux.HandleFunc("/xsts/authorize", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"Token": "xsts-token",
			"DisplayClaims": map[string]any{
				"xui": []map[string]string{{"uhs": "hash-from-xsts-mismatched"}},
			},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	hc := &http.Client{Transport: &rewriteToLocalhost{addr: srv.Listener.Addr().String()}}
	client := httpapi.NewWithHTTPClient(hc)

	_, err := authenticateBase(context.Background(), client, url.Values{
		"client_id":    {"client-1"},
		"redirect_uri": {"http://localhost:12782/code"},
		"code":         {"auth-code"},
		"grant_type":   {"authorization_code"},
		"scope":        {"xboxlive.signin"},
	})

	require.Error(t, err)
	var oauthErr *OAuthError
	require.ErrorAs(t, err, &oauthErr)
	require.Equal(t, "microsoft.inconsistent_user_hash", oauthErr.Stage)
}

func TestStore_RemoveLegacy(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "sessions.json"), filepath.Join(dir, "sessions.txt"))
	store.PutLegacy("player@example.com", &LegacySession{AccessToken: "tok-1"})

	sess, ok := store.RemoveLegacy("player@example.com")
	require.True(t, ok)
	require.Equal(t, "tok-1", sess.AccessToken)

	_, ok = store.GetLegacy("player@example.com")
	require.False(t, ok)
}
