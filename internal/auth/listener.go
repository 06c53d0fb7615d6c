package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kestrelcraft/launchcore/internal/httpapi"
	"github.com/kestrelcraft/launchcore/internal/session"
)

// loopbackPort is the fixed local port the Microsoft OAuth redirect URI
// points at, matching the Azure app registration's allowed redirect.
const loopbackPort = 12782

// InteractiveError reports why the interactive Microsoft login flow
// could not complete.
type InteractiveError struct {
	Reason string
}

func (e *InteractiveError) Error() string {
	return fmt.Sprintf("microsoft interactive login failed: %s", e.Reason)
}

// OpenBrowser is overridable so callers (and tests) can substitute their
// own browser launcher; it defaults to a no-op reporting failure, since
// there is no portable stdlib way to open a browser.
var OpenBrowser = func(_ string) bool { return false }

// capturedResult holds what the loopback listener extracted from the
// browser's form_post redirect before the flow is done.
type capturedResult struct {
	mu        sync.Mutex
	done      bool
	cancelled bool
	code      string
	idToken   string
}

// LoginMicrosoft drives the full interactive Microsoft OAuth flow: opens
// the user's browser at the authorization URL, listens on the loopback
// port for the form_post redirect carrying the authorization code and
// id_token, verifies the id_token's nonce/email, then exchanges the code
// for a full OAuthSession. If ctx is cancelled while waiting, it returns
// (nil, nil) rather than an error.
func LoginMicrosoft(ctx context.Context, client *httpapi.Client, email string) (*session.OAuthSession, error) {
	redirectAuth := fmt.Sprintf("http://localhost:%d", loopbackPort)
	codeRedirectURI := redirectAuth + "/code"
	exitRedirectURI := redirectAuth + "/exit"
	nonce := uuid.New().String()

	authURL := GetAuthenticationURL(MSAzureAppID, codeRedirectURI, email, nonce)
	if !OpenBrowser(authURL) {
		return nil, &InteractiveError{Reason: "no_browser"}
	}

	result, err := runLoopbackListener(ctx, exitRedirectURI)
	if err != nil {
		return nil, err
	}
	if result.cancelled {
		return nil, nil
	}
	if result.code == "" {
		return nil, &InteractiveError{Reason: "failed_to_authenticate"}
	}
	if !CheckTokenID(result.idToken, email, nonce) {
		return nil, &InteractiveError{Reason: "incoherent_data"}
	}

	return session.AuthenticateMicrosoft(ctx, client, MSAzureAppID, result.code, codeRedirectURI)
}

// runLoopbackListener serves POST /code (the form_post redirect target)
// and GET /exit (the post-logout redirect target) until one of them
// completes the flow, then shuts the server down.
func runLoopbackListener(ctx context.Context, exitRedirectURI string) (*capturedResult, error) {
	result := &capturedResult{}
	mux := http.NewServeMux()
	srv := &http.Server{Addr: fmt.Sprintf("localhost:%d", loopbackPort), Handler: mux}

	finished := make(chan struct{})
	closeOnce := sync.Once{}
	finish := func() {
		closeOnce.Do(func() { close(finished) })
	}

	mux.HandleFunc("/code", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/x-www-form-urlencoded" {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, "Unexpected page.")
			return
		}
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, "Missing parameters.")
			return
		}
		code := r.PostForm.Get("code")
		idToken := r.PostForm.Get("id_token")
		if code == "" || idToken == "" {
			if errMsg := r.PostForm.Get("error"); errMsg != "" {
				result.mu.Lock()
				result.done = true
				result.mu.Unlock()
				w.WriteHeader(http.StatusBadRequest)
				fmt.Fprintf(w, "Error: %s (%s).", r.PostForm.Get("error_description"), errMsg)
				finish()
				return
			}
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, "Missing parameters.")
			return
		}

		result.mu.Lock()
		result.code = code
		result.idToken = idToken
		result.mu.Unlock()

		logoutURL := GetLogoutURL(MSAzureAppID, exitRedirectURI)
		w.Header().Set("Location", logoutURL)
		w.WriteHeader(http.StatusTemporaryRedirect)
		fmt.Fprint(w, "Redirecting...")
	})

	mux.HandleFunc("/exit", func(w http.ResponseWriter, r *http.Request) {
		result.mu.Lock()
		result.done = true
		result.mu.Unlock()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Logged in.\n\nClose this tab and return to the launcher.")
		finish()
	})

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	select {
	case <-finished:
	case <-ctx.Done():
		result.mu.Lock()
		result.cancelled = true
		result.mu.Unlock()
	case err := <-serveErr:
		return nil, fmt.Errorf("loopback listener failed: %w", err)
	case <-time.After(10 * time.Minute):
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	return result, nil
}
