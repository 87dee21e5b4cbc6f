package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	spotifyoauth "golang.org/x/oauth2/spotify"
)

// ErrLoginRequired is returned by Client when no cached token exists;
// the caller must run the interactive Authorize flow once.
var ErrLoginRequired = errors.New("spotify adapter: interactive login required")

// scopes required by this app.
var scopes = []string{
	"user-modify-playback-state",
	"user-read-playback-state",
	"user-read-private",
	"user-library-modify",
}

// Authenticator owns the OAuth authorization-code flow and the on-disk
// token cache. The browser login runs once per machine; afterwards the
// refresh token keeps the client authenticated.
type Authenticator struct {
	cfg       *oauth2.Config
	cachePath string
}

// NewAuthenticator builds an authenticator caching tokens at cachePath.
func NewAuthenticator(clientID, clientSecret, redirectURL, cachePath string) *Authenticator {
	return &Authenticator{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       scopes,
			Endpoint:     spotifyoauth.Endpoint,
		},
		cachePath: cachePath,
	}
}

// Client returns an HTTP client that attaches and auto-refreshes the
// cached token, persisting refreshed tokens back to disk. Returns
// ErrLoginRequired when no token has been cached yet.
func (a *Authenticator) Client(ctx context.Context) (*http.Client, error) {
	tok, err := a.loadToken()
	if err != nil {
		return nil, ErrLoginRequired
	}
	src := &persistingTokenSource{
		auth: a,
		src:  a.cfg.TokenSource(ctx, tok),
		last: tok,
	}
	return oauth2.NewClient(ctx, src), nil
}

// Authorize runs the one-time authorization-code flow. It serves the
// redirect URI on localhost, hands the authorization URL to openURL
// (typically a browser opener or a terminal printer), waits for the
// callback, exchanges the code, and caches the token.
func (a *Authenticator) Authorize(ctx context.Context, openURL func(string) error) error {
	redirect, err := url.Parse(a.cfg.RedirectURL)
	if err != nil {
		return fmt.Errorf("spotify adapter: invalid redirect URI: %w", err)
	}

	state := uuid.NewString()
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(redirect.Path, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			errCh <- errors.New("spotify adapter: oauth state mismatch")
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			errCh <- errors.New("spotify adapter: oauth callback without code")
			return
		}
		fmt.Fprintln(w, "Login complete. You can close this tab.")
		codeCh <- code
	})

	srv := &http.Server{Addr: redirect.Host, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("spotify adapter: callback server: %w", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := openURL(a.cfg.AuthCodeURL(state)); err != nil {
		return fmt.Errorf("spotify adapter: open authorization URL: %w", err)
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("spotify adapter: login canceled: %w", ctx.Err())
	case err := <-errCh:
		return err
	case code := <-codeCh:
		tok, err := a.cfg.Exchange(ctx, code)
		if err != nil {
			return fmt.Errorf("spotify adapter: token exchange: %w", err)
		}
		return a.saveToken(tok)
	}
}

func (a *Authenticator) loadToken() (*oauth2.Token, error) {
	raw, err := os.ReadFile(a.cachePath)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("spotify adapter: corrupt token cache: %w", err)
	}
	return &tok, nil
}

func (a *Authenticator) saveToken(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(a.cachePath), 0o700); err != nil {
		return fmt.Errorf("spotify adapter: create cache dir: %w", err)
	}
	raw, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("spotify adapter: encode token: %w", err)
	}
	if err := os.WriteFile(a.cachePath, raw, 0o600); err != nil {
		return fmt.Errorf("spotify adapter: write token cache: %w", err)
	}
	return nil
}

// persistingTokenSource writes tokens back to the cache file whenever
// the underlying source refreshes them.
type persistingTokenSource struct {
	auth *Authenticator
	src  oauth2.TokenSource

	mu   sync.Mutex
	last *oauth2.Token
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil || tok.AccessToken != s.last.AccessToken {
		s.last = tok
		if err := s.auth.saveToken(tok); err != nil {
			// A failed cache write only costs a re-refresh next run.
			log.Printf("WARN spotify adapter: %v", err)
		}
	}
	return tok, nil
}
