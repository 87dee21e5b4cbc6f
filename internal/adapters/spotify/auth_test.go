package spotify

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestAuthenticator_ClientWithoutCache(t *testing.T) {
	a := NewAuthenticator("id", "secret", "http://127.0.0.1:8888/callback",
		filepath.Join(t.TempDir(), ".spotify_token"))

	_, err := a.Client(context.Background())
	if !errors.Is(err, ErrLoginRequired) {
		t.Fatalf("err = %v, want ErrLoginRequired", err)
	}
}

func TestAuthenticator_TokenRoundTrip(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), ".spotify_token")
	a := NewAuthenticator("id", "secret", "http://127.0.0.1:8888/callback", cachePath)

	tok := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).UTC(),
	}
	if err := a.saveToken(tok); err != nil {
		t.Fatal(err)
	}

	loaded, err := a.loadToken()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.AccessToken != "access" || loaded.RefreshToken != "refresh" {
		t.Errorf("loaded token = %+v", loaded)
	}

	// A valid cache means no interactive login is needed.
	if _, err := a.Client(context.Background()); err != nil {
		t.Errorf("Client with cached token: %v", err)
	}
}

func TestAuthenticator_CorruptCache(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), ".spotify_token")
	if err := os.WriteFile(cachePath, []byte("{broken"), 0o600); err != nil {
		t.Fatal(err)
	}
	a := NewAuthenticator("id", "secret", "http://127.0.0.1:8888/callback", cachePath)

	if _, err := a.loadToken(); err == nil {
		t.Fatal("expected an error for a corrupt cache")
	}
}
