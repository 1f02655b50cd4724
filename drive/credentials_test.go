package drive

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func writeToken(t *testing.T, path string, token *oauth2.Token) {
	t.Helper()
	data, err := json.Marshal(token)
	if err != nil {
		t.Fatalf("marshal token: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write token: %v", err)
	}
}

func testConfig(tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
		Scopes:       Scopes,
	}
}

func TestToken_ValidTokenNotRefreshed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("token endpoint hit for a still-valid token")
	}))
	defer ts.Close()

	tokenPath := filepath.Join(t.TempDir(), "token.json")
	writeToken(t, tokenPath, &oauth2.Token{
		AccessToken:  "live-token",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(time.Hour),
	})

	store := newStoreWithConfig(testConfig(ts.URL), tokenPath)

	token, err := store.Token(context.Background())
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if token.AccessToken != "live-token" {
		t.Errorf("access token = %q", token.AccessToken)
	}
}

func TestToken_ExpiredTokenRefreshedAndPersisted(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.Form.Get("refresh_token"); got != "refresh" {
			t.Errorf("refresh_token = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"fresh-token","token_type":"Bearer","expires_in":3600,"refresh_token":"refresh"}`))
	}))
	defer ts.Close()

	tokenPath := filepath.Join(t.TempDir(), "token.json")
	writeToken(t, tokenPath, &oauth2.Token{
		AccessToken:  "stale-token",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(-time.Hour),
	})

	store := newStoreWithConfig(testConfig(ts.URL), tokenPath)

	token, err := store.Token(context.Background())
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if token.AccessToken != "fresh-token" {
		t.Errorf("access token = %q, want refreshed", token.AccessToken)
	}

	// The refreshed form must be persisted back to the token file.
	data, err := os.ReadFile(tokenPath)
	if err != nil {
		t.Fatalf("read token file: %v", err)
	}
	var persisted oauth2.Token
	if err := json.Unmarshal(data, &persisted); err != nil {
		t.Fatalf("parse persisted token: %v", err)
	}
	if persisted.AccessToken != "fresh-token" {
		t.Errorf("persisted access token = %q", persisted.AccessToken)
	}
}

func TestToken_ConcurrentAccessSerialized(t *testing.T) {
	var hits int
	var mu sync.Mutex
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"fresh-token","token_type":"Bearer","expires_in":3600,"refresh_token":"refresh"}`))
	}))
	defer ts.Close()

	tokenPath := filepath.Join(t.TempDir(), "token.json")
	writeToken(t, tokenPath, &oauth2.Token{
		AccessToken:  "stale-token",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(-time.Hour),
	})

	store := newStoreWithConfig(testConfig(ts.URL), tokenPath)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Token(context.Background()); err != nil {
				t.Errorf("token: %v", err)
			}
		}()
	}
	wg.Wait()

	// The first caller refreshes; the rest see the cached valid token.
	mu.Lock()
	defer mu.Unlock()
	if hits != 1 {
		t.Errorf("token endpoint hits = %d, want 1", hits)
	}
}

func TestToken_MissingTokenFile(t *testing.T) {
	store := newStoreWithConfig(testConfig("http://127.0.0.1:1"), filepath.Join(t.TempDir(), "absent.json"))
	if _, err := store.Token(context.Background()); err == nil {
		t.Fatal("expected error for missing token file")
	}
}

func TestNewStore_MissingClientConfig(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "absent-client.json"), filepath.Join(dir, "token.json"))
	if _, err := store.Token(context.Background()); err == nil {
		t.Fatal("expected error for missing client config")
	}
}
