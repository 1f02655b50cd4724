// Package drive implements the document-host boundary: a refreshable
// OAuth2 credential store backed by a token file, and an uploader that
// converts deck files into hosted presentations.
package drive

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Scopes are the OAuth2 scopes the uploader needs.
var Scopes = []string{
	"https://www.googleapis.com/auth/presentations",
	"https://www.googleapis.com/auth/drive",
}

// Store is the process-wide credential store. The token file is mutable
// shared state: it is refreshed in place when expired and the refreshed
// form persisted back to disk. All access is serialized by a mutex so
// concurrent runs cannot race a refresh.
type Store struct {
	mu         sync.Mutex
	clientPath string
	tokenPath  string

	config *oauth2.Config
	token  *oauth2.Token
}

// NewStore creates a credential store reading the OAuth2 client config
// from clientPath and the user token from tokenPath. Files are loaded
// lazily on first use.
func NewStore(clientPath, tokenPath string) *Store {
	return &Store{
		clientPath: clientPath,
		tokenPath:  tokenPath,
	}
}

// newStoreWithConfig injects a pre-built config (for testing).
func newStoreWithConfig(config *oauth2.Config, tokenPath string) *Store {
	return &Store{
		config:    config,
		tokenPath: tokenPath,
	}
}

// Token returns a valid token, refreshing through the OAuth2 endpoint
// and persisting the refreshed form when the stored one has expired.
func (s *Store) Token(ctx context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return nil, err
	}

	if s.token.Valid() {
		return s.token, nil
	}

	refreshed, err := s.config.TokenSource(ctx, s.token).Token()
	if err != nil {
		return nil, fmt.Errorf("refresh credential: %w", err)
	}

	if refreshed.AccessToken != s.token.AccessToken {
		if err := s.persistLocked(refreshed); err != nil {
			return nil, err
		}
	}
	s.token = refreshed
	return s.token, nil
}

// Client returns an HTTP client that authenticates through the store,
// picking up refreshed tokens transparently.
func (s *Store) Client(ctx context.Context) (*http.Client, error) {
	// Fail fast when the credential is unusable before any API call.
	if _, err := s.Token(ctx); err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, &storeSource{ctx: ctx, store: s}), nil
}

// storeSource adapts the store to oauth2.TokenSource.
type storeSource struct {
	ctx   context.Context
	store *Store
}

func (ss *storeSource) Token() (*oauth2.Token, error) {
	return ss.store.Token(ss.ctx)
}

// Authorize performs the one-time interactive bootstrap: it prints the
// consent URL to out, reads the authorization code from in, exchanges
// it, and persists the resulting token.
func (s *Store) Authorize(ctx context.Context, in io.Reader, out io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadConfigLocked(); err != nil {
		return err
	}

	url := s.config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintf(out, "Open the following URL in a browser and authorize access:\n\n%s\n\nAuthorization code: ", url)

	code, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && code == "" {
		return fmt.Errorf("read authorization code: %w", err)
	}
	code = trimNewline(code)

	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange authorization code: %w", err)
	}

	if err := s.persistLocked(token); err != nil {
		return err
	}
	s.token = token
	fmt.Fprintf(out, "Token saved to %s\n", s.tokenPath)
	return nil
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

// loadLocked loads the client config and token file. Callers hold mu.
func (s *Store) loadLocked() error {
	if err := s.loadConfigLocked(); err != nil {
		return err
	}
	if s.token != nil {
		return nil
	}

	data, err := os.ReadFile(s.tokenPath)
	if err != nil {
		return fmt.Errorf("read token file %s (run the auth bootstrap first): %w", s.tokenPath, err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return fmt.Errorf("parse token file %s: %w", s.tokenPath, err)
	}
	s.token = &token
	return nil
}

func (s *Store) loadConfigLocked() error {
	if s.config != nil {
		return nil
	}
	data, err := os.ReadFile(s.clientPath)
	if err != nil {
		return fmt.Errorf("read client config %s: %w", s.clientPath, err)
	}
	config, err := google.ConfigFromJSON(data, Scopes...)
	if err != nil {
		return fmt.Errorf("parse client config %s: %w", s.clientPath, err)
	}
	s.config = config
	return nil
}

// persistLocked writes the token back to the token file. Callers hold mu.
func (s *Store) persistLocked(token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if err := os.WriteFile(s.tokenPath, data, 0o600); err != nil {
		return fmt.Errorf("persist token to %s: %w", s.tokenPath, err)
	}
	return nil
}
