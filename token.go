package tmi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// AnonymousToken is the token value used for read-only connections that are
// not logged in to any account.
const AnonymousToken = "SCHMOOPIIE"

// ErrAnonymous is returned when an operation requires an authenticated
// connection but the client was configured with an anonymous token.
var ErrAnonymous = errors.New("not available on an anonymous connection")

// ErrNoToken is returned when a token value is needed but neither a value
// nor a getter is available.
var ErrNoToken = errors.New("no token value or getter function")

// Token is an OAuth access token for a Twitch account.
//
// The zero value is not usable; use NewToken or TokenFromGetter.
type Token struct {
	mu     sync.Mutex
	value  string
	getter func(context.Context) (string, error)

	// Filled in by Validate.
	clientID  string
	login     string
	userID    string
	scopes    []string
	expiresAt time.Time

	// HTTPClient is used by Validate and Revoke.
	// If nil, http.DefaultClient is used.
	HTTPClient *http.Client
}

// NewToken returns a Token with a fixed value. An empty value yields an
// anonymous token.
func NewToken(value string) *Token {
	if value == "" {
		value = AnonymousToken
	}
	return &Token{value: value}
}

// TokenFromGetter returns a Token whose value is fetched lazily from fn the
// first time it is needed. Use this to plug in a token refresher.
func TokenFromGetter(fn func(context.Context) (string, error)) *Token {
	return &Token{getter: fn}
}

// IsAnonymous reports whether the token is the shared anonymous token.
func (t *Token) IsAnonymous() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.value == AnonymousToken
}

// Value returns the token value, invoking the getter if no value is cached.
func (t *Token) Value(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.value != "" {
		return t.value, nil
	}
	if t.getter == nil {
		return "", ErrNoToken
	}
	v, err := t.getter(ctx)
	if err != nil {
		return "", fmt.Errorf("token getter: %w", err)
	}
	if v == "" {
		return "", errors.New("token getter returned an empty value")
	}
	t.value = v
	return v, nil
}

// formatIRC returns the token in the "oauth:"-prefixed form that the PASS
// command expects.
func (t *Token) formatIRC(ctx context.Context) (string, error) {
	v, err := t.Value(ctx)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(v, "oauth:") && len(v) > len("oauth:") {
		return v, nil
	}
	return "oauth:" + v, nil
}

// Login returns the account login reported by the last Validate call.
func (t *Token) Login() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.login
}

// UserID returns the account user id reported by the last Validate call.
func (t *Token) UserID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.userID
}

// Scopes returns the OAuth scopes reported by the last Validate call.
func (t *Token) Scopes() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.scopes...)
}

// ExpiresAt returns when the token expires. The zero time means either that
// Validate has not been called or that the token does not expire. Tokens
// that do not expire today can still be given an expiry by Twitch later.
func (t *Token) ExpiresAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expiresAt
}

func (t *Token) httpClient() *http.Client {
	if t.HTTPClient != nil {
		return t.HTTPClient
	}
	return http.DefaultClient
}

// Validate checks the token against the Twitch identity service and caches
// the client id, login, user id, scopes, and expiry it reports.
func (t *Token) Validate(ctx context.Context) error {
	v, err := t.Value(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://id.twitch.tv/oauth2/validate", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "OAuth "+v)

	res, err := t.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("validate token: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("validate token: %s", res.Status)
	}

	var body struct {
		ClientID  string   `json:"client_id"`
		ExpiresIn int64    `json:"expires_in"`
		Login     string   `json:"login"`
		Scopes    []string `json:"scopes"`
		UserID    string   `json:"user_id"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return fmt.Errorf("validate token: decoding response: %w", err)
	}

	t.mu.Lock()
	t.clientID = body.ClientID
	t.login = body.Login
	t.userID = body.UserID
	t.scopes = body.Scopes
	if body.ExpiresIn > 0 {
		t.expiresAt = time.Now().Add(time.Duration(body.ExpiresIn) * time.Second)
	} else {
		t.expiresAt = time.Time{}
	}
	t.mu.Unlock()
	return nil
}

// Revoke invalidates the token with the Twitch identity service. The
// anonymous token cannot be revoked. Revoke calls Validate first if the
// token's client id is not yet known.
func (t *Token) Revoke(ctx context.Context) error {
	if t.IsAnonymous() {
		return fmt.Errorf("cannot revoke anonymous token: %w", ErrAnonymous)
	}
	v, err := t.Value(ctx)
	if err != nil {
		return err
	}

	t.mu.Lock()
	clientID := t.clientID
	t.mu.Unlock()
	if clientID == "" {
		if err := t.Validate(ctx); err != nil {
			return err
		}
		t.mu.Lock()
		clientID = t.clientID
		t.mu.Unlock()
	}

	form := url.Values{
		"token":     {v},
		"client_id": {clientID},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://id.twitch.tv/oauth2/revoke", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := t.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		var body struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(res.Body).Decode(&body); err == nil && body.Message != "" {
			return fmt.Errorf("revoke token: [%d] %s", res.StatusCode, body.Message)
		}
		return fmt.Errorf("revoke token: %s", res.Status)
	}
	return nil
}
