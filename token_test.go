package tmi_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tmi-go/tmi"
)

// rewriteHost directs the token's identity service requests at a test server.
type rewriteHost struct {
	target string
}

func (rt rewriteHost) RoundTrip(req *http.Request) (*http.Response, error) {
	u := *req.URL
	u.Scheme = "http"
	u.Host = strings.TrimPrefix(rt.target, "http://")
	clone := req.Clone(req.Context())
	clone.URL = &u
	return http.DefaultTransport.RoundTrip(clone)
}

func TestToken_anonymous(t *testing.T) {
	tok := tmi.NewToken("")
	if !tok.IsAnonymous() {
		t.Error("empty token should be anonymous")
	}
	v, err := tok.Value(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if v != tmi.AnonymousToken {
		t.Errorf("value = %q", v)
	}
	if err := tok.Revoke(context.Background()); !errors.Is(err, tmi.ErrAnonymous) {
		t.Errorf("revoking an anonymous token should fail; got %v", err)
	}
}

func TestToken_value(t *testing.T) {
	tok := tmi.NewToken("abcdef")
	if tok.IsAnonymous() {
		t.Error("token with a value should not be anonymous")
	}
	v, err := tok.Value(context.Background())
	if err != nil || v != "abcdef" {
		t.Errorf("Value = %q, %v", v, err)
	}
}

func TestTokenFromGetter(t *testing.T) {
	calls := 0
	tok := tmi.TokenFromGetter(func(ctx context.Context) (string, error) {
		calls++
		return "fetched", nil
	})
	for i := 0; i < 2; i++ {
		v, err := tok.Value(context.Background())
		if err != nil || v != "fetched" {
			t.Fatalf("Value = %q, %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("getter called %d times; the value should be cached", calls)
	}
}

func TestTokenFromGetter_error(t *testing.T) {
	wantErr := errors.New("refresh failed")
	tok := tmi.TokenFromGetter(func(ctx context.Context) (string, error) {
		return "", wantErr
	})
	if _, err := tok.Value(context.Background()); !errors.Is(err, wantErr) {
		t.Errorf("Value error = %v; want %v", err, wantErr)
	}
}

func TestToken_Validate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth2/validate" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "OAuth abcdef" {
			t.Errorf("authorization = %q", got)
		}
		io.WriteString(w, `{
			"client_id": "uo6dggojyb8d6soh92zknwmi5ej1q2",
			"login": "somebot",
			"scopes": ["chat:read", "chat:edit"],
			"user_id": "12345",
			"expires_in": 5520838
		}`)
	}))
	defer srv.Close()

	tok := tmi.NewToken("abcdef")
	tok.HTTPClient = &http.Client{Transport: rewriteHost{target: srv.URL}}
	if err := tok.Validate(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := tok.Login(); got != "somebot" {
		t.Errorf("login = %q", got)
	}
	if got := tok.UserID(); got != "12345" {
		t.Errorf("user id = %q", got)
	}
	if got := tok.Scopes(); len(got) != 2 || got[0] != "chat:read" {
		t.Errorf("scopes = %v", got)
	}
	if tok.ExpiresAt().IsZero() {
		t.Error("expiry should be set")
	}
}

func TestToken_Validate_unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":401,"message":"invalid access token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	tok := tmi.NewToken("expired")
	tok.HTTPClient = &http.Client{Transport: rewriteHost{target: srv.URL}}
	if err := tok.Validate(context.Background()); err == nil {
		t.Error("validating an invalid token should fail")
	}
}

func TestToken_Revoke(t *testing.T) {
	var revoked bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth2/validate":
			io.WriteString(w, `{"client_id":"someclientid","login":"somebot","user_id":"12345"}`)
		case "/oauth2/revoke":
			if err := r.ParseForm(); err != nil {
				t.Fatal(err)
			}
			if got := r.PostForm.Get("token"); got != "abcdef" {
				t.Errorf("token = %q", got)
			}
			if got := r.PostForm.Get("client_id"); got != "someclientid" {
				t.Errorf("client_id = %q", got)
			}
			revoked = true
		default:
			t.Errorf("path = %q", r.URL.Path)
		}
	}))
	defer srv.Close()

	tok := tmi.NewToken("abcdef")
	tok.HTTPClient = &http.Client{Transport: rewriteHost{target: srv.URL}}
	if err := tok.Revoke(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !revoked {
		t.Error("revoke endpoint was not called")
	}
}
