// Package testutils provides in-process fakes of the identity provider and cloud API for tests.
package testutils

import (
	"fmt"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	sessionCookieName = "ACCOUNTS_SESSION"
	idTokenSigningKey = "fake-identity-provider"
)

var loginPageTemplate = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head><title>Login</title></head>
<body>
<form id="login-form" method="post" action="/login_check">
  <input type="text" id="_username" name="_username">
  <input type="password" id="_password" name="_password">
  {{- if .CSRFToken }}
  <input type="hidden" name="_csrf_token" value="{{ .CSRFToken }}">
  {{- end }}
  <button id="submit-login" type="submit">Log in</button>
</form>
</body>
</html>`))

// IdentityProvider is a fake OAuth implicit-flow identity provider with a form login, plus a console
// origin that must never be requested by a client that captures the console redirect.
type IdentityProvider struct {
	Server  *httptest.Server
	Console *httptest.Server

	Username    string
	Password    string
	CSRFToken   string
	AccessToken string
	IDToken     string

	// ExtraHops inserts redirects between the authorize endpoint and the login page.
	ExtraHops int
	// OmitCSRF renders the login form without the anti-forgery field.
	OmitCSRF bool
	// Fragment overrides the fragment appended to the console redirect on successful login.
	Fragment *string
	// SuccessLocation overrides the redirect target of a successful login.
	SuccessLocation string
	// AuthorizeLocation overrides where the authorize endpoint redirects to.
	AuthorizeLocation string

	mu               sync.Mutex
	authorizeQueries []url.Values
	loginChecks      []url.Values
	consoleHits      int
}

// NewIdentityProvider starts a fake identity provider and console; both are closed with the test.
func NewIdentityProvider(t *testing.T) *IdentityProvider {
	t.Helper()

	p := &IdentityProvider{
		Username:    "user@example.com",
		Password:    "correct horse battery staple",
		CSRFToken:   "csrf-1f4c2a",
		AccessToken: "oauth-access-token",
	}
	p.IDToken = NewIDToken(t, p.Username)

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/authorize", p.handleAuthorize)
	mux.HandleFunc("/oauth/resume", p.handleResume)
	mux.HandleFunc("/hop/", p.handleHop)
	mux.HandleFunc("/login", p.handleLogin)
	mux.HandleFunc("/login_check", p.handleLoginCheck)
	p.Server = httptest.NewServer(mux)

	p.Console = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.consoleHits++
		p.mu.Unlock()
		fmt.Fprint(w, "<html><body>console</body></html>")
	}))

	t.Cleanup(func() {
		p.Server.Close()
		p.Console.Close()
	})

	return p
}

// NewIDToken returns a signed JWT shaped like an OpenID Connect id_token.
func NewIDToken(t *testing.T, subject string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   subject,
		"iss":   "https://accounts.example.com",
		"aud":   "cloud_console",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"iat":   time.Now().Unix(),
		"nonce": "unchecked",
	})
	signed, err := token.SignedString([]byte(idTokenSigningKey))
	if err != nil {
		t.Fatalf("failed to sign id_token: %v", err)
	}
	return signed
}

// AuthorizeURL is the implicit-flow authorize endpoint.
func (p *IdentityProvider) AuthorizeURL() string { return p.Server.URL + "/oauth/authorize" }

// LoginURL is the login page.
func (p *IdentityProvider) LoginURL() string { return p.Server.URL + "/login" }

// LoginCheckURL is the credential submission endpoint.
func (p *IdentityProvider) LoginCheckURL() string { return p.Server.URL + "/login_check" }

// ConsoleURL is the console origin the implicit flow redirects back to.
func (p *IdentityProvider) ConsoleURL() string { return p.Console.URL }

// AuthorizeQueries returns the query of every authorize request received.
func (p *IdentityProvider) AuthorizeQueries() []url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]url.Values(nil), p.authorizeQueries...)
}

// LoginChecks returns the form of every credential submission received.
func (p *IdentityProvider) LoginChecks() []url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]url.Values(nil), p.loginChecks...)
}

// ConsoleHits returns how many requests reached the console.
func (p *IdentityProvider) ConsoleHits() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.consoleHits
}

func (p *IdentityProvider) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	p.authorizeQueries = append(p.authorizeQueries, r.URL.Query())
	p.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "session-" + strconv.Itoa(len(p.AuthorizeQueries())), Path: "/"})

	switch {
	case p.AuthorizeLocation != "":
		http.Redirect(w, r, p.AuthorizeLocation, http.StatusFound)
	case p.ExtraHops > 0:
		http.Redirect(w, r, "/hop/1", http.StatusFound)
	default:
		http.Redirect(w, r, "/login", http.StatusFound)
	}
}

func (p *IdentityProvider) handleHop(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/hop/"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if n >= p.ExtraHops {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/hop/"+strconv.Itoa(n+1), http.StatusFound)
}

func (p *IdentityProvider) handleLogin(w http.ResponseWriter, r *http.Request) {
	data := struct{ CSRFToken string }{}
	if !p.OmitCSRF {
		data.CSRFToken = p.CSRFToken
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = loginPageTemplate.Execute(w, data)
}

func (p *IdentityProvider) handleLoginCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p.mu.Lock()
	p.loginChecks = append(p.loginChecks, r.PostForm)
	p.mu.Unlock()

	_, cookieErr := r.Cookie(sessionCookieName)
	valid := cookieErr == nil &&
		r.PostForm.Get("_username") == p.Username &&
		r.PostForm.Get("_password") == p.Password &&
		r.PostForm.Get("_csrf_token") == p.CSRFToken
	if !valid {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	http.Redirect(w, r, "/oauth/resume", http.StatusFound)
}

// handleResume completes the implicit flow by redirecting to the console with tokens in the fragment.
func (p *IdentityProvider) handleResume(w http.ResponseWriter, r *http.Request) {
	if p.SuccessLocation != "" {
		http.Redirect(w, r, p.SuccessLocation, http.StatusFound)
		return
	}

	fragment := url.Values{
		"access_token": {p.AccessToken},
		"id_token":     {p.IDToken},
		"token_type":   {"bearer"},
		"state":        {"returned-state"},
	}.Encode()
	if p.Fragment != nil {
		fragment = *p.Fragment
	}

	w.Header().Set("Location", p.Console.URL+"/#"+fragment)
	w.WriteHeader(http.StatusFound)
}
