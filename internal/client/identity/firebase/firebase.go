// Package firebase implements identity.Provider on top of the Firebase Auth
// REST API (Identity Toolkit for email/password accounts, Secure Token for
// exchanging the refresh token for ID tokens).
package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/codelife/internal/client/identity"
	"github.com/dmitrijs2005/codelife/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultIdentityToolkitURL = "https://identitytoolkit.googleapis.com/v1"
	DefaultSecureTokenURL     = "https://securetoken.googleapis.com/v1"

	// DefaultRefreshMargin mirrors the Firebase SDKs: an ID token is
	// refreshed once it is within five minutes of expiry.
	DefaultRefreshMargin = 5 * time.Minute
)

type Options struct {
	APIKey             string
	IdentityToolkitURL string
	SecureTokenURL     string
	RefreshMargin      time.Duration
	// ForceRefresh makes every Token call mint a new ID token.
	ForceRefresh bool
	HTTPClient   *http.Client
	Logger       logging.Logger
}

type cachedToken struct {
	idToken   string
	expiresAt time.Time
}

type Provider struct {
	opts Options
	http *http.Client
	log  logging.Logger
	now  func() time.Time

	mu     sync.Mutex
	tokens map[string]cachedToken
}

func New(opts Options) *Provider {
	if opts.IdentityToolkitURL == "" {
		opts.IdentityToolkitURL = DefaultIdentityToolkitURL
	}
	if opts.SecureTokenURL == "" {
		opts.SecureTokenURL = DefaultSecureTokenURL
	}
	if opts.RefreshMargin <= 0 {
		opts.RefreshMargin = DefaultRefreshMargin
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	return &Provider{
		opts:   opts,
		http:   hc,
		log:    log.With("provider", "firebase"),
		now:    time.Now,
		tokens: make(map[string]cachedToken),
	}
}

func (p *Provider) Name() string { return "firebase" }

type passwordRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type passwordResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
}

type refreshResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
	UserID       string `json:"user_id"`
}

type lookupResponse struct {
	Users []struct {
		LocalID       string `json:"localId"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"emailVerified"`
		Disabled      bool   `json:"disabled"`
	} `json:"users"`
}

type idTokenClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

func (p *Provider) SignUp(ctx context.Context, email, password string) (*identity.Credential, error) {
	return p.passwordFlow(ctx, "accounts:signUp", email, password)
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*identity.Credential, error) {
	return p.passwordFlow(ctx, "accounts:signInWithPassword", email, password)
}

func (p *Provider) passwordFlow(ctx context.Context, method, email, password string) (*identity.Credential, error) {
	var resp passwordResponse
	req := passwordRequest{Email: email, Password: password, ReturnSecureToken: true}
	if err := p.postJSON(ctx, p.toolkitURL(method), req, &resp); err != nil {
		return nil, err
	}

	claims := p.remember(resp.RefreshToken, resp.IDToken, resp.ExpiresIn)

	p.log.Debug(ctx, "password flow completed", "method", method, "uid", resp.LocalID)

	return &identity.Credential{
		Identity: identity.Identity{
			UID:           resp.LocalID,
			Email:         resp.Email,
			EmailVerified: claims.EmailVerified,
		},
		Secret: resp.RefreshToken,
	}, nil
}

// SignOut forgets the cached ID token. Firebase has no client-side
// revocation endpoint; the refresh token simply stops being used.
func (p *Provider) SignOut(ctx context.Context, cred *identity.Credential) error {
	if cred == nil {
		return nil
	}
	p.mu.Lock()
	delete(p.tokens, cred.Secret)
	p.mu.Unlock()
	return nil
}

func (p *Provider) Token(ctx context.Context, cred *identity.Credential) (string, *identity.Credential, error) {
	if cred == nil || cred.Secret == "" {
		return "", nil, identity.NotAuthenticated()
	}

	if !p.opts.ForceRefresh {
		p.mu.Lock()
		c, ok := p.tokens[cred.Secret]
		p.mu.Unlock()
		if ok && p.now().Add(p.opts.RefreshMargin).Before(c.expiresAt) {
			return c.idToken, cred, nil
		}
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", cred.Secret)

	var resp refreshResponse
	if err := p.postForm(ctx, p.secureTokenURL("token"), form, &resp); err != nil {
		return "", nil, err
	}

	p.mu.Lock()
	delete(p.tokens, cred.Secret)
	p.mu.Unlock()

	claims := p.remember(resp.RefreshToken, resp.IDToken, resp.ExpiresIn)

	updated := *cred
	updated.Secret = resp.RefreshToken
	updated.Identity.EmailVerified = claims.EmailVerified

	p.log.Debug(ctx, "id token refreshed", "uid", resp.UserID)

	return resp.IDToken, &updated, nil
}

func (p *Provider) Lookup(ctx context.Context, cred *identity.Credential) (*identity.Identity, error) {
	token, _, err := p.Token(ctx, cred)
	if err != nil {
		return nil, err
	}

	var resp lookupResponse
	if err := p.postJSON(ctx, p.toolkitURL("accounts:lookup"), map[string]string{"idToken": token}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Users) == 0 {
		return nil, mapError("USER_NOT_FOUND")
	}
	u := resp.Users[0]
	if u.Disabled {
		return nil, mapError("USER_DISABLED")
	}
	return &identity.Identity{UID: u.LocalID, Email: u.Email, EmailVerified: u.EmailVerified}, nil
}

// remember caches idToken under refreshToken and returns its claims.
// The expiry comes from the token's exp claim, falling back to expiresIn.
func (p *Provider) remember(refreshToken, idToken, expiresIn string) idTokenClaims {
	var claims idTokenClaims
	expiresAt := time.Time{}

	if _, _, err := jwt.NewParser().ParseUnverified(idToken, &claims); err == nil && claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	} else if secs, err := strconv.Atoi(expiresIn); err == nil {
		expiresAt = p.now().Add(time.Duration(secs) * time.Second)
	}

	p.mu.Lock()
	p.tokens[refreshToken] = cachedToken{idToken: idToken, expiresAt: expiresAt}
	p.mu.Unlock()

	return claims
}

func (p *Provider) toolkitURL(method string) string {
	return strings.TrimRight(p.opts.IdentityToolkitURL, "/") + "/" + method + "?key=" + url.QueryEscape(p.opts.APIKey)
}

func (p *Provider) secureTokenURL(method string) string {
	return strings.TrimRight(p.opts.SecureTokenURL, "/") + "/" + method + "?key=" + url.QueryEscape(p.opts.APIKey)
}

func (p *Provider) postJSON(ctx context.Context, endpoint string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return p.do(req, out)
}

func (p *Provider) postForm(ctx context.Context, endpoint string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return p.do(req, out)
}

type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *Provider) do(req *http.Request, out any) error {
	resp, err := p.http.Do(req)
	if err != nil {
		return identity.Unavailable(p.Name(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return identity.Unavailable(p.Name(), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env errorEnvelope
		if err := json.Unmarshal(body, &env); err != nil || env.Error.Message == "" {
			if resp.StatusCode >= http.StatusInternalServerError {
				return identity.Unavailable(p.Name(), fmt.Errorf("status %d", resp.StatusCode))
			}
			return &identity.AuthError{Code: strconv.Itoa(resp.StatusCode), Message: "Authentication failed"}
		}
		return mapError(env.Error.Message)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return identity.Unavailable(p.Name(), fmt.Errorf("decode response: %w", err))
	}
	return nil
}
