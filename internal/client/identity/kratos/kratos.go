// Package kratos implements identity.Provider against the Ory Kratos public
// API using native (API) self-service flows. The Kratos session token is the
// provider credential; Token re-validates it on every call so a session
// revoked elsewhere is noticed before the next backend request.
package kratos

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/codelife/internal/client/identity"
	"github.com/dmitrijs2005/codelife/internal/logging"
	kratos "github.com/ory/kratos-client-go"
)

const methodPassword = "password"

type Options struct {
	PublicURL  string
	HTTPClient *http.Client
	Logger     logging.Logger
}

type Provider struct {
	client *kratos.APIClient
	log    logging.Logger
	now    func() time.Time
}

func New(opts Options) *Provider {
	cfg := kratos.NewConfiguration()
	cfg.Servers = []kratos.ServerConfiguration{{URL: strings.TrimRight(opts.PublicURL, "/")}}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	cfg.HTTPClient = hc

	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}

	return &Provider{
		client: kratos.NewAPIClient(cfg),
		log:    log.With("provider", "kratos"),
		now:    time.Now,
	}
}

func (p *Provider) Name() string { return "kratos" }

func (p *Provider) SignUp(ctx context.Context, email, password string) (*identity.Credential, error) {
	flow, resp, err := p.client.FrontendAPI.CreateNativeRegistrationFlow(ctx).Execute()
	if err != nil {
		return nil, p.mapError(err, resp)
	}

	body := kratos.UpdateRegistrationFlowWithPasswordMethod{
		Method:   methodPassword,
		Password: password,
		Traits:   map[string]interface{}{"email": email},
	}

	res, resp, err := p.client.FrontendAPI.
		UpdateRegistrationFlow(ctx).
		Flow(flow.Id).
		UpdateRegistrationFlowBody(kratos.UpdateRegistrationFlowWithPasswordMethodAsUpdateRegistrationFlowBody(&body)).
		Execute()
	if err != nil {
		return nil, p.mapError(err, resp)
	}

	if res.SessionToken == nil || *res.SessionToken == "" {
		// Kratos is configured without the session hook after registration;
		// fall back to an explicit login with the same credentials.
		p.log.Debug(ctx, "registration returned no session, signing in", "flow", flow.Id)
		return p.SignIn(ctx, email, password)
	}

	return &identity.Credential{
		Identity: toIdentity(&res.Identity),
		Secret:   *res.SessionToken,
	}, nil
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*identity.Credential, error) {
	flow, resp, err := p.client.FrontendAPI.CreateNativeLoginFlow(ctx).Execute()
	if err != nil {
		return nil, p.mapError(err, resp)
	}

	body := kratos.UpdateLoginFlowWithPasswordMethod{
		Method:     methodPassword,
		Identifier: email,
		Password:   password,
	}

	res, resp, err := p.client.FrontendAPI.
		UpdateLoginFlow(ctx).
		Flow(flow.Id).
		UpdateLoginFlowBody(kratos.UpdateLoginFlowWithPasswordMethodAsUpdateLoginFlowBody(&body)).
		Execute()
	if err != nil {
		return nil, p.mapError(err, resp)
	}

	if res.SessionToken == nil || *res.SessionToken == "" {
		return nil, &identity.AuthError{Code: "no_session_token", Message: "Identity service did not issue a session", Err: identity.ErrUnavailable}
	}

	return &identity.Credential{
		Identity: toIdentity(res.Session.Identity),
		Secret:   *res.SessionToken,
	}, nil
}

func (p *Provider) SignOut(ctx context.Context, cred *identity.Credential) error {
	if cred == nil || cred.Secret == "" {
		return nil
	}
	resp, err := p.client.FrontendAPI.
		PerformNativeLogout(ctx).
		PerformNativeLogoutBody(*kratos.NewPerformNativeLogoutBody(cred.Secret)).
		Execute()
	if err != nil {
		return p.mapError(err, resp)
	}
	return nil
}

// Token checks the session is still active and returns the session token
// as the bearer.
func (p *Provider) Token(ctx context.Context, cred *identity.Credential) (string, *identity.Credential, error) {
	if cred == nil || cred.Secret == "" {
		return "", nil, identity.NotAuthenticated()
	}
	id, err := p.Lookup(ctx, cred)
	if err != nil {
		return "", nil, err
	}
	updated := *cred
	updated.Identity = *id
	return cred.Secret, &updated, nil
}

func (p *Provider) Lookup(ctx context.Context, cred *identity.Credential) (*identity.Identity, error) {
	if cred == nil || cred.Secret == "" {
		return nil, identity.NotAuthenticated()
	}

	session, resp, err := p.client.FrontendAPI.ToSession(ctx).XSessionToken(cred.Secret).Execute()
	if err != nil {
		return nil, p.mapError(err, resp)
	}

	if session.Active != nil && !*session.Active {
		return nil, sessionExpired("session is not active")
	}
	if session.ExpiresAt != nil && !p.now().Before(*session.ExpiresAt) {
		return nil, sessionExpired("session expired")
	}
	if session.Identity == nil {
		return nil, sessionExpired("missing identity in session")
	}

	id := toIdentity(session.Identity)
	return &id, nil
}

func toIdentity(k *kratos.Identity) identity.Identity {
	if k == nil {
		return identity.Identity{}
	}

	id := identity.Identity{UID: k.Id}
	if traits, ok := k.Traits.(map[string]interface{}); ok {
		if email, ok := traits["email"].(string); ok {
			id.Email = email
		}
	}
	for _, addr := range k.VerifiableAddresses {
		if strings.EqualFold(addr.Value, id.Email) && addr.Verified {
			id.EmailVerified = true
		}
	}
	return id
}
