package auth

// file: internal/auth/credentials.go

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/camptools/internal/logging"
)

// Credential sources, highest precedence first.
const (
	SourceArgument    = "argument"
	SourceHeader      = "header"
	SourceEnvironment = "environment"
	SourceConfig      = "config"
	SourceKeyring     = "keyring"
)

// Header names read from HTTP requests.
const (
	HeaderAuthorization = "Authorization"
	HeaderAccountID     = "X-Basecamp-Account-Id"
)

// ErrNoCredentials is returned when no source supplies a token or account.
var ErrNoCredentials = errors.New("no Basecamp credentials")

// Credentials identify one Basecamp account.
type Credentials struct {
	AccountID    string `json:"account_id"`
	AccessToken  string `json:"-"`
	RefreshToken string `json:"-"`

	// TokenSource and AccountSource record where each value came from.
	TokenSource   string `json:"token_source,omitempty"`
	AccountSource string `json:"account_source,omitempty"`
}

type headerKey struct{}

// WithHeaders stores the credential headers of an incoming request in ctx.
func WithHeaders(ctx context.Context, h http.Header) context.Context {
	c := Credentials{AccountID: strings.TrimSpace(h.Get(HeaderAccountID))}
	if v := h.Get(HeaderAuthorization); len(v) > 7 && strings.EqualFold(v[:7], "bearer ") {
		c.AccessToken = strings.TrimSpace(v[7:])
	}
	if c.AccountID == "" && c.AccessToken == "" {
		return ctx
	}
	return context.WithValue(ctx, headerKey{}, c)
}

// FromRequest is WithHeaders for an *http.Request, shaped for use as an
// HTTP context function.
func FromRequest(ctx context.Context, r *http.Request) context.Context {
	return WithHeaders(ctx, r.Header)
}

func headerCredentials(ctx context.Context) Credentials {
	c, _ := ctx.Value(headerKey{}).(Credentials)
	return c
}

// Resolver picks credentials field by field: argument, then request
// header, then environment, then config file, then keyring.
type Resolver struct {
	// Fallback holds values from the config file.
	Fallback Credentials
	Store    TokenStore
	Getenv   func(string) string
	logger   logging.Logger
}

// NewResolver returns a resolver reading the process environment.
func NewResolver(fallback Credentials, store TokenStore, logger logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &Resolver{
		Fallback: fallback,
		Store:    store,
		Getenv:   os.Getenv,
		logger:   logger.WithField("component", "credentials"),
	}
}

// Resolve fills in explicit from lower-precedence sources. It fails with
// ErrNoCredentials when the token or the account id is still missing.
func (r *Resolver) Resolve(ctx context.Context, explicit Credentials) (Credentials, error) {
	header := headerCredentials(ctx)
	env := Credentials{}
	if r.Getenv != nil {
		env = Credentials{
			AccountID:    r.Getenv("BASECAMP_ACCOUNT_ID"),
			AccessToken:  r.Getenv("BASECAMP_ACCESS_TOKEN"),
			RefreshToken: r.Getenv("BASECAMP_REFRESH_TOKEN"),
		}
	}

	layers := []struct {
		source string
		creds  func() Credentials
	}{
		{SourceArgument, func() Credentials { return explicit }},
		{SourceHeader, func() Credentials { return header }},
		{SourceEnvironment, func() Credentials { return env }},
		{SourceConfig, func() Credentials { return r.Fallback }},
		{SourceKeyring, r.keyring},
	}

	var out Credentials
	for _, layer := range layers {
		if out.AccessToken != "" && out.AccountID != "" {
			break
		}
		c := layer.creds()
		if out.AccessToken == "" && c.AccessToken != "" {
			out.AccessToken = c.AccessToken
			out.RefreshToken = c.RefreshToken
			out.TokenSource = layer.source
		}
		if out.AccountID == "" && c.AccountID != "" {
			out.AccountID = c.AccountID
			out.AccountSource = layer.source
		}
	}

	if out.AccessToken == "" || out.AccountID == "" {
		missing := "access token"
		if out.AccessToken != "" {
			missing = "account id"
		} else if out.AccountID == "" {
			missing = "access token and account id"
		}
		err := errors.Mark(errors.Newf("missing Basecamp %s", missing), ErrNoCredentials)
		return out, errors.WithHint(err,
			"Pass access_token/account_id, send Authorization and X-Basecamp-Account-Id headers, "+
				"set BASECAMP_ACCESS_TOKEN and BASECAMP_ACCOUNT_ID, or run 'camptools token set'.")
	}
	r.logger.Debug("Credentials resolved.", "token_source", out.TokenSource, "account_source", out.AccountSource)
	return out, nil
}

func (r *Resolver) keyring() Credentials {
	if r.Store == nil {
		return Credentials{}
	}
	rec, err := r.Store.Load()
	if err != nil {
		r.logger.Warn("Keyring lookup failed.", "error", err)
		return Credentials{}
	}
	if rec == nil {
		return Credentials{}
	}
	return Credentials{AccountID: rec.AccountID, AccessToken: rec.AccessToken, RefreshToken: rec.RefreshToken}
}
