package auth

// file: internal/auth/tokensource.go

import (
	"context"
	"sync"

	"github.com/dkoosis/camptools/internal/logging"
	"golang.org/x/oauth2"
)

// OAuthClient holds the app registration used to refresh tokens.
type OAuthClient struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
}

func (o OAuthClient) canRefresh() bool {
	return o.ClientID != "" && o.ClientSecret != "" && o.TokenURL != ""
}

// TokenSource returns a source for creds. With a refresh token and a
// complete OAuthClient the access token is refreshed when it expires and
// the new token is written back to store when the credentials came from
// the keyring. Otherwise the access token is used as is.
func TokenSource(ctx context.Context, creds Credentials, client OAuthClient, store TokenStore, logger logging.Logger) oauth2.TokenSource {
	tok := &oauth2.Token{AccessToken: creds.AccessToken, RefreshToken: creds.RefreshToken, TokenType: "Bearer"}
	if creds.RefreshToken == "" || !client.canRefresh() {
		return oauth2.StaticTokenSource(tok)
	}
	cfg := &oauth2.Config{
		ClientID:     client.ClientID,
		ClientSecret: client.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  client.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	src := cfg.TokenSource(ctx, tok)
	if store == nil || creds.TokenSource != SourceKeyring {
		return src
	}
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &persistingSource{src: src, store: store, accountID: creds.AccountID, last: tok.AccessToken, logger: logger}
}

// persistingSource saves refreshed tokens back to the store.
type persistingSource struct {
	src       oauth2.TokenSource
	store     TokenStore
	accountID string
	logger    logging.Logger

	mu   sync.Mutex
	last string
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := p.src.Token()
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if tok.AccessToken != p.last {
		p.last = tok.AccessToken
		rec := Record{AccountID: p.accountID, AccessToken: tok.AccessToken, RefreshToken: tok.RefreshToken, Expiry: tok.Expiry}
		if err := p.store.Save(rec); err != nil {
			p.logger.Warn("Refreshed token could not be saved.", "error", err)
		}
	}
	return tok, nil
}
