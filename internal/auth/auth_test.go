package auth

// file: internal/auth/auth_test.go

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func fakeEnv(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestKeyringStoreRoundTrip(t *testing.T) {
	keyring.MockInit()
	s := NewKeyringStore(nil)

	rec, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, rec, "empty keyring is not an error")
	assert.True(t, s.IsAvailable())

	require.NoError(t, s.Save(Record{AccountID: "42", AccessToken: "tok", RefreshToken: "ref"}))
	rec, err = s.Load()
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "42", rec.AccountID)
	assert.Equal(t, "ref", rec.RefreshToken)
	assert.False(t, rec.UpdatedAt.IsZero())

	require.NoError(t, s.Delete())
	require.NoError(t, s.Delete(), "deleting twice is fine")
	assert.Error(t, s.Save(Record{AccountID: "42"}))
}

func TestKeyringStoreCorruptEntry(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set(keyringService, keyringUser, "{not json"))
	s := NewKeyringStore(nil)
	_, err := s.Load()
	assert.Error(t, err)
	rec, err := s.Load()
	require.NoError(t, err, "corrupt entry was removed")
	assert.Nil(t, rec)
}

func TestResolvePrecedence(t *testing.T) {
	keyring.MockInit()
	store := NewKeyringStore(nil)
	require.NoError(t, store.Save(Record{AccountID: "kr-acct", AccessToken: "kr-tok"}))

	env := fakeEnv(map[string]string{"BASECAMP_ACCESS_TOKEN": "env-tok", "BASECAMP_ACCOUNT_ID": "env-acct"})
	headers := http.Header{}
	headers.Set("Authorization", "Bearer hdr-tok")
	headers.Set(HeaderAccountID, "hdr-acct")
	ctx := WithHeaders(context.Background(), headers)

	r := NewResolver(Credentials{AccountID: "cfg-acct", AccessToken: "cfg-tok"}, store, nil)
	r.Getenv = env

	c, err := r.Resolve(ctx, Credentials{AccessToken: "arg-tok"})
	require.NoError(t, err)
	assert.Equal(t, "arg-tok", c.AccessToken)
	assert.Equal(t, SourceArgument, c.TokenSource)
	assert.Equal(t, "hdr-acct", c.AccountID)
	assert.Equal(t, SourceHeader, c.AccountSource)

	c, err = r.Resolve(context.Background(), Credentials{})
	require.NoError(t, err)
	assert.Equal(t, "env-tok", c.AccessToken)
	assert.Equal(t, SourceEnvironment, c.TokenSource)

	r.Getenv = fakeEnv(nil)
	c, err = r.Resolve(context.Background(), Credentials{})
	require.NoError(t, err)
	assert.Equal(t, SourceConfig, c.TokenSource)

	r.Fallback = Credentials{}
	c, err = r.Resolve(context.Background(), Credentials{})
	require.NoError(t, err)
	assert.Equal(t, "kr-tok", c.AccessToken)
	assert.Equal(t, SourceKeyring, c.AccountSource)
}

func TestResolveMissing(t *testing.T) {
	keyring.MockInit()
	r := NewResolver(Credentials{}, NewKeyringStore(nil), nil)
	r.Getenv = fakeEnv(nil)

	_, err := r.Resolve(context.Background(), Credentials{AccessToken: "tok"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoCredentials))
	assert.Contains(t, err.Error(), "account id")
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestWithHeadersIgnoresOtherSchemes(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Basic abc")
	ctx := WithHeaders(context.Background(), h)
	assert.Equal(t, Credentials{}, headerCredentials(ctx))

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("Authorization", "bearer xyz")
	assert.Equal(t, "xyz", headerCredentials(FromRequest(context.Background(), req)).AccessToken)
}

func TestTokenSourceStatic(t *testing.T) {
	ts := TokenSource(context.Background(), Credentials{AccessToken: "tok"}, OAuthClient{}, nil, nil)
	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok", tok.AccessToken)
}

func TestTokenSourceRefreshPersists(t *testing.T) {
	keyring.MockInit()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "ref", r.Form.Get("refresh_token"))
		assert.Equal(t, "client", r.Form.Get("client_id"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "fresh",
			"refresh_token": "ref",
			"token_type":    "Bearer",
			"expires_in":    int((14 * 24 * time.Hour).Seconds()),
		})
	}))
	defer srv.Close()

	store := NewKeyringStore(nil)
	creds := Credentials{AccountID: "42", RefreshToken: "ref", TokenSource: SourceKeyring}
	ts := TokenSource(context.Background(), creds, OAuthClient{ClientID: "client", ClientSecret: "secret", TokenURL: srv.URL}, store, nil)

	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok.AccessToken)

	rec, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "fresh", rec.AccessToken)
	assert.Equal(t, "42", rec.AccountID)
}
