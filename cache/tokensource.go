package cache

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/jonwraymond/credcache/keyschema"
)

// OAuth2Token converts a cached access token to an oauth2.Token. Extra
// response fields are carried over.
func OAuth2Token(c keyschema.CredentialEntity) *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken: c.Secret,
		TokenType:   c.TokenType,
		Expiry:      c.ExpiresOn,
	}
	if tok.TokenType == "" {
		tok.TokenType = "Bearer"
	}
	if len(c.Extra) == 0 {
		return tok
	}

	extra := make(map[string]any, len(c.Extra))
	for k, v := range c.Extra {
		extra[k] = v
	}
	return tok.WithExtra(extra)
}

type cacheTokenSource struct {
	ctx      context.Context
	m        *Manager
	acct     keyschema.AccountEntity
	clientID string
	target   string
}

// TokenSource returns an oauth2.TokenSource that serves the cached access
// token of acct for clientID and target. It never contacts a token endpoint:
// a miss yields ErrNotFound and an expired token yields ErrTokenExpired.
// Tokens are reused until they expire.
func (m *Manager) TokenSource(ctx context.Context, acct keyschema.AccountEntity, clientID, target string) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(nil, &cacheTokenSource{
		ctx:      ctx,
		m:        m,
		acct:     acct,
		clientID: clientID,
		target:   target,
	})
}

func (s *cacheTokenSource) Token() (*oauth2.Token, error) {
	c, err := s.m.AccessToken(s.ctx, s.acct, s.clientID, s.target)
	if err != nil {
		return nil, err
	}

	tok := OAuth2Token(c)
	if !tok.Valid() {
		return nil, fmt.Errorf("%w: expired at %s", ErrTokenExpired, c.ExpiresOn)
	}
	return tok, nil
}
