package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonwraymond/credcache/keyschema"
)

func TestOAuth2Token(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	c := keyschema.CredentialEntity{
		Secret:    "at",
		ExpiresOn: exp,
		Extra:     map[string]string{"ext_expires_in": "7200"},
	}

	tok := OAuth2Token(c)
	if tok.AccessToken != "at" || tok.TokenType != "Bearer" || !tok.Expiry.Equal(exp) {
		t.Errorf("unexpected token: %+v", tok)
	}
	if got := tok.Extra("ext_expires_in"); got != "7200" {
		t.Errorf("Extra(ext_expires_in) = %v, want 7200", got)
	}

	c.TokenType = "pop"
	if got := OAuth2Token(c).TokenType; got != "pop" {
		t.Errorf("TokenType = %q, want pop", got)
	}
}

func TestManager_TokenSource(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(t)

	at := testCredential(keyschema.CredentialTypeAccessToken, "read", 0)
	at.ExpiresOn = time.Now().Add(time.Hour)
	if err := m.SaveCredential(ctx, at); err != nil {
		t.Fatalf("SaveCredential() error = %v", err)
	}

	tok, err := m.TokenSource(ctx, testAccount(), testClient, "read").Token()
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if tok.AccessToken != "secret-read" {
		t.Errorf("AccessToken = %q, want secret-read", tok.AccessToken)
	}

	if _, err := m.TokenSource(ctx, testAccount(), testClient, "write").Token(); !errors.Is(err, ErrNotFound) {
		t.Errorf("Token() for uncached scope error = %v, want ErrNotFound", err)
	}
}

func TestManager_TokenSource_Expired(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(t)

	at := testCredential(keyschema.CredentialTypeAccessToken, "read", 0)
	at.ExpiresOn = time.Now().Add(-time.Minute)
	if err := m.SaveCredential(ctx, at); err != nil {
		t.Fatalf("SaveCredential() error = %v", err)
	}

	if _, err := m.TokenSource(ctx, testAccount(), testClient, "read").Token(); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Token() error = %v, want ErrTokenExpired", err)
	}
}
