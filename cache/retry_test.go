package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonwraymond/credcache/keyschema"
)

func TestRetrier_Defaults(t *testing.T) {
	r := newRetrier(RetryConfig{})
	if r.config.MaxAttempts != 1 {
		t.Errorf("MaxAttempts = %d, want 1", r.config.MaxAttempts)
	}
	if r.config.InitialDelay != 100*time.Millisecond {
		t.Errorf("InitialDelay = %v, want 100ms", r.config.InitialDelay)
	}
	if r.config.RetryIf(context.Canceled) {
		t.Error("cancellation must not be retried")
	}
	if !r.config.RetryIf(errors.New("503")) {
		t.Error("ordinary errors must be retried")
	}
}

func TestRetrier_Delay(t *testing.T) {
	r := newRetrier(RetryConfig{InitialDelay: 10 * time.Millisecond, MaxDelay: 35 * time.Millisecond})

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 10 * time.Millisecond},
		{2, 20 * time.Millisecond},
		{3, 35 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := r.delay(tt.attempt); got != tt.want {
			t.Errorf("delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestRetrier_Load(t *testing.T) {
	r := newRetrier(RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond})

	calls := 0
	c, attempts, err := r.load(context.Background(), func(context.Context) (keyschema.CredentialEntity, error) {
		calls++
		if calls < 3 {
			return keyschema.CredentialEntity{}, errors.New("transient")
		}
		return keyschema.CredentialEntity{Secret: "ok"}, nil
	})
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if attempts != 3 || c.Secret != "ok" {
		t.Errorf("load() = (%q, %d), want (ok, 3)", c.Secret, attempts)
	}
}

func TestRetrier_LoadStopsOnPermanentError(t *testing.T) {
	permanent := errors.New("invalid_grant")
	r := newRetrier(RetryConfig{
		MaxAttempts:  5,
		InitialDelay: time.Millisecond,
		RetryIf:      func(err error) bool { return !errors.Is(err, permanent) },
	})

	_, attempts, err := r.load(context.Background(), func(context.Context) (keyschema.CredentialEntity, error) {
		return keyschema.CredentialEntity{}, permanent
	})
	if !errors.Is(err, permanent) || attempts != 1 {
		t.Errorf("load() = (%d, %v), want (1, invalid_grant)", attempts, err)
	}
}

func TestRetrier_LoadHonorsContext(t *testing.T) {
	r := newRetrier(RetryConfig{MaxAttempts: 5, InitialDelay: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())

	_, _, err := r.load(ctx, func(context.Context) (keyschema.CredentialEntity, error) {
		cancel()
		return keyschema.CredentialEntity{}, errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("load() error = %v, want context.Canceled", err)
	}
}

func TestManager_LoadCredential_Retries(t *testing.T) {
	ctx := context.Background()
	m, _, buf := newTestManager(t)
	WithLoadRetry(RetryConfig{MaxAttempts: 2, InitialDelay: time.Millisecond})(m)

	calls := 0
	f := CredentialFilter{HomeAccountID: testHome, Environment: testEnv, CredentialType: keyschema.CredentialTypeIDToken, ClientID: testClient, Realm: testRealm}
	got, err := m.LoadCredential(ctx, f, func(context.Context) (keyschema.CredentialEntity, error) {
		calls++
		if calls == 1 {
			return keyschema.CredentialEntity{}, errors.New("transient")
		}
		return testCredential(keyschema.CredentialTypeIDToken, "", time.Hour), nil
	})
	if err != nil {
		t.Fatalf("LoadCredential() error = %v", err)
	}
	if calls != 2 || got.CredentialType != "idtoken" {
		t.Errorf("calls = %d, type = %q", calls, got.CredentialType)
	}

	var warned bool
	for _, e := range logMessages(t, buf) {
		if e["msg"] == "credential loader retried" && e["attempts"] == float64(2) {
			warned = true
		}
	}
	if !warned {
		t.Errorf("expected retry warning, got %s", buf.String())
	}
}
