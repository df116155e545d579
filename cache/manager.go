package cache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	deepcopy "github.com/tiendc/go-deepcopy"
	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/credcache/keyschema"
	"github.com/jonwraymond/credcache/observe"
)

// CacheRecord groups the entries produced by one token response.
// Nil members are skipped.
type CacheRecord struct {
	Account      *keyschema.AccountEntity
	IDToken      *keyschema.CredentialEntity
	AccessToken  *keyschema.CredentialEntity
	RefreshToken *keyschema.CredentialEntity
	AppMetadata  *keyschema.AppMetadataEntity
}

// LoaderFunc produces a credential on a cache miss, typically by redeeming a
// refresh token or calling a token endpoint.
type LoaderFunc func(ctx context.Context) (keyschema.CredentialEntity, error)

// Option configures a Manager.
type Option func(*Manager)

// WithKeyer replaces the default key derivation.
func WithKeyer(k keyschema.Keyer) Option {
	return func(m *Manager) {
		if k != nil {
			m.keyer = k
		}
	}
}

// WithClock sets the time source used to stamp CachedAt.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithLoadRetry makes LoadCredential retry failing loaders.
func WithLoadRetry(cfg RetryConfig) Option {
	return func(m *Manager) {
		m.retry = newRetrier(cfg)
	}
}

// Manager saves and looks up cached accounts, credentials and application
// metadata on top of a Store.
//
// Contract:
// - Concurrency: safe for concurrent use when the Store is.
// - Ownership: credentials are copied on the way in and out; callers never
//   share state with the store.
type Manager struct {
	store   Store
	keyer   keyschema.Keyer
	aliases keyschema.EnvironmentAliases
	mw      *observe.Middleware
	now     func() time.Time
	retry   *retrier
	loads   singleflight.Group
}

// NewManager creates a Manager. A nil observer disables telemetry.
func NewManager(store Store, cfg Config, obs observe.Observer, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return nil, fmt.Errorf("cache: failed to create middleware: %w", err)
	}

	m := &Manager{
		store:   store,
		keyer:   keyschema.NewDefaultKeyer(),
		aliases: cfg.Aliases(),
		mw:      mw.WithExpectedErrors(ErrNotFound),
		now: func() time.Time {
			return time.Now().UTC()
		},
		retry: newRetrier(RetryConfig{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// run executes fn under the telemetry middleware with a correlation id that
// nested operations inherit.
func (m *Manager) run(ctx context.Context, op observe.Operation, fn observe.ExecuteFunc) error {
	id := CorrelationID(ctx)
	ctx = WithCorrelationID(ctx, id)
	_, err := m.mw.Wrap(fn, observe.Field{Key: "correlation_id", Value: id})(ctx, op)
	return err
}

func (m *Manager) opLogger(op observe.Operation) observe.Logger {
	return m.mw.Logger().WithOperation(op)
}

func accountOp(name string) observe.Operation {
	return observe.Operation{Name: name, Family: string(keyschema.SchemaFamilyAccount)}
}

func credentialOp(name, clientID string) observe.Operation {
	return observe.Operation{Name: name, Family: string(keyschema.SchemaFamilyCredential), ClientID: clientID}
}

// SaveAccount stores an account under its account key.
func (m *Manager) SaveAccount(ctx context.Context, acct keyschema.AccountEntity) error {
	op := accountOp("save_account")
	return m.run(ctx, op, func(ctx context.Context, op observe.Operation) (int, error) {
		if _, ok := keyschema.Classify(ctx, acct.CacheType(), m.opLogger(op)); !ok {
			return 0, fmt.Errorf("%w: authority type %q", ErrUnknownRecord, acct.AuthorityType)
		}
		if err := m.store.Set(ctx, m.keyer.AccountKey(acct), acct); err != nil {
			return 0, fmt.Errorf("cache: save account: %w", err)
		}
		return 1, nil
	})
}

// SaveCredential stores a credential under its credential key. The
// credential type and target are stored lowercase. Saving an access token first removes
// cached access tokens of the same account, client and realm whose scopes
// overlap the new one.
func (m *Manager) SaveCredential(ctx context.Context, cred keyschema.CredentialEntity) error {
	_, err := m.saveCredential(ctx, cred)
	return err
}

func (m *Manager) saveCredential(ctx context.Context, cred keyschema.CredentialEntity) (keyschema.CredentialEntity, error) {
	var stored keyschema.CredentialEntity
	op := credentialOp("save_credential", cred.ClientID)
	err := m.run(ctx, op, func(ctx context.Context, op observe.Operation) (int, error) {
		if _, ok := keyschema.Classify(ctx, cred.CacheType(), m.opLogger(op)); !ok {
			return 0, fmt.Errorf("%w: credential type %q", ErrUnknownRecord, cred.CredentialType)
		}

		c, err := cloneCredential(cred)
		if err != nil {
			return 0, err
		}
		c.CredentialType = keyschema.NormalizeCredentialType(c.CredentialType)
		c.Target = keyschema.TargetPart(c.Target)
		if c.CachedAt.IsZero() {
			c.CachedAt = m.now()
		}

		key := m.keyer.CredentialKey(c)
		touched := 1
		if c.CacheType() == keyschema.CacheTypeAccessToken {
			removed, err := m.removeOverlappingAccessTokens(ctx, op, key, c)
			if err != nil {
				return 0, err
			}
			touched += removed
		}

		if err := m.store.Set(ctx, key, c); err != nil {
			return 0, fmt.Errorf("cache: save credential: %w", err)
		}
		stored = c
		return touched, nil
	})
	if err != nil {
		return keyschema.CredentialEntity{}, err
	}
	return cloneCredential(stored)
}

func (m *Manager) removeOverlappingAccessTokens(ctx context.Context, op observe.Operation, key string, c keyschema.CredentialEntity) (int, error) {
	var stale []string
	err := m.scan(ctx, m.opLogger(op), func(k string, family keyschema.SchemaFamily, rec keyschema.Record) {
		if k == key || family != keyschema.SchemaFamilyCredential {
			return
		}
		existing, ok := asCredential(rec)
		if !ok || existing.CacheType() != keyschema.CacheTypeAccessToken {
			return
		}
		if keyschema.MatchHomeAccountID(existing, c.HomeAccountID) &&
			keyschema.MatchEnvironment(existing, c.Environment, m.aliases) &&
			keyschema.MatchClientID(existing, c.ClientID) &&
			keyschema.MatchRealm(existing, c.Realm) &&
			keyschema.TargetsIntersect(existing.Target, c.Target) {
			stale = append(stale, k)
		}
	})
	if err != nil {
		return 0, err
	}

	for _, k := range stale {
		if err := m.store.Delete(ctx, k); err != nil {
			return 0, fmt.Errorf("cache: remove stale access token: %w", err)
		}
	}
	return len(stale), nil
}

// SaveAppMetadata stores application metadata under its app metadata key.
func (m *Manager) SaveAppMetadata(ctx context.Context, meta keyschema.AppMetadataEntity) error {
	op := observe.Operation{Name: "save_app_metadata", Family: string(keyschema.SchemaFamilyAppMetadata), ClientID: meta.ClientID}
	return m.run(ctx, op, func(ctx context.Context, _ observe.Operation) (int, error) {
		if err := m.store.Set(ctx, m.keyer.AppMetadataKey(meta), meta); err != nil {
			return 0, fmt.Errorf("cache: save app metadata: %w", err)
		}
		return 1, nil
	})
}

// SaveRecord stores every non-nil member of rec, stopping at the first error.
func (m *Manager) SaveRecord(ctx context.Context, rec CacheRecord) error {
	return m.run(ctx, observe.Operation{Name: "save_record"}, func(ctx context.Context, _ observe.Operation) (int, error) {
		saved := 0
		if rec.Account != nil {
			if err := m.SaveAccount(ctx, *rec.Account); err != nil {
				return saved, err
			}
			saved++
		}
		for _, cred := range []*keyschema.CredentialEntity{rec.IDToken, rec.AccessToken, rec.RefreshToken} {
			if cred == nil {
				continue
			}
			if err := m.SaveCredential(ctx, *cred); err != nil {
				return saved, err
			}
			saved++
		}
		if rec.AppMetadata != nil {
			if err := m.SaveAppMetadata(ctx, *rec.AppMetadata); err != nil {
				return saved, err
			}
			saved++
		}
		return saved, nil
	})
}

// Account returns the account stored under the lookup's account key.
func (m *Manager) Account(ctx context.Context, lookup keyschema.AccountLookup) (keyschema.AccountEntity, error) {
	var acct keyschema.AccountEntity
	err := m.run(ctx, accountOp("read_account"), func(ctx context.Context, _ observe.Operation) (int, error) {
		key := m.keyer.AccountKey(keyschema.AccountEntity{
			Identity: keyschema.Identity{
				HomeAccountID: lookup.HomeAccountID,
				Environment:   lookup.Environment,
				Realm:         lookup.TenantID,
			},
		})
		rec, ok := m.store.Get(ctx, key)
		if !ok {
			return 0, ErrNotFound
		}
		a, ok := asAccount(rec)
		if !ok {
			return 0, fmt.Errorf("%w: %T under account key", ErrUnknownRecord, rec)
		}
		acct = a
		return 1, nil
	})
	return acct, err
}

// Accounts returns the cached accounts matching f, ordered by key.
func (m *Manager) Accounts(ctx context.Context, f AccountFilter) ([]keyschema.AccountEntity, error) {
	var out []keyschema.AccountEntity
	err := m.run(ctx, accountOp("read_accounts"), func(ctx context.Context, op observe.Operation) (int, error) {
		match := keyschema.All(f.predicates(m.aliases)...)
		err := m.scan(ctx, m.opLogger(op), func(_ string, family keyschema.SchemaFamily, rec keyschema.Record) {
			if family != keyschema.SchemaFamilyAccount {
				return
			}
			if acct, ok := asAccount(rec); ok && match(acct) {
				out = append(out, acct)
			}
		})
		return len(out), err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Credentials returns copies of the cached credentials matching f, ordered
// by key.
func (m *Manager) Credentials(ctx context.Context, f CredentialFilter) ([]keyschema.CredentialEntity, error) {
	var out []keyschema.CredentialEntity
	err := m.run(ctx, credentialOp("read_credentials", f.ClientID), func(ctx context.Context, op observe.Operation) (int, error) {
		match := keyschema.All(f.predicates(m.aliases)...)
		var matched []keyschema.CredentialEntity
		err := m.scan(ctx, m.opLogger(op), func(_ string, family keyschema.SchemaFamily, rec keyschema.Record) {
			if family != keyschema.SchemaFamilyCredential {
				return
			}
			if c, ok := asCredential(rec); ok && match(c) {
				matched = append(matched, c)
			}
		})
		if err != nil {
			return 0, err
		}

		for _, c := range matched {
			cp, err := cloneCredential(c)
			if err != nil {
				return 0, err
			}
			out = append(out, cp)
		}
		return len(out), nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AccessToken returns the access token for acct and clientID whose scopes
// cover target. When several qualify, the one expiring last wins.
func (m *Manager) AccessToken(ctx context.Context, acct keyschema.AccountEntity, clientID, target string) (keyschema.CredentialEntity, error) {
	return m.first(ctx, CredentialFilter{
		HomeAccountID:  acct.HomeAccountID,
		Environment:    acct.Environment,
		CredentialType: keyschema.CredentialTypeAccessToken,
		ClientID:       clientID,
		Realm:          acct.Realm,
		Target:         target,
	})
}

// IDToken returns the ID token for acct and clientID.
func (m *Manager) IDToken(ctx context.Context, acct keyschema.AccountEntity, clientID string) (keyschema.CredentialEntity, error) {
	return m.first(ctx, CredentialFilter{
		HomeAccountID:  acct.HomeAccountID,
		Environment:    acct.Environment,
		CredentialType: keyschema.CredentialTypeIDToken,
		ClientID:       clientID,
		Realm:          acct.Realm,
	})
}

// RefreshToken returns a refresh token usable by clientID. When familyID is
// set, a family refresh token is preferred over the client's own.
func (m *Manager) RefreshToken(ctx context.Context, acct keyschema.AccountEntity, clientID, familyID string) (keyschema.CredentialEntity, error) {
	base := CredentialFilter{
		HomeAccountID:  acct.HomeAccountID,
		Environment:    acct.Environment,
		CredentialType: keyschema.CredentialTypeRefreshToken,
	}

	if familyID != "" {
		f := base
		f.FamilyID = familyID
		c, err := m.first(ctx, f)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return keyschema.CredentialEntity{}, err
		}
	}

	f := base
	f.ClientID = clientID
	return m.first(ctx, f)
}

func (m *Manager) first(ctx context.Context, f CredentialFilter) (keyschema.CredentialEntity, error) {
	creds, err := m.Credentials(ctx, f)
	if err != nil {
		return keyschema.CredentialEntity{}, err
	}
	if len(creds) == 0 {
		return keyschema.CredentialEntity{}, ErrNotFound
	}
	return latestExpiry(creds), nil
}

func latestExpiry(creds []keyschema.CredentialEntity) keyschema.CredentialEntity {
	best := creds[0]
	for _, c := range creds[1:] {
		if c.ExpiresOn.After(best.ExpiresOn) {
			best = c
		}
	}
	return best
}

// AppMetadata returns the application metadata stored for environment and
// clientID.
func (m *Manager) AppMetadata(ctx context.Context, environment, clientID string) (keyschema.AppMetadataEntity, error) {
	var meta keyschema.AppMetadataEntity
	op := observe.Operation{Name: "read_app_metadata", Family: string(keyschema.SchemaFamilyAppMetadata), ClientID: clientID}
	err := m.run(ctx, op, func(ctx context.Context, _ observe.Operation) (int, error) {
		rec, ok := m.store.Get(ctx, m.keyer.AppMetadataKey(keyschema.AppMetadataEntity{Environment: environment, ClientID: clientID}))
		if !ok {
			return 0, ErrNotFound
		}
		md, ok := asAppMetadata(rec)
		if !ok {
			return 0, fmt.Errorf("%w: %T under app metadata key", ErrUnknownRecord, rec)
		}
		meta = md
		return 1, nil
	})
	return meta, err
}

// LoadCredential returns the credential matching f, calling loader on a miss
// and caching its result. Concurrent misses for the same credential key share
// one loader call.
func (m *Manager) LoadCredential(ctx context.Context, f CredentialFilter, loader LoaderFunc) (keyschema.CredentialEntity, error) {
	var out keyschema.CredentialEntity
	err := m.run(ctx, credentialOp("load_credential", f.ClientID), func(ctx context.Context, op observe.Operation) (int, error) {
		c, err := m.first(ctx, f)
		if err == nil {
			out = c
			return 1, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return 0, err
		}

		// The shared load outlives any single caller; each caller still
		// gives up when its own context ends.
		loadCtx := context.WithoutCancel(ctx)
		ch := m.loads.DoChan(f.key(), func() (any, error) {
			loaded, attempts, err := m.retry.load(loadCtx, loader)
			if attempts > 1 {
				m.opLogger(op).Warn(loadCtx, "credential loader retried", observe.Field{Key: "attempts", Value: attempts})
			}
			if err != nil {
				return nil, fmt.Errorf("cache: load credential: %w", err)
			}
			return m.saveCredential(loadCtx, loaded)
		})

		var res singleflight.Result
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case res = <-ch:
		}
		if res.Err != nil {
			return 0, res.Err
		}

		out, err = cloneCredential(res.Val.(keyschema.CredentialEntity))
		if err != nil {
			return 0, err
		}
		return 1, nil
	})
	return out, err
}

// RemoveAccount removes the account and every credential of the same home
// account in an aliased environment. It returns the number of entries
// removed.
func (m *Manager) RemoveAccount(ctx context.Context, acct keyschema.AccountEntity) (int, error) {
	var removed int
	err := m.run(ctx, accountOp("remove_account"), func(ctx context.Context, op observe.Operation) (int, error) {
		var keys []string
		accountKey := m.keyer.AccountKey(acct)
		if _, ok := m.store.Get(ctx, accountKey); ok {
			keys = append(keys, accountKey)
		}

		err := m.scan(ctx, m.opLogger(op), func(k string, family keyschema.SchemaFamily, rec keyschema.Record) {
			if family != keyschema.SchemaFamilyCredential {
				return
			}
			c, ok := asCredential(rec)
			if ok && keyschema.MatchHomeAccountID(c, acct.HomeAccountID) && keyschema.MatchEnvironment(c, acct.Environment, m.aliases) {
				keys = append(keys, k)
			}
		})
		if err != nil {
			return 0, err
		}

		for _, k := range keys {
			if err := m.store.Delete(ctx, k); err != nil {
				return removed, fmt.Errorf("cache: remove account: %w", err)
			}
			removed++
		}
		return removed, nil
	})
	return removed, err
}

// RemoveCredential removes a single credential. Removing a missing
// credential is not an error.
func (m *Manager) RemoveCredential(ctx context.Context, cred keyschema.CredentialEntity) error {
	return m.run(ctx, credentialOp("remove_credential", cred.ClientID), func(ctx context.Context, _ observe.Operation) (int, error) {
		if err := m.store.Delete(ctx, m.keyer.CredentialKey(cred)); err != nil {
			return 0, fmt.Errorf("cache: remove credential: %w", err)
		}
		return 1, nil
	})
}

// Clear removes every cached entry.
func (m *Manager) Clear(ctx context.Context) error {
	return m.run(ctx, observe.Operation{Name: "clear"}, func(ctx context.Context, _ observe.Operation) (int, error) {
		if err := m.store.Clear(ctx); err != nil {
			return 0, fmt.Errorf("cache: clear: %w", err)
		}
		return 0, nil
	})
}

// scan visits every stored record whose type classifies, in key order.
// Records of unknown type are skipped after Classify logs them.
func (m *Manager) scan(ctx context.Context, logger observe.Logger, visit func(key string, family keyschema.SchemaFamily, rec keyschema.Record)) error {
	keys, err := m.store.Keys(ctx)
	if err != nil {
		return fmt.Errorf("cache: list keys: %w", err)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, ok := m.store.Get(ctx, key)
		if !ok {
			continue
		}
		family, ok := keyschema.Classify(ctx, rec.CacheType(), logger)
		if !ok {
			continue
		}
		visit(key, family, rec)
	}
	return nil
}

func cloneCredential(c keyschema.CredentialEntity) (keyschema.CredentialEntity, error) {
	var out keyschema.CredentialEntity
	if err := deepcopy.Copy(&out, &c); err != nil {
		return keyschema.CredentialEntity{}, fmt.Errorf("cache: copy credential: %w", err)
	}
	return out, nil
}

func asAccount(rec keyschema.Record) (keyschema.AccountEntity, bool) {
	switch r := rec.(type) {
	case keyschema.AccountEntity:
		return r, true
	case *keyschema.AccountEntity:
		if r == nil {
			return keyschema.AccountEntity{}, false
		}
		return *r, true
	default:
		return keyschema.AccountEntity{}, false
	}
}

func asCredential(rec keyschema.Record) (keyschema.CredentialEntity, bool) {
	switch r := rec.(type) {
	case keyschema.CredentialEntity:
		return r, true
	case *keyschema.CredentialEntity:
		if r == nil {
			return keyschema.CredentialEntity{}, false
		}
		return *r, true
	default:
		return keyschema.CredentialEntity{}, false
	}
}

func asAppMetadata(rec keyschema.Record) (keyschema.AppMetadataEntity, bool) {
	switch r := rec.(type) {
	case keyschema.AppMetadataEntity:
		return r, true
	case *keyschema.AppMetadataEntity:
		if r == nil {
			return keyschema.AppMetadataEntity{}, false
		}
		return *r, true
	default:
		return keyschema.AppMetadataEntity{}, false
	}
}
