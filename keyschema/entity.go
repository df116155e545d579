package keyschema

import (
	"strings"
	"time"
)

// CredentialType names the kind of cached credential.
type CredentialType string

// Canonical credential type spellings. Cached records store the lowercase form.
const (
	CredentialTypeAccessToken  CredentialType = "AccessToken"
	CredentialTypeRefreshToken CredentialType = "RefreshToken"
	CredentialTypeIDToken      CredentialType = "IdToken"
)

// NormalizeCredentialType returns the lowercase form stored on cached records.
func NormalizeCredentialType(t CredentialType) CredentialType {
	return CredentialType(strings.ToLower(string(t)))
}

// Authority types recorded on cached accounts.
const (
	AuthorityTypeMSSTS   = "MSSTS"
	AuthorityTypeADFS    = "ADFS"
	AuthorityTypeMSA     = "MSA"
	AuthorityTypeGeneric = "Generic"
)

// Identity holds the identity dimensions shared by cached accounts and
// credentials.
type Identity struct {
	HomeAccountID string
	Environment   string
	Realm         string
}

// CacheIdentity returns the identity itself, satisfying Entity.
func (id Identity) CacheIdentity() Identity {
	return id
}

// Entity is a cached record that carries an account identity.
type Entity interface {
	CacheIdentity() Identity
}

// Record is any value a cache stores. CacheType reports its raw entry type
// code; see Classify.
type Record interface {
	CacheType() CacheType
}

// AccountLookup identifies an account for key derivation.
type AccountLookup struct {
	HomeAccountID string
	Environment   string
	TenantID      string
}

// Key returns the account cache key.
func (a AccountLookup) Key() string {
	return AccountKey(a.HomeAccountID, a.Environment, a.TenantID)
}

// AccountEntity is the cached form of an account.
type AccountEntity struct {
	Identity
	LocalAccountID string
	Username       string
	Name           string
	AuthorityType  string
}

// Lookup returns the lookup identifying this account.
func (a AccountEntity) Lookup() AccountLookup {
	return AccountLookup{
		HomeAccountID: a.HomeAccountID,
		Environment:   a.Environment,
		TenantID:      a.Realm,
	}
}

// CacheType maps the authority type to an account code. An empty authority
// type is treated as MSSTS; unrecognized values yield an unknown code.
func (a AccountEntity) CacheType() CacheType {
	switch a.AuthorityType {
	case "", AuthorityTypeMSSTS:
		return CacheTypeMSSTS
	case AuthorityTypeADFS:
		return CacheTypeADFS
	case AuthorityTypeMSA:
		return CacheTypeMSA
	case AuthorityTypeGeneric:
		return CacheTypeGeneric
	default:
		return CacheTypeUnknown
	}
}

// CredentialEntity is the cached form of an access, refresh or ID token.
type CredentialEntity struct {
	Identity
	CredentialType CredentialType
	ClientID       string
	// Target is the space-delimited, lowercase scope list.
	Target   string
	FamilyID string
	Secret   string
	// TokenType is the scheme of an access token, e.g. "Bearer" or "pop".
	TokenType string

	ExpiresOn time.Time
	CachedAt  time.Time

	// Extra holds response fields the cache keeps but does not interpret.
	Extra map[string]string
}

// CacheType maps the credential type, case-insensitively, to a credential
// code.
func (c CredentialEntity) CacheType() CacheType {
	switch {
	case strings.EqualFold(string(c.CredentialType), string(CredentialTypeAccessToken)):
		return CacheTypeAccessToken
	case strings.EqualFold(string(c.CredentialType), string(CredentialTypeRefreshToken)):
		return CacheTypeRefreshToken
	case strings.EqualFold(string(c.CredentialType), string(CredentialTypeIDToken)):
		return CacheTypeIDToken
	default:
		return CacheTypeUnknown
	}
}

// AppMetadataEntity records per-client facts, such as family membership,
// learned from token responses.
type AppMetadataEntity struct {
	Environment string
	ClientID    string
	FamilyID    string
}

// CacheType returns CacheTypeAppMetadata.
func (m AppMetadataEntity) CacheType() CacheType {
	return CacheTypeAppMetadata
}

var (
	_ Entity = AccountEntity{}
	_ Entity = CredentialEntity{}
	_ Record = AccountEntity{}
	_ Record = CredentialEntity{}
	_ Record = AppMetadataEntity{}
)
