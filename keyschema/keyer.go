package keyschema

// Keyer derives storage keys for cached records.
//
// Contract:
// - Determinism: the same record must produce the same key, regardless of
//   the case of its identity fields.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	AccountKey(a AccountEntity) string
	CredentialKey(c CredentialEntity) string
	AppMetadataKey(m AppMetadataEntity) string
}

// DefaultKeyer derives keys with the package-level key functions.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a new default keyer.
func NewDefaultKeyer() *DefaultKeyer {
	return &DefaultKeyer{}
}

// AccountKey keys an account by home account id, environment and realm.
func (k *DefaultKeyer) AccountKey(a AccountEntity) string {
	return AccountKey(a.HomeAccountID, a.Environment, a.Realm)
}

// CredentialKey keys a credential; refresh tokens use their family id when set.
func (k *DefaultKeyer) CredentialKey(c CredentialEntity) string {
	return CredentialKey(c.HomeAccountID, c.Environment, c.CredentialType, c.ClientID, c.Realm, c.Target, c.FamilyID)
}

// AppMetadataKey keys application metadata by environment and client id.
func (k *DefaultKeyer) AppMetadataKey(m AppMetadataEntity) string {
	return AppMetadataKey(m.Environment, m.ClientID)
}

// KeyFor derives the key of any record the keyer knows. The second result
// is false for record types it does not know.
func KeyFor(k Keyer, rec Record) (string, bool) {
	switch r := rec.(type) {
	case AccountEntity:
		return k.AccountKey(r), true
	case *AccountEntity:
		return k.AccountKey(*r), true
	case CredentialEntity:
		return k.CredentialKey(r), true
	case *CredentialEntity:
		return k.CredentialKey(*r), true
	case AppMetadataEntity:
		return k.AppMetadataKey(r), true
	case *AppMetadataEntity:
		return k.AppMetadataKey(*r), true
	default:
		return "", false
	}
}

// Ensure DefaultKeyer implements Keyer
var _ Keyer = (*DefaultKeyer)(nil)
