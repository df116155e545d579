package cache

import (
	"github.com/jonwraymond/credcache/keyschema"
)

// AccountFilter selects cached accounts. Empty fields match anything.
type AccountFilter struct {
	HomeAccountID string
	Environment   string
	Realm         string
}

func (f AccountFilter) predicates(aliases keyschema.EnvironmentAliases) []keyschema.Predicate[keyschema.AccountEntity] {
	var preds []keyschema.Predicate[keyschema.AccountEntity]
	if f.HomeAccountID != "" {
		preds = append(preds, func(a keyschema.AccountEntity) bool {
			return keyschema.MatchHomeAccountID(a, f.HomeAccountID)
		})
	}
	if f.Environment != "" {
		preds = append(preds, func(a keyschema.AccountEntity) bool {
			return keyschema.MatchEnvironment(a, f.Environment, aliases)
		})
	}
	if f.Realm != "" {
		preds = append(preds, func(a keyschema.AccountEntity) bool {
			return keyschema.MatchRealm(a, f.Realm)
		})
	}
	return preds
}

// CredentialFilter selects cached credentials. Empty fields match anything.
// Target matches credentials whose stored scopes include every requested
// scope, compared in lowercase like stored targets.
type CredentialFilter struct {
	HomeAccountID  string
	Environment    string
	CredentialType keyschema.CredentialType
	ClientID       string
	FamilyID       string
	Realm          string
	Target         string
}

func (f CredentialFilter) predicates(aliases keyschema.EnvironmentAliases) []keyschema.Predicate[keyschema.CredentialEntity] {
	var preds []keyschema.Predicate[keyschema.CredentialEntity]
	if f.HomeAccountID != "" {
		preds = append(preds, func(c keyschema.CredentialEntity) bool {
			return keyschema.MatchHomeAccountID(c, f.HomeAccountID)
		})
	}
	if f.Environment != "" {
		preds = append(preds, func(c keyschema.CredentialEntity) bool {
			return keyschema.MatchEnvironment(c, f.Environment, aliases)
		})
	}
	if f.CredentialType != "" {
		preds = append(preds, func(c keyschema.CredentialEntity) bool {
			return keyschema.MatchCredentialType(c, f.CredentialType)
		})
	}
	if f.ClientID != "" {
		preds = append(preds, func(c keyschema.CredentialEntity) bool {
			return keyschema.MatchClientID(c, f.ClientID)
		})
	}
	if f.FamilyID != "" {
		preds = append(preds, func(c keyschema.CredentialEntity) bool {
			return c.FamilyID == f.FamilyID
		})
	}
	if f.Realm != "" {
		preds = append(preds, func(c keyschema.CredentialEntity) bool {
			return keyschema.MatchRealm(c, f.Realm)
		})
	}
	if f.Target != "" {
		preds = append(preds, func(c keyschema.CredentialEntity) bool {
			return keyschema.MatchTarget(c, keyschema.TargetPart(f.Target))
		})
	}
	return preds
}

// key derives the credential key the filter would produce for a freshly
// loaded credential.
func (f CredentialFilter) key() string {
	return keyschema.CredentialKey(f.HomeAccountID, f.Environment, f.CredentialType, f.ClientID, f.Realm, f.Target, f.FamilyID)
}
