package keyschema

import "strings"

// MatchHomeAccountID reports whether the entity belongs to homeAccountID.
func MatchHomeAccountID(e Entity, homeAccountID string) bool {
	return homeAccountID == e.CacheIdentity().HomeAccountID
}

// MatchEnvironment reports whether both environment and the entity's
// environment are aliases in the table. Environments missing from the table
// never match, even when the two strings are equal.
func MatchEnvironment(e Entity, environment string, aliases EnvironmentAliases) bool {
	return aliases.Contains(environment) && aliases.Contains(e.CacheIdentity().Environment)
}

// MatchCredentialType compares the lowercased criterion against the stored
// credential type, which cached records keep in lowercase.
func MatchCredentialType(c CredentialEntity, credentialType CredentialType) bool {
	return NormalizeCredentialType(credentialType) == c.CredentialType
}

// MatchClientID reports whether the credential was issued to clientID.
func MatchClientID(c CredentialEntity, clientID string) bool {
	return clientID == c.ClientID
}

// MatchRealm reports whether the entity belongs to realm (tenant).
func MatchRealm(e Entity, realm string) bool {
	return realm == e.CacheIdentity().Realm
}

// MatchTarget reports whether every requested scope is present in the
// credential's stored target. A credential scoped wider than the request
// matches; the relation is not symmetric.
func MatchTarget(c CredentialEntity, requestedTarget string) bool {
	return TargetsSubset(c.Target, requestedTarget)
}

// TargetsSubset reports whether the scopes of target are a subset of the
// scopes of credentialTarget. Both are split on a single space.
func TargetsSubset(credentialTarget, target string) bool {
	stored := make(map[string]struct{})
	for _, s := range strings.Split(credentialTarget, " ") {
		stored[s] = struct{}{}
	}

	for _, s := range strings.Split(target, " ") {
		if _, ok := stored[s]; !ok {
			return false
		}
	}
	return true
}

// TargetsIntersect reports whether the two scope lists share a scope.
func TargetsIntersect(credentialTarget, target string) bool {
	stored := make(map[string]struct{})
	for _, s := range strings.Split(credentialTarget, " ") {
		stored[s] = struct{}{}
	}

	for _, s := range strings.Split(target, " ") {
		if _, ok := stored[s]; ok {
			return true
		}
	}
	return false
}

// Predicate filters cached entities.
type Predicate[E any] func(E) bool

// All combines predicates with logical AND. With no predicates it matches
// everything.
func All[E any](preds ...Predicate[E]) Predicate[E] {
	return func(e E) bool {
		for _, p := range preds {
			if !p(e) {
				return false
			}
		}
		return true
	}
}

// Filter returns the entities matching every predicate, in input order.
func Filter[E any](entities []E, preds ...Predicate[E]) []E {
	match := All(preds...)
	var out []E
	for _, e := range entities {
		if match(e) {
			out = append(out, e)
		}
	}
	return out
}
