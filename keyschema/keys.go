package keyschema

import (
	"strings"
)

// Separator joins key fields. It is reserved: field values must not contain it.
const Separator = "-"

// appMetadataPrefix leads every application metadata key.
const appMetadataPrefix = "appmetadata"

func joinLower(fields ...string) string {
	return strings.ToLower(strings.Join(fields, Separator))
}

// AccountKey returns the account cache key
// <homeAccountID>-<environment>-<tenantID>, lowercased. Empty environment or
// tenantID keep their field position.
func AccountKey(homeAccountID, environment, tenantID string) string {
	return joinLower(homeAccountID, environment, tenantID)
}

// AccountIDPart returns <homeAccountID>-<environment>, lowercased: the prefix
// shared by every credential key of one account.
func AccountIDPart(homeAccountID, environment string) string {
	return joinLower(homeAccountID, environment)
}

// CredentialIDPart returns <credentialType>-<clientOrFamilyID>-<realm>,
// lowercased. Refresh tokens use familyID in place of clientID when familyID
// is non-empty.
func CredentialIDPart(credentialType CredentialType, clientID, realm, familyID string) string {
	clientOrFamilyID := clientID
	if isRefreshToken(credentialType) && familyID != "" {
		clientOrFamilyID = familyID
	}
	return joinLower(string(credentialType), clientOrFamilyID, realm)
}

// TargetPart returns the scope string lowercased. Scopes are neither
// reordered nor deduplicated.
func TargetPart(scopes string) string {
	return strings.ToLower(scopes)
}

// CredentialKey returns the credential cache key: the account id part, the
// credential id part and the target part joined by Separator. The joined
// result is lowercased once more.
func CredentialKey(homeAccountID, environment string, credentialType CredentialType, clientID, realm, target, familyID string) string {
	return joinLower(
		AccountIDPart(homeAccountID, environment),
		CredentialIDPart(credentialType, clientID, realm, familyID),
		TargetPart(target),
	)
}

// AppMetadataKey returns appmetadata-<environment>-<clientID>, lowercased.
func AppMetadataKey(environment, clientID string) string {
	return joinLower(appMetadataPrefix, environment, clientID)
}

func isRefreshToken(t CredentialType) bool {
	return strings.EqualFold(string(t), string(CredentialTypeRefreshToken))
}
