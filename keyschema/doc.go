// Package keyschema derives cache keys for accounts, credentials and
// application metadata, and supplies the predicates a cache uses to filter
// cached entries during lookup.
//
// Keys are flat lowercase strings joined by Separator. Field order and field
// count are fixed per key kind, and absent optional fields serialize as empty
// strings:
//
//	account:     <homeAccountId>-<environment>-<tenantId>
//	credential:  <homeAccountId>-<environment>-<credentialType>-<clientId|familyId>-<realm>-<target>
//	appmetadata: appmetadata-<environment>-<clientId>
//
// Refresh tokens are keyed by family id when one is present, so a single
// refresh token can serve every client application in the family.
//
// Every function in this package is pure and safe for concurrent use. The
// separator is not escaped: identity values containing it produce ambiguous
// keys.
package keyschema
