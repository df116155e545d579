// Package auth turns token endpoint responses into cacheable records.
//
// It reads ID token claims without verifying signatures (the token arrived
// over the authenticated token endpoint connection) and decodes the
// client_info blob that carries the home account's uid and utid. NewAccount
// combines both into a keyschema.AccountEntity.
package auth
