// Package cache stores accounts, credentials and application metadata under
// keys derived by keyschema, and answers lookups by filtering stored entries
// with keyschema's matching predicates.
//
// Store is the storage contract with an in-memory implementation. Manager
// orchestrates saves, lookups and removals on top of a Store and instruments
// every operation through observe.
package cache
