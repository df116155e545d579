package keyschema

import (
	"maps"
	"slices"
)

// EnvironmentAliases is a read-only set of interchangeable environment
// identifiers: hostnames that denote the same cloud.
type EnvironmentAliases struct {
	set map[string]struct{}
}

// NewEnvironmentAliases builds an alias table. Values are matched verbatim.
func NewEnvironmentAliases(aliases ...string) EnvironmentAliases {
	set := make(map[string]struct{}, len(aliases))
	for _, a := range aliases {
		set[a] = struct{}{}
	}
	return EnvironmentAliases{set: set}
}

// DefaultEnvironmentAliases returns the public cloud alias table.
func DefaultEnvironmentAliases() EnvironmentAliases {
	return NewEnvironmentAliases(
		"login.microsoftonline.com",
		"login.windows.net",
		"login.windows-ppe.net",
		"login.microsoft.com",
		"sts.windows.net",
	)
}

// Contains reports whether environment is a known alias.
func (a EnvironmentAliases) Contains(environment string) bool {
	_, ok := a.set[environment]
	return ok
}

// Len returns the number of aliases.
func (a EnvironmentAliases) Len() int {
	return len(a.set)
}

// Values returns the aliases in sorted order.
func (a EnvironmentAliases) Values() []string {
	return slices.Sorted(maps.Keys(a.set))
}
