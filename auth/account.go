package auth

import (
	"fmt"

	"github.com/jonwraymond/credcache/keyschema"
	"github.com/jonwraymond/credcache/omap"
)

// accountFields maps claim names to the account field they populate. Claims
// sharing a field are listed lowest priority first in claimFields.
var accountFields = map[string]string{
	"sub":                "local_account_id",
	"oid":                "local_account_id",
	"tid":                "realm",
	"email":              "username",
	"upn":                "username",
	"preferred_username": "username",
	"name":               "name",
}

func claimFields(c *IDTokenClaims) *omap.Map[string, string] {
	m := omap.New[string, string]()
	m.Set("sub", c.Subject)
	m.Set("oid", c.ObjectID)
	m.Set("tid", c.TenantID)
	m.Set("email", c.Email)
	m.Set("upn", c.UPN)
	m.Set("preferred_username", c.PreferredUsername)
	m.Set("name", c.Name)
	return m
}

// NewAccount builds the cached account for a signed-in user. With client
// info the account is an MSSTS account keyed by uid.utid; without it the
// account is an ADFS account keyed by the sub claim.
func NewAccount(claims *IDTokenClaims, info *ClientInfo, environment string) (keyschema.AccountEntity, error) {
	if claims == nil {
		return keyschema.AccountEntity{}, fmt.Errorf("%w: no id token claims", ErrMissingClaim)
	}
	if environment == "" {
		return keyschema.AccountEntity{}, ErrMissingEnvironment
	}

	fields := omap.RenameKeys(claimFields(claims), accountFields)
	get := func(k string) string {
		v, _ := fields.Get(k)
		return v
	}

	acct := keyschema.AccountEntity{
		Identity: keyschema.Identity{
			Environment: environment,
			Realm:       get("realm"),
		},
		LocalAccountID: get("local_account_id"),
		Username:       get("username"),
		Name:           get("name"),
	}

	if info != nil {
		acct.HomeAccountID = info.HomeAccountID()
		acct.AuthorityType = keyschema.AuthorityTypeMSSTS
		return acct, nil
	}

	if claims.Subject == "" {
		return keyschema.AccountEntity{}, fmt.Errorf("%w: sub", ErrMissingClaim)
	}
	acct.HomeAccountID = claims.Subject
	acct.AuthorityType = keyschema.AuthorityTypeADFS
	return acct, nil
}
