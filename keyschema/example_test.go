package keyschema_test

import (
	"context"
	"fmt"

	"github.com/jonwraymond/credcache/keyschema"
)

func ExampleCredentialKey() {
	key := keyschema.CredentialKey(
		"uid.utid",
		"login.microsoftonline.com",
		keyschema.CredentialTypeAccessToken,
		"Client1",
		"utid",
		"Mail.Read User.Read",
		"",
	)
	fmt.Println(key)
	// Output:
	// uid.utid-login.microsoftonline.com-accesstoken-client1-utid-mail.read user.read
}

func ExampleCredentialKey_family() {
	app1 := keyschema.CredentialKey("uid1", "login.microsoftonline.com", keyschema.CredentialTypeRefreshToken, "app1", "", "", "fam1")
	app2 := keyschema.CredentialKey("uid1", "login.microsoftonline.com", keyschema.CredentialTypeRefreshToken, "app2", "", "", "fam1")
	fmt.Println(app1)
	fmt.Println(app1 == app2)
	// Output:
	// uid1-login.microsoftonline.com-refreshtoken-fam1--
	// true
}

func ExampleAccountKey() {
	fmt.Println(keyschema.AccountKey("UID.UTID", "login.windows.net", ""))
	// Output:
	// uid.utid-login.windows.net-
}

func ExampleMatchTarget() {
	cred := keyschema.CredentialEntity{Target: "mail.read mail.send"}
	fmt.Println(keyschema.MatchTarget(cred, "mail.read"))
	fmt.Println(keyschema.MatchTarget(cred, "mail.read calendars.read"))
	// Output:
	// true
	// false
}

func ExampleMatchEnvironment() {
	aliases := keyschema.DefaultEnvironmentAliases()
	acct := keyschema.AccountEntity{Identity: keyschema.Identity{Environment: "login.windows.net"}}

	fmt.Println(keyschema.MatchEnvironment(acct, "login.microsoftonline.com", aliases))
	fmt.Println(keyschema.MatchEnvironment(acct, "login.contoso.com", aliases))
	// Output:
	// true
	// false
}

func ExampleClassify() {
	family, ok := keyschema.Classify(context.Background(), keyschema.CacheTypeRefreshToken, nil)
	fmt.Println(family, ok)

	_, ok = keyschema.Classify(context.Background(), 4001, nil)
	fmt.Println(ok)
	// Output:
	// Credential true
	// false
}
