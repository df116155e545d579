package cache

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jonwraymond/credcache/keyschema"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "default", cfg: DefaultConfig()},
		{name: "custom", cfg: Config{EnvironmentAliases: []string{"login.chinacloudapi.cn"}}},
		{name: "empty", cfg: Config{}, wantErr: true},
		{name: "blank alias", cfg: Config{EnvironmentAliases: []string{"login.windows.net", " "}}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestConfig_Aliases(t *testing.T) {
	aliases := DefaultConfig().Aliases()
	if aliases.Len() != 5 {
		t.Errorf("Len() = %d, want 5", aliases.Len())
	}
	for _, env := range []string{"login.microsoftonline.com", "sts.windows.net"} {
		if !aliases.Contains(env) {
			t.Errorf("Contains(%q) = false", env)
		}
	}
	if aliases.Contains("login.chinacloudapi.cn") {
		t.Error("sovereign cloud must not be in the default table")
	}
}

func TestDefaultConfig_MatchesDefaultAliases(t *testing.T) {
	want := keyschema.DefaultEnvironmentAliases().Values()
	if diff := cmp.Diff(want, DefaultConfig().EnvironmentAliases); diff != "" {
		t.Errorf("DefaultConfig() aliases mismatch (-want +got):\n%s", diff)
	}
}
