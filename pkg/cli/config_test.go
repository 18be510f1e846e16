package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserConfig_ActiveProfile(t *testing.T) {
	cfg := &UserConfig{
		CurrentProfile: "local",
		Profiles: map[string]Profile{
			"local":  {Host: "http://localhost:8080"},
			"shared": {Host: "https://sheets.example.com", Token: "tok_shared", Output: "json"},
		},
	}

	p, err := cfg.ActiveProfile("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", p.Host)

	p, err = cfg.ActiveProfile("shared")
	require.NoError(t, err)
	assert.Equal(t, "json", p.Output)

	_, err = cfg.ActiveProfile("other")
	assert.EqualError(t, err, `profile "other" not found`)

	// A current profile that was never written is just empty.
	p, err = newUserConfig().ActiveProfile("")
	require.NoError(t, err)
	assert.Equal(t, Profile{}, p)
}

func TestLoadUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := LoadUserConfig()
	require.NoError(t, err, "missing file is not an error")
	assert.Equal(t, newUserConfig(), cfg)

	cfg.Profiles["ci"] = Profile{Host: "http://ci:8080", Token: "tok_ci"}
	cfg.CurrentProfile = "ci"
	require.NoError(t, SaveUserConfig(cfg))

	info, err := os.Stat(filepath.Join(home, ".sheetmap", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	require.NoError(t, os.WriteFile(ConfigPath(), []byte("profiles: [\n"), 0o600))
	_, err = LoadUserConfig()
	assert.ErrorContains(t, err, "parse config")
}

func TestMasking(t *testing.T) {
	for in, want := range map[string]string{
		"":                                 "",
		"abc":                              "****",
		"1234567890":                       "****",
		"eyJhbGciOiJIUzI1NiJ9.payload.sig": "eyJh****.sig",
	} {
		assert.Equal(t, want, maskSecret(in), in)
	}

	cfg := &UserConfig{Profiles: map[string]Profile{"a": {Host: "http://a", Token: "eyJhbGciOiJIUzI1NiJ9.payload.sig"}}}
	m := cfg.masked()
	assert.Equal(t, "eyJh****.sig", m.Profiles["a"].Token)
	assert.Equal(t, "http://a", m.Profiles["a"].Host)
	assert.Equal(t, "eyJhbGciOiJIUzI1NiJ9.payload.sig", cfg.Profiles["a"].Token)
}
