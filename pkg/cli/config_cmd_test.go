package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes a fresh root command and returns what it wrote to stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestConfigSetAndShow(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := runCLI(t, "config", "set", "default",
		"--profile-host", "http://localhost:9000/", "--profile-token", "tok_default_abcdef")
	require.NoError(t, err)

	out, err := runCLI(t, "config", "show", "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "PROFILE")
	assert.Contains(t, out, "http://localhost:9000 ")
	assert.Contains(t, out, "tok_****cdef")
	assert.NotContains(t, out, "tok_default_abcdef")

	out, err = runCLI(t, "config", "show", "-o", "json", "--reveal")
	require.NoError(t, err)
	var cfg UserConfig
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, "default", cfg.CurrentProfile)
	assert.Equal(t, Profile{Host: "http://localhost:9000", Token: "tok_default_abcdef"}, cfg.Profiles["default"])

	// Fields not given keep their value.
	_, err = runCLI(t, "config", "set", "default", "--profile-output", "json")
	require.NoError(t, err)
	loaded, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, Profile{Host: "http://localhost:9000", Token: "tok_default_abcdef", Output: "json"}, loaded.Profiles["default"])
}

func TestConfigSet_Validation(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := runCLI(t, "config", "set", "x", "--profile-host", "localhost:8080")
	assert.ErrorContains(t, err, "scheme must be http or https")

	_, err = runCLI(t, "config", "set", "x", "--profile-output", "yaml")
	assert.ErrorContains(t, err, "unsupported output format")

	_, err = runCLI(t, "config", "set")
	assert.Error(t, err)
}

func TestConfigUseAndDelete(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := runCLI(t, "config", "use", "staging")
	assert.ErrorContains(t, err, `profile "staging" not found`)

	_, err = runCLI(t, "config", "set", "staging", "--profile-host", "https://staging.example.com")
	require.NoError(t, err)
	_, err = runCLI(t, "config", "use", "staging")
	require.NoError(t, err)

	cfg, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.CurrentProfile)

	_, err = runCLI(t, "config", "delete", "staging")
	require.NoError(t, err)
	cfg, err = LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, "default", cfg.CurrentProfile)
	assert.Empty(t, cfg.Profiles)
}

func TestProfileSuppliesHost(t *testing.T) {
	host := startServer(t)

	_, err := runCLI(t, "config", "set", "local", "--profile-host", host, "--use")
	require.NoError(t, err)

	out, err := runCLI(t, "mapping", "list", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}
