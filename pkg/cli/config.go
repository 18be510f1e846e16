package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// UserConfig is the profile file at ~/.sheetmap/config.yaml.
type UserConfig struct {
	CurrentProfile string             `yaml:"current-profile" json:"current_profile"`
	Profiles       map[string]Profile `yaml:"profiles" json:"profiles"`
}

// Profile holds per-server defaults. Empty fields fall through to the
// built-in defaults.
type Profile struct {
	Host   string `yaml:"host,omitempty" json:"host,omitempty"`
	Token  string `yaml:"token,omitempty" json:"token,omitempty"`
	Output string `yaml:"output,omitempty" json:"output,omitempty"`
}

func newUserConfig() *UserConfig {
	return &UserConfig{CurrentProfile: "default", Profiles: map[string]Profile{}}
}

// ActiveProfile returns the profile named by override, falling back to the
// current profile. Only an explicitly named profile has to exist.
func (c *UserConfig) ActiveProfile(override string) (Profile, error) {
	if override == "" {
		return c.Profiles[c.CurrentProfile], nil
	}
	p, ok := c.Profiles[override]
	if !ok {
		return Profile{}, fmt.Errorf("profile %q not found", override)
	}
	return p, nil
}

func (p Profile) masked() Profile {
	p.Token = maskSecret(p.Token)
	return p
}

func (c *UserConfig) masked() *UserConfig {
	out := &UserConfig{CurrentProfile: c.CurrentProfile, Profiles: make(map[string]Profile, len(c.Profiles))}
	for name, p := range c.Profiles {
		out.Profiles[name] = p.masked()
	}
	return out
}

// maskSecret keeps the first and last four characters of long secrets.
func maskSecret(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 10:
		return "****"
	default:
		return s[:4] + "****" + s[len(s)-4:]
	}
}

// ConfigPath is ~/.sheetmap/config.yaml.
func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".sheetmap", "config.yaml")
}

// LoadUserConfig reads the profile file. A missing file is an empty config.
func LoadUserConfig() (*UserConfig, error) {
	data, err := os.ReadFile(ConfigPath())
	if errors.Is(err, fs.ErrNotExist) {
		return newUserConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := newUserConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", ConfigPath(), err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]Profile{}
	}
	return cfg, nil
}

// SaveUserConfig writes the profile file readable by the owner only.
func SaveUserConfig(cfg *UserConfig) error {
	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}
