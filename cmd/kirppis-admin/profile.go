// ABOUTME: TOML profile for the admin CLI
// ABOUTME: Persists the server URL and bearer token between invocations

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Profile is the saved CLI state. Environment variables KIRPPIS_URL and
// KIRPPIS_TOKEN override the stored values without touching the file.
type Profile struct {
	ServerURL string `toml:"server_url"`
	Token     string `toml:"token"`
}

const defaultServerURL = "http://localhost:5000"

// profilePath returns the profile location.
// Priority: XDG_CONFIG_HOME/kirppis/admin.toml > ~/.config/kirppis/admin.toml
func profilePath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "admin.toml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "kirppis", "admin.toml")
}

// loadProfile reads the profile file. A missing file yields defaults.
func loadProfile() (*Profile, error) {
	profile := &Profile{ServerURL: defaultServerURL}

	path := profilePath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return profile, nil
	}

	if _, err := toml.DecodeFile(path, profile); err != nil {
		return nil, fmt.Errorf("reading profile %s: %w", path, err)
	}
	if profile.ServerURL == "" {
		profile.ServerURL = defaultServerURL
	}
	return profile, nil
}

// saveProfile writes the profile with owner-only permissions since it
// holds a bearer token.
func saveProfile(profile *Profile) error {
	path := profilePath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating profile directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("opening profile %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(profile); err != nil {
		return fmt.Errorf("writing profile: %w", err)
	}
	return nil
}
