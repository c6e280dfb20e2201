package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ProfileFile is the default location of the saved profile, relative to the
// user config directory.
const ProfileFile = "notekeeper/profile.json"

// Profile holds the server address and access token saved by "login".
type Profile struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}

// DefaultProfilePath returns the profile location under the user config
// directory.
func DefaultProfilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ProfileFile), nil
}

// LoadProfile reads the profile at path. A missing file yields an empty
// profile.
func LoadProfile(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Profile{}, nil
		}
		return nil, err
	}
	defer f.Close()

	var p Profile
	if err := json.NewDecoder(f).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", path, err)
	}
	return &p, nil
}

// Save writes the profile to path with owner-only permissions.
func (p *Profile) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}
