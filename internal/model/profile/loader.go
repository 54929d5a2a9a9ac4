package profile

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

type catalogueFile struct {
	Profiles []Profile `toml:"profiles"`
}

// LoadFile reads assistant profiles from a TOML catalogue file.
func LoadFile(path string) ([]Profile, error) {
	var file catalogueFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("decode profiles file %s: %w", path, err)
	}
	return validateAll(file.Profiles)
}

// Parse reads assistant profiles from TOML text.
func Parse(data string) ([]Profile, error) {
	var file catalogueFile
	if _, err := toml.Decode(data, &file); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	return validateAll(file.Profiles)
}

func validateAll(profiles []Profile) ([]Profile, error) {
	if len(profiles) == 0 {
		return nil, fmt.Errorf("no profiles defined")
	}
	seen := make(map[string]struct{}, len(profiles))
	for _, p := range profiles {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("duplicate profile id %s", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return profiles, nil
}

// OpenStore returns a store over the catalogue file at path, or over the
// built-in profiles when path is empty.
func OpenStore(path string) (*MemoryStore, error) {
	if path == "" {
		return NewMemoryStore(Seed()), nil
	}
	profiles, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return NewMemoryStore(profiles), nil
}
