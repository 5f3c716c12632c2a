package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// ProjectFile is the name of the per-project metadata file written by
// `gbit init` in the project root.
const ProjectFile = "gbit.toml"

// IgnoreFile is the name of the per-project exclusion list.
const IgnoreFile = ".gbitignore"

// Project is the per-project metadata for a capture root.
type Project struct {
	Name string `toml:"name"`
}

// ReadProject reads the project file at path.
func ReadProject(path string) (*Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open project file: %w", err)
	}
	defer f.Close()

	var p Project
	if _, err := toml.NewDecoder(f).Decode(&p); err != nil {
		return nil, fmt.Errorf("reading project file from %s: %w", path, err)
	}
	if p.Name == "" {
		return nil, fmt.Errorf("project file %s has no name", path)
	}
	return &p, nil
}

// InitProject writes a new project file at path. Refuses to overwrite an
// existing one.
func InitProject(path string, p *Project) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("project file already exists at %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create project file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(p); err != nil {
		return fmt.Errorf("writing project file to %s: %w", path, err)
	}
	return nil
}
