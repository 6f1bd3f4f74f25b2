// Package config loads relocate.toml, the project file holding renamer
// settings and, optionally, the class mapping itself.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"relocator/internal/mapper"
	"relocator/internal/rename"
)

// FileName is the project file looked up by Find.
const FileName = "relocate.toml"

// Config is a decoded relocate.toml.
//
//	[rename]
//	override_annotation = "relocator.annotation.Rename"
//	override_key = "value"
//	rename_field_types = true
//	annotation_values = "rename"   # or "copy"
//	jobs = 4
//
//	[packages]
//	"com.acme" = "shaded.acme"
type Config struct {
	Path string

	Rename   RenameConfig       `toml:"rename"`
	Options  mapper.SpecOptions `toml:"options"`
	Classes  map[string]string  `toml:"classes"`
	Packages map[string]string  `toml:"packages"`

	hasMapping bool
}

// RenameConfig is the [rename] table.
type RenameConfig struct {
	OverrideAnnotation string `toml:"override_annotation"`
	OverrideKey        string `toml:"override_key"`
	RenameFieldTypes   bool   `toml:"rename_field_types"`
	AnnotationValues   string `toml:"annotation_values"`
	Jobs               int    `toml:"jobs"`
}

// Default returns the settings used without a project file.
func Default() *Config {
	return &Config{
		Rename: RenameConfig{
			OverrideAnnotation: rename.DefaultOverrideAnnotation,
			OverrideKey:        rename.DefaultOverrideKey,
			RenameFieldTypes:   true,
			AnnotationValues:   "rename",
		},
	}
}

// Find walks from startDir up to the filesystem root looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadNearest finds and loads the project file above startDir. Without one
// it returns Default and false.
func LoadNearest(startDir string) (*Config, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return Default(), false, err
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return cfg, true, nil
}

// Load reads and validates the project file at path.
func Load(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if err := cfg.check(meta); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

func (c *Config) check(meta toml.MetaData) error {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if meta.IsDefined("rename", "override_annotation") && strings.TrimSpace(c.Rename.OverrideAnnotation) == "" {
		return fmt.Errorf("[rename].override_annotation must not be empty")
	}
	if meta.IsDefined("rename", "override_key") && strings.TrimSpace(c.Rename.OverrideKey) == "" {
		return fmt.Errorf("[rename].override_key must not be empty")
	}
	if _, err := ParseAnnotationValues(c.Rename.AnnotationValues); err != nil {
		return fmt.Errorf("[rename].annotation_values: %w", err)
	}
	if c.Rename.Jobs < 0 {
		return fmt.Errorf("[rename].jobs must be >= 0, got %d", c.Rename.Jobs)
	}
	c.hasMapping = meta.IsDefined("classes") || meta.IsDefined("packages")
	if meta.IsDefined("options") && !c.hasMapping {
		return fmt.Errorf("[options] without [classes] or [packages]")
	}
	return nil
}

// ParseAnnotationValues converts "rename" or "copy" to a mode.
func ParseAnnotationValues(s string) (rename.AnnotationValueMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rename":
		return rename.RenameClassValues, nil
	case "copy":
		return rename.CopyAnnotationValues, nil
	}
	return 0, fmt.Errorf("invalid mode %q (expected: rename|copy)", s)
}

// Mapping returns the mapping embedded in the project file, or false when
// the file has no [classes] or [packages] table.
func (c *Config) Mapping() (*mapper.Spec, bool, error) {
	if !c.hasMapping {
		return nil, false, nil
	}
	spec := &mapper.Spec{Options: c.Options, Classes: c.Classes, Packages: c.Packages}
	if err := spec.Normalize(); err != nil {
		if c.Path != "" {
			return nil, true, fmt.Errorf("%s: %w", c.Path, err)
		}
		return nil, true, err
	}
	return spec, true, nil
}

// RenameOptions translates the [rename] table into renamer options.
func (c *Config) RenameOptions() ([]rename.Option, error) {
	mode, err := ParseAnnotationValues(c.Rename.AnnotationValues)
	if err != nil {
		return nil, fmt.Errorf("[rename].annotation_values: %w", err)
	}
	return []rename.Option{
		rename.WithOverrideAnnotation(c.Rename.OverrideAnnotation, c.Rename.OverrideKey),
		rename.WithFieldTypes(c.Rename.RenameFieldTypes),
		rename.WithAnnotationValues(mode),
	}, nil
}
