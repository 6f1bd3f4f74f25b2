package mapper

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/unicode/norm"
)

// Spec is the declarative form of a mapping, as read from TOML:
//
//	[options]
//	strict = true
//
//	[classes]
//	"com.acme.Widget" = "org.example.Widget"
//
//	[packages]
//	"com.acme.util" = "shaded.acme.util"
//
// Exact class entries take precedence over package rules.
type Spec struct {
	Options  SpecOptions       `toml:"options"`
	Classes  map[string]string `toml:"classes"`
	Packages map[string]string `toml:"packages"`
}

// SpecOptions holds the [options] table.
type SpecOptions struct {
	Strict bool `toml:"strict"`
}

// LoadFile reads a mapping spec from a TOML file.
func LoadFile(path string) (*Spec, error) {
	var s Spec
	meta, err := toml.DecodeFile(path, &s)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if err := s.check(meta); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &s, nil
}

// Decode reads a mapping spec from r.
func Decode(r io.Reader) (*Spec, error) {
	var s Spec
	meta, err := toml.NewDecoder(r).Decode(&s)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if err := s.check(meta); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Spec) check(meta toml.MetaData) error {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if !meta.IsDefined("classes") && !meta.IsDefined("packages") {
		return fmt.Errorf("missing [classes] or [packages]")
	}
	return s.Normalize()
}

// Normalize converts every name to Unicode NFC and rejects empty names.
// Class names that differ only in normalization form would otherwise miss
// each other in lookups.
func (s *Spec) Normalize() error {
	classes, err := normalizeMap(s.Classes, "classes", false)
	if err != nil {
		return err
	}
	packages, err := normalizeMap(s.Packages, "packages", true)
	if err != nil {
		return err
	}
	s.Classes, s.Packages = classes, packages
	return nil
}

func normalizeMap(in map[string]string, section string, allowEmptyTarget bool) (map[string]string, error) {
	out := make(map[string]string, len(in))
	for from, to := range in {
		nf, nt := norm.NFC.String(strings.TrimSpace(from)), norm.NFC.String(strings.TrimSpace(to))
		if nf == "" {
			return nil, fmt.Errorf("[%s]: empty source name", section)
		}
		if nt == "" && !allowEmptyTarget {
			return nil, fmt.Errorf("[%s]: empty target for %q", section, nf)
		}
		if prev, dup := out[nf]; dup && prev != nt {
			return nil, fmt.Errorf("[%s]: %q mapped twice after normalization", section, nf)
		}
		out[nf] = nt
	}
	return out, nil
}

// Mapper builds the mapper the spec describes. Input names are normalized
// to NFC for lookup only; uncovered names come back exactly as given.
func (s *Spec) Mapper() Mapper {
	fallback := FallbackIdentity
	if s.Options.Strict {
		fallback = FallbackStrict
	}
	chain := Chain{
		NewTable(s.Classes, FallbackStrict),
		NewPrefix(s.Packages, FallbackStrict),
	}
	lookup := Func(func(name string) (string, error) {
		return chain.Map(norm.NFC.String(name))
	})
	return WithFallback(lookup, fallback)
}
