// Package mapper supplies class-name mapping strategies for the renamer.
//
// A Mapper must be a pure function of its input: the renamer may call it
// any number of times per name and from several goroutines at once.
package mapper

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnmapped is returned by strict mappers for names they do not know.
var ErrUnmapped = errors.New("unmapped class name")

// UnmappedError reports the name a strict mapper refused.
type UnmappedError struct {
	Name string
}

func (e *UnmappedError) Error() string {
	return fmt.Sprintf("%v: %s", ErrUnmapped, e.Name)
}

func (e *UnmappedError) Unwrap() error { return ErrUnmapped }

// Mapper maps a fully-qualified class name to its new name.
type Mapper interface {
	Map(name string) (string, error)
}

// Func adapts a function to Mapper.
type Func func(name string) (string, error)

// Map calls f.
func (f Func) Map(name string) (string, error) { return f(name) }

// Identity returns every name unchanged.
var Identity Mapper = Func(func(name string) (string, error) { return name, nil })

// Suffix appends s to every name.
func Suffix(s string) Mapper {
	return Func(func(name string) (string, error) { return name + s, nil })
}

// Fallback decides what a Table does with names it has no entry for.
type Fallback uint8

const (
	// FallbackIdentity returns unknown names unchanged.
	FallbackIdentity Fallback = iota
	// FallbackStrict fails with *UnmappedError.
	FallbackStrict
)

// Table maps names through an explicit dictionary.
type Table struct {
	entries  map[string]string
	fallback Fallback
}

// NewTable returns a table over a copy of entries.
func NewTable(entries map[string]string, fallback Fallback) *Table {
	t := &Table{entries: make(map[string]string, len(entries)), fallback: fallback}
	for k, v := range entries {
		t.entries[k] = v
	}
	return t
}

// Map looks name up.
func (t *Table) Map(name string) (string, error) {
	if to, ok := t.entries[name]; ok {
		return to, nil
	}
	if t.fallback == FallbackStrict {
		return "", &UnmappedError{Name: name}
	}
	return name, nil
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.entries) }

// Prefix relocates classes by package: a class inside a registered package,
// or one of its subpackages, gets that package prefix replaced. The longest
// matching prefix wins. Names outside every prefix are unmapped.
type Prefix struct {
	rules    []prefixRule
	fallback Fallback
}

type prefixRule struct {
	from, to string
}

// NewPrefix builds a package relocation mapper from "old.pkg" -> "new.pkg" pairs.
func NewPrefix(packages map[string]string, fallback Fallback) *Prefix {
	p := &Prefix{fallback: fallback}
	for from, to := range packages {
		p.rules = append(p.rules, prefixRule{from: strings.TrimSuffix(from, "."), to: strings.TrimSuffix(to, ".")})
	}
	sort.Slice(p.rules, func(i, j int) bool {
		if len(p.rules[i].from) != len(p.rules[j].from) {
			return len(p.rules[i].from) > len(p.rules[j].from)
		}
		return p.rules[i].from < p.rules[j].from
	})
	return p
}

// Map relocates name.
func (p *Prefix) Map(name string) (string, error) {
	for _, r := range p.rules {
		if strings.HasPrefix(name, r.from+".") {
			rest := name[len(r.from):]
			if r.to == "" {
				return strings.TrimPrefix(rest, "."), nil
			}
			return r.to + rest, nil
		}
	}
	if p.fallback == FallbackStrict {
		return "", &UnmappedError{Name: name}
	}
	return name, nil
}

// Chain tries mappers in order. A mapper that fails with ErrUnmapped passes
// the name on; any other error stops the chain. When every mapper passes,
// the chain itself reports ErrUnmapped.
type Chain []Mapper

// Map runs the chain.
func (c Chain) Map(name string) (string, error) {
	for _, m := range c {
		to, err := m.Map(name)
		if err == nil {
			return to, nil
		}
		if !errors.Is(err, ErrUnmapped) {
			return "", err
		}
	}
	return "", &UnmappedError{Name: name}
}

// WithFallback wraps m so that ErrUnmapped becomes the identity mapping.
func WithFallback(m Mapper, fallback Fallback) Mapper {
	if fallback == FallbackStrict {
		return m
	}
	return Func(func(name string) (string, error) {
		to, err := m.Map(name)
		if errors.Is(err, ErrUnmapped) {
			return name, nil
		}
		return to, err
	})
}
