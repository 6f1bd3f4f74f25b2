package model

import (
	"fmt"
	"strings"
)

// ElementModifier is a set of declaration modifiers.
type ElementModifier uint16

const (
	ModAbstract ElementModifier = 1 << iota
	ModFinal
	ModStatic
	ModNative
	ModSynchronized
	ModVolatile
	ModTransient
	ModInterface
	ModEnum
	ModAnnotation
	ModBridge
	ModSynthetic
	ModVarargs
)

var modifierNames = []struct {
	mod  ElementModifier
	name string
}{
	{ModAbstract, "abstract"},
	{ModFinal, "final"},
	{ModStatic, "static"},
	{ModNative, "native"},
	{ModSynchronized, "synchronized"},
	{ModVolatile, "volatile"},
	{ModTransient, "transient"},
	{ModInterface, "interface"},
	{ModEnum, "enum"},
	{ModAnnotation, "annotation"},
	{ModBridge, "bridge"},
	{ModSynthetic, "synthetic"},
	{ModVarargs, "varargs"},
}

// Has reports whether all bits of m are set.
func (s ElementModifier) Has(m ElementModifier) bool { return s&m == m }

// With returns s with m added.
func (s ElementModifier) With(m ElementModifier) ElementModifier { return s | m }

func (s ElementModifier) String() string {
	var parts []string
	for _, mn := range modifierNames {
		if s.Has(mn.mod) {
			parts = append(parts, mn.name)
		}
	}
	return strings.Join(parts, " ")
}

// AccessLevel is the visibility of a class or member.
type AccessLevel uint8

const (
	LevelPackagePrivate AccessLevel = iota
	LevelPrivate
	LevelProtected
	LevelPublic
)

func (l AccessLevel) String() string {
	switch l {
	case LevelPackagePrivate:
		return "package"
	case LevelPrivate:
		return "private"
	case LevelProtected:
		return "protected"
	case LevelPublic:
		return "public"
	default:
		return fmt.Sprintf("level(%d)", uint8(l))
	}
}
