package model

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"relocator/internal/ir"
)

// Dump writes a human-readable listing of cls, method bodies included.
// Field names are padded by display width so that non-ASCII identifiers
// keep the type column aligned.
func Dump(w io.Writer, cls *ClassHolder) error {
	if w == nil || cls == nil {
		return nil
	}
	var sb strings.Builder
	for _, a := range cls.Annotations.All() {
		fmt.Fprintf(&sb, "%s\n", a.Format())
	}
	fmt.Fprintf(&sb, "%s", header(cls.Level, cls.Modifiers))
	fmt.Fprintf(&sb, "class %s", cls.Name)
	if cls.Parent != "" {
		fmt.Fprintf(&sb, " extends %s", cls.Parent)
	}
	if len(cls.Interfaces) > 0 {
		fmt.Fprintf(&sb, " implements %s", strings.Join(cls.Interfaces, ", "))
	}
	sb.WriteString(" {\n")

	fields := cls.Fields()
	width := 0
	for _, f := range fields {
		width = max(width, runewidth.StringWidth(f.Name))
	}
	for _, f := range fields {
		for _, a := range f.Annotations.All() {
			fmt.Fprintf(&sb, "  %s\n", a.Format())
		}
		fmt.Fprintf(&sb, "  %sfield %s %s", header(f.Level, f.Modifiers), runewidth.FillRight(f.Name, width), typeName(f.Type))
		if f.InitialValue != nil {
			fmt.Fprintf(&sb, " = %v", f.InitialValue)
		}
		sb.WriteByte('\n')
	}

	for _, m := range cls.Methods() {
		for _, a := range m.Annotations.All() {
			fmt.Fprintf(&sb, "  %s\n", a.Format())
		}
		fmt.Fprintf(&sb, "  %smethod %s\n", header(m.Level, m.Modifiers), m.Descriptor())
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
		sb.Reset()
		if err := ir.Dump(w, m.Program); err != nil {
			return err
		}
	}
	sb.WriteString("}\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func header(level AccessLevel, mods ElementModifier) string {
	s := level.String() + " "
	if m := mods.String(); m != "" {
		s += m + " "
	}
	return s
}

func typeName(t ir.ValueType) string {
	if t == nil {
		return "?"
	}
	return t.String()
}
