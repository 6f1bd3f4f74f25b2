package mapper_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"relocator/internal/mapper"
)

func TestTable(t *testing.T) {
	tbl := mapper.NewTable(map[string]string{"a.B": "a.C"}, mapper.FallbackIdentity)
	if got, err := tbl.Map("a.B"); err != nil || got != "a.C" {
		t.Errorf("Map(a.B) = %q, %v", got, err)
	}
	if got, err := tbl.Map("x.Y"); err != nil || got != "x.Y" {
		t.Errorf("identity fallback: Map(x.Y) = %q, %v", got, err)
	}

	strict := mapper.NewTable(map[string]string{"a.B": "a.C"}, mapper.FallbackStrict)
	_, err := strict.Map("x.Y")
	if !errors.Is(err, mapper.ErrUnmapped) {
		t.Fatalf("expected ErrUnmapped, got %v", err)
	}
	var ue *mapper.UnmappedError
	if !errors.As(err, &ue) || ue.Name != "x.Y" {
		t.Errorf("expected *UnmappedError for x.Y, got %#v", err)
	}
}

func TestPrefix(t *testing.T) {
	p := mapper.NewPrefix(map[string]string{
		"com.acme":      "shaded.acme",
		"com.acme.util": "tools",
		"org.flat":      "",
	}, mapper.FallbackIdentity)

	tests := []struct{ in, want string }{
		{"com.acme.Widget", "shaded.acme.Widget"},
		{"com.acme.util.Strings", "tools.Strings"},
		{"com.acme.util.deep.X", "tools.deep.X"},
		{"com.acmecorp.Other", "com.acmecorp.Other"},
		{"org.flat.Thing", "Thing"},
		{"java.lang.Object", "java.lang.Object"},
	}
	for _, tt := range tests {
		got, err := p.Map(tt.in)
		if err != nil {
			t.Errorf("Map(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Map(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestChain(t *testing.T) {
	boom := errors.New("boom")
	c := mapper.Chain{
		mapper.NewTable(map[string]string{"a.B": "x.B"}, mapper.FallbackStrict),
		mapper.Func(func(name string) (string, error) {
			if name == "bad" {
				return "", boom
			}
			return "", &mapper.UnmappedError{Name: name}
		}),
		mapper.NewPrefix(map[string]string{"a": "z"}, mapper.FallbackStrict),
	}
	if got, _ := c.Map("a.B"); got != "x.B" {
		t.Errorf("table entry should win, got %q", got)
	}
	if got, _ := c.Map("a.D"); got != "z.D" {
		t.Errorf("prefix should apply, got %q", got)
	}
	if _, err := c.Map("bad"); !errors.Is(err, boom) {
		t.Errorf("hard error must stop the chain, got %v", err)
	}
	if _, err := c.Map("q.Q"); !errors.Is(err, mapper.ErrUnmapped) {
		t.Errorf("expected ErrUnmapped, got %v", err)
	}
	lenient := mapper.WithFallback(c, mapper.FallbackIdentity)
	if got, err := lenient.Map("q.Q"); err != nil || got != "q.Q" {
		t.Errorf("fallback: %q, %v", got, err)
	}
}

func TestDecode(t *testing.T) {
	src := `
[options]
strict = true

[classes]
"com.acme.Widget" = "org.example.Widget"

[packages]
"com.acme" = "shaded.acme"
`
	spec, err := mapper.Decode(strings.NewReader(src))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	m := spec.Mapper()
	tests := []struct{ in, want string }{
		{"com.acme.Widget", "org.example.Widget"},
		{"com.acme.Gadget", "shaded.acme.Gadget"},
	}
	for _, tt := range tests {
		if got, err := m.Map(tt.in); err != nil || got != tt.want {
			t.Errorf("Map(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
	if _, err := m.Map("java.lang.Object"); !errors.Is(err, mapper.ErrUnmapped) {
		t.Errorf("strict spec must reject unknown names, got %v", err)
	}
}

func TestDecode_NormalizesNames(t *testing.T) {
	// "é" as e + combining acute in the file, precomposed in the query.
	src := "[classes]\n\"cafe\u0301.Menu\" = \"bistro.Menu\"\n"
	spec, err := mapper.Decode(strings.NewReader(src))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, err := spec.Mapper().Map("caf\u00e9.Menu")
	if err != nil || got != "bistro.Menu" {
		t.Errorf("Map = %q, %v", got, err)
	}
}

func TestSpecMapper_UncoveredNameKeepsForm(t *testing.T) {
	spec, err := mapper.Decode(strings.NewReader("[classes]\n\"a.X\" = \"b.X\"\n"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	in := "a.Cafe\u0301"
	got, err := spec.Mapper().Map(in)
	if err != nil || got != in {
		t.Errorf("Map(%q) = %q, %v; want the input unchanged", in, got, err)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"empty", ``, "missing [classes] or [packages]"},
		{"unknown_key", "[classes]\n\"a.B\" = \"a.C\"\n[extra]\nx = 1\n", "unknown keys"},
		{"empty_target", "[classes]\n\"a.B\" = \"\"\n", "empty target"},
		{"bad_toml", "[classes\n", "failed to parse TOML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mapper.Decode(strings.NewReader(tt.src))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.toml")
	if err := os.WriteFile(path, []byte("[packages]\n\"a\" = \"b\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	spec, err := mapper.LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got, _ := spec.Mapper().Map("a.X"); got != "b.X" {
		t.Errorf("Map(a.X) = %q", got)
	}
}
