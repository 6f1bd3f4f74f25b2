package ir_test

import (
	"testing"

	"relocator/internal/ir"
)

func TestParseValueType(t *testing.T) {
	tests := []struct {
		desc  string
		want  ir.ValueType
		depth int
	}{
		{"I", ir.Int, 0},
		{"V", ir.Void, 0},
		{"[J", ir.ArrayOf(ir.Long), 1},
		{"La/B;", ir.ObjectOf("a.B"), 0},
		{"La.B;", ir.ObjectOf("a.B"), 0},
		{"[[Ljava/lang/String;", ir.ArrayOf(ir.ArrayOf(ir.ObjectOf("java.lang.String"))), 2},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got, err := ir.ParseValueType(tt.desc)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !ir.Equal(got, tt.want) {
				t.Errorf("got %s, want %s", got, tt.want)
			}
			if d := ir.Depth(got); d != tt.depth {
				t.Errorf("depth %d, want %d", d, tt.depth)
			}
		})
	}
}

func TestParseValueType_Errors(t *testing.T) {
	for _, desc := range []string{"", "Q", "La/B", "L;", "[V", "II"} {
		if _, err := ir.ParseValueType(desc); err == nil {
			t.Errorf("ParseValueType(%q): expected error", desc)
		}
	}
}

func TestParseSignature(t *testing.T) {
	sig, err := ir.ParseSignature("(ILa/B;[La/B;)La/C;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []ir.ValueType{ir.Int, ir.ObjectOf("a.B"), ir.ArrayOf(ir.ObjectOf("a.B")), ir.ObjectOf("a.C")}
	if len(sig) != len(want) {
		t.Fatalf("got %d entries, want %d", len(sig), len(want))
	}
	for i := range want {
		if !ir.Equal(sig[i], want[i]) {
			t.Errorf("sig[%d] = %s, want %s", i, sig[i], want[i])
		}
	}
	if got := ir.FormatSignature(sig); got != "(ILa.B;[La.B;)La.C;" {
		t.Errorf("FormatSignature = %q", got)
	}
}

func TestParseSignature_Errors(t *testing.T) {
	for _, desc := range []string{"I", "(I", "(V)V", "()", "(I)VV"} {
		if _, err := ir.ParseSignature(desc); err == nil {
			t.Errorf("ParseSignature(%q): expected error", desc)
		}
	}
}

func TestEqual(t *testing.T) {
	if ir.Equal(ir.ArrayOf(ir.Int), ir.ArrayOf(ir.Long)) {
		t.Error("int[] must differ from long[]")
	}
	if ir.Equal(ir.ObjectOf("a.B"), ir.ArrayOf(ir.ObjectOf("a.B"))) {
		t.Error("object must differ from array")
	}
	if !ir.Equal(nil, nil) {
		t.Error("nil types must be equal")
	}
	if ir.Equal(ir.Int, nil) {
		t.Error("int must differ from nil")
	}
}
