package rename_test

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"relocator/internal/ir"
	"relocator/internal/mapper"
	"relocator/internal/model"
	"relocator/internal/rename"
	"relocator/internal/trace"
)

func dump(t *testing.T, cls *model.ClassHolder) string {
	t.Helper()
	var buf bytes.Buffer
	if err := model.Dump(&buf, cls); err != nil {
		t.Fatalf("dump: %v", err)
	}
	return buf.String()
}

func TestRenameClass_IdentityKeepsStructure(t *testing.T) {
	cls := sampleClass()
	before := dump(t, cls)
	body := cls.Method("run(La.C;[La.B;)V").Program
	instrs := snapshot(body)

	out, err := rename.New(mapper.Identity).RenameClass(cls)
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if got := dump(t, out); got != before {
		t.Errorf("identity rename changed the class:\n--- before\n%s--- after\n%s", before, got)
	}
	if !reflect.DeepEqual(snapshot(body), instrs) {
		t.Errorf("identity rename changed instructions")
	}
	if out.Method("run(La.C;[La.B;)V").Program != body {
		t.Errorf("body must be shared, not copied")
	}
}

func TestRenameClass_ExhaustiveSubstitution(t *testing.T) {
	cls := sampleClass()
	body := cls.Method("run(La.C;[La.B;)V").Program
	before := snapshot(body)

	out, err := rename.New(mapper.Suffix("$X")).RenameClass(cls)
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if out.Name != "a.B$X" || out.Parent != "a.Base$X" {
		t.Errorf("name/parent = %s/%s", out.Name, out.Parent)
	}
	if !reflect.DeepEqual(out.Interfaces, []string{"a.I1$X", "a.I2$X"}) {
		t.Errorf("interfaces = %v", out.Interfaces)
	}

	seen := make(map[ir.InstrKind]bool)
	for i, ins := range instructions(body) {
		seen[ins.Kind()] = true
		switch x := ins.(type) {
		case *ir.ClassConstantInstruction:
			want(t, x.Constant, ir.ArrayOf(ir.ObjectOf("a.B$X")))
		case *ir.CastInstruction:
			want(t, x.TargetType, ir.ObjectOf("a.C$X"))
		case *ir.ConstructArrayInstruction:
			want(t, x.ItemType, ir.ObjectOf("a.B$X"))
		case *ir.ConstructMultiArrayInstruction:
			want(t, x.ItemType, ir.ArrayOf(ir.ObjectOf("a.C$X")))
			if len(x.Dimensions) != 2 {
				t.Errorf("dimensions changed: %d", len(x.Dimensions))
			}
		case *ir.ConstructInstruction:
			if x.Type != "a.B$X" {
				t.Errorf("construct type = %s", x.Type)
			}
		case *ir.GetFieldInstruction:
			if x.Field.ClassName != "a.B$X" || x.Field.FieldName != "f" {
				t.Errorf("get field = %v", x.Field)
			}
		case *ir.PutFieldInstruction:
			if x.Field.ClassName != "a.C$X" || x.Field.FieldName != "g" {
				t.Errorf("put field = %v", x.Field)
			}
		case *ir.InvokeInstruction:
			if x.Method.ClassName != "a.B$X" || x.Method.Name != "m" {
				t.Errorf("invoke = %v", x.Method)
			}
			want(t, x.Method.Signature[0], ir.ObjectOf("a.C"))
		case *ir.IsInstanceInstruction:
			want(t, x.Type, ir.ObjectOf("a.D$X"))
		default:
			after := reflect.ValueOf(ins).Elem().Interface()
			if !reflect.DeepEqual(after, before[i]) {
				t.Errorf("%s changed: %+v -> %+v", ins.Kind(), before[i], after)
			}
		}
	}
	for _, k := range ir.AllInstrKinds() {
		if !seen[k] {
			t.Errorf("fixture lacks %s", k)
		}
	}
}

func want(t *testing.T, got, expected ir.ValueType) {
	t.Helper()
	if !ir.Equal(got, expected) {
		t.Errorf("got %v, want %v", got, expected)
	}
}

func TestRenameClass_KeepsNilAndEmptyInterfaces(t *testing.T) {
	for _, ifaces := range [][]string{nil, {}} {
		cls := model.NewClass("a.B")
		cls.Interfaces = ifaces
		out, err := rename.New(mapper.Identity).RenameClass(cls)
		if err != nil {
			t.Fatalf("rename: %v", err)
		}
		if (out.Interfaces == nil) != (ifaces == nil) || len(out.Interfaces) != 0 {
			t.Errorf("Interfaces %#v became %#v", ifaces, out.Interfaces)
		}
	}
}

func TestRenameClass_ResultIndexesNewDescriptors(t *testing.T) {
	cls := sampleClass()
	out, err := rename.New(mapper.Suffix("$X")).RenameClass(cls)
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	for _, m := range out.Methods() {
		if out.Method(m.Descriptor()) != m {
			t.Errorf("result does not index %s", m.Descriptor())
		}
	}
	if out.Method("run(La.C$X;[La.B$X;)V") == nil {
		t.Errorf("renamed run method not found under its new descriptor")
	}
}

func TestRenameType_Depth(t *testing.T) {
	r := rename.New(mapper.NewTable(map[string]string{"a.B": "a.C"}, mapper.FallbackStrict))
	for depth := 0; depth <= 4; depth++ {
		in, expected := ir.ObjectOf("a.B"), ir.ObjectOf("a.C")
		for range depth {
			in, expected = ir.ArrayOf(in), ir.ArrayOf(expected)
		}
		got, err := r.RenameType(in)
		if err != nil {
			t.Fatalf("depth %d: %v", depth, err)
		}
		if !ir.Equal(got, expected) || ir.Depth(got) != depth {
			t.Errorf("depth %d: got %v, want %v", depth, got, expected)
		}
	}

	for _, p := range []ir.ValueType{ir.Int, ir.ArrayOf(ir.ArrayOf(ir.Double)), ir.Void} {
		got, err := r.RenameType(p)
		if err != nil || !ir.Equal(got, p) {
			t.Errorf("RenameType(%v) = %v, %v", p, got, err)
		}
	}
}

func TestRenameMethod_OverrideConsumed(t *testing.T) {
	m := model.NewMethod("internalName", ir.ObjectOf("a.B"))
	o := model.NewAnnotation(rename.DefaultOverrideAnnotation)
	o.Values[rename.DefaultOverrideKey] = model.StringValue("emit")
	_ = m.Annotations.Add(o)
	_ = m.Annotations.Add(model.NewAnnotation("a.Keep"))

	for _, mp := range []mapper.Mapper{mapper.Identity, mapper.Suffix("$X")} {
		out, err := rename.New(mp).RenameMethod(m)
		if err != nil {
			t.Fatalf("rename: %v", err)
		}
		if out.Name != "emit" {
			t.Errorf("name = %q, want emit", out.Name)
		}
		if out.Annotations.Get(rename.DefaultOverrideAnnotation) != nil {
			t.Errorf("override annotation must be consumed")
		}
		if out.Annotations.Len() != 1 {
			t.Errorf("annotations = %d, want 1", out.Annotations.Len())
		}
	}
}

func TestRenameMethod_CustomOverride(t *testing.T) {
	m := model.NewMethod("f", ir.Void)
	o := model.NewAnnotation("x.Name")
	o.Values["to"] = model.StringValue("g")
	_ = m.Annotations.Add(o)

	out, err := rename.New(mapper.Identity, rename.WithOverrideAnnotation("x.Name", "to")).RenameMethod(m)
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if out.Name != "g" || out.Annotations.Len() != 0 {
		t.Errorf("got %s with %d annotations", out.Name, out.Annotations.Len())
	}
}

func TestRenameClass_MovesFields(t *testing.T) {
	cls := sampleClass()
	n := len(cls.Fields())
	out, err := rename.New(mapper.Suffix("$X")).RenameClass(cls)
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if got := len(cls.Fields()); got != 0 {
		t.Errorf("old class still has %d fields", got)
	}
	fields := out.Fields()
	if len(fields) != n {
		t.Fatalf("new class has %d fields, want %d", len(fields), n)
	}
	for _, f := range fields {
		if f.Owner() != out {
			t.Errorf("field %s owned by %v", f.Name, f.Owner())
		}
	}
	want(t, out.Field("next").Type, ir.ObjectOf("a.B$X"))
	want(t, out.Field("count").Type, ir.Int)
	if out.Field("next").Annotations.Get("a.Marker$X") == nil {
		t.Errorf("field annotation not renamed")
	}
	if out.Field("count").InitialValue != int32(3) {
		t.Errorf("initial value lost")
	}
}

func TestRenameClass_FieldTypesDisabled(t *testing.T) {
	cls := sampleClass()
	out, err := rename.New(mapper.Suffix("$X"), rename.WithFieldTypes(false)).RenameClass(cls)
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	want(t, out.Field("next").Type, ir.ObjectOf("a.B"))
	if out.Field("next").Annotations.Get("a.Marker") == nil {
		t.Errorf("field annotations must be left alone")
	}
}

func TestRenameMethod_SignaturePositions(t *testing.T) {
	sig := []ir.ValueType{ir.Int, ir.ObjectOf("a.B"), ir.ArrayOf(ir.ObjectOf("a.B")), ir.ObjectOf("a.C")}
	m := model.NewMethod("f", sig...)
	r := rename.New(mapper.NewTable(map[string]string{"a.B": "a.D", "a.C": "a.E"}, mapper.FallbackStrict))

	out, err := r.RenameMethod(m)
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	expected := []ir.ValueType{ir.Int, ir.ObjectOf("a.D"), ir.ArrayOf(ir.ObjectOf("a.D")), ir.ObjectOf("a.E")}
	if len(out.Signature) != len(expected) {
		t.Fatalf("arity %d, want %d", len(out.Signature), len(expected))
	}
	for i := range expected {
		want(t, out.Signature[i], expected[i])
	}
	if got := out.Descriptor(); got != "f(ILa.D;[La.D;)La.E;" {
		t.Errorf("descriptor = %s", got)
	}
	// The signature is rewritten in place.
	want(t, sig[1], ir.ObjectOf("a.D"))
}

func TestRenameClass_MapperFailureLeavesInputUntouched(t *testing.T) {
	cls := sampleClass()
	before := dump(t, cls)
	body := cls.Method("run(La.C;[La.B;)V").Program
	instrs := snapshot(body)

	boom := errors.New("boom")
	fail := mapper.Func(func(name string) (string, error) {
		if name == "a.D" {
			return "", boom
		}
		return name + "$X", nil
	})
	_, err := rename.New(fail).RenameClass(cls)
	if !errors.Is(err, boom) || !errors.Is(err, rename.ErrMapping) {
		t.Fatalf("expected mapper error, got %v", err)
	}
	var me *rename.MapError
	if !errors.As(err, &me) || me.Name != "a.D" {
		t.Errorf("expected *MapError for a.D, got %#v", err)
	}
	if got := dump(t, cls); got != before {
		t.Errorf("class modified on failure:\n%s", got)
	}
	if !reflect.DeepEqual(snapshot(body), instrs) {
		t.Errorf("instructions modified on failure")
	}
}

func TestRenameClass_StrictMapper(t *testing.T) {
	spec, err := mapper.Decode(strings.NewReader("[options]\nstrict = true\n[packages]\n\"a\" = \"z\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	cls := sampleClass()
	cls.Parent = "java.lang.Object"
	_, err = rename.New(spec.Mapper()).RenameClass(cls)
	if !errors.Is(err, mapper.ErrUnmapped) {
		t.Fatalf("expected ErrUnmapped, got %v", err)
	}
	if !strings.Contains(err.Error(), "parent") {
		t.Errorf("error should locate the parent: %v", err)
	}
}

func TestRenameClass_NoParent(t *testing.T) {
	cls := model.NewClass("a.B")
	calls := 0
	m := mapper.Func(func(name string) (string, error) {
		calls++
		return name, nil
	})
	out, err := rename.New(m).RenameClass(cls)
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if out.Parent != "" || calls != 1 {
		t.Errorf("parent = %q, mapper calls = %d", out.Parent, calls)
	}
}

func TestRenameClass_MalformedIR(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cls *model.ClassHolder)
		want   string
	}{
		{
			name: "nil_instruction",
			mutate: func(cls *model.ClassHolder) {
				b := cls.Method("run(La.C;[La.B;)V").Program.Blocks[1]
				b.Instructions[2] = nil
			},
			want: "nil instruction",
		},
		{
			name: "missing_cast_type",
			mutate: func(cls *model.ClassHolder) {
				p := cls.Method("run(La.C;[La.B;)V").Program
				p.Blocks[0].Add(&ir.CastInstruction{})
			},
			want: "missing type",
		},
		{
			name: "array_without_item",
			mutate: func(cls *model.ClassHolder) {
				p := cls.Method("run(La.C;[La.B;)V").Program
				p.Blocks[0].Add(&ir.IsInstanceInstruction{Type: ir.Array{}})
			},
			want: "array without item type",
		},
		{
			name: "empty_construct",
			mutate: func(cls *model.ClassHolder) {
				p := cls.Method("run(La.C;[La.B;)V").Program
				p.Blocks[0].Add(&ir.ConstructInstruction{})
			},
			want: "empty class name",
		},
		{
			name: "override_not_string",
			mutate: func(cls *model.ClassHolder) {
				o := model.NewAnnotation(rename.DefaultOverrideAnnotation)
				o.Values[rename.DefaultOverrideKey] = model.IntValue(1)
				_ = cls.Method("get()La.D;").Annotations.Add(o)
			},
			want: "non-empty string",
		},
		{
			name: "override_without_value",
			mutate: func(cls *model.ClassHolder) {
				_ = cls.Method("get()La.D;").Annotations.Add(model.NewAnnotation(rename.DefaultOverrideAnnotation))
			},
			want: "missing \"value\" argument",
		},
		{
			name: "method_collision",
			mutate: func(cls *model.ClassHolder) {
				o := model.NewAnnotation(rename.DefaultOverrideAnnotation)
				o.Values[rename.DefaultOverrideKey] = model.StringValue("get")
				m := model.NewMethod("other", ir.ObjectOf("a.D"))
				_ = m.Annotations.Add(o)
				_ = cls.AddMethod(m)
			},
			want: "collides with get()La.D;",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls := sampleClass()
			tt.mutate(cls)
			before := dump(t, cls)
			_, err := rename.New(mapper.Suffix("$X")).RenameClass(cls)
			if !errors.Is(err, rename.ErrMalformedIR) {
				t.Fatalf("expected ErrMalformedIR, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
			if got := dump(t, cls); got != before {
				t.Errorf("class modified on failure")
			}
		})
	}
}

func TestRenameProgram_LocatesError(t *testing.T) {
	p := everyKind()
	p.Blocks[1].Add(&ir.GetFieldInstruction{})
	err := rename.New(mapper.Identity).RenameProgram(p)
	var ie *rename.IRError
	if !errors.As(err, &ie) {
		t.Fatalf("expected *IRError, got %v", err)
	}
	if ie.At.Block != 1 || ie.At.Instr != 5 || ie.At.Kind != ir.InstrGetField {
		t.Errorf("location = %+v", ie.At)
	}
}

func TestRenameAnnotations_Values(t *testing.T) {
	build := func() *model.MethodHolder {
		nested := model.NewAnnotation("a.Inner")
		nested.Values["type"] = model.ClassValue(ir.ObjectOf("a.B"))
		a := model.NewAnnotation("a.Outer")
		a.Values["type"] = model.ClassValue(ir.ArrayOf(ir.ObjectOf("a.B")))
		a.Values["mode"] = model.EnumValue("a.Mode", "FAST")
		a.Values["inner"] = model.NestedValue(nested)
		a.Values["list"] = model.ListValue(model.ClassValue(ir.ObjectOf("a.C")), model.IntValue(4))
		a.Values["name"] = model.StringValue("a.B")
		m := model.NewMethod("f", ir.Void)
		_ = m.Annotations.Add(a)
		return m
	}

	t.Run("rename", func(t *testing.T) {
		out, err := rename.New(mapper.Suffix("$X")).RenameMethod(build())
		if err != nil {
			t.Fatalf("rename: %v", err)
		}
		a := out.Annotations.Get("a.Outer$X")
		if a == nil {
			t.Fatalf("annotation type not renamed: %v", out.Annotations.All())
		}
		expected := `@a.Outer$X(inner=@a.Inner$X(type=La.B$X;.class), list={La.C$X;.class, 4}, mode=a.Mode$X.FAST, name="a.B", type=[La.B$X;.class)`
		if got := a.Format(); got != expected {
			t.Errorf("got  %s\nwant %s", got, expected)
		}
	})

	t.Run("copy", func(t *testing.T) {
		src := build()
		out, err := rename.New(mapper.Suffix("$X"), rename.WithAnnotationValues(rename.CopyAnnotationValues)).RenameMethod(src)
		if err != nil {
			t.Fatalf("rename: %v", err)
		}
		a := out.Annotations.Get("a.Outer$X")
		if a == nil {
			t.Fatal("annotation type not renamed")
		}
		orig := src.Annotations.Get("a.Outer")
		if got, exp := strings.TrimPrefix(a.Format(), "@a.Outer$X"), strings.TrimPrefix(orig.Format(), "@a.Outer"); got != exp {
			t.Errorf("values changed: %s vs %s", got, exp)
		}
		a.Values["list"].List[1] = model.IntValue(9)
		if orig.Values["list"].List[1].Int != 4 {
			t.Errorf("copied list aliases the source")
		}
	})
}

func TestRenameClass_AnnotationCollision(t *testing.T) {
	cls := sampleClass()
	_ = cls.Annotations.Add(model.NewAnnotation("b.Marker"))
	m := mapper.NewPrefix(map[string]string{"a": "c", "b": "c"}, mapper.FallbackIdentity)
	_, err := rename.New(m).RenameClass(cls)
	if !errors.Is(err, rename.ErrMalformedIR) || !strings.Contains(err.Error(), "collides") {
		t.Fatalf("expected collision error, got %v", err)
	}
}

func TestRenameClass_Traces(t *testing.T) {
	ring := trace.NewRingTracer(64, trace.LevelDebug)
	_, err := rename.New(mapper.Suffix("$X"), rename.WithTracer(ring)).RenameClass(sampleClass())
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	var names []string
	for _, ev := range ring.Snapshot() {
		names = append(names, ev.Kind.String()+" "+ev.Name)
	}
	got := strings.Join(names, "\n")
	for _, w := range []string{"begin class:a.B", "point method:run(La.C;[La.B;)V", "point method:get()La.D;", "end class:a.B"} {
		if !strings.Contains(got, w) {
			t.Errorf("trace lacks %q:\n%s", w, got)
		}
	}
}
