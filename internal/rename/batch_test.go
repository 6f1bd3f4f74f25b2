package rename_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"relocator/internal/ir"
	"relocator/internal/mapper"
	"relocator/internal/model"
	"relocator/internal/rename"
	"relocator/internal/trace"
)

func batch(n int) []*model.ClassHolder {
	classes := make([]*model.ClassHolder, n)
	for i := range classes {
		cls := model.NewClass(fmt.Sprintf("p.C%d", i))
		cls.Parent = "p.Base"
		m := model.NewMethod("make", ir.ObjectOf(cls.Name))
		m.Program = ir.NewProgram()
		v := m.Program.CreateVariable("o")
		m.Program.CreateBlock().Add(
			&ir.ConstructInstruction{Type: cls.Name, Receiver: v},
			&ir.ExitInstruction{ValueToReturn: v},
		)
		_ = cls.AddMethod(m)
		_ = cls.AddField(model.NewField("self", ir.ObjectOf(cls.Name)))
		classes[i] = cls
	}
	return classes
}

func TestRenameClasses_KeepsOrder(t *testing.T) {
	classes := batch(16)
	r := rename.New(mapper.NewPrefix(map[string]string{"p": "q"}, mapper.FallbackStrict))
	out, err := r.RenameClasses(context.Background(), classes, 4)
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if len(out) != len(classes) {
		t.Fatalf("got %d classes", len(out))
	}
	for i, cls := range out {
		name := fmt.Sprintf("q.C%d", i)
		if cls.Name != name || cls.Parent != "q.Base" {
			t.Errorf("out[%d] = %s extends %s", i, cls.Name, cls.Parent)
		}
		construct := cls.Methods()[0].Program.Blocks[0].Instructions[0].(*ir.ConstructInstruction)
		if construct.Type != name {
			t.Errorf("out[%d] constructs %s", i, construct.Type)
		}
		if len(classes[i].Fields()) != 0 || cls.Field("self") == nil {
			t.Errorf("out[%d]: field not moved", i)
		}
	}
}

func TestRenameClasses_FailureCommitsNothing(t *testing.T) {
	classes := batch(8)
	classes[5].Interfaces = []string{"other.I"}
	r := rename.New(mapper.NewPrefix(map[string]string{"p": "q"}, mapper.FallbackStrict))

	_, err := r.RenameClasses(context.Background(), classes, 3)
	if !errors.Is(err, mapper.ErrUnmapped) {
		t.Fatalf("expected ErrUnmapped, got %v", err)
	}
	for i, cls := range classes {
		if len(cls.Fields()) != 1 {
			t.Errorf("class %d lost its fields", i)
		}
		construct := cls.Methods()[0].Program.Blocks[0].Instructions[0].(*ir.ConstructInstruction)
		if construct.Type != cls.Name {
			t.Errorf("class %d body patched: %s", i, construct.Type)
		}
	}
}

func TestRenameClasses_SharedInput(t *testing.T) {
	r := rename.New(mapper.Identity)

	classes := batch(2)
	_, err := r.RenameClasses(context.Background(), []*model.ClassHolder{classes[0], classes[1], classes[0]}, 2)
	if !errors.Is(err, rename.ErrSharedInput) {
		t.Errorf("duplicate class: expected ErrSharedInput, got %v", err)
	}

	classes = batch(2)
	shared := model.NewMethod("other", ir.Void)
	shared.Program = classes[0].Methods()[0].Program
	_ = classes[1].AddMethod(shared)
	_, err = r.RenameClasses(context.Background(), classes, 2)
	if !errors.Is(err, rename.ErrSharedInput) {
		t.Errorf("shared body: expected ErrSharedInput, got %v", err)
	}
}

func TestRenameClasses_SharedBodyWithinClass(t *testing.T) {
	classes := batch(1)
	cls := classes[0]
	alias := model.NewMethod("alias", ir.ObjectOf(cls.Name))
	alias.Program = cls.Methods()[0].Program
	_ = cls.AddMethod(alias)

	out, err := rename.New(mapper.Suffix("$X")).RenameClasses(context.Background(), classes, 1)
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	construct := out[0].Methods()[0].Program.Blocks[0].Instructions[0].(*ir.ConstructInstruction)
	if construct.Type != "p.C0$X" {
		t.Errorf("shared body patched to %s", construct.Type)
	}
}

func TestRenameClasses_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := rename.New(mapper.Identity).RenameClasses(ctx, batch(4), 2)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRenameClasses_CanceledReportsErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	classes := batch(3)
	events := make(chan rename.Event, 64)
	r := rename.New(mapper.Identity, rename.WithProgress(rename.ChannelSink{Ch: events}))
	if _, err := r.RenameClasses(ctx, classes, 2); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	close(events)

	last := make(map[string]rename.Event)
	for ev := range events {
		last[ev.Class] = ev
	}
	for _, cls := range classes {
		ev := last[cls.Name]
		if ev.Status != rename.StatusError || !errors.Is(ev.Err, context.Canceled) {
			t.Errorf("%s ended as %q (%v), want error", cls.Name, ev.Status, ev.Err)
		}
	}
}

func TestRenameClasses_TracerFromContext(t *testing.T) {
	ring := trace.NewRingTracer(128, trace.LevelDetail)
	ctx := trace.WithTracer(context.Background(), ring)
	if _, err := rename.New(mapper.Identity).RenameClasses(ctx, batch(3), 2); err != nil {
		t.Fatalf("rename: %v", err)
	}
	var begins, ends int
	for _, ev := range ring.Snapshot() {
		if ev.Scope != trace.ScopeClass {
			continue
		}
		switch ev.Kind {
		case trace.KindSpanBegin:
			begins++
		case trace.KindSpanEnd:
			ends++
			if ev.Extra["methods"] != "1" || ev.Extra["fields"] != "1" {
				t.Errorf("%s extras = %v", ev.Name, ev.Extra)
			}
		}
	}
	if begins != 3 || ends != 3 {
		t.Errorf("class spans: %d begins, %d ends", begins, ends)
	}
}

func TestRenameClasses_Progress(t *testing.T) {
	classes := batch(5)
	events := make(chan rename.Event, 64)
	r := rename.New(
		mapper.NewPrefix(map[string]string{"p": "q"}, mapper.FallbackStrict),
		rename.WithProgress(rename.ChannelSink{Ch: events}),
	)
	if _, err := r.RenameClasses(context.Background(), classes, 2); err != nil {
		t.Fatalf("rename: %v", err)
	}
	close(events)

	last := make(map[string]rename.Status)
	queued := 0
	for ev := range events {
		if ev.Status == rename.StatusQueued {
			queued++
		}
		last[ev.Class] = ev.Status
	}
	if queued != len(classes) {
		t.Errorf("queued %d classes, want %d", queued, len(classes))
	}
	for _, cls := range classes {
		if last[cls.Name] != rename.StatusDone {
			t.Errorf("%s ended as %q", cls.Name, last[cls.Name])
		}
	}
}
