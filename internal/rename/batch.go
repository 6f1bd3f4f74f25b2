package rename

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"relocator/internal/ir"
	"relocator/internal/model"
	"relocator/internal/trace"
)

// RenameClasses renames a batch of distinct classes, planning up to jobs of
// them concurrently (GOMAXPROCS when jobs <= 0). Results keep input order.
// Nothing is committed unless every class plans cleanly, so on error the
// whole batch is left unchanged.
//
// Classes must not share a *ClassHolder or a method body with each other;
// such input is rejected with ErrSharedInput.
func (r *Renamer) RenameClasses(ctx context.Context, classes []*model.ClassHolder, jobs int) ([]*model.ClassHolder, error) {
	if err := checkDisjoint(classes); err != nil {
		return nil, err
	}

	tr := r.tracer
	if !tr.Enabled() {
		tr = trace.FromContext(ctx)
	}
	span := trace.Begin(tr, trace.ScopePass, "rename", trace.CurrentSpan(ctx)).
		WithExtra("classes", strconv.Itoa(len(classes)))

	out, err := r.renameBatch(ctx, classes, jobs, tr, span.ID())
	if err != nil {
		span.Fail(err)
		return nil, err
	}
	span.End("")
	return out, nil
}

func (r *Renamer) renameBatch(ctx context.Context, classes []*model.ClassHolder, jobs int, tr trace.Tracer, parent uint64) ([]*model.ClassHolder, error) {
	if len(classes) == 0 {
		return nil, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	for _, cls := range classes {
		if cls != nil {
			r.emit(cls.Name, StagePlan, StatusQueued, nil)
		}
	}

	// Indexes are unique per goroutine, no locking needed.
	plans := make([]*classPlan, len(classes))
	spans := make([]*trace.Span, len(classes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(classes)))
	for i, cls := range classes {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				if cls != nil {
					r.emit(cls.Name, StagePlan, StatusError, gctx.Err())
				}
				return gctx.Err()
			default:
			}
			if cls == nil {
				return &IRError{At: Location{Block: -1, What: fmt.Sprintf("class %d", i)}, Reason: "nil class"}
			}
			r.emit(cls.Name, StagePlan, StatusWorking, nil)
			span := trace.Begin(tr, trace.ScopeClass, "class:"+cls.Name, parent)
			plan, err := r.planClass(cls, tr, span.ID())
			if err != nil {
				span.Fail(err)
				r.emit(cls.Name, StagePlan, StatusError, err)
				return err
			}
			plans[i], spans[i] = plan, span
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]*model.ClassHolder, len(classes))
	for i, plan := range plans {
		r.emit(plan.src.Name, StageCommit, StatusWorking, nil)
		cls, err := plan.commit()
		if err != nil {
			spans[i].Fail(err)
			r.emit(plan.src.Name, StageCommit, StatusError, err)
			return nil, err
		}
		r.emit(plan.src.Name, StageCommit, StatusDone, nil)
		spans[i].WithExtra("methods", strconv.Itoa(len(plan.methods))).
			WithExtra("fields", strconv.Itoa(len(plan.fields))).
			End(cls.Name)
		out[i] = cls
	}
	return out, nil
}

func checkDisjoint(classes []*model.ClassHolder) error {
	seenClass := make(map[*model.ClassHolder]int, len(classes))
	seenBody := make(map[*ir.Program]int)
	for i, cls := range classes {
		if cls == nil {
			continue
		}
		if j, dup := seenClass[cls]; dup {
			return fmt.Errorf("%w: class %s appears at %d and %d", ErrSharedInput, cls.Name, j, i)
		}
		seenClass[cls] = i
		for _, m := range cls.Methods() {
			if m.Program == nil {
				continue
			}
			if j, dup := seenBody[m.Program]; dup && j != i {
				return fmt.Errorf("%w: body of %s.%s is also used by %s", ErrSharedInput, cls.Name, m.Descriptor(), classes[j].Name)
			}
			seenBody[m.Program] = i
		}
	}
	return nil
}
