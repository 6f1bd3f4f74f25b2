// Package trace records what the relocator does while it rewrites classes.
//
// Events are grouped into spans. A batch rename opens one pass span, each
// class gets a class span nested under it, and method-level activity is
// reported as point events. The configured Level decides which scopes are
// kept:
//
//	off     nothing
//	error   failures only
//	phase   driver and pass spans
//	detail  plus one span per class
//	debug   plus per-method events
//
// Tracers travel through a context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "rename", 0)
//	defer span.End("")
package trace
