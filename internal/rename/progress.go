package rename

// Stage is a step of a batch rename.
type Stage string

const (
	// StagePlan resolves every reference of a class without mutating it.
	StagePlan Stage = "plan"
	// StageCommit builds the renamed class from its plan.
	StageCommit Stage = "commit"
)

// Status describes the state of a class within a stage.
type Status string

const (
	// StatusQueued indicates the class is waiting to be planned.
	StatusQueued Status = "queued"
	// StatusWorking indicates the class is in the event's stage.
	StatusWorking Status = "working"
	// StatusDone indicates the class has been committed.
	StatusDone Status = "done"
	// StatusError indicates the class failed in the event's stage.
	StatusError Status = "error"
)

// Event reports progress for one class of a batch, identified by its
// original name.
type Event struct {
	Class  string
	Stage  Stage
	Status Status
	Err    error
}

// ProgressSink receives batch progress. OnEvent may be called from several
// goroutines at once.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events to Ch.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(ev Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- ev
}

// WithProgress reports RenameClasses progress to sink.
func WithProgress(sink ProgressSink) Option {
	return func(r *Renamer) { r.progress = sink }
}

func (r *Renamer) emit(cls string, stage Stage, status Status, err error) {
	if r.progress == nil {
		return
	}
	r.progress.OnEvent(Event{Class: cls, Stage: stage, Status: status, Err: err})
}
