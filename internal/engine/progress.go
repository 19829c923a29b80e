package engine

// Stage names the pipeline phase a progress event refers to.
type Stage uint8

const (
	StageCollect Stage = iota
	StageRewrite
	StageCheckpoint
)

// Status of one stage or file.
type Status uint8

const (
	StatusQueued Status = iota
	StatusWorking
	StatusDone
	StatusError
	StatusRejected
)

// Event is one progress update. File is empty for run-level stages.
type Event struct {
	File   string
	Stage  Stage
	Status Status
}

// ProgressSink receives events during a run. The engine emits
// synchronously, so implementations must not block.
type ProgressSink interface {
	Send(Event)
}

// ChannelSink forwards events into a channel, dropping updates when the
// consumer falls behind.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) Send(ev Event) {
	select {
	case s.Ch <- ev:
	default:
	}
}

func emit(sink ProgressSink, ev Event) {
	if sink != nil {
		sink.Send(ev)
	}
}
