package trainer

import "time"

// ProgressCallback is called during training to report progress
type ProgressCallback func(event ProgressEvent)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Type    ProgressEventType
	Model   string
	Message string
	Index   int
	Total   int
	Elapsed time.Duration
	Error   error
}

// ProgressEventType identifies the type of progress event
type ProgressEventType int

const (
	EventEncodeStart ProgressEventType = iota
	EventEncodeComplete
	EventSplitComplete
	EventFitStart
	EventFitComplete
	EventEvaluateComplete
	EventError
)

func (o Options) emit(ev ProgressEvent) {
	if o.OnProgress != nil {
		o.OnProgress(ev)
	}
}
