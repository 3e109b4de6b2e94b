package ui

import (
	"fmt"
	"io"
	"time"
)

// TrainUI drives the spinner workflow of a training run
type TrainUI struct {
	writer    io.Writer
	quiet     bool
	animate   bool
	workflow  *Workflow
	startTime time.Time
	fitTask   map[string]int
}

// NewTrainUI creates a new UI handler for training
func NewTrainUI(w io.Writer, quiet bool) *TrainUI {
	return &TrainUI{
		writer:    w,
		quiet:     quiet,
		animate:   true,
		startTime: time.Now(),
		fitTask:   map[string]int{},
	}
}

// SetAnimated enables or disables the spinner
func (t *TrainUI) SetAnimated(v bool) { t.animate = v }

// StartWorkflow lays out one task for encoding, one for the split and one
// per model
func (t *TrainUI) StartWorkflow(models []string) {
	if t.quiet {
		return
	}
	t.startTime = time.Now()

	t.workflow = NewWorkflow(t.writer, "Training yield models")
	t.workflow.SetAnimated(t.animate)
	t.workflow.AddTask("Encoding categorical features")
	t.workflow.AddTask("Splitting train/test")
	for _, name := range models {
		t.fitTask[name] = t.workflow.AddTask(fmt.Sprintf("Fitting %s", name))
	}
	t.workflow.Start()
}

// StartEncoding marks the encoding step as running
func (t *TrainUI) StartEncoding(rows int) {
	if t.quiet || t.workflow == nil {
		return
	}
	t.workflow.StartTask(0, Dim.Render(fmt.Sprintf("%d rows", rows)))
}

// CompleteEncoding marks encoding as complete
func (t *TrainUI) CompleteEncoding(rows int) {
	if t.quiet || t.workflow == nil {
		return
	}
	t.workflow.CompleteTask(0, fmt.Sprintf("%d rows · 3 label encoders", rows))
}

// CompleteSplit marks the split as complete
func (t *TrainUI) CompleteSplit(details string) {
	if t.quiet || t.workflow == nil {
		return
	}
	t.workflow.CompleteTask(1, details)
}

// StartModel marks a model as fitting
func (t *TrainUI) StartModel(name string) {
	if t.quiet || t.workflow == nil {
		return
	}
	if idx, ok := t.fitTask[name]; ok {
		t.workflow.StartTask(idx, "fitting...")
	}
}

// CompleteModel marks a model as fitted and scored
func (t *TrainUI) CompleteModel(name, details string, elapsed time.Duration) {
	if t.quiet || t.workflow == nil {
		return
	}
	if idx, ok := t.fitTask[name]; ok {
		t.workflow.CompleteTask(idx, fmt.Sprintf("%s in %s", details, elapsed.Round(time.Millisecond)))
	}
}

// Fail marks the named model, or the running preparation step, as failed
// and every step after it as skipped
func (t *TrainUI) Fail(name string, err error) {
	if t.quiet || t.workflow == nil || err == nil {
		return
	}
	idx, ok := t.fitTask[name]
	if !ok {
		idx = t.workflow.Current()
	}
	t.workflow.FailTask(idx, err.Error())
	t.workflow.SkipPending("not run")
}

// FinishWorkflow completes the workflow display
func (t *TrainUI) FinishWorkflow() {
	if t.quiet || t.workflow == nil {
		return
	}
	t.workflow.Stop()
}

// Elapsed returns the duration since the workflow started
func (t *TrainUI) Elapsed() time.Duration { return time.Since(t.startTime) }
