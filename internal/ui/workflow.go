package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const frameInterval = 80 * time.Millisecond

// TaskStatus is the state of one step in a Workflow.
type TaskStatus int

const (
	TaskPending TaskStatus = iota
	TaskRunning
	TaskDone
	TaskFailed
	TaskSkipped
)

// Task is one line of a Workflow: a pipeline step such as encoding or
// fitting one model.
type Task struct {
	Name    string
	Status  TaskStatus
	Message string
	Details string // shown after completion
}

// ticker drives a spinner frame index until stopped.
type ticker struct {
	stop chan struct{}
	done chan struct{}
}

func startTicker(onFrame func()) *ticker {
	t := &ticker{stop: make(chan struct{}), done: make(chan struct{})}
	go func() {
		tk := time.NewTicker(frameInterval)
		defer tk.Stop()
		defer close(t.done)
		for {
			select {
			case <-t.stop:
				return
			case <-tk.C:
				onFrame()
			}
		}
	}()
	return t
}

func (t *ticker) halt() {
	if t == nil {
		return
	}
	close(t.stop)
	<-t.done
}

// Workflow renders a list of pipeline steps with a live spinner on the
// running one and prints the final state on Stop.
type Workflow struct {
	writer   io.Writer
	title    string
	animated bool

	mu         sync.Mutex
	tasks      []*Task
	frame      int
	current    int
	running    bool
	startTime  time.Time
	lastRender string
	tick       *ticker
}

// NewWorkflow creates a workflow printing to w under title.
func NewWorkflow(w io.Writer, title string) *Workflow {
	return &Workflow{writer: w, title: title, animated: true}
}

// SetAnimated toggles the spinner. Without it only the final state is
// printed, which keeps logs and pipes free of cursor movement.
func (wf *Workflow) SetAnimated(v bool) {
	wf.mu.Lock()
	defer wf.mu.Unlock()
	wf.animated = v
}

// Current returns the index of the most recently started task.
func (wf *Workflow) Current() int {
	wf.mu.Lock()
	defer wf.mu.Unlock()
	return wf.current
}

// Elapsed returns the time since Start.
func (wf *Workflow) Elapsed() time.Duration {
	wf.mu.Lock()
	defer wf.mu.Unlock()
	if wf.startTime.IsZero() {
		return 0
	}
	return time.Since(wf.startTime)
}

// AddTask appends a pending task and returns its index.
func (wf *Workflow) AddTask(name string) int {
	wf.mu.Lock()
	defer wf.mu.Unlock()
	wf.tasks = append(wf.tasks, &Task{Name: name})
	return len(wf.tasks) - 1
}

func (wf *Workflow) update(idx int, fn func(*Task)) {
	wf.mu.Lock()
	defer wf.mu.Unlock()
	if idx >= 0 && idx < len(wf.tasks) {
		fn(wf.tasks[idx])
	}
}

func (wf *Workflow) StartTask(idx int, message string) {
	wf.update(idx, func(t *Task) {
		t.Status, t.Message = TaskRunning, message
		wf.current = idx
	})
}

func (wf *Workflow) CompleteTask(idx int, details string) {
	wf.update(idx, func(t *Task) { t.Status, t.Details = TaskDone, details })
}

func (wf *Workflow) FailTask(idx int, errMsg string) {
	wf.update(idx, func(t *Task) { t.Status, t.Message = TaskFailed, errMsg })
}

func (wf *Workflow) SkipTask(idx int, reason string) {
	wf.update(idx, func(t *Task) { t.Status, t.Message = TaskSkipped, reason })
}

// SkipPending marks every task that never started as skipped.
func (wf *Workflow) SkipPending(reason string) {
	wf.mu.Lock()
	defer wf.mu.Unlock()
	for _, t := range wf.tasks {
		if t.Status == TaskPending {
			t.Status, t.Message = TaskSkipped, reason
		}
	}
}

// Start begins the display. It is a no-op when already running.
func (wf *Workflow) Start() {
	wf.mu.Lock()
	defer wf.mu.Unlock()
	if wf.running {
		return
	}
	wf.running = true
	wf.startTime = time.Now()
	if wf.animated {
		wf.tick = startTicker(wf.render)
	}
}

// Stop halts the spinner and prints the final state.
func (wf *Workflow) Stop() {
	wf.mu.Lock()
	if !wf.running {
		wf.mu.Unlock()
		return
	}
	wf.running = false
	tick := wf.tick
	wf.mu.Unlock()

	tick.halt()
	wf.renderFinal()
}

func (wf *Workflow) clearPrevious(b *strings.Builder) {
	if wf.lastRender == "" {
		return
	}
	for range strings.Count(wf.lastRender, "\n") + 1 {
		b.WriteString("\033[A\033[K")
	}
}

func (wf *Workflow) render() {
	wf.mu.Lock()
	defer wf.mu.Unlock()
	wf.frame = (wf.frame + 1) % len(spinnerFrames)

	var b strings.Builder
	wf.clearPrevious(&b)
	for _, task := range wf.tasks {
		b.WriteString(wf.renderTask(task, false))
		b.WriteString("\n")
	}
	output := b.String()
	wf.lastRender = strings.TrimSuffix(output, "\n")
	fmt.Fprint(wf.writer, output)
}

func (wf *Workflow) renderFinal() {
	wf.mu.Lock()
	defer wf.mu.Unlock()

	var b strings.Builder
	wf.clearPrevious(&b)
	if wf.title != "" {
		b.WriteString(SectionHeader.Render(wf.title))
		b.WriteString(Dim.Render(fmt.Sprintf(" (%s)", time.Since(wf.startTime).Round(time.Millisecond))))
		b.WriteString("\n")
	}
	for _, task := range wf.tasks {
		b.WriteString(wf.renderTask(task, true))
		b.WriteString("\n")
	}
	fmt.Fprint(wf.writer, b.String())
}

// renderTask draws one line. In the final render a task still marked
// running is drawn as pending and the details replace the live message.
func (wf *Workflow) renderTask(task *Task, final bool) string {
	icon, nameStyle, msgStyle := Muted.Render("○"), StepPending, Dim
	switch task.Status {
	case TaskRunning:
		if !final {
			icon, nameStyle, msgStyle = Secondary.Render(spinnerFrames[wf.frame]), StepRunning, Secondary
		}
	case TaskDone:
		icon, nameStyle = GetCheckMark(), StepComplete
	case TaskFailed:
		icon, nameStyle, msgStyle = GetCrossMark(), StepFailed, Error
	case TaskSkipped:
		icon, nameStyle, msgStyle = Warning.Render("⊘"), StepSkipped, Warning
	}

	line := icon + " " + nameStyle.Render(task.Name)
	if !final {
		if task.Message != "" {
			line += " " + msgStyle.Render(task.Message)
		}
		return line
	}

	switch {
	case task.Status == TaskDone && task.Details != "":
		line += " " + Dim.Render("→ "+task.Details)
	case (task.Status == TaskFailed || task.Status == TaskSkipped) && task.Message != "":
		line += " " + msgStyle.Render("→ "+task.Message)
	}
	return line
}

// SimpleSpinner is a one-line spinner for a single blocking call such as
// an advisor request.
type SimpleSpinner struct {
	writer  io.Writer
	message string

	mu      sync.Mutex
	frame   int
	running bool
	tick    *ticker
}

func NewSimpleSpinner(w io.Writer, message string) *SimpleSpinner {
	return &SimpleSpinner{writer: w, message: message}
}

func (s *SimpleSpinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.tick = startTicker(func() {
		s.mu.Lock()
		s.frame = (s.frame + 1) % len(spinnerFrames)
		line := fmt.Sprintf("\r\033[K%s %s", Secondary.Render(spinnerFrames[s.frame]), s.message)
		s.mu.Unlock()
		fmt.Fprint(s.writer, line)
	})
}

// Stop clears the spinner line and prints finalMessage with a check or
// cross mark.
func (s *SimpleSpinner) Stop(success bool, finalMessage string) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	tick := s.tick
	s.mu.Unlock()

	tick.halt()
	fmt.Fprint(s.writer, "\r\033[K")
	if success {
		fmt.Fprintf(s.writer, "%s %s\n", GetCheckMark(), finalMessage)
	} else {
		fmt.Fprintf(s.writer, "%s %s\n", GetCrossMark(), Warning.Render(finalMessage))
	}
}
