// Package presenter is the user-facing surface shared by the upload and analysis stages:
// a single error slot, the stage trigger and a progress line.
package presenter

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

// Errors shows at most one error at a time.
type Errors interface {
	Show(message string)
	Hide()
}

// Progress displays stage progress. A negative percent means the stage has no
// meaningful percentage and only the text is shown.
type Progress interface {
	Update(percent int, text string)
	Hide()
}

// Console writes errors to a terminal stream and remembers the visible one.
type Console struct {
	mu      sync.Mutex
	w       io.Writer
	prefix  string
	current string
	visible bool
}

// NewConsole returns a Console writing to w. prefix is printed before each message.
func NewConsole(w io.Writer, prefix string) *Console {
	return &Console{w: w, prefix: prefix}
}

// Show replaces any visible error with message.
func (c *Console) Show(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = message
	c.visible = true
	if c.w != nil {
		fmt.Fprintf(c.w, "%s%s\n", c.prefix, message)
	}
}

// Hide clears the visible error.
func (c *Console) Hide() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = ""
	c.visible = false
}

// Current returns the visible error, if any.
func (c *Console) Current() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.visible
}

// Trigger is the affordance that starts a stage. It starts enabled.
type Trigger struct {
	disabled atomic.Bool
}

func (t *Trigger) Enable()  { t.disabled.Store(false) }
func (t *Trigger) Disable() { t.disabled.Store(true) }

// Enabled reports whether the stage can be started.
func (t *Trigger) Enabled() bool { return !t.disabled.Load() }

// ConsoleProgress prints each progress update on its own line.
type ConsoleProgress struct {
	mu      sync.Mutex
	w       io.Writer
	last    string
	visible bool
}

// NewConsoleProgress returns a ConsoleProgress writing to w.
func NewConsoleProgress(w io.Writer) *ConsoleProgress {
	return &ConsoleProgress{w: w}
}

func (p *ConsoleProgress) Update(percent int, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = text
	p.visible = true
	if p.w == nil {
		return
	}
	if percent < 0 {
		fmt.Fprintf(p.w, "[....] %s\n", text)
		return
	}
	fmt.Fprintf(p.w, "[%3d%%] %s\n", percent, text)
}

func (p *ConsoleProgress) Hide() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = false
}

// Last returns the most recent text and whether the progress line is visible.
func (p *ConsoleProgress) Last() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last, p.visible
}

// Stage bundles the surface one workflow stage drives.
type Stage struct {
	Errors   Errors
	Trigger  *Trigger
	Progress Progress
}

// Begin clears the previous error and disables the trigger while the stage runs.
func (s Stage) Begin() {
	if s.Errors != nil {
		s.Errors.Hide()
	}
	if s.Trigger != nil {
		s.Trigger.Disable()
	}
}

// Update sets the progress line.
func (s Stage) Update(percent int, text string) {
	if s.Progress != nil {
		s.Progress.Update(percent, text)
	}
}

// Fail shows message, hides progress and re-enables the trigger so the stage can be retried.
func (s Stage) Fail(message string) {
	if s.Errors != nil {
		s.Errors.Show(message)
	}
	if s.Progress != nil {
		s.Progress.Hide()
	}
	if s.Trigger != nil {
		s.Trigger.Enable()
	}
}
