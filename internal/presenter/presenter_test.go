package presenter

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsoleShowReplacesAndHideClears(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, "エラー: ")

	c.Show("first")
	c.Show("second")
	msg, ok := c.Current()
	if !ok || msg != "second" {
		t.Fatalf("expected second to replace first, got %q %v", msg, ok)
	}
	if !strings.Contains(buf.String(), "エラー: second\n") {
		t.Fatalf("unexpected output %q", buf.String())
	}

	c.Hide()
	if msg, ok := c.Current(); ok || msg != "" {
		t.Fatalf("Hide should clear the error, got %q %v", msg, ok)
	}
}

func TestTrigger(t *testing.T) {
	var tr Trigger
	if !tr.Enabled() {
		t.Fatalf("trigger should start enabled")
	}
	tr.Disable()
	if tr.Enabled() {
		t.Fatalf("Disable had no effect")
	}
	tr.Enable()
	if !tr.Enabled() {
		t.Fatalf("Enable had no effect")
	}
}

func TestConsoleProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewConsoleProgress(&buf)
	p.Update(30, "uploading")
	p.Update(-1, "analyzing")
	if got := buf.String(); got != "[ 30%] uploading\n[....] analyzing\n" {
		t.Fatalf("unexpected output %q", got)
	}
	p.Hide()
	if text, visible := p.Last(); visible || text != "analyzing" {
		t.Fatalf("unexpected state %q %v", text, visible)
	}
}

func TestStageFailRestoresTrigger(t *testing.T) {
	errs := NewConsole(nil, "")
	progress := NewConsoleProgress(nil)
	stage := Stage{Errors: errs, Trigger: &Trigger{}, Progress: progress}

	errs.Show("stale")
	stage.Begin()
	if _, ok := errs.Current(); ok {
		t.Fatalf("Begin should hide the previous error")
	}
	if stage.Trigger.Enabled() {
		t.Fatalf("Begin should disable the trigger")
	}

	stage.Update(30, "working")
	stage.Fail("boom")
	if msg, ok := errs.Current(); !ok || msg != "boom" {
		t.Fatalf("unexpected error %q %v", msg, ok)
	}
	if _, visible := progress.Last(); visible {
		t.Fatalf("Fail should hide progress")
	}
	if !stage.Trigger.Enabled() {
		t.Fatalf("Fail should re-enable the trigger")
	}
}
