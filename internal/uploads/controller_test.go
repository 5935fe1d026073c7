package uploads

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"streamreport/internal/backend"
	"streamreport/internal/locale"
	"streamreport/internal/presenter"
)

type fakeUploader struct {
	calls  int
	fields []string
	names  []string
	bodies []string
	id     string
	err    error
}

func (f *fakeUploader) Upload(_ context.Context, parts []backend.Part) (string, error) {
	f.calls++
	f.fields, f.names, f.bodies = nil, nil, nil
	for _, p := range parts {
		data, _ := io.ReadAll(p.Content)
		f.fields = append(f.fields, p.Field)
		f.names = append(f.names, p.Filename)
		f.bodies = append(f.bodies, string(data))
	}
	return f.id, f.err
}

type countingErrors struct {
	*presenter.Console
	shows int
	hides int
}

func (c *countingErrors) Show(msg string) { c.shows++; c.Console.Show(msg) }
func (c *countingErrors) Hide()           { c.hides++; c.Console.Hide() }

func fullSelection() Selection {
	return Selection{
		Video:    BytesInput{Filename: "stream.mp4", Data: []byte("v")},
		Data:     BytesInput{Filename: "metrics.csv", Data: []byte("d")},
		Comments: BytesInput{Filename: "comments.csv", Data: []byte("c")},
	}
}

func newController(up Uploader) (*Controller, *countingErrors, *presenter.ConsoleProgress, *presenter.Trigger) {
	errs := &countingErrors{Console: presenter.NewConsole(nil, "")}
	progress := presenter.NewConsoleProgress(nil)
	trigger := &presenter.Trigger{}
	c := NewController(up, presenter.Stage{Errors: errs, Trigger: trigger, Progress: progress}, locale.Default())
	return c, errs, progress, trigger
}

func TestCanSubmit(t *testing.T) {
	c, _, _, _ := newController(&fakeUploader{})
	full := fullSelection()
	if !c.CanSubmit(full) {
		t.Fatalf("full selection should be submittable")
	}
	for mask := 0; mask < 7; mask++ {
		sel := Selection{}
		if mask&1 != 0 {
			sel.Video = full.Video
		}
		if mask&2 != 0 {
			sel.Data = full.Data
		}
		if mask&4 != 0 {
			sel.Comments = full.Comments
		}
		if c.CanSubmit(sel) {
			t.Fatalf("subset %03b should not be submittable", mask)
		}
	}
}

func TestMissingOrder(t *testing.T) {
	sel := Selection{Data: BytesInput{Filename: "d.csv"}}
	got := sel.Missing()
	if len(got) != 2 || got[0] != "video" || got[1] != "comments" {
		t.Fatalf("unexpected missing list %v", got)
	}
}

func TestSubmitSuccess(t *testing.T) {
	up := &fakeUploader{id: "abc"}
	c, errs, progress, trigger := newController(up)

	sess, err := c.Submit(context.Background(), fullSelection())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if sess.ID != "abc" {
		t.Fatalf("unexpected session %+v", sess)
	}
	want := []string{"video", "data", "comments"}
	for i := range want {
		if up.fields[i] != want[i] {
			t.Fatalf("part %d: got %s want %s", i, up.fields[i], want[i])
		}
	}
	if up.names[0] != "stream.mp4" || up.bodies[2] != "c" {
		t.Fatalf("unexpected parts %v %v", up.names, up.bodies)
	}
	if errs.shows != 0 || errs.hides != 1 {
		t.Fatalf("unexpected error surface calls: shows=%d hides=%d", errs.shows, errs.hides)
	}
	if text, visible := progress.Last(); !visible || text != locale.Default().UploadDone {
		t.Fatalf("unexpected progress %q %v", text, visible)
	}
	if trigger.Enabled() {
		t.Fatalf("trigger should stay disabled after a successful upload")
	}
}

func TestSubmitFailureMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "server error", err: &backend.RejectedError{Op: "upload", Message: "x"}, want: "x"},
		{name: "no error field", err: &backend.RejectedError{Op: "upload"}, want: "アップロードに失敗しました"},
		{name: "status", err: &backend.StatusError{Op: "upload", Code: 500}, want: "アップロードに失敗しました"},
		{name: "transport", err: &backend.TransportError{Op: "upload", Err: errors.New("connection refused")}, want: "connection refused"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			c, errs, progress, trigger := newController(&fakeUploader{err: tt.err})
			_, err := c.Submit(context.Background(), fullSelection())

			var uerr *UploadError
			if !errors.As(err, &uerr) {
				t.Fatalf("expected *UploadError, got %v", err)
			}
			if uerr.Message != tt.want {
				t.Fatalf("message = %q, want %q", uerr.Message, tt.want)
			}
			if !errors.Is(err, tt.err) {
				t.Fatalf("cause not preserved")
			}
			if errs.shows != 1 {
				t.Fatalf("expected exactly one Show, got %d", errs.shows)
			}
			if msg, _ := errs.Current(); msg != tt.want {
				t.Fatalf("shown %q", msg)
			}
			if !trigger.Enabled() {
				t.Fatalf("trigger should be re-enabled")
			}
			if _, visible := progress.Last(); visible {
				t.Fatalf("progress should be hidden")
			}
		})
	}
}

func TestSubmitIncompleteSelection(t *testing.T) {
	up := &fakeUploader{id: "abc"}
	c, errs, _, _ := newController(up)
	sel := fullSelection()
	sel.Comments = nil

	_, err := c.Submit(context.Background(), sel)
	if !errors.Is(err, ErrIncompleteSelection) {
		t.Fatalf("expected ErrIncompleteSelection, got %v", err)
	}
	if up.calls != 0 {
		t.Fatalf("uploader should not be called")
	}
	if errs.shows != 1 {
		t.Fatalf("expected one Show, got %d", errs.shows)
	}
}

func TestRetryClearsPreviousError(t *testing.T) {
	up := &fakeUploader{err: &backend.RejectedError{Op: "upload", Message: "x"}}
	c, errs, _, trigger := newController(up)

	if _, err := c.Submit(context.Background(), fullSelection()); err == nil {
		t.Fatalf("expected first attempt to fail")
	}
	if !trigger.Enabled() {
		t.Fatalf("trigger should allow a retry")
	}

	up.err = nil
	up.id = "def"
	sess, err := c.Submit(context.Background(), fullSelection())
	if err != nil || sess.ID != "def" {
		t.Fatalf("retry failed: %v", err)
	}
	if _, visible := errs.Current(); visible {
		t.Fatalf("previous error should be cleared by the new attempt")
	}
}

func TestFileInputOpenFailure(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "stream.mp4")
	if err := os.WriteFile(video, []byte("v"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	up := &fakeUploader{id: "abc"}
	c, errs, _, _ := newController(up)
	sel := Selection{
		Video:    FileInput{Path: video},
		Data:     FileInput{Path: filepath.Join(dir, "missing.csv")},
		Comments: FileInput{Path: video},
	}

	_, err := c.Submit(context.Background(), sel)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist cause, got %v", err)
	}
	if up.calls != 0 || errs.shows != 1 {
		t.Fatalf("unexpected calls=%d shows=%d", up.calls, errs.shows)
	}
}
