package uploads

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"streamreport/internal/backend"
)

// Input is one selected file.
type Input interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// FileInput is a file on local disk.
type FileInput struct {
	Path string
}

func (f FileInput) Name() string { return filepath.Base(f.Path) }

func (f FileInput) Open() (io.ReadCloser, error) { return os.Open(f.Path) }

// BytesInput is an in-memory file.
type BytesInput struct {
	Filename string
	Data     []byte
}

func (b BytesInput) Name() string { return b.Filename }

func (b BytesInput) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b.Data)), nil
}

// Selection is the set of inputs required by an upload.
type Selection struct {
	Video    Input
	Data     Input
	Comments Input
}

// Complete reports whether all three inputs are selected.
func (s Selection) Complete() bool {
	return len(s.Missing()) == 0
}

// Missing lists the field names of unselected inputs in upload order.
func (s Selection) Missing() []string {
	var missing []string
	for _, f := range s.fields() {
		if f.input == nil {
			missing = append(missing, f.name)
		}
	}
	return missing
}

type field struct {
	name  string
	input Input
}

func (s Selection) fields() []field {
	return []field{
		{name: backend.FieldVideo, input: s.Video},
		{name: backend.FieldData, input: s.Data},
		{name: backend.FieldComments, input: s.Comments},
	}
}
