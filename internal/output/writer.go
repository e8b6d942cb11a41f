package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirseerhq/survey-relay/internal/vibrent"
)

// Writer streams survey listings as NDJSON, one survey document per line.
// Records go straight through the encoder, so listings of any size run in
// constant memory.
type Writer struct {
	mu      sync.Mutex
	enc     *json.Encoder
	count   int
	closeFn func() error
}

// NewWriter returns a writer that emits NDJSON to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		enc: json.NewEncoder(w),
	}
}

// NewFileWriter returns a writer that emits NDJSON to the named file,
// creating or truncating it. The caller must call Close() when done.
func NewFileWriter(filename string) (*Writer, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &Writer{
		enc:     json.NewEncoder(file),
		closeFn: file.Close,
	}, nil
}

// Write emits one survey as a single NDJSON line.
func (w *Writer) Write(survey vibrent.Survey) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.enc.Encode(survey); err != nil {
		return fmt.Errorf("failed to encode survey %d: %w", survey.PlatformFormID, err)
	}

	w.count++
	return nil
}

// Count returns the number of surveys written.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Close closes the underlying file when the writer owns one.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closeFn != nil {
		return w.closeFn()
	}
	return nil
}
