package logbook

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"botpanel/internal/errors"
	"botpanel/internal/logger"
)

// Listener is told about every stored entry.
type Listener func(t Type, e Entry)

// Book adds entries to a store and fans them out to listeners.
type Book struct {
	store Store
	now   func() time.Time

	mu        sync.RWMutex
	listeners []Listener
}

// New creates a book over store.
func New(store Store) *Book {
	return &Book{store: store, now: time.Now}
}

// Subscribe registers fn for future entries.
func (b *Book) Subscribe(fn Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
}

// Add stores a plain content line.
func (b *Book) Add(t Type, content string) (Entry, error) {
	return b.AddEntry(t, Entry{Content: content})
}

// AddEntry stores e, filling in its id and timestamp when unset.
func (b *Book) AddEntry(t Type, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp == "" {
		e.Timestamp = b.now().Format(TimeLayout)
	}
	if t == Plugin && e.GroupID == "" {
		e.GroupID = "c2c"
	}
	if err := b.store.Append(t, e); err != nil {
		return e, err
	}

	b.mu.RLock()
	listeners := append([]Listener(nil), b.listeners...)
	b.mu.RUnlock()
	for _, fn := range listeners {
		fn(t, e)
	}
	return e, nil
}

// Page returns page (1-based) of size entries, newest first, plus the total.
func (b *Book) Page(t Type, page, size int) ([]Entry, int, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 50
	}
	return b.store.Page(t, (page-1)*size, size)
}

// Recent returns the newest n entries of every stream keyed by wire key.
func (b *Book) Recent(n int) (map[string][]Entry, error) {
	out := make(map[string][]Entry, len(Types))
	for _, t := range Types {
		entries, _, err := b.store.Page(t, 0, n)
		if err != nil {
			return nil, err
		}
		out[t.Key()] = entries
	}
	return out, nil
}

// Export writes a zip archive holding one text file per stream, oldest
// entry first.
func (b *Book) Export(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, t := range Types {
		_, total, err := b.store.Page(t, 0, 0)
		if err != nil {
			return err
		}
		entries, _, err := b.store.Page(t, 0, total)
		if err != nil {
			return err
		}

		f, err := zw.CreateHeader(&zip.FileHeader{
			Name:     t.Key() + ".txt",
			Method:   zip.Deflate,
			Modified: b.now(),
		})
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrLogs, "failed to write archive", "")
		}
		for i := len(entries) - 1; i >= 0; i-- {
			if _, err := io.WriteString(f, formatLine(entries[i])); err != nil {
				return errors.WrapWithCode(err, errors.ErrLogs, "failed to write archive", "")
			}
		}
	}
	if err := zw.Close(); err != nil {
		return errors.WrapWithCode(err, errors.ErrLogs, "failed to write archive", "")
	}
	return nil
}

func formatLine(e Entry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] ", e.Timestamp)
	if e.PluginName != "" {
		fmt.Fprintf(&sb, "[%s] ", e.PluginName)
	}
	sb.WriteString(e.Content)
	sb.WriteByte('\n')
	if e.Traceback != "" {
		sb.WriteString(e.Traceback)
		if !strings.HasSuffix(e.Traceback, "\n") {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Sink routes logger output into the book: errors to the error stream,
// everything else to the framework stream.
func (b *Book) Sink() logger.Sink {
	return func(level, message string) {
		t := Framework
		if level == "error" {
			t = Error
		}
		_, _ = b.Add(t, message)
	}
}

// Close closes the underlying store.
func (b *Book) Close() error {
	return b.store.Close()
}
