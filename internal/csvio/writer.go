package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/blockedby/groupmeta/internal/enricher"
)

// OutputHeader is the fixed column order of enriched output files.
var OutputHeader = []string{
	"id",
	"username",
	"title",
	"date",
	"actual_title",
	"actual_username",
	"members_count",
	"online_count",
	"chat_type",
	"slow_mode_delay",
	"access_status",
	"error_message",
}

// Writer streams enriched records to a CSV destination. Records are flushed
// as they are written so an interrupted run leaves a resumable file behind.
type Writer struct {
	csv         *csv.Writer
	wroteHeader bool
}

// NewWriter wraps w. The header is written lazily before the first record.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// Write appends one enriched record, emitting the header first if needed.
func (w *Writer) Write(rec enricher.EnrichedRecord) error {
	if !w.wroteHeader {
		if err := w.csv.Write(OutputHeader); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		w.wroteHeader = true
	}

	row := []string{
		formatID(rec.ID),
		rec.Username,
		rec.Title,
		rec.Date,
		rec.ActualTitle,
		rec.ActualUsername,
		strconv.Itoa(rec.MembersCount),
		strconv.Itoa(rec.OnlineCount),
		string(rec.ChatType),
		strconv.Itoa(rec.SlowModeDelay),
		string(rec.AccessStatus),
		rec.ErrorMessage,
	}
	if err := w.csv.Write(row); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}

	w.csv.Flush()
	return w.csv.Error()
}

// Flush forces any buffered rows out.
func (w *Writer) Flush() error {
	w.csv.Flush()
	return w.csv.Error()
}

// FileWriter writes enriched records to a file on disk.
type FileWriter struct {
	*Writer
	file *os.File
}

// NewFileWriter opens path for writing, creating parent directories as
// needed. When appending to an existing non-empty file the header is
// suppressed so resumed runs do not repeat it.
func NewFileWriter(path string, appendMode bool) (*FileWriter, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	w := &FileWriter{Writer: NewWriter(f), file: f}
	if appendMode {
		if info, err := f.Stat(); err == nil && info.Size() > 0 {
			w.wroteHeader = true
		}
	}
	return w, nil
}

// Close flushes and closes the underlying file.
func (w *FileWriter) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// WriteAll writes a whole batch to path, replacing any existing file.
func WriteAll(path string, records []enricher.EnrichedRecord) error {
	w, err := NewFileWriter(path, false)
	if err != nil {
		return err
	}

	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}

func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
