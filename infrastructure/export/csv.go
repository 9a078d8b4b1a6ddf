package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"annotator-go/domain/correspondence"
)

// DefaultCSVPath is the export file, relative to the working directory.
const DefaultCSVPath = "associations.csv"

// CSVSink rewrites a CSV file with the full history on every write.
// The file is replaced atomically, so a failed write leaves the previous
// contents intact.
type CSVSink struct {
	path   string
	logger *slog.Logger
}

// NewCSVSink creates a CSV sink writing to path.
func NewCSVSink(path string, logger *slog.Logger) *CSVSink {
	if path == "" {
		path = DefaultCSVPath
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVSink{
		path:   path,
		logger: logger.With("component", "csv_sink"),
	}
}

// Name returns the sink name.
func (s *CSVSink) Name() string {
	return "csv"
}

// Path returns the destination file.
func (s *CSVSink) Path() string {
	return s.path
}

// Write replaces the file with a header and one row per correspondence in
// b.History.
func (s *CSVSink) Write(ctx context.Context, b Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if err := writeRows(tmp, b.History); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	committed = true

	s.logger.Debug("Wrote CSV",
		"path", s.path,
		"rows", len(b.History),
		"trigger", b.Trigger.String())
	return nil
}

func writeRows(f *os.File, records []correspondence.Record) error {
	w := csv.NewWriter(f)
	if err := w.Write(correspondence.Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, rec := range records {
		if err := w.Write(rec.Row()); err != nil {
			return fmt.Errorf("failed to write record %d: %w", rec.Seq, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}
