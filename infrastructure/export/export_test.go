package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"annotator-go/core/event"
	"annotator-go/domain/correspondence"
)

func records(cs ...correspondence.Correspondence) []correspondence.Record {
	l := correspondence.NewLedger()
	out := make([]correspondence.Record, 0, len(cs))
	for _, c := range cs {
		out = append(out, l.Append("/frames", c))
	}
	return out
}

func corr(fa, xa, ya, fb, xb, yb int) correspondence.Correspondence {
	return correspondence.Correspondence{FrameA: fa, XA: xa, YA: ya, FrameB: fb, XB: xb, YB: yb}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestCSVSink_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "associations.csv")
	sink := NewCSVSink(path, nil)

	history := records(corr(1, 10, 10, 2, 20, 20), corr(2, 5, 6, 3, 7, 8))
	err := sink.Write(context.Background(), Batch{History: history, Unsaved: history[1:], Trigger: event.TriggerManual})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	want := "FRAME1,X1,Y1,FRAME2,X2,Y2\n1,10,10,2,20,20\n2,5,6,3,7,8\n"
	if got := readFile(t, path); got != want {
		t.Errorf("file = %q, want %q", got, want)
	}
}

func TestCSVSink_EmptyHistoryWritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	sink := NewCSVSink(path, nil)

	if err := sink.Write(context.Background(), Batch{}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got := readFile(t, path); got != "FRAME1,X1,Y1,FRAME2,X2,Y2\n" {
		t.Errorf("file = %q, want header only", got)
	}
}

func TestCSVSink_OverwritesWithoutDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	sink := NewCSVSink(path, nil)
	history := records(corr(1, 1, 1, 2, 2, 2), corr(1, 3, 3, 2, 4, 4))

	// Autosave with the first record, then a later write with both.
	if err := sink.Write(context.Background(), Batch{History: history[:1], Trigger: event.TriggerAutosave}); err != nil {
		t.Fatal(err)
	}
	if err := sink.Write(context.Background(), Batch{History: history, Trigger: event.TriggerManual}); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(readFile(t, path)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows: %v", len(lines), lines)
	}
}

func TestCSVSink_FailureKeepsPreviousFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	sink := NewCSVSink(path, nil)

	if err := sink.Write(context.Background(), Batch{History: records(corr(1, 1, 1, 2, 2, 2))}); err != nil {
		t.Fatal(err)
	}
	before := readFile(t, path)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sink.Write(ctx, Batch{}); err == nil {
		t.Fatal("Write() with cancelled context expected error")
	}
	if got := readFile(t, path); got != before {
		t.Errorf("file changed after failed write: %q", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestCSVSink_MissingDirectory(t *testing.T) {
	sink := NewCSVSink(filepath.Join(t.TempDir(), "missing", "out.csv"), nil)
	if err := sink.Write(context.Background(), Batch{}); err == nil {
		t.Error("Write() into missing directory expected error")
	}
}

func TestNewCSVSink_DefaultPath(t *testing.T) {
	if got := NewCSVSink("", nil).Path(); got != DefaultCSVPath {
		t.Errorf("Path() = %q, want %q", got, DefaultCSVPath)
	}
}

type stubSink struct {
	name  string
	err   error
	calls int
}

func (s *stubSink) Name() string { return s.name }

func (s *stubSink) Write(ctx context.Context, b Batch) error {
	s.calls++
	return s.err
}

func TestMulti(t *testing.T) {
	errArchive := errors.New("archive down")
	first := &stubSink{name: "csv"}
	second := &stubSink{name: "mongodb", err: errArchive}
	third := &stubSink{name: "other"}
	m := Multi{first, second, third}

	err := m.Write(context.Background(), Batch{})
	if !errors.Is(err, errArchive) {
		t.Errorf("Write() error = %v, want %v", err, errArchive)
	}
	if first.calls != 1 || second.calls != 1 || third.calls != 1 {
		t.Errorf("calls = %d/%d/%d, want every sink written once", first.calls, second.calls, third.calls)
	}
	if got := m.Name(); got != "multi[csv,mongodb,other]" {
		t.Errorf("Name() = %q", got)
	}

	if err := (Multi{first, third}).Write(context.Background(), Batch{}); err != nil {
		t.Errorf("Write() error = %v, want nil", err)
	}
}
