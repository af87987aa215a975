package table

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReadCSVFrom_TypeInference(t *testing.T) {
	in := "model,score,note\nLlama:8B,7.5,ok\ngpt-3.5-turbo,,fine\n"
	tbl, err := ReadCSVFrom(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCSVFrom: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("rows = %d, want 2", tbl.Len())
	}
	if got := tbl.At(0, "score"); got != 7.5 {
		t.Errorf("score cell = %#v, want float64 7.5", got)
	}
	if got := tbl.At(1, "score"); got != nil {
		t.Errorf("empty cell = %#v, want nil", got)
	}
	if got := tbl.At(0, "model"); got != "Llama:8B" {
		t.Errorf("model cell = %#v, want string", got)
	}
}

func TestReadCSVFrom_MissingHeader(t *testing.T) {
	if _, err := ReadCSVFrom(strings.NewReader("")); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestWriteCSVTo_RoundTrip(t *testing.T) {
	tbl := New("id", "score")
	tbl.Append(Row{"id": "a", "score": 1.5})
	tbl.Append(Row{"id": "b", "score": nil})

	var buf bytes.Buffer
	if err := WriteCSVTo(tbl, &buf); err != nil {
		t.Fatalf("WriteCSVTo: %v", err)
	}

	back, err := ReadCSVFrom(&buf)
	if err != nil {
		t.Fatalf("ReadCSVFrom: %v", err)
	}
	if diff := cmp.Diff(tbl.Columns(), back.Columns()); diff != "" {
		t.Errorf("columns:\n%s", diff)
	}
	if got := back.At(0, "score"); got != 1.5 {
		t.Errorf("score = %#v, want 1.5", got)
	}
	if got := back.At(1, "score"); got != nil {
		t.Errorf("nil cell = %#v after round trip", got)
	}
}

func TestReadWriteCSV_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	tbl := New("x")
	tbl.Append(Row{"x": 1.0})
	if err := WriteCSV(tbl, path); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	back, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if back.Len() != 1 {
		t.Errorf("rows = %d, want 1", back.Len())
	}

	if _, err := ReadCSV(filepath.Join(dir, "absent.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}
