package output

import (
	"bytes"
	"strings"
	"testing"
)

type result struct {
	Package string `json:"package" yaml:"package"`
	Version string `json:"version" yaml:"version"`
}

type results []result

func (r results) Header() []string { return []string{"PACKAGE", "VERSION"} }

func (r results) Rows() [][]string {
	rows := make([][]string, len(r))
	for i, res := range r {
		rows[i] = []string{res.Package, res.Version}
	}
	return rows
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"table", FormatTable, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(FormatJSON, &buf).Write(results{{"git", "2.44.0"}}); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	want := "[\n  {\n    \"package\": \"git\",\n    \"version\": \"2.44.0\"\n  }\n]\n"
	if buf.String() != want {
		t.Errorf("Write() = %q, want %q", buf.String(), want)
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(FormatYAML, &buf).Write(result{"git", "2.44.0"}); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	want := "package: git\nversion: 2.44.0\n"
	if buf.String() != want {
		t.Errorf("Write() = %q, want %q", buf.String(), want)
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	long := strings.Repeat("x", MaxCellWidth+20)
	if err := NewWriter(FormatTable, &buf).Write(results{{"git", "2.44.0"}, {"long", long}}); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"PACKAGE", "VERSION", "git", "2.44.0", "…"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, long) {
		t.Error("long cell was not truncated")
	}
}

func TestWriteTableFallsBackToYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(FormatTable, &buf).Write(result{"git", "2.44.0"}); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if !strings.Contains(buf.String(), "package: git") {
		t.Errorf("expected YAML fallback, got %q", buf.String())
	}
}

func TestNewWriterUnknownFormat(t *testing.T) {
	w := NewWriter("xml", &bytes.Buffer{})
	if w.Format() != FormatJSON {
		t.Errorf("Format() = %q, want %q", w.Format(), FormatJSON)
	}
}
