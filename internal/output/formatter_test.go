package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func newBuffered(jsonOutput, quiet bool) (*Formatter, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	f := New(jsonOutput, quiet, true)
	f.Writer = &out
	f.ErrWriter = &errOut
	return f, &out, &errOut
}

func TestNew(t *testing.T) {
	f := New(true, true, true)
	if !f.JSON || !f.Quiet || !f.NoColor {
		t.Errorf("flags not set: %+v", f)
	}
	if f.Writer == nil || f.ErrWriter == nil {
		t.Error("expected writers to be set")
	}
}

func TestColor(t *testing.T) {
	tests := []struct {
		name    string
		noColor bool
		json    bool
		want    string
	}{
		{"colors enabled", false, false, Red + "x" + Reset},
		{"no color", true, false, "x"},
		{"json disables color", false, true, "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(tt.json, false, tt.noColor)
			if got := f.Color(Red, "x"); got != tt.want {
				t.Errorf("Color() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrintf_SuppressedInJSONMode(t *testing.T) {
	f, out, _ := newBuffered(true, false)
	f.Printf("hello %s", "world")
	if out.Len() != 0 {
		t.Errorf("expected no output, got %q", out.String())
	}

	f, out, _ = newBuffered(false, false)
	f.Printf("hello %s", "world")
	if out.String() != "hello world" {
		t.Errorf("output = %q", out.String())
	}
}

func TestPrintSuccess(t *testing.T) {
	f, out, _ := newBuffered(false, false)
	f.PrintSuccess("done")
	if !strings.Contains(out.String(), "✓ done") {
		t.Errorf("output = %q", out.String())
	}

	f, out, _ = newBuffered(false, true)
	f.PrintSuccess("done")
	if out.Len() != 0 {
		t.Errorf("quiet mode printed %q", out.String())
	}

	f, out, _ = newBuffered(true, false)
	f.PrintSuccess("done")
	var resp JSONResponse
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !resp.Success || resp.Message != "done" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestError(t *testing.T) {
	f, _, errOut := newBuffered(false, false)
	f.Error(errors.New("boom"))
	if !strings.Contains(errOut.String(), "Error: boom") {
		t.Errorf("stderr = %q", errOut.String())
	}

	f, out, _ := newBuffered(true, false)
	f.Error(errors.New("boom"))
	if !strings.Contains(out.String(), `"error": "boom"`) || !strings.Contains(out.String(), `"success": false`) {
		t.Errorf("output = %q", out.String())
	}
}

func TestSuccess_JSONEnvelope(t *testing.T) {
	f, out, _ := newBuffered(true, false)
	if err := f.Success(map[string]int{"count": 2}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), `"count": 2`) {
		t.Errorf("output = %q", out.String())
	}
}

func TestTable(t *testing.T) {
	f, out, _ := newBuffered(false, false)
	tw := f.NewTable("ID", "SUBJECT")
	tw.AddRow("1", "hello")
	tw.AddRow("10", "world")
	tw.Flush()

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[1], "1   hello") {
		t.Errorf("row not aligned: %q", lines[1])
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"truncated text", 5, "trun…"},
		{"héllo wörld", 4, "hél…"},
		{"x", 0, "x"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
