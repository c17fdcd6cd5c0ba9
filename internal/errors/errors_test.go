package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "renderer error",
			code:    "E001",
			wantMsg: "Renderer used after destroy",
			wantCat: CategoryRenderer,
		},
		{
			name:    "tree error",
			code:    "E020",
			wantMsg: "Node is not a child of the parent",
			wantCat: CategoryTree,
		},
		{
			name:    "protocol error",
			code:    "E065",
			wantMsg: "Acknowledgement timed out",
			wantCat: CategoryProtocol,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestHostError_Error(t *testing.T) {
	err := New("E001")
	if got, want := err.Error(), "E001: Renderer used after destroy"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err = New("E020").WithDetail("span")
	if got, want := err.Error(), "E020: Node is not a child of the parent (span)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err2 := &HostError{Message: "plain"}
	if err2.Error() != "plain" {
		t.Errorf("Error() = %q, want %q", err2.Error(), "plain")
	}
}

func TestHostError_Is(t *testing.T) {
	sentinel := New("E020")
	err := New("E020").WithDetail("with detail")

	if !stderrors.Is(err, sentinel) {
		t.Error("errors with the same code should match")
	}
	if stderrors.Is(err, New("E021")) {
		t.Error("errors with different codes should not match")
	}

	wrapped := fmt.Errorf("apply: %w", err)
	if !stderrors.Is(wrapped, sentinel) {
		t.Error("errors.Is should see through fmt wrapping")
	}
	if Code(wrapped) != "E020" {
		t.Errorf("Code() = %q, want E020", Code(wrapped))
	}
	if Code(stderrors.New("x")) != "" {
		t.Error("Code() of a plain error should be empty")
	}
}

func TestHostError_Wrap(t *testing.T) {
	inner := stderrors.New("boom")
	outer := New("E140").Wrap(inner)

	if outer.Unwrap() != inner {
		t.Error("Unwrap() should return wrapped error")
	}
	if !stderrors.Is(outer, inner) {
		t.Error("errors.Is should find the wrapped error")
	}
	if !strings.HasSuffix(outer.Error(), ": boom") {
		t.Errorf("Error() = %q, want wrapped suffix", outer.Error())
	}
}

func TestAs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain", stderrors.New("x"), ""},
		{"direct", New("E066"), "E066"},
		{"fmt wrapped", fmt.Errorf("send: %w", New("E066")), "E066"},
		{"outermost wins", New("E068").Wrap(New("E066")), "E068"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			he, ok := As(tt.err)
			if ok != (tt.want != "") {
				t.Fatalf("As(%v) ok = %v", tt.err, ok)
			}
			if ok && he.Code != tt.want {
				t.Errorf("As(%v) = %s, want %s", tt.err, he.Code, tt.want)
			}
		})
	}
}

func TestFprintWrappedHostError(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, fmt.Errorf("load config: %w", New("E121").WithDetail("hostrender.json")))
	out := buf.String()
	for _, want := range []string{"ERROR: load config\n", "ERROR E121: Configuration file not found\n", "  hostrender.json\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("Fprint() missing %q:\n%s", want, out)
		}
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E122").
		WithDetail("port 70000 is out of range").
		WithSuggestion("use a port between 0 and 65535")
	formatted := err.Format()

	for _, want := range []string{"E122", "Invalid port", "70000", "Hint:"} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format() missing %q:\n%s", want, formatted)
		}
	}

	var buf bytes.Buffer
	Fprint(&buf, stderrors.New("plain failure"))
	if !strings.Contains(buf.String(), "plain failure") {
		t.Errorf("Fprint() = %q", buf.String())
	}
}

func TestFormatJSON(t *testing.T) {
	json := New("E040").WithDetail("div >").FormatJSON()

	for _, want := range []string{`"code":"E040"`, `"category":"selector"`, `"detail":"div >"`} {
		if !strings.Contains(json, want) {
			t.Errorf("FormatJSON() = %s, missing %s", json, want)
		}
	}
}

func TestGetAllCodes(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) == 0 {
		t.Fatal("GetAllCodes() should return codes")
	}
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Fatalf("codes not sorted: %v", codes)
		}
	}
	if _, ok := GetTemplate("E001"); !ok {
		t.Error("E001 should be registered")
	}
}
