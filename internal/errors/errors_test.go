package errors

import (
	"bytes"
	"errors"
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
			name:    "config error",
			code:    "R002",
			wantMsg: "Invalid log level",
			wantCat: CategoryConfig,
		},
		{
			name:    "cli error",
			code:    "R020",
			wantMsg: "Server failed",
			wantCat: CategoryCLI,
		},
		{
			name:    "runtime error",
			code:    "R040",
			wantMsg: "Unsupported mutation",
			wantCat: CategoryRuntime,
		},
		{
			name:    "unknown error code",
			code:    "R999",
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

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "unknown scenario %q", "x")
	if err.Message != `unknown scenario "x"` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Category != CategoryCLI {
		t.Errorf("Category = %q, want %q", err.Category, CategoryCLI)
	}
}

func TestRippleError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *RippleError
		want string
	}{
		{"code only", New("R002"), "R002: Invalid log level"},
		{"with field", New("R002").WithField("log_level"), "R002: Invalid log level (log_level)"},
		{"with cause", New("R020").Wrap(errors.New("boom")), "R020: Server failed: boom"},
		{"no code", &RippleError{Message: "test error"}, "test error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRippleError_Wrap(t *testing.T) {
	sentinel := errors.New("sentinel")
	err := New("R040").Wrap(sentinel)

	if !errors.Is(err, sentinel) {
		t.Error("errors.Is should see the wrapped error")
	}
	if err.Unwrap() != sentinel {
		t.Error("Unwrap() should return wrapped error")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "R001") != nil {
		t.Error("FromError(nil, ...) should return nil")
	}

	re := New("R002")
	if FromError(re, "R001") != re {
		t.Error("FromError should return RippleError as-is")
	}

	wrapped := FromError(errors.Join(errors.New("outer"), re), "R001")
	if wrapped != re {
		t.Error("FromError should find a RippleError inside a chain")
	}

	std := errors.New("plain")
	result := FromError(std, "R001")
	if result.Wrapped != std || result.Code != "R001" {
		t.Errorf("standard error should be wrapped under R001, got %+v", result)
	}
}

func TestLocation_String(t *testing.T) {
	tests := []struct {
		name string
		loc  *Location
		want string
	}{
		{"nil location", nil, ""},
		{"with column", &Location{File: "ripple.toml", Line: 10, Column: 5}, "ripple.toml:10:5"},
		{"without column", &Location{File: "ripple.toml", Line: 10}, "ripple.toml:10"},
		{"file only", &Location{File: "ripple.toml"}, "ripple.toml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.loc.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("R002").
		WithLocation("ripple.toml", 3, 13).
		WithField("log_level").
		WithSuggestion(`Use "debug", "info", "warn" or "error"`).
		Wrap(errors.New(`unknown level "loud"`))

	formatted := err.Format()

	for _, want := range []string{
		"ERROR R002: Invalid log level",
		"ripple.toml:3:13",
		"Field: log_level",
		"The log level must name a slog level.",
		`Cause: unknown level "loud"`,
		"Hint:",
	} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format() missing %q:\n%s", want, formatted)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("R002").WithLocation("ripple.toml", 10, 5)
	want := "ripple.toml:10:5: R002: Invalid log level"
	if got := err.FormatCompact(); got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	out := New("R002").WithLocation("ripple.toml", 10, 5).FormatJSON()

	for _, want := range []string{
		`"code":"R002"`,
		`"category":"config"`,
		`"message":"Invalid log level"`,
		`"location":{"file":"ripple.toml","line":10,"column":5}`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatJSON() missing %s: %s", want, out)
		}
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, New("R020"))
	if !strings.Contains(buf.String(), "ERROR R020: Server failed") {
		t.Errorf("unexpected output: %q", buf.String())
	}

	buf.Reset()
	Fprint(&buf, errors.New("plain failure"))
	if !strings.Contains(buf.String(), "ERROR: plain failure") {
		t.Errorf("unexpected output: %q", buf.String())
	}

	buf.Reset()
	Fprint(&buf, nil)
	if buf.Len() != 0 {
		t.Errorf("nil error should print nothing, got %q", buf.String())
	}
}

func TestGetAllCodes(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) == 0 || codes[0] != "R001" {
		t.Errorf("GetAllCodes() = %v", codes)
	}
}

func TestRegister(t *testing.T) {
	Register("R999", ErrorTemplate{
		Category: CategoryRuntime,
		Message:  "Custom test error",
	})
	defer delete(registry, "R999")

	if err := New("R999"); err.Message != "Custom test error" {
		t.Errorf("Message = %q, want %q", err.Message, "Custom test error")
	}
	if _, ok := GetTemplate("R999"); !ok {
		t.Error("registered template should be found")
	}
}

func TestWrapText(t *testing.T) {
	if got := wrapText("short text", 100); len(got) != 1 || got[0] != "short text" {
		t.Errorf("wrapText short text: got %v", got)
	}
	if got := wrapText("this is a longer text that should be wrapped", 20); len(got) != 3 {
		t.Errorf("wrapText long text: expected 3 lines, got %d: %v", len(got), got)
	}
	if got := wrapText("", 10); len(got) != 0 {
		t.Errorf("wrapText empty: expected empty, got %v", got)
	}
}

func TestColorFunctions(t *testing.T) {
	EnableColors()
	if !strings.Contains(red("test"), "\033[31m") {
		t.Error("red should contain ANSI code when colors enabled")
	}

	DisableColors()
	if strings.Contains(red("test"), "\033[") {
		t.Error("red should not contain ANSI code when colors disabled")
	}
	EnableColors()
}
