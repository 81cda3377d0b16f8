package ui

import (
	"testing"
)

func TestStatusFunctions(t *testing.T) {
	// Disable colors for consistent test output
	DisableColors()
	defer EnableColors()

	tests := []struct {
		name     string
		fn       func(string) string
		input    string
		contains string
	}{
		{"StatusSuccess empty", StatusSuccess, "", SymbolSuccess},
		{"StatusSuccess with msg", StatusSuccess, "done", SymbolSuccess + " done"},
		{"StatusError empty", StatusError, "", SymbolError},
		{"StatusError with msg", StatusError, "failed", SymbolError + " failed"},
		{"StatusWarning empty", StatusWarning, "", SymbolWarning},
		{"StatusWarning with msg", StatusWarning, "caution", SymbolWarning + " caution"},
		{"StatusSkipped empty", StatusSkipped, "", SymbolSkipped},
		{"StatusSkipped with msg", StatusSkipped, "skip", SymbolSkipped + " skip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn(tt.input)
			if got != tt.contains {
				t.Errorf("got %q, want %q", got, tt.contains)
			}
		})
	}
}

func TestColorToggle(t *testing.T) {
	// Save initial state
	initial := IsColorEnabled()

	DisableColors()
	if IsColorEnabled() {
		t.Error("expected colors to be disabled")
	}

	EnableColors()
	if !IsColorEnabled() {
		t.Error("expected colors to be enabled")
	}

	// Restore initial state
	if !initial {
		DisableColors()
	}
}

func TestColorFunctions(t *testing.T) {
	// Disable colors for consistent test output
	DisableColors()
	defer EnableColors()

	// When colors are disabled, these should return the plain text
	if got := Success("test"); got != "test" {
		t.Errorf("Success() = %q, want %q", got, "test")
	}
	if got := Error("test"); got != "test" {
		t.Errorf("Error() = %q, want %q", got, "test")
	}
	if got := Warning("test"); got != "test" {
		t.Errorf("Warning() = %q, want %q", got, "test")
	}
	if got := Info("test"); got != "test" {
		t.Errorf("Info() = %q, want %q", got, "test")
	}
	if got := Bold("test"); got != "test" {
		t.Errorf("Bold() = %q, want %q", got, "test")
	}
	if got := Dim("test"); got != "test" {
		t.Errorf("Dim() = %q, want %q", got, "test")
	}
	if got := Header("test"); got != "test" {
		t.Errorf("Header() = %q, want %q", got, "test")
	}
}

func TestStatusPending(t *testing.T) {
	DisableColors()
	defer EnableColors()

	if got := StatusPending(""); got != SymbolPending {
		t.Errorf("StatusPending(\"\") = %q", got)
	}
	if got := StatusPending("bolder"); got != SymbolPending+" bolder" {
		t.Errorf("StatusPending() = %q", got)
	}
}

func TestStage(t *testing.T) {
	DisableColors()
	defer EnableColors()

	if got, want := Stage("packaged", "4 providers"), SymbolArrow+" packaged 4 providers"; got != want {
		t.Errorf("Stage() = %q, want %q", got, want)
	}
	if got, want := Stage("done", ""), SymbolArrow+" done"; got != want {
		t.Errorf("Stage() = %q, want %q", got, want)
	}
}

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		input   string
		want    ColorMode
		wantErr bool
	}{
		{"", ColorAuto, false},
		{"auto", ColorAuto, false},
		{"Always", ColorAlways, false},
		{" never ", ColorNever, false},
		{"rainbow", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseColorMode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColorMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseColorMode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSetColorMode(t *testing.T) {
	initial := IsColorEnabled()
	defer func() {
		if initial {
			EnableColors()
		} else {
			DisableColors()
		}
	}()

	SetColorMode(ColorNever)
	if IsColorEnabled() {
		t.Error("expected colors disabled for never")
	}
	SetColorMode(ColorAuto)
	if IsColorEnabled() {
		t.Error("auto should leave the current setting alone")
	}
	SetColorMode(ColorAlways)
	if !IsColorEnabled() {
		t.Error("expected colors enabled for always")
	}
}
