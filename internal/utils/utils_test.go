package utils

import (
	"bytes"
	"strings"
	"testing"
)

func TestAskConfirmation(t *testing.T) {
	tests := []struct {
		input string
		force bool
		want  bool
	}{
		{"y\n", false, true},
		{"YES\n", false, true},
		{"n\n", false, false},
		{"\n", false, false},
		{"", false, false},
		{"", true, true},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		in := NewInputUtilsFrom(strings.NewReader(tt.input), &out)
		if got := in.AskConfirmation("Continue?", tt.force); got != tt.want {
			t.Errorf("AskConfirmation(%q, force=%v) = %v, want %v", tt.input, tt.force, got, tt.want)
		}
		if !tt.force && !strings.Contains(out.String(), "Continue? (y/N)") {
			t.Errorf("prompt not written, got %q", out.String())
		}
	}
}

func TestGetUserChoice(t *testing.T) {
	var out bytes.Buffer
	in := NewInputUtilsFrom(strings.NewReader("maybe\nMySQL\n"), &out)

	got := in.GetUserChoice([]string{"postgresql", "mysql", "sqlite"}, "Provider", false)
	if got != "mysql" {
		t.Errorf("expected mysql, got %s", got)
	}
	if !strings.Contains(out.String(), "Invalid option") {
		t.Error("expected an invalid option message")
	}

	in = NewInputUtilsFrom(strings.NewReader(""), &out)
	if got := in.GetUserChoice([]string{"postgresql", "mysql"}, "Provider", false); got != "postgresql" {
		t.Errorf("expected default on EOF, got %s", got)
	}
}
