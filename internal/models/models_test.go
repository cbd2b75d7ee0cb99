package models

import (
	"testing"
	"time"
)

func TestDateOnly(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2026-09-01T00:00:00Z", "2026-09-01"},
		{"2026-09-01", "2026-09-01"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := DateOnly(tt.in); got != tt.want {
			t.Errorf("DateOnly(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDisplayTime(t *testing.T) {
	stamp := "2026-08-28T14:30:00Z"
	parsed, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		t.Fatal(err)
	}
	want := parsed.Local().Format("Jan 2, 2006 3:04 PM")
	if got := DisplayTime(stamp); got != want {
		t.Errorf("DisplayTime(%q) = %q, want %q", stamp, got, want)
	}

	// Unparseable values render as-is.
	if got := DisplayTime("yesterday"); got != "yesterday" {
		t.Errorf("DisplayTime raw fallback = %q", got)
	}
	if got := DisplayTime(""); got != "" {
		t.Errorf("DisplayTime(\"\") = %q", got)
	}
}

func TestValidTaskStatus(t *testing.T) {
	for _, status := range TaskStatuses() {
		if !ValidTaskStatus(string(status)) {
			t.Errorf("ValidTaskStatus(%q) = false", status)
		}
	}
	for _, bogus := range []string{"", "pending", "DONE", "Started"} {
		if ValidTaskStatus(bogus) {
			t.Errorf("ValidTaskStatus(%q) = true", bogus)
		}
	}
}
