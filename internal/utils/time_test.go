package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{name: "empty string returns local", timezone: ""},
		{name: "Local returns local", timezone: "Local"},
		{name: "valid timezone UTC", timezone: "UTC"},
		{name: "valid timezone Asia/Kolkata", timezone: "Asia/Kolkata"},
		{name: "invalid timezone", timezone: "Invalid/Timezone", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := LoadLocation(tt.timezone)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadLocation() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && loc == nil {
				t.Errorf("LoadLocation() returned nil location without error")
			}
		})
	}
}

func TestAddDays(t *testing.T) {
	tests := []struct {
		date string
		n    int
		want string
	}{
		{"2026-01-30", 3, "2026-02-02"},
		{"2026-03-01", -1, "2026-02-28"},
		{"2024-02-28", 1, "2024-02-29"},
	}
	for _, tt := range tests {
		got, err := AddDays(tt.date, tt.n)
		if err != nil {
			t.Fatalf("AddDays(%q, %d) error: %v", tt.date, tt.n, err)
		}
		if got != tt.want {
			t.Errorf("AddDays(%q, %d) = %q, want %q", tt.date, tt.n, got, tt.want)
		}
	}

	if _, err := AddDays("01/02/2026", 1); err == nil {
		t.Error("expected error for non-ISO date")
	}
}

func TestDaysBetween(t *testing.T) {
	got, err := DaysBetween("2026-01-01", "2026-01-08")
	if err != nil {
		t.Fatal(err)
	}
	if got != 7 {
		t.Errorf("DaysBetween = %d, want 7", got)
	}
}

func TestTodayInTimezone(t *testing.T) {
	today, err := TodayInTimezone("UTC")
	if err != nil {
		t.Fatal(err)
	}
	if !ValidateDateFormat(today) {
		t.Errorf("TodayInTimezone returned %q", today)
	}
	if _, err := TodayInTimezone("Nope/Nowhere"); err == nil {
		t.Error("expected error for invalid timezone")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	got, err := ExpandPath("~/.config/studylog/studylog.db")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, ".config/studylog/studylog.db"); got != want {
		t.Errorf("ExpandPath = %q, want %q", got, want)
	}

	if got, _ := ExpandPath("/tmp/x.db"); got != "/tmp/x.db" {
		t.Errorf("absolute path changed: %q", got)
	}
}

func TestIsPostgresDSN(t *testing.T) {
	if !IsPostgresDSN("postgresql://me@localhost/studylog") {
		t.Error("postgresql:// not detected")
	}
	if IsPostgresDSN("/home/me/studylog.db") {
		t.Error("file path detected as postgres")
	}
}
