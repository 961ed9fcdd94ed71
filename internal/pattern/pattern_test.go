package pattern

import (
	"tailf/internal/global"
	"testing"
	"time"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name        string
		timePattern string
		expect      string
	}{
		{
			name:        "full date pattern",
			timePattern: "%Y-%m-%d",
			expect:      "[0-9]{4}-[0-9]{2}-[0-9]{2}",
		},
		{
			name:        "hour and minute",
			timePattern: "%H%M",
			expect:      "[0-9]{2}[0-9]{2}",
		},
		{
			name:        "unknown escape becomes literal",
			timePattern: "%Y.%j",
			expect:      "[0-9]{4}\\.j",
		},
		{
			name:        "literal percent at end",
			timePattern: "%Y%",
			expect:      "[0-9]{4}%",
		},
		{
			name:        "regex metacharacters quoted",
			timePattern: "log.%d+",
			expect:      "log\\.[0-9]{2}\\+",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Translate(tt.timePattern)
			if got != tt.expect {
				t.Errorf("expected '%s', got '%s'", tt.expect, got)
			}
		})
	}
}

func TestMaterialize(t *testing.T) {
	now := time.Date(2024, time.January, 2, 3, 4, 5, 0, time.Local)

	tests := []struct {
		name        string
		timePattern string
		expect      string
	}{
		{
			name:        "date",
			timePattern: "%Y-%m-%d",
			expect:      "2024-01-02",
		},
		{
			name:        "time",
			timePattern: "%H:%M",
			expect:      "03:04",
		},
		{
			name:        "unknown escape",
			timePattern: "%Y-%S",
			expect:      "2024-S",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Materialize(tt.timePattern, now)
			if got != tt.expect {
				t.Errorf("expected '%s', got '%s'", tt.expect, got)
			}
		})
	}
}

func TestRegistryMatch(t *testing.T) {
	registry, err := NewRegistry([]global.FileSpec{
		{Topic: "app", Prefix: "/var/log/app-", Suffix: ".log", TimePattern: "%Y-%m-%d"},
		{Topic: "audit", Prefix: "/var/log/audit.", TimePattern: "%Y%m%d"},
	})
	if err != nil {
		t.Fatalf("unexpected registry error: %v", err)
	}

	tests := []struct {
		name        string
		directory   string
		basename    string
		expectMatch bool
		expectTopic string
	}{
		{
			name:        "app file matches",
			directory:   "/var/log",
			basename:    "app-2024-01-02.log",
			expectMatch: true,
			expectTopic: "app",
		},
		{
			name:        "audit file matches second spec",
			directory:   "/var/log",
			basename:    "audit.20240102",
			expectMatch: true,
			expectTopic: "audit",
		},
		{
			name:        "missing suffix does not match",
			directory:   "/var/log",
			basename:    "app-2024-01-02",
			expectMatch: false,
		},
		{
			name:        "non-numeric date does not match",
			directory:   "/var/log",
			basename:    "app-2024-01-xx.log",
			expectMatch: false,
		},
		{
			name:        "unregistered directory",
			directory:   "/tmp",
			basename:    "app-2024-01-02.log",
			expectMatch: false,
		},
		{
			name:        "trailing garbage does not match",
			directory:   "/var/log",
			basename:    "app-2024-01-02.log.gz",
			expectMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, matched := registry.Match(tt.directory, tt.basename)
			if matched != tt.expectMatch {
				t.Fatalf("expected match=%v, got %v", tt.expectMatch, matched)
			}
			if matched && spec.Topic != tt.expectTopic {
				t.Errorf("expected topic '%s', got '%s'", tt.expectTopic, spec.Topic)
			}
		})
	}
}

func TestCurrentBasename(t *testing.T) {
	registry, err := NewRegistry([]global.FileSpec{
		{Topic: "app", Prefix: "/var/log/app-", Suffix: ".log", TimePattern: "%Y-%m-%d"},
	})
	if err != nil {
		t.Fatalf("unexpected registry error: %v", err)
	}

	spec, matched := registry.Match("/var/log", "app-2024-01-02.log")
	if !matched {
		t.Fatalf("expected spec match")
	}

	now := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.Local)
	if got := spec.CurrentBasename(now); got != "app-2024-01-02.log" {
		t.Errorf("unexpected current basename '%s'", got)
	}

	// Yesterday's file no longer matches today's materialization
	tomorrow := now.AddDate(0, 0, 1)
	if got := spec.CurrentBasename(tomorrow); got == "app-2024-01-02.log" {
		t.Errorf("expected different basename on next day")
	}
}
