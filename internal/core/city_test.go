package core

import (
	"strings"
	"testing"
	"time"
)

func TestDisplayCity(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "paris", want: "Paris"},
		{in: "NEW YORK", want: "New York"},
		{in: "  rio   de janeiro ", want: "Rio De Janeiro"},
		{in: "São Paulo", want: "São Paulo"},
		{in: "McAllen", want: "McAllen"},
		{in: "   ", want: ""},
	}
	for _, tt := range tests {
		if got := DisplayCity(tt.in); got != tt.want {
			t.Fatalf("DisplayCity(%q): got %q want %q", tt.in, got, tt.want)
		}
	}
}

func TestGuideHeader(t *testing.T) {
	if got := GuideHeader("lisbon", "2025-09-18T10:00:00"); got != "Guide for Lisbon (2025-09-18T10:00:00)" {
		t.Fatalf("got %q", got)
	}
	if got := GuideHeader("Lisbon", ""); got != "Guide for Lisbon" {
		t.Fatalf("got %q", got)
	}
}

func TestParseSince(t *testing.T) {
	now := time.Date(2025, 9, 18, 15, 30, 0, 0, time.UTC)
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "today", want: time.Date(2025, 9, 18, 0, 0, 0, 0, time.UTC)},
		{in: "yesterday", want: time.Date(2025, 9, 17, 0, 0, 0, 0, time.UTC)},
		{in: "2h", want: now.Add(-2 * time.Hour)},
		{in: "3d", want: now.Add(-72 * time.Hour)},
		{in: "2025-09-01", want: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)},
		{in: "0d", wantErr: true},
		{in: "soon", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseSince(tt.in, now)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: %v", tt.in, err)
		}
		if !got.Equal(tt.want) {
			t.Fatalf("%q: got %v want %v", tt.in, got, tt.want)
		}
	}
}

func TestGenerateGUID(t *testing.T) {
	id, err := GenerateGUID(GuidePrefix)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(id, "gd-") || len(id) != len("gd-")+guidLength {
		t.Fatalf("unexpected id %q", id)
	}
	if got := GetGUIDPrefix(id, 4); len(got) != 4 || !strings.HasPrefix(id[3:], got) {
		t.Fatalf("prefix: got %q for %q", got, id)
	}
	if got := GetGUIDPrefix("gd-ab", 6); got != "ab" {
		t.Fatalf("short id prefix: got %q", got)
	}
}

func TestRenderMarkdownFallsBackToPlain(t *testing.T) {
	out := RenderMarkdown("Lisbon has **great** tiles.", 60, false)
	if !strings.Contains(out, "great") || !strings.Contains(out, "Lisbon") {
		t.Fatalf("rendered text lost content: %q", out)
	}
	if got := RenderMarkdown("  ", 60, false); got != "  " {
		t.Fatalf("blank input should pass through, got %q", got)
	}
}
