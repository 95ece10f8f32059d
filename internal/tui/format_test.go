package tui

import "testing"

func TestFormatTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"rfc3339", "2025-02-23T09:23:33Z", "2025-02-23 09:23:33"},
		{"with offset", "2025-02-23T09:23:33+00:00", "2025-02-23 09:23:33"},
		{"empty", "", ""},
		{"garbage", "yesterday", ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := formatTimestamp(tt.value); got != tt.want {
				t.Errorf("formatTimestamp(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestFormatDate(t *testing.T) {
	t.Parallel()

	if got := formatDate("2025-04-13T08:00:00Z"); got != "April 13, 2025" {
		t.Errorf("formatDate() = %q", got)
	}
	if got := formatDate(""); got != "Unknown date" {
		t.Errorf("formatDate(empty) = %q", got)
	}
	if got := formatDate("not-a-date"); got != "Unknown date" {
		t.Errorf("formatDate(garbage) = %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		minutes float64
		want    string
	}{
		{"seconds only", 0.5, "30s"},
		{"minutes and seconds", 12.5, "12m 30s"},
		{"hours", 90, "1h 30m 0s"},
		{"rounds subsecond", 0.0084, "1s"},
		{"zero", 0, "0s"},
		{"negative keeps sign", -2, "-2m 0s"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := formatDuration(tt.minutes); got != tt.want {
				t.Errorf("formatDuration(%v) = %q, want %q", tt.minutes, got, tt.want)
			}
		})
	}
}

func TestPageLayoutUpdate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		width      int
		height     int
		wantWidth  int
		wantHeight int
	}{
		{"typical terminal", 100, 32, 98, 27},
		{"wide terminal clamps content", 200, 50, maxContentWidth, 45},
		{"narrow terminal keeps minimum", 30, 10, minViewportWidth, 5},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l := newPageLayout()
			l.Update(tt.width, tt.height)
			if l.viewportWidth != tt.wantWidth {
				t.Errorf("viewportWidth = %d, want %d", l.viewportWidth, tt.wantWidth)
			}
			if l.viewportHeight != tt.wantHeight {
				t.Errorf("viewportHeight = %d, want %d", l.viewportHeight, tt.wantHeight)
			}
		})
	}
}
