package trim

import (
	"testing"
	"time"
)

func TestParseFilenameTime(t *testing.T) {
	tests := []struct {
		name          string
		path          string
		want          time.Time
		wantPrecision Precision
		wantOK        bool
	}{
		{
			name:          "full timestamp",
			path:          "/streams/2024-01-01 10:00:00.mkv",
			want:          time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local),
			wantPrecision: PrecisionFull,
			wantOK:        true,
		},
		{
			name:          "full timestamp with trailing title",
			path:          "2023-06-15 20:30:05 community night.mkv",
			want:          time.Date(2023, 6, 15, 20, 30, 5, 0, time.Local),
			wantPrecision: PrecisionFull,
			wantOK:        true,
		},
		{
			name:          "date only",
			path:          "2024-01-01.mkv",
			want:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local),
			wantPrecision: PrecisionDateOnly,
			wantOK:        true,
		},
		{
			name:          "date only with suffix",
			path:          "/data/2022-12-31_restored.mkv",
			want:          time.Date(2022, 12, 31, 0, 0, 0, 0, time.Local),
			wantPrecision: PrecisionDateOnly,
			wantOK:        true,
		},
		{name: "no timestamp", path: "raw_capture.mkv", wantOK: false},
		{name: "timestamp mid-name", path: "stream 2024-01-01.mkv", wantOK: false},
		{name: "impossible month", path: "2024-13-01.mkv", wantOK: false},
		{name: "truncated date", path: "2024-01.mkv", wantOK: false},
		{name: "empty base", path: ".mkv", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, precision, ok := ParseFilenameTime(tt.path)
			if ok != tt.wantOK {
				t.Fatalf("ParseFilenameTime(%q) ok = %v, want %v", tt.path, ok, tt.wantOK)
			}
			if !tt.wantOK {
				return
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseFilenameTime(%q) = %v, want %v", tt.path, got, tt.want)
			}
			if precision != tt.wantPrecision {
				t.Errorf("ParseFilenameTime(%q) precision = %v, want %v", tt.path, precision, tt.wantPrecision)
			}
		})
	}
}

func TestParseFilenameTimeInvalidClockFallsBackToDate(t *testing.T) {
	// "25:99:99" matches the date-time pattern shape but fails to parse; the
	// date-only pattern still applies to the prefix.
	got, precision, ok := ParseFilenameTime("2024-01-01 25:99:99.mkv")
	if !ok {
		t.Fatal("expected date-only fallback, got none")
	}
	if precision != PrecisionDateOnly {
		t.Errorf("precision = %v, want %v", precision, PrecisionDateOnly)
	}
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
