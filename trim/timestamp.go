package trim

import (
	"path/filepath"
	"regexp"
	"time"
)

// Precision records how much of a calendar timestamp a stream file name encodes.
type Precision int

const (
	// PrecisionFull means the name carries a complete date and time of day.
	PrecisionFull Precision = iota
	// PrecisionDateOnly means the name carries a calendar date only; the time
	// of day is unknown and taken as local midnight.
	PrecisionDateOnly
)

func (p Precision) String() string {
	switch p {
	case PrecisionFull:
		return "full"
	case PrecisionDateOnly:
		return "date-only"
	default:
		return "unknown"
	}
}

// Both patterns are anchored to the start of the base name; a timestamp in the
// middle of a file name does not count.
var (
	fileStemDateTimeRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}`)
	fileStemDateRe     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
)

// ParseFilenameTime extracts the recording timestamp encoded in a stream file
// name. A full "YYYY-MM-DD HH:MM:SS" prefix parses at second precision; a bare
// "YYYY-MM-DD" prefix parses at local midnight. ok is false when the base name
// starts with neither pattern or the matched prefix is not a real calendar
// date (e.g. month 13).
func ParseFilenameTime(path string) (ts time.Time, precision Precision, ok bool) {
	base := filepath.Base(path)

	if m := fileStemDateTimeRe.FindString(base); m != "" {
		if t, err := time.ParseInLocation("2006-01-02 15:04:05", m, time.Local); err == nil {
			return t, PrecisionFull, true
		}
	}
	if m := fileStemDateRe.FindString(base); m != "" {
		if t, err := time.ParseInLocation("2006-01-02", m, time.Local); err == nil {
			return t, PrecisionDateOnly, true
		}
	}
	return time.Time{}, 0, false
}
