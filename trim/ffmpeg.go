package trim

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Trimmer produces a time-shifted copy of a stream file (for tests/mocks).
type Trimmer interface {
	Trim(ctx context.Context, src, dst string, offsetSeconds float64) error
}

// ffmpegTrimmer shells out to ffmpeg for a lossless stream-copy trim: seek to
// the offset and copy the audio/video streams verbatim, no re-encode.
type ffmpegTrimmer struct {
	policy *Policy
}

// trimArgs builds the ffmpeg argument list: quiet logging with progress stats
// kept, input path, seek offset in seconds, stream copy, output path.
func trimArgs(src, dst string, offsetSeconds float64) []string {
	return []string{
		"-v", "quiet",
		"-stats",
		"-i", src,
		"-ss", strconv.FormatFloat(offsetSeconds, 'f', -1, 64),
		"-c", "copy",
		dst,
	}
}

func (f ffmpegTrimmer) Trim(ctx context.Context, src, dst string, offsetSeconds float64) error {
	args := trimArgs(src, dst, offsetSeconds)
	f.policy.Print(func() string { return "ffmpeg " + strings.Join(args, " ") })
	if f.policy.DryRun {
		return nil
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	// -v quiet suppresses the log chatter; -stats progress still arrives on
	// stderr, pass it through.
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg trim %q -> %q: %w", src, dst, err)
	}
	return nil
}
