// Package trim implements the stream-trimming reconciliation engine: for each
// stream with exactly one trim marker it cuts the leading segment off the
// media file with a lossless ffmpeg stream copy, renames the sibling chat and
// metadata artifacts to match, and rewrites the catalog's time-relative
// records so stored offsets stay consistent with the shortened media.
package trim

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/onnwee/streamtrim/telemetry"
)

// Data-integrity violations. Either one means the catalog and the filesystem
// disagree about a stream; the whole run aborts rather than guessing.
var (
	ErrNegativeOffset = errors.New("negative trim offset")
	ErrSourceMissing  = errors.New("source stream file missing")
)

// safetyMargin is subtracted from the marker start-time so the cut lands just
// before the detected point.
const safetyMargin = 1.0 // seconds

// Reconciler drives one trimming run over the catalog.
type Reconciler struct {
	DB         *sql.DB
	StreamsDir string
	Policy     *Policy

	// Trimmer overrides the default ffmpeg invocation (for tests/mocks).
	Trimmer Trimmer
}

func (r *Reconciler) trimmer() Trimmer {
	if r.Trimmer != nil {
		return r.Trimmer
	}
	return ffmpegTrimmer{policy: r.Policy}
}

// Run fetches every candidate stream once, then reconciles them strictly in
// query order. Skip conditions (ambiguous marker count, unparseable filename)
// move on to the next candidate; any other failure aborts the run immediately.
func (r *Reconciler) Run(ctx context.Context) error {
	ctx, span := telemetry.StartSpan(ctx, "streamtrim", "trim.run")
	defer span.End()

	start := time.Now()
	candidates, err := fetchCandidates(ctx, r.DB)
	if err != nil {
		err = fmt.Errorf("failed to retrieve trim candidates from database: %w", err)
		telemetry.RecordError(span, err)
		return err
	}
	total := len(candidates)

	logger := telemetry.LoggerWithCorr(ctx).With(slog.String("component", "trim"))
	logger.Info("trim run starting",
		slog.Int("candidates", total),
		slog.String("streams_dir", r.StreamsDir),
		slog.Bool("dry_run", r.Policy.DryRun))

	for i, c := range candidates {
		telemetry.CandidatesSeen.Inc()
		if err := r.reconcile(ctx, c, i+1, total); err != nil {
			telemetry.CandidatesFailed.Inc()
			telemetry.RecordError(span, err)
			return err
		}
	}

	telemetry.RunDuration.Observe(time.Since(start).Seconds())
	telemetry.SetSpanSuccess(span)
	logger.Info("trim run finished", slog.Int("candidates", total), slog.Duration("elapsed", time.Since(start)))
	return nil
}

// reconcile runs the per-candidate state machine: validate, parse, compute the
// outcome branch, trim, rename siblings, then apply the catalog updates.
func (r *Reconciler) reconcile(ctx context.Context, c candidate, idx, total int) error {
	ctx, span := telemetry.StartSpan(ctx, "streamtrim", "trim.candidate",
		attribute.Int64("stream.id", c.StreamID),
		attribute.String("stream.filename", c.Filename))
	defer span.End()

	if c.MarkerCount > 1 {
		telemetry.CandidatesSkipped.Inc()
		r.Policy.Print(func() string {
			return fmt.Sprintf("[%d/%d] skipping stream %d because it has more than 1 trim marker", idx, total, c.StreamID)
		})
		return nil
	}

	offset := c.MarkerStart - safetyMargin
	if offset < 0 {
		return fmt.Errorf("%w: stream %d has marker at %.3fs", ErrNegativeOffset, c.StreamID, c.MarkerStart)
	}

	oldStreamPath := filepath.Join(r.StreamsDir, c.Filename)
	if _, err := os.Stat(oldStreamPath); err != nil {
		return fmt.Errorf("%w: stream %d: %v", ErrSourceMissing, c.StreamID, err)
	}
	oldChatPath := chatSiblingPath(oldStreamPath)
	oldMetaPath := metaSiblingPath(oldStreamPath)

	oldTime, precision, ok := ParseFilenameTime(oldStreamPath)
	if !ok {
		telemetry.CandidatesSkipped.Inc()
		r.Policy.Print(func() string {
			return fmt.Sprintf("[%d/%d] couldn't get date for %q, skipping", idx, total, oldStreamPath)
		})
		return nil
	}
	newTime := oldTime.Add(time.Duration(offset*1000.0) * time.Millisecond)

	// The precision of the old name decides the outcome branch: a full
	// timestamp yields an authoritative new name and sibling renames; a bare
	// date yields a provisional "_NEW" name and leaves siblings alone.
	var newBase string
	renameSiblings := false
	switch precision {
	case PrecisionFull:
		newBase = newTime.Format("2006-01-02 15:04:05")
		renameSiblings = true
	case PrecisionDateOnly:
		newBase = newTime.Format("2006-01-02") + "_NEW"
	}

	newStreamPath, err := mapPath(oldStreamPath, newBase)
	if err != nil {
		return fmt.Errorf("stream %d: %w", c.StreamID, err)
	}
	newChatPath, err := mapPath(oldChatPath, newBase)
	if err != nil {
		return fmt.Errorf("stream %d: %w", c.StreamID, err)
	}
	newMetaPath, err := mapPath(oldMetaPath, newBase)
	if err != nil {
		return fmt.Errorf("stream %d: %w", c.StreamID, err)
	}

	r.Policy.Print(func() string {
		return fmt.Sprintf("[%d/%d] %q -> %q", idx, total, oldStreamPath, newStreamPath)
	})

	ffStart := time.Now()
	if err := r.trimmer().Trim(ctx, oldStreamPath, newStreamPath, offset); err != nil {
		return fmt.Errorf("failed to trim the video file: %w", err)
	}
	telemetry.FFmpegDuration.Observe(time.Since(ffStart).Seconds())

	if renameSiblings {
		if _, err := os.Stat(oldChatPath); err == nil {
			if err := r.Policy.Rename(oldChatPath, newChatPath); err != nil {
				return fmt.Errorf("failed to rename chat file: %w", err)
			}
		}
		if _, err := os.Stat(oldMetaPath); err == nil {
			if err := r.Policy.Rename(oldMetaPath, newMetaPath); err != nil {
				return fmt.Errorf("failed to rename metadata file: %w", err)
			}
		}
	}

	// Catalog updates are skipped as a block under dry-run so a dry run
	// leaves the catalog byte-identical.
	if !r.Policy.DryRun {
		if err := deleteTrimMarker(ctx, r.DB, c.StreamID); err != nil {
			return fmt.Errorf("failed to remove trim marker from database: %w", err)
		}
		if err := shiftMarkers(ctx, r.DB, c.StreamID, offset); err != nil {
			return fmt.Errorf("failed to update game features in database: %w", err)
		}
		if err := shiftProgress(ctx, r.DB, c.StreamID, offset); err != nil {
			return fmt.Errorf("failed to update stream progress in database: %w", err)
		}
	}

	switch precision {
	case PrecisionFull:
		// The trimmed file already occupies its final path; point the catalog
		// at it and drop the pre-trim source.
		if !r.Policy.DryRun {
			if err := updateStreamFile(ctx, r.DB, c.StreamID, filepath.Base(newStreamPath), newTime.Unix(), offset); err != nil {
				return fmt.Errorf("failed to update database to use new stream file: %w", err)
			}
		}
		if err := r.Policy.Remove(oldStreamPath); err != nil {
			return fmt.Errorf("failed to remove old stream file: %w", err)
		}
	case PrecisionDateOnly:
		// The date was too coarse to assert a new authoritative timestamp:
		// move the trimmed file back onto the original name and leave the
		// catalog's filename column alone.
		if err := r.Policy.Rename(newStreamPath, oldStreamPath); err != nil {
			return fmt.Errorf("failed to rename new stream file back to old name: %w", err)
		}
	}

	telemetry.CandidatesTrimmed.Inc()
	telemetry.SetSpanSuccess(span)
	return nil
}
