package trim

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// trimMarkerGameID is the marker category denoting the point at which to cut a
// leading segment off a stream. Fixed value in the existing catalog.
const trimMarkerGameID = 7

// candidate is one stream row returned by the eligibility query. MarkerCount
// is the per-stream count of trim markers; anything above one makes the trim
// point ambiguous and the stream is skipped.
type candidate struct {
	StreamID    int64
	Filename    string
	MarkerStart float64
	MarkerCount int
}

// fetchCandidates returns every stream carrying at least one trim marker,
// one row per marker, annotated with the per-stream marker count. All rows are
// collected before iteration begins so per-candidate mutations cannot leak
// into later candidates' inputs.
func fetchCandidates(ctx context.Context, db *sql.DB) ([]candidate, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT s.id, s.filename, gf.start_time,
		       COUNT(*) OVER (PARTITION BY s.id) AS marker_count
		FROM streams s
		JOIN game_features gf ON gf.stream_id = s.id
		WHERE gf.game_id = $1
		ORDER BY s.id`, trimMarkerGameID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Warn("failed to close rows", slog.Any("err", err))
		}
	}()

	var out []candidate
	for rows.Next() {
		var c candidate
		if err := rows.Scan(&c.StreamID, &c.Filename, &c.MarkerStart, &c.MarkerCount); err != nil {
			return nil, fmt.Errorf("scan candidate row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// deleteTrimMarker removes the trim marker event for the stream.
func deleteTrimMarker(ctx context.Context, db *sql.DB, streamID int64) error {
	_, err := db.ExecContext(ctx,
		`DELETE FROM game_features WHERE stream_id = $1 AND game_id = $2`,
		streamID, trimMarkerGameID)
	return err
}

// shiftMarkers decrements every remaining marker start-time for the stream by
// the trim offset, floored at zero.
func shiftMarkers(ctx context.Context, db *sql.DB, streamID int64, offsetSeconds float64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE game_features SET start_time = GREATEST(start_time - $1, 0) WHERE stream_id = $2`,
		offsetSeconds, streamID)
	return err
}

// shiftProgress decrements every watch-progress offset for the stream by the
// trim offset, floored at zero.
func shiftProgress(ctx context.Context, db *sql.DB, streamID int64, offsetSeconds float64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE stream_progress SET time = GREATEST(time - $1, 0) WHERE stream_id = $2`,
		offsetSeconds, streamID)
	return err
}

// updateStreamFile points the stream record at the trimmed file: new filename,
// new recorded timestamp (unix epoch), and duration reduced by the trim offset.
func updateStreamFile(ctx context.Context, db *sql.DB, streamID int64, filename string, ts int64, offsetSeconds float64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE streams SET filename = $1, ts = $2, duration = duration - $3 WHERE id = $4`,
		filename, ts, offsetSeconds, streamID)
	return err
}
