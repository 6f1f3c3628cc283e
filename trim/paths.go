package trim

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Fixed sibling artifact extensions: a zstd-compressed chat log and a yaml
// metadata file sharing the stream's base name.
const (
	chatExt = "txt.zst"
	metaExt = "yaml"
)

// ErrDestinationExists marks a computed rename destination that is already
// occupied; proceeding would clobber an unrelated file.
var ErrDestinationExists = errors.New("destination path already exists")

// withFinalExt replaces the final extension of path with ext (no leading dot).
func withFinalExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + ext
}

func chatSiblingPath(streamPath string) string { return withFinalExt(streamPath, chatExt) }

func metaSiblingPath(streamPath string) string { return withFinalExt(streamPath, metaExt) }

// mapPath computes the destination for renaming oldPath to the new base name,
// keeping the directory and the full extension. The extension is everything
// after the first dot of the old file name, so multi-part extensions like
// "txt.zst" survive the rename. An existing destination is a hard error.
func mapPath(oldPath, newBase string) (string, error) {
	name := filepath.Base(oldPath)
	idx := strings.Index(name, ".")
	if idx < 0 {
		return "", fmt.Errorf("no extension in file name %q", name)
	}
	ext := name[idx+1:]

	dest := filepath.Join(filepath.Dir(oldPath), newBase+"."+ext)
	if _, err := os.Stat(dest); err == nil {
		return "", fmt.Errorf("%w: %q", ErrDestinationExists, dest)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("stat %q: %w", dest, err)
	}
	return dest, nil
}
