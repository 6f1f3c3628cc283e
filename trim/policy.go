package trim

import (
	"fmt"
	"log/slog"
	"os"
)

// Policy gates every mutating action (rename, delete, external process
// invocation) behind the verbose and dry-run execution flags. Under dry-run
// the action is described but never performed.
type Policy struct {
	Verbose bool
	DryRun  bool
	Logger  *slog.Logger
}

// Print evaluates desc only when output will happen: under dry-run the
// description is printed with a "[DRY]" prefix, under verbose it is printed
// as-is, otherwise nothing is formatted or emitted.
func (p *Policy) Print(desc func() string) {
	switch {
	case p.DryRun:
		p.logger().Info("[DRY] " + desc())
	case p.Verbose:
		p.logger().Info(desc())
	}
}

func (p *Policy) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// Rename renames old to new, short-circuiting under dry-run.
func (p *Policy) Rename(old, new string) error {
	p.Print(func() string { return fmt.Sprintf("renaming %q -> %q", old, new) })
	if p.DryRun {
		return nil
	}
	return os.Rename(old, new)
}

// Remove deletes path, short-circuiting under dry-run.
func (p *Policy) Remove(path string) error {
	p.Print(func() string { return fmt.Sprintf("removing %q", path) })
	if p.DryRun {
		return nil
	}
	return os.Remove(path)
}
