package deployer

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/multierr"

	"github.com/oshokin/wallpaper-deployer/internal/logger"
)

// Deployment records what a Deploy call put on disk.
type Deployment struct {
	// Root is the absolute deployment root.
	Root string
	// Files are the written files in write order.
	Files []string
	// Dirs are the directories Deploy created, outermost first.
	Dirs []string
}

// Cleanup removes every deployed file and then every created directory.
// It attempts each removal even after failures and returns all of them combined.
// Entries that are already gone count as removed, so calling it twice is safe.
func (d *Deployment) Cleanup(ctx context.Context) error {
	if d == nil {
		return nil
	}

	var errs error

	for i := len(d.Files) - 1; i >= 0; i-- {
		path := d.Files[i]

		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.WarnKV(ctx, "Unable to remove file", "path", path, "error", err)
			errs = multierr.Append(errs, fmt.Errorf("remove file %s: %w", path, err))

			continue
		}

		logger.DebugKV(ctx, "Removed file", "path", path)
	}

	// Deepest first; RemoveAll also takes anything the helper left behind.
	for i := len(d.Dirs) - 1; i >= 0; i-- {
		path := d.Dirs[i]

		if err := os.RemoveAll(path); err != nil {
			logger.WarnKV(ctx, "Unable to remove directory", "path", path, "error", err)
			errs = multierr.Append(errs, fmt.Errorf("remove directory %s: %w", path, err))

			continue
		}

		logger.DebugKV(ctx, "Removed directory", "path", path)
	}

	return errs
}
