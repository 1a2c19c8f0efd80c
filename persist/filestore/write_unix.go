//go:build !windows

package filestore

import (
	"fmt"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"
)

// writeFile replaces path with data. The pending file is fsynced before the
// rename.
func writeFile(path string, data []byte, logger zerolog.Logger) error {
	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o640))
	if err != nil {
		return fmt.Errorf("create pending file: %w", err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			logger.Debug().Err(err).Str("path", path).Msg("cleanup pending snapshot file")
		}
	}()

	if _, err := pendingFile.Write(data); err != nil {
		return fmt.Errorf("write pending file: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace: %w", err)
	}
	return nil
}
