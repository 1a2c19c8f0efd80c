//go:build windows

package filestore

import (
	"os"

	"github.com/rs/zerolog"
)

func writeFile(path string, data []byte, _ zerolog.Logger) error {
	return os.WriteFile(path, data, 0o640)
}
