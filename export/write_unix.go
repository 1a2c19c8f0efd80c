//go:build !windows

package export

import "github.com/google/renameio/v2"

// writeFile replaces path so readers never observe a partial document
func writeFile(path string, data []byte) error {
	return renameio.WriteFile(path, data, 0o644)
}
