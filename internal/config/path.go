// Package config holds the typed application settings and path handling.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// StdinPath names standard input as the capture device.
const StdinPath = "-"

// ExpandPath resolves a leading ~ and $VAR references in a configured path.
// StdinPath is returned unchanged.
func ExpandPath(path string) string {
	if path == "" || path == StdinPath {
		return path
	}

	if rest, ok := strings.CutPrefix(path, "~"); ok && (rest == "" || rest[0] == '/') {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, rest)
		}
	}

	return os.ExpandEnv(path)
}

// ReadsStdin reports whether the settings take scanned codes from standard
// input.
func (s Settings) ReadsStdin() bool {
	return s.Decoder == DecoderDevice && s.Device == StdinPath
}
