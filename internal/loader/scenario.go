// Package loader reads scenario files from disk into the transport string
// the scenario codec decodes.
package loader

import (
	"bytes"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"mccnet/internal/codec"
)

// fallbackMIME is used for files whose extension has no registered type
const fallbackMIME = "application/octet-stream"

// MIMEFor returns the media type a browser would report for path
func MIMEFor(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return fallbackMIME
}

// ReadScenario loads path as a scenario string. Files that already hold a
// data URL, such as a saved export, are returned as is; anything else is
// wrapped the way a browser file upload would wrap it.
func ReadScenario(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read scenario file: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("data:")) {
		return string(trimmed), nil
	}

	return codec.DataURL(MIMEFor(path), data), nil
}
