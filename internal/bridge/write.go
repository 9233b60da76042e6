package bridge

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// write stores parameters.text in a file named by parameters.filename under
// the sandboxed storage directory. With parameters.base64decode true the
// text is treated as base64-encoded binary and decoded first. The resolved
// absolute path comes back under `wrote`.
func (dispatcher *Dispatcher) write(envelope Envelope) error {
	text, err := envelope.StringParameter("text")
	if err != nil {
		return fmt.Errorf("write command: %w", err)
	}
	filename, err := envelope.StringParameter("filename")
	if err != nil {
		return fmt.Errorf("write command: %w", err)
	}

	data := []byte(text)
	if envelope.BoolParameter("base64decode") {
		data, err = base64.StdEncoding.DecodeString(text)
		if err != nil {
			return fmt.Errorf(`write command: base64 decode of "text" failed: %w`, err)
		}
	}

	path, err := dispatcher.storagePath(filename)
	if err != nil {
		return fmt.Errorf("write command: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("write command: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write command: %w", err)
	}
	envelope["wrote"] = path
	return nil
}

// storagePath resolves filename inside the storage sandbox. Names that
// escape the sandbox, through .. segments or an absolute path, are refused.
func (dispatcher *Dispatcher) storagePath(filename string) (string, error) {
	if dispatcher.Storage == "" {
		return "", errors.New("no storage directory is configured")
	}
	storage, err := filepath.Abs(dispatcher.Storage)
	if err != nil {
		return "", err
	}
	path, err := filepath.Abs(filepath.Join(storage, filename))
	if err != nil {
		return "", err
	}
	if path != storage && !strings.HasPrefix(path, storage+string(filepath.Separator)) {
		return "", fmt.Errorf("filename %q resolves outside the storage directory", filename)
	}
	return path, nil
}
