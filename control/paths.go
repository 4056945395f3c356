package control

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultDirName   = ".quill-control"
	RequestFileName  = "request.json"
	ResponseFileName = "response.json"
	LedgerFileName   = "consumed.json"
)

// Paths locates the control channel artifacts.
type Paths struct {
	Dir      string
	Request  string
	Response string
	Ledger   string
}

// DefaultDir returns ~/.quill-control.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, DefaultDirName), nil
}

// ResolvePaths returns the artifact paths under dir, creating dir on first
// use. An empty dir selects DefaultDir.
func ResolvePaths(dir string) (Paths, error) {
	if strings.TrimSpace(dir) == "" {
		d, err := DefaultDir()
		if err != nil {
			return Paths{}, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return Paths{}, fmt.Errorf("create control dir: %w", err)
	}
	return Paths{
		Dir:      dir,
		Request:  filepath.Join(dir, RequestFileName),
		Response: filepath.Join(dir, ResponseFileName),
		Ledger:   filepath.Join(dir, LedgerFileName),
	}, nil
}

// RemoveRequest deletes the request file. A missing file is not an error.
func RemoveRequest(p Paths) error {
	if err := os.Remove(p.Request); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
