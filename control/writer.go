package control

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteResponse writes resp to path by atomic replace.
func WriteResponse(path string, resp Response) error {
	if resp.Applied == nil {
		resp.Applied = []string{}
	}
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	return writeFileAtomic(path, data, "response-*.json")
}

// WriteRequest stages req at path by atomic replace, so the composer never
// sees a torn request.
func WriteRequest(path string, req Request) error {
	if req.Commands == nil {
		req.Commands = []Command{}
	}
	data, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return writeFileAtomic(path, data, "request-*.json")
}

// writeFileAtomic writes data to a temp file in the destination directory,
// syncs it, restricts it to the owner and renames it over path.
func writeFileAtomic(path string, data []byte, pattern string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return nil
}
