package cachefile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/han8909227/avatax-go/internal/model"
)

const filePerm = 0o644

// ErrCorrupt marks a snapshot that exists but cannot be decoded.
var ErrCorrupt = errors.New("corrupt snapshot")

// WriteJSON encodes v and replaces path with it.
func WriteJSON(path string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	return WriteFile(path, data)
}

// WriteFile replaces path with data via a temp file in the same directory and a rename,
// so readers never observe a partial snapshot.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")

	if err := os.WriteFile(tmp, data, filePerm); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// ReadJSON decodes the file at path into v. A missing file is a NotFoundError and
// an undecodable one wraps ErrCorrupt.
func ReadJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.NewNotFoundError("snapshot", path, "call SyncOfflineContent first")
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w %s: %v", ErrCorrupt, path, err)
	}
	return nil
}
