package cachefile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/han8909227/avatax-go/internal/model"
)

// MostRecent returns the snapshot in dir named *<name> with the greatest date tag.
// The tag is the second-to-last underscore-delimited token of the file name.
// Files whose tag is not an integer are ignored. Equal tags keep the first match
// in name order.
func MostRecent(dir, name string) (string, error) {
	marker := strings.TrimSuffix(name, filepath.Ext(name))
	notFound := model.NewNotFoundError(marker+" snapshot", dir, "no cached file, call SyncOfflineContent first")

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", notFound
		}
		return "", fmt.Errorf("failed to list %s: %w", dir, err)
	}

	// Only the base name is matched, so dir may hold pattern characters.
	pattern := "*" + name

	var (
		best    string
		bestTag int64 = -1
	)
	for _, entry := range entries {
		base := entry.Name()
		if ok, err := filepath.Match(pattern, base); err != nil || !ok {
			continue
		}
		path := filepath.Join(dir, base)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}

		tag, ok := dateTag(base)
		if !ok {
			continue
		}
		if tag > bestTag {
			best, bestTag = path, tag
		}
	}

	if best == "" {
		return "", notFound
	}
	return best, nil
}

func dateTag(base string) (int64, bool) {
	parts := strings.Split(base, "_")
	if len(parts) < 2 {
		return 0, false
	}
	tag, err := strconv.ParseInt(parts[len(parts)-2], 10, 64)
	if err != nil {
		return 0, false
	}
	return tag, true
}
