// Package cachefile names, finds, reads and writes the offline snapshot files.
package cachefile

import (
	"path/filepath"
	"strconv"
	"time"
)

// Logical snapshot names
const (
	ContentFileName = "retailTaxContent.json"
	ZipRateFileName = "zipRates.json"
)

// DateTagLayout is the date prefix of per-day snapshot files.
const DateTagLayout = "20060102"

// Namer derives snapshot paths. The clock only matters for per-day names.
type Namer struct {
	now func() time.Time
}

// NewNamer creates a namer; a nil clock means time.Now.
func NewNamer(now func() time.Time) Namer {
	if now == nil {
		now = time.Now
	}
	return Namer{now: now}
}

// Join returns dir/<entityID>_<name> for a positive entity id,
// otherwise dir/<YYYYMMDD>_<name> for today.
func (n Namer) Join(dir, name string, entityID int64) string {
	return filepath.Join(dir, n.FileName(name, entityID))
}

// FileName is Join without the directory.
func (n Namer) FileName(name string, entityID int64) string {
	if entityID > 0 {
		return strconv.FormatInt(entityID, 10) + "_" + name
	}
	now := n.now
	if now == nil {
		now = time.Now
	}
	return now().Format(DateTagLayout) + "_" + name
}

// Join names a snapshot using the wall clock.
func Join(dir, name string, entityID int64) string {
	return NewNamer(nil).Join(dir, name, entityID)
}
