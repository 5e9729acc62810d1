package offline

import (
	"encoding/json"

	"github.com/han8909227/avatax-go/internal/cachefile"
	"github.com/han8909227/avatax-go/internal/model"
	"github.com/han8909227/avatax-go/internal/ziprate"
)

// LoadContent reads the tax content snapshot for a location.
func LoadContent(dir string, locationID int64) (json.RawMessage, string, error) {
	if dir == "" {
		return nil, "", model.NewArgumentError("content_dir", nil, "must not be empty")
	}
	if locationID <= 0 {
		return nil, "", model.NewArgumentError("location_id", locationID, "must be positive")
	}

	path := cachefile.Join(dir, cachefile.ContentFileName, locationID)
	var content json.RawMessage
	if err := cachefile.ReadJSON(path, &content); err != nil {
		return nil, "", err
	}
	return content, path, nil
}

// LoadZipRates reads the most recent ZIP rate snapshot in dir.
func LoadZipRates(dir string) (ziprate.Table, string, error) {
	if dir == "" {
		return nil, "", model.NewArgumentError("zip_dir", nil, "must not be empty")
	}

	path, err := cachefile.MostRecent(dir, cachefile.ZipRateFileName)
	if err != nil {
		return nil, "", err
	}

	var table ziprate.Table
	if err := cachefile.ReadJSON(path, &table); err != nil {
		return nil, "", err
	}
	if table == nil {
		table = ziprate.Table{}
	}
	return table, path, nil
}
