package cachefile_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/han8909227/avatax-go/internal/cachefile"
	"github.com/han8909227/avatax-go/internal/model"
)

func fixedClock(y int, m time.Month, d int) func() time.Time {
	return func() time.Time { return time.Date(y, m, d, 10, 30, 0, 0, time.Local) }
}

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	return path
}

func TestJoin_EntityID(t *testing.T) {
	path := cachefile.Join("/a/b", cachefile.ContentFileName, 42)
	assert.True(t, strings.HasSuffix(path, "42_retailTaxContent.json"), path)
	assert.Equal(t, filepath.Join("/a/b", "42_retailTaxContent.json"), path)
}

func TestJoin_Today(t *testing.T) {
	path := cachefile.Join("/a/b", cachefile.ZipRateFileName, 0)
	today := time.Now().Format("20060102")
	assert.True(t, strings.HasSuffix(path, today+"_zipRates.json"), path)
}

func TestNamer_FixedClock(t *testing.T) {
	n := cachefile.NewNamer(fixedClock(2023, time.February, 15))
	assert.Equal(t, filepath.Join("/cache", "20230215_zipRates.json"), n.Join("/cache", cachefile.ZipRateFileName, 0))
	assert.Equal(t, "7_retailTaxContent.json", n.FileName(cachefile.ContentFileName, 7))
}

func TestNamer_NoSeparatorDuplication(t *testing.T) {
	n := cachefile.NewNamer(fixedClock(2023, time.January, 1))
	assert.Equal(t, filepath.Join("/cache", "20230101_zipRates.json"), n.Join("/cache/", cachefile.ZipRateFileName, 0))
}

func TestMostRecent(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "20230101_zipRates.json")
	want := touch(t, dir, "20230215_zipRates.json")
	touch(t, dir, "20221231_zipRates.json")

	got, err := cachefile.MostRecent(dir, cachefile.ZipRateFileName)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestMostRecent_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	want := touch(t, dir, "20230101_zipRates.json")
	touch(t, dir, "42_retailTaxContent.json")
	touch(t, dir, "latest_zipRates.json")
	touch(t, dir, "notes.txt")
	touch(t, dir, ".20991231_zipRates.json.tmp")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "20991231_zipRates.json"), 0o755))

	got, err := cachefile.MostRecent(dir, cachefile.ZipRateFileName)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestMostRecent_DirWithPatternCharacters(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache[prod]*")
	require.NoError(t, os.Mkdir(dir, 0o755))
	touch(t, dir, "20230101_zipRates.json")
	want := touch(t, dir, "20230301_zipRates.json")

	got, err := cachefile.MostRecent(dir, cachefile.ZipRateFileName)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestMostRecent_EmptyDir(t *testing.T) {
	_, err := cachefile.MostRecent(t.TempDir(), cachefile.ZipRateFileName)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestMostRecent_MissingDir(t *testing.T) {
	_, err := cachefile.MostRecent(filepath.Join(t.TempDir(), "absent"), cachefile.ZipRateFileName)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestWriteReadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "20230101_zipRates.json")

	in := map[string][]string{"98101": {"WA", "KING"}}
	require.NoError(t, cachefile.WriteJSON(path, in))

	var out map[string][]string
	require.NoError(t, cachefile.ReadJSON(path, &out))
	assert.Equal(t, in, out)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestWriteFile_Replaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "1_retailTaxContent.json")
	require.NoError(t, cachefile.WriteFile(path, []byte(`{"v":1}`)))
	require.NoError(t, cachefile.WriteFile(path, []byte(`{"v":2}`)))

	var doc json.RawMessage
	require.NoError(t, cachefile.ReadJSON(path, &doc))
	assert.JSONEq(t, `{"v":2}`, string(doc))
}

func TestWriteFile_MissingDir(t *testing.T) {
	err := cachefile.WriteFile(filepath.Join(t.TempDir(), "nope", "x.json"), []byte("{}"))
	require.Error(t, err)
}

func TestReadJSON_Missing(t *testing.T) {
	var v map[string]interface{}
	err := cachefile.ReadJSON(filepath.Join(t.TempDir(), "absent.json"), &v)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestReadJSON_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	var v map[string]interface{}
	err := cachefile.ReadJSON(path, &v)
	require.Error(t, err)
	assert.ErrorIs(t, err, cachefile.ErrCorrupt)
	assert.NotErrorIs(t, err, model.ErrNotFound)
}
