package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"text/tabwriter"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/han8909227/avatax-go/internal/model"
	"github.com/han8909227/avatax-go/internal/remote"
)

type sample struct {
	ZipCode string `json:"zip_code"`
	State   string `json:"state"`
}

func withFormat(t *testing.T, format string) {
	t.Helper()
	prev := viper.GetString("format")
	viper.Set("format", format)
	t.Cleanup(func() { viper.Set("format", prev) })
}

func TestWriteOutput(t *testing.T) {
	rows := []sample{{ZipCode: "98101", State: "WA"}}
	table := func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "ZIP\tSTATE")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\n", r.ZipCode, r.State)
		}
	}

	tests := []struct {
		format   string
		contains []string
	}{
		{formatJSON, []string{`"zip_code": "98101"`}},
		{formatYAML, []string{"- state: WA", "zip_code: \"98101\""}},
		{formatTable, []string{"ZIP    STATE", "98101  WA"}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			withFormat(t, tt.format)
			var buf bytes.Buffer
			require.NoError(t, writeOutput(&buf, rows, table))
			for _, want := range tt.contains {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestWriteOutput_TableFallsBackToJSON(t *testing.T) {
	withFormat(t, formatTable)
	var buf bytes.Buffer
	require.NoError(t, writeOutput(&buf, map[string]int{"a": 1}, nil))
	assert.JSONEq(t, `{"a":1}`, buf.String())
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"invalid", model.NewArgumentError("zip", nil, "empty"), 2},
		{"not found", fmt.Errorf("load: %w", model.NewNotFoundError("snapshot", "/tmp", "missing")), 3},
		{"upstream", model.NewUpstreamError("DownloadZipRates", 10, 3, "failed", nil), 4},
		{"unauthorized", fmt.Errorf("ping: %w", remote.NewAPIError(remote.OpPing, 401, nil)), 5},
		{"other", errors.New("boom"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExitCode(tt.err))
		})
	}
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"sync", "rates", "content", "ping", "serve"} {
		assert.True(t, names[want], want)
	}
}

// fakeAvaTax serves the endpoints sync, rates and content call.
func fakeAvaTax(t *testing.T) *httptest.Server {
	t.Helper()
	var rates strings.Builder
	for i := 0; i < 120; i++ {
		fmt.Fprintf(&rates, "%05d,WA,KING,SEATTLE,0.065,0.065,0,0,0.0385,0.0385,0.1035,0.1035,N,Y\n", 98000+i)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/companies", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"value":[{"id":7,"isDefault":true}]}`))
	})
	mux.HandleFunc("GET /api/v2/companies/7/locations/55/pointofsaledata", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"location":55,"taxes":[{"name":"WA","rate":0.1035}]}`))
	})
	mux.HandleFunc("GET /api/v2/taxratesbyzipcode/download/{date}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(rates.String()))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommands_SyncThenLookup(t *testing.T) {
	withFormat(t, formatJSON)
	srv := fakeAvaTax(t)
	contentDir, zipDir := t.TempDir(), t.TempDir()

	// An unreadable snapshot must not stop sync from replacing it.
	require.NoError(t, os.WriteFile(filepath.Join(zipDir, "20200101_zipRates.json"), []byte("{trunc"), 0o644))

	common := []string{
		"--environment", srv.URL,
		"--username", "token-abc",
		"--content-dir", contentDir,
		"--zip-dir", zipDir,
		"--location-id", "55",
	}
	run := func(args ...string) (string, error) {
		return execute(t, append(args, common...)...)
	}

	out, err := run("sync")
	require.NoError(t, err)
	assert.Contains(t, out, `"zip_codes": 120`)
	assert.Contains(t, out, `"content_loaded": true`)
	assert.FileExists(t, filepath.Join(contentDir, "55_retailTaxContent.json"))

	out, err = run("rates", "98101")
	require.NoError(t, err)
	assert.Contains(t, out, `"zip_code": "98101"`)
	assert.Contains(t, out, `"source": "cache"`)

	out, err = run("content")
	require.NoError(t, err)
	assert.Contains(t, out, `"taxes"`)

	_, err = run("rates", "00001")
	require.Error(t, err)
	assert.Equal(t, 3, ExitCode(err))
}
