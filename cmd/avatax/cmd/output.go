package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON  = "json"
	formatYAML  = "yaml"
	formatTable = "table"
)

func outputFormat() string {
	return strings.ToLower(strings.TrimSpace(viper.GetString("format")))
}

// writeOutput renders v in the selected format. YAML keeps the JSON field names.
// table is used for the table format; nil falls back to JSON.
func writeOutput(w io.Writer, v interface{}, table func(tw *tabwriter.Writer)) error {
	switch outputFormat() {
	case formatYAML:
		return writeYAML(w, v)
	case formatTable:
		if table != nil {
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			table(tw)
			return tw.Flush()
		}
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeYAML(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return enc.Close()
}
