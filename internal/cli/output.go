package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/muesli/reflow/truncate"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by --output.
const (
	outputTable = "table"
	outputYAML  = "yaml"
	outputJSON  = "json"
)

// maxCellWidth caps free-text table columns.
const maxCellWidth = 48

// addOutputFlag registers -o/--output on cmd, bound to target.
func addOutputFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "output", "o", outputTable, "output format: table, yaml, json")
}

func validOutput(format string) error {
	switch format {
	case outputTable, outputYAML, outputJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want table, yaml, or json)", format)
	}
}

// writeStructured encodes v as YAML or JSON.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	default:
		return validOutput(format)
	}
}

// newTable returns a tabwriter laid out like the other roam tables.
func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// cell shortens free text for a table column.
func cell(s string) string {
	return truncate.StringWithTail(s, maxCellWidth, "…")
}
