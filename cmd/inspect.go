package main

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/coastmove/atoll-dashboard/internal/boundary"
	"github.com/coastmove/atoll-dashboard/internal/config"
)

var inspectFormat string

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Load the boundary files and print a summary of each table",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("inspect"); err != nil {
			return eris.Wrap(err, "inspect: invalid config")
		}
		ds, err := loadDataset(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		return writeReport(cmd.OutOrStdout(), inspectFormat, buildReport(cfg, ds))
	},
}

type tableSummary struct {
	Name         string   `json:"name" yaml:"name"`
	Path         string   `json:"path" yaml:"path"`
	Records      int      `json:"records" yaml:"records"`
	Fields       []string `json:"fields" yaml:"fields"`
	Atolls       []string `json:"atolls" yaml:"atolls"`
	DroppedParts int      `json:"dropped_parts" yaml:"dropped_parts"`
}

type inspectReport struct {
	DefaultField        string         `json:"default_field" yaml:"default_field"`
	DefaultFieldPresent bool           `json:"default_field_present" yaml:"default_field_present"`
	Tables              []tableSummary `json:"tables" yaml:"tables"`
}

func summarize(t *boundary.Table, path string) tableSummary {
	atolls := t.AtollNames()
	if atolls == nil {
		atolls = []string{}
	}
	return tableSummary{
		Name:         t.Name(),
		Path:         path,
		Records:      t.Len(),
		Fields:       t.Fields(),
		Atolls:       atolls,
		DroppedParts: t.DroppedParts(),
	}
}

func buildReport(c *config.Config, ds *boundary.Dataset) inspectReport {
	return inspectReport{
		DefaultField:        c.Data.DefaultField,
		DefaultFieldPresent: ds.Admin.HasField(c.Data.DefaultField),
		Tables: []tableSummary{
			summarize(ds.Admin, c.Data.AdminPath),
			summarize(ds.Atolls, c.Data.AtollPath),
		},
	}
}

func writeReport(w io.Writer, format string, r inspectReport) error {
	switch format {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return eris.Wrap(err, "inspect: encode json")
		}
		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return eris.Wrap(err, "inspect: encode yaml")
		}
		if err := enc.Close(); err != nil {
			return eris.Wrap(err, "inspect: flush yaml")
		}
		return nil
	default:
		return eris.Errorf("inspect: unknown format %q (want json or yaml)", format)
	}
}

func init() {
	inspectCmd.Flags().StringVar(&inspectFormat, "format", "json", "output format: json or yaml")
	rootCmd.AddCommand(inspectCmd)
}
