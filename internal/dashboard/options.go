// Package dashboard turns control values into selector options and Plotly
// figure descriptions over a loaded boundary dataset.
package dashboard

import (
	"github.com/coastmove/atoll-dashboard/internal/boundary"
)

// Option is one entry of a selection widget.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// AtollOptions lists the atolls a user may pick. With the atoll layer off
// only atolls referenced by administrative rows are offered; with it on,
// every atoll in the atoll table is.
func AtollOptions(ds *boundary.Dataset, showAtolls bool) []Option {
	table := ds.Admin
	if showAtolls {
		table = ds.Atolls
	}
	return toOptions(table.AtollNames())
}

// FieldOptions lists the demographic columns of the administrative table.
func FieldOptions(ds *boundary.Dataset) []Option {
	return toOptions(ds.Admin.Fields())
}

func toOptions(values []string) []Option {
	opts := make([]Option, 0, len(values))
	for _, v := range values {
		opts = append(opts, Option{Label: v, Value: v})
	}
	return opts
}
