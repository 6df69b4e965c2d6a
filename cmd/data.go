package main

import (
	"context"

	"github.com/coastmove/atoll-dashboard/internal/boundary"
	"github.com/coastmove/atoll-dashboard/internal/config"
	"github.com/coastmove/atoll-dashboard/internal/dashboard"
)

func loadDataset(ctx context.Context, c *config.Config) (*boundary.Dataset, error) {
	return boundary.Load(ctx, boundary.Options{
		AdminPath:  c.Data.AdminPath,
		AtollPath:  c.Data.AtollPath,
		AtollField: c.Data.AtollField,
		IDField:    c.Data.IDField,
	})
}

func mapStyle(c config.MapConfig) dashboard.MapStyle {
	return dashboard.MapStyle{
		Style:      c.Style,
		CenterLat:  c.CenterLat,
		CenterLon:  c.CenterLon,
		Zoom:       c.Zoom,
		Width:      c.Width,
		Height:     c.Height,
		ColorScale: c.ColorScale,
	}
}
