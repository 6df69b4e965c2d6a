package boundary

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Options names the input files and their key columns.
type Options struct {
	AdminPath  string
	AtollPath  string
	AtollField string
	IDField    string
}

// Load reads the administrative and atoll tables in parallel. Either file
// failing aborts the load.
func Load(ctx context.Context, opts Options) (*Dataset, error) {
	if opts.AtollField == "" {
		opts.AtollField = "Atoll"
	}
	if opts.IDField == "" {
		opts.IDField = "ID"
	}

	var admin, atolls *Table
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := ReadTable(gctx, "admin", opts.AdminPath, opts.AtollField)
		if err != nil {
			return err
		}
		admin = t
		return nil
	})
	g.Go(func() error {
		t, err := ReadTable(gctx, "atolls", opts.AtollPath, opts.AtollField)
		if err != nil {
			return err
		}
		atolls = t
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Dataset{Admin: admin, Atolls: atolls, IDField: opts.IDField}, nil
}

// ReadTable loads one boundary file, picking the reader by extension.
func ReadTable(ctx context.Context, name, path, atollField string) (*Table, error) {
	if path == "" {
		return nil, eris.Errorf("boundary: %s path is empty", name)
	}

	log := zap.L().With(zap.String("component", "boundary.loader"), zap.String("table", name))

	var (
		t   *Table
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".geojson", ".json":
		t, err = ReadGeoJSON(ctx, name, path, atollField)
	case ".shp":
		t, err = ReadShapefile(ctx, name, path, atollField)
	default:
		return nil, eris.Errorf("boundary: %s: unsupported file type %q", path, ext)
	}
	if err != nil {
		return nil, err
	}

	if !t.HasField(atollField) {
		log.Warn("atoll column missing, every row has a null atoll", zap.String("field", atollField))
	}
	if t.DroppedParts() > 0 {
		log.Warn("multi-part shapes reduced to their first polygon",
			zap.Int("dropped_parts", t.DroppedParts()),
		)
	}
	log.Info("boundary table loaded",
		zap.String("path", path),
		zap.Int("records", t.Len()),
		zap.Int("fields", len(t.fields)),
	)

	return t, nil
}
