package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/coastmove/atoll-dashboard/internal/boundary"
	"github.com/coastmove/atoll-dashboard/internal/config"
	"github.com/coastmove/atoll-dashboard/internal/dashboard"
	"github.com/coastmove/atoll-dashboard/internal/server"
	"github.com/coastmove/atoll-dashboard/internal/telemetry"
)

var servePort int

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load boundary files and start the dashboard server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return eris.Wrap(err, "serve: invalid config")
		}

		shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := shutdownTracing(sctx); err != nil {
				zap.L().Warn("telemetry shutdown failed", zap.Error(err))
			}
		}()

		ds, err := loadDataset(ctx, cfg)
		if err != nil {
			return err
		}

		handler, err := buildRouter(cfg, ds)
		if err != nil {
			return err
		}

		return listen(ctx, cfg.Server.Port, handler)
	},
}

// buildRouter assembles the page and API handlers over a loaded dataset.
func buildRouter(c *config.Config, ds *boundary.Dataset) (http.Handler, error) {
	top, err := dashboard.LoadLogos(c.Branding.TopLogos)
	if err != nil {
		return nil, eris.Wrap(err, "serve: top logos")
	}
	bottom, err := dashboard.LoadLogos(c.Branding.BottomLogos)
	if err != nil {
		return nil, eris.Wrap(err, "serve: bottom logos")
	}

	defaultField := c.Data.DefaultField
	if !ds.Admin.HasField(defaultField) {
		fields := ds.Admin.Fields()
		zap.L().Warn("default field not in admin table",
			zap.String("field", defaultField),
			zap.Strings("available", fields),
		)
		defaultField = ""
		if len(fields) > 0 {
			defaultField = fields[0]
		}
	}

	page := &dashboard.Page{
		Title:        c.Branding.Title,
		Intro:        c.Branding.Intro,
		TopLogos:     top,
		BottomLogos:  bottom,
		Fields:       dashboard.FieldOptions(ds),
		DefaultField: defaultField,
	}
	h := dashboard.NewHandler(ds, mapStyle(c.Map), defaultField, page)

	return server.NewRouter(h, server.Options{
		AllowedOrigins: c.Server.AllowedOrigins,
		RateLimit:      c.Server.RateLimit,
		RateBurst:      c.Server.RateBurst,
	}), nil
}

func listen(ctx context.Context, port int, handler http.Handler) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("starting server", zap.Int("port", port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("shutting down server")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return eris.Wrap(err, "server shutdown")
	}
	return nil
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
