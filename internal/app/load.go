// Package app assembles the immutable half of the map from configuration:
// observations, variable registry, boundary geometry and the render engine.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/modis-choropleth/internal/adapter/boundary"
	"github.com/couchcryptid/modis-choropleth/internal/catalog"
	"github.com/couchcryptid/modis-choropleth/internal/config"
	"github.com/couchcryptid/modis-choropleth/internal/domain"
	"github.com/couchcryptid/modis-choropleth/internal/ingest"
)

// Dataset is everything loaded once at startup.
type Dataset struct {
	Engine *domain.Engine
	// Boundaries is nil when no boundary file is configured.
	Boundaries *boundary.Collection
}

// Load reads observations, variable definitions and boundaries as described
// by cfg. Any data-shape error aborts the load.
func Load(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dataset, error) {
	format, err := ingest.ParseFormat(cfg.DataFormat)
	if err != nil {
		return nil, err
	}
	dups, err := ingest.ParseDuplicatePolicy(cfg.DuplicatePolicy)
	if err != nil {
		return nil, err
	}
	opts := ingest.Options{Format: format, Duplicates: dups}

	var observations []domain.Observation
	switch cfg.DataSource {
	case "sqlite":
		observations, err = ingest.LoadSQLite(ctx, cfg.DataPath, cfg.SQLiteTable, opts)
	default:
		observations, err = ingest.LoadCSV(cfg.DataPath, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("load observations from %s: %w", cfg.DataPath, err)
	}

	store := domain.NewStore(observations)
	if n := store.Duplicates(); n > 0 {
		logger.Warn("duplicate observations overwritten", "count", n, "policy", string(dups))
	}
	logger.Info("observations loaded",
		"source", cfg.DataSource,
		"observations", store.Len(),
		"periods", len(store.Periods()),
		"regions", len(store.Regions()),
		"variables", store.Variables(),
	)

	defs := catalog.Defaults()
	if cfg.VariablesFile != "" {
		if defs, err = catalog.LoadFile(cfg.VariablesFile); err != nil {
			return nil, err
		}
	}
	registry, err := catalog.Build(defs, store, logger)
	if err != nil {
		return nil, fmt.Errorf("build variable registry: %w", err)
	}

	ds := &Dataset{}
	regions := store.Regions()
	if cfg.BoundariesPath != "" {
		if ds.Boundaries, err = boundary.LoadFile(cfg.BoundariesPath, cfg.BoundaryNameProperty); err != nil {
			return nil, err
		}
		missing := 0
		for _, r := range regions {
			if _, ok := ds.Boundaries.Geometry(r); !ok {
				missing++
			}
		}
		if missing > 0 {
			logger.Warn("regions without boundary geometry", "count", missing)
		}
		regions = append(regions, ds.Boundaries.Names()...)
		logger.Info("boundaries loaded", "path", cfg.BoundariesPath, "features", ds.Boundaries.Len())
	}

	ds.Engine = domain.NewEngine(store, registry, regions)
	return ds, nil
}
