// Command vectile-render draws one PNG from a tile pyramid. It fetches
// every tile covering the requested bounding box at the requested zoom,
// applies the style configuration, and rasterizes the result:
//
//	vectile-render -dir tiles -bbox -74.3,40.5,-73.7,40.9 -zoom 12 -out nyc.png
//	vectile-render -source https://tiles.example.com/{z}/{x}/{y}.json \
//	    -bbox 11.3,48.0,11.8,48.3 -zoom 13 -config style.yaml -out munich.png
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"

	"github.com/beetlebugorg/vectile/pkg/canvas"
	"github.com/beetlebugorg/vectile/pkg/vectile"
)

func main() {
	var (
		sourceURL  = flag.String("source", "", "tile URL template with {z}/{x}/{y} placeholders")
		dir        = flag.String("dir", "", "tile directory laid out as z/x/y.json")
		bboxStr    = flag.String("bbox", "", "view bound as minLon,minLat,maxLon,maxLat")
		zoom       = flag.Int("zoom", 12, "tile zoom level")
		out        = flag.String("out", "map.png", "output PNG path")
		configPath = flag.String("config", "", "YAML style configuration")
		width      = flag.Int("w", 1024, "image width in pixels")
		height     = flag.Int("h", 768, "image height in pixels")
		idProp     = flag.String("id", "id", "feature property used as the feature id")
		fetches    = flag.Int("fetch", 8, "parallel tile fetches")
		debug      = flag.Bool("debug", false, "debug logging and tile outlines")
		timeout    = flag.Duration("timeout", 30*time.Second, "time budget for tile fetches")
	)
	flag.Parse()

	if err := run(*sourceURL, *dir, *bboxStr, *zoom, *out, *configPath, *width, *height, *idProp, *fetches, *debug, *timeout); err != nil {
		fmt.Fprintln(os.Stderr, "vectile-render:", err)
		os.Exit(1)
	}
}

func run(sourceURL, dir, bboxStr string, zoom int, out, configPath string, width, height int, idProp string, fetches int, debug bool, timeout time.Duration) error {
	bound, err := parseBBox(bboxStr)
	if err != nil {
		return err
	}
	if zoom < 0 || zoom > 22 {
		return fmt.Errorf("zoom %d: must be between 0 and 22", zoom)
	}
	source, err := pickSource(sourceURL, dir)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if debug || cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	layer, err := vectile.New(source, vectile.Options{
		GetFeatureID:     vectile.PropertyID(idProp),
		Style:            cfg.Style,
		FetchConcurrency: fetches,
		Debug:            debug || cfg.Debug,
		Logger:           logger,
		OnTileError: func(ev vectile.TileEvent) {
			logger.Warn("tile failed", "tile", ev.Key, "error", ev.Err)
		},
	})
	if err != nil {
		return err
	}
	defer layer.Close()

	for _, rule := range cfg.Hide {
		layer.HideByProperty(rule.Property, rule.Value)
	}

	cvs, err := canvas.New(width, height, bound)
	if err != nil {
		return err
	}
	layer.Attach(cvs)

	grid := vectile.NewGrid(layer, vectile.DefaultGridOptions())
	if err := grid.SetView(bound, maptile.Zoom(zoom)); err != nil {
		return err
	}
	logger.Info("fetching tiles", "count", len(grid.Tiles()), "zoom", zoom)

	deadline := time.Now().Add(timeout)
	for {
		stats := layer.Stats()
		if stats.PendingTiles == 0 {
			break
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out with %d tiles outstanding", stats.PendingTiles)
		}
		time.Sleep(50 * time.Millisecond)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := cvs.EncodePNG(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	stats := layer.Stats()
	logger.Info("render complete",
		"out", out,
		"tiles", stats.LoadedTiles,
		"failed", stats.FailedTiles,
		"features", stats.Features,
		"visible", stats.VisibleFeatures,
		"skipped", stats.SkippedFeatures,
	)
	return nil
}

func pickSource(sourceURL, dir string) (vectile.TileSource, error) {
	switch {
	case sourceURL != "" && dir != "":
		return nil, fmt.Errorf("-source and -dir are mutually exclusive")
	case sourceURL != "":
		return vectile.NewHTTPSource(sourceURL, nil), nil
	case dir != "":
		return &vectile.FileSource{Root: dir}, nil
	}
	return nil, fmt.Errorf("one of -source or -dir is required")
}

func parseBBox(s string) (orb.Bound, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return orb.Bound{}, fmt.Errorf("bbox %q: want minLon,minLat,maxLon,maxLat", s)
	}
	vals := make([]float64, 4)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("bbox %q: %w", s, err)
		}
		vals[i] = v
	}
	bound := orb.Bound{Min: orb.Point{vals[0], vals[1]}, Max: orb.Point{vals[2], vals[3]}}
	if bound.Max.Lon() <= bound.Min.Lon() || bound.Max.Lat() <= bound.Min.Lat() {
		return orb.Bound{}, fmt.Errorf("bbox %q: empty bound", s)
	}
	return bound, nil
}
