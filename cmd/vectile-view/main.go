// Command vectile-view is an interactive terminal map over a tile pyramid.
// Pan with the arrow keys, zoom with +/-, inspect the features under the
// crosshair with i:
//
//	vectile-view -dir tiles -center 40.7,-74.0 -zoom 12 -hide kind=construction
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb/maptile"

	"github.com/beetlebugorg/vectile/internal/tui"
	"github.com/beetlebugorg/vectile/pkg/vectile"
)

func main() {
	var (
		sourceURL = flag.String("source", "", "tile URL template with {z}/{x}/{y} placeholders")
		dir       = flag.String("dir", "", "tile directory laid out as z/x/y.json")
		centerStr = flag.String("center", "0,0", "start position as lat,lon")
		zoom      = flag.Int("zoom", 2, "start zoom level")
		idProp    = flag.String("id", "id", "feature property used as the feature id")
		hideRule  = flag.String("hide", "", "rule for the t key, as property=value")
		cacheMB   = flag.Int("cache", 64, "tile payload cache in MB, 0 disables")
		logPath   = flag.String("log", "", "append layer diagnostics to this file")
		debug     = flag.Bool("debug", false, "debug logging and tile outlines")
	)
	flag.Parse()

	if err := run(*sourceURL, *dir, *centerStr, *zoom, *idProp, *hideRule, *cacheMB, *logPath, *debug); err != nil {
		fmt.Fprintln(os.Stderr, "vectile-view:", err)
		os.Exit(1)
	}
}

func run(sourceURL, dir, centerStr string, zoom int, idProp, hideRule string, cacheMB int, logPath string, debug bool) error {
	source, err := pickSource(sourceURL, dir)
	if err != nil {
		return err
	}
	// Panning back over recently evicted tiles should not refetch them.
	if cacheMB > 0 {
		source = vectile.NewCachedSource(source, int64(cacheMB)<<20)
	}
	center, err := parseCenter(centerStr)
	if err != nil {
		return err
	}
	if zoom < 0 || zoom > 19 {
		return fmt.Errorf("zoom %d: must be between 0 and 19", zoom)
	}
	hideProp, hideValue := parseHideRule(hideRule)

	// The terminal belongs to the program, so diagnostics go to a file or
	// nowhere at all.
	logWriter := io.Writer(io.Discard)
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer f.Close()
		logWriter = f
	}
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{Level: level}))

	return tui.Run(tui.Options{
		Source:       source,
		GetFeatureID: vectile.PropertyID(idProp),
		Debug:        debug,
		Logger:       logger,
		Center:       center,
		Zoom:         maptile.Zoom(zoom),
		HideProperty: hideProp,
		HideValue:    hideValue,
	})
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

func parseCenter(s string) (vectile.LatLon, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return vectile.LatLon{}, fmt.Errorf("center %q: want lat,lon", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return vectile.LatLon{}, fmt.Errorf("center %q: %w", s, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return vectile.LatLon{}, fmt.Errorf("center %q: %w", s, err)
	}
	return vectile.LatLon{Lat: lat, Lon: lon}, nil
}

// parseHideRule splits "property=value"; numeric values become numbers so
// they match numeric feature properties.
func parseHideRule(s string) (string, any) {
	if s == "" {
		return "", nil
	}
	prop, raw, found := strings.Cut(s, "=")
	if !found {
		return strings.TrimSpace(s), nil
	}
	prop = strings.TrimSpace(prop)
	raw = strings.TrimSpace(raw)
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return prop, v
	}
	switch raw {
	case "true":
		return prop, true
	case "false":
		return prop, false
	}
	return prop, raw
}
