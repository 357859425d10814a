package vectile

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"

	"github.com/beetlebugorg/vectile/internal/tiledata"
)

// TileLayer is one named group of features in a fetched tile.
type TileLayer struct {
	Name     string
	Features []*geojson.Feature
}

// TileSource fetches the data for one tile. Fetch runs on the tile's
// materialization goroutine with the tile's context: sources should honor
// cancellation, and a fetch ended by cancellation should surface
// context.Canceled so the layer commits the tile empty instead of marking
// it failed.
type TileSource interface {
	Fetch(ctx context.Context, t maptile.Tile) ([]TileLayer, error)
}

// HTTPSource fetches tiles from a URL template.
//
//	source := vectile.NewHTTPSource("https://tiles.example.com/{z}/{x}/{y}.json", nil)
type HTTPSource struct {
	template string
	client   *http.Client
}

// NewHTTPSource creates a source for a template containing {z}, {x}, and
// {y} placeholders. A nil client means http.DefaultClient.
func NewHTTPSource(template string, client *http.Client) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{template: template, client: client}
}

// URL returns the request URL for a tile.
func (s *HTTPSource) URL(t maptile.Tile) string {
	r := strings.NewReplacer(
		"{z}", strconv.FormatUint(uint64(t.Z), 10),
		"{x}", strconv.FormatUint(uint64(t.X), 10),
		"{y}", strconv.FormatUint(uint64(t.Y), 10),
	)
	return r.Replace(s.template)
}

// Fetch implements TileSource. Any response other than 200 is an error.
func (s *HTTPSource) Fetch(ctx context.Context, t maptile.Tile) ([]TileLayer, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL(t), nil)
	if err != nil {
		return nil, fmt.Errorf("build tile request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch tile %s: %w", TileKey(t), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch tile %s: unexpected status %s", TileKey(t), resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tile %s: %w", TileKey(t), err)
	}
	return decodeTilePayload(t, body)
}

// FileSource reads tiles from <Root>/<z>/<x>/<y>.json. A missing file is an
// empty tile, not an error, so sparse pyramids work.
type FileSource struct {
	Root string
}

// Fetch implements TileSource.
func (s *FileSource) Fetch(ctx context.Context, t maptile.Tile) ([]TileLayer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(s.Root,
		strconv.FormatUint(uint64(t.Z), 10),
		strconv.FormatUint(uint64(t.X), 10),
		strconv.FormatUint(uint64(t.Y), 10)+".json")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read tile %s: %w", TileKey(t), err)
	}
	return decodeTilePayload(t, data)
}

func decodeTilePayload(t maptile.Tile, data []byte) ([]TileLayer, error) {
	layers, err := tiledata.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("tile %s: %w", TileKey(t), err)
	}
	out := make([]TileLayer, len(layers))
	for i, ly := range layers {
		out[i] = TileLayer{Name: ly.Name, Features: ly.Features}
	}
	return out, nil
}
