package tui

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"

	"github.com/beetlebugorg/vectile/pkg/vectile"
)

// Options configures the viewer and the layer it drives.
type Options struct {
	Source       vectile.TileSource
	GetFeatureID func(*geojson.Feature) string
	Style        map[string]map[any]vectile.Style
	Debug        bool

	// Logger receives layer diagnostics. Stdout is taken over by the
	// program, so callers should point this at a file or discard it.
	Logger *slog.Logger

	Center vectile.LatLon
	Zoom   maptile.Zoom

	// HideProperty/HideValue define the rule the t key toggles. Empty
	// HideProperty disables the binding.
	HideProperty string
	HideValue    any
}

// Run builds the layer, wires its tile events into the program, and blocks
// until the user quits.
func Run(opts Options) error {
	store := newGroupStore()

	// The program is created after the layer, so the callbacks reach it
	// through this indirection. Events only fire once tiles are created,
	// which happens inside Update, well after Run starts.
	var p *tea.Program
	send := func(msg tea.Msg) {
		if p != nil {
			p.Send(msg)
		}
	}

	layer, err := vectile.New(opts.Source, vectile.Options{
		GetFeatureID: opts.GetFeatureID,
		Style:        opts.Style,
		Debug:        opts.Debug,
		Logger:       opts.Logger,
		OnTileLoad:   func(ev vectile.TileEvent) { send(tileLoadedMsg(ev)) },
		OnTileUnload: func(ev vectile.TileEvent) { send(tileUnloadedMsg(ev)) },
		OnTileError:  func(ev vectile.TileEvent) { send(tileErrorMsg(ev)) },
	})
	if err != nil {
		return err
	}
	defer layer.Close()
	layer.Attach(store)

	grid := vectile.NewGrid(layer, vectile.DefaultGridOptions())
	m := newModel(layer, grid, store, opts)

	p = tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
