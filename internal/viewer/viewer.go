// Package viewer connects key input and palette selection to redraw
// requests of a point cloud viewer.
package viewer

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/pointshade/server/pkg/colormap"
	"github.com/rs/zerolog/log"
)

// RedrawNotifier is told when the viewer must recompute vertex colors
// (UpdateGeometry) or only redraw (UpdateRender).
type RedrawNotifier interface {
	UpdateGeometry()
	UpdateRender()
}

// Notifiers fans a redraw out to several notifiers.
type Notifiers []RedrawNotifier

func (ns Notifiers) UpdateGeometry() {
	for _, n := range ns {
		n.UpdateGeometry()
	}
}

func (ns Notifiers) UpdateRender() {
	for _, n := range ns {
		n.UpdateRender()
	}
}

// KeyCallback runs on a key press. Returning true means geometry colors
// changed and must be re-uploaded.
type KeyCallback func(v *Viewer) bool

type callbackRecord struct {
	callback    KeyCallback
	description string
}

// Viewer owns the palette registry used for rendering and dispatches key
// callbacks.
type Viewer struct {
	palettes *colormap.Registry
	notifier RedrawNotifier

	mu        sync.RWMutex
	callbacks map[Key]callbackRecord

	// Fallback receives releases and keys without a registered callback.
	Fallback func(key Key, action Action)
}

// New creates a viewer. A nil registry gets a fresh one; a nil notifier
// drops redraw requests.
func New(palettes *colormap.Registry, notifier RedrawNotifier) *Viewer {
	if palettes == nil {
		palettes = colormap.NewRegistry()
	}
	if notifier == nil {
		notifier = Notifiers(nil)
	}
	return &Viewer{
		palettes:  palettes,
		notifier:  notifier,
		callbacks: make(map[Key]callbackRecord),
	}
}

// Palettes returns the registry rendering code reads the active palette from.
func (v *Viewer) Palettes() *colormap.Registry {
	return v.palettes
}

// SetPalette installs a palette and requests a full redraw. It returns the
// kind installed.
func (v *Viewer) SetPalette(kind colormap.Kind) colormap.Kind {
	got := v.palettes.SetPalette(kind)
	log.Debug().Str("context", "viewer").Str("palette", got.String()).Msg("palette_set")
	v.notifier.UpdateGeometry()
	v.notifier.UpdateRender()
	return got
}

// RegisterKeyCallback binds cb to key, replacing any earlier binding.
func (v *Viewer) RegisterKeyCallback(key Key, cb KeyCallback, description string) {
	if description == "" {
		description = "None"
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.callbacks[key] = callbackRecord{callback: cb, description: description}
}

// HandleKey dispatches a key event and reports whether a registered
// callback handled it. Releases are never dispatched to callbacks.
func (v *Viewer) HandleKey(key Key, action Action) bool {
	if action == Release {
		v.fallback(key, action)
		return false
	}

	v.mu.RLock()
	rec, ok := v.callbacks[key]
	v.mu.RUnlock()
	if !ok {
		v.fallback(key, action)
		return false
	}

	if rec.callback(v) {
		v.notifier.UpdateGeometry()
	}
	v.notifier.UpdateRender()
	return true
}

func (v *Viewer) fallback(key Key, action Action) {
	if v.Fallback != nil {
		v.Fallback(key, action)
	}
}

// Help lists the registered keys and their descriptions.
func (v *Viewer) Help() string {
	v.mu.RLock()
	defer v.mu.RUnlock()

	keys := make([]Key, 0, len(v.callbacks))
	for k := range v.callbacks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	var b strings.Builder
	b.WriteString("-- Keys registered for callback functions --\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "  [%s] %s\n", KeyName(k), v.callbacks[k].description)
	}
	b.WriteString("The default functions of these keys will be overridden.\n")
	return b.String()
}

// BindPaletteKeys binds '1'..'6' to Gray, Jet, Summer, Winter, Hot and Label
// and 'C' to cycle through them.
func (v *Viewer) BindPaletteKeys() {
	for i, kind := range colormap.Kinds() {
		kind := kind
		v.RegisterKeyCallback(Key('1'+i), func(v *Viewer) bool {
			v.palettes.SetPalette(kind)
			return true
		}, "Use "+kind.String()+" palette")
	}
	v.RegisterKeyCallback(Key('C'), func(v *Viewer) bool {
		kinds := colormap.Kinds()
		next := kinds[(int(v.palettes.Kind())+1)%len(kinds)]
		v.palettes.SetPalette(next)
		return true
	}, "Cycle palettes")
}
